package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigString(t *testing.T) {
	testCases := []struct {
		name     string
		conf     Config
		expected string
	}{
		{
			name:     "defaults",
			conf:     Config{},
			expected: "host=127.0.0.1 dbname=postgres port=5432 sslmode=prefer",
		},
		{
			name:     "credentials",
			conf:     Config{Host: "db", Port: "6543", DBName: "ledger", SSLMode: "disable", User: "gate", Password: "secret"},
			expected: "host=db dbname=ledger port=6543 sslmode=disable user=gate password=secret",
		},
		{
			name:     "url_wins",
			conf:     Config{Host: "db", URL: "postgres://gate@db:5432/ledger"},
			expected: "postgres://gate@db:5432/ledger",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.conf.String())
		})
	}
}
