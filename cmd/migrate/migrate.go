package migrate

import (
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	ledgerMigrationSource = "core/ledger/postgres/migrations"
	ledgerMigrationTable  = "ledger_schema_migrations"
)

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

func cloneURLWithQuery(u *url.URL, newQuery url.Values) *url.URL {
	clone := *u
	query := clone.Query()
	for key, values := range newQuery {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}

func parseDatabaseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, errors.New("--database is required")
	}
	databaseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}
	return databaseURL, nil
}

// newMigrate opens the ledger schema migrations on the given database.
func newMigrate(databaseURL *url.URL, sourcePath string) (*migrate.Migrate, error) {
	newDatabaseURL := cloneURLWithQuery(databaseURL, url.Values{"x-migrations-table": {ledgerMigrationTable}})
	m, err := migrate.New("file://"+sourcePath, newDatabaseURL.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Migrate instance")
	}
	m.Log = &consoleLogger{
		prefix: fmt.Sprintf("[%s] ", "Ledger"),
	}
	return m, nil
}
