// Package postgres is a ledger mirror kept in PostgreSQL. It serves reads for deployments that
// index the chain into a database and applies writes with the same rules as the contracts.
package postgres

import (
	"time"

	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/internal/postgres"
)

var _ ledger.ReadWriter = (*Repository)(nil)

type Repository struct {
	db  postgres.DB
	now func() time.Time
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
	}
}
