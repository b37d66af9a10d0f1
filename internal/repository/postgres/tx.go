package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ridehail/internal/repository"
)

// Transactor runs repository work inside a single database transaction.
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new Transactor.
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

var _ repository.Transactor = (*Transactor)(nil)

// WithinTx begins a transaction, hands fn transaction-scoped repositories,
// and commits if fn succeeds.
func (t *Transactor) WithinTx(ctx context.Context, fn repository.TxFunc) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, NewRideRepositoryWithTx(tx), NewCaptainRepositoryWithTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
