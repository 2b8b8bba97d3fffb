package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the two collections and their constraints. Email
// uniqueness and the type/amount invariants are enforced at the store
// level as well as in the domain validators.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			type        TEXT NOT NULL CHECK (type IN ('income', 'expense')),
			amount      DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
			category    TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// listing order is date desc, creation time desc
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date DESC, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions (category)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
