package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wakesup1/fintrack/internal/domain/transaction"
	"github.com/wakesup1/fintrack/internal/observability"
)

const transactionColumns = `id, type, amount, category, description, date, created_at, updated_at`

type TransactionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTransactionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *TransactionsRepo {
	return &TransactionsRepo{pool: pool, prom: prom}
}

func (r *TransactionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *TransactionsRepo) Create(ctx context.Context, req transaction.CreateRequest) (transaction.Transaction, error) {
	t, verr := transaction.NewFromCreateRequest(req)

	if verr != nil {
		return transaction.Transaction{}, verr
	}

	err := r.observe("transactions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO transactions (id, type, amount, category, description, date, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.Type, t.Amount, t.Category, t.Description, t.Date, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return transaction.Transaction{}, err
	}

	return t, nil
}

// List returns every transaction, newest date first, ties broken by
// creation time descending.
func (r *TransactionsRepo) List(ctx context.Context) ([]transaction.Transaction, error) {
	var output []transaction.Transaction

	err := r.observe("transactions.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+transactionColumns+`
			 FROM transactions
			 ORDER BY date DESC, created_at DESC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]transaction.Transaction, 0)

		for rows.Next() {
			var t transaction.Transaction

			err = rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *TransactionsRepo) GetByID(ctx context.Context, id string) (transaction.Transaction, error) {
	var t transaction.Transaction

	err := r.observe("transactions.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
		).Scan(&t.ID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}

	return t, nil
}

// Update applies a partial patch and returns the resulting document.
// The patch must already be validated; only present fields are touched.
func (r *TransactionsRepo) Update(ctx context.Context, id string, patch transaction.Patch) (transaction.Transaction, error) {
	sets, args := patchAssignments(patch)

	if len(sets) == 0 {
		// nothing to change; behave like a read
		return r.GetByID(ctx, id)
	}

	// id is $1, patch assignments start at $2
	args = append([]interface{}{id}, args...)

	query := fmt.Sprintf(
		`UPDATE transactions
		 SET %s, updated_at = NOW()
		 WHERE id = $1
		 RETURNING %s`,
		strings.Join(sets, ", "), transactionColumns,
	)

	var t transaction.Transaction

	err := r.observe("transactions.update", func() error {
		return r.pool.QueryRow(ctx, query, args...).
			Scan(&t.ID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}

	return t, nil
}

// Delete removes one transaction and returns the removed document.
func (r *TransactionsRepo) Delete(ctx context.Context, id string) (transaction.Transaction, error) {
	var t transaction.Transaction

	err := r.observe("transactions.delete", func() error {
		return r.pool.QueryRow(ctx,
			`DELETE FROM transactions WHERE id = $1 RETURNING `+transactionColumns, id,
		).Scan(&t.ID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}

	return t, nil
}

// DeleteAll wipes the collection and reports how many rows went.
func (r *TransactionsRepo) DeleteAll(ctx context.Context) (int64, error) {
	var count int64

	err := r.observe("transactions.delete_all", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM transactions`)

		if err != nil {
			return err
		}

		count = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return 0, err
	}

	return count, nil
}

// BulkUpdate applies the same patch to every matching id and returns
// the number of modified rows. Ids with no match are silently skipped.
func (r *TransactionsRepo) BulkUpdate(ctx context.Context, ids []string, patch transaction.Patch) (int64, error) {
	sets, args := patchAssignments(patch)

	if len(sets) == 0 {
		return 0, nil
	}

	args = append([]interface{}{ids}, args...)

	query := fmt.Sprintf(
		`UPDATE transactions
		 SET %s, updated_at = NOW()
		 WHERE id = ANY($1)`,
		strings.Join(sets, ", "),
	)

	var modified int64

	err := r.observe("transactions.bulk_update", func() error {
		tag, err := r.pool.Exec(ctx, query, args...)

		if err != nil {
			return err
		}

		modified = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return 0, err
	}

	return modified, nil
}

// Summary aggregates income and expense totals in the store.
func (r *TransactionsRepo) Summary(ctx context.Context) (transaction.Summary, error) {
	var s transaction.Summary

	err := r.observe("transactions.summary", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT
				COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
				COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
			 FROM transactions`,
		).Scan(&s.Income, &s.Expense)
	})

	if err != nil {
		return transaction.Summary{}, err
	}

	s.Balance = s.Income - s.Expense

	return s, nil
}

// patchAssignments turns the present patch fields into SET clauses.
// Placeholders start at $2; $1 is reserved for the row selector.
func patchAssignments(patch transaction.Patch) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	pos := 2

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, pos))
		args = append(args, value)
		pos++
	}

	if patch.Type != nil {
		add("type", *patch.Type)
	}

	if patch.Amount != nil {
		add("amount", *patch.Amount)
	}

	if patch.Category != nil {
		add("category", *patch.Category)
	}

	if patch.Description != nil {
		add("description", *patch.Description)
	}

	if patch.Date != nil {
		add("date", patch.Date.UTC())
	}

	return sets, args
}
