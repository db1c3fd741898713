package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const expenseColumns = `id, description, category, amount, disbursed, incurred_on, created_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.Description, &e.Category, &e.Amount, &e.Disbursed,
		&e.IncurredOn, &e.CreatedAt)
	return e, err
}

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY incurred_on DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type CreateExpenseParams struct {
	Description string
	Category    string
	Amount      pgtype.Numeric
	IncurredOn  pgtype.Date
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	return scanExpense(q.db.QueryRow(ctx, `
		INSERT INTO expenses (description, category, amount, incurred_on)
		VALUES ($1, $2, $3, $4)
		RETURNING `+expenseColumns,
		arg.Description, arg.Category, arg.Amount, arg.IncurredOn))
}

type SetExpenseDisbursedParams struct {
	ID        uuid.UUID
	Disbursed bool
}

func (q *Queries) SetExpenseDisbursed(ctx context.Context, arg SetExpenseDisbursedParams) (Expense, error) {
	return scanExpense(q.db.QueryRow(ctx, `
		UPDATE expenses SET disbursed = $2 WHERE id = $1
		RETURNING `+expenseColumns,
		arg.ID, arg.Disbursed))
}

// TryInsertDisbursementReset claims today's reset. It reports false when
// another request already claimed it, making the daily reset idempotent.
func (q *Queries) TryInsertDisbursementReset(ctx context.Context, resetDate pgtype.Date) (bool, error) {
	tag, err := q.db.Exec(ctx, `
		INSERT INTO disbursement_resets (reset_date) VALUES ($1)
		ON CONFLICT (reset_date) DO NOTHING`, resetDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) ResetDisbursedFlags(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `UPDATE expenses SET disbursed = false WHERE disbursed`)
	return err
}
