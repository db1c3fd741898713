package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cashMovementColumns = `id, direction, amount, reason, order_id, staff_id, created_at`

func scanCashMovement(row pgx.Row) (CashMovement, error) {
	var m CashMovement
	err := row.Scan(&m.ID, &m.Direction, &m.Amount, &m.Reason, &m.OrderID,
		&m.StaffID, &m.CreatedAt)
	return m, err
}

type CreateCashMovementParams struct {
	Direction string
	Amount    pgtype.Numeric
	Reason    string
	OrderID   pgtype.UUID
	StaffID   pgtype.UUID
}

func (q *Queries) CreateCashMovement(ctx context.Context, arg CreateCashMovementParams) (CashMovement, error) {
	return scanCashMovement(q.db.QueryRow(ctx, `
		INSERT INTO cash_movements (direction, amount, reason, order_id, staff_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+cashMovementColumns,
		arg.Direction, arg.Amount, arg.Reason, arg.OrderID, arg.StaffID))
}

// SumCashMovements returns the current till float: signed sum of the ledger.
func (q *Queries) SumCashMovements(ctx context.Context) (pgtype.Numeric, error) {
	var sum pgtype.Numeric
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE direction WHEN 'IN' THEN amount ELSE -amount END), 0)
		FROM cash_movements`).Scan(&sum)
	return sum, err
}

func (q *Queries) ListCashMovements(ctx context.Context, limit int32) ([]CashMovement, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+cashMovementColumns+`
		FROM cash_movements
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CashMovement
	for rows.Next() {
		m, err := scanCashMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
