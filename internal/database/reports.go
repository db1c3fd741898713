package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type DailyRevenueRow struct {
	Day        pgtype.Date
	OrderCount int64
	Revenue    pgtype.Numeric
}

type GetDailyRevenueParams struct {
	Start time.Time
	End   time.Time
}

// GetDailyRevenue aggregates completed orders by calendar day.
func (q *Queries) GetDailyRevenue(ctx context.Context, arg GetDailyRevenueParams) ([]DailyRevenueRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT completed_at::date AS day, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status = 'completed'
		  AND completed_at >= $1 AND completed_at < $2
		GROUP BY day
		ORDER BY day`,
		arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyRevenueRow
	for rows.Next() {
		var r DailyRevenueRow
		if err := rows.Scan(&r.Day, &r.OrderCount, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type RevenueByTypeRow struct {
	OrderType  string
	OrderCount int64
	Revenue    pgtype.Numeric
}

func (q *Queries) GetRevenueByOrderType(ctx context.Context, arg GetDailyRevenueParams) ([]RevenueByTypeRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT order_type, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status = 'completed'
		  AND completed_at >= $1 AND completed_at < $2
		GROUP BY order_type
		ORDER BY order_type`,
		arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RevenueByTypeRow
	for rows.Next() {
		var r RevenueByTypeRow
		if err := rows.Scan(&r.OrderType, &r.OrderCount, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
