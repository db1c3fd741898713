package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const timeLogColumns = `id, staff_id, log_type, logged_at`

func scanTimeLog(row pgx.Row) (TimeLog, error) {
	var t TimeLog
	err := row.Scan(&t.ID, &t.StaffID, &t.LogType, &t.LoggedAt)
	return t, err
}

type CreateTimeLogParams struct {
	StaffID  uuid.UUID
	LogType  string
	LoggedAt time.Time
}

func (q *Queries) CreateTimeLog(ctx context.Context, arg CreateTimeLogParams) (TimeLog, error) {
	return scanTimeLog(q.db.QueryRow(ctx, `
		INSERT INTO time_logs (staff_id, log_type, logged_at)
		VALUES ($1, $2, $3)
		RETURNING `+timeLogColumns,
		arg.StaffID, arg.LogType, arg.LoggedAt))
}

// GetLastTimeLog returns the most recent log for a staff member, used to
// decide whether the next punch is a clock-in or a clock-out.
func (q *Queries) GetLastTimeLog(ctx context.Context, staffID uuid.UUID) (TimeLog, error) {
	return scanTimeLog(q.db.QueryRow(ctx, `
		SELECT `+timeLogColumns+`
		FROM time_logs
		WHERE staff_id = $1
		ORDER BY logged_at DESC
		LIMIT 1`, staffID))
}

type ListTimeLogsByStaffBetweenParams struct {
	StaffID uuid.UUID
	Start   time.Time
	End     time.Time
}

func (q *Queries) ListTimeLogsByStaffBetween(ctx context.Context, arg ListTimeLogsByStaffBetweenParams) ([]TimeLog, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+timeLogColumns+`
		FROM time_logs
		WHERE staff_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at`,
		arg.StaffID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeLog
	for rows.Next() {
		t, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
