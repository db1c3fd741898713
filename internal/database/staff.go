package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const staffColumns = `id, full_name, position, role, daily_rate, status, pin_code,
	sss_number, tin_number, philhealth_number, email, username, hashed_password,
	created_at, updated_at`

func scanStaff(row pgx.Row) (Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.FullName, &s.Position, &s.Role, &s.DailyRate,
		&s.Status, &s.PinCode, &s.SssNumber, &s.TinNumber, &s.PhilhealthNumber,
		&s.Email, &s.Username, &s.HashedPassword, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := q.db.Query(ctx, `SELECT `+staffColumns+` FROM staff WHERE status = 'ACTIVE' ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) GetStaff(ctx context.Context, id uuid.UUID) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
}

func (q *Queries) GetStaffByEmail(ctx context.Context, email string) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE email = $1 AND status = 'ACTIVE'`, email))
}

func (q *Queries) GetStaffByPin(ctx context.Context, pin string) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE pin_code = $1 AND status = 'ACTIVE'`, pin))
}

type CreateStaffParams struct {
	FullName         string
	Position         string
	Role             string
	DailyRate        pgtype.Numeric
	PinCode          pgtype.Text
	SssNumber        pgtype.Text
	TinNumber        pgtype.Text
	PhilhealthNumber pgtype.Text
	Email            string
	Username         string
	HashedPassword   string
}

func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, `
		INSERT INTO staff (full_name, position, role, daily_rate, pin_code,
			sss_number, tin_number, philhealth_number, email, username, hashed_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+staffColumns,
		arg.FullName, arg.Position, arg.Role, arg.DailyRate, arg.PinCode,
		arg.SssNumber, arg.TinNumber, arg.PhilhealthNumber,
		arg.Email, arg.Username, arg.HashedPassword))
}

type UpdateStaffParams struct {
	ID               uuid.UUID
	FullName         string
	Position         string
	Role             string
	DailyRate        pgtype.Numeric
	PinCode          pgtype.Text
	SssNumber        pgtype.Text
	TinNumber        pgtype.Text
	PhilhealthNumber pgtype.Text
	Email            string
}

func (q *Queries) UpdateStaff(ctx context.Context, arg UpdateStaffParams) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, `
		UPDATE staff
		SET full_name = $2, position = $3, role = $4, daily_rate = $5,
			pin_code = $6, sss_number = $7, tin_number = $8,
			philhealth_number = $9, email = $10, updated_at = now()
		WHERE id = $1 AND status = 'ACTIVE'
		RETURNING `+staffColumns,
		arg.ID, arg.FullName, arg.Position, arg.Role, arg.DailyRate,
		arg.PinCode, arg.SssNumber, arg.TinNumber, arg.PhilhealthNumber, arg.Email))
}

// DeactivateStaff soft-deletes: the row stays for payroll history.
func (q *Queries) DeactivateStaff(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE staff SET status = 'INACTIVE', updated_at = now()
		WHERE id = $1 AND status = 'ACTIVE'
		RETURNING id`, id).Scan(&out)
	return out, err
}
