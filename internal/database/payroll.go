package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const payrollColumns = `id, staff_id, period, total_hours, overtime_hours,
	basic_pay, overtime_pay, allowances, late_deduction, absence_deduction,
	net_pay, superseded_by, generated_at`

func scanPayrollRecord(row pgx.Row) (PayrollRecord, error) {
	var r PayrollRecord
	err := row.Scan(&r.ID, &r.StaffID, &r.Period, &r.TotalHours, &r.OvertimeHours,
		&r.BasicPay, &r.OvertimePay, &r.Allowances, &r.LateDeduction,
		&r.AbsenceDeduction, &r.NetPay, &r.SupersededBy, &r.GeneratedAt)
	return r, err
}

type CreatePayrollRecordParams struct {
	StaffID          uuid.UUID
	Period           string
	TotalHours       pgtype.Numeric
	OvertimeHours    pgtype.Numeric
	BasicPay         pgtype.Numeric
	OvertimePay      pgtype.Numeric
	Allowances       pgtype.Numeric
	LateDeduction    pgtype.Numeric
	AbsenceDeduction pgtype.Numeric
	NetPay           pgtype.Numeric
}

func (q *Queries) CreatePayrollRecord(ctx context.Context, arg CreatePayrollRecordParams) (PayrollRecord, error) {
	return scanPayrollRecord(q.db.QueryRow(ctx, `
		INSERT INTO payroll_records (staff_id, period, total_hours, overtime_hours,
			basic_pay, overtime_pay, allowances, late_deduction, absence_deduction, net_pay)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+payrollColumns,
		arg.StaffID, arg.Period, arg.TotalHours, arg.OvertimeHours,
		arg.BasicPay, arg.OvertimePay, arg.Allowances, arg.LateDeduction,
		arg.AbsenceDeduction, arg.NetPay))
}

func (q *Queries) GetPayrollRecord(ctx context.Context, id uuid.UUID) (PayrollRecord, error) {
	return scanPayrollRecord(q.db.QueryRow(ctx,
		`SELECT `+payrollColumns+` FROM payroll_records WHERE id = $1`, id))
}

type ListPayrollRecordsParams struct {
	StaffID pgtype.UUID
	Period  pgtype.Text
}

// ListPayrollRecords returns current snapshots only; superseded rows stay in
// the table for audit but are filtered here.
func (q *Queries) ListPayrollRecords(ctx context.Context, arg ListPayrollRecordsParams) ([]PayrollRecord, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+payrollColumns+`
		FROM payroll_records
		WHERE superseded_by IS NULL
		  AND ($1::uuid IS NULL OR staff_id = $1)
		  AND ($2::text IS NULL OR period = $2)
		ORDER BY generated_at DESC`,
		arg.StaffID, arg.Period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayrollRecord
	for rows.Next() {
		r, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type SupersedePayrollRecordsParams struct {
	StaffID uuid.UUID
	Period  string
	NewID   uuid.UUID
}

// SupersedePayrollRecords points every prior active snapshot for the staff
// and period at the freshly generated record.
func (q *Queries) SupersedePayrollRecords(ctx context.Context, arg SupersedePayrollRecordsParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE payroll_records
		SET superseded_by = $3
		WHERE staff_id = $1 AND period = $2 AND superseded_by IS NULL AND id <> $3`,
		arg.StaffID, arg.Period, arg.NewID)
	return err
}

type LinkPayrollTimeLogParams struct {
	RecordID  uuid.UUID
	TimeLogID uuid.UUID
}

func (q *Queries) LinkPayrollTimeLog(ctx context.Context, arg LinkPayrollTimeLogParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO payroll_record_logs (record_id, time_log_id) VALUES ($1, $2)`,
		arg.RecordID, arg.TimeLogID)
	return err
}
