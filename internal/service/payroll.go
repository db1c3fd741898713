package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/payroll"
	"github.com/shopspring/decimal"
)

// Errors returned by the payroll service.
var (
	ErrStaffNotFound  = errors.New("staff not found")
	ErrInvalidPeriod  = errors.New("invalid period, want YYYY-MM")
	ErrInvalidNumeric = errors.New("invalid numeric value")
)

// PayrollStore defines the DB methods needed to generate pay runs.
// Satisfied by *database.Queries (and its WithTx variant).
type PayrollStore interface {
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	ListTimeLogsByStaffBetween(ctx context.Context, arg database.ListTimeLogsByStaffBetweenParams) ([]database.TimeLog, error)
	CreatePayrollRecord(ctx context.Context, arg database.CreatePayrollRecordParams) (database.PayrollRecord, error)
	LinkPayrollTimeLog(ctx context.Context, arg database.LinkPayrollTimeLogParams) error
	SupersedePayrollRecords(ctx context.Context, arg database.SupersedePayrollRecordsParams) error
}

// NewPayrollStore creates a PayrollStore from a DBTX (pool or tx).
type NewPayrollStore func(db database.DBTX) PayrollStore

// GeneratePayrollRequest is the validated input for a pay run.
type GeneratePayrollRequest struct {
	StaffID     uuid.UUID
	Period      string // YYYY-MM
	Allowances  string // decimal strings, empty means zero
	LateMinutes string
	Absences    int32
	Override    *payroll.Override
}

// GeneratePayrollResult is the stored snapshot plus its full breakdown and
// the hours summary it was computed from.
type GeneratePayrollResult struct {
	Record    database.PayrollRecord
	Breakdown payroll.Breakdown
	Hours     payroll.HoursSummary
}

// PayrollService handles pay run generation.
type PayrollService struct {
	pool     TxBeginner
	newStore NewPayrollStore
}

// NewPayrollService creates a new PayrollService.
func NewPayrollService(pool TxBeginner, newStore NewPayrollStore) *PayrollService {
	return &PayrollService{pool: pool, newStore: newStore}
}

// Generate computes and stores a payroll snapshot for one staff member and
// period. Regeneration never mutates an existing record: it inserts a fresh
// snapshot and stamps prior active ones superseded_by, all in one
// transaction. The time logs the run was computed from are linked to the
// record for audit.
func (s *PayrollService) Generate(ctx context.Context, req GeneratePayrollRequest) (*GeneratePayrollResult, error) {
	start, end, err := periodBounds(req.Period)
	if err != nil {
		return nil, err
	}
	allowances, err := optionalDecimal(req.Allowances)
	if err != nil {
		return nil, fmt.Errorf("allowances: %w", ErrInvalidNumeric)
	}
	lateMinutes, err := optionalDecimal(req.LateMinutes)
	if err != nil {
		return nil, fmt.Errorf("late_minutes: %w", ErrInvalidNumeric)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	staff, err := store.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}

	logs, err := store.ListTimeLogsByStaffBetween(ctx, database.ListTimeLogsByStaffBetweenParams{
		StaffID: req.StaffID,
		Start:   start,
		End:     end,
	})
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}

	entries := make([]payroll.LogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, payroll.LogEntry{Type: l.LogType, At: l.LoggedAt})
	}
	hours := payroll.PairLogs(entries)

	totalHours, overtimeHours := payroll.Resolve(hours.TotalHours, hours.OvertimeHours, req.Override)

	breakdown := payroll.Compute(payroll.Inputs{
		DailyRate:     numericToDecimal(staff.DailyRate),
		TotalHours:    totalHours,
		OvertimeHours: overtimeHours,
		Allowances:    allowances,
		LateMinutes:   lateMinutes,
		Absences:      req.Absences,
	})

	record, err := store.CreatePayrollRecord(ctx, database.CreatePayrollRecordParams{
		StaffID:          req.StaffID,
		Period:           req.Period,
		TotalHours:       decimalToNumeric(totalHours),
		OvertimeHours:    decimalToNumeric(overtimeHours),
		BasicPay:         decimalToNumeric(breakdown.RegularPay),
		OvertimePay:      decimalToNumeric(breakdown.OvertimePay),
		Allowances:       decimalToNumeric(breakdown.Allowances),
		LateDeduction:    decimalToNumeric(breakdown.LateDeduction),
		AbsenceDeduction: decimalToNumeric(breakdown.AbsenceDeduction),
		NetPay:           decimalToNumeric(breakdown.NetPay),
	})
	if err != nil {
		return nil, fmt.Errorf("create payroll record: %w", err)
	}

	for _, l := range logs {
		if err := store.LinkPayrollTimeLog(ctx, database.LinkPayrollTimeLogParams{
			RecordID:  record.ID,
			TimeLogID: l.ID,
		}); err != nil {
			return nil, fmt.Errorf("link time log: %w", err)
		}
	}

	if err := store.SupersedePayrollRecords(ctx, database.SupersedePayrollRecordsParams{
		StaffID: req.StaffID,
		Period:  req.Period,
		NewID:   record.ID,
	}); err != nil {
		return nil, fmt.Errorf("supersede prior records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &GeneratePayrollResult{Record: record, Breakdown: breakdown, Hours: hours}, nil
}

// periodBounds turns "YYYY-MM" into the [start, end) month interval.
func periodBounds(period string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return t, t.AddDate(0, 1, 0), nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
