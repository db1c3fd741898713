package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/payroll"
	"github.com/kapehan-pos/api/internal/service"
	"github.com/shopspring/decimal"
)

// PayrollServicer is the slice of PayrollService the handler uses.
type PayrollServicer interface {
	Generate(ctx context.Context, req service.GeneratePayrollRequest) (*service.GeneratePayrollResult, error)
}

// PayrollStore defines the read-side database methods for payroll handlers.
type PayrollStore interface {
	ListPayrollRecords(ctx context.Context, arg database.ListPayrollRecordsParams) ([]database.PayrollRecord, error)
	GetPayrollRecord(ctx context.Context, id uuid.UUID) (database.PayrollRecord, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
}

// PayrollHandler handles pay run endpoints.
type PayrollHandler struct {
	svc   PayrollServicer
	store PayrollStore
}

// NewPayrollHandler creates a new PayrollHandler.
func NewPayrollHandler(svc PayrollServicer, store PayrollStore) *PayrollHandler {
	return &PayrollHandler{svc: svc, store: store}
}

// RegisterRoutes registers payroll endpoints on the given Chi router.
func (h *PayrollHandler) RegisterRoutes(r chi.Router) {
	r.Post("/generate", h.Generate)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

type generatePayrollRequest struct {
	StaffID     string `json:"staff_id"`
	Period      string `json:"period"`
	Allowances  string `json:"allowances"`
	LateMinutes string `json:"late_minutes"`
	Absences    int32  `json:"absences"`
	// Optional manual overrides; when set they replace the computed hours.
	OverrideTotalHours    *string `json:"override_total_hours"`
	OverrideOvertimeHours *string `json:"override_overtime_hours"`
}

type payrollRecordResponse struct {
	ID               uuid.UUID `json:"id"`
	StaffID          uuid.UUID `json:"staff_id"`
	Period           string    `json:"period"`
	TotalHours       string    `json:"total_hours"`
	OvertimeHours    string    `json:"overtime_hours"`
	BasicPay         string    `json:"basic_pay"`
	OvertimePay      string    `json:"overtime_pay"`
	Allowances       string    `json:"allowances"`
	LateDeduction    string    `json:"late_deduction"`
	AbsenceDeduction string    `json:"absence_deduction"`
	NetPay           string    `json:"net_pay"`
	GeneratedAt      time.Time `json:"generated_at"`
}

type generatePayrollResponse struct {
	payrollRecordResponse
	StaffName   string `json:"staff_name"`
	OpenSession bool   `json:"open_session"`
}

// Generate runs payroll for one staff member and period. Re-running the same
// period supersedes the previous snapshot rather than editing it.
func (h *PayrollHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}
	if req.Absences < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "absences cannot be negative"})
		return
	}

	override, msg := parseOverride(req.OverrideTotalHours, req.OverrideOvertimeHours)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	result, err := h.svc.Generate(r.Context(), service.GeneratePayrollRequest{
		StaffID:     staffID,
		Period:      req.Period,
		Allowances:  req.Allowances,
		LateMinutes: req.LateMinutes,
		Absences:    req.Absences,
		Override:    override,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaffNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
		case errors.Is(err, service.ErrInvalidPeriod):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be YYYY-MM"})
		case errors.Is(err, service.ErrInvalidNumeric):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: generate payroll: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	staff, err := h.store.GetStaff(r.Context(), staffID)
	if err != nil {
		log.Printf("ERROR: generate payroll staff lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, generatePayrollResponse{
		payrollRecordResponse: dbPayrollToResponse(result.Record),
		StaffName:             staff.FullName,
		OpenSession:           result.Hours.OpenSession,
	})
}

// List returns active payroll snapshots, optionally filtered by staff_id and
// period query parameters.
func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	var params database.ListPayrollRecordsParams

	if s := r.URL.Query().Get("staff_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
			return
		}
		params.StaffID = pgtype.UUID{Bytes: id, Valid: true}
	}
	if p := r.URL.Query().Get("period"); p != "" {
		if _, err := time.Parse("2006-01", p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be YYYY-MM"})
			return
		}
		params.Period = pgtype.Text{String: p, Valid: true}
	}

	records, err := h.store.ListPayrollRecords(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list payroll records: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]payrollRecordResponse, len(records))
	for i, rec := range records {
		resp[i] = dbPayrollToResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one payroll snapshot by ID, superseded or not.
func (h *PayrollHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payroll record ID"})
		return
	}

	rec, err := h.store.GetPayrollRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "payroll record not found"})
			return
		}
		log.Printf("ERROR: get payroll record: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbPayrollToResponse(rec))
}

func parseOverride(total, overtime *string) (*payroll.Override, string) {
	if total == nil && overtime == nil {
		return nil, ""
	}
	ov := &payroll.Override{}
	if total != nil {
		d, err := decimal.NewFromString(*total)
		if err != nil || d.IsNegative() {
			return nil, "invalid override_total_hours"
		}
		ov.TotalHours = &d
	}
	if overtime != nil {
		d, err := decimal.NewFromString(*overtime)
		if err != nil || d.IsNegative() {
			return nil, "invalid override_overtime_hours"
		}
		ov.OvertimeHours = &d
	}
	return ov, ""
}

func dbPayrollToResponse(rec database.PayrollRecord) payrollRecordResponse {
	return payrollRecordResponse{
		ID:               rec.ID,
		StaffID:          rec.StaffID,
		Period:           rec.Period,
		TotalHours:       numericToString(rec.TotalHours),
		OvertimeHours:    numericToString(rec.OvertimeHours),
		BasicPay:         numericToString(rec.BasicPay),
		OvertimePay:      numericToString(rec.OvertimePay),
		Allowances:       numericToString(rec.Allowances),
		LateDeduction:    numericToString(rec.LateDeduction),
		AbsenceDeduction: numericToString(rec.AbsenceDeduction),
		NetPay:           numericToString(rec.NetPay),
		GeneratedAt:      rec.GeneratedAt,
	}
}
