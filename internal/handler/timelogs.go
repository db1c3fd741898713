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
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/enum"
	"github.com/kapehan-pos/api/internal/payroll"
)

// TimeLogStore defines the database methods needed by time log handlers.
type TimeLogStore interface {
	GetStaffByPin(ctx context.Context, pin string) (database.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	GetLastTimeLog(ctx context.Context, staffID uuid.UUID) (database.TimeLog, error)
	CreateTimeLog(ctx context.Context, arg database.CreateTimeLogParams) (database.TimeLog, error)
	ListTimeLogsByStaffBetween(ctx context.Context, arg database.ListTimeLogsByStaffBetweenParams) ([]database.TimeLog, error)
}

// TimeLogHandler handles clock punch and hours summary endpoints.
type TimeLogHandler struct {
	store TimeLogStore
	now   func() time.Time
}

// NewTimeLogHandler creates a new TimeLogHandler. now is injectable for tests;
// pass nil for time.Now.
func NewTimeLogHandler(store TimeLogStore, now func() time.Time) *TimeLogHandler {
	if now == nil {
		now = time.Now
	}
	return &TimeLogHandler{store: store, now: now}
}

// RegisterRoutes registers time log endpoints on the given Chi router.
func (h *TimeLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staff/{id}", h.StaffHours)
}

// RegisterPublicRoutes registers the shared-terminal punch endpoint. The PIN
// is the credential; no bearer token is required at the time clock.
func (h *TimeLogHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/punch", h.Punch)
}

type punchRequest struct {
	Pin string `json:"pin"`
}

type punchResponse struct {
	StaffID   uuid.UUID `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	LogType   string    `json:"log_type"`
	LoggedAt  time.Time `json:"logged_at"`
}

// Punch records a clock event for the staff member matching the PIN. The
// direction alternates: a staff member whose last event was a clock-in gets a
// clock-out, and vice versa. A first-ever punch is a clock-in.
func (h *TimeLogHandler) Punch(w http.ResponseWriter, r *http.Request) {
	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pin is required"})
		return
	}

	staff, err := h.store.GetStaffByPin(r.Context(), req.Pin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: punch lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	logType := enum.TimeLogClockIn
	last, err := h.store.GetLastTimeLog(r.Context(), staff.ID)
	switch {
	case err == nil:
		if last.LogType == enum.TimeLogClockIn {
			logType = enum.TimeLogClockOut
		}
	case errors.Is(err, pgx.ErrNoRows):
		// first punch ever, stays a clock-in
	default:
		log.Printf("ERROR: punch last log: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	entry, err := h.store.CreateTimeLog(r.Context(), database.CreateTimeLogParams{
		StaffID:  staff.ID,
		LogType:  logType,
		LoggedAt: h.now().UTC(),
	})
	if err != nil {
		log.Printf("ERROR: create time log: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, punchResponse{
		StaffID:   staff.ID,
		StaffName: staff.FullName,
		LogType:   entry.LogType,
		LoggedAt:  entry.LoggedAt,
	})
}

type timeLogResponse struct {
	ID       uuid.UUID `json:"id"`
	LogType  string    `json:"log_type"`
	LoggedAt time.Time `json:"logged_at"`
}

type staffHoursResponse struct {
	StaffID       uuid.UUID         `json:"staff_id"`
	StaffName     string            `json:"staff_name"`
	Period        string            `json:"period"`
	TotalHours    string            `json:"total_hours"`
	RegularHours  string            `json:"regular_hours"`
	OvertimeHours string            `json:"overtime_hours"`
	OpenSession   bool              `json:"open_session"`
	Logs          []timeLogResponse `json:"logs"`
}

// StaffHours returns one staff member's clock events for a month along with
// the paired-hours summary. Period defaults to the current month.
func (h *TimeLogHandler) StaffHours(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = h.now().UTC().Format("2006-01")
	}
	start, err := time.Parse("2006-01", period)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be YYYY-MM"})
		return
	}
	end := start.AddDate(0, 1, 0)

	staff, err := h.store.GetStaff(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		log.Printf("ERROR: staff hours lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	logs, err := h.store.ListTimeLogsByStaffBetween(r.Context(), database.ListTimeLogsByStaffBetweenParams{
		StaffID: id,
		Start:   start,
		End:     end,
	})
	if err != nil {
		log.Printf("ERROR: list time logs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	entries := make([]payroll.LogEntry, len(logs))
	logResp := make([]timeLogResponse, len(logs))
	for i, l := range logs {
		entries[i] = payroll.LogEntry{Type: l.LogType, At: l.LoggedAt}
		logResp[i] = timeLogResponse{ID: l.ID, LogType: l.LogType, LoggedAt: l.LoggedAt}
	}
	hours := payroll.PairLogs(entries)

	writeJSON(w, http.StatusOK, staffHoursResponse{
		StaffID:       staff.ID,
		StaffName:     staff.FullName,
		Period:        period,
		TotalHours:    hours.TotalHours.StringFixed(2),
		RegularHours:  hours.RegularHours.StringFixed(2),
		OvertimeHours: hours.OvertimeHours.StringFixed(2),
		OpenSession:   hours.OpenSession,
		Logs:          logResp,
	})
}
