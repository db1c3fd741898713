package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kapehan-pos/api/internal/database"
)

// ReportStore defines the database methods needed by report handlers.
type ReportStore interface {
	GetDailyRevenue(ctx context.Context, arg database.GetDailyRevenueParams) ([]database.DailyRevenueRow, error)
	GetRevenueByOrderType(ctx context.Context, arg database.GetDailyRevenueParams) ([]database.RevenueByTypeRow, error)
}

// ReportHandler handles revenue report endpoints.
type ReportHandler struct {
	store ReportStore
	now   func() time.Time
}

// NewReportHandler creates a new ReportHandler. now is injectable for tests;
// pass nil for time.Now.
func NewReportHandler(store ReportStore, now func() time.Time) *ReportHandler {
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{store: store, now: now}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/revenue/daily", h.DailyRevenue)
	r.Get("/revenue/by-type", h.RevenueByType)
}

type dailyRevenueRow struct {
	Day        string `json:"day"`
	OrderCount int64  `json:"order_count"`
	Revenue    string `json:"revenue"`
}

type revenueByTypeRow struct {
	OrderType  string `json:"order_type"`
	OrderCount int64  `json:"order_count"`
	Revenue    string `json:"revenue"`
}

type dailyRevenueResponse struct {
	Start string            `json:"start"`
	End   string            `json:"end"`
	Rows  []dailyRevenueRow `json:"rows"`
}

type revenueByTypeResponse struct {
	Start string             `json:"start"`
	End   string             `json:"end"`
	Rows  []revenueByTypeRow `json:"rows"`
}

// parseRange reads start/end query parameters (YYYY-MM-DD, end exclusive on
// the following midnight). Default window is the last 30 days.
func (h *ReportHandler) parseRange(r *http.Request) (time.Time, time.Time, string) {
	now := h.now().UTC().Truncate(24 * time.Hour)
	start := now.AddDate(0, 0, -29)
	end := now.AddDate(0, 0, 1)

	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, "start must be YYYY-MM-DD"
		}
		start = t
	}
	if s := r.URL.Query().Get("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, "end must be YYYY-MM-DD"
		}
		end = t.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, "start must be on or before end"
	}
	return start, end, ""
}

// DailyRevenue returns completed-order revenue grouped by calendar day.
func (h *ReportHandler) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	start, end, msg := h.parseRange(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	rows, err := h.store.GetDailyRevenue(r.Context(), database.GetDailyRevenueParams{Start: start, End: end})
	if err != nil {
		log.Printf("ERROR: daily revenue report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dailyRevenueResponse{
		Start: start.Format("2006-01-02"),
		End:   end.AddDate(0, 0, -1).Format("2006-01-02"),
		Rows:  make([]dailyRevenueRow, len(rows)),
	}
	for i, row := range rows {
		resp.Rows[i] = dailyRevenueRow{
			Day:        row.Day.Time.Format("2006-01-02"),
			OrderCount: row.OrderCount,
			Revenue:    numericToString(row.Revenue),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// RevenueByType returns completed-order revenue grouped by order type.
func (h *ReportHandler) RevenueByType(w http.ResponseWriter, r *http.Request) {
	start, end, msg := h.parseRange(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	rows, err := h.store.GetRevenueByOrderType(r.Context(), database.GetDailyRevenueParams{Start: start, End: end})
	if err != nil {
		log.Printf("ERROR: revenue by type report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := revenueByTypeResponse{
		Start: start.Format("2006-01-02"),
		End:   end.AddDate(0, 0, -1).Format("2006-01-02"),
		Rows:  make([]revenueByTypeRow, len(rows)),
	}
	for i, row := range rows {
		resp.Rows[i] = revenueByTypeRow{
			OrderType:  row.OrderType,
			OrderCount: row.OrderCount,
			Revenue:    numericToString(row.Revenue),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
