package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/handler"
)

// --- Mock store ---

type mockReportStore struct {
	dailyArg  database.GetDailyRevenueParams
	byTypeArg database.GetDailyRevenueParams
	daily     []database.DailyRevenueRow
	byType    []database.RevenueByTypeRow
}

func (m *mockReportStore) GetDailyRevenue(_ context.Context, arg database.GetDailyRevenueParams) ([]database.DailyRevenueRow, error) {
	m.dailyArg = arg
	return m.daily, nil
}

func (m *mockReportStore) GetRevenueByOrderType(_ context.Context, arg database.GetDailyRevenueParams) ([]database.RevenueByTypeRow, error) {
	m.byTypeArg = arg
	return m.byType, nil
}

var reportNow = time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

func setupReportRouter(store *mockReportStore) *chi.Mux {
	h := handler.NewReportHandler(store, func() time.Time { return reportNow })
	r := chi.NewRouter()
	r.Route("/reports", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestDailyRevenue_ExplicitRange(t *testing.T) {
	store := &mockReportStore{daily: []database.DailyRevenueRow{
		{
			Day:        pgtype.Date{Time: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Valid: true},
			OrderCount: 12,
			Revenue:    testNumeric("3480.00"),
		},
	}}
	router := setupReportRouter(store)

	rr := doRequest(t, router, "GET", "/reports/revenue/daily?start=2026-08-01&end=2026-08-07", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	// End date is inclusive at the API, exclusive at the query.
	wantStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)
	if !store.dailyArg.Start.Equal(wantStart) || !store.dailyArg.End.Equal(wantEnd) {
		t.Errorf("query range: got [%v, %v), want [%v, %v)", store.dailyArg.Start, store.dailyArg.End, wantStart, wantEnd)
	}

	resp := decodeResponse(t, rr)
	if resp["start"] != "2026-08-01" || resp["end"] != "2026-08-07" {
		t.Errorf("echoed range: got %v..%v", resp["start"], resp["end"])
	}
	rows := resp["rows"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["day"] != "2026-08-01" || row["revenue"] != "3480.00" {
		t.Errorf("row: got %v", row)
	}
}

func TestDailyRevenue_DefaultsToLast30Days(t *testing.T) {
	store := &mockReportStore{}
	router := setupReportRouter(store)

	rr := doRequest(t, router, "GET", "/reports/revenue/daily", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	wantStart := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if !store.dailyArg.Start.Equal(wantStart) || !store.dailyArg.End.Equal(wantEnd) {
		t.Errorf("default range: got [%v, %v), want [%v, %v)", store.dailyArg.Start, store.dailyArg.End, wantStart, wantEnd)
	}
}

func TestDailyRevenue_BadRange(t *testing.T) {
	router := setupReportRouter(&mockReportStore{})

	for _, path := range []string{
		"/reports/revenue/daily?start=August",
		"/reports/revenue/daily?end=2026-13-40",
		"/reports/revenue/daily?start=2026-08-10&end=2026-08-01",
	} {
		rr := doRequest(t, router, "GET", path, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestDailyRevenue_SingleDayRange(t *testing.T) {
	store := &mockReportStore{}
	router := setupReportRouter(store)

	rr := doRequest(t, router, "GET", "/reports/revenue/daily?start=2026-08-15&end=2026-08-15", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	wantEnd := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
	if !store.dailyArg.End.Equal(wantEnd) {
		t.Errorf("end: got %v, want %v", store.dailyArg.End, wantEnd)
	}
}

func TestRevenueByType(t *testing.T) {
	store := &mockReportStore{byType: []database.RevenueByTypeRow{
		{OrderType: "counter", OrderCount: 20, Revenue: testNumeric("5200.00")},
		{OrderType: "self_checkout", OrderCount: 7, Revenue: testNumeric("1150.00")},
	}}
	router := setupReportRouter(store)

	rr := doRequest(t, router, "GET", "/reports/revenue/by-type?start=2026-08-01&end=2026-08-28", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rows := decodeResponse(t, rr)["rows"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	first := rows[0].(map[string]interface{})
	if first["order_type"] != "counter" || first["revenue"] != "5200.00" {
		t.Errorf("first row: got %v", first)
	}
	if first["order_count"] != float64(20) {
		t.Errorf("order_count: got %v, want 20", first["order_count"])
	}
}
