package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/handler"
	mw "github.com/kapehan-pos/api/internal/middleware"
	"github.com/shopspring/decimal"
)

// --- Mock store ---

type mockTillStore struct {
	movements []database.CashMovement
}

func (m *mockTillStore) SumCashMovements(_ context.Context) (pgtype.Numeric, error) {
	sum := decimal.Zero
	for _, mv := range m.movements {
		amt, _ := decimal.NewFromString(numericFixed(mv.Amount))
		if mv.Direction == "OUT" {
			amt = amt.Neg()
		}
		sum = sum.Add(amt)
	}
	return testNumeric(sum.StringFixed(2)), nil
}

func (m *mockTillStore) ListCashMovements(_ context.Context, limit int32) ([]database.CashMovement, error) {
	if int(limit) < len(m.movements) {
		return m.movements[:limit], nil
	}
	return m.movements, nil
}

func (m *mockTillStore) CreateCashMovement(_ context.Context, arg database.CreateCashMovementParams) (database.CashMovement, error) {
	mv := database.CashMovement{
		ID:        uuid.New(),
		Direction: arg.Direction,
		Amount:    arg.Amount,
		Reason:    arg.Reason,
		OrderID:   arg.OrderID,
		StaffID:   arg.StaffID,
		CreatedAt: time.Now(),
	}
	m.movements = append(m.movements, mv)
	return mv, nil
}

func numericFixed(n pgtype.Numeric) string {
	val, err := n.Value()
	if err != nil || val == nil {
		return "0"
	}
	return val.(string)
}

func setupTillRouter(store *mockTillStore) *chi.Mux {
	h := handler.NewTillHandler(store)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(testJWTSecret))
		r.Route("/till", h.RegisterRoutes)
	})
	return r
}

// --- Tests ---

func TestTillFloat_SignedSum(t *testing.T) {
	store := &mockTillStore{movements: []database.CashMovement{
		{ID: uuid.New(), Direction: "IN", Amount: testNumeric("500.00"), Reason: "opening_float"},
		{ID: uuid.New(), Direction: "IN", Amount: testNumeric("300.00"), Reason: "cash_received"},
		{ID: uuid.New(), Direction: "OUT", Amount: testNumeric("60.00"), Reason: "change_given"},
	}}
	router := setupTillRouter(store)

	rr := doAuthRequest(t, router, "GET", "/till/float", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got := decodeResponse(t, rr)["float"]; got != "740.00" {
		t.Errorf("float: got %v, want 740.00", got)
	}
}

func TestTillAdjust_RecordsStaffFromToken(t *testing.T) {
	store := &mockTillStore{}
	router := setupTillRouter(store)

	rr := doAuthRequest(t, router, "POST", "/till/adjustments", map[string]interface{}{
		"direction": "OUT",
		"amount":    "200.00",
		"reason":    "bank drop",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["direction"] != "OUT" {
		t.Errorf("direction: got %v, want OUT", resp["direction"])
	}
	if resp["reason"] != "bank drop" {
		t.Errorf("reason: got %v, want bank drop", resp["reason"])
	}
	if resp["staff_id"] == nil || resp["staff_id"] == "" {
		t.Error("staff_id should be recorded from the token claims")
	}
	if _, ok := resp["order_id"]; ok {
		t.Error("order_id should be omitted for manual adjustments")
	}
}

func TestTillAdjust_DefaultsReason(t *testing.T) {
	store := &mockTillStore{}
	router := setupTillRouter(store)

	rr := doAuthRequest(t, router, "POST", "/till/adjustments", map[string]interface{}{
		"direction": "IN",
		"amount":    "50.00",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got := decodeResponse(t, rr)["reason"]; got != "adjustment" {
		t.Errorf("reason: got %v, want adjustment", got)
	}
}

func TestTillAdjust_Validation(t *testing.T) {
	router := setupTillRouter(&mockTillStore{})

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"bad direction", map[string]interface{}{"direction": "SIDEWAYS", "amount": "10.00"}},
		{"zero amount", map[string]interface{}{"direction": "IN", "amount": "0"}},
		{"negative amount", map[string]interface{}{"direction": "IN", "amount": "-5.00"}},
		{"non-numeric amount", map[string]interface{}{"direction": "IN", "amount": "ten"}},
	}
	for _, tc := range cases {
		rr := doAuthRequest(t, router, "POST", "/till/adjustments", tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", tc.name, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestTillMovements_RespectsLimit(t *testing.T) {
	store := &mockTillStore{}
	for i := 0; i < 5; i++ {
		store.movements = append(store.movements, database.CashMovement{
			ID: uuid.New(), Direction: "IN", Amount: testNumeric("10.00"), Reason: "cash_received",
		})
	}
	router := setupTillRouter(store)

	rr := doAuthRequest(t, router, "GET", "/till/movements?limit=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got := len(decodeListResponse(t, rr)); got != 3 {
		t.Errorf("movements: got %d, want 3", got)
	}
}

func TestTill_RequiresToken(t *testing.T) {
	router := setupTillRouter(&mockTillStore{})

	rr := doRequest(t, router, "GET", "/till/float", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
