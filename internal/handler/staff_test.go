package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/handler"
)

// --- Mock store ---

type mockStaffStore struct {
	staff       map[uuid.UUID]database.Staff
	pinConflict bool // simulate active-PIN unique violation
}

func newMockStaffStore() *mockStaffStore {
	return &mockStaffStore{staff: make(map[uuid.UUID]database.Staff)}
}

func (m *mockStaffStore) ListStaff(_ context.Context) ([]database.Staff, error) {
	var out []database.Staff
	for _, s := range m.staff {
		if s.Status == "ACTIVE" {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStaffStore) GetStaff(_ context.Context, id uuid.UUID) (database.Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return database.Staff{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockStaffStore) CreateStaff(_ context.Context, arg database.CreateStaffParams) (database.Staff, error) {
	if m.pinConflict {
		return database.Staff{}, &pgconn.PgError{Code: "23505", ConstraintName: "staff_active_pin_code_key"}
	}
	for _, s := range m.staff {
		if s.Email == arg.Email || s.Username == arg.Username {
			return database.Staff{}, &pgconn.PgError{Code: "23505", ConstraintName: "staff_email_key"}
		}
	}
	now := time.Now()
	s := database.Staff{
		ID:               uuid.New(),
		FullName:         arg.FullName,
		Position:         arg.Position,
		Role:             arg.Role,
		DailyRate:        arg.DailyRate,
		Status:           "ACTIVE",
		PinCode:          arg.PinCode,
		SssNumber:        arg.SssNumber,
		TinNumber:        arg.TinNumber,
		PhilhealthNumber: arg.PhilhealthNumber,
		Email:            arg.Email,
		Username:         arg.Username,
		HashedPassword:   arg.HashedPassword,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.staff[s.ID] = s
	return s, nil
}

func (m *mockStaffStore) UpdateStaff(_ context.Context, arg database.UpdateStaffParams) (database.Staff, error) {
	s, ok := m.staff[arg.ID]
	if !ok || s.Status != "ACTIVE" {
		return database.Staff{}, pgx.ErrNoRows
	}
	s.FullName = arg.FullName
	s.Position = arg.Position
	s.Role = arg.Role
	s.DailyRate = arg.DailyRate
	s.PinCode = arg.PinCode
	s.Email = arg.Email
	s.UpdatedAt = time.Now()
	m.staff[s.ID] = s
	return s, nil
}

func (m *mockStaffStore) DeactivateStaff(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	s, ok := m.staff[id]
	if !ok || s.Status != "ACTIVE" {
		return uuid.Nil, pgx.ErrNoRows
	}
	s.Status = "INACTIVE"
	m.staff[id] = s
	return id, nil
}

func setupStaffRouter(store *mockStaffStore) *chi.Mux {
	h := handler.NewStaffHandler(store)
	r := chi.NewRouter()
	r.Route("/staff", h.RegisterRoutes)
	return r
}

func validStaffBody() map[string]interface{} {
	return map[string]interface{}{
		"full_name":  "Maria Santos",
		"position":   "Barista",
		"role":       "CASHIER",
		"daily_rate": "800.00",
		"pin":        "4321",
		"email":      "maria@kapehan.ph",
		"username":   "maria",
		"password":   "secret123",
	}
}

// --- Tests ---

func TestStaffCreate_Success(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	rr := doRequest(t, router, "POST", "/staff", validStaffBody())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["full_name"] != "Maria Santos" {
		t.Errorf("full_name: got %v", resp["full_name"])
	}
	if resp["daily_rate"] != "800.00" {
		t.Errorf("daily_rate: got %v, want 800.00", resp["daily_rate"])
	}
	if resp["status"] != "ACTIVE" {
		t.Errorf("status: got %v, want ACTIVE", resp["status"])
	}
	if _, ok := resp["hashed_password"]; ok {
		t.Error("hashed_password must not appear in the response")
	}
}

func TestStaffCreate_MissingFields(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	body := validStaffBody()
	delete(body, "password")

	rr := doRequest(t, router, "POST", "/staff", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestStaffCreate_InvalidRole(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	body := validStaffBody()
	body["role"] = "JANITOR"

	rr := doRequest(t, router, "POST", "/staff", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestStaffCreate_InvalidPin(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	for _, pin := range []string{"12", "1234567", "12ab"} {
		body := validStaffBody()
		body["pin"] = pin
		rr := doRequest(t, router, "POST", "/staff", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("pin %q: got %d, want %d", pin, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestStaffCreate_NegativeDailyRate(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	body := validStaffBody()
	body["daily_rate"] = "-100"

	rr := doRequest(t, router, "POST", "/staff", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestStaffCreate_PinConflict(t *testing.T) {
	store := newMockStaffStore()
	store.pinConflict = true
	router := setupStaffRouter(store)

	rr := doRequest(t, router, "POST", "/staff", validStaffBody())

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "PIN already in use by another active staff member" {
		t.Errorf("error: got %v", resp["error"])
	}
}

func TestStaffCreate_DuplicateEmail(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	rr := doRequest(t, router, "POST", "/staff", validStaffBody())
	if rr.Code != http.StatusCreated {
		t.Fatalf("first create: got %d", rr.Code)
	}

	rr = doRequest(t, router, "POST", "/staff", validStaffBody())
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestStaffGet_NotFound(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	rr := doRequest(t, router, "GET", "/staff/"+uuid.NewString(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestStaffDelete_Deactivates(t *testing.T) {
	store := newMockStaffStore()
	router := setupStaffRouter(store)

	rr := doRequest(t, router, "POST", "/staff", validStaffBody())
	resp := decodeResponse(t, rr)
	id := resp["id"].(string)

	rr = doRequest(t, router, "DELETE", "/staff/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	// The row survives as INACTIVE; a second delete finds nothing active.
	rr = doRequest(t, router, "DELETE", "/staff/"+id, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doRequest(t, router, "GET", "/staff", nil)
	if got := len(decodeListResponse(t, rr)); got != 0 {
		t.Errorf("active list: got %d entries, want 0", got)
	}
}
