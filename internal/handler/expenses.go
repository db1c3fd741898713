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
	"github.com/shopspring/decimal"
)

// ExpenseStore defines the database methods needed by expense handlers.
type ExpenseStore interface {
	ListExpenses(ctx context.Context) ([]database.Expense, error)
	CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error)
	SetExpenseDisbursed(ctx context.Context, arg database.SetExpenseDisbursedParams) (database.Expense, error)
	TryInsertDisbursementReset(ctx context.Context, resetDate pgtype.Date) (bool, error)
	ResetDisbursedFlags(ctx context.Context) error
}

// ExpenseHandler handles expense tracking endpoints.
type ExpenseHandler struct {
	store ExpenseStore
	now   func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler. now is injectable for
// tests; pass nil for time.Now.
func NewExpenseHandler(store ExpenseStore, now func() time.Time) *ExpenseHandler {
	if now == nil {
		now = time.Now
	}
	return &ExpenseHandler{store: store, now: now}
}

// RegisterRoutes registers expense endpoints on the given Chi router.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/disbursed", h.SetDisbursed)
	r.Post("/reset-disbursement", h.ResetDisbursement)
}

type expenseRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	IncurredOn  string `json:"incurred_on"` // YYYY-MM-DD, defaults to today
}

type setDisbursedRequest struct {
	Disbursed bool `json:"disbursed"`
}

type expenseResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      string    `json:"amount"`
	Disbursed   bool      `json:"disbursed"`
	IncurredOn  string    `json:"incurred_on"`
	CreatedAt   time.Time `json:"created_at"`
}

// List returns all recorded expenses, newest first.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context())
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = dbExpenseToResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create records an expense. New expenses start undisbursed.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Description == "" || req.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description and category are required"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	incurred := h.now().UTC()
	if req.IncurredOn != "" {
		incurred, err = time.Parse("2006-01-02", req.IncurredOn)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "incurred_on must be YYYY-MM-DD"})
			return
		}
	}

	expense, err := h.store.CreateExpense(r.Context(), database.CreateExpenseParams{
		Description: req.Description,
		Category:    req.Category,
		Amount:      decimalToNumeric(amount),
		IncurredOn:  pgtype.Date{Time: incurred, Valid: true},
	})
	if err != nil {
		log.Printf("ERROR: create expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbExpenseToResponse(expense))
}

// SetDisbursed flips the disbursed flag on one expense.
func (h *ExpenseHandler) SetDisbursed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense ID"})
		return
	}

	var req setDisbursedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	expense, err := h.store.SetExpenseDisbursed(r.Context(), database.SetExpenseDisbursedParams{
		ID:        id,
		Disbursed: req.Disbursed,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "expense not found"})
			return
		}
		log.Printf("ERROR: set expense disbursed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbExpenseToResponse(expense))
}

// ResetDisbursement clears every disbursed flag, at most once per calendar
// day. A second call on the same day is a no-op and says so.
func (h *ExpenseHandler) ResetDisbursement(w http.ResponseWriter, r *http.Request) {
	today := pgtype.Date{Time: h.now().UTC().Truncate(24 * time.Hour), Valid: true}

	claimed, err := h.store.TryInsertDisbursementReset(r.Context(), today)
	if err != nil {
		log.Printf("ERROR: claim disbursement reset: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !claimed {
		writeJSON(w, http.StatusOK, map[string]interface{}{"reset": false, "message": "disbursement already reset today"})
		return
	}

	if err := h.store.ResetDisbursedFlags(r.Context()); err != nil {
		log.Printf("ERROR: reset disbursed flags: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reset": true})
}

func dbExpenseToResponse(e database.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      numericToString(e.Amount),
		Disbursed:   e.Disbursed,
		IncurredOn:  e.IncurredOn.Time.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt,
	}
}
