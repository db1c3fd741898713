package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/enum"
	"github.com/kapehan-pos/api/internal/middleware"
	"github.com/shopspring/decimal"
)

// TillStore defines the database methods needed by till handlers.
type TillStore interface {
	SumCashMovements(ctx context.Context) (pgtype.Numeric, error)
	ListCashMovements(ctx context.Context, limit int32) ([]database.CashMovement, error)
	CreateCashMovement(ctx context.Context, arg database.CreateCashMovementParams) (database.CashMovement, error)
}

// TillHandler exposes the drawer float and its ledger.
type TillHandler struct {
	store TillStore
}

// NewTillHandler creates a new TillHandler.
func NewTillHandler(store TillStore) *TillHandler {
	return &TillHandler{store: store}
}

// RegisterRoutes registers till endpoints on the given Chi router.
func (h *TillHandler) RegisterRoutes(r chi.Router) {
	r.Get("/float", h.Float)
	r.Get("/movements", h.Movements)
	r.Post("/adjustments", h.Adjust)
}

type adjustRequest struct {
	Direction string `json:"direction"` // IN or OUT
	Amount    string `json:"amount"`
	Reason    string `json:"reason"` // free text, stored as-is
}

type cashMovementResponse struct {
	ID        uuid.UUID  `json:"id"`
	Direction string     `json:"direction"`
	Amount    string     `json:"amount"`
	Reason    string     `json:"reason"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	StaffID   *uuid.UUID `json:"staff_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Float returns the current drawer float, the signed sum of the ledger.
func (h *TillHandler) Float(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.SumCashMovements(r.Context())
	if err != nil {
		log.Printf("ERROR: sum cash movements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"float": numericToString(sum)})
}

// Movements returns the most recent ledger entries, newest first.
func (h *TillHandler) Movements(w http.ResponseWriter, r *http.Request) {
	limit, _ := parsePagination(r)

	movements, err := h.store.ListCashMovements(r.Context(), limit)
	if err != nil {
		log.Printf("ERROR: list cash movements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]cashMovementResponse, len(movements))
	for i, m := range movements {
		resp[i] = dbMovementToResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Adjust appends a manual IN or OUT movement, for drops, top-ups and count
// corrections. The float is never set directly; every change is a ledger row.
func (h *TillHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Direction != enum.CashDirectionIn && req.Direction != enum.CashDirectionOut {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "direction must be IN or OUT"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a positive number"})
		return
	}

	reason := enum.CashReasonAdjustment
	if req.Reason != "" {
		reason = req.Reason
	}

	var staffID pgtype.UUID
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		staffID = pgtype.UUID{Bytes: claims.StaffID, Valid: true}
	}

	movement, err := h.store.CreateCashMovement(r.Context(), database.CreateCashMovementParams{
		Direction: req.Direction,
		Amount:    decimalToNumeric(amount),
		Reason:    reason,
		StaffID:   staffID,
	})
	if err != nil {
		log.Printf("ERROR: create cash movement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbMovementToResponse(movement))
}

func dbMovementToResponse(m database.CashMovement) cashMovementResponse {
	resp := cashMovementResponse{
		ID:        m.ID,
		Direction: m.Direction,
		Amount:    numericToString(m.Amount),
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
	if m.OrderID.Valid {
		id := uuid.UUID(m.OrderID.Bytes)
		resp.OrderID = &id
	}
	if m.StaffID.Valid {
		id := uuid.UUID(m.StaffID.Bytes)
		resp.StaffID = &id
	}
	return resp
}
