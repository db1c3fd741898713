package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kapehan-pos/api/internal/middleware"
	"github.com/kapehan-pos/api/internal/money"
	"github.com/kapehan-pos/api/internal/service"
	"github.com/kapehan-pos/api/internal/till"
	"github.com/kapehan-pos/api/internal/ws"
)

// PaymentServicer defines the service methods needed by payment handlers.
// Satisfied by *service.PaymentService; narrow interface for testability.
type PaymentServicer interface {
	Settle(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error)
}

// PaymentHandler handles order settlement endpoints.
type PaymentHandler struct {
	svc PaymentServicer
	hub Broadcaster
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer, hub Broadcaster) *PaymentHandler {
	return &PaymentHandler{svc: svc, hub: hub}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted under /orders.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{id}/settle", h.Settle)
}

// --- Request / Response types ---

type settleRequest struct {
	PaymentMethod string `json:"payment_method"`
	CashReceived  string `json:"cash_received"`
}

// receiptResponse is the printable money block of a settlement.
type receiptResponse struct {
	Total        string `json:"total"`
	CashReceived string `json:"cash_received,omitempty"`
	Change       string `json:"change,omitempty"`
}

type settleResponse struct {
	Order   orderResponse   `json:"order"`
	Change  string          `json:"change"`
	Float   string          `json:"till_float,omitempty"`
	Receipt receiptResponse `json:"receipt"`
}

// --- Handlers ---

// Settle handles POST /orders/{id}/settle.
func (h *PaymentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}

	result, err := h.svc.Settle(r.Context(), service.SettleRequest{
		OrderID:       orderID,
		PaymentMethod: req.PaymentMethod,
		CashReceived:  req.CashReceived,
		StaffID:       claims.StaffID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrOrderNotPayable):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not payable"})
		case errors.Is(err, service.ErrInvalidPaymentMethod), errors.Is(err, service.ErrInvalidAmount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, till.ErrInsufficientCash):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "cash received is less than the total due"})
		case errors.Is(err, till.ErrInsufficientFloat):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "till cannot cover the change due"})
		default:
			log.Printf("ERROR: settle order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	orderResp := dbOrderToResponse(result.Order)

	resp := settleResponse{
		Order:  orderResp,
		Change: result.Change.StringFixed(2),
		Receipt: receiptResponse{
			Total: money.Format(numericToDecimal(result.Order.TotalAmount)),
		},
	}
	if result.Order.CashReceived.Valid {
		resp.Float = money.String(result.Float)
		resp.Receipt.CashReceived = money.Format(numericToDecimal(result.Order.CashReceived))
		resp.Receipt.Change = money.Format(result.Change)
	}

	h.broadcast("order.paid", orderResp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) broadcast(eventType string, v interface{}) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: payload})
}
