package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/enum"
	"github.com/kapehan-pos/api/internal/middleware"
	"github.com/kapehan-pos/api/internal/service"
	"github.com/kapehan-pos/api/internal/ws"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// Broadcaster pushes order events to the kitchen feed.
// Satisfied by *ws.Hub; nil disables broadcasting.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers staff-facing order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Cancel)
}

// RegisterPublicRoutes registers the unauthenticated self-service ordering
// endpoint. Kiosk and chatbot clients create orders here; the order enters
// the queue as pending until a cashier accepts and settles it.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.CreateSelfService)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType       string                   `json:"order_type"`
	DiscountApplied bool                     `json:"discount_applied"`
	Items           []createOrderLineRequest `json:"items"`
}

type createOrderLineRequest struct {
	ItemID   string `json:"item_id"`
	Size     string `json:"size"`
	Quantity int32  `json:"quantity"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	ReceiptNumber   string              `json:"receipt_number"`
	OrderType       string              `json:"order_type"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	DiscountApplied bool                `json:"discount_applied"`
	Subtotal        string              `json:"subtotal"`
	DiscountAmount  string              `json:"discount_amount"`
	TotalAmount     string              `json:"total_amount"`
	CashReceived    string              `json:"cash_received,omitempty"`
	ChangeAmount    string              `json:"change_amount,omitempty"`
	PrepMinutes     int32               `json:"prep_minutes,omitempty"`
	CreatedBy       string              `json:"created_by,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	Lines           []orderLineResponse `json:"lines,omitempty"`
}

type orderLineResponse struct {
	ID           uuid.UUID `json:"id"`
	ItemID       uuid.UUID `json:"item_id"`
	ItemName     string    `json:"item_name"`
	SelectedSize string    `json:"selected_size"`
	UnitPrice    string    `json:"unit_price"`
	Quantity     int32     `json:"quantity"`
	Subtotal     string    `json:"subtotal"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Create handles POST /orders for authenticated staff.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	h.create(w, r, claims.StaffID, "")
}

// CreateSelfService handles POST /public/orders. No auth; the order type is
// restricted to the self-service channels.
func (h *OrderHandler) CreateSelfService(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, uuid.Nil, enum.OrderTypeSelfCheckout)
}

// create is the shared creation path. defaultType, when set, restricts which
// order types the caller may claim.
func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request, createdBy uuid.UUID, defaultType string) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.OrderType == "" {
		if defaultType == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_type is required"})
			return
		}
		req.OrderType = defaultType
	}
	if defaultType != "" && !isSelfServiceType(req.OrderType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_type not allowed for self-service"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	for i, item := range req.Items {
		if item.ItemID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "item_id is required"),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity must be > 0"),
			})
			return
		}
	}

	svcItems := make([]service.CreateOrderLineRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderLineRequest{
			ItemID:   item.ItemID,
			Size:     item.Size,
			Quantity: item.Quantity,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		OrderType:       req.OrderType,
		DiscountApplied: req.DiscountApplied,
		CreatedBy:       createdBy,
		Items:           svcItems,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(result)
	h.broadcast("order.created", resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders with status, order_type, and date filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	params := database.ListOrdersParams{Limit: limit, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := r.URL.Query().Get("order_type"); s != "" {
		params.OrderType = pgtype.Text{String: s, Valid: true}
	}
	if s := r.URL.Query().Get("date"); s != "" {
		day, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
		params.StartDate = pgtype.Timestamptz{Time: day, Valid: true}
		params.EndDate = pgtype.Timestamptz{Time: day, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id} including lines.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	lines, err := h.store.ListOrderLinesByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Lines = make([]orderLineResponse, len(lines))
	for i, l := range lines {
		resp.Lines[i] = dbOrderLineToResponse(l)
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	if !isValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	// Fetch current order to validate transition
	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := validateStatusTransition(current.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:         orderID,
		Status:     req.Status,
		FromStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No rows updated: status changed between our read and write.
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(updated)
	h.broadcast("order.updated", resp)
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles DELETE /orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	// The SQL enforces the precondition atomically: it only updates if the
	// order exists AND is not already completed or cancelled.
	cancelled, err := h.store.CancelOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Fetch to give a better error message.
			current, fetchErr := h.store.GetOrder(r.Context(), orderID)
			if fetchErr != nil {
				if errors.Is(fetchErr, pgx.ErrNoRows) {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
					return
				}
				log.Printf("ERROR: get order for cancel: %v", fetchErr)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				return
			}
			if current.Status == enum.OrderStatusCompleted {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "cannot cancel a completed order"})
				return
			}
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is already cancelled"})
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(cancelled)
	h.broadcast("order.cancelled", resp)
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *OrderHandler) broadcast(eventType string, v interface{}) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: payload})
}

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrItemNotFound) ||
		errors.Is(err, service.ErrInvalidItemID) ||
		errors.Is(err, service.ErrInvalidSize)
}

func isSelfServiceType(s string) bool {
	return s == enum.OrderTypeSelfCheckout || s == enum.OrderTypeChatbot
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusReceived, enum.OrderStatusPreparing,
		enum.OrderStatusReady, enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

// validTransitions is the order lifecycle. Completion normally happens via
// settlement; the ready->completed edge covers orders already paid up front.
var validTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusReceived, enum.OrderStatusCancelled},
	enum.OrderStatusReceived:  {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

func validateStatusTransition(from, to string) error {
	for _, allowed := range validTransitions[from] {
		if to == allowed {
			return nil
		}
	}
	return errors.New("cannot transition from " + from + " to " + to)
}

func toOrderResponse(result *service.CreateOrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Lines = make([]orderLineResponse, len(result.Lines))
	for i, l := range result.Lines {
		resp.Lines[i] = dbOrderLineToResponse(l)
	}
	return resp
}

// dbOrderToResponse converts a database.Order to an orderResponse.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		ReceiptNumber:   o.ReceiptNumber,
		OrderType:       o.OrderType,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		DiscountApplied: o.DiscountApplied,
		Subtotal:        numericToString(o.Subtotal),
		DiscountAmount:  numericToString(o.DiscountAmount),
		TotalAmount:     numericToString(o.TotalAmount),
		CreatedAt:       o.CreatedAt,
	}
	if o.CashReceived.Valid {
		resp.CashReceived = numericToString(o.CashReceived)
	}
	if o.ChangeAmount.Valid {
		resp.ChangeAmount = numericToString(o.ChangeAmount)
	}
	if o.PrepMinutes.Valid {
		resp.PrepMinutes = o.PrepMinutes.Int32
	}
	if o.CreatedBy.Valid {
		resp.CreatedBy = uuid.UUID(o.CreatedBy.Bytes).String()
	}
	if o.CompletedAt.Valid {
		t := o.CompletedAt.Time
		resp.CompletedAt = &t
	}
	return resp
}

func dbOrderLineToResponse(l database.OrderLine) orderLineResponse {
	unit := numericToDecimal(l.UnitPrice)
	return orderLineResponse{
		ID:           l.ID,
		ItemID:       l.ItemID,
		ItemName:     l.ItemName,
		SelectedSize: l.SelectedSize,
		UnitPrice:    numericToString(l.UnitPrice),
		Quantity:     l.Quantity,
		Subtotal:     unit.Mul(decimal.NewFromInt32(l.Quantity)).StringFixed(2),
	}
}
