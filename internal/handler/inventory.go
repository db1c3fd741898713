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
	"github.com/kapehan-pos/api/internal/stock"
	"github.com/shopspring/decimal"
)

// InventoryStore defines the database methods needed by inventory handlers.
type InventoryStore interface {
	ListInventoryItems(ctx context.Context) ([]database.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (database.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, arg database.UpdateInventoryItemParams) (database.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id uuid.UUID) error
	ListInventoryBatchesByItem(ctx context.Context, itemID uuid.UUID) ([]database.InventoryBatch, error)
	CreateInventoryBatch(ctx context.Context, arg database.CreateInventoryBatchParams) (database.InventoryBatch, error)
	UpdateInventoryBatchQuantity(ctx context.Context, arg database.UpdateInventoryBatchQuantityParams) (database.InventoryBatch, error)
	DeleteInventoryBatch(ctx context.Context, id uuid.UUID) error
}

// InventoryHandler handles inventory item and batch endpoints.
type InventoryHandler struct {
	store InventoryStore
	now   func() time.Time
}

// NewInventoryHandler creates a new InventoryHandler. now is injectable for
// tests; pass nil for time.Now.
func NewInventoryHandler(store InventoryStore, now func() time.Time) *InventoryHandler {
	if now == nil {
		now = time.Now
	}
	return &InventoryHandler{store: store, now: now}
}

// RegisterRoutes registers inventory endpoints on the given Chi router.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/batches", h.CreateBatch)
	r.Put("/batches/{batchID}", h.UpdateBatchQuantity)
	r.Delete("/batches/{batchID}", h.DeleteBatch)
}

// --- Request / Response types ---

type inventoryItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Cost     string `json:"cost"`
	Price    string `json:"price"`
	Vendor   string `json:"vendor"`
}

type inventoryBatchRequest struct {
	Quantity       int32  `json:"quantity"`
	ExpirationDate string `json:"expiration_date"` // YYYY-MM-DD, optional
}

type batchQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type inventoryBatchResponse struct {
	ID             uuid.UUID `json:"id"`
	Quantity       int32     `json:"quantity"`
	ExpirationDate *string   `json:"expiration_date"`
	ReceivedAt     time.Time `json:"received_at"`
}

type inventoryItemResponse struct {
	ID            uuid.UUID                `json:"id"`
	Name          string                   `json:"name"`
	Category      string                   `json:"category"`
	Unit          string                   `json:"unit"`
	Cost          string                   `json:"cost"`
	Price         string                   `json:"price"`
	Vendor        string                   `json:"vendor,omitempty"`
	TotalQuantity int32                    `json:"total_quantity"`
	Status        string                   `json:"status"`
	Alerts        []stock.ExpiryAlert      `json:"alerts"`
	Batches       []inventoryBatchResponse `json:"batches"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// --- Handlers ---

// List returns every inventory item with its derived stock evaluation.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListInventoryItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list inventory items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]inventoryItemResponse, 0, len(items))
	for _, item := range items {
		full, err := h.toResponse(r.Context(), item)
		if err != nil {
			log.Printf("ERROR: load inventory item %s: %v", item.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, full)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one inventory item with batches and stock evaluation.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := h.store.GetInventoryItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		log.Printf("ERROR: get inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toResponse(r.Context(), item)
	if err != nil {
		log.Printf("ERROR: load inventory item %s: %v", item.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds an inventory item with no batches yet.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := buildInventoryParams(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.CreateInventoryItem(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toResponse(r.Context(), item)
	if err != nil {
		log.Printf("ERROR: load inventory item %s: %v", item.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Update replaces an inventory item's descriptive fields. Batches are managed
// through the batch endpoints.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := buildInventoryParams(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.UpdateInventoryItem(r.Context(), database.UpdateInventoryItemParams{
		ID:       id,
		Name:     params.Name,
		Category: params.Category,
		Unit:     params.Unit,
		Cost:     params.Cost,
		Price:    params.Price,
		Vendor:   params.Vendor,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		log.Printf("ERROR: update inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toResponse(r.Context(), item)
	if err != nil {
		log.Printf("ERROR: load inventory item %s: %v", item.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete removes an inventory item and its batches.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if err := h.store.DeleteInventoryItem(r.Context(), id); err != nil {
		log.Printf("ERROR: delete inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateBatch records a received lot against an inventory item.
func (h *InventoryHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req inventoryBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity cannot be negative"})
		return
	}

	var expiry pgtype.Date
	if req.ExpirationDate != "" {
		d, err := time.Parse("2006-01-02", req.ExpirationDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expiration_date must be YYYY-MM-DD"})
			return
		}
		expiry = pgtype.Date{Time: d, Valid: true}
	}

	// The FK catches a missing item; surface it as a 404 rather than a 500.
	if _, err := h.store.GetInventoryItem(r.Context(), itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		log.Printf("ERROR: create batch item lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	batch, err := h.store.CreateInventoryBatch(r.Context(), database.CreateInventoryBatchParams{
		ItemID:         itemID,
		Quantity:       req.Quantity,
		ExpirationDate: expiry,
	})
	if err != nil {
		log.Printf("ERROR: create inventory batch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbBatchToResponse(batch))
}

// UpdateBatchQuantity adjusts a batch count after stocktake or usage.
func (h *InventoryHandler) UpdateBatchQuantity(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch ID"})
		return
	}

	var req batchQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity cannot be negative"})
		return
	}

	batch, err := h.store.UpdateInventoryBatchQuantity(r.Context(), database.UpdateInventoryBatchQuantityParams{
		ID:       batchID,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory batch not found"})
			return
		}
		log.Printf("ERROR: update inventory batch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbBatchToResponse(batch))
}

// DeleteBatch removes a batch, for spoiled or discarded stock.
func (h *InventoryHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch ID"})
		return
	}

	if err := h.store.DeleteInventoryBatch(r.Context(), batchID); err != nil {
		log.Printf("ERROR: delete inventory batch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func buildInventoryParams(req inventoryItemRequest) (database.CreateInventoryItemParams, string) {
	if req.Name == "" || req.Category == "" || req.Unit == "" {
		return database.CreateInventoryItemParams{}, "name, category and unit are required"
	}
	cost, err := decimal.NewFromString(req.Cost)
	if err != nil || cost.IsNegative() {
		return database.CreateInventoryItemParams{}, "invalid cost"
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return database.CreateInventoryItemParams{}, "invalid price"
	}
	return database.CreateInventoryItemParams{
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Cost:     decimalToNumeric(cost),
		Price:    decimalToNumeric(price),
		Vendor:   textOrNull(req.Vendor),
	}, ""
}

func dbBatchToResponse(b database.InventoryBatch) inventoryBatchResponse {
	resp := inventoryBatchResponse{
		ID:         b.ID,
		Quantity:   b.Quantity,
		ReceivedAt: b.ReceivedAt,
	}
	if b.ExpirationDate.Valid {
		s := b.ExpirationDate.Time.Format("2006-01-02")
		resp.ExpirationDate = &s
	}
	return resp
}

func (h *InventoryHandler) toResponse(ctx context.Context, item database.InventoryItem) (inventoryItemResponse, error) {
	batches, err := h.store.ListInventoryBatchesByItem(ctx, item.ID)
	if err != nil {
		return inventoryItemResponse{}, err
	}

	stockBatches := make([]stock.Batch, len(batches))
	batchResp := make([]inventoryBatchResponse, len(batches))
	for i, b := range batches {
		sb := stock.Batch{ID: b.ID, Quantity: b.Quantity}
		if b.ExpirationDate.Valid {
			t := b.ExpirationDate.Time
			sb.Expiration = &t
		}
		stockBatches[i] = sb
		batchResp[i] = dbBatchToResponse(b)
	}
	ev := stock.Evaluate(item.Name, stockBatches, h.now().UTC())

	resp := inventoryItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Category:      item.Category,
		Unit:          item.Unit,
		Cost:          numericToString(item.Cost),
		Price:         numericToString(item.Price),
		TotalQuantity: ev.TotalQuantity,
		Status:        ev.Status,
		Alerts:        ev.Alerts,
		Batches:       batchResp,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if item.Vendor.Valid {
		resp.Vendor = item.Vendor.String
	}
	return resp, nil
}
