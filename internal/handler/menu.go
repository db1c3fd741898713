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
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListMenuPricesByItem(ctx context.Context, itemID uuid.UUID) ([]database.MenuPrice, error)
	CreateMenuPrice(ctx context.Context, arg database.CreateMenuPriceParams) (database.MenuPrice, error)
	DeleteMenuPricesByItem(ctx context.Context, itemID uuid.UUID) error
	ListMenuModifiersByItem(ctx context.Context, itemID uuid.UUID) ([]database.MenuModifier, error)
	CreateMenuModifier(ctx context.Context, arg database.CreateMenuModifierParams) (database.MenuModifier, error)
	DeleteMenuModifiersByItem(ctx context.Context, itemID uuid.UUID) error
}

// MenuHandler handles menu CRUD endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers menu CRUD endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// RegisterPublicRoutes registers the read-only menu for self-service clients.
func (h *MenuHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// --- Request / Response types ---

// menuPriceRequest declares one size. Order matters: the first declared size
// is the default when an order line does not pick one.
type menuPriceRequest struct {
	Size  string `json:"size"`
	Price string `json:"price"`
}

type menuModifierRequest struct {
	Name       string `json:"name"`
	PriceDelta string `json:"price_delta"`
}

type menuItemRequest struct {
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	SubCategory string                `json:"sub_category"`
	Description string                `json:"description"`
	ImageURL    string                `json:"image_url"`
	IsAvailable *bool                 `json:"is_available"`
	Pricing     []menuPriceRequest    `json:"pricing"`
	Modifiers   []menuModifierRequest `json:"modifiers"`
}

type menuPriceResponse struct {
	Size  string `json:"size"`
	Price string `json:"price"`
}

type menuModifierResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceDelta string    `json:"price_delta"`
}

type menuItemResponse struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Category    string                 `json:"category"`
	SubCategory string                 `json:"sub_category,omitempty"`
	Description string                 `json:"description,omitempty"`
	ImageURL    string                 `json:"image_url,omitempty"`
	IsAvailable bool                   `json:"is_available"`
	Pricing     []menuPriceResponse    `json:"pricing"`
	Modifiers   []menuModifierResponse `json:"modifiers,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// --- Handlers ---

// List returns all menu items with their size pricing.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		full, err := h.toResponse(r.Context(), item)
		if err != nil {
			log.Printf("ERROR: load menu item %s: %v", item.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, full)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one menu item by ID.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toResponse(r.Context(), item)
	if err != nil {
		log.Printf("ERROR: load menu item %s: %v", item.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a menu item with its pricing options.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if msg := validateMenuItemRequest(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        req.Name,
		Category:    req.Category,
		SubCategory: textOrNull(req.SubCategory),
		Description: textOrNull(req.Description),
		ImageURL:    textOrNull(req.ImageURL),
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// New items default to available; an explicit false flips them off.
	if req.IsAvailable != nil && !*req.IsAvailable {
		item, err = h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
			ID:          item.ID,
			Name:        item.Name,
			Category:    item.Category,
			SubCategory: item.SubCategory,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			IsAvailable: false,
		})
		if err != nil {
			log.Printf("ERROR: create menu item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	if err := h.replacePricing(r.Context(), item.ID, req); err != nil {
		log.Printf("ERROR: create menu pricing: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toResponse(r.Context(), item)
	if err != nil {
		log.Printf("ERROR: load menu item %s: %v", item.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Update replaces a menu item and its pricing options.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if msg := validateMenuItemRequest(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		SubCategory: textOrNull(req.SubCategory),
		Description: textOrNull(req.Description),
		ImageURL:    textOrNull(req.ImageURL),
		IsAvailable: available,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.replacePricing(r.Context(), item.ID, req); err != nil {
		log.Printf("ERROR: update menu pricing: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.toResponse(r.Context(), item)
	if err != nil {
		log.Printf("ERROR: load menu item %s: %v", item.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a menu item. Past order lines keep their captured name and
// price, so a hard delete does not rewrite history.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func validateMenuItemRequest(req menuItemRequest) string {
	if req.Name == "" || req.Category == "" {
		return "name and category are required"
	}
	if len(req.Pricing) == 0 {
		return "at least one pricing option is required"
	}
	seen := make(map[string]bool)
	for _, p := range req.Pricing {
		if p.Size == "" {
			return "pricing size is required"
		}
		if seen[p.Size] {
			return "duplicate pricing size: " + p.Size
		}
		seen[p.Size] = true
		d, err := decimal.NewFromString(p.Price)
		if err != nil || d.IsNegative() {
			return "invalid price for size " + p.Size
		}
	}
	for _, m := range req.Modifiers {
		if m.Name == "" {
			return "modifier name is required"
		}
		if _, err := decimal.NewFromString(m.PriceDelta); err != nil {
			return "invalid price_delta for modifier " + m.Name
		}
	}
	return ""
}

// replacePricing rewrites the item's price and modifier rows in request
// order, preserving the declared-first default size.
func (h *MenuHandler) replacePricing(ctx context.Context, itemID uuid.UUID, req menuItemRequest) error {
	if err := h.store.DeleteMenuPricesByItem(ctx, itemID); err != nil {
		return err
	}
	for i, p := range req.Pricing {
		price, _ := decimal.NewFromString(p.Price)
		if _, err := h.store.CreateMenuPrice(ctx, database.CreateMenuPriceParams{
			ItemID:    itemID,
			SizeLabel: p.Size,
			Price:     decimalToNumeric(price),
			Position:  int32(i),
		}); err != nil {
			return err
		}
	}

	if err := h.store.DeleteMenuModifiersByItem(ctx, itemID); err != nil {
		return err
	}
	for _, m := range req.Modifiers {
		delta, _ := decimal.NewFromString(m.PriceDelta)
		if _, err := h.store.CreateMenuModifier(ctx, database.CreateMenuModifierParams{
			ItemID:     itemID,
			Name:       m.Name,
			PriceDelta: decimalToNumeric(delta),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *MenuHandler) toResponse(ctx context.Context, item database.MenuItem) (menuItemResponse, error) {
	prices, err := h.store.ListMenuPricesByItem(ctx, item.ID)
	if err != nil {
		return menuItemResponse{}, err
	}
	mods, err := h.store.ListMenuModifiersByItem(ctx, item.ID)
	if err != nil {
		return menuItemResponse{}, err
	}

	resp := menuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		IsAvailable: item.IsAvailable,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		Pricing:     make([]menuPriceResponse, len(prices)),
	}
	if item.SubCategory.Valid {
		resp.SubCategory = item.SubCategory.String
	}
	if item.Description.Valid {
		resp.Description = item.Description.String
	}
	if item.ImageURL.Valid {
		resp.ImageURL = item.ImageURL.String
	}
	for i, p := range prices {
		resp.Pricing[i] = menuPriceResponse{Size: p.SizeLabel, Price: numericToString(p.Price)}
	}
	for _, m := range mods {
		resp.Modifiers = append(resp.Modifiers, menuModifierResponse{
			ID:         m.ID,
			Name:       m.Name,
			PriceDelta: numericToString(m.PriceDelta),
		})
	}
	return resp, nil
}
