package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/handler"
)

// --- Mock store ---

type mockMenuStore struct {
	items     map[uuid.UUID]database.MenuItem
	prices    map[uuid.UUID][]database.MenuPrice
	modifiers map[uuid.UUID][]database.MenuModifier
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{
		items:     make(map[uuid.UUID]database.MenuItem),
		prices:    make(map[uuid.UUID][]database.MenuPrice),
		modifiers: make(map[uuid.UUID][]database.MenuModifier),
	}
}

func (m *mockMenuStore) ListMenuItems(_ context.Context) ([]database.MenuItem, error) {
	var out []database.MenuItem
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *mockMenuStore) GetMenuItem(_ context.Context, id uuid.UUID) (database.MenuItem, error) {
	item, ok := m.items[id]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	now := time.Now()
	item := database.MenuItem{
		ID:          uuid.New(),
		Name:        arg.Name,
		Category:    arg.Category,
		SubCategory: arg.SubCategory,
		Description: arg.Description,
		ImageURL:    arg.ImageURL,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item.Name = arg.Name
	item.Category = arg.Category
	item.SubCategory = arg.SubCategory
	item.Description = arg.Description
	item.ImageURL = arg.ImageURL
	item.IsAvailable = arg.IsAvailable
	item.UpdatedAt = time.Now()
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.items[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.items, id)
	delete(m.prices, id)
	delete(m.modifiers, id)
	return id, nil
}

func (m *mockMenuStore) ListMenuPricesByItem(_ context.Context, itemID uuid.UUID) ([]database.MenuPrice, error) {
	return m.prices[itemID], nil
}

func (m *mockMenuStore) CreateMenuPrice(_ context.Context, arg database.CreateMenuPriceParams) (database.MenuPrice, error) {
	p := database.MenuPrice{
		ID:        uuid.New(),
		ItemID:    arg.ItemID,
		SizeLabel: arg.SizeLabel,
		Price:     arg.Price,
		Position:  arg.Position,
	}
	m.prices[arg.ItemID] = append(m.prices[arg.ItemID], p)
	return p, nil
}

func (m *mockMenuStore) DeleteMenuPricesByItem(_ context.Context, itemID uuid.UUID) error {
	delete(m.prices, itemID)
	return nil
}

func (m *mockMenuStore) ListMenuModifiersByItem(_ context.Context, itemID uuid.UUID) ([]database.MenuModifier, error) {
	return m.modifiers[itemID], nil
}

func (m *mockMenuStore) CreateMenuModifier(_ context.Context, arg database.CreateMenuModifierParams) (database.MenuModifier, error) {
	mod := database.MenuModifier{
		ID:         uuid.New(),
		ItemID:     arg.ItemID,
		Name:       arg.Name,
		PriceDelta: arg.PriceDelta,
	}
	m.modifiers[arg.ItemID] = append(m.modifiers[arg.ItemID], mod)
	return mod, nil
}

func (m *mockMenuStore) DeleteMenuModifiersByItem(_ context.Context, itemID uuid.UUID) error {
	delete(m.modifiers, itemID)
	return nil
}

func setupMenuRouter(store *mockMenuStore) *chi.Mux {
	h := handler.NewMenuHandler(store)
	r := chi.NewRouter()
	r.Route("/menu", h.RegisterRoutes)
	return r
}

func latteBody() map[string]interface{} {
	return map[string]interface{}{
		"name":     "Cafe Latte",
		"category": "coffee",
		"pricing": []map[string]interface{}{
			{"size": "tall", "price": "120.00"},
			{"size": "grande", "price": "150.00"},
		},
	}
}

// --- Tests ---

func TestMenuCreate_PreservesPricingOrder(t *testing.T) {
	store := newMockMenuStore()
	router := setupMenuRouter(store)

	rr := doRequest(t, router, "POST", "/menu", latteBody())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	pricing := resp["pricing"].([]interface{})
	if len(pricing) != 2 {
		t.Fatalf("pricing: got %d options, want 2", len(pricing))
	}
	first := pricing[0].(map[string]interface{})
	if first["size"] != "tall" || first["price"] != "120.00" {
		t.Errorf("first option: got %v, want tall/120.00", first)
	}
	if resp["is_available"] != true {
		t.Errorf("is_available: got %v, want true", resp["is_available"])
	}
}

func TestMenuCreate_NoPricing(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore())

	body := latteBody()
	body["pricing"] = []interface{}{}

	rr := doRequest(t, router, "POST", "/menu", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuCreate_DuplicateSize(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore())

	body := latteBody()
	body["pricing"] = []map[string]interface{}{
		{"size": "tall", "price": "120.00"},
		{"size": "tall", "price": "130.00"},
	}

	rr := doRequest(t, router, "POST", "/menu", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuCreate_NegativePrice(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore())

	body := latteBody()
	body["pricing"] = []map[string]interface{}{{"size": "tall", "price": "-5"}}

	rr := doRequest(t, router, "POST", "/menu", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuCreate_UnavailableOnRequest(t *testing.T) {
	store := newMockMenuStore()
	router := setupMenuRouter(store)

	body := latteBody()
	body["is_available"] = false

	rr := doRequest(t, router, "POST", "/menu", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["is_available"] != false {
		t.Errorf("is_available: got %v, want false", resp["is_available"])
	}
}

func TestMenuUpdate_ReplacesPricing(t *testing.T) {
	store := newMockMenuStore()
	router := setupMenuRouter(store)

	rr := doRequest(t, router, "POST", "/menu", latteBody())
	id := decodeResponse(t, rr)["id"].(string)

	body := latteBody()
	body["pricing"] = []map[string]interface{}{{"size": "venti", "price": "180.00"}}

	rr = doRequest(t, router, "PUT", "/menu/"+id, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	pricing := resp["pricing"].([]interface{})
	if len(pricing) != 1 {
		t.Fatalf("pricing: got %d options, want 1 after replace", len(pricing))
	}
	if pricing[0].(map[string]interface{})["size"] != "venti" {
		t.Errorf("size: got %v, want venti", pricing[0])
	}
}

func TestMenuGet_NotFound(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore())

	rr := doRequest(t, router, "GET", "/menu/"+uuid.NewString(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMenuDelete(t *testing.T) {
	store := newMockMenuStore()
	router := setupMenuRouter(store)

	rr := doRequest(t, router, "POST", "/menu", latteBody())
	id := decodeResponse(t, rr)["id"].(string)

	rr = doRequest(t, router, "DELETE", "/menu/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = doRequest(t, router, "DELETE", "/menu/"+id, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
