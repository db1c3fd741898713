package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/cart"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

const maxReceiptNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems       = errors.New("items are required")
	ErrInvalidOrderType = errors.New("invalid order_type")
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrItemNotFound     = errors.New("menu item not found or unavailable")
	ErrInvalidItemID    = errors.New("invalid item_id")
	ErrInvalidSize      = errors.New("size not offered for item")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextReceiptNumber(ctx context.Context) (int32, error)
	GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	ListMenuPricesByItem(ctx context.Context, itemID uuid.UUID) ([]database.MenuPrice, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	OrderType       string
	DiscountApplied bool
	CreatedBy       uuid.UUID // uuid.Nil for self-service channels
	Items           []CreateOrderLineRequest
}

// CreateOrderLineRequest is a single line in the order.
type CreateOrderLineRequest struct {
	ItemID   string
	Size     string
	Quantity int32
}

// CreateOrderResult is the full created order with its lines.
type CreateOrderResult struct {
	Order database.Order
	Lines []database.OrderLine
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	intn     cart.IntnFunc
}

// NewOrderService creates a new OrderService. intn supplies the prep-time
// jitter; pass nil to disable it.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, intn cart.IntnFunc) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, intn: intn}
}

// CreateOrder validates, prices the cart, and creates an order atomically.
// Retries up to maxReceiptNumberRetries times on receipt_number unique
// constraint violations (concurrent transactions racing to the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	orderType, err := validateOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	var lastErr error
	for attempt := 0; attempt < maxReceiptNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, orderType)
		if err == nil {
			return result, nil
		}
		if isReceiptNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isReceiptNumberConflict checks if the error is a unique constraint
// violation on the receipt number (pgconn error code 23505).
func isReceiptNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_receipt_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, orderType string) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next receipt number: %w", err)
	}
	receiptNumber := fmt.Sprintf("KPH-%06d", nextNum)

	// Price the cart against the catalog. Unit prices are captured here and
	// stay fixed on the order regardless of later catalog edits.
	c := &cart.Cart{DiscountApplied: req.DiscountApplied}
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidItemID)
		}

		dbItem, err := store.GetMenuItemForOrder(ctx, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrItemNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get menu item: %w", i, err)
		}
		prices, err := store.ListMenuPricesByItem(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: list prices: %w", i, err)
		}
		if len(prices) == 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, cart.ErrNoPricing)
		}

		item := cart.Item{ID: dbItem.ID, Name: dbItem.Name}
		for _, p := range prices {
			item.Pricing = append(item.Pricing, cart.PriceOption{
				Label: p.SizeLabel,
				Price: numericToDecimal(p.Price),
			})
		}

		if _, err := c.AddLine(item, line.Size, line.Quantity); err != nil {
			if errors.Is(err, cart.ErrInvalidSize) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidSize)
			}
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
	}

	totals := c.Totals()
	prepMinutes := c.EstimatePrepMinutes(s.intn)

	createdBy := pgtype.UUID{}
	if req.CreatedBy != uuid.Nil {
		createdBy = pgtype.UUID{Bytes: req.CreatedBy, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		ReceiptNumber:   receiptNumber,
		OrderType:       orderType,
		Status:          initialStatus(orderType),
		PaymentMethod:   enum.PaymentMethodPending,
		DiscountApplied: req.DiscountApplied,
		Subtotal:        decimalToNumeric(totals.Subtotal),
		DiscountAmount:  decimalToNumeric(totals.Discount),
		TotalAmount:     decimalToNumeric(totals.Total),
		PrepMinutes:     pgtype.Int4{Int32: int32(prepMinutes), Valid: true},
		CreatedBy:       createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var lines []database.OrderLine
	for _, l := range c.Lines {
		dbLine, err := store.CreateOrderLine(ctx, database.CreateOrderLineParams{
			OrderID:      order.ID,
			ItemID:       l.ItemID,
			ItemName:     l.ItemName,
			SelectedSize: l.SelectedSize,
			UnitPrice:    decimalToNumeric(l.UnitPrice),
			Quantity:     l.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
		lines = append(lines, dbLine)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Lines: lines}, nil
}

// --- Helpers ---

func validateOrderType(s string) (string, error) {
	switch s {
	case enum.OrderTypeCounter, enum.OrderTypePOS,
		enum.OrderTypeSelfCheckout, enum.OrderTypeChatbot:
		return s, nil
	}
	return "", ErrInvalidOrderType
}

// initialStatus: self-service channels enter the queue as pending until a
// cashier accepts them; staffed channels go straight to received.
func initialStatus(orderType string) string {
	switch orderType {
	case enum.OrderTypeSelfCheckout, enum.OrderTypeChatbot:
		return enum.OrderStatusPending
	}
	return enum.OrderStatusReceived
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
