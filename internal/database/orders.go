package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, receipt_number, order_type, status, payment_method,
	discount_applied, subtotal, discount_amount, total_amount, cash_received,
	change_amount, prep_minutes, created_by, created_at, updated_at, completed_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ReceiptNumber, &o.OrderType, &o.Status,
		&o.PaymentMethod, &o.DiscountApplied, &o.Subtotal, &o.DiscountAmount,
		&o.TotalAmount, &o.CashReceived, &o.ChangeAmount, &o.PrepMinutes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
	return o, err
}

// GetNextReceiptNumber derives the next sequence from the MAX stored number.
// Concurrent transactions can race to the same value; the caller retries on
// the receipt_number unique violation.
func (q *Queries) GetNextReceiptNumber(ctx context.Context) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(receipt_number FROM 5) AS int)), 0) + 1
		FROM orders`).Scan(&next)
	return next, err
}

type CreateOrderParams struct {
	ReceiptNumber   string
	OrderType       string
	Status          string
	PaymentMethod   string
	DiscountApplied bool
	Subtotal        pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	TotalAmount     pgtype.Numeric
	PrepMinutes     pgtype.Int4
	CreatedBy       pgtype.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		INSERT INTO orders (receipt_number, order_type, status, payment_method,
			discount_applied, subtotal, discount_amount, total_amount,
			prep_minutes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		arg.ReceiptNumber, arg.OrderType, arg.Status, arg.PaymentMethod,
		arg.DiscountApplied, arg.Subtotal, arg.DiscountAmount, arg.TotalAmount,
		arg.PrepMinutes, arg.CreatedBy))
}

type CreateOrderLineParams struct {
	OrderID      uuid.UUID
	ItemID       uuid.UUID
	ItemName     string
	SelectedSize string
	UnitPrice    pgtype.Numeric
	Quantity     int32
}

func (q *Queries) CreateOrderLine(ctx context.Context, arg CreateOrderLineParams) (OrderLine, error) {
	var l OrderLine
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_lines (order_id, item_id, item_name, selected_size, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, item_id, item_name, selected_size, unit_price, quantity`,
		arg.OrderID, arg.ItemID, arg.ItemName, arg.SelectedSize, arg.UnitPrice, arg.Quantity).
		Scan(&l.ID, &l.OrderID, &l.ItemID, &l.ItemName, &l.SelectedSize, &l.UnitPrice, &l.Quantity)
	return l, err
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// GetOrderForUpdate locks the order row to serialize concurrent settlements.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR NO KEY UPDATE`, id))
}

type ListOrdersParams struct {
	Status    pgtype.Text
	OrderType pgtype.Text
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR order_type = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4 + interval '1 day')
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`,
		arg.Status, arg.OrderType, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (q *Queries) ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, item_id, item_name, selected_size, unit_price, quantity
		FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.ItemName,
			&l.SelectedSize, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	FromStatus string
}

// UpdateOrderStatus performs a compare-and-swap on the status column: no rows
// are updated when the order moved under us. completed_at is stamped exactly
// once, on the terminal transition.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2,
			updated_at = now(),
			completed_at = CASE WHEN $2 = 'completed' AND completed_at IS NULL THEN now() ELSE completed_at END
		WHERE id = $1 AND status = $3
		RETURNING `+orderColumns,
		arg.ID, arg.Status, arg.FromStatus))
}

// CancelOrder only succeeds while the order is still cancellable.
func (q *Queries) CancelOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
		RETURNING `+orderColumns, id))
}

type SettleOrderParams struct {
	ID            uuid.UUID
	PaymentMethod string
	CashReceived  pgtype.Numeric
	ChangeAmount  pgtype.Numeric
}

// SettleOrder records payment and completes the order in one statement.
func (q *Queries) SettleOrder(ctx context.Context, arg SettleOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders
		SET payment_method = $2,
			cash_received = $3,
			change_amount = $4,
			status = 'completed',
			updated_at = now(),
			completed_at = CASE WHEN completed_at IS NULL THEN now() ELSE completed_at END
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
		RETURNING `+orderColumns,
		arg.ID, arg.PaymentMethod, arg.CashReceived, arg.ChangeAmount))
}
