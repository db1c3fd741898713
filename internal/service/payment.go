package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/enum"
	"github.com/kapehan-pos/api/internal/till"
	"github.com/shopspring/decimal"
)

// Errors returned by the payment service.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPayable      = errors.New("order is not payable")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// PaymentStore defines the DB methods needed to settle orders.
// Satisfied by *database.Queries (and its WithTx variant).
type PaymentStore interface {
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	SettleOrder(ctx context.Context, arg database.SettleOrderParams) (database.Order, error)
	SumCashMovements(ctx context.Context) (pgtype.Numeric, error)
	CreateCashMovement(ctx context.Context, arg database.CreateCashMovementParams) (database.CashMovement, error)
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// SettleRequest is the validated input for settling an order.
type SettleRequest struct {
	OrderID       uuid.UUID
	PaymentMethod string
	CashReceived  string // decimal string, cash only
	StaffID       uuid.UUID
}

// SettleResult is the settled order with the change due and resulting float.
type SettleResult struct {
	Order  database.Order
	Change decimal.Decimal
	Float  decimal.Decimal
}

// PaymentService handles order settlement and the till ledger.
type PaymentService struct {
	pool     TxBeginner
	newStore NewPaymentStore
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(pool TxBeginner, newStore NewPaymentStore) *PaymentService {
	return &PaymentService{pool: pool, newStore: newStore}
}

// Settle marks an order paid. Cash settlements validate the tendered amount
// against the order total and the change against the till float, then append
// the IN/OUT ledger movements in the same transaction that completes the
// order. The row lock taken by GetOrderForUpdate serializes concurrent
// settlements of the same order and keeps the float read consistent.
func (s *PaymentService) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	if !isValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status == enum.OrderStatusCompleted || order.Status == enum.OrderStatusCancelled {
		return nil, ErrOrderNotPayable
	}

	total := numericToDecimal(order.TotalAmount)
	change := decimal.Zero
	cashReceived := pgtype.Numeric{}

	if req.PaymentMethod == enum.PaymentMethodCash {
		tendered, err := decimal.NewFromString(req.CashReceived)
		if err != nil || tendered.IsNegative() {
			return nil, ErrInvalidAmount
		}

		float, err := store.SumCashMovements(ctx)
		if err != nil {
			return nil, fmt.Errorf("sum cash movements: %w", err)
		}

		change, err = till.Settle(total, tendered, numericToDecimal(float))
		if err != nil {
			return nil, err
		}
		cashReceived = decimalToNumeric(tendered)

		staffID := pgtype.UUID{}
		if req.StaffID != uuid.Nil {
			staffID = pgtype.UUID{Bytes: req.StaffID, Valid: true}
		}
		orderID := pgtype.UUID{Bytes: order.ID, Valid: true}

		if _, err := store.CreateCashMovement(ctx, database.CreateCashMovementParams{
			Direction: enum.CashDirectionIn,
			Amount:    decimalToNumeric(tendered),
			Reason:    enum.CashReasonCashReceived,
			OrderID:   orderID,
			StaffID:   staffID,
		}); err != nil {
			return nil, fmt.Errorf("record cash in: %w", err)
		}
		if change.IsPositive() {
			if _, err := store.CreateCashMovement(ctx, database.CreateCashMovementParams{
				Direction: enum.CashDirectionOut,
				Amount:    decimalToNumeric(change),
				Reason:    enum.CashReasonChangeGiven,
				OrderID:   orderID,
				StaffID:   staffID,
			}); err != nil {
				return nil, fmt.Errorf("record change out: %w", err)
			}
		}
	}

	settled, err := store.SettleOrder(ctx, database.SettleOrderParams{
		ID:            order.ID,
		PaymentMethod: req.PaymentMethod,
		CashReceived:  cashReceived,
		ChangeAmount:  decimalToNumeric(change),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotPayable
		}
		return nil, fmt.Errorf("settle order: %w", err)
	}

	var floatAfter decimal.Decimal
	if req.PaymentMethod == enum.PaymentMethodCash {
		sum, err := store.SumCashMovements(ctx)
		if err != nil {
			return nil, fmt.Errorf("sum cash movements: %w", err)
		}
		floatAfter = numericToDecimal(sum)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SettleResult{Order: settled, Change: change, Float: floatAfter}, nil
}

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodEWallet:
		return true
	}
	return false
}
