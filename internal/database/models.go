package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Staff struct {
	ID               uuid.UUID
	FullName         string
	Position         string
	Role             string
	DailyRate        pgtype.Numeric
	Status           string
	PinCode          pgtype.Text
	SssNumber        pgtype.Text
	TinNumber        pgtype.Text
	PhilhealthNumber pgtype.Text
	Email            string
	Username         string
	HashedPassword   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Category    string
	SubCategory pgtype.Text
	Description pgtype.Text
	ImageURL    pgtype.Text
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MenuPrice struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	SizeLabel string
	Price     pgtype.Numeric
	Position  int32
}

type MenuModifier struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	Name       string
	PriceDelta pgtype.Numeric
}

type Order struct {
	ID              uuid.UUID
	ReceiptNumber   string
	OrderType       string
	Status          string
	PaymentMethod   string
	DiscountApplied bool
	Subtotal        pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	TotalAmount     pgtype.Numeric
	CashReceived    pgtype.Numeric
	ChangeAmount    pgtype.Numeric
	PrepMinutes     pgtype.Int4
	CreatedBy       pgtype.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     pgtype.Timestamptz
}

type OrderLine struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ItemID       uuid.UUID
	ItemName     string
	SelectedSize string
	UnitPrice    pgtype.Numeric
	Quantity     int32
}

type TimeLog struct {
	ID       uuid.UUID
	StaffID  uuid.UUID
	LogType  string
	LoggedAt time.Time
}

type PayrollRecord struct {
	ID               uuid.UUID
	StaffID          uuid.UUID
	Period           string
	TotalHours       pgtype.Numeric
	OvertimeHours    pgtype.Numeric
	BasicPay         pgtype.Numeric
	OvertimePay      pgtype.Numeric
	Allowances       pgtype.Numeric
	LateDeduction    pgtype.Numeric
	AbsenceDeduction pgtype.Numeric
	NetPay           pgtype.Numeric
	SupersededBy     pgtype.UUID
	GeneratedAt      time.Time
}

type InventoryItem struct {
	ID        uuid.UUID
	Name      string
	Category  string
	Unit      string
	Cost      pgtype.Numeric
	Price     pgtype.Numeric
	Vendor    pgtype.Text
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InventoryBatch struct {
	ID             uuid.UUID
	ItemID         uuid.UUID
	Quantity       int32
	ExpirationDate pgtype.Date
	ReceivedAt     time.Time
}

type Expense struct {
	ID          uuid.UUID
	Description string
	Category    string
	Amount      pgtype.Numeric
	Disbursed   bool
	IncurredOn  pgtype.Date
	CreatedAt   time.Time
}

type CashMovement struct {
	ID        uuid.UUID
	Direction string
	Amount    pgtype.Numeric
	Reason    string
	OrderID   pgtype.UUID
	StaffID   pgtype.UUID
	CreatedAt time.Time
}
