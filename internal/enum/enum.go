package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending" // unpaid self-service order, not yet in the kitchen queue
	OrderStatusReceived  = "received"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentMethodPending = "pending"
	PaymentMethodCash    = "cash"
	PaymentMethodCard    = "card"
	PaymentMethodEWallet = "e-wallet"
)

// Order types tag where an order came from; used only for reporting/filtering.
const (
	OrderTypeCounter      = "counter"
	OrderTypePOS          = "pos"
	OrderTypeSelfCheckout = "self_checkout"
	OrderTypeChatbot      = "chatbot"
)

// ── Staff ──

const (
	StaffRoleOwner   = "OWNER"
	StaffRoleManager = "MANAGER"
	StaffRoleCashier = "CASHIER"
	StaffRoleKitchen = "KITCHEN"
)

const (
	StaffStatusActive   = "ACTIVE"
	StaffStatusInactive = "INACTIVE"
)

const (
	TimeLogClockIn  = "clockIn"
	TimeLogClockOut = "clockOut"
)

// ── Inventory (derived, never stored authoritatively) ──

const (
	StockStatusIn  = "In Stock"
	StockStatusLow = "Low Stock"
	StockStatusOut = "Out of Stock"
)

// ── Till ledger ──

const (
	CashDirectionIn  = "IN"
	CashDirectionOut = "OUT"
)

const (
	CashReasonOpeningFloat = "opening_float"
	CashReasonCashReceived = "cash_received"
	CashReasonChangeGiven  = "change_given"
	CashReasonAdjustment   = "adjustment"
)
