package enum

// ── Order lifecycle (linear chain; CANCELLED sits outside it) ──

const (
	OrderStatusToBePickedUp  = "TO_BE_PICKED_UP"
	OrderStatusPickedUp      = "PICKED_UP"
	OrderStatusWashing       = "WASHING"
	OrderStatusReady         = "READY"
	OrderStatusToBeDelivered = "TO_BE_DELIVERED"
	OrderStatusDelivered     = "DELIVERED"
	OrderStatusCancelled     = "CANCELLED"
)

// ── Credit resolution when delivering with an outstanding balance ──

const (
	CreditResolutionPaidInFull = "PAID_IN_FULL"
	CreditResolutionCreditDebt = "CREDIT_DEBT"
)

// ── Product units of measure ──

const (
	ProductUnitSquareMeter = "SQUARE_METER"
	ProductUnitPiece       = "PIECE"
	ProductUnitSet         = "SET"
	ProductUnitLinearMeter = "LINEAR_METER"
)

// ── User roles ──

const (
	UserRoleOwner = "OWNER"
	UserRoleStaff = "STAFF"
)

// ── Ledger defaults (configurable labels, no DB constraint) ──

const (
	ExpenseCategoryGeneral = "GENERAL"
	IncomeCategoryOther    = "OTHER"
)
