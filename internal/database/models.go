package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Order carries a denormalized snapshot of the customer and driver at intake
// time, so lists render without joins and later edits to the customer record
// do not rewrite order history.
type Order struct {
	ID                 uuid.UUID
	OrderNumber        string
	CustomerID         uuid.UUID
	CustomerName       string
	CustomerPhone      string
	CustomerAddress    string
	CustomerRegionName pgtype.Text
	DriverID           pgtype.UUID
	DriverName         pgtype.Text
	DriverVehiclePlate pgtype.Text
	Status             string
	TotalAmount        pgtype.Numeric
	DiscountAmount     pgtype.Numeric
	DiscountedTotal    pgtype.Numeric
	PaidAmount         pgtype.Numeric
	RemainingAmount    pgtype.Numeric
	IsCreditDebt       bool
	PickupDate         time.Time
	DeliveryDate       time.Time
	Notes              pgtype.Text
	CreatedBy          uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	ProductCategory string
	ProductUnit     string
	UnitPrice       pgtype.Numeric
	Quantity        pgtype.Numeric
	LineTotal       pgtype.Numeric
}

type Customer struct {
	ID         uuid.UUID
	Name       string
	Phone      string
	Address    string
	RegionID   pgtype.UUID
	RegionName pgtype.Text
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Product struct {
	ID        uuid.UUID
	Category  string
	Name      string
	Unit      string
	Price     pgtype.Numeric
	CreatedAt time.Time
}

type Driver struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	VehicleName  string
	VehiclePlate string
	IsActive     bool
	CreatedAt    time.Time
}

type Region struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type MessageTemplate struct {
	ID        uuid.UUID
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerEntry backs both the expenses and incomes tables; the two share a shape.
type LedgerEntry struct {
	ID          uuid.UUID
	Amount      pgtype.Numeric
	Category    string
	Description string
	EntryDate   time.Time
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	PushToken      pgtype.Text
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
