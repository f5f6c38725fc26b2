package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
)

var (
	ErrEmptyItems               = errors.New("order must have at least one item")
	ErrOrderNotFound            = errors.New("order not found")
	ErrProductNotFound          = errors.New("product not found")
	ErrCustomerRequired         = errors.New("customer name and phone are required")
	ErrOrderNotEditable         = errors.New("order can no longer be edited")
	ErrStatusConflict           = errors.New("order status changed concurrently")
	ErrCreditResolutionRequired = errors.New("outstanding balance requires a credit resolution")
	ErrInvalidResolution        = errors.New("invalid credit resolution")
	ErrNotCreditDebt            = errors.New("order has no outstanding credit debt")
)

// CreditResolutionRequiredError reports the balance that must be collected or
// recorded as credit debt before the order can be delivered. It matches
// ErrCreditResolutionRequired under errors.Is.
type CreditResolutionRequiredError struct {
	RemainingAmount decimal.Decimal
}

func (e *CreditResolutionRequiredError) Error() string {
	return fmt.Sprintf("outstanding balance of %s requires a credit resolution", e.RemainingAmount.StringFixed(2))
}

func (e *CreditResolutionRequiredError) Is(target error) bool {
	return target == ErrCreditResolutionRequired
}

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderService owns the order lifecycle and every multi-statement write.
type OrderService struct {
	db      TxBeginner
	queries *database.Queries
}

func NewOrderService(db TxBeginner, queries *database.Queries) *OrderService {
	return &OrderService{db: db, queries: queries}
}

// OrderWithItems pairs an order with its lines for responses.
type OrderWithItems struct {
	Order database.Order
	Items []database.OrderItem
}

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

type CreateOrderInput struct {
	CustomerID      uuid.NullUUID
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	RegionID        uuid.NullUUID
	DriverID        uuid.NullUUID
	Items           []OrderItemInput
	DiscountAmount  decimal.Decimal
	PaidAmount      decimal.Decimal
	PickupDate      time.Time
	DeliveryDate    time.Time
	Notes           string
	CreatedBy       uuid.UUID
}

// CreateOrder records a new order in one transaction. An unknown customer is
// created on the spot from the intake form, so walk-ins never require a
// separate registration step. The whole transaction retries when two intakes
// race for the same order number.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderWithItems, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if input.CustomerName == "" || input.CustomerPhone == "" {
		return nil, ErrCustomerRequired
	}

	var result *OrderWithItems
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		result, err = s.createOrderTx(ctx, input)
		if err == nil || !isUniqueViolation(err) {
			return result, err
		}
	}
	return nil, err
}

func (s *OrderService) createOrderTx(ctx context.Context, input CreateOrderInput) (*OrderWithItems, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	qtx := s.queries.WithTx(tx)

	customer, regionName, err := s.resolveCustomer(ctx, qtx, input)
	if err != nil {
		return nil, err
	}

	driverID, driverName, driverPlate, err := s.resolveDriver(ctx, qtx, input.DriverID)
	if err != nil {
		return nil, err
	}

	itemParams, lines, err := s.buildItems(ctx, qtx, input.Items)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(lines, input.DiscountAmount, input.PaidAmount)

	seq, err := qtx.NextOrderSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("next order sequence: %w", err)
	}

	order, err := qtx.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:        fmt.Sprintf("HLP-%05d", seq),
		CustomerID:         customer.ID,
		CustomerName:       customer.Name,
		CustomerPhone:      customer.Phone,
		CustomerAddress:    customer.Address,
		CustomerRegionName: regionName,
		DriverID:           driverID,
		DriverName:         driverName,
		DriverVehiclePlate: driverPlate,
		Status:             enum.OrderStatusToBePickedUp,
		TotalAmount:        DecimalToNumeric(totals.TotalAmount),
		DiscountAmount:     DecimalToNumeric(input.DiscountAmount),
		DiscountedTotal:    DecimalToNumeric(totals.DiscountedTotal),
		PaidAmount:         DecimalToNumeric(input.PaidAmount),
		RemainingAmount:    DecimalToNumeric(totals.RemainingAmount),
		PickupDate:         input.PickupDate,
		DeliveryDate:       input.DeliveryDate,
		Notes:              textOrNull(input.Notes),
		CreatedBy:          input.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(itemParams))
	for i, p := range itemParams {
		p.OrderID = order.ID
		p.LineTotal = DecimalToNumeric(totals.LineTotals[i])
		item, err := qtx.CreateOrderItem(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &OrderWithItems{Order: order, Items: items}, nil
}

func (s *OrderService) resolveCustomer(ctx context.Context, qtx *database.Queries, input CreateOrderInput) (database.Customer, pgtype.Text, error) {
	var regionID pgtype.UUID
	var regionName pgtype.Text
	if input.RegionID.Valid {
		region, err := qtx.GetRegion(ctx, input.RegionID.UUID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Customer{}, pgtype.Text{}, fmt.Errorf("region %s: %w", input.RegionID.UUID, pgx.ErrNoRows)
			}
			return database.Customer{}, pgtype.Text{}, err
		}
		regionID = pgtype.UUID{Bytes: region.ID, Valid: true}
		regionName = pgtype.Text{String: region.Name, Valid: true}
	}

	if input.CustomerID.Valid {
		customer, err := qtx.GetCustomer(ctx, input.CustomerID.UUID)
		if err != nil {
			return database.Customer{}, pgtype.Text{}, err
		}
		if !regionName.Valid {
			regionName = customer.RegionName
		}
		return customer, regionName, nil
	}

	customer, err := qtx.GetCustomerByPhone(ctx, input.CustomerPhone)
	if err == nil {
		if !regionName.Valid {
			regionName = customer.RegionName
		}
		return customer, regionName, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.Customer{}, pgtype.Text{}, err
	}

	customer, err = qtx.CreateCustomer(ctx, database.CreateCustomerParams{
		Name:       input.CustomerName,
		Phone:      input.CustomerPhone,
		Address:    input.CustomerAddress,
		RegionID:   regionID,
		RegionName: regionName,
	})
	if err != nil {
		return database.Customer{}, pgtype.Text{}, fmt.Errorf("create customer: %w", err)
	}
	return customer, regionName, nil
}

func (s *OrderService) resolveDriver(ctx context.Context, qtx *database.Queries, id uuid.NullUUID) (pgtype.UUID, pgtype.Text, pgtype.Text, error) {
	if !id.Valid {
		return pgtype.UUID{}, pgtype.Text{}, pgtype.Text{}, nil
	}
	driver, err := qtx.GetDriver(ctx, id.UUID)
	if err != nil {
		return pgtype.UUID{}, pgtype.Text{}, pgtype.Text{}, err
	}
	return pgtype.UUID{Bytes: driver.ID, Valid: true},
		pgtype.Text{String: driver.Name, Valid: true},
		pgtype.Text{String: driver.VehiclePlate, Valid: true},
		nil
}

func (s *OrderService) buildItems(ctx context.Context, qtx *database.Queries, inputs []OrderItemInput) ([]database.CreateOrderItemParams, []LineInput, error) {
	params := make([]database.CreateOrderItemParams, 0, len(inputs))
	lines := make([]LineInput, 0, len(inputs))
	for _, in := range inputs {
		product, err := qtx.GetProduct(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, ErrProductNotFound
			}
			return nil, nil, err
		}
		price := NumericToDecimal(product.Price)
		params = append(params, database.CreateOrderItemParams{
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductCategory: product.Category,
			ProductUnit:     product.Unit,
			UnitPrice:       product.Price,
			Quantity:        DecimalToNumeric(in.Quantity),
		})
		lines = append(lines, LineInput{Quantity: in.Quantity, UnitPrice: price})
	}
	return params, lines, nil
}

type UpdateOrderInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	RegionID        uuid.NullUUID
	DriverID        uuid.NullUUID
	Items           []OrderItemInput
	DiscountAmount  decimal.Decimal
	PaidAmount      decimal.Decimal
	PickupDate      time.Time
	DeliveryDate    time.Time
	Notes           string
}

// UpdateOrder rewrites the order lines and recomputes totals while the order
// is still in flight. Delivered and cancelled orders are immutable.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderWithItems, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyItems
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	qtx := s.queries.WithTx(tx)

	existing, err := qtx.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if IsTerminal(existing.Status) {
		return nil, ErrOrderNotEditable
	}

	regionName := existing.CustomerRegionName
	if input.RegionID.Valid {
		region, err := qtx.GetRegion(ctx, input.RegionID.UUID)
		if err != nil {
			return nil, err
		}
		regionName = pgtype.Text{String: region.Name, Valid: true}
	}

	driverID, driverName, driverPlate, err := s.resolveDriver(ctx, qtx, input.DriverID)
	if err != nil {
		return nil, err
	}

	itemParams, lines, err := s.buildItems(ctx, qtx, input.Items)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(lines, input.DiscountAmount, input.PaidAmount)

	if err := qtx.DeleteOrderItemsByOrder(ctx, id); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}

	order, err := qtx.UpdateOrder(ctx, database.UpdateOrderParams{
		ID:                 id,
		CustomerName:       input.CustomerName,
		CustomerPhone:      input.CustomerPhone,
		CustomerAddress:    input.CustomerAddress,
		CustomerRegionName: regionName,
		DriverID:           driverID,
		DriverName:         driverName,
		DriverVehiclePlate: driverPlate,
		TotalAmount:        DecimalToNumeric(totals.TotalAmount),
		DiscountAmount:     DecimalToNumeric(input.DiscountAmount),
		DiscountedTotal:    DecimalToNumeric(totals.DiscountedTotal),
		PaidAmount:         DecimalToNumeric(input.PaidAmount),
		RemainingAmount:    DecimalToNumeric(totals.RemainingAmount),
		PickupDate:         input.PickupDate,
		DeliveryDate:       input.DeliveryDate,
		Notes:              textOrNull(input.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(itemParams))
	for i, p := range itemParams {
		p.OrderID = order.ID
		p.LineTotal = DecimalToNumeric(totals.LineTotals[i])
		item, err := qtx.CreateOrderItem(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &OrderWithItems{Order: order, Items: items}, nil
}

// Advance moves the order one step along its lifecycle. The delivery step is
// special: an outstanding balance must be resolved by the caller, either
// collected in full or recorded as credit debt.
func (s *OrderService) Advance(ctx context.Context, id uuid.UUID, resolution string) (database.Order, error) {
	order, err := s.queries.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, err
	}

	next, err := NextStatus(order.Status)
	if err != nil {
		return database.Order{}, err
	}

	if next != enum.OrderStatusDelivered {
		updated, err := s.queries.AdvanceOrderStatus(ctx, database.AdvanceOrderStatusParams{
			ID:         id,
			FromStatus: order.Status,
			ToStatus:   next,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return updated, err
	}

	return s.deliver(ctx, order, resolution)
}

func (s *OrderService) deliver(ctx context.Context, order database.Order, resolution string) (database.Order, error) {
	remaining := NumericToDecimal(order.RemainingAmount)
	paid := order.PaidAmount
	isCredit := false

	if remaining.IsPositive() {
		switch resolution {
		case enum.CreditResolutionPaidInFull:
			paid = order.DiscountedTotal
			remaining = decimal.Zero
		case enum.CreditResolutionCreditDebt:
			isCredit = true
		case "":
			return database.Order{}, &CreditResolutionRequiredError{RemainingAmount: remaining}
		default:
			return database.Order{}, ErrInvalidResolution
		}
	}

	updated, err := s.queries.MarkOrderDelivered(ctx, database.MarkOrderDeliveredParams{
		ID:              order.ID,
		FromStatus:      order.Status,
		PaidAmount:      paid,
		RemainingAmount: DecimalToNumeric(remaining),
		IsCreditDebt:    isCredit,
		DeliveryDate:    time.Now(),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, ErrStatusConflict
	}
	return updated, err
}

// Cancel aborts an in-flight order.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (database.Order, error) {
	order, err := s.queries.CancelOrder(ctx, id)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, err
	}
	if _, getErr := s.queries.GetOrder(ctx, id); getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, getErr
	}
	return database.Order{}, ErrTerminalStatus
}

// Settle clears an order from the credit book, marking the balance collected.
func (s *OrderService) Settle(ctx context.Context, id uuid.UUID) (database.Order, error) {
	order, err := s.queries.SettleCreditDebt(ctx, id)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, err
	}
	if _, getErr := s.queries.GetOrder(ctx, id); getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, getErr
	}
	return database.Order{}, ErrNotCreditDebt
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
