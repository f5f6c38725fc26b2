package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, customer_id, customer_name, customer_phone, customer_address,
	customer_region_name, driver_id, driver_name, driver_vehicle_plate, status,
	total_amount, discount_amount, discounted_total, paid_amount, remaining_amount,
	is_credit_debt, pickup_date, delivery_date, notes, created_by, created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&o.CustomerRegionName, &o.DriverID, &o.DriverName, &o.DriverVehiclePlate, &o.Status,
		&o.TotalAmount, &o.DiscountAmount, &o.DiscountedTotal, &o.PaidAmount, &o.RemainingAmount,
		&o.IsCreditDebt, &o.PickupDate, &o.DeliveryDate, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

type CreateOrderParams struct {
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
	PickupDate         time.Time
	DeliveryDate       time.Time
	Notes              pgtype.Text
	CreatedBy          uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, customer_id, customer_name, customer_phone, customer_address,
			customer_region_name, driver_id, driver_name, driver_vehicle_plate, status,
			total_amount, discount_amount, discounted_total, paid_amount, remaining_amount,
			pickup_date, delivery_date, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+orderColumns,
		arg.OrderNumber, arg.CustomerID, arg.CustomerName, arg.CustomerPhone, arg.CustomerAddress,
		arg.CustomerRegionName, arg.DriverID, arg.DriverName, arg.DriverVehiclePlate, arg.Status,
		arg.TotalAmount, arg.DiscountAmount, arg.DiscountedTotal, arg.PaidAmount, arg.RemainingAmount,
		arg.PickupDate, arg.DeliveryDate, arg.Notes, arg.CreatedBy,
	)
	return scanOrder(row)
}

type CreateOrderItemParams struct {
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	ProductCategory string
	ProductUnit     string
	UnitPrice       pgtype.Numeric
	Quantity        pgtype.Numeric
	LineTotal       pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name, product_category, product_unit, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, order_id, product_id, product_name, product_category, product_unit, unit_price, quantity, line_total`,
		arg.OrderID, arg.ProductID, arg.ProductName, arg.ProductCategory, arg.ProductUnit,
		arg.UnitPrice, arg.Quantity, arg.LineTotal,
	)
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductCategory,
		&it.ProductUnit, &it.UnitPrice, &it.Quantity, &it.LineTotal)
	return it, err
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_category, product_unit, unit_price, quantity, line_total
		FROM order_items WHERE order_id = $1 ORDER BY product_name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductCategory,
			&it.ProductUnit, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type ListOrdersParams struct {
	Status       pgtype.Text
	CreditOnly   bool
	Search       pgtype.Text
	PickupFrom   pgtype.Timestamptz
	PickupTo     pgtype.Timestamptz
	DeliveryFrom pgtype.Timestamptz
	DeliveryTo   pgtype.Timestamptz
	Limit        int32
	Offset       int32
}

// ListOrders applies every filter through a NULL-tolerant predicate so one
// statement serves the status tabs, credit book, search and date ranges.
// The credit book sorts by outstanding balance, everything else by recency.
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::boolean IS FALSE OR (is_credit_debt AND remaining_amount > 0))
		  AND ($3::text IS NULL OR customer_name ILIKE '%' || $3 || '%'
		       OR customer_phone ILIKE '%' || $3 || '%'
		       OR order_number ILIKE '%' || $3 || '%')
		  AND ($4::timestamptz IS NULL OR pickup_date >= $4)
		  AND ($5::timestamptz IS NULL OR pickup_date < $5)
		  AND ($6::timestamptz IS NULL OR delivery_date >= $6)
		  AND ($7::timestamptz IS NULL OR delivery_date < $7)
		ORDER BY
		  CASE WHEN $2::boolean THEN remaining_amount END DESC,
		  created_at DESC
		LIMIT $8 OFFSET $9`,
		arg.Status, arg.CreditOnly, arg.Search,
		arg.PickupFrom, arg.PickupTo, arg.DeliveryFrom, arg.DeliveryTo,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (q *Queries) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type UpdateOrderParams struct {
	ID                 uuid.UUID
	CustomerName       string
	CustomerPhone      string
	CustomerAddress    string
	CustomerRegionName pgtype.Text
	DriverID           pgtype.UUID
	DriverName         pgtype.Text
	DriverVehiclePlate pgtype.Text
	TotalAmount        pgtype.Numeric
	DiscountAmount     pgtype.Numeric
	DiscountedTotal    pgtype.Numeric
	PaidAmount         pgtype.Numeric
	RemainingAmount    pgtype.Numeric
	PickupDate         time.Time
	DeliveryDate       time.Time
	Notes              pgtype.Text
}

func (q *Queries) UpdateOrder(ctx context.Context, arg UpdateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET
			customer_name = $2, customer_phone = $3, customer_address = $4, customer_region_name = $5,
			driver_id = $6, driver_name = $7, driver_vehicle_plate = $8,
			total_amount = $9, discount_amount = $10, discounted_total = $11,
			paid_amount = $12, remaining_amount = $13,
			pickup_date = $14, delivery_date = $15, notes = $16,
			updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.CustomerName, arg.CustomerPhone, arg.CustomerAddress, arg.CustomerRegionName,
		arg.DriverID, arg.DriverName, arg.DriverVehiclePlate,
		arg.TotalAmount, arg.DiscountAmount, arg.DiscountedTotal,
		arg.PaidAmount, arg.RemainingAmount,
		arg.PickupDate, arg.DeliveryDate, arg.Notes,
	)
	return scanOrder(row)
}

func (q *Queries) DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	return err
}

type AdvanceOrderStatusParams struct {
	ID         uuid.UUID
	FromStatus string
	ToStatus   string
}

// AdvanceOrderStatus moves an order one step forward. The WHERE clause pins
// the prior status, so a concurrent advance loses with ErrNoRows instead of
// skipping a step.
func (q *Queries) AdvanceOrderStatus(ctx context.Context, arg AdvanceOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns,
		arg.ID, arg.FromStatus, arg.ToStatus,
	)
	return scanOrder(row)
}

type MarkOrderDeliveredParams struct {
	ID              uuid.UUID
	FromStatus      string
	PaidAmount      pgtype.Numeric
	RemainingAmount pgtype.Numeric
	IsCreditDebt    bool
	DeliveryDate    time.Time
}

// MarkOrderDelivered is the delivery step of the lifecycle. It settles or
// flags the balance in the same compare-and-set update that flips the status.
func (q *Queries) MarkOrderDelivered(ctx context.Context, arg MarkOrderDeliveredParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET
			status = 'DELIVERED',
			paid_amount = $3,
			remaining_amount = $4,
			is_credit_debt = $5,
			delivery_date = $6,
			updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns,
		arg.ID, arg.FromStatus, arg.PaidAmount, arg.RemainingAmount, arg.IsCreditDebt, arg.DeliveryDate,
	)
	return scanOrder(row)
}

// SettleCreditDebt clears an outstanding balance from the credit book.
func (q *Queries) SettleCreditDebt(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET
			paid_amount = discounted_total,
			remaining_amount = 0,
			is_credit_debt = FALSE,
			updated_at = now()
		WHERE id = $1 AND is_credit_debt AND remaining_amount > 0
		RETURNING `+orderColumns,
		id,
	)
	return scanOrder(row)
}

// CancelOrder succeeds only while the order is still in flight.
func (q *Queries) CancelOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = 'CANCELLED', updated_at = now()
		WHERE id = $1 AND status NOT IN ('DELIVERED', 'CANCELLED')
		RETURNING `+orderColumns,
		id,
	)
	return scanOrder(row)
}

// NextOrderSequence returns one past the highest issued order number suffix.
// Callers still retry on a unique violation since two writers can read the
// same value.
func (q *Queries) NextOrderSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(order_number FROM 5)::bigint), 0) + 1
		FROM orders WHERE order_number ~ '^HLP-[0-9]+$'`).Scan(&seq)
	return seq, err
}
