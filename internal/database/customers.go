package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, name, phone, address, region_id, region_name, created_at, updated_at`

func scanCustomer(row scannable) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.RegionID, &c.RegionName, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type CreateCustomerParams struct {
	Name       string
	Phone      string
	Address    string
	RegionID   pgtype.UUID
	RegionName pgtype.Text
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address, region_id, region_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+customerColumns,
		arg.Name, arg.Phone, arg.Address, arg.RegionID, arg.RegionName,
	)
	return scanCustomer(row)
}

func (q *Queries) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	row := q.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

func (q *Queries) GetCustomerByPhone(ctx context.Context, phone string) (Customer, error) {
	row := q.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone)
	return scanCustomer(row)
}

type ListCustomersParams struct {
	Search pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE ($1::text IS NULL OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3`,
		arg.Search, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type UpdateCustomerParams struct {
	ID         uuid.UUID
	Name       string
	Phone      string
	Address    string
	RegionID   pgtype.UUID
	RegionName pgtype.Text
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE customers SET name = $2, phone = $3, address = $4, region_id = $5, region_name = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+customerColumns,
		arg.ID, arg.Name, arg.Phone, arg.Address, arg.RegionID, arg.RegionName,
	)
	return scanCustomer(row)
}

func (q *Queries) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}
