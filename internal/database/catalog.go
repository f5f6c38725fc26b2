package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ── Products ──

type CreateProductParams struct {
	Category string
	Name     string
	Unit     string
	Price    pgtype.Numeric
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO products (category, name, unit, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, category, name, unit, price, created_at`,
		arg.Category, arg.Name, arg.Unit, arg.Price,
	)
	var p Product
	err := row.Scan(&p.ID, &p.Category, &p.Name, &p.Unit, &p.Price, &p.CreatedAt)
	return p, err
}

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, `SELECT id, category, name, unit, price, created_at FROM products WHERE id = $1`, id)
	var p Product
	err := row.Scan(&p.ID, &p.Category, &p.Name, &p.Unit, &p.Price, &p.CreatedAt)
	return p, err
}

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, `SELECT id, category, name, unit, price, created_at FROM products ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.Unit, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type UpdateProductParams struct {
	ID       uuid.UUID
	Category string
	Name     string
	Unit     string
	Price    pgtype.Numeric
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE products SET category = $2, name = $3, unit = $4, price = $5
		WHERE id = $1
		RETURNING id, category, name, unit, price, created_at`,
		arg.ID, arg.Category, arg.Name, arg.Unit, arg.Price,
	)
	var p Product
	err := row.Scan(&p.ID, &p.Category, &p.Name, &p.Unit, &p.Price, &p.CreatedAt)
	return p, err
}

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

// ── Drivers ──

type CreateDriverParams struct {
	Name         string
	Phone        string
	VehicleName  string
	VehiclePlate string
}

func (q *Queries) CreateDriver(ctx context.Context, arg CreateDriverParams) (Driver, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO drivers (name, phone, vehicle_name, vehicle_plate)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, phone, vehicle_name, vehicle_plate, is_active, created_at`,
		arg.Name, arg.Phone, arg.VehicleName, arg.VehiclePlate,
	)
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleName, &d.VehiclePlate, &d.IsActive, &d.CreatedAt)
	return d, err
}

func (q *Queries) GetDriver(ctx context.Context, id uuid.UUID) (Driver, error) {
	row := q.db.QueryRow(ctx, `SELECT id, name, phone, vehicle_name, vehicle_plate, is_active, created_at FROM drivers WHERE id = $1`, id)
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleName, &d.VehiclePlate, &d.IsActive, &d.CreatedAt)
	return d, err
}

func (q *Queries) ListDrivers(ctx context.Context, activeOnly bool) ([]Driver, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, phone, vehicle_name, vehicle_plate, is_active, created_at
		FROM drivers
		WHERE ($1::boolean IS FALSE OR is_active)
		ORDER BY name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleName, &d.VehiclePlate, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

type UpdateDriverParams struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	VehicleName  string
	VehiclePlate string
	IsActive     bool
}

func (q *Queries) UpdateDriver(ctx context.Context, arg UpdateDriverParams) (Driver, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE drivers SET name = $2, phone = $3, vehicle_name = $4, vehicle_plate = $5, is_active = $6
		WHERE id = $1
		RETURNING id, name, phone, vehicle_name, vehicle_plate, is_active, created_at`,
		arg.ID, arg.Name, arg.Phone, arg.VehicleName, arg.VehiclePlate, arg.IsActive,
	)
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleName, &d.VehiclePlate, &d.IsActive, &d.CreatedAt)
	return d, err
}

func (q *Queries) DeleteDriver(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	return err
}

// ── Regions ──

func (q *Queries) CreateRegion(ctx context.Context, name string) (Region, error) {
	row := q.db.QueryRow(ctx, `INSERT INTO regions (name) VALUES ($1) RETURNING id, name, created_at`, name)
	var r Region
	err := row.Scan(&r.ID, &r.Name, &r.CreatedAt)
	return r, err
}

func (q *Queries) GetRegion(ctx context.Context, id uuid.UUID) (Region, error) {
	row := q.db.QueryRow(ctx, `SELECT id, name, created_at FROM regions WHERE id = $1`, id)
	var r Region
	err := row.Scan(&r.ID, &r.Name, &r.CreatedAt)
	return r, err
}

func (q *Queries) ListRegions(ctx context.Context) ([]Region, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, created_at FROM regions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var r Region
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

func (q *Queries) UpdateRegion(ctx context.Context, id uuid.UUID, name string) (Region, error) {
	row := q.db.QueryRow(ctx, `UPDATE regions SET name = $2 WHERE id = $1 RETURNING id, name, created_at`, id, name)
	var r Region
	err := row.Scan(&r.ID, &r.Name, &r.CreatedAt)
	return r, err
}

func (q *Queries) DeleteRegion(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM regions WHERE id = $1`, id)
	return err
}

// ── Message templates ──

func (q *Queries) CreateMessageTemplate(ctx context.Context, title, content string) (MessageTemplate, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO message_templates (title, content) VALUES ($1, $2)
		RETURNING id, title, content, created_at, updated_at`, title, content)
	var t MessageTemplate
	err := row.Scan(&t.ID, &t.Title, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (q *Queries) ListMessageTemplates(ctx context.Context) ([]MessageTemplate, error) {
	rows, err := q.db.Query(ctx, `SELECT id, title, content, created_at, updated_at FROM message_templates ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []MessageTemplate
	for rows.Next() {
		var t MessageTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (q *Queries) UpdateMessageTemplate(ctx context.Context, id uuid.UUID, title, content string) (MessageTemplate, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE message_templates SET title = $2, content = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, title, content, created_at, updated_at`, id, title, content)
	var t MessageTemplate
	err := row.Scan(&t.ID, &t.Title, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (q *Queries) DeleteMessageTemplate(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM message_templates WHERE id = $1`, id)
	return err
}
