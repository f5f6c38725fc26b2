package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Expenses and incomes are twin tables with identical shapes, so each query
// pair shares an implementation keyed on the table name. The table names are
// fixed strings, never caller input.

type CreateLedgerEntryParams struct {
	Amount      pgtype.Numeric
	Category    string
	Description string
	EntryDate   time.Time
	CreatedBy   uuid.UUID
}

type ListLedgerEntriesParams struct {
	From   pgtype.Timestamptz
	To     pgtype.Timestamptz
	Limit  int32
	Offset int32
}

func (q *Queries) createLedgerEntry(ctx context.Context, table string, arg CreateLedgerEntryParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO `+table+` (amount, category, description, entry_date, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, amount, category, description, entry_date, created_by, created_at`,
		arg.Amount, arg.Category, arg.Description, arg.EntryDate, arg.CreatedBy,
	)
	var e LedgerEntry
	err := row.Scan(&e.ID, &e.Amount, &e.Category, &e.Description, &e.EntryDate, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

func (q *Queries) listLedgerEntries(ctx context.Context, table string, arg ListLedgerEntriesParams) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, amount, category, description, entry_date, created_by, created_at
		FROM `+table+`
		WHERE ($1::timestamptz IS NULL OR entry_date >= $1)
		  AND ($2::timestamptz IS NULL OR entry_date < $2)
		ORDER BY entry_date DESC
		LIMIT $3 OFFSET $4`,
		arg.From, arg.To, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.Amount, &e.Category, &e.Description, &e.EntryDate, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) deleteLedgerEntry(ctx context.Context, table string, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateLedgerEntryParams) (LedgerEntry, error) {
	return q.createLedgerEntry(ctx, "expenses", arg)
}

func (q *Queries) ListExpenses(ctx context.Context, arg ListLedgerEntriesParams) ([]LedgerEntry, error) {
	return q.listLedgerEntries(ctx, "expenses", arg)
}

func (q *Queries) DeleteExpense(ctx context.Context, id uuid.UUID) (int64, error) {
	return q.deleteLedgerEntry(ctx, "expenses", id)
}

func (q *Queries) CreateIncome(ctx context.Context, arg CreateLedgerEntryParams) (LedgerEntry, error) {
	return q.createLedgerEntry(ctx, "incomes", arg)
}

func (q *Queries) ListIncomes(ctx context.Context, arg ListLedgerEntriesParams) ([]LedgerEntry, error) {
	return q.listLedgerEntries(ctx, "incomes", arg)
}

func (q *Queries) DeleteIncome(ctx context.Context, id uuid.UUID) (int64, error) {
	return q.deleteLedgerEntry(ctx, "incomes", id)
}
