package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// OrderFinancialsRow aggregates non-cancelled orders created inside a range.
type OrderFinancialsRow struct {
	OrderCount      int64
	TotalAmount     pgtype.Numeric
	TotalDiscount   pgtype.Numeric
	TotalDiscounted pgtype.Numeric
	TotalPaid       pgtype.Numeric
	TotalRemaining  pgtype.Numeric
}

type DateRangeParams struct {
	From pgtype.Timestamptz
	To   pgtype.Timestamptz
}

func (q *Queries) GetOrderFinancials(ctx context.Context, arg DateRangeParams) (OrderFinancialsRow, error) {
	row := q.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(discount_amount), 0),
			COALESCE(SUM(discounted_total), 0),
			COALESCE(SUM(paid_amount), 0),
			COALESCE(SUM(remaining_amount), 0)
		FROM orders
		WHERE status <> 'CANCELLED'
		  AND ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)`,
		arg.From, arg.To,
	)
	var r OrderFinancialsRow
	err := row.Scan(&r.OrderCount, &r.TotalAmount, &r.TotalDiscount, &r.TotalDiscounted, &r.TotalPaid, &r.TotalRemaining)
	return r, err
}

func (q *Queries) sumLedger(ctx context.Context, table string, arg DateRangeParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM `+table+`
		WHERE ($1::timestamptz IS NULL OR entry_date >= $1)
		  AND ($2::timestamptz IS NULL OR entry_date < $2)`,
		arg.From, arg.To,
	).Scan(&total)
	return total, err
}

func (q *Queries) SumExpenses(ctx context.Context, arg DateRangeParams) (pgtype.Numeric, error) {
	return q.sumLedger(ctx, "expenses", arg)
}

func (q *Queries) SumIncomes(ctx context.Context, arg DateRangeParams) (pgtype.Numeric, error) {
	return q.sumLedger(ctx, "incomes", arg)
}

type ExpenseCategoryRow struct {
	Category    string
	EntryCount  int64
	TotalAmount pgtype.Numeric
}

func (q *Queries) GetExpensesByCategory(ctx context.Context, arg DateRangeParams) ([]ExpenseCategoryRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE ($1::timestamptz IS NULL OR entry_date >= $1)
		  AND ($2::timestamptz IS NULL OR entry_date < $2)
		GROUP BY category
		ORDER BY SUM(amount) DESC`,
		arg.From, arg.To,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ExpenseCategoryRow
	for rows.Next() {
		var r ExpenseCategoryRow
		if err := rows.Scan(&r.Category, &r.EntryCount, &r.TotalAmount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CountPickedUpOrders counts orders sitting at the picked-up step whose
// pickup date falls inside the range.
func (q *Queries) CountPickedUpOrders(ctx context.Context, arg DateRangeParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE status = 'PICKED_UP'
		  AND ($1::timestamptz IS NULL OR pickup_date >= $1)
		  AND ($2::timestamptz IS NULL OR pickup_date < $2)`,
		arg.From, arg.To,
	).Scan(&count)
	return count, err
}

type DeliverySummaryRow struct {
	DeliveredCount    int64
	CollectedAmount   pgtype.Numeric
	OutstandingAmount pgtype.Numeric
}

func (q *Queries) GetDeliverySummary(ctx context.Context, arg DateRangeParams) (DeliverySummaryRow, error) {
	row := q.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(paid_amount), 0), COALESCE(SUM(remaining_amount), 0)
		FROM orders
		WHERE status = 'DELIVERED'
		  AND ($1::timestamptz IS NULL OR delivery_date >= $1)
		  AND ($2::timestamptz IS NULL OR delivery_date < $2)`,
		arg.From, arg.To,
	)
	var r DeliverySummaryRow
	err := row.Scan(&r.DeliveredCount, &r.CollectedAmount, &r.OutstandingAmount)
	return r, err
}
