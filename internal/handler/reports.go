package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/excel"
	"github.com/halipro/api/internal/service"
)

// ReportStore is satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	GetOrderFinancials(ctx context.Context, arg database.DateRangeParams) (database.OrderFinancialsRow, error)
	SumExpenses(ctx context.Context, arg database.DateRangeParams) (pgtype.Numeric, error)
	SumIncomes(ctx context.Context, arg database.DateRangeParams) (pgtype.Numeric, error)
	GetExpensesByCategory(ctx context.Context, arg database.DateRangeParams) ([]database.ExpenseCategoryRow, error)
	CountPickedUpOrders(ctx context.Context, arg database.DateRangeParams) (int64, error)
	GetDeliverySummary(ctx context.Context, arg database.DateRangeParams) (database.DeliverySummaryRow, error)
}

// WorkbookRenderer is satisfied by *excel.Generator.
type WorkbookRenderer interface {
	CashSummary(data excel.CashSummaryData) ([]byte, error)
}

type ReportHandler struct {
	store     ReportStore
	workbooks WorkbookRenderer
	logger    zerolog.Logger
}

func NewReportHandler(store ReportStore, workbooks WorkbookRenderer, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{store: store, workbooks: workbooks, logger: logger}
}

type cashSummaryResponse struct {
	OrderCount            int64  `json:"order_count"`
	TotalAmountAllOrders  string `json:"total_amount_all_orders"`
	TotalDiscount         string `json:"total_discount"`
	TotalOrderIncome      string `json:"total_order_income"`
	TotalAdditionalIncome string `json:"total_additional_income"`
	GrandTotalIncome      string `json:"grand_total_income"`
	TotalPaid             string `json:"total_paid"`
	TotalRemaining        string `json:"total_remaining"`
	TotalExpense          string `json:"total_expense"`
	NetProfit             string `json:"net_profit"`
}

func (h *ReportHandler) cashSummary(ctx context.Context, rng database.DateRangeParams) (cashSummaryResponse, error) {
	financials, err := h.store.GetOrderFinancials(ctx, rng)
	if err != nil {
		return cashSummaryResponse{}, fmt.Errorf("order financials: %w", err)
	}
	additionalIncome, err := h.store.SumIncomes(ctx, rng)
	if err != nil {
		return cashSummaryResponse{}, fmt.Errorf("sum incomes: %w", err)
	}
	totalExpense, err := h.store.SumExpenses(ctx, rng)
	if err != nil {
		return cashSummaryResponse{}, fmt.Errorf("sum expenses: %w", err)
	}

	orderIncome := service.NumericToDecimal(financials.TotalDiscounted)
	additional := service.NumericToDecimal(additionalIncome)
	expense := service.NumericToDecimal(totalExpense)
	grand := orderIncome.Add(additional)
	netProfit := grand.Sub(expense)

	return cashSummaryResponse{
		OrderCount:            financials.OrderCount,
		TotalAmountAllOrders:  numericToString(financials.TotalAmount),
		TotalDiscount:         numericToString(financials.TotalDiscount),
		TotalOrderIncome:      orderIncome.StringFixed(2),
		TotalAdditionalIncome: additional.StringFixed(2),
		GrandTotalIncome:      grand.StringFixed(2),
		TotalPaid:             numericToString(financials.TotalPaid),
		TotalRemaining:        numericToString(financials.TotalRemaining),
		TotalExpense:          expense.StringFixed(2),
		NetProfit:             netProfit.StringFixed(2),
	}, nil
}

func (h *ReportHandler) CashSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	summary, err := h.cashSummary(r.Context(), database.DateRangeParams{From: from, To: to})
	if err != nil {
		h.logger.Error().Err(err).Msg("cash summary")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type dailySummaryResponse struct {
	Date              string `json:"date"`
	PickedUpCount     int64  `json:"picked_up_count"`
	DeliveredCount    int64  `json:"delivered_count"`
	CollectedAmount   string `json:"collected_amount"`
	OutstandingAmount string `json:"outstanding_amount"`
}

// DailySummary reports the day's pickups and deliveries. The date query
// param defaults to today.
func (h *ReportHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		day = parsed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rng := database.DateRangeParams{
		From: pgtype.Timestamptz{Time: start, Valid: true},
		To:   pgtype.Timestamptz{Time: start.AddDate(0, 0, 1), Valid: true},
	}

	pickedUp, err := h.store.CountPickedUpOrders(r.Context(), rng)
	if err != nil {
		h.logger.Error().Err(err).Msg("count picked up orders")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	deliveries, err := h.store.GetDeliverySummary(r.Context(), rng)
	if err != nil {
		h.logger.Error().Err(err).Msg("delivery summary")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, dailySummaryResponse{
		Date:              start.Format("2006-01-02"),
		PickedUpCount:     pickedUp,
		DeliveredCount:    deliveries.DeliveredCount,
		CollectedAmount:   numericToString(deliveries.CollectedAmount),
		OutstandingAmount: numericToString(deliveries.OutstandingAmount),
	})
}

type expenseCategoryResponse struct {
	Category    string `json:"category"`
	EntryCount  int64  `json:"entry_count"`
	TotalAmount string `json:"total_amount"`
}

func (h *ReportHandler) ExpenseCategories(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	rows, err := h.store.GetExpensesByCategory(r.Context(), database.DateRangeParams{From: from, To: to})
	if err != nil {
		h.logger.Error().Err(err).Msg("expenses by category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := make([]expenseCategoryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, expenseCategoryResponse{
			Category:    row.Category,
			EntryCount:  row.EntryCount,
			TotalAmount: numericToString(row.TotalAmount),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportCashSummary streams the cash summary as an xlsx workbook.
func (h *ReportHandler) ExportCashSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	rng := database.DateRangeParams{From: from, To: to}

	summary, err := h.cashSummary(r.Context(), rng)
	if err != nil {
		h.logger.Error().Err(err).Msg("cash summary")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	categories, err := h.store.GetExpensesByCategory(r.Context(), rng)
	if err != nil {
		h.logger.Error().Err(err).Msg("expenses by category")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	data := excel.CashSummaryData{
		From:                  rangeLabel(from),
		To:                    rangeLabel(to),
		OrderCount:            summary.OrderCount,
		TotalAmountAllOrders:  summary.TotalAmountAllOrders,
		TotalDiscount:         summary.TotalDiscount,
		TotalOrderIncome:      summary.TotalOrderIncome,
		TotalAdditionalIncome: summary.TotalAdditionalIncome,
		GrandTotalIncome:      summary.GrandTotalIncome,
		TotalPaid:             summary.TotalPaid,
		TotalRemaining:        summary.TotalRemaining,
		TotalExpense:          summary.TotalExpense,
		NetProfit:             summary.NetProfit,
	}
	for _, row := range categories {
		data.ExpenseCategories = append(data.ExpenseCategories, excel.ExpenseCategoryRow{
			Category:    row.Category,
			EntryCount:  row.EntryCount,
			TotalAmount: numericToString(row.TotalAmount),
		})
	}

	content, err := h.workbooks.CashSummary(data)
	if err != nil {
		h.logger.Error().Err(err).Msg("render workbook")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	filename := fmt.Sprintf("cash-summary-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(content)
}

func rangeLabel(t pgtype.Timestamptz) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("2006-01-02")
}
