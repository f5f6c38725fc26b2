package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/halipro/api/internal/auth"
	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
	"github.com/halipro/api/internal/excel"
	"github.com/halipro/api/internal/middleware"
	"github.com/halipro/api/internal/service"
)

func num(s string) pgtype.Numeric {
	return service.DecimalToNumeric(decimal.RequireFromString(s))
}

type mockReportStore struct {
	financials database.OrderFinancialsRow
	expenses   pgtype.Numeric
	incomes    pgtype.Numeric
	categories []database.ExpenseCategoryRow
	pickedUp   int64
	deliveries database.DeliverySummaryRow
}

func (m *mockReportStore) GetOrderFinancials(context.Context, database.DateRangeParams) (database.OrderFinancialsRow, error) {
	return m.financials, nil
}

func (m *mockReportStore) SumExpenses(context.Context, database.DateRangeParams) (pgtype.Numeric, error) {
	return m.expenses, nil
}

func (m *mockReportStore) SumIncomes(context.Context, database.DateRangeParams) (pgtype.Numeric, error) {
	return m.incomes, nil
}

func (m *mockReportStore) GetExpensesByCategory(context.Context, database.DateRangeParams) ([]database.ExpenseCategoryRow, error) {
	return m.categories, nil
}

func (m *mockReportStore) CountPickedUpOrders(context.Context, database.DateRangeParams) (int64, error) {
	return m.pickedUp, nil
}

func (m *mockReportStore) GetDeliverySummary(context.Context, database.DateRangeParams) (database.DeliverySummaryRow, error) {
	return m.deliveries, nil
}

func setupReportRouter(t *testing.T, store ReportStore) (*chi.Mux, string) {
	t.Helper()
	manager := auth.NewManager("test-secret")
	token, err := manager.GenerateAccessToken(uuid.New(), enum.UserRoleOwner)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h := NewReportHandler(store, excel.NewGenerator(), zerolog.Nop())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(manager))
		r.Use(middleware.RequireRole(enum.UserRoleOwner))
		r.Get("/reports/cash-summary", h.CashSummary)
		r.Get("/reports/cash-summary/export", h.ExportCashSummary)
		r.Get("/reports/daily-summary", h.DailySummary)
		r.Get("/reports/expense-categories", h.ExpenseCategories)
	})
	return r, token
}

func TestCashSummary(t *testing.T) {
	store := &mockReportStore{
		financials: database.OrderFinancialsRow{
			OrderCount:      3,
			TotalAmount:     num("500.00"),
			TotalDiscount:   num("50.00"),
			TotalDiscounted: num("450.00"),
			TotalPaid:       num("300.00"),
			TotalRemaining:  num("150.00"),
		},
		incomes:  num("100.00"),
		expenses: num("200.00"),
	}
	r, token := setupReportRouter(t, store)

	rec := doRequest(t, r, http.MethodGet, "/reports/cash-summary?from=2026-08-01&to=2026-08-31", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp cashSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderCount != 3 {
		t.Errorf("OrderCount = %d, want 3", resp.OrderCount)
	}
	if resp.GrandTotalIncome != "550.00" {
		t.Errorf("GrandTotalIncome = %s, want 550.00", resp.GrandTotalIncome)
	}
	if resp.NetProfit != "350.00" {
		t.Errorf("NetProfit = %s, want 350.00", resp.NetProfit)
	}
	if resp.TotalRemaining != "150.00" {
		t.Errorf("TotalRemaining = %s, want 150.00", resp.TotalRemaining)
	}
}

func TestDailySummary(t *testing.T) {
	store := &mockReportStore{
		pickedUp: 4,
		deliveries: database.DeliverySummaryRow{
			DeliveredCount:    2,
			CollectedAmount:   num("320.00"),
			OutstandingAmount: num("80.00"),
		},
	}
	r, token := setupReportRouter(t, store)

	rec := doRequest(t, r, http.MethodGet, "/reports/daily-summary?date=2026-08-30", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp dailySummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Date != "2026-08-30" {
		t.Errorf("Date = %s, want 2026-08-30", resp.Date)
	}
	if resp.PickedUpCount != 4 || resp.DeliveredCount != 2 {
		t.Errorf("counts = %d/%d, want 4/2", resp.PickedUpCount, resp.DeliveredCount)
	}
	if resp.CollectedAmount != "320.00" {
		t.Errorf("CollectedAmount = %s, want 320.00", resp.CollectedAmount)
	}
}

func TestDailySummaryRejectsBadDate(t *testing.T) {
	r, token := setupReportRouter(t, &mockReportStore{})
	rec := doRequest(t, r, http.MethodGet, "/reports/daily-summary?date=yesterday", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportCashSummary(t *testing.T) {
	store := &mockReportStore{
		financials: database.OrderFinancialsRow{OrderCount: 1, TotalDiscounted: num("100.00")},
		expenses:   num("10.00"),
		incomes:    num("0.00"),
		categories: []database.ExpenseCategoryRow{
			{Category: "GENERAL", EntryCount: 2, TotalAmount: num("10.00")},
		},
	}
	r, token := setupReportRouter(t, store)

	rec := doRequest(t, r, http.MethodGet, "/reports/cash-summary/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if ct := rec.Header().Get("Content-Type"); ct != want {
		t.Errorf("Content-Type = %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestReportsRequireOwner(t *testing.T) {
	manager := auth.NewManager("test-secret")
	token, err := manager.GenerateAccessToken(uuid.New(), enum.UserRoleStaff)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h := NewReportHandler(&mockReportStore{}, excel.NewGenerator(), zerolog.Nop())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(manager))
		r.Use(middleware.RequireRole(enum.UserRoleOwner))
		r.Get("/reports/cash-summary", h.CashSummary)
	})

	rec := doRequest(t, r, http.MethodGet, "/reports/cash-summary", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
