package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Cash Summary"

// CashSummaryData is everything the workbook needs, preformatted. Money
// values arrive as fixed two-decimal strings so the sheet matches the API
// responses exactly.
type CashSummaryData struct {
	From                  string
	To                    string
	OrderCount            int64
	TotalAmountAllOrders  string
	TotalDiscount         string
	TotalOrderIncome      string
	TotalAdditionalIncome string
	GrandTotalIncome      string
	TotalPaid             string
	TotalRemaining        string
	TotalExpense          string
	NetProfit             string
	ExpenseCategories     []ExpenseCategoryRow
}

type ExpenseCategoryRow struct {
	Category    string
	EntryCount  int64
	TotalAmount string
}

// Generator renders report workbooks.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// CashSummary renders the financial overview sheet followed by the expense
// category breakdown.
func (g *Generator) CashSummary(data CashSummaryData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "C", 18)

	_ = f.SetCellValue(sheetName, "A1", "Cash Summary")
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	period := "all time"
	if data.From != "" || data.To != "" {
		period = fmt.Sprintf("%s to %s", data.From, data.To)
	}
	_ = f.SetCellValue(sheetName, "A2", "Period")
	_ = f.SetCellValue(sheetName, "B2", period)

	rows := []struct {
		label string
		value any
	}{
		{"Order count", data.OrderCount},
		{"Total amount (all orders)", data.TotalAmountAllOrders},
		{"Total discount", data.TotalDiscount},
		{"Order income", data.TotalOrderIncome},
		{"Additional income", data.TotalAdditionalIncome},
		{"Grand total income", data.GrandTotalIncome},
		{"Collected", data.TotalPaid},
		{"Outstanding", data.TotalRemaining},
		{"Total expenses", data.TotalExpense},
		{"Net profit", data.NetProfit},
	}
	rowIdx := 4
	for _, row := range rows {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), row.label)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx), row.value)
		rowIdx++
	}

	rowIdx++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), "Expenses by category")
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowIdx), fmt.Sprintf("A%d", rowIdx), headerStyle)
	rowIdx++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), "Category")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx), "Entries")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIdx), "Amount")
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowIdx), fmt.Sprintf("C%d", rowIdx), headerStyle)
	for _, cat := range data.ExpenseCategories {
		rowIdx++
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), cat.Category)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx), cat.EntryCount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIdx), cat.TotalAmount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
