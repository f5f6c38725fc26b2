package pdf

import (
	"bytes"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/halipro/api/internal/database"
)

// Generator renders order receipts with the built-in fonts, so no font files
// ship with the binary.
type Generator struct {
	businessName string
}

func NewGenerator(businessName string) *Generator {
	if businessName == "" {
		businessName = "HaliPro"
	}
	return &Generator{businessName: businessName}
}

// OrderReceipt renders a one-page A4 receipt for the order.
func (g *Generator) OrderReceipt(order database.Order, items []database.OrderItem) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 10, g.businessName)
	doc.Ln(12)

	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(0, 7, fmt.Sprintf("Receipt %s", order.OrderNumber))
	doc.Ln(9)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 6, fmt.Sprintf("Customer: %s (%s)", order.CustomerName, order.CustomerPhone))
	doc.Ln(6)
	if order.CustomerAddress != "" {
		doc.Cell(0, 6, fmt.Sprintf("Address: %s", order.CustomerAddress))
		doc.Ln(6)
	}
	doc.Cell(0, 6, fmt.Sprintf("Pickup: %s", order.PickupDate.Format("2006-01-02")))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Delivery: %s", order.DeliveryDate.Format("2006-01-02")))
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(80, 7, "Item", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 7, "Qty", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 7, "Unit price", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 7, "Total", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, item := range items {
		doc.CellFormat(80, 7, item.ProductName, "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 7, numericString(item.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, numericString(item.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, numericString(item.LineTotal), "1", 1, "R", false, 0, "")
	}
	doc.Ln(4)

	totals := []struct {
		label string
		value string
	}{
		{"Total", numericString(order.TotalAmount)},
		{"Discount", numericString(order.DiscountAmount)},
		{"Amount due", numericString(order.DiscountedTotal)},
		{"Paid", numericString(order.PaidAmount)},
		{"Remaining", numericString(order.RemainingAmount)},
	}
	for _, row := range totals {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(145, 6, row.label, "", 0, "R", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(35, 6, row.value, "", 1, "R", false, 0, "")
	}

	if order.Notes.Valid {
		doc.Ln(4)
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, 5, fmt.Sprintf("Notes: %s", order.Notes.String), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func numericString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return "0.00"
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).StringFixed(2)
}
