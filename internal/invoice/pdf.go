// Package invoice renders a placed order as a PDF.
package invoice

import (
	"fmt"
	"io"

	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/go-pdf/fpdf"
)

// Document is everything printed on an invoice.
type Document struct {
	Order    *models.Order
	Customer *models.User
	Lines    []pricing.Line
	Totals   pricing.Totals
}

// FileName is the name the invoice is served under.
func FileName(invoice string) string {
	return fmt.Sprintf("%s.pdf", invoice)
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Product", 62, "L"},
	{"Color", 24, "L"},
	{"Qty", 14, "R"},
	{"Price", 28, "R"},
	{"Discount", 28, "R"},
	{"Subtotal", 34, "R"},
}

// Render writes doc as a one page A4 PDF to w.
func Render(w io.Writer, doc Document) error {
	if doc.Order == nil {
		return fmt.Errorf("invoice: order is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+doc.Order.Invoice, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Invoice", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Invoice: "+doc.Order.Invoice, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+doc.Order.CreatedAt.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+string(doc.Order.Status), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if c := doc.Customer; c != nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, "Bill to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range []string{
			c.Name,
			c.Email,
			c.Contact,
			c.Address,
			fmt.Sprintf("%s %s %s %s", c.City, c.State, c.Zipcode, c.Country),
		} {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for i, item := range doc.Order.Items {
		discount, subtotal := "", ""
		if i < len(doc.Lines) {
			discount = doc.Lines[i].Discount.StringFixed(2)
			subtotal = doc.Lines[i].Subtotal.StringFixed(2)
		}
		cells := []string{
			tr(item.Name),
			tr(item.Color),
			fmt.Sprintf("%d", item.Quantity),
			item.Price.StringFixed(2),
			discount,
			subtotal,
		}
		for j, col := range columns {
			pdf.CellFormat(col.width, 7, cells[j], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	labelWidth := 156.0
	for _, row := range []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", doc.Totals.Subtotal.StringFixed(2), false},
		{"Tax", doc.Totals.Tax.StringFixed(2), false},
		{"Grand total", doc.Totals.GrandTotal.StringFixed(2), true},
	} {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelWidth, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(34, 7, "$"+row.value, "", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoice: failed to render %s: %w", doc.Order.Invoice, err)
	}
	return nil
}
