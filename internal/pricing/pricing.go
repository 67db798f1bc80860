// Package pricing computes discounts, subtotals, tax and grand totals for carts and
// placed orders.
//
// The per-unit discount is always multiplied by quantity. Rounding to cents happens
// once, on the final figures, never per line. A subtotal below zero is floored at zero.
package pricing

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the sales tax applied when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.06")

var hundred = decimal.NewFromInt(100)

// Totals is the price breakdown shown on the cart page, the order page and the invoice.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Line is the per-item breakdown used for display.
type Line struct {
	ProductID string          `json:"product_id"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Engine prices line items at a fixed tax rate.
type Engine struct {
	taxRate decimal.Decimal
}

// NewEngine returns an Engine using taxRate, e.g. 0.06 for six percent.
func NewEngine(taxRate decimal.Decimal) *Engine {
	return &Engine{taxRate: taxRate}
}

// TaxRate returns the rate the engine applies.
func (e *Engine) TaxRate() decimal.Decimal { return e.taxRate }

// LineDiscount is the discount on one unit: discount% of the unit price.
func LineDiscount(item models.LineItem) decimal.Decimal {
	return decimal.NewFromInt(int64(item.Discount)).Div(hundred).Mul(item.Price)
}

// LineSubtotal is price*quantity minus the per-unit discount times quantity.
func LineSubtotal(item models.LineItem) decimal.Decimal {
	qty := decimal.NewFromInt(int64(item.Quantity))
	return item.Price.Mul(qty).Sub(LineDiscount(item).Mul(qty))
}

// Subtotal sums LineSubtotal over items, floored at zero.
func Subtotal(items []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineSubtotal(item))
	}
	if sum.IsNegative() {
		return decimal.Zero
	}
	return sum
}

// Lines returns the display breakdown of every item, unrounded.
func Lines(items []models.LineItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Discount:  LineDiscount(item).Mul(decimal.NewFromInt(int64(item.Quantity))),
			Subtotal:  LineSubtotal(item),
		})
	}
	return lines
}

// Tax is the rounded tax on subtotal.
func (e *Engine) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return roundCents(e.taxRate.Mul(subtotal))
}

// GrandTotal is the rounded subtotal including tax. It is computed from the unrounded
// subtotal, so it may differ by a cent from Subtotal+Tax.
func (e *Engine) GrandTotal(subtotal decimal.Decimal) decimal.Decimal {
	return roundCents(decimal.NewFromInt(1).Add(e.taxRate).Mul(subtotal))
}

// Totals prices items.
func (e *Engine) Totals(items []models.LineItem) Totals {
	subtotal := Subtotal(items)
	return Totals{
		Subtotal:   roundCents(subtotal),
		Tax:        e.Tax(subtotal),
		GrandTotal: e.GrandTotal(subtotal),
	}
}

// Cents converts an amount to the integer minor units a payment gateway expects.
func Cents(amount decimal.Decimal) int64 {
	return roundCents(amount).Mul(hundred).IntPart()
}

// roundCents rounds half away from zero to two places, which is half-up for the
// non-negative amounts priced here.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
