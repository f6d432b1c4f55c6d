package sale

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineInput is one requested basket line on a positive basis. Quantity
// and money are unsigned here; the return sign is applied later in one
// place via Totals.Signed.
type LineInput struct {
	ProductID  uuid.UUID
	Label      string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TaxPercent decimal.Decimal
}

// LineAmount is the computed money for one basket line
type LineAmount struct {
	ProductID  uuid.UUID
	Quantity   int64
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
	TaxPercent decimal.Decimal
	TaxAmount  decimal.Decimal
}

// Totals is the value object holding every signed money field of a sale.
// It is computed on a positive basis and negated as a whole by Signed,
// so per-line and header figures always flip together.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Lines    []LineAmount
}

// Calculate computes subtotal, per-line tax and grand total for a basket.
//
// Each line's tax is rounded to 2 decimals independently before summing,
// matching per-line invoice display; summing first and rounding once can
// differ by a cent and the per-line figure is authoritative. Total is
// (subtotal - discount) + tax. All arithmetic is exact decimal.
func Calculate(lines []LineInput, discount decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, shared.NewDomainError("EMPTY_SALE", "A sale must contain at least one item")
	}
	if discount.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	amounts := make([]LineAmount, 0, len(lines))
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return Totals{}, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		if ln.UnitPrice.IsNegative() {
			return Totals{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		lineTotal := ln.UnitPrice.Mul(decimal.NewFromInt(ln.Quantity)).Round(2)
		lineTax := lineTotal.Mul(ln.TaxPercent).Div(decimal.NewFromInt(100)).Round(2)
		subtotal = subtotal.Add(lineTotal)
		tax = tax.Add(lineTax)
		amounts = append(amounts, LineAmount{
			ProductID:  ln.ProductID,
			Quantity:   ln.Quantity,
			UnitPrice:  ln.UnitPrice,
			LineTotal:  lineTotal,
			TaxPercent: ln.TaxPercent,
			TaxAmount:  lineTax,
		})
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
		Lines:    amounts,
	}, nil
}

// Signed returns the totals with the return sign applied. The factor is
// applied once, to header money, line money and line quantity together;
// discount stays unsigned. Passing isReturn=false returns a copy unchanged.
func (t Totals) Signed(isReturn bool) Totals {
	if !isReturn {
		return t
	}
	neg := decimal.NewFromInt(-1)
	out := Totals{
		Subtotal: t.Subtotal.Mul(neg),
		Discount: t.Discount,
		Tax:      t.Tax.Mul(neg),
		Total:    t.Total.Mul(neg),
		Lines:    make([]LineAmount, len(t.Lines)),
	}
	for i, ln := range t.Lines {
		ln.Quantity = -ln.Quantity
		ln.LineTotal = ln.LineTotal.Mul(neg)
		ln.TaxAmount = ln.TaxAmount.Mul(neg)
		out.Lines[i] = ln
	}
	return out
}
