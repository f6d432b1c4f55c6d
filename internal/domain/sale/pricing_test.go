package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCalculate_SingleLine(t *testing.T) {
	lines := []LineInput{
		{ProductID: uuid.New(), Label: "P1", Quantity: 2, UnitPrice: dec("50.00"), TaxPercent: dec("18")},
	}

	totals, err := Calculate(lines, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("100.00")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(dec("18.00")), "tax = %s", totals.Tax)
	assert.True(t, totals.Total.Equal(dec("118.00")), "total = %s", totals.Total)
	require.Len(t, totals.Lines, 1)
	assert.True(t, totals.Lines[0].LineTotal.Equal(dec("100.00")))
	assert.True(t, totals.Lines[0].TaxAmount.Equal(dec("18.00")))
}

func TestCalculate_DiscountAppliedBeforeTaxAddition(t *testing.T) {
	lines := []LineInput{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("200.00"), TaxPercent: dec("10")},
	}

	totals, err := Calculate(lines, dec("20.00"))
	require.NoError(t, err)

	// total = (subtotal - discount) + tax; tax is on the undiscounted line
	assert.True(t, totals.Subtotal.Equal(dec("200.00")))
	assert.True(t, totals.Tax.Equal(dec("20.00")))
	assert.True(t, totals.Total.Equal(dec("200.00")), "total = %s", totals.Total)
}

func TestCalculate_PerLineTaxRounding(t *testing.T) {
	// 0.25 * 18% = 0.045, rounds to 0.05 per line. Two such lines give
	// 0.10; rounding the summed 0.09 once would give 0.09 instead.
	pid := uuid.New()
	lines := []LineInput{
		{ProductID: pid, Quantity: 1, UnitPrice: dec("0.25"), TaxPercent: dec("18")},
		{ProductID: pid, Quantity: 1, UnitPrice: dec("0.25"), TaxPercent: dec("18")},
	}

	totals, err := Calculate(lines, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.Tax.Equal(dec("0.10")), "tax = %s", totals.Tax)
}

func TestCalculate_LineTaxSumsToHeaderTax(t *testing.T) {
	lines := []LineInput{
		{ProductID: uuid.New(), Quantity: 3, UnitPrice: dec("19.99"), TaxPercent: dec("7.5")},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("4.33"), TaxPercent: dec("18")},
		{ProductID: uuid.New(), Quantity: 5, UnitPrice: dec("0.99"), TaxPercent: dec("0")},
	}

	totals, err := Calculate(lines, dec("1.50"))
	require.NoError(t, err)

	sumLine := decimal.Zero
	sumTax := decimal.Zero
	for _, ln := range totals.Lines {
		sumLine = sumLine.Add(ln.LineTotal)
		sumTax = sumTax.Add(ln.TaxAmount)
	}
	assert.True(t, sumLine.Equal(totals.Subtotal))
	assert.True(t, sumTax.Equal(totals.Tax))
	assert.True(t, totals.Total.Equal(totals.Subtotal.Sub(totals.Discount).Add(totals.Tax)))
}

func TestCalculate_Validation(t *testing.T) {
	valid := LineInput{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("1.00")}

	_, err := Calculate(nil, decimal.Zero)
	assert.Error(t, err)

	_, err = Calculate([]LineInput{{ProductID: uuid.New(), Quantity: 0, UnitPrice: dec("1.00")}}, decimal.Zero)
	assert.Error(t, err)

	_, err = Calculate([]LineInput{{ProductID: uuid.New(), Quantity: -2, UnitPrice: dec("1.00")}}, decimal.Zero)
	assert.Error(t, err)

	_, err = Calculate([]LineInput{{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("-1.00")}}, decimal.Zero)
	assert.Error(t, err)

	_, err = Calculate([]LineInput{valid}, dec("-5"))
	assert.Error(t, err)
}

func TestSigned_NegatesHeaderAndLinesTogether(t *testing.T) {
	lines := []LineInput{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: dec("50.00"), TaxPercent: dec("18")},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("10.00"), TaxPercent: dec("5")},
	}

	totals, err := Calculate(lines, dec("5.00"))
	require.NoError(t, err)

	signed := totals.Signed(true)

	assert.True(t, signed.Subtotal.Equal(totals.Subtotal.Neg()))
	assert.True(t, signed.Tax.Equal(totals.Tax.Neg()))
	assert.True(t, signed.Total.Equal(totals.Total.Neg()))
	assert.True(t, signed.Discount.Equal(totals.Discount), "discount stays unsigned")
	for i, ln := range signed.Lines {
		assert.Equal(t, -totals.Lines[i].Quantity, ln.Quantity)
		assert.True(t, ln.LineTotal.Equal(totals.Lines[i].LineTotal.Neg()))
		assert.True(t, ln.TaxAmount.Equal(totals.Lines[i].TaxAmount.Neg()))
	}
}

func TestSigned_NoopForSales(t *testing.T) {
	lines := []LineInput{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: dec("50.00"), TaxPercent: dec("18")},
	}

	totals, err := Calculate(lines, decimal.Zero)
	require.NoError(t, err)

	signed := totals.Signed(false)
	assert.True(t, signed.Total.Equal(totals.Total))
	assert.Equal(t, totals.Lines[0].Quantity, signed.Lines[0].Quantity)
}
