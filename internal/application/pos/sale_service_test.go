package pos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	domaincredit "github.com/retailpos/backend/internal/domain/credit"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func (f *posFixture) service() *SaleService {
	return NewSaleService(f.scope, f.notifier, zap.NewNop())
}

func (f *posFixture) addProduct(t *testing.T, code string, price, taxPercent string, onHand int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, code+" product", dec(price), dec("0"), dec(taxPercent))
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), p))
	if onHand != 0 {
		mv, err := inventory.NewStockMovement(p.ID, onHand, inventory.ReasonAdjustment, "OPENING")
		require.NoError(t, err)
		require.NoError(t, f.movements.Save(context.Background(), mv))
	}
	return p
}

func (f *posFixture) addCustomer(t *testing.T, name, limit string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(name)
	require.NoError(t, err)
	if limit != "" {
		require.NoError(t, c.SetCreditLimit(dec(limit)))
	}
	require.NoError(t, f.customers.Save(context.Background(), c))
	return c
}

func (f *posFixture) onHand(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	have, err := f.movements.OnHand(context.Background(), productID)
	require.NoError(t, err)
	return have
}

func (f *posFixture) balance(t *testing.T, customerID uuid.UUID) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.BalanceFor(context.Background(), customerID)
	require.NoError(t, err)
	return b
}

func saleDate() time.Time {
	return time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
}

func TestCreateSale_FullyPaidWalkIn(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "18", 10)

	resp, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("118.00"),
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 2, UnitPrice: dec("50.00")},
		},
	}, nil)
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(dec("100.00")))
	assert.True(t, resp.Tax.Equal(dec("18.00")))
	assert.True(t, resp.Total.Equal(dec("118.00")))
	assert.True(t, resp.Due.IsZero())
	assert.Equal(t, "INV-1", resp.Reference)

	assert.Equal(t, int64(8), f.onHand(t, p.ID))
	assert.Empty(t, f.ledger.lines, "fully paid sale posts no ledger line")
}

func TestCreateSale_MovementsMirrorItemQuantities(t *testing.T) {
	f := newPOSFixture()
	p1 := f.addProduct(t, "A", "10.00", "0", 20)
	p2 := f.addProduct(t, "B", "5.00", "0", 20)

	resp, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("45.00"),
		Items: []ItemRequest{
			{ProductID: p1.ID, Quantity: 3, UnitPrice: dec("10.00")},
			{ProductID: p2.ID, Quantity: 3, UnitPrice: dec("5.00")},
		},
	}, nil)
	require.NoError(t, err)

	moves, err := f.movements.FindByRef(context.Background(), resp.Reference)
	require.NoError(t, err)
	require.Len(t, moves, 2)

	posted, err := f.sales.FindByID(context.Background(), resp.SaleID)
	require.NoError(t, err)

	var moveSum, qtySum int64
	for _, m := range moves {
		moveSum += m.Change
		assert.Equal(t, inventory.ReasonSale, m.Reason)
	}
	for _, item := range posted.Items {
		qtySum += item.Quantity
	}
	assert.Equal(t, -qtySum, moveSum)
}

func TestCreateSale_ItemsSumToHeaderTotals(t *testing.T) {
	f := newPOSFixture()
	p1 := f.addProduct(t, "A", "19.99", "7.5", 50)
	p2 := f.addProduct(t, "B", "4.33", "18", 50)

	resp, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "card",
		Discount:      dec("1.50"),
		Paid:          dec("100.00"),
		Items: []ItemRequest{
			{ProductID: p1.ID, Quantity: 3, UnitPrice: dec("19.99")},
			{ProductID: p2.ID, Quantity: 1, UnitPrice: dec("4.33")},
		},
	}, nil)
	require.NoError(t, err)

	posted, err := f.sales.FindByID(context.Background(), resp.SaleID)
	require.NoError(t, err)

	sumLine := decimal.Zero
	sumTax := decimal.Zero
	for _, item := range posted.Items {
		sumLine = sumLine.Add(item.LineTotal)
		sumTax = sumTax.Add(item.TaxAmount)
	}
	assert.True(t, sumLine.Equal(posted.Subtotal))
	assert.True(t, sumTax.Equal(posted.Tax))
	assert.True(t, posted.Total.Equal(posted.Subtotal.Sub(posted.Discount).Add(posted.Tax)))
}

func TestCreateSale_StockShortfallWritesNothing(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "0", 5)

	_, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("300.00"),
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 6, UnitPrice: dec("50.00")},
		},
	}, nil)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 1)
	assert.Equal(t, int64(6), stockErr.Shortfalls[0].Requested)
	assert.Equal(t, int64(5), stockErr.Shortfalls[0].Available)

	assert.Empty(t, f.sales.sales)
	assert.Equal(t, int64(5), f.onHand(t, p.ID), "on-hand unchanged after rejection")
}

func TestCreateSale_DuplicateLinesAggregateForStockCheck(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "0", 5)

	_, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("300.00"),
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 3, UnitPrice: dec("50.00")},
			{ProductID: p.ID, Quantity: 3, UnitPrice: dec("50.00")},
		},
	}, nil)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(6), stockErr.Shortfalls[0].Requested)
}

func TestCreateSale_CreditBlockLeavesBalanceUnchanged(t *testing.T) {
	f := newPOSFixture()
	st, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	st.EnforceCreditLimit = true

	p := f.addProduct(t, "SOAP", "30.00", "0", 100)
	c := f.addCustomer(t, "Aye Aye", "100.00")

	// pre-existing balance of 80.00
	line, err := partner.NewDebitLine(c.ID, saleDate(), "opening", dec("80.00"))
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(context.Background(), line))

	_, err = f.service().CreateSale(context.Background(), SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "credit",
		Paid:          decimal.Zero,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 1, UnitPrice: dec("30.00")},
		},
	}, nil)

	var blocked *domaincredit.LimitExceededError
	require.ErrorAs(t, err, &blocked)
	assert.True(t, blocked.Excess.Equal(dec("10.00")))

	assert.True(t, f.balance(t, c.ID).Equal(dec("80.00")))
	assert.Empty(t, f.sales.sales)
	assert.Equal(t, int64(100), f.onHand(t, p.ID))
}

func TestCreateSale_AlertFiresWithoutBlockingWhenEnforcementOff(t *testing.T) {
	f := newPOSFixture()
	st, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	st.EnforceCreditLimit = false

	p := f.addProduct(t, "SOAP", "85.00", "0", 10)
	c := f.addCustomer(t, "Aye Aye", "100.00")

	resp, err := f.service().CreateSale(context.Background(), SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "credit",
		Paid:          decimal.Zero,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 1, UnitPrice: dec("85.00")},
		},
	}, nil)
	require.NoError(t, err, "enforcement off must never block")
	assert.True(t, resp.Due.Equal(dec("85.00")))

	select {
	case <-f.notifier.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a credit alert")
	}
	alerts := f.notifier.received()
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Percent.Equal(dec("85")))
}

func TestCreateSale_BelowThresholdNoAlert(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "0", 10)
	c := f.addCustomer(t, "Aye Aye", "100.00")

	_, err := f.service().CreateSale(context.Background(), SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "credit",
		Paid:          decimal.Zero,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 1, UnitPrice: dec("50.00")},
		},
	}, nil)
	require.NoError(t, err)

	select {
	case <-f.notifier.fired:
		t.Fatal("50 percent of limit must not alert at an 80 percent threshold")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCreateSale_UnpaidCreditSalePostsDebit(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "18", 10)
	c := f.addCustomer(t, "Aye Aye", "500.00")

	resp, err := f.service().CreateSale(context.Background(), SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "credit",
		Paid:          dec("18.00"),
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 2, UnitPrice: dec("50.00")},
		},
	}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Due.Equal(dec("100.00")))

	require.Len(t, f.ledger.lines, 1)
	assert.True(t, f.ledger.lines[0].IsDebit())
	assert.True(t, f.ledger.lines[0].Debit.Equal(dec("100.00")))
	assert.Equal(t, "INV-1", f.ledger.lines[0].Description)
	require.NotNil(t, f.ledger.lines[0].SaleID)
	assert.Equal(t, resp.SaleID, *f.ledger.lines[0].SaleID)
	assert.True(t, f.balance(t, c.ID).Equal(dec("100.00")))
}

func TestCreateReturn_RestoresStockAndPostsCredit(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "18", 10)
	c := f.addCustomer(t, "Aye Aye", "500.00")
	svc := f.service()

	saleResp, err := svc.CreateSale(context.Background(), SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("118.00"),
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 2, UnitPrice: dec("50.00")},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(8), f.onHand(t, p.ID))

	// unrefunded return of the same basket
	retResp, err := svc.CreateSale(context.Background(), SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          decimal.Zero,
		IsReturn:      true,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 2, UnitPrice: dec("50.00")},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "CRN-2", retResp.Reference)
	assert.True(t, retResp.Subtotal.Equal(saleResp.Subtotal.Neg()))
	assert.True(t, retResp.Tax.Equal(saleResp.Tax.Neg()))
	assert.True(t, retResp.Total.Equal(saleResp.Total.Neg()))

	assert.Equal(t, int64(10), f.onHand(t, p.ID), "return puts the stock back")

	// store owes the customer 118.00
	require.Len(t, f.ledger.lines, 1)
	assert.False(t, f.ledger.lines[0].IsDebit())
	assert.True(t, f.ledger.lines[0].Credit.Equal(dec("118.00")))
	assert.True(t, f.balance(t, c.ID).Equal(dec("-118.00")))
}

func TestCreateReturn_SkipsStockCheck(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "0", 0)

	_, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("100.00"),
		IsReturn:      true,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 2, UnitPrice: dec("50.00")},
		},
	}, nil)
	require.NoError(t, err, "returns never fail the stock check")
	assert.Equal(t, int64(2), f.onHand(t, p.ID))
}

func TestEditSale_SameItemsIsIdempotent(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "18", 10)
	c := f.addCustomer(t, "Aye Aye", "500.00")
	svc := f.service()

	req := SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "credit",
		Paid:          decimal.Zero,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 2, UnitPrice: dec("50.00")},
		},
	}
	resp, err := svc.CreateSale(context.Background(), req, nil)
	require.NoError(t, err)

	stockBefore := f.onHand(t, p.ID)
	balanceBefore := f.balance(t, c.ID)

	edited, err := svc.EditSale(context.Background(), resp.SaleID, req)
	require.NoError(t, err)

	assert.Equal(t, resp.Number, edited.Number)
	assert.Equal(t, stockBefore, f.onHand(t, p.ID), "replaying identical items nets to zero stock delta")
	assert.True(t, f.balance(t, c.ID).Equal(balanceBefore))
	assert.Len(t, f.ledger.lines, 1, "old ledger line replaced, not duplicated")
}

func TestEditSale_NewItemsReplacePostings(t *testing.T) {
	f := newPOSFixture()
	p1 := f.addProduct(t, "A", "10.00", "0", 20)
	p2 := f.addProduct(t, "B", "5.00", "0", 20)
	svc := f.service()

	resp, err := svc.CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("30.00"),
		Items: []ItemRequest{
			{ProductID: p1.ID, Quantity: 3, UnitPrice: dec("10.00")},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(17), f.onHand(t, p1.ID))

	_, err = svc.EditSale(context.Background(), resp.SaleID, SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Paid:          dec("10.00"),
		Items: []ItemRequest{
			{ProductID: p2.ID, Quantity: 2, UnitPrice: dec("5.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20), f.onHand(t, p1.ID), "prior movements reversed")
	assert.Equal(t, int64(18), f.onHand(t, p2.ID))

	moves, err := f.movements.FindByRef(context.Background(), resp.Reference)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, p2.ID, moves[0].ProductID)
}

func TestEditSale_GrowingTotalCanNewlyBlock(t *testing.T) {
	f := newPOSFixture()
	st, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	st.EnforceCreditLimit = true

	p := f.addProduct(t, "SOAP", "60.00", "0", 100)
	c := f.addCustomer(t, "Aye Aye", "100.00")
	svc := f.service()

	resp, err := svc.CreateSale(context.Background(), SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "credit",
		Paid:          decimal.Zero,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 1, UnitPrice: dec("60.00")},
		},
	}, nil)
	require.NoError(t, err)
	require.True(t, f.balance(t, c.ID).Equal(dec("60.00")))

	// the edit is checked against the balance minus the reversed line, so
	// 2 units (120.00) exceed the 100.00 limit
	_, err = svc.EditSale(context.Background(), resp.SaleID, SaleRequest{
		CustomerID:    &c.ID,
		Date:          saleDate(),
		PaymentMethod: "credit",
		Paid:          decimal.Zero,
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 2, UnitPrice: dec("60.00")},
		},
	})

	var blocked *domaincredit.LimitExceededError
	require.ErrorAs(t, err, &blocked)
	assert.True(t, blocked.Current.Equal(dec("0.00")), "prior ledger line excluded from current balance")
	assert.True(t, blocked.Excess.Equal(dec("20.00")))
}

func TestCreateSale_UnknownProductRejected(t *testing.T) {
	f := newPOSFixture()

	_, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Items: []ItemRequest{
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("1.00")},
		},
	}, nil)
	require.Error(t, err)
	assert.Empty(t, f.sales.sales)
}

func TestCreateSale_InactiveProductRejected(t *testing.T) {
	f := newPOSFixture()
	p := f.addProduct(t, "SOAP", "50.00", "0", 10)
	p.Deactivate()
	require.NoError(t, f.products.Save(context.Background(), p))

	_, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
		Items: []ItemRequest{
			{ProductID: p.ID, Quantity: 1, UnitPrice: dec("50.00")},
		},
	}, nil)
	require.Error(t, err)
}

func TestCreateSale_EmptyBasketRejected(t *testing.T) {
	f := newPOSFixture()

	_, err := f.service().CreateSale(context.Background(), SaleRequest{
		Date:          saleDate(),
		PaymentMethod: "cash",
	}, nil)
	require.Error(t, err)
}
