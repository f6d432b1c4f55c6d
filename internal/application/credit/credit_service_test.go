package credit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/pos"
	domaincredit "github.com/retailpos/backend/internal/domain/credit"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/settings"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type memoryCustomerRepo struct {
	customers map[uuid.UUID]*partner.Customer
}

func (r *memoryCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	return r.customers[id], nil
}

func (r *memoryCustomerRepo) FindAll(_ context.Context, _ shared.Filter) ([]partner.Customer, error) {
	return nil, nil
}

func (r *memoryCustomerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.customers)), nil
}

func (r *memoryCustomerRepo) Save(_ context.Context, c *partner.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *memoryCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

type memoryLedgerRepo struct {
	lines []partner.LedgerLine
}

func (r *memoryLedgerRepo) Save(_ context.Context, line *partner.LedgerLine) error {
	r.lines = append(r.lines, *line)
	return nil
}

func (r *memoryLedgerRepo) BalanceFor(_ context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, l := range r.lines {
		if l.CustomerID == customerID {
			balance = balance.Add(l.Debit).Sub(l.Credit)
		}
	}
	return balance, nil
}

func (r *memoryLedgerRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, from, to *time.Time) ([]partner.LedgerLine, error) {
	var out []partner.LedgerLine
	for _, l := range r.lines {
		if l.CustomerID != customerID {
			continue
		}
		if from != nil && l.Date.Before(*from) {
			continue
		}
		if to != nil && l.Date.After(*to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *memoryLedgerRepo) FindBySale(_ context.Context, saleID uuid.UUID) ([]partner.LedgerLine, error) {
	return nil, nil
}

func (r *memoryLedgerRepo) StatementTotals(ctx context.Context, customerID uuid.UUID, from, to *time.Time) (partner.StatementTotals, error) {
	lines, _ := r.FindByCustomer(ctx, customerID, from, to)
	totals := partner.StatementTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, l := range lines {
		totals.Debit = totals.Debit.Add(l.Debit)
		totals.Credit = totals.Credit.Add(l.Credit)
	}
	totals.Closing = totals.Debit.Sub(totals.Credit)
	return totals, nil
}

func (r *memoryLedgerRepo) DeleteBySale(_ context.Context, saleID uuid.UUID) error {
	return nil
}

type memorySettingsRepo struct {
	setting *settings.SiteSetting
}

func (r *memorySettingsRepo) Get(_ context.Context) (*settings.SiteSetting, error) {
	if r.setting == nil {
		r.setting = settings.DefaultSiteSetting()
	}
	return r.setting, nil
}

func (r *memorySettingsRepo) Save(_ context.Context, s *settings.SiteSetting) error {
	r.setting = s
	return nil
}

type fixture struct {
	customers *memoryCustomerRepo
	ledger    *memoryLedgerRepo
	settings  *memorySettingsRepo
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		customers: &memoryCustomerRepo{customers: make(map[uuid.UUID]*partner.Customer)},
		ledger:    &memoryLedgerRepo{},
		settings:  &memorySettingsRepo{},
	}
	scope := pos.NewNoOpTransactionScope(nil, nil, nil, nil, f.customers, f.ledger, f.settings)
	f.svc = NewService(scope, nil, zap.NewNop())
	return f
}

func (f *fixture) addCustomer(t *testing.T, limit string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer("Aye Aye")
	require.NoError(t, err)
	if limit != "" {
		require.NoError(t, c.SetCreditLimit(dec(limit)))
	}
	require.NoError(t, f.customers.Save(context.Background(), c))
	return c
}

func date() time.Time {
	return time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
}

func TestReceivePayment_ReducesBalance(t *testing.T) {
	f := newFixture()
	c := f.addCustomer(t, "100.00")

	opening, err := partner.NewDebitLine(c.ID, date(), "opening", dec("80.00"))
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(context.Background(), opening))

	resp, err := f.svc.ReceivePayment(context.Background(), PaymentRequest{
		CustomerID: c.ID,
		Date:       date(),
		Amount:     dec("30.00"),
		Reference:  "RCPT-9",
	})
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(dec("50.00")))

	require.Len(t, f.ledger.lines, 2)
	assert.True(t, f.ledger.lines[1].Credit.Equal(dec("30.00")))
	assert.Equal(t, "RCPT-9", f.ledger.lines[1].Description)
}

func TestReceivePayment_RejectsNonPositiveAmount(t *testing.T) {
	f := newFixture()
	c := f.addCustomer(t, "")

	_, err := f.svc.ReceivePayment(context.Background(), PaymentRequest{
		CustomerID: c.ID,
		Date:       date(),
		Amount:     decimal.Zero,
	})
	assert.Error(t, err)

	_, err = f.svc.ReceivePayment(context.Background(), PaymentRequest{
		CustomerID: c.ID,
		Date:       date(),
		Amount:     dec("-5.00"),
	})
	assert.Error(t, err)
}

func TestPostCharge_PostsDebit(t *testing.T) {
	f := newFixture()
	c := f.addCustomer(t, "100.00")

	resp, err := f.svc.PostCharge(context.Background(), ChargeRequest{
		CustomerID: c.ID,
		Date:       date(),
		Amount:     dec("40.00"),
		Reason:     "Delivery fee",
	})
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(dec("40.00")))
	require.Len(t, f.ledger.lines, 1)
	assert.True(t, f.ledger.lines[0].IsDebit())
}

func TestPostCharge_BlockedOverLimit(t *testing.T) {
	f := newFixture()
	st, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	st.EnforceCreditLimit = true
	c := f.addCustomer(t, "100.00")

	opening, err := partner.NewDebitLine(c.ID, date(), "opening", dec("80.00"))
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(context.Background(), opening))

	_, err = f.svc.PostCharge(context.Background(), ChargeRequest{
		CustomerID: c.ID,
		Date:       date(),
		Amount:     dec("30.00"),
		Reason:     "Delivery fee",
	})

	var blocked *domaincredit.LimitExceededError
	require.ErrorAs(t, err, &blocked)
	assert.True(t, blocked.Excess.Equal(dec("10.00")))
	assert.Len(t, f.ledger.lines, 1, "blocked charge writes nothing")
}

func TestPostCharge_UnknownCustomer(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PostCharge(context.Background(), ChargeRequest{
		CustomerID: uuid.New(),
		Date:       date(),
		Amount:     dec("10.00"),
		Reason:     "Delivery fee",
	})
	assert.Error(t, err)
}

func TestGetStatement_TotalsAndBalance(t *testing.T) {
	f := newFixture()
	c := f.addCustomer(t, "")

	debit, err := partner.NewDebitLine(c.ID, date(), "INV-1", dec("100.00"))
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(context.Background(), debit))
	creditLine, err := partner.NewCreditLine(c.ID, date().AddDate(0, 0, 1), "payment", dec("40.00"))
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(context.Background(), creditLine))

	stmt, err := f.svc.GetStatement(context.Background(), c.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, stmt.Lines, 2)
	assert.True(t, stmt.TotalDebit.Equal(dec("100.00")))
	assert.True(t, stmt.TotalCredit.Equal(dec("40.00")))
	assert.True(t, stmt.Balance.Equal(dec("60.00")))
}
