package pos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/credit"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/settings"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

type memoryProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memoryProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.products[id], nil
}

func (r *memoryProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryProductRepo) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memoryProductRepo) FindByBarcode(_ context.Context, barcode string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memoryProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *memoryProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memoryProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

type memoryMovementRepo struct {
	movements []inventory.StockMovement
}

func (r *memoryMovementRepo) Save(_ context.Context, m *inventory.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memoryMovementRepo) SaveAll(_ context.Context, ms []*inventory.StockMovement) error {
	for _, m := range ms {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *memoryMovementRepo) FindByRef(_ context.Context, ref string) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.Ref == ref {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMovementRepo) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMovementRepo) OnHand(_ context.Context, productID uuid.UUID) (int64, error) {
	var sum int64
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.Change
		}
	}
	return sum, nil
}

func (r *memoryMovementRepo) OnHandByProducts(_ context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64)
	for _, id := range productIDs {
		for _, m := range r.movements {
			if m.ProductID == id {
				out[id] += m.Change
			}
		}
	}
	return out, nil
}

func (r *memoryMovementRepo) DeleteByRefs(_ context.Context, refs []string) error {
	keep := r.movements[:0]
	for _, m := range r.movements {
		matched := false
		for _, ref := range refs {
			if m.Ref == ref {
				matched = true
				break
			}
		}
		if !matched {
			keep = append(keep, m)
		}
	}
	r.movements = keep
	return nil
}

type memorySaleRepo struct {
	sales map[uuid.UUID]*sale.Sale
	seq   int64
}

func newMemorySaleRepo() *memorySaleRepo {
	return &memorySaleRepo{sales: make(map[uuid.UUID]*sale.Sale)}
}

func (r *memorySaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sale.Sale, error) {
	return r.sales[id], nil
}

func (r *memorySaleRepo) FindByNumber(_ context.Context, number int64) (*sale.Sale, error) {
	for _, s := range r.sales {
		if s.Number == number {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memorySaleRepo) FindAll(_ context.Context, _ shared.Filter) ([]sale.Sale, error) {
	var out []sale.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memorySaleRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]sale.Sale, error) {
	var out []sale.Sale
	for _, s := range r.sales {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memorySaleRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.sales)), nil
}

func (r *memorySaleRepo) NextNumber(_ context.Context) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *memorySaleRepo) Save(_ context.Context, s *sale.Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *memorySaleRepo) DeleteItems(_ context.Context, saleID uuid.UUID) error {
	if s, ok := r.sales[saleID]; ok {
		s.Items = nil
	}
	return nil
}

type memoryPurchaseRepo struct {
	purchases map[uuid.UUID]*trade.Purchase
	seq       int64
}

func newMemoryPurchaseRepo() *memoryPurchaseRepo {
	return &memoryPurchaseRepo{purchases: make(map[uuid.UUID]*trade.Purchase)}
}

func (r *memoryPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.Purchase, error) {
	return r.purchases[id], nil
}

func (r *memoryPurchaseRepo) FindAll(_ context.Context, _ shared.Filter) ([]trade.Purchase, error) {
	var out []trade.Purchase
	for _, p := range r.purchases {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryPurchaseRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]trade.Purchase, error) {
	var out []trade.Purchase
	for _, p := range r.purchases {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPurchaseRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.purchases)), nil
}

func (r *memoryPurchaseRepo) NextNumber(_ context.Context) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *memoryPurchaseRepo) Save(_ context.Context, p *trade.Purchase) error {
	r.purchases[p.ID] = p
	return nil
}

type memoryCustomerRepo struct {
	customers map[uuid.UUID]*partner.Customer
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[uuid.UUID]*partner.Customer)}
}

func (r *memoryCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	return r.customers[id], nil
}

func (r *memoryCustomerRepo) FindAll(_ context.Context, _ shared.Filter) ([]partner.Customer, error) {
	var out []partner.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
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
	var out []partner.LedgerLine
	for _, l := range r.lines {
		if l.SaleID != nil && *l.SaleID == saleID {
			out = append(out, l)
		}
	}
	return out, nil
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
	keep := r.lines[:0]
	for _, l := range r.lines {
		if l.SaleID == nil || *l.SaleID != saleID {
			keep = append(keep, l)
		}
	}
	r.lines = keep
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

// recordingNotifier captures alerts so tests can wait for the
// fire-and-forget goroutine
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []credit.Alert
	fired  chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{fired: make(chan struct{}, 8)}
}

func (n *recordingNotifier) NotifyCreditAlert(_ context.Context, alert credit.Alert) error {
	n.mu.Lock()
	n.alerts = append(n.alerts, alert)
	n.mu.Unlock()
	n.fired <- struct{}{}
	return nil
}

func (n *recordingNotifier) received() []credit.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]credit.Alert, len(n.alerts))
	copy(out, n.alerts)
	return out
}

// posFixture wires the in-memory repositories behind a NoOp scope
type posFixture struct {
	products  *memoryProductRepo
	movements *memoryMovementRepo
	sales     *memorySaleRepo
	purchases *memoryPurchaseRepo
	customers *memoryCustomerRepo
	ledger    *memoryLedgerRepo
	settings  *memorySettingsRepo
	notifier  *recordingNotifier
	scope     *NoOpTransactionScope
}

func newPOSFixture() *posFixture {
	f := &posFixture{
		products:  newMemoryProductRepo(),
		movements: &memoryMovementRepo{},
		sales:     newMemorySaleRepo(),
		purchases: newMemoryPurchaseRepo(),
		customers: newMemoryCustomerRepo(),
		ledger:    &memoryLedgerRepo{},
		settings:  &memorySettingsRepo{},
		notifier:  newRecordingNotifier(),
	}
	f.scope = NewNoOpTransactionScope(
		f.products, f.movements, f.sales, f.purchases, f.customers, f.ledger, f.settings,
	)
	return f
}
