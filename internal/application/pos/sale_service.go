package pos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/credit"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService is the sale transaction orchestrator. A posting runs as one
// atomic unit: stock validation, pricing, credit enforcement, then the
// sale header, its items, its stock movements and its ledger line. Either
// all writes land or none do. The credit alert fires after commit and can
// never fail the transaction.
type SaleService struct {
	scope    TransactionScope
	notifier credit.Notifier
	logger   *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(scope TransactionScope, notifier credit.Notifier, logger *zap.Logger) *SaleService {
	return &SaleService{
		scope:    scope,
		notifier: notifier,
		logger:   logger,
	}
}

// pendingAlert carries what the post-commit alert check needs out of the
// transaction closure
type pendingAlert struct {
	customer  *partner.Customer
	projected decimal.Decimal
	policy    credit.Policy
}

// CreateSale posts a new sale or return.
//
// Inside one transaction: stock is validated (skipped for returns, which
// only add stock), totals are computed on a positive basis, the credit
// policy evaluates the net due before anything is written, then the sale,
// items, movements and ledger line are persisted together.
func (s *SaleService) CreateSale(ctx context.Context, req SaleRequest, actorID *uuid.UUID) (*SaleResponse, error) {
	var resp *SaleResponse
	var alert *pendingAlert

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := s.loadLines(ctx, repos, req.Items)
		if err != nil {
			return err
		}
		if !req.IsReturn {
			if err := s.checkStock(ctx, repos, lines); err != nil {
				return err
			}
		}

		totals, err := sale.Calculate(lines, req.Discount)
		if err != nil {
			return err
		}
		signed := totals.Signed(req.IsReturn)

		policy, err := s.loadPolicy(ctx, repos)
		if err != nil {
			return err
		}
		customer, balance, err := s.loadCustomer(ctx, repos, req.CustomerID)
		if err != nil {
			return err
		}

		due := signed.Total.Sub(req.Paid)
		if !req.IsReturn && customer != nil && due.GreaterThan(decimal.Zero) {
			if err := policy.Evaluate(customer, balance, due); err != nil {
				return err
			}
		}

		number, err := repos.SaleRepo().NextNumber(ctx)
		if err != nil {
			return err
		}
		posted, err := sale.NewSale(number, req.CustomerID, req.Date, req.PaymentMethod, req.Paid, req.IsReturn, signed, actorID)
		if err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, posted); err != nil {
			return err
		}
		if err := s.writeMovements(ctx, repos, posted); err != nil {
			return err
		}
		if err := s.postLedger(ctx, repos, posted, customer); err != nil {
			return err
		}

		if customer != nil && due.GreaterThan(decimal.Zero) {
			alert = &pendingAlert{customer: customer, projected: balance.Add(due), policy: policy}
		}
		resp = s.response(posted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fireAlert(alert)
	return resp, nil
}

// EditSale replaces a posted sale's content by reverse-and-replay: the
// prior stock movements, items and ledger lines are deleted, then the new
// basket is posted through the same steps as create, all in one
// transaction. Stock is not re-validated on edit; the credit check runs
// against the balance that already excludes the deleted prior ledger
// line, so growing a sale can newly block even though it posted before.
func (s *SaleService) EditSale(ctx context.Context, saleID uuid.UUID, req SaleRequest) (*SaleResponse, error) {
	var resp *SaleResponse
	var alert *pendingAlert

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.SaleRepo().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if existing == nil {
			return shared.NewDomainError("SALE_NOT_FOUND", "Sale does not exist")
		}

		refs := []string{
			fmt.Sprintf("INV-%d", existing.Number),
			fmt.Sprintf("CRN-%d", existing.Number),
		}
		if err := repos.MovementRepo().DeleteByRefs(ctx, refs); err != nil {
			return err
		}
		if err := repos.SaleRepo().DeleteItems(ctx, existing.ID); err != nil {
			return err
		}
		if err := repos.LedgerRepo().DeleteBySale(ctx, existing.ID); err != nil {
			return err
		}

		lines, err := s.loadLines(ctx, repos, req.Items)
		if err != nil {
			return err
		}
		totals, err := sale.Calculate(lines, req.Discount)
		if err != nil {
			return err
		}
		signed := totals.Signed(req.IsReturn)

		policy, err := s.loadPolicy(ctx, repos)
		if err != nil {
			return err
		}
		customer, balance, err := s.loadCustomer(ctx, repos, req.CustomerID)
		if err != nil {
			return err
		}

		due := signed.Total.Sub(req.Paid)
		if !req.IsReturn && customer != nil && due.GreaterThan(decimal.Zero) {
			if err := policy.Evaluate(customer, balance, due); err != nil {
				return err
			}
		}

		if err := existing.Replace(req.CustomerID, req.Date, req.PaymentMethod, req.Paid, req.IsReturn, signed); err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, existing); err != nil {
			return err
		}
		if err := s.writeMovements(ctx, repos, existing); err != nil {
			return err
		}
		if err := s.postLedger(ctx, repos, existing, customer); err != nil {
			return err
		}

		if customer != nil && due.GreaterThan(decimal.Zero) {
			alert = &pendingAlert{customer: customer, projected: balance.Add(due), policy: policy}
		}
		resp = s.response(existing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fireAlert(alert)
	return resp, nil
}

// GetSale loads a posted sale with its items
func (s *SaleService) GetSale(ctx context.Context, saleID uuid.UUID) (*sale.Sale, error) {
	var found *sale.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sl, err := repos.SaleRepo().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if sl == nil {
			return shared.NewDomainError("SALE_NOT_FOUND", "Sale does not exist")
		}
		found = sl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListSales returns a page of posted sales, optionally filtered by
// customer or return flag
func (s *SaleService) ListSales(ctx context.Context, filter shared.Filter) (*shared.Paginated[sale.Sale], error) {
	var page shared.Paginated[sale.Sale]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sales, err := repos.SaleRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.SaleRepo().Count(ctx, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(sales, total, filter.Page, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// loadLines resolves the requested products and snapshots their tax rate
func (s *SaleService) loadLines(ctx context.Context, repos TransactionalRepositories, items []ItemRequest) ([]sale.LineInput, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_SALE", "A sale must contain at least one item")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := repos.ProductRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]int, len(products))
	for i := range products {
		byID[products[i].ID] = i
	}

	lines := make([]sale.LineInput, 0, len(items))
	for _, it := range items {
		idx, ok := byID[it.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s does not exist", it.ProductID))
		}
		p := &products[idx]
		if !p.Active {
			return nil, shared.NewDomainError("PRODUCT_INACTIVE", fmt.Sprintf("Product %s is inactive", p.Label()))
		}
		lines = append(lines, sale.LineInput{
			ProductID:  p.ID,
			Label:      p.Label(),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TaxPercent: p.TaxPercent,
		})
	}
	return lines, nil
}

// checkStock validates aggregated quantities against on-hand. Duplicate
// product lines are summed first so a basket cannot slip past the check
// by splitting one demand across lines.
func (s *SaleService) checkStock(ctx context.Context, repos TransactionalRepositories, lines []sale.LineInput) error {
	order := make([]uuid.UUID, 0, len(lines))
	wanted := make(map[uuid.UUID]*inventory.Requirement, len(lines))
	for _, ln := range lines {
		if req, ok := wanted[ln.ProductID]; ok {
			req.Quantity += ln.Quantity
			continue
		}
		wanted[ln.ProductID] = &inventory.Requirement{
			ProductID: ln.ProductID,
			Label:     ln.Label,
			Quantity:  ln.Quantity,
		}
		order = append(order, ln.ProductID)
	}

	reqs := make([]inventory.Requirement, 0, len(order))
	for _, id := range order {
		reqs = append(reqs, *wanted[id])
	}
	return inventory.NewAvailabilityChecker(repos.MovementRepo()).Check(ctx, reqs)
}

func (s *SaleService) loadPolicy(ctx context.Context, repos TransactionalRepositories) (credit.Policy, error) {
	st, err := repos.SettingsRepo().Get(ctx)
	if err != nil {
		return credit.Policy{}, err
	}
	return credit.Policy{
		Enforce:      st.EnforceCreditLimit,
		AlertPercent: st.CreditAlertPercent,
	}, nil
}

func (s *SaleService) loadCustomer(ctx context.Context, repos TransactionalRepositories, customerID *uuid.UUID) (*partner.Customer, decimal.Decimal, error) {
	if customerID == nil {
		return nil, decimal.Zero, nil
	}
	customer, err := repos.CustomerRepo().FindByID(ctx, *customerID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if customer == nil {
		return nil, decimal.Zero, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer does not exist")
	}
	balance, err := repos.LedgerRepo().BalanceFor(ctx, customer.ID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return customer, balance, nil
}

// writeMovements emits one stock movement per item. Item quantities are
// already signed, so change = -quantity covers both directions: a sale
// removes stock and a return puts it back.
func (s *SaleService) writeMovements(ctx context.Context, repos TransactionalRepositories, posted *sale.Sale) error {
	reason := inventory.ReasonSale
	if posted.IsReturn {
		reason = inventory.ReasonReturn
	}
	movements := make([]*inventory.StockMovement, 0, len(posted.Items))
	for _, item := range posted.Items {
		mv, err := inventory.NewStockMovement(item.ProductID, -item.Quantity, reason, posted.Reference())
		if err != nil {
			return err
		}
		movements = append(movements, mv)
	}
	return repos.MovementRepo().SaveAll(ctx, movements)
}

// postLedger writes at most one ledger line for the sale's net due.
// Fully settled sales (due == 0) post nothing.
func (s *SaleService) postLedger(ctx context.Context, repos TransactionalRepositories, posted *sale.Sale, customer *partner.Customer) error {
	if customer == nil {
		return nil
	}
	due := posted.Due()
	if due.IsZero() {
		return nil
	}

	var line *partner.LedgerLine
	var err error
	if due.GreaterThan(decimal.Zero) {
		line, err = partner.NewDebitLine(customer.ID, posted.Date, posted.Reference(), due)
	} else {
		line, err = partner.NewCreditLine(customer.ID, posted.Date, posted.Reference(), due.Abs())
	}
	if err != nil {
		return err
	}
	return repos.LedgerRepo().Save(ctx, line.WithSale(posted.ID))
}

// fireAlert runs the near-limit check outside the transaction. It is
// best effort; notification failures are logged and swallowed.
func (s *SaleService) fireAlert(pending *pendingAlert) {
	if pending == nil || s.notifier == nil {
		return
	}
	alert := pending.policy.CheckAlert(pending.customer, pending.projected)
	if alert == nil {
		return
	}
	go func() {
		if err := s.notifier.NotifyCreditAlert(context.Background(), *alert); err != nil {
			s.logger.Warn("credit alert notification failed",
				zap.String("customer_id", alert.CustomerID),
				zap.Error(err))
		}
	}()
}

func (s *SaleService) response(posted *sale.Sale) *SaleResponse {
	return &SaleResponse{
		SaleID:    posted.ID,
		Number:    posted.Number,
		Reference: posted.Reference(),
		Subtotal:  posted.Subtotal,
		Tax:       posted.Tax,
		Total:     posted.Total,
		Due:       posted.Due(),
	}
}
