package pos

import (
	"context"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/settings"
	"github.com/retailpos/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories a
// posting touches. When a function is executed within a transaction scope,
// all repository operations are part of the same database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the posting repositories
// within one transaction. All repositories returned share the same
// underlying database transaction.
//
// A sale owns its items and, by reference correlation, the stock
// movements and ledger line it generates; the orchestrator writes all
// three through this scope so they stay mutually consistent.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	MovementRepo() inventory.StockMovementRepository
	SaleRepo() sale.Repository
	PurchaseRepo() trade.Repository
	CustomerRepo() partner.CustomerRepository
	LedgerRepo() partner.LedgerRepository
	SettingsRepo() settings.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests over in-memory repositories.
type NoOpTransactionScope struct {
	products  catalog.ProductRepository
	movements inventory.StockMovementRepository
	sales     sale.Repository
	purchases trade.Repository
	customers partner.CustomerRepository
	ledger    partner.LedgerRepository
	settings  settings.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	products catalog.ProductRepository,
	movements inventory.StockMovementRepository,
	sales sale.Repository,
	purchases trade.Repository,
	customers partner.CustomerRepository,
	ledger partner.LedgerRepository,
	settingsRepo settings.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		products:  products,
		movements: movements,
		sales:     sales,
		purchases: purchases,
		customers: customers,
		ledger:    ledger,
		settings:  settingsRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.products }

// MovementRepo returns the stock movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository { return s.movements }

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sale.Repository { return s.sales }

// PurchaseRepo returns the purchase repository
func (s *NoOpTransactionScope) PurchaseRepo() trade.Repository { return s.purchases }

// CustomerRepo returns the customer repository
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository { return s.customers }

// LedgerRepo returns the customer ledger repository
func (s *NoOpTransactionScope) LedgerRepo() partner.LedgerRepository { return s.ledger }

// SettingsRepo returns the site settings repository
func (s *NoOpTransactionScope) SettingsRepo() settings.Repository { return s.settings }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
