package persistence

import (
	"context"

	apppos "github.com/retailpos/backend/internal/application/pos"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/settings"
	"github.com/retailpos/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM
// transactions. All repository operations executed inside fn share one
// database transaction and commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apppos.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaleRepo() sale.Repository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseRepo() trade.Repository {
	return NewGormPurchaseRepository(r.tx)
}

func (r *gormTransactionalRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) LedgerRepo() partner.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormTransactionalRepositories) SettingsRepo() settings.Repository {
	return NewGormSettingsRepository(r.tx)
}

// Ensure the scope satisfies the application ports
var _ apppos.TransactionScope = (*GormTransactionScope)(nil)
var _ apppos.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
