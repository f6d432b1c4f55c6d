package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerRepository provides access to customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierRepository provides access to suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StatementTotals aggregates a set of ledger lines
type StatementTotals struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Closing decimal.Decimal
}

// LedgerRepository is the append-only store of customer ledger lines.
// DeleteBySale exists solely for the reverse-and-replay path of sale edits.
type LedgerRepository interface {
	Save(ctx context.Context, line *LedgerLine) error
	// BalanceFor returns SUM(debit) - SUM(credit) for a customer in a
	// single aggregated query
	BalanceFor(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, from, to *time.Time) ([]LedgerLine, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]LedgerLine, error)
	StatementTotals(ctx context.Context, customerID uuid.UUID, from, to *time.Time) (StatementTotals, error)
	DeleteBySale(ctx context.Context, saleID uuid.UUID) error
}
