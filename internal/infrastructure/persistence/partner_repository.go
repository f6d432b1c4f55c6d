package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by their ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll returns customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := r.db.WithContext(ctx).Model(&partner.Customer{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if err := applyFilter(query, filter).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Count returns the number of customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&partner.Customer{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&partner.Customer{}, "id = ?", id).Error
}

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by their ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

// FindAll returns suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	var suppliers []partner.Supplier
	query := r.db.WithContext(ctx).Model(&partner.Supplier{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if err := applyFilter(query, filter).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete removes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&partner.Supplier{}, "id = ?", id).Error
}

// GormLedgerRepository implements LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Save persists one ledger line
func (r *GormLedgerRepository) Save(ctx context.Context, line *partner.LedgerLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// BalanceFor returns SUM(debit) - SUM(credit) for a customer in one query
func (r *GormLedgerRepository) BalanceFor(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&partner.LedgerLine{}).
		Where("customer_id = ?", customerID).
		Select("COALESCE(SUM(debit) - SUM(credit), 0)").
		Scan(&balance).Error; err != nil {
		return decimal.Zero, err
	}
	if !balance.Valid {
		return decimal.Zero, nil
	}
	return balance.Decimal, nil
}

// FindByCustomer returns a customer's ledger lines in posting order
func (r *GormLedgerRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, from, to *time.Time) ([]partner.LedgerLine, error) {
	var lines []partner.LedgerLine
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	if err := query.Order("date ASC, created_at ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// FindBySale returns the ledger lines posted by one sale
func (r *GormLedgerRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]partner.LedgerLine, error) {
	var lines []partner.LedgerLine
	if err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// StatementTotals aggregates debit and credit sums for a period
func (r *GormLedgerRepository) StatementTotals(ctx context.Context, customerID uuid.UUID, from, to *time.Time) (partner.StatementTotals, error) {
	type row struct {
		Debit  decimal.NullDecimal
		Credit decimal.NullDecimal
	}
	var result row
	query := r.db.WithContext(ctx).Model(&partner.LedgerLine{}).
		Where("customer_id = ?", customerID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	if err := query.
		Select("COALESCE(SUM(debit), 0) AS debit, COALESCE(SUM(credit), 0) AS credit").
		Scan(&result).Error; err != nil {
		return partner.StatementTotals{}, err
	}

	totals := partner.StatementTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	if result.Debit.Valid {
		totals.Debit = result.Debit.Decimal
	}
	if result.Credit.Valid {
		totals.Credit = result.Credit.Decimal
	}
	totals.Closing = totals.Debit.Sub(totals.Credit)
	return totals, nil
}

// DeleteBySale removes the ledger lines posted by one sale. Used only by
// the sale edit replay.
func (r *GormLedgerRepository) DeleteBySale(ctx context.Context, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&partner.LedgerLine{}).Error
}
