package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSaleRepository implements sale.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale with its items by ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindByNumber finds a sale with its items by its sequential number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, number int64) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&s, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindAll returns sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Sale, error) {
	var sales []sale.Sale
	query := r.db.WithContext(ctx).Model(&sale.Sale{}).Preload("Items")
	query = r.applySearch(query, filter)
	if err := applyFilter(query, filter).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindByDateRange returns sales whose date falls in [from, to]
func (r *GormSaleRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]sale.Sale, error) {
	var sales []sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, number ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Count returns the number of sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&sale.Sale{})
	query = r.applySearch(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSaleRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if customerID, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if isReturn, ok := filter.Filters["is_return"]; ok {
		query = query.Where("is_return = ?", isReturn)
	}
	return query
}

// NextNumber reserves the next value of the sale number sequence. The
// unique index on number turns a lost race into a constraint error
// instead of a duplicate document.
func (r *GormSaleRepository) NextNumber(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.WithContext(ctx).Model(&sale.Sale{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Save persists a sale and its items
func (r *GormSaleRepository) Save(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(s).Error
}

// DeleteItems removes all items of a sale ahead of a replay
func (r *GormSaleRepository) DeleteItems(ctx context.Context, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&sale.SaleItem{}).Error
}
