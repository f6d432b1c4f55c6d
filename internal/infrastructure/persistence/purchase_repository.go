package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements trade.Repository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase with its items by ID
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Purchase, error) {
	var p trade.Purchase
	if err := r.db.WithContext(ctx).Preload("Items").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindAll returns purchases matching the filter
func (r *GormPurchaseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Purchase, error) {
	var purchases []trade.Purchase
	query := r.db.WithContext(ctx).Model(&trade.Purchase{}).Preload("Items")
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if err := applyFilter(query, filter).Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// FindByDateRange returns purchases whose date falls in [from, to]
func (r *GormPurchaseRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]trade.Purchase, error) {
	var purchases []trade.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, number ASC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// Count returns the number of purchases matching the filter
func (r *GormPurchaseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&trade.Purchase{})
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextNumber reserves the next value of the purchase number sequence
func (r *GormPurchaseRepository) NextNumber(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.WithContext(ctx).Model(&trade.Purchase{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Save persists a purchase and its items
func (r *GormPurchaseRepository) Save(ctx context.Context, p *trade.Purchase) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error
}
