package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Save persists one stock movement
func (r *GormStockMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// SaveAll persists a batch of stock movements
func (r *GormStockMovementRepository) SaveAll(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// FindByRef returns all movements correlated to one reference tag
func (r *GormStockMovementRepository) FindByRef(ctx context.Context, ref string) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("ref = ?", ref).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByProduct returns a product's movement history
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("product_id = ?", productID)
	if err := applyFilter(query, filter).Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// OnHand returns the signed sum of movements for one product
func (r *GormStockMovementRepository) OnHand(ctx context.Context, productID uuid.UUID) (int64, error) {
	var sum int64
	if err := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(change), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// OnHandByProducts aggregates on-hand for the given products in one
// grouped query. Products with no movements are absent from the map.
func (r *GormStockMovementRepository) OnHandByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}

	type row struct {
		ProductID uuid.UUID
		Total     int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("product_id IN ?", productIDs).
		Select("product_id, COALESCE(SUM(change), 0) AS total").
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int64, len(rows))
	for _, rw := range rows {
		out[rw.ProductID] = rw.Total
	}
	return out, nil
}

// DeleteByRefs removes all movements carrying any of the given reference
// tags. Used only by the sale edit replay.
func (r *GormStockMovementRepository) DeleteByRefs(ctx context.Context, refs []string) error {
	if len(refs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("ref IN ?", refs).Delete(&inventory.StockMovement{}).Error
}
