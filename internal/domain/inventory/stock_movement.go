package inventory

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// MovementReason tags why a stock movement happened
type MovementReason string

const (
	// ReasonPurchase is inbound stock from a purchase order
	ReasonPurchase MovementReason = "purchase"
	// ReasonSale is outbound stock from a POS sale
	ReasonSale MovementReason = "sale"
	// ReasonAdjustment is a manual stock correction (either direction)
	ReasonAdjustment MovementReason = "adjustment"
	// ReasonReturn is inbound stock from a sales return
	ReasonReturn MovementReason = "return"
)

// String returns the string representation of MovementReason
func (r MovementReason) String() string {
	return string(r)
}

// IsValid returns true if the reason is one of the known tags
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonAdjustment, ReasonReturn:
		return true
	}
	return false
}

// StockMovement is an immutable signed quantity delta against a product.
// Movements are never mutated; the only deletion path is the
// reverse-and-replay performed when the originating sale is edited.
type StockMovement struct {
	shared.BaseEntity
	ProductID uuid.UUID      `gorm:"type:uuid;not null;index:idx_stock_moves_product"`
	Change    int64          `gorm:"not null"` // positive = inbound, negative = outbound
	Reason    MovementReason `gorm:"type:varchar(20);not null;index:idx_stock_moves_reason"`
	Ref       string         `gorm:"type:varchar(64);index:idx_stock_moves_ref"` // correlates to INV-n, CRN-n, PO-n
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement
func NewStockMovement(productID uuid.UUID, change int64, reason MovementReason, ref string) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if change == 0 {
		return nil, shared.NewDomainError("INVALID_CHANGE", "Stock change cannot be zero")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Invalid stock movement reason")
	}
	if len(ref) > 64 {
		ref = ref[:64]
	}
	return &StockMovement{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Change:     change,
		Reason:     reason,
		Ref:        ref,
	}, nil
}

// IsInbound returns true when the movement adds stock
func (m *StockMovement) IsInbound() bool {
	return m.Change > 0
}
