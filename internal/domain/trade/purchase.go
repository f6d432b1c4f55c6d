package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Purchase is an inbound goods receipt. Each line produces one inbound
// stock movement referenced PO-n; there is no tax or credit interaction.
type Purchase struct {
	shared.BaseEntity
	Number     int64           `gorm:"uniqueIndex;not null"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index"`
	Date       time.Time       `gorm:"type:date;not null;index"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Note       string          `gorm:"type:varchar(200)"`
	CreatedBy  *uuid.UUID      `gorm:"type:uuid"`
	Items      []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseItem is one received line
type PurchaseItem struct {
	shared.BaseEntity
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int64           `gorm:"not null"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// LineRequest is one requested receipt line
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitCost  decimal.Decimal
}

// NewPurchase builds a purchase with its items and rolled-up total
func NewPurchase(number int64, supplierID *uuid.UUID, date time.Time, note string, lines []LineRequest, createdBy *uuid.UUID) (*Purchase, error) {
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Purchase number must be positive")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_PURCHASE", "A purchase must contain at least one item")
	}

	p := &Purchase{
		BaseEntity: shared.NewBaseEntity(),
		Number:     number,
		SupplierID: supplierID,
		Date:       date,
		Total:      decimal.Zero,
		Note:       note,
		CreatedBy:  createdBy,
	}
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		if ln.UnitCost.IsNegative() {
			return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
		}
		lineTotal := ln.UnitCost.Mul(decimal.NewFromInt(ln.Quantity)).Round(2)
		p.Items = append(p.Items, PurchaseItem{
			BaseEntity: shared.NewBaseEntity(),
			PurchaseID: p.ID,
			ProductID:  ln.ProductID,
			Quantity:   ln.Quantity,
			UnitCost:   ln.UnitCost,
			LineTotal:  lineTotal,
		})
		p.Total = p.Total.Add(lineTotal)
	}
	return p, nil
}

// Reference returns the correlation tag written on this purchase's
// stock movements
func (p *Purchase) Reference() string {
	return fmt.Sprintf("PO-%d", p.Number)
}
