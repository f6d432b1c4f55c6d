package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a sellable item in the catalog.
//
// On-hand stock is intentionally NOT a field: it is always derived as the
// signed sum of stock movements referencing the product, so the movement
// log remains the single source of truth.
type Product struct {
	shared.BaseEntity
	Code         string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Barcode      *string         `gorm:"type:varchar(64);uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TaxPercent   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	ReorderLevel int64           `gorm:"not null;default:0"`
	Active       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

var oneHundred = decimal.NewFromInt(100)

// NewProduct creates a new product
func NewProduct(code, name string, unitPrice, costPrice, taxPercent decimal.Decimal) (*Product, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if taxPercent.IsNegative() || taxPercent.GreaterThan(oneHundred) {
		return nil, shared.NewDomainError("INVALID_TAX", "Tax percent must be between 0 and 100")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		UnitPrice:  unitPrice,
		CostPrice:  costPrice,
		TaxPercent: taxPercent,
		Active:     true,
	}, nil
}

// SetBarcode sets the optional barcode; empty clears it
func (p *Product) SetBarcode(barcode string) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		p.Barcode = nil
		return
	}
	p.Barcode = &barcode
}

// SetCategory assigns the product to a category
func (p *Product) SetCategory(categoryID uuid.UUID) {
	p.CategoryID = &categoryID
}

// ClearCategory removes the category assignment
func (p *Product) ClearCategory() {
	p.CategoryID = nil
}

// SetPricing updates sale and cost prices
func (p *Product) SetPricing(unitPrice, costPrice decimal.Decimal) error {
	if unitPrice.IsNegative() || costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.UnitPrice = unitPrice
	p.CostPrice = costPrice
	return nil
}

// SetTaxPercent updates the per-product tax rate
func (p *Product) SetTaxPercent(taxPercent decimal.Decimal) error {
	if taxPercent.IsNegative() || taxPercent.GreaterThan(oneHundred) {
		return shared.NewDomainError("INVALID_TAX", "Tax percent must be between 0 and 100")
	}
	p.TaxPercent = taxPercent
	return nil
}

// SetReorderLevel updates the low-stock threshold
func (p *Product) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	p.ReorderLevel = level
	return nil
}

// Activate marks the product as sellable
func (p *Product) Activate() {
	p.Active = true
}

// Deactivate hides the product from the POS
func (p *Product) Deactivate() {
	p.Active = false
}

// Label returns the display label used in shortfall and pick lists
func (p *Product) Label() string {
	return fmt.Sprintf("%s - %s", p.Code, p.Name)
}
