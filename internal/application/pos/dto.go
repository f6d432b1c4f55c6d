package pos

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
)

// ItemRequest is one requested basket line. Quantity is always positive;
// the return flag on the header decides the sign of what gets persisted.
type ItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// SaleRequest is the payload for creating or replacing a sale
type SaleRequest struct {
	CustomerID    *uuid.UUID         `json:"customer_id"`
	Date          time.Time          `json:"date" binding:"required"`
	Discount      decimal.Decimal    `json:"discount"`
	PaymentMethod sale.PaymentMethod `json:"payment_method" binding:"required,payment_method"`
	Paid          decimal.Decimal    `json:"paid"`
	IsReturn      bool               `json:"is_return"`
	Items         []ItemRequest      `json:"items" binding:"required,min=1,dive"`
}

// SaleResponse reports the outcome of a posting
type SaleResponse struct {
	SaleID    uuid.UUID       `json:"sale_id"`
	Number    int64           `json:"number"`
	Reference string          `json:"reference"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Due       decimal.Decimal `json:"due"`
}
