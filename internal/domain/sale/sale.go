package sale

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a sale was settled
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCredit   PaymentMethod = "credit"
)

// IsValid checks whether the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

// Sale is a posted sale or return. All money fields are signed: they are
// negative when IsReturn is true, so reports can sum totals across sales
// and returns directly. Number is a human-facing sequence used in the
// INV-n / CRN-n reference that correlates stock movements and ledger
// lines back to this sale.
type Sale struct {
	shared.BaseEntity
	Number        int64           `gorm:"uniqueIndex;not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	Date          time.Time       `gorm:"type:date;not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Paid          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	IsReturn      bool            `gorm:"not null;default:false"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a posted sale. Quantity and money are signed
// (negative for returns). TaxPercent is a snapshot taken at sale time so
// historical invoices stay accurate if the product's rate changes later.
type SaleItem struct {
	shared.BaseEntity
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int64           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// NewSale builds a sale header from signed totals. The totals must
// already carry the return sign (see Totals.Signed).
func NewSale(number int64, customerID *uuid.UUID, date time.Time, method PaymentMethod, paid decimal.Decimal, isReturn bool, totals Totals, createdBy *uuid.UUID) (*Sale, error) {
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Sale number must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method: %s", method))
	}
	if len(totals.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_SALE", "A sale must contain at least one item")
	}

	s := &Sale{
		BaseEntity:    shared.NewBaseEntity(),
		Number:        number,
		CustomerID:    customerID,
		Date:          date,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Paid:          paid,
		PaymentMethod: method,
		IsReturn:      isReturn,
		CreatedBy:     createdBy,
	}
	for _, ln := range totals.Lines {
		s.Items = append(s.Items, SaleItem{
			BaseEntity: shared.NewBaseEntity(),
			SaleID:     s.ID,
			ProductID:  ln.ProductID,
			Quantity:   ln.Quantity,
			UnitPrice:  ln.UnitPrice,
			LineTotal:  ln.LineTotal,
			TaxPercent: ln.TaxPercent,
			TaxAmount:  ln.TaxAmount,
		})
	}
	return s, nil
}

// Reference returns the correlation tag written on this sale's stock
// movements and ledger lines: INV-n for sales, CRN-n for returns.
func (s *Sale) Reference() string {
	if s.IsReturn {
		return fmt.Sprintf("CRN-%d", s.Number)
	}
	return fmt.Sprintf("INV-%d", s.Number)
}

// Due returns total minus paid, both already signed. Positive means the
// customer still owes; negative means the store owes the customer.
func (s *Sale) Due() decimal.Decimal {
	return s.Total.Sub(s.Paid)
}

// Replace swaps the sale's content for a recomputed version during edit.
// Identity (ID, Number) is preserved; everything derived is overwritten.
func (s *Sale) Replace(customerID *uuid.UUID, date time.Time, method PaymentMethod, paid decimal.Decimal, isReturn bool, totals Totals) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method: %s", method))
	}
	if len(totals.Lines) == 0 {
		return shared.NewDomainError("EMPTY_SALE", "A sale must contain at least one item")
	}
	s.CustomerID = customerID
	s.Date = date
	s.PaymentMethod = method
	s.Paid = paid
	s.IsReturn = isReturn
	s.Subtotal = totals.Subtotal
	s.Discount = totals.Discount
	s.Tax = totals.Tax
	s.Total = totals.Total
	s.Items = s.Items[:0]
	for _, ln := range totals.Lines {
		s.Items = append(s.Items, SaleItem{
			BaseEntity: shared.NewBaseEntity(),
			SaleID:     s.ID,
			ProductID:  ln.ProductID,
			Quantity:   ln.Quantity,
			UnitPrice:  ln.UnitPrice,
			LineTotal:  ln.LineTotal,
			TaxPercent: ln.TaxPercent,
			TaxAmount:  ln.TaxAmount,
		})
	}
	return nil
}
