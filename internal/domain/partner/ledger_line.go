package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerLine is an immutable debit/credit entry against a customer's
// running balance. Exactly one of Debit/Credit is non-zero. Lines posted
// by a sale carry the sale's ID and are deleted only when that sale is
// edited (reverse-and-replay).
type LedgerLine struct {
	shared.BaseEntity
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_customer_date,priority:1"`
	Date        time.Time       `gorm:"type:date;not null;index:idx_ledger_customer_date,priority:2"`
	Description string          `gorm:"type:varchar(120)"`
	Debit       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // increases balance
	Credit      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // decreases balance
	SaleID      *uuid.UUID      `gorm:"type:uuid;index:idx_ledger_sale"`
}

// TableName returns the table name for GORM
func (LedgerLine) TableName() string {
	return "customer_ledger_lines"
}

// NewDebitLine creates a ledger line that increases the customer's balance
func NewDebitLine(customerID uuid.UUID, date time.Time, description string, amount decimal.Decimal) (*LedgerLine, error) {
	return newLedgerLine(customerID, date, description, amount, decimal.Zero)
}

// NewCreditLine creates a ledger line that decreases the customer's balance
func NewCreditLine(customerID uuid.UUID, date time.Time, description string, amount decimal.Decimal) (*LedgerLine, error) {
	return newLedgerLine(customerID, date, description, decimal.Zero, amount)
}

func newLedgerLine(customerID uuid.UUID, date time.Time, description string, debit, credit decimal.Decimal) (*LedgerLine, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	amount := debit
	if amount.IsZero() {
		amount = credit
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Ledger amount must be positive")
	}
	if len(description) > 120 {
		description = description[:120]
	}
	return &LedgerLine{
		BaseEntity:  shared.NewBaseEntity(),
		CustomerID:  customerID,
		Date:        date,
		Description: description,
		Debit:       debit,
		Credit:      credit,
	}, nil
}

// WithSale correlates the line to the sale that produced it
func (l *LedgerLine) WithSale(saleID uuid.UUID) *LedgerLine {
	l.SaleID = &saleID
	return l
}

// IsDebit returns true when the line increases the balance
func (l *LedgerLine) IsDebit() bool {
	return l.Debit.GreaterThan(decimal.Zero)
}

// SignedAmount returns the line's effect on the balance (debit - credit)
func (l *LedgerLine) SignedAmount() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}
