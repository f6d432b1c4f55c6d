package partner

import (
	"strings"

	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Customer is a store customer who may carry a credit balance.
//
// Balance is never stored: it is derived as SUM(debit) - SUM(credit) over
// the customer's ledger lines. Positive balance means the customer owes
// the store; negative means the store owes the customer (e.g. an unapplied
// return credit).
type Customer struct {
	shared.BaseEntity
	Name        string          `gorm:"type:varchar(150);not null"`
	Phone       string          `gorm:"type:varchar(30)"`
	Email       string          `gorm:"type:varchar(254)"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SMSOptIn    bool            `gorm:"not null;default:true"`
	CallOptIn   bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		CreditLimit: decimal.Zero,
		SMSOptIn:    true,
	}, nil
}

// SetContact updates phone and email
func (c *Customer) SetContact(phone, email string) {
	c.Phone = strings.TrimSpace(phone)
	c.Email = strings.TrimSpace(email)
}

// SetCreditLimit sets the maximum debit balance the customer may carry
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	return nil
}

// HasCreditLimit returns true if the customer has a positive credit limit
func (c *Customer) HasCreditLimit() bool {
	return c.CreditLimit.GreaterThan(decimal.Zero)
}

// SetOptIns updates notification opt-in flags
func (c *Customer) SetOptIns(sms, call bool) {
	c.SMSOptIn = sms
	c.CallOptIn = call
}
