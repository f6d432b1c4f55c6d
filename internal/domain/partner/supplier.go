package partner

import (
	"strings"

	"github.com/retailpos/backend/internal/domain/shared"
)

// Supplier is a purchase source; no ledger or credit interaction
type Supplier struct {
	shared.BaseEntity
	Name  string `gorm:"type:varchar(150);not null"`
	Phone string `gorm:"type:varchar(30)"`
	Email string `gorm:"type:varchar(254)"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	return &Supplier{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// SetContact updates phone and email
func (s *Supplier) SetContact(phone, email string) {
	s.Phone = strings.TrimSpace(phone)
	s.Email = strings.TrimSpace(email)
}
