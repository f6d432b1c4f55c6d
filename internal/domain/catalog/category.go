package catalog

import (
	"strings"

	"github.com/retailpos/backend/internal/domain/shared"
)

// Category groups products for listing and reporting
type Category struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(120);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 120 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 120 characters")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	c.Name = name
	return nil
}
