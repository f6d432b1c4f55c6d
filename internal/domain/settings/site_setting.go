package settings

import (
	"context"

	"github.com/shopspring/decimal"
)

// SiteSetting is the single row of store-wide configuration. It is
// lazily created with defaults on first read, so every caller can assume
// it exists.
type SiteSetting struct {
	ID                  uint            `gorm:"primaryKey"`
	StoreName           string          `gorm:"type:varchar(120);not null;default:'My Store'"`
	CurrencySymbol      string          `gorm:"type:varchar(8);not null;default:'$'"`
	EnforceCreditLimit  bool            `gorm:"not null;default:false"`
	CreditAlertPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:80"`
	LowStockAlertsOn    bool            `gorm:"not null;default:true"`
	ReceiptFooter       string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SiteSetting) TableName() string {
	return "site_settings"
}

// DefaultSiteSetting returns the settings row created on first access
func DefaultSiteSetting() *SiteSetting {
	return &SiteSetting{
		ID:                 1,
		StoreName:          "My Store",
		CurrencySymbol:     "$",
		EnforceCreditLimit: false,
		CreditAlertPercent: decimal.NewFromInt(80),
		LowStockAlertsOn:   true,
	}
}

// Repository loads and persists the singleton settings row.
// Get creates the row with defaults when it does not exist yet.
type Repository interface {
	Get(ctx context.Context) (*SiteSetting, error)
	Save(ctx context.Context, s *SiteSetting) error
}
