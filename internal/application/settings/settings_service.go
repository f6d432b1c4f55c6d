package settings

import (
	"context"
	"strings"

	"github.com/retailpos/backend/internal/domain/settings"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UpdateRequest is the payload for changing store-wide settings
type UpdateRequest struct {
	StoreName          string          `json:"store_name" binding:"required"`
	CurrencySymbol     string          `json:"currency_symbol" binding:"required"`
	EnforceCreditLimit bool            `json:"enforce_credit_limit"`
	CreditAlertPercent decimal.Decimal `json:"credit_alert_percent"`
	LowStockAlertsOn   bool            `json:"low_stock_alerts_on"`
	ReceiptFooter      string          `json:"receipt_footer"`
}

// Service reads and updates the settings singleton
type Service struct {
	repo settings.Repository
}

// NewService creates a new settings Service
func NewService(repo settings.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the current settings, creating defaults on first access
func (s *Service) Get(ctx context.Context) (*settings.SiteSetting, error) {
	return s.repo.Get(ctx)
}

// Update replaces the mutable settings fields
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*settings.SiteSetting, error) {
	if req.CreditAlertPercent.IsNegative() || req.CreditAlertPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Credit alert percent must be between 0 and 100")
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	current.StoreName = strings.TrimSpace(req.StoreName)
	current.CurrencySymbol = strings.TrimSpace(req.CurrencySymbol)
	current.EnforceCreditLimit = req.EnforceCreditLimit
	current.CreditAlertPercent = req.CreditAlertPercent
	current.LowStockAlertsOn = req.LowStockAlertsOn
	current.ReceiptFooter = strings.TrimSpace(req.ReceiptFooter)

	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
