package credit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/pos"
	"github.com/retailpos/backend/internal/domain/credit"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRequest records money received from a customer against their balance
type PaymentRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	Date       time.Time       `json:"date" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Reference  string          `json:"reference"`
}

// ChargeRequest posts a manual debit against a customer
type ChargeRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	Date       time.Time       `json:"date" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Reason     string          `json:"reason" binding:"required"`
}

// BalanceResponse reports a customer's balance after a ledger operation
type BalanceResponse struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
}

// Statement is a customer's ledger activity over a period
type Statement struct {
	CustomerID  uuid.UUID            `json:"customer_id"`
	Lines       []partner.LedgerLine `json:"lines"`
	TotalDebit  decimal.Decimal      `json:"total_debit"`
	TotalCredit decimal.Decimal      `json:"total_credit"`
	Balance     decimal.Decimal      `json:"balance"`
}

// Service handles the two manual ledger operations that bypass the sale
// orchestrator: receiving a payment (credit line) and posting a charge
// (debit line, gated by the same credit policy sales use).
type Service struct {
	scope    pos.TransactionScope
	notifier credit.Notifier
	logger   *zap.Logger
}

// NewService creates a new credit Service
func NewService(scope pos.TransactionScope, notifier credit.Notifier, logger *zap.Logger) *Service {
	return &Service{
		scope:    scope,
		notifier: notifier,
		logger:   logger,
	}
}

// ReceivePayment posts a credit-only ledger line. No stock or policy
// interaction; paying down a balance is always allowed.
func (s *Service) ReceivePayment(ctx context.Context, req PaymentRequest) (*BalanceResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	var resp *BalanceResponse
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		customer, err := s.mustCustomer(ctx, repos, req.CustomerID)
		if err != nil {
			return err
		}

		description := strings.TrimSpace(req.Reference)
		if description == "" {
			description = "Payment received"
		}
		line, err := partner.NewCreditLine(customer.ID, req.Date, description, req.Amount)
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().Save(ctx, line); err != nil {
			return err
		}

		balance, err := repos.LedgerRepo().BalanceFor(ctx, customer.ID)
		if err != nil {
			return err
		}
		resp = &BalanceResponse{CustomerID: customer.ID, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// PostCharge posts a debit-only ledger line after the same credit policy
// check used by sales; a manual charge can be blocked too.
func (s *Service) PostCharge(ctx context.Context, req ChargeRequest) (*BalanceResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge amount must be positive")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Charge reason is required")
	}

	var resp *BalanceResponse
	var alertCustomer *partner.Customer
	var projected decimal.Decimal
	var policy credit.Policy

	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		customer, err := s.mustCustomer(ctx, repos, req.CustomerID)
		if err != nil {
			return err
		}

		st, err := repos.SettingsRepo().Get(ctx)
		if err != nil {
			return err
		}
		policy = credit.Policy{Enforce: st.EnforceCreditLimit, AlertPercent: st.CreditAlertPercent}

		balance, err := repos.LedgerRepo().BalanceFor(ctx, customer.ID)
		if err != nil {
			return err
		}
		if err := policy.Evaluate(customer, balance, req.Amount); err != nil {
			return err
		}

		line, err := partner.NewDebitLine(customer.ID, req.Date, strings.TrimSpace(req.Reason), req.Amount)
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().Save(ctx, line); err != nil {
			return err
		}

		newBalance, err := repos.LedgerRepo().BalanceFor(ctx, customer.ID)
		if err != nil {
			return err
		}
		alertCustomer = customer
		projected = newBalance
		resp = &BalanceResponse{CustomerID: customer.ID, Balance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alertCustomer != nil && s.notifier != nil {
		if alert := policy.CheckAlert(alertCustomer, projected); alert != nil {
			go func() {
				if nerr := s.notifier.NotifyCreditAlert(context.Background(), *alert); nerr != nil {
					s.logger.Warn("credit alert notification failed",
						zap.String("customer_id", alert.CustomerID),
						zap.Error(nerr))
				}
			}()
		}
	}
	return resp, nil
}

// Balance returns a customer's current derived balance
func (s *Service) Balance(ctx context.Context, customerID uuid.UUID) (*BalanceResponse, error) {
	var resp *BalanceResponse
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		customer, err := s.mustCustomer(ctx, repos, customerID)
		if err != nil {
			return err
		}
		balance, err := repos.LedgerRepo().BalanceFor(ctx, customer.ID)
		if err != nil {
			return err
		}
		resp = &BalanceResponse{CustomerID: customer.ID, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetStatement returns a customer's ledger lines and totals for a period
func (s *Service) GetStatement(ctx context.Context, customerID uuid.UUID, from, to *time.Time) (*Statement, error) {
	var stmt *Statement
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		customer, err := s.mustCustomer(ctx, repos, customerID)
		if err != nil {
			return err
		}

		lines, err := repos.LedgerRepo().FindByCustomer(ctx, customer.ID, from, to)
		if err != nil {
			return err
		}
		totals, err := repos.LedgerRepo().StatementTotals(ctx, customer.ID, from, to)
		if err != nil {
			return err
		}
		balance, err := repos.LedgerRepo().BalanceFor(ctx, customer.ID)
		if err != nil {
			return err
		}
		stmt = &Statement{
			CustomerID:  customer.ID,
			Lines:       lines,
			TotalDebit:  totals.Debit,
			TotalCredit: totals.Credit,
			Balance:     balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (s *Service) mustCustomer(ctx context.Context, repos pos.TransactionalRepositories, id uuid.UUID) (*partner.Customer, error) {
	customer, err := repos.CustomerRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer does not exist")
	}
	return customer, nil
}
