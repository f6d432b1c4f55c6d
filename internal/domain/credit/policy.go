package credit

import (
	"context"
	"fmt"

	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// LimitExceededError reports a blocked charge with the full picture the
// cashier needs to negotiate: the limit, the balance before the charge,
// the balance the charge would produce, and the overage.
type LimitExceededError struct {
	CustomerName string
	Limit        decimal.Decimal
	Current      decimal.Decimal
	Projected    decimal.Decimal
	Excess       decimal.Decimal
}

// Error implements the error interface
func (e *LimitExceededError) Error() string {
	if e.Limit.LessThanOrEqual(decimal.Zero) {
		return fmt.Sprintf("credit not allowed for %s: no credit limit set", e.CustomerName)
	}
	return fmt.Sprintf(
		"credit limit exceeded for %s: limit %s, current balance %s, would become %s (over by %s)",
		e.CustomerName, e.Limit.StringFixed(2), e.Current.StringFixed(2),
		e.Projected.StringFixed(2), e.Excess.StringFixed(2),
	)
}

// Alert describes a customer approaching their credit limit
type Alert struct {
	CustomerID   string
	CustomerName string
	Phone        string
	Percent      decimal.Decimal
	Balance      decimal.Decimal
	Limit        decimal.Decimal
	SMSOptIn     bool
	CallOptIn    bool
}

// Notifier delivers credit alerts out of band (SMS gateway, call queue).
// Implementations must not fail the business transaction; errors are
// logged and swallowed by the caller.
type Notifier interface {
	NotifyCreditAlert(ctx context.Context, alert Alert) error
}

// Policy decides whether a new debit against a customer is allowed and
// whether it should raise a near-limit alert. Enforcement can be switched
// off store-wide; alerting is independent of the enforcement switch.
type Policy struct {
	Enforce      bool
	AlertPercent decimal.Decimal
}

// Evaluate checks a prospective debit of amount against the customer's
// current balance. A non-positive limit blocks all credit when enforcement
// is on. Charges that land exactly on the limit pass.
func (p Policy) Evaluate(customer *partner.Customer, current, amount decimal.Decimal) error {
	if !p.Enforce {
		return nil
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	projected := current.Add(amount)
	if !customer.HasCreditLimit() {
		return &LimitExceededError{
			CustomerName: customer.Name,
			Limit:        customer.CreditLimit,
			Current:      current,
			Projected:    projected,
			Excess:       projected,
		}
	}
	if projected.GreaterThan(customer.CreditLimit) {
		return &LimitExceededError{
			CustomerName: customer.Name,
			Limit:        customer.CreditLimit,
			Current:      current,
			Projected:    projected,
			Excess:       projected.Sub(customer.CreditLimit),
		}
	}
	return nil
}

// CheckAlert returns a populated alert when the projected balance reaches
// AlertPercent of the customer's limit, and nil otherwise. It fires even
// when enforcement is off. Customers without a positive limit never alert.
func (p Policy) CheckAlert(customer *partner.Customer, projected decimal.Decimal) *Alert {
	if !customer.HasCreditLimit() {
		return nil
	}
	if projected.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	pct := projected.Div(customer.CreditLimit).Mul(decimal.NewFromInt(100))
	if pct.LessThan(p.AlertPercent) {
		return nil
	}
	return &Alert{
		CustomerID:   customer.ID.String(),
		CustomerName: customer.Name,
		Phone:        customer.Phone,
		Percent:      pct.Round(1),
		Balance:      projected,
		Limit:        customer.CreditLimit,
		SMSOptIn:     customer.SMSOptIn,
		CallOptIn:    customer.CallOptIn,
	}
}
