package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerRequest is the payload for creating or updating a customer
type CustomerRequest struct {
	Name        string          `json:"name" binding:"required"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email" binding:"omitempty,email"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	SMSOptIn    bool            `json:"sms_opt_in"`
	CallOptIn   bool            `json:"call_opt_in"`
}

// CustomerView is a customer with their derived balance
type CustomerView struct {
	partner.Customer
	Balance decimal.Decimal `json:"balance"`
}

// CustomerService handles customer maintenance
type CustomerService struct {
	customers partner.CustomerRepository
	ledger    partner.LedgerRepository
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers partner.CustomerRepository, ledger partner.LedgerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, ledger: ledger, logger: logger}
}

// CreateCustomer adds a customer
func (s *CustomerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*partner.Customer, error) {
	customer, err := partner.NewCustomer(req.Name)
	if err != nil {
		return nil, err
	}
	customer.SetContact(req.Phone, req.Email)
	customer.SetOptIns(req.SMSOptIn, req.CallOptIn)
	if err := customer.SetCreditLimit(req.CreditLimit); err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer modifies a customer in place
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req CustomerRequest) (*partner.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer does not exist")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	customer.Name = name
	customer.SetContact(req.Phone, req.Email)
	customer.SetOptIns(req.SMSOptIn, req.CallOptIn)
	if err := customer.SetCreditLimit(req.CreditLimit); err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer loads a customer with their balance
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerView, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer does not exist")
	}
	balance, err := s.ledger.BalanceFor(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	return &CustomerView{Customer: *customer, Balance: balance}, nil
}

// ListCustomers returns customers with balances, page by page
func (s *CustomerService) ListCustomers(ctx context.Context, filter shared.Filter) (*shared.Paginated[CustomerView], error) {
	filter.Normalize()
	customers, err := s.customers.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customers.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]CustomerView, 0, len(customers))
	for _, c := range customers {
		balance, err := s.ledger.BalanceFor(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, CustomerView{Customer: c, Balance: balance})
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SupplierRequest is the payload for creating or updating a supplier
type SupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

// SupplierService handles supplier maintenance
type SupplierService struct {
	suppliers partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(suppliers partner.SupplierRepository) *SupplierService {
	return &SupplierService{suppliers: suppliers}
}

// CreateSupplier adds a supplier
func (s *SupplierService) CreateSupplier(ctx context.Context, req SupplierRequest) (*partner.Supplier, error) {
	supplier, err := partner.NewSupplier(req.Name)
	if err != nil {
		return nil, err
	}
	supplier.SetContact(req.Phone, req.Email)
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// UpdateSupplier modifies a supplier in place
func (s *SupplierService) UpdateSupplier(ctx context.Context, id uuid.UUID, req SupplierRequest) (*partner.Supplier, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier does not exist")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	supplier.Name = name
	supplier.SetContact(req.Phone, req.Email)
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// ListSuppliers returns suppliers page by page
func (s *SupplierService) ListSuppliers(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	filter.Normalize()
	return s.suppliers.FindAll(ctx, filter)
}

// DeleteSupplier removes a supplier
func (s *SupplierService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	return s.suppliers.Delete(ctx, id)
}
