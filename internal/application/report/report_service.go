package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/pos"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SalesSummary aggregates sales over a period. Returns carry negative
// totals, so the sums here net sales against returns automatically.
type SalesSummary struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	SaleCount int             `json:"sale_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Sales     []sale.Sale     `json:"sales"`
}

// OutstandingCustomer is one row of the credit outstanding report
type OutstandingCustomer struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Limit      decimal.Decimal `json:"credit_limit"`
	Balance    decimal.Decimal `json:"balance"`
}

// StockValuationRow is one product of the stock report, valued at cost
type StockValuationRow struct {
	ProductID uuid.UUID       `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	OnHand    int64           `json:"on_hand"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Value     decimal.Decimal `json:"value"`
}

// StockValuation is the on-hand stock report with a total at cost
type StockValuation struct {
	Rows       []StockValuationRow `json:"rows"`
	TotalValue decimal.Decimal     `json:"total_value"`
}

// Service builds reporting views over the posted facts
type Service struct {
	scope  pos.TransactionScope
	logger *zap.Logger
}

// NewService creates a new report Service
func NewService(scope pos.TransactionScope, logger *zap.Logger) *Service {
	return &Service{scope: scope, logger: logger}
}

// SalesSummary aggregates posted sales in a date range
func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	summary := &SalesSummary{
		From:     from,
		To:       to,
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
		Paid:     decimal.Zero,
	}
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		sales, err := repos.SaleRepo().FindByDateRange(ctx, from, to)
		if err != nil {
			return err
		}
		summary.Sales = sales
		summary.SaleCount = len(sales)
		for _, sl := range sales {
			summary.Subtotal = summary.Subtotal.Add(sl.Subtotal)
			summary.Discount = summary.Discount.Add(sl.Discount)
			summary.Tax = summary.Tax.Add(sl.Tax)
			summary.Total = summary.Total.Add(sl.Total)
			summary.Paid = summary.Paid.Add(sl.Paid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// CreditOutstanding lists customers carrying a non-zero balance
func (s *Service) CreditOutstanding(ctx context.Context) ([]OutstandingCustomer, error) {
	var rows []OutstandingCustomer
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		customers, err := repos.CustomerRepo().FindAll(ctx, shared.Filter{PageSize: -1})
		if err != nil {
			return err
		}
		for _, c := range customers {
			balance, err := repos.LedgerRepo().BalanceFor(ctx, c.ID)
			if err != nil {
				return err
			}
			if balance.IsZero() {
				continue
			}
			rows = append(rows, OutstandingCustomer{
				CustomerID: c.ID,
				Name:       c.Name,
				Phone:      c.Phone,
				Limit:      c.CreditLimit,
				Balance:    balance,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StockReport values current on-hand stock at cost price
func (s *Service) StockReport(ctx context.Context) (*StockValuation, error) {
	report := &StockValuation{TotalValue: decimal.Zero}
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		products, err := repos.ProductRepo().FindAll(ctx, shared.Filter{PageSize: -1})
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		onHand, err := repos.MovementRepo().OnHandByProducts(ctx, ids)
		if err != nil {
			return err
		}

		for _, p := range products {
			have := onHand[p.ID]
			value := p.CostPrice.Mul(decimal.NewFromInt(have))
			report.Rows = append(report.Rows, StockValuationRow{
				ProductID: p.ID,
				Code:      p.Code,
				Name:      p.Name,
				OnHand:    have,
				CostPrice: p.CostPrice,
				Value:     value,
			})
			report.TotalValue = report.TotalValue.Add(value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ExportSalesXLSX writes a date-range sales report as an Excel workbook
func (s *Service) ExportSalesXLSX(ctx context.Context, from, to time.Time, w io.Writer) error {
	summary, err := s.SalesSummary(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("failed to close workbook", zap.Error(cerr))
		}
	}()

	const sheet = "Sales"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headers := []string{"Reference", "Date", "Customer", "Subtotal", "Discount", "Tax", "Total", "Paid", "Due"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	row := 2
	for _, sl := range summary.Sales {
		customer := ""
		if sl.CustomerID != nil {
			customer = sl.CustomerID.String()
		}
		values := []interface{}{
			sl.Reference(),
			sl.Date.Format("2006-01-02"),
			customer,
			sl.Subtotal.InexactFloat64(),
			sl.Discount.InexactFloat64(),
			sl.Tax.InexactFloat64(),
			sl.Total.InexactFloat64(),
			sl.Paid.InexactFloat64(),
			sl.Due().InexactFloat64(),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		row++
	}

	// totals row
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "TOTAL"); err != nil {
		return err
	}
	totals := map[string]decimal.Decimal{
		"D": summary.Subtotal,
		"E": summary.Discount,
		"F": summary.Tax,
		"G": summary.Total,
		"H": summary.Paid,
	}
	for col, v := range totals {
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v.InexactFloat64()); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// ExportStatementXLSX writes a customer ledger statement as an Excel workbook
func (s *Service) ExportStatementXLSX(ctx context.Context, customerID uuid.UUID, from, to *time.Time, w io.Writer) error {
	var customer *partner.Customer
	var lines []partner.LedgerLine
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		var err error
		customer, err = repos.CustomerRepo().FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer does not exist")
		}
		lines, err = repos.LedgerRepo().FindByCustomer(ctx, customerID, from, to)
		return err
	})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("failed to close workbook", zap.Error(cerr))
		}
	}()

	const sheet = "Sheet1"
	if err := f.SetCellValue(sheet, "A1", "Statement for "+customer.Name); err != nil {
		return err
	}
	headers := []string{"Date", "Description", "Debit", "Credit", "Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	running := decimal.Zero
	for i, l := range lines {
		running = running.Add(l.SignedAmount())
		row := i + 3
		values := []interface{}{
			l.Date.Format("2006-01-02"),
			l.Description,
			l.Debit.InexactFloat64(),
			l.Credit.InexactFloat64(),
			running.InexactFloat64(),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
