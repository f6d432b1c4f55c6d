package inventory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/pos"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AdjustmentRequest is a manual stock correction. Change may be negative;
// manual adjustments are allowed to push stock negative, unlike sales.
type AdjustmentRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Change    int64     `json:"change" binding:"required"`
	Note      string    `json:"note"`
}

// BulkResult reports the outcome of a CSV adjustment import
type BulkResult struct {
	Applied int      `json:"applied"`
	Errors  []string `json:"errors,omitempty"`
}

// StockLevel is one row of the on-hand listing
type StockLevel struct {
	ProductID    uuid.UUID `json:"product_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	OnHand       int64     `json:"on_hand"`
	ReorderLevel int64     `json:"reorder_level"`
	LowStock     bool      `json:"low_stock"`
}

// AdjustmentService handles manual and bulk stock corrections
type AdjustmentService struct {
	scope  pos.TransactionScope
	logger *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(scope pos.TransactionScope, logger *zap.Logger) *AdjustmentService {
	return &AdjustmentService{scope: scope, logger: logger}
}

// Adjust posts a single manual stock movement
func (s *AdjustmentService) Adjust(ctx context.Context, req AdjustmentRequest) error {
	return s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product does not exist")
		}

		ref := strings.TrimSpace(req.Note)
		if ref == "" {
			ref = "manual adjustment"
		}
		mv, err := inventory.NewStockMovement(product.ID, req.Change, inventory.ReasonAdjustment, ref)
		if err != nil {
			return err
		}
		return repos.MovementRepo().Save(ctx, mv)
	})
}

// BulkAdjust applies a CSV of adjustments. Each row is "code,change".
// Rows are validated first and the whole file applies in one transaction;
// any bad row rejects the entire file.
func (s *AdjustmentService) BulkAdjust(ctx context.Context, r io.Reader, note string) (*BulkResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	type row struct {
		code   string
		change int64
	}
	var rows []row
	var parseErrors []string
	lineNo := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CSV", "Could not parse CSV: "+err.Error())
		}
		lineNo++
		if lineNo == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "code") {
			continue // header row
		}
		if len(record) < 2 {
			parseErrors = append(parseErrors, fmt.Sprintf("line %d: expected code,change", lineNo))
			continue
		}
		change, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil || change == 0 {
			parseErrors = append(parseErrors, fmt.Sprintf("line %d: bad change %q", lineNo, record[1]))
			continue
		}
		rows = append(rows, row{code: strings.TrimSpace(record[0]), change: change})
	}
	if len(parseErrors) > 0 {
		return &BulkResult{Errors: parseErrors}, shared.NewDomainError("INVALID_CSV", "CSV contains invalid rows")
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("EMPTY_CSV", "No adjustment rows found")
	}

	ref := strings.TrimSpace(note)
	if ref == "" {
		ref = "bulk adjustment"
	}

	result := &BulkResult{}
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		movements := make([]*inventory.StockMovement, 0, len(rows))
		for i, rw := range rows {
			product, err := repos.ProductRepo().FindByCode(ctx, rw.code)
			if err != nil {
				return err
			}
			if product == nil {
				return shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("row %d: unknown product code %q", i+1, rw.code))
			}
			mv, err := inventory.NewStockMovement(product.ID, rw.change, inventory.ReasonAdjustment, ref)
			if err != nil {
				return err
			}
			movements = append(movements, mv)
		}
		if err := repos.MovementRepo().SaveAll(ctx, movements); err != nil {
			return err
		}
		result.Applied = len(movements)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StockLevels returns on-hand per product, flagging low stock against the
// reorder threshold
func (s *AdjustmentService) StockLevels(ctx context.Context, filter shared.Filter) ([]StockLevel, error) {
	var levels []StockLevel
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		products, err := repos.ProductRepo().FindAll(ctx, filter)
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
			levels = append(levels, StockLevel{
				ProductID:    p.ID,
				Code:         p.Code,
				Name:         p.Name,
				OnHand:       have,
				ReorderLevel: p.ReorderLevel,
				LowStock:     have <= p.ReorderLevel,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}
