package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/pos"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseItemRequest is one requested receipt line
type PurchaseItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost" binding:"required"`
}

// PurchaseRequest is the payload for posting a goods receipt
type PurchaseRequest struct {
	SupplierID *uuid.UUID            `json:"supplier_id"`
	Date       time.Time             `json:"date" binding:"required"`
	Note       string                `json:"note"`
	Items      []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseResponse reports a posted purchase
type PurchaseResponse struct {
	PurchaseID uuid.UUID       `json:"purchase_id"`
	Number     int64           `json:"number"`
	Reference  string          `json:"reference"`
	Total      decimal.Decimal `json:"total"`
}

// PurchaseService posts goods receipts: the purchase header, its items
// and one inbound stock movement per line, atomically.
type PurchaseService struct {
	scope  pos.TransactionScope
	logger *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(scope pos.TransactionScope, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{scope: scope, logger: logger}
}

// CreatePurchase posts a purchase and its inbound stock movements
func (s *PurchaseService) CreatePurchase(ctx context.Context, req PurchaseRequest, actorID *uuid.UUID) (*PurchaseResponse, error) {
	var resp *PurchaseResponse
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		ids := make([]uuid.UUID, 0, len(req.Items))
		for _, it := range req.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := repos.ProductRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(products))
		for _, p := range products {
			known[p.ID] = true
		}

		lines := make([]trade.LineRequest, 0, len(req.Items))
		for _, it := range req.Items {
			if !known[it.ProductID] {
				return shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s does not exist", it.ProductID))
			}
			lines = append(lines, trade.LineRequest{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitCost:  it.UnitCost,
			})
		}

		number, err := repos.PurchaseRepo().NextNumber(ctx)
		if err != nil {
			return err
		}
		purchase, err := trade.NewPurchase(number, req.SupplierID, req.Date, req.Note, lines, actorID)
		if err != nil {
			return err
		}
		if err := repos.PurchaseRepo().Save(ctx, purchase); err != nil {
			return err
		}

		movements := make([]*inventory.StockMovement, 0, len(purchase.Items))
		for _, item := range purchase.Items {
			mv, err := inventory.NewStockMovement(item.ProductID, item.Quantity, inventory.ReasonPurchase, purchase.Reference())
			if err != nil {
				return err
			}
			movements = append(movements, mv)
		}
		if err := repos.MovementRepo().SaveAll(ctx, movements); err != nil {
			return err
		}

		resp = &PurchaseResponse{
			PurchaseID: purchase.ID,
			Number:     purchase.Number,
			Reference:  purchase.Reference(),
			Total:      purchase.Total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetPurchase loads a purchase with its items
func (s *PurchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*trade.Purchase, error) {
	var found *trade.Purchase
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		p, err := repos.PurchaseRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return shared.NewDomainError("PURCHASE_NOT_FOUND", "Purchase does not exist")
		}
		found = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListPurchases returns purchases page by page
func (s *PurchaseService) ListPurchases(ctx context.Context, filter shared.Filter) ([]trade.Purchase, int64, error) {
	var purchases []trade.Purchase
	var total int64
	err := s.scope.Execute(ctx, func(repos pos.TransactionalRepositories) error {
		var err error
		purchases, err = repos.PurchaseRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err = repos.PurchaseRepo().Count(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}
