package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// StockMovementRepository is the append-only store of stock movements.
// DeleteByRefs exists solely for the reverse-and-replay path of sale edits.
type StockMovementRepository interface {
	Save(ctx context.Context, movement *StockMovement) error
	SaveAll(ctx context.Context, movements []*StockMovement) error
	FindByRef(ctx context.Context, ref string) ([]StockMovement, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	// OnHand returns the signed sum of movements for one product
	OnHand(ctx context.Context, productID uuid.UUID) (int64, error)
	// OnHandByProducts returns the signed sum of movements for exactly the
	// given products in a single aggregated query. Products with no
	// movements are absent from the result map.
	OnHandByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	DeleteByRefs(ctx context.Context, refs []string) error
}
