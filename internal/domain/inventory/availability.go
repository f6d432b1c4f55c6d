package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Requirement is one aggregated product demand to validate against on-hand
type Requirement struct {
	ProductID uuid.UUID
	Label     string
	Quantity  int64
}

// Shortfall describes one product whose on-hand cannot cover the request
type Shortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	Label     string    `json:"label"`
	Requested int64     `json:"requested"`
	Available int64     `json:"available"`
}

func (s Shortfall) String() string {
	return fmt.Sprintf("%s (requested %d, in stock %d)", s.Label, s.Requested, s.Available)
}

// InsufficientStockError carries every short line, not just the first,
// so the caller can re-render the whole basket with all problems visible.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	lines := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		lines[i] = s.String()
	}
	return "not enough stock for: " + strings.Join(lines, "; ")
}

// AvailabilityChecker validates requested quantities against derived
// on-hand stock. The check aggregates on-hand for exactly the requested
// products in one batch query; it must never be run for returns (returns
// only add stock, so no shortfall is possible).
type AvailabilityChecker struct {
	movements StockMovementRepository
}

// NewAvailabilityChecker creates a new AvailabilityChecker
func NewAvailabilityChecker(movements StockMovementRepository) *AvailabilityChecker {
	return &AvailabilityChecker{movements: movements}
}

// Check returns nil when every requirement can be met from on-hand stock.
// Requesting exactly the on-hand quantity passes; requesting any more
// fails. On failure the returned error lists every insufficient product.
func (c *AvailabilityChecker) Check(ctx context.Context, reqs []Requirement) error {
	if len(reqs) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ProductID)
	}

	onHand, err := c.movements.OnHandByProducts(ctx, ids)
	if err != nil {
		return err
	}

	var short []Shortfall
	for _, r := range reqs {
		have := onHand[r.ProductID]
		if r.Quantity > have {
			short = append(short, Shortfall{
				ProductID: r.ProductID,
				Label:     r.Label,
				Requested: r.Quantity,
				Available: have,
			})
		}
	}
	if len(short) > 0 {
		return &InsufficientStockError{Shortfalls: short}
	}
	return nil
}
