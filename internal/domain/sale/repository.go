package sale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// Repository provides access to sales and their items
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByNumber(ctx context.Context, number int64) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// NextNumber reserves the next value of the human-facing sale sequence
	NextNumber(ctx context.Context) (int64, error)
	Save(ctx context.Context, s *Sale) error
	// DeleteItems removes all items of a sale ahead of a replay
	DeleteItems(ctx context.Context, saleID uuid.UUID) error
}
