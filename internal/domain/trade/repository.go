package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// Repository provides access to purchases and their items
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Purchase, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Purchase, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	NextNumber(ctx context.Context) (int64, error)
	Save(ctx context.Context, p *Purchase) error
}
