package owner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

type ownerRepo interface {
	Create(ctx context.Context, o domain.Owner) error
	Update(ctx context.Context, o domain.Owner, expectedVersion int64) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error)
	List(ctx context.Context, f domain.OwnerFilter) ([]domain.OwnerSummary, int, error)
}

type propertyCounter interface {
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides owner management operations.
type Service struct {
	log        *slog.Logger
	owners     ownerRepo
	properties propertyCounter
	tx         txManager
	cfg        config.ListingConfig
	now        func() time.Time
}

// NewService creates a new owner service.
func NewService(
	logger *slog.Logger,
	owners ownerRepo,
	properties propertyCounter,
	tx txManager,
	cfg config.ListingConfig,
) *Service {
	return &Service{
		log:        logger.With("service", "owner"),
		owners:     owners,
		properties: properties,
		tx:         tx,
		cfg:        cfg,
		now:        time.Now,
	}
}
