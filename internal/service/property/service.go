package property

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type propertyRepo interface {
	Create(ctx context.Context, rec domain.PropertyRecord) error
	Update(ctx context.Context, rec domain.PropertyRecord, expectedVersion int64) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PropertyRecord, error)
	List(ctx context.Context, f domain.PropertyFilter) ([]domain.PropertySummary, int, error)
}

type imageRepo interface {
	Insert(ctx context.Context, img domain.PropertyImage) error
	Demote(ctx context.Context, ids []uuid.UUID) error
	Promote(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyImage, error)
}

type traceRepo interface {
	Append(ctx context.Context, traces ...domain.PropertyTrace) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyTrace, error)
	LastByType(ctx context.Context, propertyID uuid.UUID, eventType domain.TraceEventType) (*domain.PropertyTrace, error)
	CountByProperty(ctx context.Context, propertyID uuid.UUID) (int, error)
}

type ownerRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type eventPublisher interface {
	PublishTraces(ctx context.Context, traces []domain.PropertyTrace) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements property listing operations. Every mutation runs in one
// transaction that writes the row through a version compare-and-swap and
// appends the traces the aggregate produced.
type Service struct {
	log        *slog.Logger
	properties propertyRepo
	images     imageRepo
	traces     traceRepo
	owners     ownerRepo
	tx         txManager
	events     eventPublisher
	cfg        config.ListingConfig
	now        func() time.Time
}

// NewService creates a new property service.
func NewService(
	logger *slog.Logger,
	properties propertyRepo,
	images imageRepo,
	traces traceRepo,
	owners ownerRepo,
	tx txManager,
	events eventPublisher,
	cfg config.ListingConfig,
) *Service {
	return &Service{
		log:        logger.With("service", "property"),
		properties: properties,
		images:     images,
		traces:     traces,
		owners:     owners,
		tx:         tx,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
	}
}

// load rebuilds the aggregate with its images.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	rec, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	images, err := s.images.ListByProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return domain.RestoreProperty(*rec, images), nil
}

// guard checks the caller's version token against the loaded aggregate and
// returns the token the write must compare against.
func guard(p *domain.Property, expected *int64) (int64, error) {
	if expected == nil {
		return p.Version(), nil
	}
	if err := domain.CheckVersion("property", p.ID(), *expected, p.Version()); err != nil {
		return 0, err
	}
	return *expected, nil
}

// save writes the aggregate row and its pending traces.
func (s *Service) save(ctx context.Context, p *domain.Property, expected int64) error {
	if err := s.properties.Update(ctx, p.Record(), expected); err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if err := s.traces.Append(ctx, p.PendingTraces()...); err != nil {
		return fmt.Errorf("append traces: %w", err)
	}
	return nil
}

// ensureOwner reports an unknown owner as a validation error on owner_id.
func (s *Service) ensureOwner(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := s.owners.GetByID(ctx, ownerID); err != nil {
		if isNotFound(err) {
			return domain.NewValidationError("owner_id", "owner not found")
		}
		return fmt.Errorf("get owner: %w", err)
	}
	return nil
}

// publish forwards committed traces. Delivery is best effort: the write has
// already committed, so failures are only logged.
func (s *Service) publish(ctx context.Context, traces []domain.PropertyTrace) {
	if len(traces) == 0 {
		return
	}
	if err := s.events.PublishTraces(ctx, traces); err != nil {
		s.log.WarnContext(ctx, "publish traces failed",
			slog.String("property_id", traces[0].PropertyID.String()),
			slog.Int("count", len(traces)),
			slog.String("error", err.Error()),
		)
	}
}

// actorOf prefers an explicit actor name over the one carried by the request.
func actorOf(ctx context.Context, explicit *string) *string {
	if v := trimOrNil(explicit); v != nil {
		return v
	}
	if name, ok := ctxutil.ActorFromCtx(ctx); ok {
		return &name
	}
	return nil
}
