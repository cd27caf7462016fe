package property

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// GetPropertyDetail loads a visible property with its ordered images, the
// last price change, the trace count and the owner's name.
func (s *Service) GetPropertyDetail(ctx context.Context, id uuid.UUID) (*PropertyDetail, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("property_id", "required")
	}

	var (
		rec        *domain.PropertyRecord
		images     []domain.PropertyImage
		lastChange *domain.PropertyTrace
		traceCount int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if rec, err = s.properties.GetByID(gctx, id); err != nil {
			return fmt.Errorf("get property: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if images, err = s.images.ListByProperty(gctx, id); err != nil {
			return fmt.Errorf("list images: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		t, err := s.traces.LastByType(gctx, id, domain.TraceEventPriceChange)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("last price change: %w", err)
		}
		lastChange = t
		return nil
	})
	g.Go(func() error {
		var err error
		if traceCount, err = s.traces.CountByProperty(gctx, id); err != nil {
			return fmt.Errorf("count traces: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &PropertyDetail{
		Property:   *rec,
		Images:     images,
		TraceCount: traceCount,
	}
	if detail.Images == nil {
		detail.Images = []domain.PropertyImage{}
	}
	domain.SortImages(detail.Images)
	if lastChange != nil {
		pc := domain.PriceChangeFromTrace(*lastChange)
		detail.LastPriceChange = &pc
	}

	owner, err := s.owners.GetByID(ctx, rec.OwnerID)
	switch {
	case err == nil:
		detail.OwnerFullName = owner.FullName
	case !isNotFound(err):
		return nil, fmt.Errorf("get owner: %w", err)
	}

	return detail, nil
}
