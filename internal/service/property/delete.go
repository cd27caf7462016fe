package property

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// DeleteProperty soft-deletes a property. The row, its images and its traces
// are retained; the property disappears from every read.
func (s *Service) DeleteProperty(ctx context.Context, input DeletePropertyInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	var pending []domain.PropertyTrace
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		prop, err := s.load(txCtx, input.PropertyID)
		if err != nil {
			return err
		}
		expected, err := guard(prop, input.ExpectedVersion)
		if err != nil {
			return err
		}

		if err := prop.SoftDelete(actorOf(txCtx, input.ActorName), s.now()); err != nil {
			return err
		}
		if err := s.save(txCtx, prop, expected); err != nil {
			return err
		}
		pending = prop.PendingTraces()
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "property deleted", slog.String("property_id", input.PropertyID.String()))
	s.publish(ctx, pending)

	return nil
}
