package property

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// CreateProperty validates the input, checks that the owner exists and
// stores the new property together with its CREATED trace.
func (s *Service) CreateProperty(ctx context.Context, input CreatePropertyInput) (*domain.Property, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	params := input.NewPropertyParams
	params.ActorName = actorOf(ctx, params.ActorName)

	prop, err := domain.NewProperty(params, s.now())
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureOwner(txCtx, params.OwnerID); err != nil {
			return err
		}
		if err := s.properties.Create(txCtx, prop.Record()); err != nil {
			return fmt.Errorf("create property: %w", err)
		}
		if err := s.traces.Append(txCtx, prop.PendingTraces()...); err != nil {
			return fmt.Errorf("append traces: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "property created",
		slog.String("property_id", prop.ID().String()),
		slog.String("code_internal", prop.Record().CodeInternal),
	)
	s.publish(ctx, prop.PendingTraces())

	return prop, nil
}
