package property

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// UpdateProperty applies a partial update. Supplied price components go
// through a price change first; the remaining fields produce at most one
// UPDATED trace. A request that changes nothing writes nothing.
func (s *Service) UpdateProperty(ctx context.Context, input UpdatePropertyInput) (*PropertyDetail, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		pending []domain.PropertyTrace
		changed []string
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		prop, err := s.load(txCtx, input.PropertyID)
		if err != nil {
			return err
		}
		expected, err := guard(prop, &input.ExpectedVersion)
		if err != nil {
			return err
		}

		actor := actorOf(txCtx, input.ActorName)
		now := s.now()

		if input.BasePrice != nil || input.TaxAmount != nil {
			current := prop.Record().Pricing()
			next := current
			if input.BasePrice != nil {
				next.Base = domain.RoundMoney(*input.BasePrice)
			}
			if input.TaxAmount != nil {
				next.Tax = domain.RoundMoney(*input.TaxAmount)
			}
			if !next.Equal(current) {
				if _, err := prop.ChangePrice(next.Base, next.Tax, actor, now); err != nil {
					return err
				}
				changed = append(changed, "price")
			}
		}

		if p := input.Patch.OwnerID; p != nil && *p != prop.Record().OwnerID {
			if err := s.ensureOwner(txCtx, *p); err != nil {
				return err
			}
		}

		fields, err := prop.Update(input.Patch, actor, now)
		if err != nil {
			return err
		}
		changed = append(changed, fields...)

		if len(changed) == 0 {
			return nil
		}
		if err := s.save(txCtx, prop, expected); err != nil {
			return err
		}
		pending = prop.PendingTraces()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.log.InfoContext(ctx, "property updated",
			slog.String("property_id", input.PropertyID.String()),
			slog.Any("fields", changed),
		)
		s.publish(ctx, pending)
	}

	return s.GetPropertyDetail(ctx, input.PropertyID)
}
