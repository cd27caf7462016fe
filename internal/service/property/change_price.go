package property

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// ChangePrice replaces both price components of a property. The caller's
// version must match the stored one.
func (s *Service) ChangePrice(ctx context.Context, input ChangePriceInput) (*PriceChangeResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		result  *PriceChangeResult
		pending []domain.PropertyTrace
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

		oldPrice := prop.Record().Price
		tr, err := prop.ChangePrice(input.BasePrice, input.TaxAmount, actorOf(txCtx, input.ActorName), s.now())
		if err != nil {
			return err
		}
		if err := s.save(txCtx, prop, expected); err != nil {
			return err
		}

		rec := prop.Record()
		result = &PriceChangeResult{
			Property: rec,
			OldPrice: oldPrice,
			NewPrice: rec.Price,
			Trace:    tr,
		}
		pending = prop.PendingTraces()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "property price changed",
		slog.String("property_id", input.PropertyID.String()),
		slog.String("old_price", result.OldPrice.StringFixed(2)),
		slog.String("new_price", result.NewPrice.StringFixed(2)),
	)
	s.publish(ctx, pending)

	return result, nil
}
