package property

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// AddImage attaches an image to a property. The first visible image becomes
// primary; a new primary image demotes the previous one.
func (s *Service) AddImage(ctx context.Context, input AddImageInput) (*domain.PropertyImage, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		img     domain.PropertyImage
		pending []domain.PropertyTrace
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		prop, err := s.load(txCtx, input.PropertyID)
		if err != nil {
			return err
		}
		expected, err := guard(prop, input.ExpectedVersion)
		if err != nil {
			return err
		}

		var demoted []uuid.UUID
		img, demoted, err = prop.AddImage(input.Image, actorOf(txCtx, input.ActorName), s.now())
		if err != nil {
			return err
		}

		if err := s.properties.Update(txCtx, prop.Record(), expected); err != nil {
			return fmt.Errorf("update property: %w", err)
		}
		if len(demoted) > 0 {
			if err := s.images.Demote(txCtx, demoted); err != nil {
				return fmt.Errorf("demote images: %w", err)
			}
		}
		if err := s.images.Insert(txCtx, img); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		if err := s.traces.Append(txCtx, prop.PendingTraces()...); err != nil {
			return fmt.Errorf("append traces: %w", err)
		}
		pending = prop.PendingTraces()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "property image added",
		slog.String("property_id", input.PropertyID.String()),
		slog.String("image_id", img.ID.String()),
		slog.Bool("primary", img.IsPrimary),
	)
	s.publish(ctx, pending)

	return &img, nil
}

// RemoveImage soft-deletes an image. When the primary image is removed the
// next visible image in display order is promoted.
func (s *Service) RemoveImage(ctx context.Context, input RemoveImageInput) error {
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

		removed, promoted, err := prop.RemoveImage(input.ImageID, actorOf(txCtx, input.ActorName), s.now())
		if err != nil {
			return err
		}

		if err := s.properties.Update(txCtx, prop.Record(), expected); err != nil {
			return fmt.Errorf("update property: %w", err)
		}
		if err := s.images.SoftDelete(txCtx, removed.ID, *removed.DeletedAt); err != nil {
			return fmt.Errorf("delete image: %w", err)
		}
		if promoted != nil {
			if err := s.images.Promote(txCtx, *promoted); err != nil {
				return fmt.Errorf("promote image: %w", err)
			}
		}
		if err := s.traces.Append(txCtx, prop.PendingTraces()...); err != nil {
			return fmt.Errorf("append traces: %w", err)
		}
		pending = prop.PendingTraces()
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "property image removed",
		slog.String("property_id", input.PropertyID.String()),
		slog.String("image_id", input.ImageID.String()),
	)
	s.publish(ctx, pending)

	return nil
}
