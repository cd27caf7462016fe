package owner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// CreateOwner stores a new owner. A taken email or external code is reported
// as a *domain.ConflictError.
func (s *Service) CreateOwner(ctx context.Context, input CreateOwnerInput) (*domain.Owner, error) {
	o, err := domain.NewOwner(input.NewOwnerParams, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.owners.Create(ctx, *o); err != nil {
		return nil, fmt.Errorf("create owner: %w", err)
	}

	s.log.InfoContext(ctx, "owner created", slog.String("owner_id", o.ID.String()))
	return o, nil
}

// GetOwner returns a visible owner with the number of visible properties it holds.
func (s *Service) GetOwner(ctx context.Context, id uuid.UUID) (*domain.OwnerDetail, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("owner_id", "required")
	}

	o, err := s.owners.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}

	n, err := s.properties.CountByOwner(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}
	return &domain.OwnerDetail{Owner: o, PropertyCount: n}, nil
}

// ListOwners returns one page of visible owners ordered by name.
func (s *Service) ListOwners(ctx context.Context, input ListOwnersInput) (*domain.Page[domain.OwnerSummary], error) {
	defaultSize, maxSize := domain.DefaultPageSize, domain.MaxPageSize
	if s.cfg.DefaultPageSize > 0 {
		defaultSize = s.cfg.DefaultPageSize
	}
	if s.cfg.MaxPageSize > 0 && s.cfg.MaxPageSize < maxSize {
		maxSize = s.cfg.MaxPageSize
	}

	f, err := input.filter(defaultSize, maxSize)
	if err != nil {
		return nil, err
	}

	items, total, err := s.owners.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}

	page := domain.NewPage(items, total, f.PageRequest)
	return &page, nil
}

// UpdateOwner applies a partial update. Nothing is written when no field changes.
func (s *Service) UpdateOwner(ctx context.Context, input UpdateOwnerInput) (*domain.Owner, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		updated *domain.Owner
		changed []string
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := s.owners.GetByID(txCtx, input.OwnerID)
		if err != nil {
			return fmt.Errorf("get owner: %w", err)
		}
		if err := domain.CheckVersion("owner", o.ID, input.ExpectedVersion, o.Version); err != nil {
			return err
		}

		changed = o.Apply(input.Patch, s.now())
		updated = o
		if len(changed) == 0 {
			return nil
		}
		if err := o.Validate(); err != nil {
			return err
		}
		if err := s.owners.Update(txCtx, *o, input.ExpectedVersion); err != nil {
			return fmt.Errorf("update owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.log.InfoContext(ctx, "owner updated",
			slog.String("owner_id", input.OwnerID.String()),
			slog.Any("fields", changed),
		)
	}
	return updated, nil
}

// DeleteOwner soft-deletes an owner that no longer holds visible properties.
func (s *Service) DeleteOwner(ctx context.Context, input DeleteOwnerInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := s.owners.GetByID(txCtx, input.OwnerID)
		if err != nil {
			return fmt.Errorf("get owner: %w", err)
		}
		expected := o.Version
		if input.ExpectedVersion != nil {
			if err := domain.CheckVersion("owner", o.ID, *input.ExpectedVersion, o.Version); err != nil {
				return err
			}
			expected = *input.ExpectedVersion
		}

		n, err := s.properties.CountByOwner(txCtx, o.ID)
		if err != nil {
			return fmt.Errorf("count properties: %w", err)
		}
		if n > 0 {
			return domain.NewValidationError("owner_id", fmt.Sprintf("owner still has %d properties", n))
		}

		o.SoftDelete(s.now())
		if err := s.owners.Update(txCtx, *o, expected); err != nil {
			return fmt.Errorf("delete owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "owner deleted", slog.String("owner_id", input.OwnerID.String()))
	return nil
}
