package property

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// ListTraces returns the trace log of a visible property in insertion order.
func (s *Service) ListTraces(ctx context.Context, id uuid.UUID) ([]domain.PropertyTrace, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("property_id", "required")
	}

	if _, err := s.properties.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}

	traces, err := s.traces.ListByProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	return traces, nil
}
