package property

import (
	"context"
	"fmt"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// ListProperties returns one page of visible properties. The input is fully
// validated before the repository is called.
func (s *Service) ListProperties(ctx context.Context, input ListPropertiesInput) (*domain.Page[domain.PropertySummary], error) {
	f, err := input.filter(s.defaultPageSize(), s.maxPageSize())
	if err != nil {
		return nil, err
	}

	items, total, err := s.properties.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	page := domain.NewPage(items, total, f.PageRequest)
	return &page, nil
}

func (s *Service) defaultPageSize() int {
	if s.cfg.DefaultPageSize > 0 {
		return s.cfg.DefaultPageSize
	}
	return domain.DefaultPageSize
}

func (s *Service) maxPageSize() int {
	if s.cfg.MaxPageSize > 0 && s.cfg.MaxPageSize <= domain.MaxPageSize {
		return s.cfg.MaxPageSize
	}
	return domain.MaxPageSize
}
