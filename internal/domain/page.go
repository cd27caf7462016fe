package domain

// Page is the envelope of one window of a list query.
type Page[T any] struct {
	Items           []T
	TotalCount      int
	Page            int
	PageSize        int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// NewPage derives the paging flags from the total match count. A page past
// the last one is valid and simply carries no items.
func NewPage[T any](items []T, totalCount int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if req.PageSize > 0 {
		totalPages = (totalCount + req.PageSize - 1) / req.PageSize
	}

	return Page[T]{
		Items:           items,
		TotalCount:      totalCount,
		Page:            req.Page,
		PageSize:        req.PageSize,
		TotalPages:      totalPages,
		HasNextPage:     req.Page < totalPages,
		HasPreviousPage: req.Page > 1,
	}
}
