package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortKey is a property list sort field. Only the keys declared below exist.
type SortKey string

const (
	SortByName        SortKey = "name"
	SortByPrice       SortKey = "price"
	SortByListingDate SortKey = "listing_date"
	SortByYearBuilt   SortKey = "year_built"
	SortByAreaSqft    SortKey = "area_sqft"
	SortByBedrooms    SortKey = "bedrooms"
	SortByBathrooms   SortKey = "bathrooms"
	SortByCreatedAt   SortKey = "created_at"
	SortByUpdatedAt   SortKey = "updated_at"
)

// SortKeys lists every accepted sort key.
var SortKeys = []SortKey{
	SortByName, SortByPrice, SortByListingDate, SortByYearBuilt, SortByAreaSqft,
	SortByBedrooms, SortByBathrooms, SortByCreatedAt, SortByUpdatedAt,
}

func (k SortKey) String() string { return string(k) }

func (k SortKey) IsValid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Paging limits shared by list queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 10000
)

// PageRequest is a 1-based page window.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest resolves a requested window. Absent values take page 1 and
// defaultSize; supplied values must lie in [1, MaxPage] and [1, maxSize].
func NewPageRequest(page, pageSize *int, defaultSize, maxSize int) (PageRequest, []FieldError) {
	var errs []FieldError

	req := PageRequest{Page: 1, PageSize: defaultSize}
	if page != nil {
		req.Page = *page
		if req.Page < 1 || req.Page > MaxPage {
			errs = append(errs, FieldError{Field: "page", Message: fmt.Sprintf("must be between 1 and %d", MaxPage)})
		}
	}
	if pageSize != nil {
		req.PageSize = *pageSize
		if req.PageSize < 1 || req.PageSize > maxSize {
			errs = append(errs, FieldError{Field: "page_size", Message: fmt.Sprintf("must be between 1 and %d", maxSize)})
		}
	}
	return req, errs
}

// Offset returns the number of rows preceding the page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PropertyFilter holds the already-validated predicates of a property list
// query. Nil fields and empty sets impose no constraint; all supplied
// predicates are combined with AND, set members with OR.
type PropertyFilter struct {
	// Q is the folded search term matched as a substring of name, description,
	// address line, city, state, postal code and internal code.
	Q *string

	OwnerID *uuid.UUID

	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal

	MinYear *int
	MaxYear *int

	MinBedrooms *int
	MaxBedrooms *int

	MinBathrooms *decimal.Decimal
	MaxBathrooms *decimal.Decimal

	MinArea *int
	MaxArea *int

	PropertyTypes   []PropertyType
	ListingStatuses []ListingStatus

	IsFeatured  *bool
	IsPublished *bool

	State      *string
	City       *string
	PostalCode *string

	// Bounding box, inclusive.
	LatMin *float64
	LatMax *float64
	LngMin *float64
	LngMax *float64

	GeohashPrefix *string

	SortBy  SortKey
	SortDir SortDirection

	PageRequest
}

// OwnerFilter holds the predicates of an owner list query.
type OwnerFilter struct {
	Q        *string
	IsActive *bool

	PageRequest
}
