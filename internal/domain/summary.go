package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertySummary is the list read model of a property.
type PropertySummary struct {
	ID              uuid.UUID
	Name            string
	CodeInternal    string
	City            string
	State           string
	PostalCode      string
	Price           decimal.Decimal
	Currency        string
	Type            PropertyType
	YearBuilt       *int
	Bedrooms        int
	Bathrooms       decimal.Decimal
	AreaSqft        *int
	ListingStatus   ListingStatus
	ListingDate     time.Time
	PrimaryImageURL *string
	OwnerFullName   string
	IsFeatured      bool
	IsPublished     bool
	Version         int64
}
