package property

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

const (
	maxDescriptionLength = 4000
	maxActorNameLength   = 100
	maxSearchLength      = 200
	maxCityLength        = 120
	maxPostalCodeLength  = 10
	maxRoomFilter        = 50
	minYearFilter        = 1800
	maxYearFilter        = 2100
	maxGeohashLength     = 12
)

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// CreatePropertyInput holds the parameters for creating a property.
type CreatePropertyInput struct {
	domain.NewPropertyParams
}

// Validate checks the fields the aggregate does not own.
func (i CreatePropertyInput) Validate() error {
	var errs []domain.FieldError
	if i.Description != nil && len([]rune(*i.Description)) > maxDescriptionLength {
		errs = append(errs, domain.FieldError{Field: "description", Message: fmt.Sprintf("max %d characters", maxDescriptionLength)})
	}
	errs = append(errs, validateActor(i.ActorName)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ChangePriceInput holds the parameters for a price change.
type ChangePriceInput struct {
	PropertyID      uuid.UUID
	BasePrice       decimal.Decimal
	TaxAmount       decimal.Decimal
	ActorName       *string
	ExpectedVersion int64
}

// Validate checks all fields and collects all errors.
func (i ChangePriceInput) Validate() error {
	var errs []domain.FieldError
	if i.PropertyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "property_id", Message: "required"})
	}
	if i.BasePrice.IsNegative() {
		errs = append(errs, domain.FieldError{Field: "base_price", Message: "must be >= 0"})
	}
	if i.TaxAmount.IsNegative() {
		errs = append(errs, domain.FieldError{Field: "tax_amount", Message: "must be >= 0"})
	}
	if i.ExpectedVersion < 1 {
		errs = append(errs, domain.FieldError{Field: "version", Message: "required"})
	}
	errs = append(errs, validateActor(i.ActorName)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdatePropertyInput holds the parameters of a partial update. BasePrice and
// TaxAmount are routed through a price change; a missing component keeps its
// current value.
type UpdatePropertyInput struct {
	PropertyID      uuid.UUID
	Patch           domain.PropertyPatch
	BasePrice       *decimal.Decimal
	TaxAmount       *decimal.Decimal
	ActorName       *string
	ExpectedVersion int64
}

// Validate checks all fields and collects all errors.
func (i UpdatePropertyInput) Validate() error {
	var errs []domain.FieldError
	if i.PropertyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "property_id", Message: "required"})
	}
	if i.ExpectedVersion < 1 {
		errs = append(errs, domain.FieldError{Field: "version", Message: "required"})
	}
	if i.Patch.IsEmpty() && i.BasePrice == nil && i.TaxAmount == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field must be provided"})
	}
	if i.BasePrice != nil && i.BasePrice.IsNegative() {
		errs = append(errs, domain.FieldError{Field: "base_price", Message: "must be >= 0"})
	}
	if i.TaxAmount != nil && i.TaxAmount.IsNegative() {
		errs = append(errs, domain.FieldError{Field: "tax_amount", Message: "must be >= 0"})
	}
	if i.Patch.OwnerID != nil && *i.Patch.OwnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "owner_id", Message: "required"})
	}
	if d := i.Patch.Description; d != nil && len([]rune(*d)) > maxDescriptionLength {
		errs = append(errs, domain.FieldError{Field: "description", Message: fmt.Sprintf("max %d characters", maxDescriptionLength)})
	}
	errs = append(errs, validateActor(i.ActorName)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// AddImageInput holds the parameters for attaching an image.
type AddImageInput struct {
	PropertyID      uuid.UUID
	Image           domain.NewImageParams
	ActorName       *string
	ExpectedVersion *int64
}

// Validate checks all fields and collects all errors.
func (i AddImageInput) Validate() error {
	var errs []domain.FieldError
	if i.PropertyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "property_id", Message: "required"})
	}
	if strings.TrimSpace(i.Image.URL) == "" {
		errs = append(errs, domain.FieldError{Field: "url", Message: "required"})
	}
	errs = append(errs, validateOptionalVersion(i.ExpectedVersion)...)
	errs = append(errs, validateActor(i.ActorName)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RemoveImageInput holds the parameters for removing an image.
type RemoveImageInput struct {
	PropertyID      uuid.UUID
	ImageID         uuid.UUID
	ActorName       *string
	ExpectedVersion *int64
}

// Validate checks all fields and collects all errors.
func (i RemoveImageInput) Validate() error {
	var errs []domain.FieldError
	if i.PropertyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "property_id", Message: "required"})
	}
	if i.ImageID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "image_id", Message: "required"})
	}
	errs = append(errs, validateOptionalVersion(i.ExpectedVersion)...)
	errs = append(errs, validateActor(i.ActorName)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// DeletePropertyInput holds the parameters for soft-deleting a property.
type DeletePropertyInput struct {
	PropertyID      uuid.UUID
	ActorName       *string
	ExpectedVersion *int64
}

// Validate checks all fields and collects all errors.
func (i DeletePropertyInput) Validate() error {
	var errs []domain.FieldError
	if i.PropertyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "property_id", Message: "required"})
	}
	errs = append(errs, validateOptionalVersion(i.ExpectedVersion)...)
	errs = append(errs, validateActor(i.ActorName)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListPropertiesInput holds the raw predicates, sort and window of a property
// list query. Nil Page and PageSize select the defaults.
type ListPropertiesInput struct {
	Q       *string
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

	PropertyTypes   []string
	ListingStatuses []string

	IsFeatured  *bool
	IsPublished *bool

	State      *string
	City       *string
	PostalCode *string

	LatMin *float64
	LatMax *float64
	LngMin *float64
	LngMax *float64

	GeohashPrefix *string

	SortBy  string
	SortDir string

	Page     *int
	PageSize *int
}

// Validate checks all fields and collects all errors.
func (i ListPropertiesInput) Validate() error {
	_, err := i.filter(domain.DefaultPageSize, domain.MaxPageSize)
	return err
}

// filter validates the input and converts it to a normalized domain filter.
// Nothing here touches storage.
func (i ListPropertiesInput) filter(defaultPageSize, maxPageSize int) (domain.PropertyFilter, error) {
	var errs []domain.FieldError
	add := func(field, msg string) {
		errs = append(errs, domain.FieldError{Field: field, Message: msg})
	}

	f := domain.PropertyFilter{
		OwnerID:      i.OwnerID,
		MinPrice:     i.MinPrice,
		MaxPrice:     i.MaxPrice,
		MinYear:      i.MinYear,
		MaxYear:      i.MaxYear,
		MinBedrooms:  i.MinBedrooms,
		MaxBedrooms:  i.MaxBedrooms,
		MinBathrooms: i.MinBathrooms,
		MaxBathrooms: i.MaxBathrooms,
		MinArea:      i.MinArea,
		MaxArea:      i.MaxArea,
		IsFeatured:   i.IsFeatured,
		IsPublished:  i.IsPublished,
		LatMin:       i.LatMin,
		LatMax:       i.LatMax,
		LngMin:       i.LngMin,
		LngMax:       i.LngMax,
	}

	// Search term
	if i.Q != nil {
		if len([]rune(*i.Q)) > maxSearchLength {
			add("q", fmt.Sprintf("max %d characters", maxSearchLength))
		} else if q := domain.NormalizeSearch(*i.Q); q != "" {
			f.Q = &q
		}
	}
	if i.OwnerID != nil && *i.OwnerID == uuid.Nil {
		add("owner_id", "invalid value")
	}

	// Ranges
	if i.MinPrice != nil && i.MinPrice.IsNegative() {
		add("min_price", "must be >= 0")
	}
	if i.MaxPrice != nil && i.MaxPrice.IsNegative() {
		add("max_price", "must be >= 0")
	}
	if i.MinPrice != nil && i.MaxPrice != nil && i.MaxPrice.LessThan(*i.MinPrice) {
		add("max_price", "must be >= min_price")
	}
	checkIntRange(add, "year", i.MinYear, i.MaxYear, minYearFilter, maxYearFilter)
	checkIntRange(add, "bedrooms", i.MinBedrooms, i.MaxBedrooms, 0, maxRoomFilter)
	checkDecimalRange(add, "bathrooms", i.MinBathrooms, i.MaxBathrooms, 0, maxRoomFilter)
	checkIntRange(add, "area", i.MinArea, i.MaxArea, 1, 0)

	// Sets
	for _, raw := range i.PropertyTypes {
		t := domain.PropertyType(domain.NormalizeCode(raw))
		if !t.IsValid() {
			add("property_type", fmt.Sprintf("invalid value %q", raw))
			continue
		}
		f.PropertyTypes = append(f.PropertyTypes, t)
	}
	for _, raw := range i.ListingStatuses {
		st := domain.ListingStatus(domain.NormalizeCode(raw))
		if !st.IsValid() {
			add("listing_status", fmt.Sprintf("invalid value %q", raw))
			continue
		}
		f.ListingStatuses = append(f.ListingStatuses, st)
	}

	// Location
	if i.State != nil {
		st := domain.NormalizeCode(*i.State)
		if !domain.IsAlphaCode(st, 2) {
			add("state", "must be a 2-letter code")
		} else {
			f.State = &st
		}
	}
	if i.City != nil {
		city := strings.TrimSpace(*i.City)
		if len([]rune(city)) > maxCityLength {
			add("city", fmt.Sprintf("max %d characters", maxCityLength))
		} else if city != "" {
			f.City = &city
		}
	}
	if i.PostalCode != nil {
		pc := strings.TrimSpace(*i.PostalCode)
		if len(pc) > maxPostalCodeLength {
			add("postal_code", fmt.Sprintf("max %d characters", maxPostalCodeLength))
		} else if pc != "" {
			f.PostalCode = &pc
		}
	}
	checkCoordinate(add, "lat_min", i.LatMin, 90)
	checkCoordinate(add, "lat_max", i.LatMax, 90)
	checkCoordinate(add, "lng_min", i.LngMin, 180)
	checkCoordinate(add, "lng_max", i.LngMax, 180)
	if i.LatMin != nil && i.LatMax != nil && *i.LatMax < *i.LatMin {
		add("lat_max", "must be >= lat_min")
	}
	if i.LngMin != nil && i.LngMax != nil && *i.LngMax < *i.LngMin {
		add("lng_max", "must be >= lng_min")
	}
	if i.GeohashPrefix != nil {
		gh := strings.ToLower(strings.TrimSpace(*i.GeohashPrefix))
		if gh == "" || len(gh) > maxGeohashLength || strings.Trim(gh, geohashAlphabet) != "" {
			add("geohash", fmt.Sprintf("must be 1..%d geohash characters", maxGeohashLength))
		} else {
			f.GeohashPrefix = &gh
		}
	}

	// Sort
	f.SortBy = domain.SortByName
	if i.SortBy != "" {
		f.SortBy = domain.SortKey(strings.ToLower(strings.TrimSpace(i.SortBy)))
		if !f.SortBy.IsValid() {
			add("sort_by", fmt.Sprintf("unknown sort key %q", i.SortBy))
		}
	}
	f.SortDir = domain.SortAsc
	if i.SortDir != "" {
		f.SortDir = domain.SortDirection(strings.ToLower(strings.TrimSpace(i.SortDir)))
		if !f.SortDir.IsValid() {
			add("sort_dir", "must be asc or desc")
		}
	}

	// Window
	window, windowErrs := domain.NewPageRequest(i.Page, i.PageSize, defaultPageSize, maxPageSize)
	f.PageRequest = window
	errs = append(errs, windowErrs...)

	if len(errs) > 0 {
		return domain.PropertyFilter{}, &domain.ValidationError{Errors: errs}
	}
	return f, nil
}

// checkIntRange validates an optional [min, max] pair. A zero upper bound
// means unbounded.
func checkIntRange(add func(string, string), name string, lo, hi *int, floor, ceil int) {
	inBounds := func(v int) bool { return v >= floor && (ceil == 0 || v <= ceil) }
	msg := fmt.Sprintf("must be >= %d", floor)
	if ceil != 0 {
		msg = fmt.Sprintf("must be between %d and %d", floor, ceil)
	}
	if lo != nil && !inBounds(*lo) {
		add("min_"+name, msg)
	}
	if hi != nil && !inBounds(*hi) {
		add("max_"+name, msg)
	}
	if lo != nil && hi != nil && *hi < *lo {
		add("max_"+name, "must be >= min_"+name)
	}
}

func checkDecimalRange(add func(string, string), name string, lo, hi *decimal.Decimal, floor, ceil int64) {
	f, c := decimal.NewFromInt(floor), decimal.NewFromInt(ceil)
	inBounds := func(v decimal.Decimal) bool { return !v.LessThan(f) && !v.GreaterThan(c) }
	msg := fmt.Sprintf("must be between %d and %d", floor, ceil)
	if lo != nil && !inBounds(*lo) {
		add("min_"+name, msg)
	}
	if hi != nil && !inBounds(*hi) {
		add("max_"+name, msg)
	}
	if lo != nil && hi != nil && hi.LessThan(*lo) {
		add("max_"+name, "must be >= min_"+name)
	}
}

func checkCoordinate(add func(string, string), field string, v *float64, limit float64) {
	if v != nil && (*v < -limit || *v > limit) {
		add(field, fmt.Sprintf("must be between %g and %g", -limit, limit))
	}
}

func validateOptionalVersion(v *int64) []domain.FieldError {
	if v != nil && *v < 1 {
		return []domain.FieldError{{Field: "version", Message: "must be >= 1"}}
	}
	return nil
}

func validateActor(actor *string) []domain.FieldError {
	if actor != nil && len([]rune(*actor)) > maxActorNameLength {
		return []domain.FieldError{{Field: "actor_name", Message: fmt.Sprintf("max %d characters", maxActorNameLength)}}
	}
	return nil
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
