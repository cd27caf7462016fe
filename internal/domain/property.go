package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxCodeInternalLength = 40
	maxPropertyNameLength = 200
	maxAddressLineLength  = 200
	maxCityLength         = 120
	maxPostalCodeLength   = 10
	maxRoomCount          = 50
	minYearBuilt          = 1800
	maxYearBuilt          = 2100

	defaultCurrency = "USD"
	defaultCountry  = "US"
)

// Address is the postal location of a property.
type Address struct {
	Line1      string
	Line2      *string
	City       string
	State      string
	PostalCode string
	Country    string
}

// PropertyRecord is the persisted shape of a property. It is a value:
// changing a copy has no effect on the aggregate it came from.
type PropertyRecord struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	CodeInternal  string
	Name          string
	Description   *string
	Type          PropertyType
	YearBuilt     *int
	Bedrooms      int
	Bathrooms     decimal.Decimal
	ParkingSpaces int
	AreaSqft      *int
	LotSizeSqft   *int
	BasePrice     decimal.Decimal
	TaxAmount     decimal.Decimal
	Price         decimal.Decimal
	Currency      string
	HOAFee        *decimal.Decimal
	Address       Address
	Lat           *float64
	Lng           *float64
	ListingStatus ListingStatus
	ListingDate   time.Time
	LastSoldPrice *decimal.Decimal
	IsFeatured    bool
	IsPublished   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
	Version       int64
}

// IsDeleted returns true if the property has been soft-deleted.
func (r PropertyRecord) IsDeleted() bool {
	return r.DeletedAt != nil
}

// Pricing returns the price components of the record.
func (r PropertyRecord) Pricing() Pricing {
	return Pricing{Base: r.BasePrice, Tax: r.TaxAmount}
}

// Property is the aggregate root for a listing together with its images and
// the trace entries produced since it was loaded. State changes only through
// its methods; each successful mutation bumps the version and appends a trace.
type Property struct {
	rec    PropertyRecord
	images ImageCollection
	traces TraceLog
}

// NewPropertyParams holds caller-supplied values for a new property.
// Zero ListingStatus means ACTIVE, nil ListingDate means today, nil
// IsPublished means true, empty Currency and Country mean USD and US.
type NewPropertyParams struct {
	OwnerID       uuid.UUID
	CodeInternal  string
	Name          string
	Description   *string
	Type          PropertyType
	YearBuilt     *int
	Bedrooms      int
	Bathrooms     decimal.Decimal
	ParkingSpaces int
	AreaSqft      *int
	LotSizeSqft   *int
	BasePrice     decimal.Decimal
	TaxAmount     decimal.Decimal
	Currency      string
	HOAFee        *decimal.Decimal
	Address       Address
	Lat           *float64
	Lng           *float64
	ListingStatus ListingStatus
	ListingDate   *time.Time
	LastSoldPrice *decimal.Decimal
	IsFeatured    bool
	IsPublished   *bool
	ActorName     *string
}

// NewProperty creates a property at version 1 with a pending CREATED trace.
func NewProperty(p NewPropertyParams, now time.Time) (*Property, error) {
	now = now.UTC()

	var errs []FieldError
	pricing, err := NewPricing(p.BasePrice, p.TaxAmount)
	var verr *ValidationError
	if errors.As(err, &verr) {
		errs = append(errs, verr.Errors...)
	}

	rec := PropertyRecord{
		ID:            uuid.New(),
		OwnerID:       p.OwnerID,
		CodeInternal:  strings.TrimSpace(p.CodeInternal),
		Name:          strings.TrimSpace(p.Name),
		Description:   p.Description,
		Type:          p.Type,
		YearBuilt:     p.YearBuilt,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		ParkingSpaces: p.ParkingSpaces,
		AreaSqft:      p.AreaSqft,
		LotSizeSqft:   p.LotSizeSqft,
		BasePrice:     pricing.Base,
		TaxAmount:     pricing.Tax,
		Price:         pricing.Total(),
		Currency:      orDefault(NormalizeCode(p.Currency), defaultCurrency),
		HOAFee:        roundMoneyPtr(p.HOAFee),
		Address:       normalizeAddress(p.Address),
		Lat:           p.Lat,
		Lng:           p.Lng,
		ListingStatus: p.ListingStatus,
		ListingDate:   DateOf(now),
		LastSoldPrice: roundMoneyPtr(p.LastSoldPrice),
		IsFeatured:    p.IsFeatured,
		IsPublished:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	if rec.ListingStatus == "" {
		rec.ListingStatus = ListingStatusActive
	}
	if p.ListingDate != nil {
		rec.ListingDate = DateOf(*p.ListingDate)
	}
	if p.IsPublished != nil {
		rec.IsPublished = *p.IsPublished
	}

	errs = append(errs, validateRecord(&rec)...)
	if len(errs) > 0 {
		return nil, NewValidationErrors(errs)
	}

	prop := &Property{
		rec:    rec,
		images: NewImageCollection(nil),
		traces: NewTraceLog(rec.ID),
	}
	prop.traces.Add(TraceEntry{
		EventType: TraceEventCreated,
		Notes:     fmt.Sprintf("created with price %s %s", rec.Price.StringFixed(moneyScale), rec.Currency),
		ActorName: p.ActorName,
		New:       &pricing,
	}, now)

	return prop, nil
}

// RestoreProperty rebuilds an aggregate from persisted state. No traces are pending.
func RestoreProperty(rec PropertyRecord, images []PropertyImage) *Property {
	return &Property{
		rec:    rec,
		images: NewImageCollection(images),
		traces: NewTraceLog(rec.ID),
	}
}

// ID returns the property id.
func (p *Property) ID() uuid.UUID { return p.rec.ID }

// Version returns the current version token.
func (p *Property) Version() int64 { return p.rec.Version }

// Record returns a copy of the current state.
func (p *Property) Record() PropertyRecord { return p.rec }

// Images returns the images in display order.
func (p *Property) Images() []PropertyImage { return p.images.Ordered() }

// PendingTraces returns the traces produced since the aggregate was created or loaded.
func (p *Property) PendingTraces() []PropertyTrace { return p.traces.Entries() }

// ChangePrice replaces both price components and records a PRICE_CHANGE trace
// holding the prior and new values.
func (p *Property) ChangePrice(newBase, newTax decimal.Decimal, actor *string, now time.Time) (PropertyTrace, error) {
	if err := p.ensureVisible(); err != nil {
		return PropertyTrace{}, err
	}

	next, err := NewPricing(newBase, newTax)
	if err != nil {
		return PropertyTrace{}, err
	}

	prev := p.rec.Pricing()
	p.rec.BasePrice = next.Base
	p.rec.TaxAmount = next.Tax
	p.rec.Price = next.Total()
	p.touch(now)

	tr := p.traces.Add(TraceEntry{
		EventType: TraceEventPriceChange,
		Notes: fmt.Sprintf("price: %s -> %s",
			prev.Total().StringFixed(moneyScale), next.Total().StringFixed(moneyScale)),
		ActorName: actor,
		Old:       &prev,
		New:       &next,
	}, now.UTC())
	return tr, nil
}

// Update applies the supplied fields. When at least one value differs it bumps
// the version once and records a single UPDATED trace listing every change.
// It returns the names of the changed fields; none means nothing happened.
func (p *Property) Update(patch PropertyPatch, actor *string, now time.Time) ([]string, error) {
	if err := p.ensureVisible(); err != nil {
		return nil, err
	}

	next := p.rec
	cs := patch.apply(&next)
	if cs.empty() {
		return nil, nil
	}

	if errs := validateRecord(&next); len(errs) > 0 {
		return nil, NewValidationErrors(errs)
	}

	p.rec = next
	p.touch(now)
	p.traces.Add(TraceEntry{
		EventType: TraceEventUpdated,
		Notes:     cs.notes(),
		ActorName: actor,
	}, now.UTC())

	return cs.fields, nil
}

// AddImage adds an image through the image collection and bumps the version.
// It returns the new image and the ids of images that lost the primary flag.
func (p *Property) AddImage(params NewImageParams, actor *string, now time.Time) (PropertyImage, []uuid.UUID, error) {
	if err := p.ensureVisible(); err != nil {
		return PropertyImage{}, nil, err
	}

	img, demoted, err := p.images.Add(p.rec.ID, params, now.UTC())
	if err != nil {
		return PropertyImage{}, nil, err
	}

	p.touch(now)
	notes := fmt.Sprintf("image added: %s", img.ID)
	if img.IsPrimary {
		notes += " (primary)"
	}
	p.traces.Add(TraceEntry{EventType: TraceEventUpdated, Notes: notes, ActorName: actor}, now.UTC())

	return img, demoted, nil
}

// RemoveImage soft-deletes an image and bumps the version. If the image was
// primary, the returned id names the image promoted in its place.
func (p *Property) RemoveImage(imageID uuid.UUID, actor *string, now time.Time) (PropertyImage, *uuid.UUID, error) {
	if err := p.ensureVisible(); err != nil {
		return PropertyImage{}, nil, err
	}

	removed, promoted, err := p.images.Remove(imageID, now.UTC())
	if err != nil {
		return PropertyImage{}, nil, err
	}

	p.touch(now)
	notes := fmt.Sprintf("image removed: %s", removed.ID)
	if promoted != nil {
		notes += fmt.Sprintf("; primary moved to %s", *promoted)
	}
	p.traces.Add(TraceEntry{EventType: TraceEventUpdated, Notes: notes, ActorName: actor}, now.UTC())

	return removed, promoted, nil
}

// SoftDelete marks the property deleted and records a DELETED trace.
func (p *Property) SoftDelete(actor *string, now time.Time) error {
	if err := p.ensureVisible(); err != nil {
		return err
	}

	now = now.UTC()
	p.rec.DeletedAt = &now
	p.touch(now)
	p.traces.Add(TraceEntry{EventType: TraceEventDeleted, Notes: "soft-deleted", ActorName: actor}, now)
	return nil
}

func (p *Property) ensureVisible() error {
	if p.rec.DeletedAt != nil {
		return fmt.Errorf("property %s: %w", p.rec.ID, ErrNotFound)
	}
	return nil
}

func (p *Property) touch(now time.Time) {
	p.rec.Version++
	p.rec.UpdatedAt = now.UTC()
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func validateRecord(r *PropertyRecord) []FieldError {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if r.OwnerID == uuid.Nil {
		add("owner_id", "required")
	}
	if r.CodeInternal == "" {
		add("code_internal", "required")
	} else if len(r.CodeInternal) > maxCodeInternalLength {
		add("code_internal", fmt.Sprintf("max %d characters", maxCodeInternalLength))
	}
	if r.Name == "" {
		add("name", "required")
	} else if len([]rune(r.Name)) > maxPropertyNameLength {
		add("name", fmt.Sprintf("max %d characters", maxPropertyNameLength))
	}
	if !r.Type.IsValid() {
		add("property_type", "invalid value")
	}
	if !r.ListingStatus.IsValid() {
		add("listing_status", "invalid value")
	}
	if r.YearBuilt != nil && (*r.YearBuilt < minYearBuilt || *r.YearBuilt > maxYearBuilt) {
		add("year_built", fmt.Sprintf("must be between %d and %d", minYearBuilt, maxYearBuilt))
	}
	if r.Bedrooms < 0 || r.Bedrooms > maxRoomCount {
		add("bedrooms", fmt.Sprintf("must be between 0 and %d", maxRoomCount))
	}
	if r.Bathrooms.IsNegative() || r.Bathrooms.GreaterThan(decimal.NewFromInt(maxRoomCount)) {
		add("bathrooms", fmt.Sprintf("must be between 0 and %d", maxRoomCount))
	}
	if r.ParkingSpaces < 0 || r.ParkingSpaces > maxRoomCount {
		add("parking_spaces", fmt.Sprintf("must be between 0 and %d", maxRoomCount))
	}
	if r.AreaSqft != nil && *r.AreaSqft <= 0 {
		add("area_sqft", "must be > 0")
	}
	if r.LotSizeSqft != nil && *r.LotSizeSqft <= 0 {
		add("lot_size_sqft", "must be > 0")
	}
	if !IsAlphaCode(r.Currency, 3) {
		add("currency", "must be a 3-letter code")
	}
	if r.HOAFee != nil && r.HOAFee.IsNegative() {
		add("hoa_fee", "must be >= 0")
	}
	if r.LastSoldPrice != nil && r.LastSoldPrice.IsNegative() {
		add("last_sold_price", "must be >= 0")
	}

	a := r.Address
	if a.Line1 == "" {
		add("address_line1", "required")
	} else if len([]rune(a.Line1)) > maxAddressLineLength {
		add("address_line1", fmt.Sprintf("max %d characters", maxAddressLineLength))
	}
	if a.Line2 != nil && len([]rune(*a.Line2)) > maxAddressLineLength {
		add("address_line2", fmt.Sprintf("max %d characters", maxAddressLineLength))
	}
	if a.City == "" {
		add("city", "required")
	} else if len([]rune(a.City)) > maxCityLength {
		add("city", fmt.Sprintf("max %d characters", maxCityLength))
	}
	if !IsAlphaCode(a.State, 2) {
		add("state", "must be a 2-letter uppercase code")
	}
	if a.PostalCode == "" {
		add("postal_code", "required")
	} else if len(a.PostalCode) > maxPostalCodeLength {
		add("postal_code", fmt.Sprintf("max %d characters", maxPostalCodeLength))
	}
	if !IsAlphaCode(a.Country, 2) {
		add("country", "must be a 2-letter code")
	}

	if r.Lat != nil && (*r.Lat < -90 || *r.Lat > 90) {
		add("lat", "must be between -90 and 90")
	}
	if r.Lng != nil && (*r.Lng < -180 || *r.Lng > 180) {
		add("lng", "must be between -180 and 180")
	}

	return errs
}

func normalizeAddress(a Address) Address {
	a.Line1 = strings.TrimSpace(a.Line1)
	a.City = strings.TrimSpace(a.City)
	a.State = NormalizeCode(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = orDefault(NormalizeCode(a.Country), defaultCountry)
	return a
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func roundMoneyPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	return decimalPtr(RoundMoney(*d))
}
