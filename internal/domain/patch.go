package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyPatch carries the fields of a partial update. A nil field is left
// unchanged. Price components are not part of the patch: they change only
// through Property.ChangePrice.
type PropertyPatch struct {
	OwnerID       *uuid.UUID
	CodeInternal  *string
	Name          *string
	Description   *string
	Type          *PropertyType
	YearBuilt     *int
	Bedrooms      *int
	Bathrooms     *decimal.Decimal
	ParkingSpaces *int
	AreaSqft      *int
	LotSizeSqft   *int
	Currency      *string
	HOAFee        *decimal.Decimal
	AddressLine1  *string
	AddressLine2  *string
	City          *string
	State         *string
	PostalCode    *string
	Country       *string
	Lat           *float64
	Lng           *float64
	ListingStatus *ListingStatus
	ListingDate   *time.Time
	LastSoldPrice *decimal.Decimal
	IsFeatured    *bool
	IsPublished   *bool
}

func (p PropertyPatch) apply(r *PropertyRecord) *changeSet {
	cs := &changeSet{}

	setValue(cs, "owner_id", &r.OwnerID, p.OwnerID)
	setValue(cs, "code_internal", &r.CodeInternal, trimmed(p.CodeInternal))
	setValue(cs, "name", &r.Name, trimmed(p.Name))
	setOptional(cs, "description", &r.Description, p.Description)
	setValue(cs, "property_type", &r.Type, p.Type)
	setOptional(cs, "year_built", &r.YearBuilt, p.YearBuilt)
	setValue(cs, "bedrooms", &r.Bedrooms, p.Bedrooms)
	setDecimal(cs, "bathrooms", &r.Bathrooms, p.Bathrooms)
	setValue(cs, "parking_spaces", &r.ParkingSpaces, p.ParkingSpaces)
	setOptional(cs, "area_sqft", &r.AreaSqft, p.AreaSqft)
	setOptional(cs, "lot_size_sqft", &r.LotSizeSqft, p.LotSizeSqft)
	setValue(cs, "currency", &r.Currency, codeOf(p.Currency))
	setOptionalDecimal(cs, "hoa_fee", &r.HOAFee, roundMoneyPtr(p.HOAFee))
	setValue(cs, "address_line1", &r.Address.Line1, trimmed(p.AddressLine1))
	setOptional(cs, "address_line2", &r.Address.Line2, p.AddressLine2)
	setValue(cs, "city", &r.Address.City, trimmed(p.City))
	setValue(cs, "state", &r.Address.State, codeOf(p.State))
	setValue(cs, "postal_code", &r.Address.PostalCode, trimmed(p.PostalCode))
	setValue(cs, "country", &r.Address.Country, codeOf(p.Country))
	setOptional(cs, "lat", &r.Lat, p.Lat)
	setOptional(cs, "lng", &r.Lng, p.Lng)
	setValue(cs, "listing_status", &r.ListingStatus, p.ListingStatus)
	setDate(cs, "listing_date", &r.ListingDate, p.ListingDate)
	setOptionalDecimal(cs, "last_sold_price", &r.LastSoldPrice, roundMoneyPtr(p.LastSoldPrice))
	setValue(cs, "is_featured", &r.IsFeatured, p.IsFeatured)
	setValue(cs, "is_published", &r.IsPublished, p.IsPublished)

	return cs
}

// IsEmpty reports whether the patch sets no field at all.
func (p PropertyPatch) IsEmpty() bool {
	return p == PropertyPatch{}
}

// ---------------------------------------------------------------------------
// Change tracking
// ---------------------------------------------------------------------------

type changeSet struct {
	fields []string
	lines  []string
}

func (c *changeSet) add(field string, oldValue, newValue any) {
	c.fields = append(c.fields, field)
	c.lines = append(c.lines, fmt.Sprintf("%s: %s -> %s", field, formatValue(oldValue), formatValue(newValue)))
}

func (c *changeSet) empty() bool { return len(c.fields) == 0 }

func (c *changeSet) notes() string { return strings.Join(c.lines, "; ") }

func setValue[T comparable](cs *changeSet, field string, dst *T, v *T) {
	if v == nil || *dst == *v {
		return
	}
	cs.add(field, *dst, *v)
	*dst = *v
}

func setOptional[T comparable](cs *changeSet, field string, dst **T, v *T) {
	if v == nil {
		return
	}
	if *dst != nil && **dst == *v {
		return
	}
	var old any
	if *dst != nil {
		old = **dst
	}
	cs.add(field, old, *v)
	val := *v
	*dst = &val
}

func setDecimal(cs *changeSet, field string, dst *decimal.Decimal, v *decimal.Decimal) {
	if v == nil || dst.Equal(*v) {
		return
	}
	cs.add(field, *dst, *v)
	*dst = *v
}

func setOptionalDecimal(cs *changeSet, field string, dst **decimal.Decimal, v *decimal.Decimal) {
	if v == nil {
		return
	}
	if *dst != nil && (*dst).Equal(*v) {
		return
	}
	var old any
	if *dst != nil {
		old = **dst
	}
	cs.add(field, old, *v)
	*dst = decimalPtr(*v)
}

func setDate(cs *changeSet, field string, dst *time.Time, v *time.Time) {
	if v == nil {
		return
	}
	d := DateOf(*v)
	if dst.Equal(d) {
		return
	}
	cs.add(field, *dst, d)
	*dst = d
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func codeOf(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeCode(*s)
	return &v
}
