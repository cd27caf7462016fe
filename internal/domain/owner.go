package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxOwnerNameLength  = 200
	maxExternalCodeLen  = 40
	maxOwnerPhoneLength = 30
)

// Owner is a person or company that owns listed properties. Properties
// reference owners by id only.
type Owner struct {
	ID           uuid.UUID
	ExternalCode *string
	FullName     string
	Email        *string
	Phone        *string
	PhotoURL     *string
	BirthDate    *time.Time
	AddressLine  *string
	City         *string
	State        *string
	PostalCode   *string
	Country      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
	Version      int64
}

// IsDeleted returns true if the owner has been soft-deleted.
func (o *Owner) IsDeleted() bool {
	return o.DeletedAt != nil
}

// NewOwnerParams holds caller-supplied values for a new owner. Nil IsActive
// means true, empty Country means US.
type NewOwnerParams struct {
	ExternalCode *string
	FullName     string
	Email        *string
	Phone        *string
	PhotoURL     *string
	BirthDate    *time.Time
	AddressLine  *string
	City         *string
	State        *string
	PostalCode   *string
	Country      string
	IsActive     *bool
}

// NewOwner creates a validated owner at version 1.
func NewOwner(p NewOwnerParams, now time.Time) (*Owner, error) {
	now = now.UTC()
	o := &Owner{
		ID:           uuid.New(),
		ExternalCode: trimmed(p.ExternalCode),
		FullName:     strings.TrimSpace(p.FullName),
		Email:        lowerTrimmed(p.Email),
		Phone:        trimmed(p.Phone),
		PhotoURL:     trimmed(p.PhotoURL),
		AddressLine:  trimmed(p.AddressLine),
		City:         trimmed(p.City),
		State:        codeOf(p.State),
		PostalCode:   trimmed(p.PostalCode),
		Country:      orDefault(NormalizeCode(p.Country), defaultCountry),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
	if p.BirthDate != nil {
		d := DateOf(*p.BirthDate)
		o.BirthDate = &d
	}
	if p.IsActive != nil {
		o.IsActive = *p.IsActive
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the owner's fields and collects all errors.
func (o *Owner) Validate() error {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if o.FullName == "" {
		add("full_name", "required")
	} else if len([]rune(o.FullName)) > maxOwnerNameLength {
		add("full_name", fmt.Sprintf("max %d characters", maxOwnerNameLength))
	}
	if o.ExternalCode != nil && (*o.ExternalCode == "" || len(*o.ExternalCode) > maxExternalCodeLen) {
		add("external_code", fmt.Sprintf("must be 1..%d characters", maxExternalCodeLen))
	}
	if o.Email != nil {
		if _, err := mail.ParseAddress(*o.Email); err != nil {
			add("email", "invalid address")
		}
	}
	if o.Phone != nil && len(*o.Phone) > maxOwnerPhoneLength {
		add("phone", fmt.Sprintf("max %d characters", maxOwnerPhoneLength))
	}
	if o.State != nil && !IsAlphaCode(*o.State, 2) {
		add("state", "must be a 2-letter uppercase code")
	}
	if o.PostalCode != nil && len(*o.PostalCode) > maxPostalCodeLength {
		add("postal_code", fmt.Sprintf("max %d characters", maxPostalCodeLength))
	}
	if !IsAlphaCode(o.Country, 2) {
		add("country", "must be a 2-letter code")
	}
	if o.BirthDate != nil && o.BirthDate.After(time.Now()) {
		add("birth_date", "must be in the past")
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// SoftDelete marks the owner deleted and bumps the version.
func (o *Owner) SoftDelete(now time.Time) {
	now = now.UTC()
	o.DeletedAt = &now
	o.UpdatedAt = now
	o.Version++
}

// OwnerPatch carries the fields of a partial owner update. A nil field is
// left unchanged.
type OwnerPatch struct {
	ExternalCode *string
	FullName     *string
	Email        *string
	Phone        *string
	PhotoURL     *string
	BirthDate    *time.Time
	AddressLine  *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	IsActive     *bool
}

// Apply sets the supplied fields and returns the names of those that changed.
// The version is bumped once when anything changed.
func (o *Owner) Apply(p OwnerPatch, now time.Time) []string {
	cs := &changeSet{}

	setOptional(cs, "external_code", &o.ExternalCode, trimmed(p.ExternalCode))
	setValue(cs, "full_name", &o.FullName, trimmed(p.FullName))
	setOptional(cs, "email", &o.Email, lowerTrimmed(p.Email))
	setOptional(cs, "phone", &o.Phone, trimmed(p.Phone))
	setOptional(cs, "photo_url", &o.PhotoURL, trimmed(p.PhotoURL))
	if p.BirthDate != nil {
		d := DateOf(*p.BirthDate)
		if o.BirthDate == nil || !o.BirthDate.Equal(d) {
			var old any
			if o.BirthDate != nil {
				old = *o.BirthDate
			}
			cs.add("birth_date", old, d)
			o.BirthDate = &d
		}
	}
	setOptional(cs, "address_line", &o.AddressLine, trimmed(p.AddressLine))
	setOptional(cs, "city", &o.City, trimmed(p.City))
	setOptional(cs, "state", &o.State, codeOf(p.State))
	setOptional(cs, "postal_code", &o.PostalCode, trimmed(p.PostalCode))
	setValue(cs, "country", &o.Country, codeOf(p.Country))
	setValue(cs, "is_active", &o.IsActive, p.IsActive)

	if !cs.empty() {
		o.Version++
		o.UpdatedAt = now.UTC()
	}
	return cs.fields
}

// OwnerDetail is the single-owner read model.
type OwnerDetail struct {
	Owner         *Owner
	PropertyCount int
}

// OwnerSummary is the list read model of an owner.
type OwnerSummary struct {
	ID            uuid.UUID
	FullName      string
	Email         *string
	Phone         *string
	City          *string
	State         *string
	IsActive      bool
	PropertyCount int
	CreatedAt     time.Time
	Version       int64
}

func lowerTrimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeText(*s)
	return &v
}
