package owner

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

const maxSearchLength = 200

// CreateOwnerInput holds the parameters for creating an owner. Field formats
// are checked by domain.NewOwner.
type CreateOwnerInput struct {
	domain.NewOwnerParams
}

// UpdateOwnerInput holds the parameters of a partial owner update.
type UpdateOwnerInput struct {
	OwnerID         uuid.UUID
	Patch           domain.OwnerPatch
	ExpectedVersion int64
}

// Validate checks all fields and collects all errors.
func (i UpdateOwnerInput) Validate() error {
	var errs []domain.FieldError
	if i.OwnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "owner_id", Message: "required"})
	}
	if i.ExpectedVersion < 1 {
		errs = append(errs, domain.FieldError{Field: "version", Message: "required"})
	}
	if i.Patch == (domain.OwnerPatch{}) {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field must be provided"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// DeleteOwnerInput holds the parameters for soft-deleting an owner.
type DeleteOwnerInput struct {
	OwnerID         uuid.UUID
	ExpectedVersion *int64
}

// Validate checks all fields and collects all errors.
func (i DeleteOwnerInput) Validate() error {
	var errs []domain.FieldError
	if i.OwnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "owner_id", Message: "required"})
	}
	if i.ExpectedVersion != nil && *i.ExpectedVersion < 1 {
		errs = append(errs, domain.FieldError{Field: "version", Message: "must be >= 1"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListOwnersInput holds the parameters of an owner list query. Nil Page and
// PageSize select the defaults.
type ListOwnersInput struct {
	Q        *string
	IsActive *bool
	Page     *int
	PageSize *int
}

// Validate checks the input against the default window limits.
func (i ListOwnersInput) Validate() error {
	_, err := i.filter(domain.DefaultPageSize, domain.MaxPageSize)
	return err
}

func (i ListOwnersInput) filter(defaultPageSize, maxPageSize int) (domain.OwnerFilter, error) {
	var errs []domain.FieldError

	f := domain.OwnerFilter{IsActive: i.IsActive}
	if i.Q != nil {
		if len([]rune(*i.Q)) > maxSearchLength {
			errs = append(errs, domain.FieldError{Field: "q", Message: fmt.Sprintf("max %d characters", maxSearchLength)})
		} else if q := domain.NormalizeSearch(*i.Q); q != "" {
			f.Q = &q
		}
	}

	window, windowErrs := domain.NewPageRequest(i.Page, i.PageSize, defaultPageSize, maxPageSize)
	f.PageRequest = window
	errs = append(errs, windowErrs...)

	if len(errs) > 0 {
		return domain.OwnerFilter{}, &domain.ValidationError{Errors: errs}
	}
	return f, nil
}
