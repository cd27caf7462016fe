package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// uniqueFields maps unique index names to the field they guard.
var uniqueFields = map[string]string{
	"uq_properties_code_internal": "code_internal",
	"uq_owners_email":             "email",
	"uq_owners_external_code":     "external_code",
	"uq_property_images_primary":  "is_primary",
}

// MapError converts pgx/pgconn errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			field, ok := uniqueFields[pgErr.ConstraintName]
			if !ok {
				return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
			}
			return fmt.Errorf("%s %s: %w", entity, id, &domain.ConflictError{Entity: entity, Field: field})
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
