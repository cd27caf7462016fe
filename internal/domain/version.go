package domain

import "github.com/google/uuid"

// CheckVersion compares the version token a caller last read with the current
// one. Tokens are compared for equality only.
func CheckVersion(entity string, id uuid.UUID, expected, actual int64) error {
	if expected != actual {
		return &VersionConflictError{Entity: entity, ID: id, Expected: expected, Actual: actual}
	}
	return nil
}
