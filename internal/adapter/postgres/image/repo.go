// Package image implements the property image repository using PostgreSQL.
// The partial unique index uq_property_images_primary backs the single-primary
// rule, so callers demote before they promote or insert a new primary.
package image

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// Repo provides property image persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new image repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const imageColumns = `
    id, property_id, url, storage_provider, alt_text, is_primary,
    sort_order, enabled, version, created_at, deleted_at`

const insertSQL = `
INSERT INTO property_images (` + imageColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const listByPropertySQL = `
SELECT` + imageColumns + `
FROM property_images
WHERE property_id = $1 AND deleted_at IS NULL
ORDER BY is_primary DESC, sort_order, created_at, id`

const demoteSQL = `
UPDATE property_images
SET is_primary = false, version = version + 1
WHERE id = ANY($1::uuid[]) AND is_primary`

const promoteSQL = `
UPDATE property_images
SET is_primary = true, version = version + 1
WHERE id = $1 AND deleted_at IS NULL`

const softDeleteSQL = `
UPDATE property_images
SET deleted_at = $2, is_primary = false, version = version + 1
WHERE id = $1 AND deleted_at IS NULL`

const purgeDeletedSQL = `
DELETE FROM property_images
WHERE deleted_at IS NOT NULL AND deleted_at < $1`

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Insert stores a new image.
func (r *Repo) Insert(ctx context.Context, img domain.PropertyImage) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, insertSQL,
		img.ID, img.PropertyID, img.URL, string(img.StorageProvider), img.AltText, img.IsPrimary,
		img.SortOrder, img.Enabled, img.Version, img.CreatedAt, img.DeletedAt,
	)
	if err != nil {
		return postgres.MapError(err, "property_image", img.ID)
	}
	return nil
}

// Demote clears the primary flag on the given images.
func (r *Repo) Demote(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, demoteSQL, ids); err != nil {
		return postgres.MapError(err, "property_image", ids[0])
	}
	return nil
}

// Promote makes a visible image primary.
func (r *Repo) Promote(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, promoteSQL, id)
	if err != nil {
		return postgres.MapError(err, "property_image", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("property_image %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SoftDelete marks an image deleted at the given time and drops its primary flag.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, softDeleteSQL, id, at)
	if err != nil {
		return postgres.MapError(err, "property_image", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("property_image %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PurgeDeleted physically removes images soft-deleted before the cutoff and
// returns how many rows were removed.
func (r *Repo) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, purgeDeletedSQL, before)
	if err != nil {
		return 0, fmt.Errorf("purge deleted images: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// ListByProperty returns the non-deleted images of a property in display
// order. Disabled images are included.
func (r *Repo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyImage, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listByPropertySQL, propertyID)
	if err != nil {
		return nil, postgres.MapError(err, "property", propertyID)
	}
	defer rows.Close()

	images, err := scanImages(rows)
	if err != nil {
		return nil, postgres.MapError(err, "property", propertyID)
	}
	return images, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanImages(rows pgx.Rows) ([]domain.PropertyImage, error) {
	result := []domain.PropertyImage{}
	for rows.Next() {
		var (
			img      domain.PropertyImage
			provider string
		)
		err := rows.Scan(
			&img.ID, &img.PropertyID, &img.URL, &provider, &img.AltText, &img.IsPrimary,
			&img.SortOrder, &img.Enabled, &img.Version, &img.CreatedAt, &img.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan property image: %w", err)
		}
		img.StorageProvider = domain.StorageProvider(provider)
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
