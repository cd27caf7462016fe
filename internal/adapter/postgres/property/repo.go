// Package property implements the property repository using PostgreSQL.
// Writes go through a version compare-and-swap; list queries are built with
// squirrel and scanned with pgxscan.
package property

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mmcloughlin/geohash"

	postgres "github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// geohashPrecision yields cells of roughly 5 x 5 meters.
const geohashPrecision = 9

// Repo provides property persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new property repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const propertyColumns = `
    id, owner_id, code_internal, name, description, property_type, year_built,
    bedrooms, bathrooms, parking_spaces, area_sqft, lot_size_sqft,
    base_price, tax_amount, price, currency, hoa_fee,
    address_line1, address_line2, city, state, postal_code, country, lat, lng,
    listing_status, listing_date, last_sold_price, is_featured, is_published,
    created_at, updated_at, deleted_at, version`

// Columns $3..$35 are shared by insert and update; see writeArgs.
const insertSQL = `
INSERT INTO properties (
    id, created_at,
    owner_id, code_internal, name, description, property_type, year_built,
    bedrooms, bathrooms, parking_spaces, area_sqft, lot_size_sqft,
    base_price, tax_amount, price, currency, hoa_fee,
    address_line1, address_line2, city, state, postal_code, country, lat, lng, geohash,
    listing_status, listing_date, last_sold_price, is_featured, is_published,
    updated_at, deleted_at, version
) VALUES (
    $1, $2,
    $3, $4, $5, $6, $7, $8,
    $9, $10, $11, $12, $13,
    $14, $15, $16, $17, $18,
    $19, $20, $21, $22, $23, $24, $25, $26, $27,
    $28, $29, $30, $31, $32,
    $33, $34, $35
)`

const updateSQL = `
UPDATE properties SET
    owner_id = $3, code_internal = $4, name = $5, description = $6,
    property_type = $7, year_built = $8,
    bedrooms = $9, bathrooms = $10, parking_spaces = $11, area_sqft = $12, lot_size_sqft = $13,
    base_price = $14, tax_amount = $15, price = $16, currency = $17, hoa_fee = $18,
    address_line1 = $19, address_line2 = $20, city = $21, state = $22, postal_code = $23,
    country = $24, lat = $25, lng = $26, geohash = $27,
    listing_status = $28, listing_date = $29, last_sold_price = $30,
    is_featured = $31, is_published = $32,
    updated_at = $33, deleted_at = $34, version = $35
WHERE id = $1 AND version = $2 AND deleted_at IS NULL`

const getByIDSQL = `
SELECT` + propertyColumns + `
FROM properties
WHERE id = $1 AND deleted_at IS NULL`

const versionSQL = `
SELECT version, deleted_at IS NOT NULL
FROM properties
WHERE id = $1`

const countByOwnerSQL = `
SELECT count(*)
FROM properties
WHERE owner_id = $1 AND deleted_at IS NULL`

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Create inserts a new property row.
func (r *Repo) Create(ctx context.Context, rec domain.PropertyRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	args := append([]any{rec.ID, rec.CreatedAt}, writeArgs(rec)...)
	if _, err := q.Exec(ctx, insertSQL, args...); err != nil {
		return postgres.MapError(err, "property", rec.ID)
	}
	return nil
}

// Update writes rec over the row whose version is still expectedVersion.
// A zero-row update is resolved by re-reading the row: a missing or deleted
// row yields ErrNotFound, anything else a *domain.VersionConflictError.
func (r *Repo) Update(ctx context.Context, rec domain.PropertyRecord, expectedVersion int64) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	args := append([]any{rec.ID, expectedVersion}, writeArgs(rec)...)
	tag, err := q.Exec(ctx, updateSQL, args...)
	if err != nil {
		return postgres.MapError(err, "property", rec.ID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var (
		actual  int64
		deleted bool
	)
	err = q.QueryRow(ctx, versionSQL, rec.ID).Scan(&actual, &deleted)
	if err != nil {
		return postgres.MapError(err, "property", rec.ID)
	}
	if deleted {
		return fmt.Errorf("property %s: %w", rec.ID, domain.ErrNotFound)
	}
	return &domain.VersionConflictError{Entity: "property", ID: rec.ID, Expected: expectedVersion, Actual: actual}
}

func writeArgs(rec domain.PropertyRecord) []any {
	a := rec.Address
	return []any{
		rec.OwnerID, rec.CodeInternal, rec.Name, rec.Description, string(rec.Type), rec.YearBuilt,
		rec.Bedrooms, rec.Bathrooms, rec.ParkingSpaces, rec.AreaSqft, rec.LotSizeSqft,
		rec.BasePrice, rec.TaxAmount, rec.Price, rec.Currency, rec.HOAFee,
		a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, rec.Lat, rec.Lng, geohashOf(rec.Lat, rec.Lng),
		string(rec.ListingStatus), rec.ListingDate, rec.LastSoldPrice, rec.IsFeatured, rec.IsPublished,
		rec.UpdatedAt, rec.DeletedAt, rec.Version,
	}
}

func geohashOf(lat, lng *float64) *string {
	if lat == nil || lng == nil {
		return nil
	}
	h := geohash.EncodeWithPrecision(*lat, *lng, geohashPrecision)
	return &h
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// GetByID returns a visible property. Soft-deleted rows are reported as ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PropertyRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "property", id)
	}
	return rec, nil
}

// CountByOwner returns the number of visible properties that reference ownerID.
func (r *Repo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var n int
	if err := q.QueryRow(ctx, countByOwnerSQL, ownerID).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "owner", ownerID)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*domain.PropertyRecord, error) {
	var (
		rec           domain.PropertyRecord
		propertyType  string
		listingStatus string
	)
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.CodeInternal, &rec.Name, &rec.Description, &propertyType, &rec.YearBuilt,
		&rec.Bedrooms, &rec.Bathrooms, &rec.ParkingSpaces, &rec.AreaSqft, &rec.LotSizeSqft,
		&rec.BasePrice, &rec.TaxAmount, &rec.Price, &rec.Currency, &rec.HOAFee,
		&rec.Address.Line1, &rec.Address.Line2, &rec.Address.City, &rec.Address.State,
		&rec.Address.PostalCode, &rec.Address.Country, &rec.Lat, &rec.Lng,
		&listingStatus, &rec.ListingDate, &rec.LastSoldPrice, &rec.IsFeatured, &rec.IsPublished,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt, &rec.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("scan property: %w", err)
	}
	rec.Type = domain.PropertyType(propertyType)
	rec.ListingStatus = domain.ListingStatus(listingStatus)
	return &rec, nil
}
