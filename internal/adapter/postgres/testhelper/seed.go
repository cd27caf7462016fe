package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmcloughlin/geohash"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// Now returns the current UTC time truncated to the precision PostgreSQL stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SeedOwner creates an active owner with a unique email.
func SeedOwner(t *testing.T, pool *pgxpool.Pool) domain.Owner {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := Now()
	email := "owner-" + suffix + "@example.com"
	owner := domain.Owner{
		ID:        uuid.New(),
		FullName:  "Test Owner " + suffix,
		Email:     &email,
		Country:   "US",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO owners (id, full_name, email, country, is_active, created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		owner.ID, owner.FullName, owner.Email, owner.Country, owner.IsActive, owner.CreatedAt, owner.UpdatedAt, owner.Version,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedOwner: %v", err)
	}
	return owner
}

// PropertyParams returns valid parameters for a property owned by ownerID.
func PropertyParams(ownerID uuid.UUID) domain.NewPropertyParams {
	suffix := uniqueSuffix()
	return domain.NewPropertyParams{
		OwnerID:      ownerID,
		CodeInternal: "TST-" + suffix,
		Name:         "Test Property " + suffix,
		Type:         domain.PropertyTypeHouse,
		Bedrooms:     3,
		Bathrooms:    decimal.RequireFromString("2"),
		BasePrice:    decimal.RequireFromString("400000"),
		TaxAmount:    decimal.RequireFromString("40000"),
		Address: domain.Address{
			Line1:      "1 Main St",
			City:       "Austin",
			State:      "TX",
			PostalCode: "78701",
		},
	}
}

// SeedProperty creates a visible property. Each mutator may adjust the
// parameters before the property is built.
func SeedProperty(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, mutators ...func(*domain.NewPropertyParams)) domain.PropertyRecord {
	t.Helper()
	ctx := context.Background()

	params := PropertyParams(ownerID)
	for _, m := range mutators {
		m(&params)
	}

	prop, err := domain.NewProperty(params, Now())
	if err != nil {
		t.Fatalf("testhelper: SeedProperty build: %v", err)
	}
	rec := prop.Record()

	var hash *string
	if rec.Lat != nil && rec.Lng != nil {
		h := geohash.EncodeWithPrecision(*rec.Lat, *rec.Lng, 9)
		hash = &h
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO properties (
		     id, owner_id, code_internal, name, description, property_type, year_built,
		     bedrooms, bathrooms, area_sqft, base_price, tax_amount, price,
		     address_line1, city, state, postal_code, lat, lng, geohash,
		     listing_status, listing_date, is_featured, is_published, created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		         $21, $22, $23, $24, $25, $26, $27)`,
		rec.ID, rec.OwnerID, rec.CodeInternal, rec.Name, rec.Description, string(rec.Type), rec.YearBuilt,
		rec.Bedrooms, rec.Bathrooms, rec.AreaSqft, rec.BasePrice, rec.TaxAmount, rec.Price,
		rec.Address.Line1, rec.Address.City, rec.Address.State, rec.Address.PostalCode, rec.Lat, rec.Lng, hash,
		string(rec.ListingStatus), rec.ListingDate, rec.IsFeatured, rec.IsPublished, rec.CreatedAt, rec.UpdatedAt, rec.Version,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProperty insert: %v", err)
	}
	return rec
}

// SeedImage attaches an enabled image to a property.
func SeedImage(t *testing.T, pool *pgxpool.Pool, propertyID uuid.UUID, primary bool, sortOrder int) domain.PropertyImage {
	t.Helper()
	ctx := context.Background()

	img := domain.PropertyImage{
		ID:              uuid.New(),
		PropertyID:      propertyID,
		URL:             "https://img.example.com/" + uniqueSuffix() + ".jpg",
		StorageProvider: domain.StorageProviderS3,
		IsPrimary:       primary,
		SortOrder:       sortOrder,
		Enabled:         true,
		Version:         1,
		CreatedAt:       Now(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO property_images (id, property_id, url, storage_provider, is_primary, sort_order, enabled, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		img.ID, img.PropertyID, img.URL, string(img.StorageProvider), img.IsPrimary, img.SortOrder, img.Enabled, img.Version, img.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedImage: %v", err)
	}
	return img
}
