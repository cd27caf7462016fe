package property

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/pkg/ctxutil"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

type testDeps struct {
	props  *mockPropertyRepo
	images *mockImageRepo
	traces *mockTraceRepo
	owners *mockOwnerRepo
	tx     *mockTxManager
	events *mockPublisher
}

func newTestDeps() *testDeps {
	return &testDeps{
		props:  &mockPropertyRepo{},
		images: &mockImageRepo{},
		traces: &mockTraceRepo{},
		owners: &mockOwnerRepo{},
		tx:     &mockTxManager{},
		events: &mockPublisher{},
	}
}

func newTestService(d *testDeps) *Service {
	svc := NewService(slog.Default(), d.props, d.images, d.traces, d.owners, d.tx, d.events,
		config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 100})
	svc.now = func() time.Time { return testNow }
	return svc
}

func validCreateParams(ownerID uuid.UUID) domain.NewPropertyParams {
	return domain.NewPropertyParams{
		OwnerID:      ownerID,
		CodeInternal: "SEA-0001",
		Name:         "Lake view house",
		Type:         domain.PropertyTypeHouse,
		Bedrooms:     3,
		Bathrooms:    dec("2.5"),
		BasePrice:    dec("400000"),
		TaxAmount:    dec("40000"),
		Address: domain.Address{
			Line1:      "100 Lake St",
			City:       "Seattle",
			State:      "WA",
			PostalCode: "98101",
		},
	}
}

// storedRecord returns a persisted-looking record at version 1.
func storedRecord(t *testing.T) domain.PropertyRecord {
	t.Helper()
	p, err := domain.NewProperty(validCreateParams(uuid.New()), testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	return p.Record()
}

// withStored makes GetByID return rec for its id.
func withStored(d *testDeps, rec domain.PropertyRecord) {
	d.props.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.PropertyRecord, error) {
		if id != rec.ID {
			return nil, domain.ErrNotFound
		}
		r := rec
		return &r, nil
	}
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %T: %v", err, err)
	for _, fe := range ve.Errors {
		if fe.Field == field {
			return
		}
	}
	t.Fatalf("expected error on field %q, got %v", field, ve.Errors)
}

// ---------------------------------------------------------------------------
// CreateProperty
// ---------------------------------------------------------------------------

func TestCreateProperty_Success(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)
	ctx := ctxutil.WithActor(context.Background(), "agent.smith")

	prop, err := svc.CreateProperty(ctx, CreatePropertyInput{validCreateParams(uuid.New())})
	require.NoError(t, err)

	rec := prop.Record()
	assert.True(t, rec.Price.Equal(dec("440000")))
	assert.Equal(t, int64(1), rec.Version)
	require.Len(t, d.props.created, 1)
	assert.Equal(t, rec.ID, d.props.created[0].ID)

	require.Len(t, d.traces.appended, 1)
	tr := d.traces.appended[0]
	assert.Equal(t, domain.TraceEventCreated, tr.EventType)
	require.NotNil(t, tr.ActorName)
	assert.Equal(t, "agent.smith", *tr.ActorName)

	assert.Len(t, d.events.published, 1, "committed trace must be published")
}

func TestCreateProperty_UnknownOwner(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	d.owners.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
		return nil, domain.ErrNotFound
	}
	svc := newTestService(d)

	_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{validCreateParams(uuid.New())})
	requireFieldError(t, err, "owner_id")
	assert.Empty(t, d.props.created)
	assert.Empty(t, d.events.published)
}

func TestCreateProperty_InvalidPricing(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)

	params := validCreateParams(uuid.New())
	params.BasePrice = dec("-1")
	params.CodeInternal = ""

	_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{params})
	requireFieldError(t, err, "base_price")
	requireFieldError(t, err, "code_internal")
	assert.Zero(t, d.tx.calls, "validation must fail before any storage access")
}

func TestCreateProperty_DuplicateCode(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	d.props.CreateFunc = func(ctx context.Context, rec domain.PropertyRecord) error {
		return &domain.ConflictError{Entity: "property", Field: "code_internal"}
	}
	svc := newTestService(d)

	_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{validCreateParams(uuid.New())})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "code_internal", ce.Field)
	assert.Empty(t, d.traces.appended)
}

// ---------------------------------------------------------------------------
// ChangePrice
// ---------------------------------------------------------------------------

func TestChangePrice_Scenario(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	res, err := svc.ChangePrice(context.Background(), ChangePriceInput{
		PropertyID:      rec.ID,
		BasePrice:       dec("420000"),
		TaxAmount:       dec("42000"),
		ActorName:       ptr("broker"),
		ExpectedVersion: 1,
	})
	require.NoError(t, err)

	assert.True(t, res.OldPrice.Equal(dec("440000")))
	assert.True(t, res.NewPrice.Equal(dec("462000")))
	assert.Equal(t, int64(2), res.Property.Version)

	require.Len(t, d.props.updated, 1)
	assert.Equal(t, int64(1), d.props.updated[0].Expected)
	assert.True(t, d.props.updated[0].Rec.Price.Equal(dec("462000")))

	require.Len(t, d.traces.appended, 1)
	tr := d.traces.appended[0]
	assert.Equal(t, domain.TraceEventPriceChange, tr.EventType)
	assert.True(t, tr.OldTotal.Equal(dec("440000")))
	assert.True(t, tr.NewTotal.Equal(dec("462000")))
	assert.Equal(t, "broker", *tr.ActorName)
}

func TestChangePrice_StaleVersion(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	rec.Version = 4
	withStored(d, rec)
	svc := newTestService(d)

	_, err := svc.ChangePrice(context.Background(), ChangePriceInput{
		PropertyID:      rec.ID,
		BasePrice:       dec("1"),
		TaxAmount:       dec("1"),
		ExpectedVersion: 3,
	})
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	var vc *domain.VersionConflictError
	require.ErrorAs(t, err, &vc)
	assert.Equal(t, int64(3), vc.Expected)
	assert.Equal(t, int64(4), vc.Actual)
	assert.Empty(t, d.props.updated)
	assert.Empty(t, d.traces.appended)
}

func TestChangePrice_ConflictAtWrite(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	d.props.UpdateFunc = func(ctx context.Context, r domain.PropertyRecord, expected int64) error {
		return &domain.VersionConflictError{Entity: "property", ID: r.ID, Expected: expected, Actual: expected + 1}
	}
	svc := newTestService(d)

	_, err := svc.ChangePrice(context.Background(), ChangePriceInput{
		PropertyID: rec.ID, BasePrice: dec("1"), TaxAmount: dec("0"), ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Empty(t, d.traces.appended)
	assert.Empty(t, d.events.published)
}

func TestChangePrice_NotFound(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)

	_, err := svc.ChangePrice(context.Background(), ChangePriceInput{
		PropertyID: uuid.New(), BasePrice: dec("1"), TaxAmount: dec("1"), ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangePrice_Validation(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)

	_, err := svc.ChangePrice(context.Background(), ChangePriceInput{
		PropertyID: uuid.New(), BasePrice: dec("-5"), TaxAmount: dec("1"),
	})
	requireFieldError(t, err, "base_price")
	requireFieldError(t, err, "version")
	assert.Zero(t, d.tx.calls)
}

// ---------------------------------------------------------------------------
// UpdateProperty
// ---------------------------------------------------------------------------

func TestUpdateProperty_NoOp(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	detail, err := svc.UpdateProperty(context.Background(), UpdatePropertyInput{
		PropertyID:      rec.ID,
		Patch:           domain.PropertyPatch{Name: ptr(rec.Name), Bedrooms: ptr(rec.Bedrooms)},
		BasePrice:       ptr(rec.BasePrice),
		ExpectedVersion: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), detail.Property.Version)
	assert.Empty(t, d.props.updated, "no-op must not write")
	assert.Empty(t, d.traces.appended, "no-op must not trace")
	assert.Empty(t, d.events.published)
}

func TestUpdateProperty_PriceAndFields(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	_, err := svc.UpdateProperty(context.Background(), UpdatePropertyInput{
		PropertyID:      rec.ID,
		Patch:           domain.PropertyPatch{Name: ptr("Renamed"), Bedrooms: ptr(4)},
		TaxAmount:       ptr(dec("50000")),
		ExpectedVersion: 1,
	})
	require.NoError(t, err)

	require.Len(t, d.props.updated, 1, "one row write for the whole request")
	written := d.props.updated[0]
	assert.Equal(t, int64(1), written.Expected)
	assert.Equal(t, int64(3), written.Rec.Version)
	assert.True(t, written.Rec.Price.Equal(dec("450000")))
	assert.Equal(t, "Renamed", written.Rec.Name)

	require.Len(t, d.traces.appended, 2)
	assert.Equal(t, domain.TraceEventPriceChange, d.traces.appended[0].EventType)
	assert.Equal(t, domain.TraceEventUpdated, d.traces.appended[1].EventType)
	assert.Contains(t, d.traces.appended[1].Notes, "bedrooms: 3 -> 4")
}

func TestUpdateProperty_UnknownNewOwner(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	d.owners.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
		return nil, domain.ErrNotFound
	}
	svc := newTestService(d)

	_, err := svc.UpdateProperty(context.Background(), UpdatePropertyInput{
		PropertyID:      rec.ID,
		Patch:           domain.PropertyPatch{OwnerID: ptr(uuid.New())},
		ExpectedVersion: 1,
	})
	requireFieldError(t, err, "owner_id")
	assert.Empty(t, d.props.updated)
}

func TestUpdateProperty_EmptyInput(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)

	_, err := svc.UpdateProperty(context.Background(), UpdatePropertyInput{PropertyID: uuid.New(), ExpectedVersion: 1})
	requireFieldError(t, err, "input")
	assert.Zero(t, d.tx.calls)
}

// ---------------------------------------------------------------------------
// Images
// ---------------------------------------------------------------------------

func TestAddImage_FirstImageIsPrimary(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	img, err := svc.AddImage(context.Background(), AddImageInput{
		PropertyID: rec.ID,
		Image:      domain.NewImageParams{URL: "https://cdn/1.jpg", StorageProvider: domain.StorageProviderS3},
	})
	require.NoError(t, err)

	assert.True(t, img.IsPrimary)
	assert.Equal(t, []string{"insert"}, d.images.calls)
	require.Len(t, d.props.updated, 1)
	assert.Equal(t, int64(2), d.props.updated[0].Rec.Version, "adding an image bumps the version")
	require.Len(t, d.traces.appended, 1)
	assert.Equal(t, domain.TraceEventUpdated, d.traces.appended[0].EventType)
}

func TestAddImage_NewPrimaryDemotesFirst(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	existing := domain.PropertyImage{
		ID: uuid.New(), PropertyID: rec.ID, URL: "https://cdn/0.jpg",
		StorageProvider: domain.StorageProviderS3, IsPrimary: true, Enabled: true, Version: 1, CreatedAt: testNow,
	}
	d.images.ListByPropertyFunc = func(ctx context.Context, id uuid.UUID) ([]domain.PropertyImage, error) {
		return []domain.PropertyImage{existing}, nil
	}
	svc := newTestService(d)

	img, err := svc.AddImage(context.Background(), AddImageInput{
		PropertyID: rec.ID,
		Image:      domain.NewImageParams{URL: "https://cdn/1.jpg", StorageProvider: domain.StorageProviderS3, IsPrimary: true},
	})
	require.NoError(t, err)

	assert.True(t, img.IsPrimary)
	assert.Equal(t, []string{"demote", "insert"}, d.images.calls)
	assert.Equal(t, []uuid.UUID{existing.ID}, d.images.demoted)
}

func TestAddImage_StaleOptionalVersion(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	_, err := svc.AddImage(context.Background(), AddImageInput{
		PropertyID:      rec.ID,
		Image:           domain.NewImageParams{URL: "https://cdn/1.jpg", StorageProvider: domain.StorageProviderS3},
		ExpectedVersion: ptr(int64(7)),
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Empty(t, d.images.calls)
}

func TestAddImage_InvalidProvider(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	_, err := svc.AddImage(context.Background(), AddImageInput{
		PropertyID: rec.ID,
		Image:      domain.NewImageParams{URL: "https://cdn/1.jpg", StorageProvider: "FTP"},
	})
	requireFieldError(t, err, "storage_provider")
	assert.Empty(t, d.props.updated)
}

func TestRemoveImage_PromotesNext(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	primary := domain.PropertyImage{ID: uuid.New(), PropertyID: rec.ID, IsPrimary: true, Enabled: true, CreatedAt: testNow}
	second := domain.PropertyImage{ID: uuid.New(), PropertyID: rec.ID, SortOrder: 1, Enabled: true, CreatedAt: testNow}
	d.images.ListByPropertyFunc = func(ctx context.Context, id uuid.UUID) ([]domain.PropertyImage, error) {
		return []domain.PropertyImage{primary, second}, nil
	}
	svc := newTestService(d)

	err := svc.RemoveImage(context.Background(), RemoveImageInput{PropertyID: rec.ID, ImageID: primary.ID})
	require.NoError(t, err)

	assert.Equal(t, []string{"delete", "promote"}, d.images.calls)
	assert.Equal(t, []uuid.UUID{second.ID}, d.images.promoted)
}

func TestRemoveImage_UnknownImage(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	err := svc.RemoveImage(context.Background(), RemoveImageInput{PropertyID: rec.ID, ImageID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, d.props.updated)
}

// ---------------------------------------------------------------------------
// DeleteProperty
// ---------------------------------------------------------------------------

func TestDeleteProperty_Success(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	require.NoError(t, svc.DeleteProperty(context.Background(), DeletePropertyInput{PropertyID: rec.ID}))

	require.Len(t, d.props.updated, 1)
	written := d.props.updated[0].Rec
	require.NotNil(t, written.DeletedAt)
	assert.Equal(t, int64(2), written.Version)
	require.Len(t, d.traces.appended, 1)
	assert.Equal(t, domain.TraceEventDeleted, d.traces.appended[0].EventType)
}

func TestDeleteProperty_NotFound(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)

	err := svc.DeleteProperty(context.Background(), DeletePropertyInput{PropertyID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// ListProperties
// ---------------------------------------------------------------------------

func TestListProperties_Defaults(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	d.props.ListFunc = func(ctx context.Context, f domain.PropertyFilter) ([]domain.PropertySummary, int, error) {
		return []domain.PropertySummary{{ID: uuid.New()}}, 37, nil
	}
	svc := newTestService(d)

	page, err := svc.ListProperties(context.Background(), ListPropertiesInput{
		Q:             ptr("  Lake VIEW "),
		PropertyTypes: []string{"house", "CONDO"},
	})
	require.NoError(t, err)

	require.Len(t, d.props.listed, 1)
	f := d.props.listed[0]
	assert.Equal(t, "Lake VIEW", *f.Q)
	assert.Equal(t, []domain.PropertyType{domain.PropertyTypeHouse, domain.PropertyTypeCondo}, f.PropertyTypes)
	assert.Equal(t, domain.SortByName, f.SortBy)
	assert.Equal(t, domain.SortAsc, f.SortDir)
	assert.Equal(t, domain.PageRequest{Page: 1, PageSize: 20}, f.PageRequest)

	assert.Equal(t, 37, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPreviousPage)
}

func TestListProperties_SearchTermNotFolded(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)

	_, err := svc.ListProperties(context.Background(), ListPropertiesInput{Q: ptr(" Hauptstraße   12 ")})
	require.NoError(t, err)

	require.Len(t, d.props.listed, 1)
	assert.Equal(t, "Hauptstraße 12", *d.props.listed[0].Q)
}

func TestListProperties_RejectedBeforeStorage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input ListPropertiesInput
		field string
	}{
		{"unknown sort key", ListPropertiesInput{SortBy: "owner"}, "sort_by"},
		{"bad direction", ListPropertiesInput{SortDir: "sideways"}, "sort_dir"},
		{"page size too large", ListPropertiesInput{PageSize: ptr(101)}, "page_size"},
		{"zero page size", ListPropertiesInput{PageSize: ptr(0)}, "page_size"},
		{"negative page size", ListPropertiesInput{PageSize: ptr(-1)}, "page_size"},
		{"zero page", ListPropertiesInput{Page: ptr(0)}, "page"},
		{"negative page", ListPropertiesInput{Page: ptr(-2)}, "page"},
		{"inverted price", ListPropertiesInput{MinPrice: ptr(dec("200")), MaxPrice: ptr(dec("100"))}, "max_price"},
		{"inverted year", ListPropertiesInput{MinYear: ptr(2000), MaxYear: ptr(1990)}, "max_year"},
		{"bedrooms out of range", ListPropertiesInput{MinBedrooms: ptr(51)}, "min_bedrooms"},
		{"inverted bathrooms", ListPropertiesInput{MinBathrooms: ptr(dec("3")), MaxBathrooms: ptr(dec("1"))}, "max_bathrooms"},
		{"zero area", ListPropertiesInput{MinArea: ptr(0)}, "min_area"},
		{"unknown type", ListPropertiesInput{PropertyTypes: []string{"CASTLE"}}, "property_type"},
		{"unknown status", ListPropertiesInput{ListingStatuses: []string{"GONE"}}, "listing_status"},
		{"bad state", ListPropertiesInput{State: ptr("Washington")}, "state"},
		{"latitude out of range", ListPropertiesInput{LatMin: ptr(-91.0)}, "lat_min"},
		{"inverted longitude", ListPropertiesInput{LngMin: ptr(10.0), LngMax: ptr(-10.0)}, "lng_max"},
		{"bad geohash", ListPropertiesInput{GeohashPrefix: ptr("c2a")}, "geohash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newTestDeps()
			svc := newTestService(d)

			_, err := svc.ListProperties(context.Background(), tt.input)
			requireFieldError(t, err, tt.field)
			assert.Empty(t, d.props.listed, "storage must not be queried")
		})
	}
}

func TestListProperties_ConfiguredMaxPageSize(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := NewService(slog.Default(), d.props, d.images, d.traces, d.owners, d.tx, d.events,
		config.ListingConfig{DefaultPageSize: 10, MaxPageSize: 50})

	_, err := svc.ListProperties(context.Background(), ListPropertiesInput{PageSize: ptr(60)})
	requireFieldError(t, err, "page_size")

	_, err = svc.ListProperties(context.Background(), ListPropertiesInput{})
	require.NoError(t, err)
	assert.Equal(t, 10, d.props.listed[0].PageSize)
}

func TestListProperties_BeyondLastPage(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	d.props.ListFunc = func(ctx context.Context, f domain.PropertyFilter) ([]domain.PropertySummary, int, error) {
		return nil, 37, nil
	}
	svc := newTestService(d)

	page, err := svc.ListProperties(context.Background(), ListPropertiesInput{Page: ptr(5), PageSize: ptr(10)})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 4, page.TotalPages)
	assert.False(t, page.HasNextPage)
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestGetPropertyDetail(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	a := domain.PropertyImage{ID: uuid.New(), SortOrder: 2, Enabled: true, CreatedAt: testNow}
	b := domain.PropertyImage{ID: uuid.New(), SortOrder: 5, IsPrimary: true, Enabled: true, CreatedAt: testNow}
	d.images.ListByPropertyFunc = func(ctx context.Context, id uuid.UUID) ([]domain.PropertyImage, error) {
		return []domain.PropertyImage{a, b}, nil
	}
	newTotal := dec("462000")
	d.traces.LastByTypeFunc = func(ctx context.Context, id uuid.UUID, et domain.TraceEventType) (*domain.PropertyTrace, error) {
		assert.Equal(t, domain.TraceEventPriceChange, et)
		return &domain.PropertyTrace{EventType: et, EventDate: testNow, NewTotal: &newTotal}, nil
	}
	d.traces.CountByPropertyFunc = func(ctx context.Context, id uuid.UUID) (int, error) { return 3, nil }
	svc := newTestService(d)

	detail, err := svc.GetPropertyDetail(context.Background(), rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, detail.Property.ID)
	assert.Equal(t, "Jane Roe", detail.OwnerFullName)
	assert.Equal(t, 3, detail.TraceCount)
	require.Len(t, detail.Images, 2)
	assert.Equal(t, b.ID, detail.Images[0].ID, "primary image first")
	require.NotNil(t, detail.LastPriceChange)
	assert.True(t, detail.LastPriceChange.NewTotal.Equal(newTotal))
}

func TestGetPropertyDetail_NoPriceChange(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	svc := newTestService(d)

	detail, err := svc.GetPropertyDetail(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.LastPriceChange)
	assert.NotNil(t, detail.Images)
}

func TestGetPropertyDetail_NotFound(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	svc := newTestService(d)

	_, err := svc.GetPropertyDetail(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListTraces(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	rec := storedRecord(t)
	withStored(d, rec)
	d.traces.ListByPropertyFunc = func(ctx context.Context, id uuid.UUID) ([]domain.PropertyTrace, error) {
		return []domain.PropertyTrace{{EventType: domain.TraceEventCreated}, {EventType: domain.TraceEventPriceChange}}, nil
	}
	svc := newTestService(d)

	traces, err := svc.ListTraces(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Len(t, traces, 2)

	_, err = svc.ListTraces(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()

	d := newTestDeps()
	d.events.Err = errors.New("broker down")
	svc := newTestService(d)

	_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{validCreateParams(uuid.New())})
	require.NoError(t, err)
	assert.Len(t, d.props.created, 1)
}
