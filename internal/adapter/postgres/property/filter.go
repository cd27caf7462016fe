package property

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	postgres "github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// sortColumns is the closed mapping from sort key to SQL expression. Keys
// absent here can never reach the ORDER BY clause.
var sortColumns = map[domain.SortKey]string{
	domain.SortByName:        "p.name",
	domain.SortByPrice:       "p.price",
	domain.SortByListingDate: "p.listing_date",
	domain.SortByYearBuilt:   "p.year_built",
	domain.SortByAreaSqft:    "p.area_sqft",
	domain.SortByBedrooms:    "p.bedrooms",
	domain.SortByBathrooms:   "p.bathrooms",
	domain.SortByCreatedAt:   "p.created_at",
	domain.SortByUpdatedAt:   "p.updated_at",
}

// summaryRow is the scan target of the list query.
type summaryRow struct {
	ID              uuid.UUID       `db:"id"`
	Name            string          `db:"name"`
	CodeInternal    string          `db:"code_internal"`
	City            string          `db:"city"`
	State           string          `db:"state"`
	PostalCode      string          `db:"postal_code"`
	Price           decimal.Decimal `db:"price"`
	Currency        string          `db:"currency"`
	PropertyType    string          `db:"property_type"`
	YearBuilt       *int            `db:"year_built"`
	Bedrooms        int             `db:"bedrooms"`
	Bathrooms       decimal.Decimal `db:"bathrooms"`
	AreaSqft        *int            `db:"area_sqft"`
	ListingStatus   string          `db:"listing_status"`
	ListingDate     time.Time       `db:"listing_date"`
	PrimaryImageURL *string         `db:"primary_image_url"`
	OwnerFullName   string          `db:"owner_full_name"`
	IsFeatured      bool            `db:"is_featured"`
	IsPublished     bool            `db:"is_published"`
	Version         int64           `db:"version"`
}

func (r summaryRow) toDomain() domain.PropertySummary {
	return domain.PropertySummary{
		ID:              r.ID,
		Name:            r.Name,
		CodeInternal:    r.CodeInternal,
		City:            r.City,
		State:           r.State,
		PostalCode:      r.PostalCode,
		Price:           r.Price,
		Currency:        r.Currency,
		Type:            domain.PropertyType(r.PropertyType),
		YearBuilt:       r.YearBuilt,
		Bedrooms:        r.Bedrooms,
		Bathrooms:       r.Bathrooms,
		AreaSqft:        r.AreaSqft,
		ListingStatus:   domain.ListingStatus(r.ListingStatus),
		ListingDate:     r.ListingDate,
		PrimaryImageURL: r.PrimaryImageURL,
		OwnerFullName:   r.OwnerFullName,
		IsFeatured:      r.IsFeatured,
		IsPublished:     r.IsPublished,
		Version:         r.Version,
	}
}

// List returns one page of visible properties matching f, plus the total number
// of matching rows. f must already be validated: an unknown sort key is an error.
func (r *Repo) List(ctx context.Context, f domain.PropertyFilter) ([]domain.PropertySummary, int, error) {
	sortCol, ok := sortColumns[f.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("list properties: unknown sort key %q", f.SortBy)
	}
	dir := "ASC"
	if f.SortDir == domain.SortDesc {
		dir = "DESC"
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	countSQL, countArgs, err := applyFilter(psql.Select("count(*)").From("properties p"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}
	if total == 0 || f.Offset() >= total {
		return []domain.PropertySummary{}, total, nil
	}

	listQuery := applyFilter(
		psql.Select(
			"p.id", "p.name", "p.code_internal", "p.city", "p.state", "p.postal_code",
			"p.price", "p.currency", "p.property_type", "p.year_built", "p.bedrooms",
			"p.bathrooms", "p.area_sqft", "p.listing_status", "p.listing_date",
			"img.url AS primary_image_url", "o.full_name AS owner_full_name",
			"p.is_featured", "p.is_published", "p.version",
		).
			From("properties p").
			Join("owners o ON o.id = p.owner_id").
			LeftJoin(`LATERAL (
                SELECT i.url FROM property_images i
                WHERE i.property_id = p.id AND i.enabled AND i.deleted_at IS NULL
                ORDER BY i.is_primary DESC, i.sort_order, i.created_at, i.id
                LIMIT 1
            ) img ON true`),
		f,
	).
		OrderBy(fmt.Sprintf("%s %s NULLS LAST", sortCol, dir), "p.id ASC").
		Limit(uint64(f.PageSize)).
		Offset(uint64(f.Offset()))

	listSQL, listArgs, err := listQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	var rows []summaryRow
	if err := pgxscan.Select(ctx, q, &rows, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}

	items := make([]domain.PropertySummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, total, nil
}

// applyFilter adds the visible-row predicate and every supplied filter.
func applyFilter(b sq.SelectBuilder, f domain.PropertyFilter) sq.SelectBuilder {
	b = b.Where("p.deleted_at IS NULL")

	if f.Q != nil && *f.Q != "" {
		like := "%" + escapeLike(*f.Q) + "%"
		b = b.Where(sq.Or{
			sq.ILike{"p.name": like},
			sq.ILike{"p.description": like},
			sq.ILike{"p.address_line1": like},
			sq.ILike{"p.city": like},
			sq.ILike{"p.state": like},
			sq.ILike{"p.postal_code": like},
			sq.ILike{"p.code_internal": like},
		})
	}
	if f.OwnerID != nil {
		b = b.Where(sq.Eq{"p.owner_id": *f.OwnerID})
	}

	if f.MinPrice != nil {
		b = b.Where(sq.GtOrEq{"p.price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		b = b.Where(sq.LtOrEq{"p.price": *f.MaxPrice})
	}
	if f.MinYear != nil {
		b = b.Where(sq.GtOrEq{"p.year_built": *f.MinYear})
	}
	if f.MaxYear != nil {
		b = b.Where(sq.LtOrEq{"p.year_built": *f.MaxYear})
	}
	if f.MinBedrooms != nil {
		b = b.Where(sq.GtOrEq{"p.bedrooms": *f.MinBedrooms})
	}
	if f.MaxBedrooms != nil {
		b = b.Where(sq.LtOrEq{"p.bedrooms": *f.MaxBedrooms})
	}
	if f.MinBathrooms != nil {
		b = b.Where(sq.GtOrEq{"p.bathrooms": *f.MinBathrooms})
	}
	if f.MaxBathrooms != nil {
		b = b.Where(sq.LtOrEq{"p.bathrooms": *f.MaxBathrooms})
	}
	if f.MinArea != nil {
		b = b.Where(sq.GtOrEq{"p.area_sqft": *f.MinArea})
	}
	if f.MaxArea != nil {
		b = b.Where(sq.LtOrEq{"p.area_sqft": *f.MaxArea})
	}

	if len(f.PropertyTypes) > 0 {
		types := make([]string, len(f.PropertyTypes))
		for i, t := range f.PropertyTypes {
			types[i] = string(t)
		}
		b = b.Where(sq.Eq{"p.property_type": types})
	}
	if len(f.ListingStatuses) > 0 {
		statuses := make([]string, len(f.ListingStatuses))
		for i, s := range f.ListingStatuses {
			statuses[i] = string(s)
		}
		b = b.Where(sq.Eq{"p.listing_status": statuses})
	}

	if f.IsFeatured != nil {
		b = b.Where(sq.Eq{"p.is_featured": *f.IsFeatured})
	}
	if f.IsPublished != nil {
		b = b.Where(sq.Eq{"p.is_published": *f.IsPublished})
	}

	if f.State != nil {
		b = b.Where(sq.Eq{"p.state": *f.State})
	}
	if f.City != nil {
		// Case-insensitive equality: the value carries no wildcards.
		b = b.Where(sq.ILike{"p.city": escapeLike(*f.City)})
	}
	if f.PostalCode != nil {
		b = b.Where(sq.Eq{"p.postal_code": *f.PostalCode})
	}

	if f.LatMin != nil {
		b = b.Where(sq.GtOrEq{"p.lat": *f.LatMin})
	}
	if f.LatMax != nil {
		b = b.Where(sq.LtOrEq{"p.lat": *f.LatMax})
	}
	if f.LngMin != nil {
		b = b.Where(sq.GtOrEq{"p.lng": *f.LngMin})
	}
	if f.LngMax != nil {
		b = b.Where(sq.LtOrEq{"p.lng": *f.LngMax})
	}
	if f.GeohashPrefix != nil {
		b = b.Where(sq.Like{"p.geohash": escapeLike(*f.GeohashPrefix) + "%"})
	}

	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
