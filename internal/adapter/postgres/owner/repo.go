// Package owner implements the owner repository using PostgreSQL.
package owner

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides owner persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new owner repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const ownerColumns = `
    id, external_code, full_name, email, phone, photo_url, birth_date,
    address_line, city, state, postal_code, country, is_active,
    created_at, updated_at, deleted_at, version`

const insertSQL = `
INSERT INTO owners (` + ownerColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

const getByIDSQL = `
SELECT` + ownerColumns + `
FROM owners
WHERE id = $1 AND deleted_at IS NULL`

const updateSQL = `
UPDATE owners SET
    external_code = $3, full_name = $4, email = $5, phone = $6, photo_url = $7,
    birth_date = $8, address_line = $9, city = $10, state = $11, postal_code = $12,
    country = $13, is_active = $14, updated_at = $15, deleted_at = $16, version = $17
WHERE id = $1 AND version = $2 AND deleted_at IS NULL`

const versionSQL = `
SELECT version, deleted_at IS NOT NULL
FROM owners
WHERE id = $1`

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Create inserts a new owner.
func (r *Repo) Create(ctx context.Context, o domain.Owner) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, insertSQL,
		o.ID, o.ExternalCode, o.FullName, o.Email, o.Phone, o.PhotoURL, o.BirthDate,
		o.AddressLine, o.City, o.State, o.PostalCode, o.Country, o.IsActive,
		o.CreatedAt, o.UpdatedAt, o.DeletedAt, o.Version,
	)
	if err != nil {
		return postgres.MapError(err, "owner", o.ID)
	}
	return nil
}

// Update writes o over the row whose version is still expectedVersion.
func (r *Repo) Update(ctx context.Context, o domain.Owner, expectedVersion int64) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, updateSQL,
		o.ID, expectedVersion,
		o.ExternalCode, o.FullName, o.Email, o.Phone, o.PhotoURL,
		o.BirthDate, o.AddressLine, o.City, o.State, o.PostalCode,
		o.Country, o.IsActive, o.UpdatedAt, o.DeletedAt, o.Version,
	)
	if err != nil {
		return postgres.MapError(err, "owner", o.ID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var (
		actual  int64
		deleted bool
	)
	if err := q.QueryRow(ctx, versionSQL, o.ID).Scan(&actual, &deleted); err != nil {
		return postgres.MapError(err, "owner", o.ID)
	}
	if deleted {
		return fmt.Errorf("owner %s: %w", o.ID, domain.ErrNotFound)
	}
	return &domain.VersionConflictError{Entity: "owner", ID: o.ID, Expected: expectedVersion, Actual: actual}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// GetByID returns a visible owner.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	o, err := scanOwner(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "owner", id)
	}
	return o, nil
}

type summaryRow struct {
	ID            uuid.UUID `db:"id"`
	FullName      string    `db:"full_name"`
	Email         *string   `db:"email"`
	Phone         *string   `db:"phone"`
	City          *string   `db:"city"`
	State         *string   `db:"state"`
	IsActive      bool      `db:"is_active"`
	PropertyCount int       `db:"property_count"`
	CreatedAt     time.Time `db:"created_at"`
	Version       int64     `db:"version"`
}

// List returns one page of visible owners ordered by name, with the number of
// visible properties each one holds.
func (r *Repo) List(ctx context.Context, f domain.OwnerFilter) ([]domain.OwnerSummary, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	countSQL, countArgs, err := applyFilter(psql.Select("count(*)").From("owners o"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count owners: %w", err)
	}
	if total == 0 || f.Offset() >= total {
		return []domain.OwnerSummary{}, total, nil
	}

	listSQL, listArgs, err := applyFilter(
		psql.Select(
			"o.id", "o.full_name", "o.email", "o.phone", "o.city", "o.state", "o.is_active",
			"(SELECT count(*) FROM properties p WHERE p.owner_id = o.id AND p.deleted_at IS NULL) AS property_count",
			"o.created_at", "o.version",
		).From("owners o"),
		f,
	).
		OrderBy("o.full_name ASC", "o.id ASC").
		Limit(uint64(f.PageSize)).
		Offset(uint64(f.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	var rows []summaryRow
	if err := pgxscan.Select(ctx, q, &rows, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list owners: %w", err)
	}

	items := make([]domain.OwnerSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.OwnerSummary(row))
	}
	return items, total, nil
}

func applyFilter(b sq.SelectBuilder, f domain.OwnerFilter) sq.SelectBuilder {
	b = b.Where("o.deleted_at IS NULL")
	if f.Q != nil && *f.Q != "" {
		like := "%" + likeEscaper.Replace(*f.Q) + "%"
		b = b.Where(sq.Or{
			sq.ILike{"o.full_name": like},
			sq.ILike{"o.email": like},
		})
	}
	if f.IsActive != nil {
		b = b.Where(sq.Eq{"o.is_active": *f.IsActive})
	}
	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanOwner(row pgx.Row) (*domain.Owner, error) {
	var o domain.Owner
	err := row.Scan(
		&o.ID, &o.ExternalCode, &o.FullName, &o.Email, &o.Phone, &o.PhotoURL, &o.BirthDate,
		&o.AddressLine, &o.City, &o.State, &o.PostalCode, &o.Country, &o.IsActive,
		&o.CreatedAt, &o.UpdatedAt, &o.DeletedAt, &o.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("scan owner: %w", err)
	}
	return &o, nil
}
