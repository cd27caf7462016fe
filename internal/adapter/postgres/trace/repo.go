// Package trace implements the append-only property trace repository using
// PostgreSQL. It exposes no update or delete operation.
package trace

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// Repo provides trace persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new trace repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const traceColumns = `
    id, property_id, event_type, event_date, actor_name,
    old_total, old_base, old_tax, new_total, new_base, new_tax, notes`

const appendSQL = `
INSERT INTO property_traces (` + traceColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const listByPropertySQL = `
SELECT` + traceColumns + `
FROM property_traces
WHERE property_id = $1
ORDER BY seq`

const lastByTypeSQL = `
SELECT` + traceColumns + `
FROM property_traces
WHERE property_id = $1 AND event_type = $2
ORDER BY seq DESC
LIMIT 1`

const countByPropertySQL = `
SELECT count(*) FROM property_traces WHERE property_id = $1`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append stores traces in the given order with a single batch round trip.
func (r *Repo) Append(ctx context.Context, traces ...domain.PropertyTrace) error {
	if len(traces) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range traces {
		batch.Queue(appendSQL,
			t.ID, t.PropertyID, string(t.EventType), t.EventDate, t.ActorName,
			t.OldTotal, t.OldBase, t.OldTax, t.NewTotal, t.NewBase, t.NewTax, t.Notes,
		)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for _, t := range traces {
		if _, err := results.Exec(); err != nil {
			return postgres.MapError(err, "property_trace", t.ID)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByProperty returns every trace of a property in insertion order.
func (r *Repo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyTrace, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listByPropertySQL, propertyID)
	if err != nil {
		return nil, postgres.MapError(err, "property", propertyID)
	}
	defer rows.Close()

	result := []domain.PropertyTrace{}
	for rows.Next() {
		t, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "property", propertyID)
	}
	return result, nil
}

// LastByType returns the most recent trace of the given type, or ErrNotFound.
func (r *Repo) LastByType(ctx context.Context, propertyID uuid.UUID, eventType domain.TraceEventType) (*domain.PropertyTrace, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	t, err := scanTrace(q.QueryRow(ctx, lastByTypeSQL, propertyID, string(eventType)))
	if err != nil {
		return nil, postgres.MapError(err, "property_trace", propertyID)
	}
	return t, nil
}

// CountByProperty returns the number of traces recorded for a property.
func (r *Repo) CountByProperty(ctx context.Context, propertyID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var n int
	if err := q.QueryRow(ctx, countByPropertySQL, propertyID).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "property", propertyID)
	}
	return n, nil
}

func scanTrace(row pgx.Row) (*domain.PropertyTrace, error) {
	var (
		t         domain.PropertyTrace
		eventType string
	)
	err := row.Scan(
		&t.ID, &t.PropertyID, &eventType, &t.EventDate, &t.ActorName,
		&t.OldTotal, &t.OldBase, &t.OldTax, &t.NewTotal, &t.NewBase, &t.NewTax, &t.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("scan property trace: %w", err)
	}
	t.EventType = domain.TraceEventType(eventType)
	return &t, nil
}
