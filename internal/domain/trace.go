package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyTrace is an immutable audit record of one event affecting a property.
// Price fields are set only for events that touch pricing.
type PropertyTrace struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	EventType  TraceEventType
	EventDate  time.Time
	ActorName  *string
	OldTotal   *decimal.Decimal
	OldBase    *decimal.Decimal
	OldTax     *decimal.Decimal
	NewTotal   *decimal.Decimal
	NewBase    *decimal.Decimal
	NewTax     *decimal.Decimal
	Notes      string
}

// TraceEntry describes a trace to append. Optional price snapshots are
// recorded as given.
type TraceEntry struct {
	EventType TraceEventType
	Notes     string
	ActorName *string
	Old       *Pricing
	New       *Pricing
}

// TraceLog is an append-only list of trace records. It has no update or
// remove operation.
type TraceLog struct {
	propertyID uuid.UUID
	entries    []PropertyTrace
}

// NewTraceLog returns an empty log for the given property.
func NewTraceLog(propertyID uuid.UUID) TraceLog {
	return TraceLog{propertyID: propertyID}
}

// Add appends a record stamped with now and returns it.
func (l *TraceLog) Add(e TraceEntry, now time.Time) PropertyTrace {
	tr := PropertyTrace{
		ID:         uuid.New(),
		PropertyID: l.propertyID,
		EventType:  e.EventType,
		EventDate:  now,
		ActorName:  e.ActorName,
		Notes:      e.Notes,
	}
	if e.Old != nil {
		tr.OldTotal = decimalPtr(e.Old.Total())
		tr.OldBase = decimalPtr(e.Old.Base)
		tr.OldTax = decimalPtr(e.Old.Tax)
	}
	if e.New != nil {
		tr.NewTotal = decimalPtr(e.New.Total())
		tr.NewBase = decimalPtr(e.New.Base)
		tr.NewTax = decimalPtr(e.New.Tax)
	}
	l.entries = append(l.entries, tr)
	return tr
}

// Entries returns the records in insertion order. The returned slice is a copy.
func (l TraceLog) Entries() []PropertyTrace {
	out := make([]PropertyTrace, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of records.
func (l TraceLog) Len() int { return len(l.entries) }

// PriceChange summarizes the most recent PRICE_CHANGE trace of a property.
type PriceChange struct {
	EventDate time.Time
	OldTotal  *decimal.Decimal
	NewTotal  *decimal.Decimal
	NewBase   *decimal.Decimal
	NewTax    *decimal.Decimal
	ActorName *string
}

// PriceChangeFromTrace projects a PRICE_CHANGE trace to its summary.
func PriceChangeFromTrace(t PropertyTrace) PriceChange {
	return PriceChange{
		EventDate: t.EventDate,
		OldTotal:  t.OldTotal,
		NewTotal:  t.NewTotal,
		NewBase:   t.NewBase,
		NewTax:    t.NewTax,
		ActorName: t.ActorName,
	}
}
