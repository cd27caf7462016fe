package property

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockPropertyRepo struct {
	CreateFunc  func(ctx context.Context, rec domain.PropertyRecord) error
	UpdateFunc  func(ctx context.Context, rec domain.PropertyRecord, expectedVersion int64) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.PropertyRecord, error)
	ListFunc    func(ctx context.Context, f domain.PropertyFilter) ([]domain.PropertySummary, int, error)

	mu      sync.Mutex
	created []domain.PropertyRecord
	updated []updateCall
	listed  []domain.PropertyFilter
}

type updateCall struct {
	Rec      domain.PropertyRecord
	Expected int64
}

func (m *mockPropertyRepo) Create(ctx context.Context, rec domain.PropertyRecord) error {
	m.mu.Lock()
	m.created = append(m.created, rec)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return nil
}

func (m *mockPropertyRepo) Update(ctx context.Context, rec domain.PropertyRecord, expectedVersion int64) error {
	m.mu.Lock()
	m.updated = append(m.updated, updateCall{Rec: rec, Expected: expectedVersion})
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rec, expectedVersion)
	}
	return nil
}

func (m *mockPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PropertyRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPropertyRepo) List(ctx context.Context, f domain.PropertyFilter) ([]domain.PropertySummary, int, error) {
	m.mu.Lock()
	m.listed = append(m.listed, f)
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return []domain.PropertySummary{}, 0, nil
}

type mockImageRepo struct {
	ListByPropertyFunc func(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyImage, error)
	InsertFunc         func(ctx context.Context, img domain.PropertyImage) error

	mu       sync.Mutex
	calls    []string
	inserted []domain.PropertyImage
	demoted  []uuid.UUID
	promoted []uuid.UUID
	deleted  []uuid.UUID
}

func (m *mockImageRepo) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockImageRepo) Insert(ctx context.Context, img domain.PropertyImage) error {
	m.record("insert")
	m.inserted = append(m.inserted, img)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, img)
	}
	return nil
}

func (m *mockImageRepo) Demote(ctx context.Context, ids []uuid.UUID) error {
	m.record("demote")
	m.demoted = append(m.demoted, ids...)
	return nil
}

func (m *mockImageRepo) Promote(ctx context.Context, id uuid.UUID) error {
	m.record("promote")
	m.promoted = append(m.promoted, id)
	return nil
}

func (m *mockImageRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.record("delete")
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockImageRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyImage, error) {
	if m.ListByPropertyFunc != nil {
		return m.ListByPropertyFunc(ctx, propertyID)
	}
	return []domain.PropertyImage{}, nil
}

type mockTraceRepo struct {
	LastByTypeFunc      func(ctx context.Context, propertyID uuid.UUID, eventType domain.TraceEventType) (*domain.PropertyTrace, error)
	CountByPropertyFunc func(ctx context.Context, propertyID uuid.UUID) (int, error)
	ListByPropertyFunc  func(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyTrace, error)

	mu       sync.Mutex
	appended []domain.PropertyTrace
}

func (m *mockTraceRepo) Append(ctx context.Context, traces ...domain.PropertyTrace) error {
	m.mu.Lock()
	m.appended = append(m.appended, traces...)
	m.mu.Unlock()
	return nil
}

func (m *mockTraceRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyTrace, error) {
	if m.ListByPropertyFunc != nil {
		return m.ListByPropertyFunc(ctx, propertyID)
	}
	return []domain.PropertyTrace{}, nil
}

func (m *mockTraceRepo) LastByType(ctx context.Context, propertyID uuid.UUID, eventType domain.TraceEventType) (*domain.PropertyTrace, error) {
	if m.LastByTypeFunc != nil {
		return m.LastByTypeFunc(ctx, propertyID, eventType)
	}
	return nil, domain.ErrNotFound
}

func (m *mockTraceRepo) CountByProperty(ctx context.Context, propertyID uuid.UUID) (int, error) {
	if m.CountByPropertyFunc != nil {
		return m.CountByPropertyFunc(ctx, propertyID)
	}
	return 0, nil
}

type mockOwnerRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Owner, error)
}

func (m *mockOwnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &domain.Owner{ID: id, FullName: "Jane Roe", IsActive: true, Version: 1}, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockPublisher struct {
	Err       error
	published []domain.PropertyTrace
}

func (m *mockPublisher) PublishTraces(ctx context.Context, traces []domain.PropertyTrace) error {
	m.published = append(m.published, traces...)
	return m.Err
}
