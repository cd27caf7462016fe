package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/internal/service/owner"
	"github.com/heartmarshall/realestate-backend/internal/service/property"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

var errNotConfigured = errors.New("mock: not configured")

type mockPropertyService struct {
	CreatePropertyFunc    func(ctx context.Context, input property.CreatePropertyInput) (*domain.Property, error)
	GetPropertyDetailFunc func(ctx context.Context, id uuid.UUID) (*property.PropertyDetail, error)
	UpdatePropertyFunc    func(ctx context.Context, input property.UpdatePropertyInput) (*property.PropertyDetail, error)
	ChangePriceFunc       func(ctx context.Context, input property.ChangePriceInput) (*property.PriceChangeResult, error)
	DeletePropertyFunc    func(ctx context.Context, input property.DeletePropertyInput) error
	AddImageFunc          func(ctx context.Context, input property.AddImageInput) (*domain.PropertyImage, error)
	RemoveImageFunc       func(ctx context.Context, input property.RemoveImageInput) error
	ListPropertiesFunc    func(ctx context.Context, input property.ListPropertiesInput) (*domain.Page[domain.PropertySummary], error)
	ListTracesFunc        func(ctx context.Context, id uuid.UUID) ([]domain.PropertyTrace, error)
}

func (m *mockPropertyService) CreateProperty(ctx context.Context, input property.CreatePropertyInput) (*domain.Property, error) {
	if m.CreatePropertyFunc == nil {
		return nil, errNotConfigured
	}
	return m.CreatePropertyFunc(ctx, input)
}

func (m *mockPropertyService) GetPropertyDetail(ctx context.Context, id uuid.UUID) (*property.PropertyDetail, error) {
	if m.GetPropertyDetailFunc == nil {
		return nil, errNotConfigured
	}
	return m.GetPropertyDetailFunc(ctx, id)
}

func (m *mockPropertyService) UpdateProperty(ctx context.Context, input property.UpdatePropertyInput) (*property.PropertyDetail, error) {
	if m.UpdatePropertyFunc == nil {
		return nil, errNotConfigured
	}
	return m.UpdatePropertyFunc(ctx, input)
}

func (m *mockPropertyService) ChangePrice(ctx context.Context, input property.ChangePriceInput) (*property.PriceChangeResult, error) {
	if m.ChangePriceFunc == nil {
		return nil, errNotConfigured
	}
	return m.ChangePriceFunc(ctx, input)
}

func (m *mockPropertyService) DeleteProperty(ctx context.Context, input property.DeletePropertyInput) error {
	if m.DeletePropertyFunc == nil {
		return errNotConfigured
	}
	return m.DeletePropertyFunc(ctx, input)
}

func (m *mockPropertyService) AddImage(ctx context.Context, input property.AddImageInput) (*domain.PropertyImage, error) {
	if m.AddImageFunc == nil {
		return nil, errNotConfigured
	}
	return m.AddImageFunc(ctx, input)
}

func (m *mockPropertyService) RemoveImage(ctx context.Context, input property.RemoveImageInput) error {
	if m.RemoveImageFunc == nil {
		return errNotConfigured
	}
	return m.RemoveImageFunc(ctx, input)
}

func (m *mockPropertyService) ListProperties(ctx context.Context, input property.ListPropertiesInput) (*domain.Page[domain.PropertySummary], error) {
	if m.ListPropertiesFunc == nil {
		return nil, errNotConfigured
	}
	return m.ListPropertiesFunc(ctx, input)
}

func (m *mockPropertyService) ListTraces(ctx context.Context, id uuid.UUID) ([]domain.PropertyTrace, error) {
	if m.ListTracesFunc == nil {
		return nil, errNotConfigured
	}
	return m.ListTracesFunc(ctx, id)
}

type mockOwnerService struct {
	CreateOwnerFunc func(ctx context.Context, input owner.CreateOwnerInput) (*domain.Owner, error)
	GetOwnerFunc    func(ctx context.Context, id uuid.UUID) (*domain.OwnerDetail, error)
	ListOwnersFunc  func(ctx context.Context, input owner.ListOwnersInput) (*domain.Page[domain.OwnerSummary], error)
	UpdateOwnerFunc func(ctx context.Context, input owner.UpdateOwnerInput) (*domain.Owner, error)
	DeleteOwnerFunc func(ctx context.Context, input owner.DeleteOwnerInput) error
}

func (m *mockOwnerService) CreateOwner(ctx context.Context, input owner.CreateOwnerInput) (*domain.Owner, error) {
	if m.CreateOwnerFunc == nil {
		return nil, errNotConfigured
	}
	return m.CreateOwnerFunc(ctx, input)
}

func (m *mockOwnerService) GetOwner(ctx context.Context, id uuid.UUID) (*domain.OwnerDetail, error) {
	if m.GetOwnerFunc == nil {
		return nil, errNotConfigured
	}
	return m.GetOwnerFunc(ctx, id)
}

func (m *mockOwnerService) ListOwners(ctx context.Context, input owner.ListOwnersInput) (*domain.Page[domain.OwnerSummary], error) {
	if m.ListOwnersFunc == nil {
		return nil, errNotConfigured
	}
	return m.ListOwnersFunc(ctx, input)
}

func (m *mockOwnerService) UpdateOwner(ctx context.Context, input owner.UpdateOwnerInput) (*domain.Owner, error) {
	if m.UpdateOwnerFunc == nil {
		return nil, errNotConfigured
	}
	return m.UpdateOwnerFunc(ctx, input)
}

func (m *mockOwnerService) DeleteOwner(ctx context.Context, input owner.DeleteOwnerInput) error {
	if m.DeleteOwnerFunc == nil {
		return errNotConfigured
	}
	return m.DeleteOwnerFunc(ctx, input)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(props *mockPropertyService, owners *mockOwnerService) http.Handler {
	log := discardLogger()
	return NewRouter(RouterDeps{
		Properties: NewPropertyHandler(props, log),
		Owners:     NewOwnerHandler(owners, log),
		Health:     NewHealthHandler(&pingerMock{}, "test", nil),
		CORS:       config.CORSConfig{AllowedOrigins: "*"},
		Logger:     log,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), rec.Body.String())
	return resp.Error
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m), rec.Body.String())
	return m
}
