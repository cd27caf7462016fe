//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	imagerepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/image"
	ownerrepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/owner"
	propertyrepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/property"
	"github.com/heartmarshall/realestate-backend/internal/adapter/postgres/testhelper"
	tracerepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/trace"
	"github.com/heartmarshall/realestate-backend/internal/adapter/rabbitmq"
	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/service/owner"
	"github.com/heartmarshall/realestate-backend/internal/service/property"
	"github.com/heartmarshall/realestate-backend/internal/transport/middleware"
	"github.com/heartmarshall/realestate-backend/internal/transport/rest"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	properties := propertyrepo.New(pool)
	images := imagerepo.New(pool)
	traces := tracerepo.New(pool)
	owners := ownerrepo.New(pool)

	listing := config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 100, ImageRetentionDays: 30}

	propertySvc := property.NewService(logger, properties, images, traces, owners, txm, rabbitmq.Noop{}, listing)
	ownerSvc := owner.NewService(logger, owners, properties, txm, listing)

	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	handler := rest.NewRouter(rest.RouterDeps{
		Properties:  rest.NewPropertyHandler(propertySvc, logger),
		Owners:      rest.NewOwnerHandler(ownerSvc, logger),
		Health:      rest.NewHealthHandler(pool, "e2e", nil),
		CORS:        config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS", AllowedHeaders: "Content-Type,If-Match,X-Actor-Name"},
		RateLimiter: limiter,
		Logger:      logger,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
	}
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

// do sends a JSON request and decodes a JSON object response (if any).
// headers are passed as key/value pairs.
func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp, nil
	}

	var result map[string]any
	require.NoError(t, json.Unmarshal(raw, &result), "body: %s", raw)
	return resp, result
}

// errorCode extracts error.code from an error envelope.
func errorCode(t *testing.T, result map[string]any) string {
	t.Helper()
	envelope, ok := result["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", result)
	code, ok := envelope["code"].(string)
	require.True(t, ok, "expected code string")
	return code
}

// createOwner creates an owner via the API and returns its id.
func createOwner(t *testing.T, ts *testServer) string {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/api/v1/owners", map[string]any{
		"fullName": "E2E Owner " + uuid.NewString()[:8],
		"email":    "e2e-" + uuid.NewString()[:8] + "@example.com",
		"country":  "US",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return body["id"].(string)
}

// propertyBody returns a valid create-property request body.
func propertyBody(ownerID string, mutators ...func(map[string]any)) map[string]any {
	body := map[string]any{
		"ownerId":      ownerID,
		"codeInternal": "E2E-" + uuid.NewString()[:8],
		"name":         "E2E Bungalow",
		"propertyType": "HOUSE",
		"yearBuilt":    1998,
		"bedrooms":     3,
		"bathrooms":    "2",
		"areaSqft":     1800,
		"basePrice":    "400000",
		"taxAmount":    "40000",
		"address": map[string]any{
			"line1":      "12 Elm St",
			"city":       "Austin",
			"state":      "TX",
			"postalCode": "78701",
		},
		"lat": 30.2672,
		"lng": -97.7431,
	}
	for _, m := range mutators {
		m(body)
	}
	return body
}

// createProperty creates a property via the API and returns the "property"
// object of the response.
func createProperty(t *testing.T, ts *testServer, body map[string]any) map[string]any {
	t.Helper()

	resp, result := ts.do(t, http.MethodPost, "/api/v1/properties", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", result)
	prop, ok := result["property"].(map[string]any)
	require.True(t, ok, "expected property object")
	return prop
}

// getProperty fetches the detail view of a property.
func getProperty(t *testing.T, ts *testServer, id string) map[string]any {
	t.Helper()

	resp, result := ts.do(t, http.MethodGet, "/api/v1/properties/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", result)
	return result
}

// versionOf returns the numeric version field of a JSON object.
func versionOf(obj map[string]any) int64 {
	return int64(obj["version"].(float64))
}
