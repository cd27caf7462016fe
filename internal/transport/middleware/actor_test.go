package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/realestate-backend/pkg/ctxutil"
)

func TestActor(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantSet bool
	}{
		{"header set", "Jane Agent", "Jane Agent", true},
		{"trimmed", "  jane  ", "jane", true},
		{"absent", "", "", false},
		{"blank", "   ", "", false},
		{"overlong", strings.Repeat("a", maxActorLength+1), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got string
				ok  bool
			)
			handler := Actor()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok = ctxutil.ActorFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set(ActorHeader, tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantSet, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
