package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/realestate-backend/pkg/ctxutil"
)

// ActorHeader names the person or system performing a change. It is recorded
// on trace entries when the request body does not name an actor.
const ActorHeader = "X-Actor-Name"

const maxActorLength = 100

// Actor stores a non-blank X-Actor-Name header in the request context.
// Overlong names are ignored rather than truncated.
func Actor() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimSpace(r.Header.Get(ActorHeader))
			if name == "" || len([]rune(name)) > maxActorLength {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithActor(r.Context(), name)))
		})
	}
}
