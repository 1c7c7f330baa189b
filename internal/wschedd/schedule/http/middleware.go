package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
)

// Authenticator resolves a bearer token to the acting user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*access.Actor, error)
}

type actorKey struct{}

// WithActor returns a context carrying actor
func WithActor(ctx context.Context, actor *access.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, or nil
func ActorFromContext(ctx context.Context) *access.Actor {
	actor, _ := ctx.Value(actorKey{}).(*access.Actor)
	return actor
}

// authMiddleware authenticates every request. Browsers cannot set headers
// on websocket upgrades, so the token may also arrive as access_token.
func authMiddleware(auth Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, logger, "Authentication required.")
				return
			}

			actor, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !werrors.IsUnauthorized(err) {
					logger.Error().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
				}
				writeUnauthorized(w, logger, "Authentication required.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return r.URL.Query().Get("access_token")
}

func writeUnauthorized(w http.ResponseWriter, logger zerolog.Logger, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="wsched"`)
	writeJSON(w, logger, http.StatusUnauthorized, resultError(message, werrors.CodeUnauthorized))
}
