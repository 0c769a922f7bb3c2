package apiutil

import (
	"context"
	"net/http"
	"strings"

	"github.com/byTonho/logifix/internal/models"
)

type actorKey struct{}

type TokenValidator interface {
	ValidateToken(token string) (models.Actor, error)
}

// Authenticator rejects requests without a valid bearer token and stashes
// the actor in the request context.
func Authenticator(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
				return
			}
			actor, err := v.ValidateToken(token)
			if err != nil {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey{}).(models.Actor)
	return actor
}

// RequireMaster gates the management routes to Master accounts.
func RequireMaster(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFrom(r.Context()).IsMaster() {
			WriteJSON(w, http.StatusForbidden, map[string]string{"error": "master role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
