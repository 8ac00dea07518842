package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/restaurant-pos/internal/auth"
	"github.com/example/restaurant-pos/internal/domain/actor"
)

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the JWT from a cookie or the Authorization header.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const actorContextKey contextKey = "actor"

// Auth validates the token and places the acting staff member in the
// request context.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				respondError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorContextKey, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the acting staff member placed by Auth.
func ActorFromContext(ctx context.Context) (actor.Actor, bool) {
	act, ok := ctx.Value(actorContextKey).(actor.Actor)
	return act, ok
}

// WithActor returns a context carrying the given actor. Test helper and
// internal-process hook.
func WithActor(ctx context.Context, act actor.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, act)
}

// RequireRole rejects requests whose actor holds none of the given roles.
// The engines still enforce their own gates; this keeps obvious mistakes
// from reaching them.
func RequireRole(roles ...actor.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			act, ok := ActorFromContext(r.Context())
			if !ok {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !act.Is(roles...) {
				respondError(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
