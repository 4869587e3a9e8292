package auth

import (
	"context"
	"net/http"
	"strings"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/models"
	"ewaste-pickup/internal/utils"
)

type contextKey string

const actorKey contextKey = "actor"
const jtiKey contextKey = "jti"

// ExtractTokenFromRequest pulls the bearer token out of the Authorization
// header.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperr.New(apperr.Unauthorized, "authorization header is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperr.New(apperr.Unauthorized, "authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}

// Middleware verifies the bearer token and the live session entry, then puts
// the acting user into the request context.
func Middleware(secret string, sessions *SessionCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, err)
				return
			}

			claims, err := ParseToken(secret, tokenString)
			if err != nil {
				utils.WriteError(w, err)
				return
			}

			if sessions != nil {
				alive, err := sessions.Exists(r.Context(), claims.ID)
				if err != nil {
					utils.WriteError(w, apperr.Wrap(apperr.Internal, "session lookup failed", err))
					return
				}
				if !alive {
					utils.WriteError(w, apperr.New(apperr.Unauthorized, "session expired or revoked"))
					return
				}
			}

			actor := models.Actor{ID: claims.Subject, Role: claims.Role}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			ctx = context.WithValue(ctx, jtiKey, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects callers whose role is not in the allowed set. Ownership
// checks still happen in the services; both must pass.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := CurrentActor(r.Context())
			if _, ok := allowed[actor.Role]; !ok {
				utils.WriteError(w, apperr.New(apperr.Forbidden, "insufficient role for this operation"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentActor returns the authenticated caller, or a zero Actor outside the
// middleware.
func CurrentActor(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(actorKey).(models.Actor); ok {
		return actor
	}
	return models.Actor{}
}

// TokenID returns the jti of the current session token.
func TokenID(ctx context.Context) string {
	if jti, ok := ctx.Value(jtiKey).(string); ok {
		return jti
	}
	return ""
}
