package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkcardapp/linkcard-server/internal/service"
	"github.com/linkcardapp/linkcard-server/internal/store"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// GetUserID returns the authenticated user ID, or a 401 error when the
// request carries no valid token. Account and session routes use this.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return userID, nil
}

// Identity returns the card identity for the request: the authenticated
// user ID when present, otherwise the shared guest identity. The editor
// works without an account, so card routes never require auth.
func Identity(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		return userID
	}
	return store.GuestIdentity
}

func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// authMiddleware validates Bearer tokens and stashes the user ID in the
// request context. Missing or invalid tokens pass through anonymously;
// handlers that need auth reject via GetUserID.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, _, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setUserID(r.Context(), user.ID)))
		})
	}
}

// resolveUserID adapts the request context for the SSE handler, which
// needs the user ID to scope per-user events.
func resolveUserID(r *http.Request) string {
	if userID, ok := r.Context().Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}
