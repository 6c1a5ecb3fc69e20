package handler

import (
	"context"
	"net/http"
	"strings"
)

// ctxKeyUserID carries the authenticated user's ID through the request
// context.
type ctxKeyUserID struct{}

// Authenticator verifies a session token and returns the user ID it was
// issued for.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// requireAuth is middleware that validates the Bearer token and stores
// the user ID in the request context. Requests without a valid token
// get 401 before the handler runs.
func requireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			userID, err := auth.Authenticate(token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUserID{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFrom returns the authenticated user ID stored by requireAuth.
func userIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyUserID{}).(string)
	return id
}
