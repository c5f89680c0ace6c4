package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"presence-lab/errors"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// BearerMiddleware validates the Authorization header of HTTP calls.
// With an empty secret every call goes through unauthenticated.
func BearerMiddleware(secret string) mux.MiddlewareFunc {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, errors.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}
			claims, err := ValidateToken(key, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, errors.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, claims.UserID)))
		})
	}
}

// UserIDFromContext returns the caller identity set by BearerMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
