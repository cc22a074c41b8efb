package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/isdelr/socialfeed-be/internal/models"
	"github.com/isdelr/socialfeed-be/internal/services"
)

type contextKey string

// UserKey is the context key under which the authenticated user is stored.
const UserKey = contextKey("authUser")

// UserFromContext returns the authenticated user placed by Middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserKey).(models.User)
	return user, ok
}

// Middleware protects routes with opaque bearer tokens. The key is taken
// from the Authorization header ("Bearer <key>" or "Token <key>"), falling
// back to the "token" cookie.
func Middleware(users services.UserServiceProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tokenFromRequest(r)
			if key == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			user, err := users.GetUserByToken(key)
			if err != nil {
				unauthorized(w, "Invalid token.")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	for _, prefix := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(authHeader, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		}
	}

	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
