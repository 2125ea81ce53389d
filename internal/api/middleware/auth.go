package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rohits-web03/robotutor/internal/auth"
	"github.com/rohits-web03/robotutor/internal/models"
	"github.com/rohits-web03/robotutor/internal/utils"
)

type contextKey string

const userKey contextKey = "user"

// Auth validates the bearer token on every request and puts the resolved
// user on the context. The token comes from the Authorization header,
// falling back to the session_token cookie for browser clients.
func Auth(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			user, err := sessions.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				utils.JSONError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the session token from the request, preferring the
// Authorization header over the cookie.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// UserFrom returns the authenticated user placed on the context by Auth.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}
