package middleware

import (
	"context"
	"net/http"

	"go-writer-app/internal/session"
)

type contextKey string

const userIDKey contextKey = "userID"

// sessionUserKey is the session key holding the logged-in user's ID.
const sessionUserKey = "userID"

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the authenticated user's ID from the context, or 0
// for anonymous requests.
func UserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

// Authenticate copies the session's user ID, if any, into the request
// context so handlers can read it without touching the session store.
func Authenticate(sessions session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := sessions.GetInt64(r.Context(), sessionUserKey); id != 0 {
				r = r.WithContext(WithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth gates a route group behind a logged-in session,
// redirecting anonymous requests to the login form.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == 0 {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
