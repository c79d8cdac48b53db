package middleware

import (
	"context"
	"net/http"

	"github.com/shoply/checkout/internal/service"
)

type contextKey int

const (
	contextKeyUserID contextKey = iota
)

// Auth gets the token from the cookie and passes user id to the context
func Auth(ts service.TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("auth_token")
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			payload, err := ts.VerifyToken(cookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), payload.UserID)))
		})
	}
}

// WithUserID puts authenticated user id into context
func WithUserID(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}

// UserID extracts authenticated user id from context
func UserID(ctx context.Context) (uint64, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(uint64)
	return userID, ok
}
