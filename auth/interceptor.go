package auth

import (
	"context"
	"couple-chat/domain"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"

	tokenParam = "token"
)

// Middleware handles JWT validation for incoming HTTP requests, websocket
// upgrades included. A nil authenticator lets every request through
// unauthenticated.
func Middleware(authenticator Authenticator, next http.Handler) http.Handler {
	if authenticator == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := authenticator.Authenticate(TokenFromRequest(r))
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		// Inject user identity into context for downstream handlers
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// TokenFromRequest looks for the token in the Authorization header, then in
// the token query parameter, then in the token cookie. Browsers cannot set
// headers on a websocket handshake, hence the fallbacks.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token := r.URL.Query().Get(tokenParam); token != "" {
		return token
	}
	if cookie, err := r.Cookie(tokenParam); err == nil {
		return cookie.Value
	}
	return ""
}

func WithUserID(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext returns the authenticated user, if any.
func UserIDFromContext(ctx context.Context) (domain.UserID, bool) {
	userID, ok := ctx.Value(UserIDKey).(domain.UserID)
	return userID, ok && userID != ""
}
