package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/redmonkez12/trip-expense-api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// UsermailContextKey carries the authenticated caller's email.
const UsermailContextKey ContextKey = "usermail"

// Middleware is the auth gate in front of every protected route.
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth extracts the bearer token from the Authorization header,
// verifies it and puts the caller's identity into the request context.
// Every failure is a 401 with a bearer challenge.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			challenge(w)
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			challenge(w)
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		usermail, err := m.tokenService.Verify(parts[1])
		if err != nil {
			challenge(w)
			if err == ErrExpiredToken {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UsermailContextKey, usermail)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
}

// GetUsermailFromContext extracts the authenticated email from the context.
func GetUsermailFromContext(ctx context.Context) (string, bool) {
	usermail, ok := ctx.Value(UsermailContextKey).(string)
	return usermail, ok
}
