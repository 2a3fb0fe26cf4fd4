package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/briefer/pkg/handlers"
)

type contextKey struct{}

// Authenticator resolves bearer tokens to users.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*User, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func Middleware(a Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				status := MapHTTPStatus(err)
				if status == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", "Bearer")
					err = ErrUnauthorized
				}
				handlers.RespondError(w, logger, status, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFrom returns the authenticated user stored by Middleware.
func UserFrom(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextKey{}).(*User)
	return u, ok && u != nil
}
