package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// TokenCookieName is the HttpOnly cookie that carries the session token.
const TokenCookieName = "token"

type contextKey string

const claimsKey contextKey = "claims"

var errNoToken = errors.New("auth: no token presented")

// RequireAuth rejects requests without a valid token with 401 and stores the
// token claims in the request context otherwise.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="phrasebook"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// UserIDFromContext returns the authenticated user's ID.
// Returns (0, false) on anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	id, err := c.UserID()
	if err != nil {
		return 0, false
	}
	return id, true
}

// WithClaims returns a copy of ctx carrying claims. Used by tests that call
// handlers directly without the middleware.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// extractClaims prefers the Authorization header and falls back to the cookie.
func extractClaims(r *http.Request, tokens *TokenService) (*Claims, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return nil, errNoToken
		}
		return validWithSubject(tokens, strings.TrimSpace(token))
	}

	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return nil, errNoToken
	}
	return validWithSubject(tokens, cookie.Value)
}

func validWithSubject(tokens *TokenService, token string) (*Claims, error) {
	claims, err := tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
