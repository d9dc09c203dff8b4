// Package auth issues and validates session tokens and hashes passwords.
//
// Login issues a signed HS256 JWT whose subject is the user's numeric ID. The
// client presents it on every mutating request, either as a
// "Authorization: Bearer <token>" header or in the HttpOnly "token" cookie set
// at login. Validation needs only the secret, no database lookup.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	issuer = "phrasebook"

	// DefaultTokenTTL is used when the configured lifetime is zero.
	DefaultTokenTTL = 12 * time.Hour
)

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and lifetime.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Claims is the token payload. Username is carried so handlers can greet the
// user without a lookup; the subject is authoritative.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TTL reports how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate signs a token for the user that expires after the service TTL.
func (s *TokenService) Generate(userID int64, username string) (string, error) {
	return s.GenerateWithDuration(userID, username, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime.
// Tests use a negative duration to produce expired tokens.
func (s *TokenService) GenerateWithDuration(userID int64, username string, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns its claims.
//
// The signing method is pinned to HS256 so a token claiming "none" or an
// asymmetric algorithm is rejected.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return c, nil
}

// UserID returns the numeric user ID stored in the subject claim.
func (c *Claims) UserID() (int64, error) {
	if c.Subject == "" {
		return 0, fmt.Errorf("auth: token has no subject")
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: token subject %q is not a user id", c.Subject)
	}
	return id, nil
}
