package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the display-only view of a JWT bearer token. The signature is
// not checked here; the backend does that on every request.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the current token. It returns false when unauthenticated
// or when the token is not a JWT.
func (s *Store) Claims() (Claims, bool) {
	token := s.Token()
	if token == "" {
		return Claims{}, false
	}
	return ParseClaims(token)
}

// ParseClaims decodes a JWT without verifying it.
func ParseClaims(token string) (Claims, bool) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, false
	}

	c := Claims{Subject: tc.Subject, Email: tc.Email}
	if c.Subject == "" {
		c.Subject = tc.ID
	}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, true
}
