package service

import (
	"errors"
	"time"
)

// Token validation failures. They are distinguished for logging only and must
// never change what the client sees.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")
)

// Claims is the payload carried by an access token.
type Claims struct {
	Subject   string         // username the token was issued to
	ExpiresAt time.Time      // set by the codec on encode
	IssuedAt  time.Time      // set by the codec on encode
	Extra     map[string]any // any additional claims, kept as-is
}

// TokenService defines the interface for issuing and validating access tokens.
type TokenService interface {
	// Encode signs claims into a compact token expiring after the configured TTL.
	// The caller's Extra map is never modified.
	Encode(claims Claims) (string, error)

	// Decode verifies the token and returns its claims, or one of
	// ErrTokenMalformed, ErrTokenSignatureInvalid, ErrTokenExpired.
	Decode(token string) (*Claims, error)

	// AccessTokenTTL returns the configured lifetime of issued tokens.
	AccessTokenTTL() time.Duration
}
