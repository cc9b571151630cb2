// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"maps"
	"strings"
	"time"

	"catalog/config"
	"catalog/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Registered claim names written by the codec. Extra claims with these names are overwritten.
const (
	claimSubject   = "sub"
	claimExpiresAt = "exp"
	claimIssuedAt  = "iat"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// All fields are fixed at construction.
type jwtService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService is the constructor for jwtService.
// It fails when the secret, algorithm or TTL are missing so the process never starts half-configured.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	return NewJWTServiceWithClock(cfg, time.Now)
}

// NewJWTServiceWithClock is NewJWTService with an explicit clock used for both issuing and validating.
func NewJWTServiceWithClock(cfg *config.Config, now func() time.Time) (service.TokenService, error) {
	if cfg == nil || cfg.Auth == nil {
		return nil, errors.Wrap(config.ErrConfiguration, "auth configuration must be provided")
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	method := jwt.GetSigningMethod(cfg.Auth.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Wrapf(config.ErrConfiguration, "auth.algorithm %q is not an HMAC algorithm", cfg.Auth.Algorithm)
	}

	if now == nil {
		now = time.Now
	}

	return &jwtService{
		secret: []byte(cfg.Auth.Secret),
		method: method,
		ttl:    cfg.Auth.AccessTokenTTL,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithTimeFunc(now),
			jwt.WithLeeway(cfg.Auth.Leeway),
			jwt.WithExpirationRequired(),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Encode signs a token for claims.Subject carrying claims.Extra.
func (s *jwtService) Encode(claims service.Claims) (string, error) {
	issuedAt := s.now()

	toEncode := make(jwt.MapClaims, len(claims.Extra)+3)
	maps.Copy(toEncode, claims.Extra)
	toEncode[claimSubject] = claims.Subject
	toEncode[claimIssuedAt] = jwt.NewNumericDate(issuedAt)
	toEncode[claimExpiresAt] = jwt.NewNumericDate(issuedAt.Add(s.ttl))

	signed, err := jwt.NewWithClaims(s.method, toEncode).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Decode checks the HMAC over the raw header and payload segments before anything
// is decoded, so a change to any character of a three-segment token is reported as
// ErrTokenSignatureInvalid, even when the token is also expired or its JSON is broken.
// Only tokens without exactly three segments are ErrTokenMalformed at this stage.
func (s *jwtService) Decode(tokenString string) (*service.Claims, error) {
	if err := s.verifySignature(tokenString); err != nil {
		return nil, err
	}

	token, err := s.parser.Parse(tokenString, func(*jwt.Token) (any, error) { return s.secret, nil })
	if err != nil {
		return nil, classifyTokenError(err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(service.ErrTokenMalformed, "unexpected claims type")
	}

	return toClaims(mapClaims)
}

func (s *jwtService) verifySignature(tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return errors.Wrapf(service.ErrTokenMalformed, "token has %d segments", len(parts))
	}

	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return errors.Wrap(service.ErrTokenSignatureInvalid, "signature is not canonical base64url")
	}
	if err := s.method.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return errors.Wrap(service.ErrTokenSignatureInvalid, err.Error())
	}

	return nil
}

// AccessTokenTTL returns the configured lifetime of access tokens.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.ttl
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.Wrap(service.ErrTokenMalformed, err.Error())
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return errors.Wrap(service.ErrTokenSignatureInvalid, err.Error())
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(service.ErrTokenExpired, err.Error())
	default:
		// Missing exp, nbf in the future and similar claim problems.
		return errors.Wrap(service.ErrTokenMalformed, err.Error())
	}
}

func toClaims(mapClaims jwt.MapClaims) (*service.Claims, error) {
	subject, err := mapClaims.GetSubject()
	if err != nil {
		return nil, errors.Wrap(service.ErrTokenMalformed, "invalid sub claim")
	}

	expiresAt, err := mapClaims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, errors.Wrap(service.ErrTokenMalformed, "invalid exp claim")
	}

	claims := &service.Claims{
		Subject:   subject,
		ExpiresAt: expiresAt.Time,
	}

	if issuedAt, err := mapClaims.GetIssuedAt(); err == nil && issuedAt != nil {
		claims.IssuedAt = issuedAt.Time
	}

	for key, value := range mapClaims {
		switch key {
		case claimSubject, claimExpiresAt, claimIssuedAt:
			continue
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]any)
		}
		claims.Extra[key] = value
	}

	return claims, nil
}
