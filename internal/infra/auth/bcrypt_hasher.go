// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"catalog/config"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const defaultHashConcurrency = 4

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
// At most len(slots) hash or compare operations run concurrently; bcrypt is CPU-bound
// and unbounded fan-out would starve the request goroutines.
type bcryptHasher struct {
	cost   int
	slots  *semaphore.Weighted
	policy config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	concurrency := defaultHashConcurrency
	if cfg != nil && cfg.Auth != nil {
		if cfg.Auth.BcryptCost != 0 {
			cost = cfg.Auth.BcryptCost
		}
		if cfg.Auth.HashConcurrency > 0 {
			concurrency = cfg.Auth.HashConcurrency
		}
	}

	policy := defaultPolicy()
	if cfg != nil && cfg.PasswordStrength != nil {
		policy = *cfg.PasswordStrength
	}

	return newBcryptHasher(cost, concurrency, policy)
}

// NewBcryptHasherWithCost creates a hasher with an explicit cost and the default password policy.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return newBcryptHasher(cost, defaultHashConcurrency, defaultPolicy())
}

func newBcryptHasher(cost, concurrency int, policy config.PasswordStrengthConfig) *bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if policy.MaxLength <= 0 || policy.MaxLength > maxBcryptPasswordBytes {
		policy.MaxLength = maxBcryptPasswordBytes
	}

	return &bcryptHasher{
		cost:   cost,
		slots:  semaphore.NewWeighted(int64(concurrency)),
		policy: policy,
	}
}

// bcrypt only looks at the first 72 bytes of input.
const maxBcryptPasswordBytes = 72

func defaultPolicy() config.PasswordStrengthConfig {
	return config.PasswordStrengthConfig{
		MinLength: 8,
		MaxLength: maxBcryptPasswordBytes,
	}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "waiting for hash slot")
	}
	defer h.slots.Release(1)

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt hash")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
// A malformed hash is reported as a mismatch.
func (h *bcryptHasher) Check(ctx context.Context, password, hash string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, errors.Wrap(err, "waiting for hash slot")
	}
	defer h.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// ValidatePasswordStrength checks the password against the configured policy
// and reports the first rule it breaks.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	p := h.policy

	if utf8.RuneCountInString(password) < p.MinLength {
		return strengthError(fmt.Sprintf("must be at least %d characters long", p.MinLength))
	}
	if len(password) > p.MaxLength {
		return strengthError(fmt.Sprintf("must be at most %d bytes long", p.MaxLength))
	}
	if p.RequireLowercase && !h.hasLowercase(password) {
		return strengthError("must contain at least one lowercase letter")
	}
	if p.RequireUppercase && !h.hasUppercase(password) {
		return strengthError("must contain at least one uppercase letter")
	}
	if p.RequireNumbers && !h.hasNumbers(password) {
		return strengthError("must contain at least one number")
	}
	if p.RequireSpecial && !h.hasSpecialChars(password) {
		return strengthError("must contain at least one special character")
	}

	return nil
}

func strengthError(rule string) error {
	return domainerrors.ErrPasswordStrength.WithDetails("password " + rule)
}

func (h *bcryptHasher) hasUppercase(s string) bool {
	return containsRune(s, unicode.IsUpper)
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	return containsRune(s, unicode.IsLower)
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	return containsRune(s, unicode.IsDigit)
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	return containsRune(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func containsRune(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}

	return false
}
