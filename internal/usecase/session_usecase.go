package usecase

import (
	"context"

	"catalog/internal/domain/entity"
	"catalog/internal/domain/service"
	"catalog/internal/errors"
)

// Rejection reasons reported by SessionUsecase in addition to the token codec errors.
var (
	// ErrSubjectMissing is returned when a valid token carries no subject.
	ErrSubjectMissing = errors.New("token subject missing")
	// ErrUnknownSubject is returned when the token subject no longer names a user.
	ErrUnknownSubject = errors.New("token subject unknown")
	// ErrMissingBearer is returned when a request carries no usable bearer credentials.
	ErrMissingBearer = errors.New("bearer token missing")
)

// SessionUsecase resolves the user behind a bearer token.
type SessionUsecase interface {
	// GetCurrentUser decodes the token and re-reads its subject from the store.
	// Every rejection is a *domainerrors.UnauthorizedError wrapping the reason.
	GetCurrentUser(ctx context.Context, token string) (*entity.User, error)
}

// RejectionReason returns a stable label for the reason wrapped in a session rejection.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingBearer):
		return "missing_bearer"
	case errors.Is(err, service.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, service.ErrTokenSignatureInvalid):
		return "invalid_signature"
	case errors.Is(err, service.ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrSubjectMissing):
		return "subject_missing"
	case errors.Is(err, ErrUnknownSubject):
		return "unknown_subject"
	default:
		return "other"
	}
}
