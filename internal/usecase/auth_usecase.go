// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"catalog/internal/domain/entity"
	"catalog/internal/domain/service"

	"github.com/google/uuid"
)

// TokenTypeBearer is the token_type reported for issued access tokens.
const TokenTypeBearer = "bearer"

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput defines the credentials a user presents to obtain a token.
type LoginInput struct {
	Username string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the access token issued after a successful login.
type LoginOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64 // seconds
	User        *entity.User
}

// AuthUsecase defines the authentication operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// AuthenticateUser returns the user whose password matches. An unknown username and
	// a wrong password both yield ErrInvalidCredentials and cannot be told apart.
	AuthenticateUser(ctx context.Context, username, password string) (*entity.User, error)

	// CreateAccessToken signs a token for the given claims.
	CreateAccessToken(claims service.Claims) (string, error)

	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}
