// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "catalog/internal/delivery/context"
	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/repository"
	"catalog/internal/domain/service"
	"catalog/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// timingPassword is hashed once and compared against when a username is unknown,
// so a lookup miss costs the same bcrypt work as a wrong password.
const timingPassword = "catalog-timing-equalizer"

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
	dummyHash    func() (string, error)
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	hasher := params.Hasher

	return &authService{
		userRepo:     params.UserRepo,
		hasher:       hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(context.Background(), timingPassword)
		}),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account after checking the password policy.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("username", input.Username))

	if input.Username == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("username is required")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "password does not meet security requirements")
	}

	hashedPassword, err := srv.hasher.Hash(ctx, input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	newUser := &entity.User{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: hashedPassword,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// Login authenticates the credentials and issues an access token for the user.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting user login", slog.String("username", input.Username))

	user, err := srv.AuthenticateUser(ctx, input.Username, input.Password)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("username", input.Username), slog.Any("error", err))

		return nil, err
	}

	accessToken, err := srv.CreateAccessToken(service.Claims{Subject: user.Username})
	if err != nil {
		srv.log(ctx).Error("Failed to issue access token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate access token")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken: accessToken,
		TokenType:   usecase.TokenTypeBearer,
		ExpiresIn:   int64(srv.tokenService.AccessTokenTTL().Seconds()),
		User:        user,
	}, nil
}

// AuthenticateUser verifies the password of the user with exactly this username.
func (srv *authService) AuthenticateUser(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := srv.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to find user by username")
		}

		if err := srv.equalizeTiming(ctx, password); err != nil {
			return nil, err
		}

		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	ok, err := srv.hasher.Check(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify password")
	}
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	return user, nil
}

// equalizeTiming spends one bcrypt comparison on a miss. Only ctx cancellation is reported.
func (srv *authService) equalizeTiming(ctx context.Context, password string) error {
	hash, err := srv.dummyHash()
	if err != nil {
		srv.log(ctx).Error("Failed to prepare timing hash", slog.Any("error", err))

		return nil
	}

	if _, err := srv.hasher.Check(ctx, password, hash); err != nil {
		return errors.Wrap(err, "failed to verify password")
	}

	return nil
}

// CreateAccessToken signs a token carrying the given claims.
func (srv *authService) CreateAccessToken(claims service.Claims) (string, error) {
	return srv.tokenService.Encode(claims)
}

// DeleteAccount removes the user. Tokens issued to the user stop resolving immediately.
func (srv *authService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := srv.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.WithStack(domainerrors.ErrUserNotFound)
		}

		return errors.Wrap(err, "failed to delete user")
	}

	srv.log(ctx).Info("Account deleted", slog.Any("userID", userID))

	return nil
}
