package impl

import (
	"context"
	"log/slog"

	deliverycontext "catalog/internal/delivery/context"
	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/repository"
	"catalog/internal/domain/service"
	"catalog/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	userRepo     repository.UserRepository
	tokenService service.TokenService
	logger       *slog.Logger
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewSessionService creates a new session service instance.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		userRepo:     params.UserRepo,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetCurrentUser resolves a bearer token to the user it was issued for.
// The user is re-read on every call so deleted accounts are rejected at once.
func (srv *sessionService) GetCurrentUser(ctx context.Context, token string) (*entity.User, error) {
	claims, err := srv.tokenService.Decode(token)
	if err != nil {
		return nil, srv.reject(ctx, err)
	}

	if claims.Subject == "" {
		return nil, srv.reject(ctx, usecase.ErrSubjectMissing)
	}

	user, err := srv.userRepo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, srv.reject(ctx, usecase.ErrUnknownSubject)
		}

		srv.log(ctx).Error("Failed to load session user", slog.Any("error", err))

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load session user")
	}

	return user, nil
}

func (srv *sessionService) reject(ctx context.Context, reason error) error {
	srv.log(ctx).Warn("Bearer token rejected",
		slog.String("reason", usecase.RejectionReason(reason)),
		slog.Any("error", reason),
	)

	return domainerrors.NewUnauthorizedError(reason)
}
