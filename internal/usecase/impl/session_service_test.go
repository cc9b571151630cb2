package impl

import (
	"context"
	"testing"

	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/repository"
	"catalog/internal/domain/service"
	mockRepo "catalog/internal/mocks/repository"
	mockSvc "catalog/internal/mocks/service"
	"catalog/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionServiceWithMocks(t *testing.T) (usecase.SessionUsecase, *mockRepo.MockUserRepository, *mockSvc.MockTokenService) {
	userRepo := mockRepo.NewMockUserRepository(t)
	tokenService := mockSvc.NewMockTokenService(t)

	svc := NewSessionService(SessionServiceParams{
		UserRepo:     userRepo,
		TokenService: tokenService,
		Logger:       discardLogger(),
	})

	return svc, userRepo, tokenService
}

func TestSessionService_GetCurrentUser_Success(t *testing.T) {
	svc, userRepo, tokenService := newSessionServiceWithMocks(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Username: "alice"}

	tokenService.EXPECT().Decode("good-token").Return(&service.Claims{Subject: "alice"}, nil)
	userRepo.EXPECT().FindByUsername(ctx, "alice").Return(user, nil)

	got, err := svc.GetCurrentUser(ctx, "good-token")
	require.NoError(t, err)
	assert.Same(t, user, got)
}

func TestSessionService_GetCurrentUser_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		decodeErr  error
		claims     *service.Claims
		lookupErr  error
		wantReason error
		wantLabel  string
	}{
		{name: "malformed", decodeErr: errors.Wrap(service.ErrTokenMalformed, "bad segment"), wantReason: service.ErrTokenMalformed, wantLabel: "malformed"},
		{name: "bad signature", decodeErr: errors.Wrap(service.ErrTokenSignatureInvalid, "mismatch"), wantReason: service.ErrTokenSignatureInvalid, wantLabel: "invalid_signature"},
		{name: "expired", decodeErr: errors.Wrap(service.ErrTokenExpired, "exp passed"), wantReason: service.ErrTokenExpired, wantLabel: "expired"},
		{name: "no subject", claims: &service.Claims{}, wantReason: usecase.ErrSubjectMissing, wantLabel: "subject_missing"},
		{name: "unknown subject", claims: &service.Claims{Subject: "ghost"}, lookupErr: repository.ErrUserNotFound, wantReason: usecase.ErrUnknownSubject, wantLabel: "unknown_subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo, tokenService := newSessionServiceWithMocks(t)
			ctx := context.Background()

			tokenService.EXPECT().Decode("tok").Return(tt.claims, tt.decodeErr)
			if tt.lookupErr != nil {
				userRepo.EXPECT().FindByUsername(ctx, tt.claims.Subject).Return(nil, tt.lookupErr)
			}

			user, err := svc.GetCurrentUser(ctx, "tok")
			assert.Nil(t, user)
			require.Error(t, err)

			// Uniform outward shape.
			var unauthorized *domainerrors.UnauthorizedError
			require.True(t, errors.As(err, &unauthorized))
			assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
			assert.Equal(t, domainerrors.ErrUnauthorized.Message(), err.Error())
			assert.Equal(t, "UNAUTHORIZED", unauthorized.ErrorCode())

			// Distinguishable reason for diagnostics.
			assert.True(t, errors.Is(err, tt.wantReason))
			assert.Equal(t, tt.wantLabel, usecase.RejectionReason(unauthorized.Reason()))
		})
	}
}

func TestSessionService_GetCurrentUser_StoreErrorIsNotAnonymous(t *testing.T) {
	svc, userRepo, tokenService := newSessionServiceWithMocks(t)
	ctx := context.Background()

	tokenService.EXPECT().Decode("tok").Return(&service.Claims{Subject: "alice"}, nil)
	userRepo.EXPECT().FindByUsername(ctx, "alice").Return(nil, errors.New("connection reset"))

	user, err := svc.GetCurrentUser(ctx, "tok")
	assert.Nil(t, user)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domainerrors.ErrUnauthorized))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", appErr.ErrorCode())
}
