package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "catalog/internal/delivery/context"
	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	contextKeyUser = "currentUser"
	bearerScheme   = "bearer"
)

// AuthMiddleware resolves bearer tokens to the current user.
type AuthMiddleware struct {
	sessions usecase.SessionUsecase
	metrics  *Metrics
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessions usecase.SessionUsecase, metrics *Metrics, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, metrics: metrics, logger: logger}
}

// Authenticate rejects the request with 401 unless it carries a bearer token for an existing user.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Debug("Request without bearer token",
				slog.String("path", c.Request().URL.Path),
			)
			m.observeRejection(usecase.ErrMissingBearer)

			return domainerrors.NewUnauthorizedError(usecase.ErrMissingBearer)
		}

		user, err := m.sessions.GetCurrentUser(ctx, token)
		if err != nil {
			var unauthorized *domainerrors.UnauthorizedError
			if errors.As(err, &unauthorized) {
				m.observeRejection(unauthorized.Reason())
			}

			return errors.WithStack(err)
		}

		c.Set(contextKeyUser, user)

		return next(c)
	}
}

func (m *AuthMiddleware) observeRejection(reason error) {
	if m.metrics != nil {
		m.metrics.ObserveSessionRejection(usecase.RejectionReason(reason))
	}
}

// GetCurrentUser retrieves the user set by Authenticate.
func GetCurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(contextKeyUser).(*entity.User)

	return user, ok && user != nil
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>" header.
// The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}
