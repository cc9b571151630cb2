package middleware

import (
	"net/http"
	"time"

	"catalog/config"
	"catalog/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const rateLimitExpiry = 5 * time.Minute

// NewLoginRateLimiter limits token requests per client IP.
// It returns a pass-through middleware when auth.loginRateLimit is zero.
func NewLoginRateLimiter(cfg *config.Config) echo.MiddlewareFunc {
	if cfg == nil || cfg.Auth == nil || cfg.Auth.LoginRateLimit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	burst := cfg.Auth.LoginRateBurst
	if burst <= 0 {
		burst = int(cfg.Auth.LoginRateLimit) + 1
	}

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.Auth.LoginRateLimit),
		Burst:     burst,
		ExpiresIn: rateLimitExpiry,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return response.Error(c, http.StatusForbidden, "RATE_LIMIT_IDENTIFIER", "Unable to identify client", nil)
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many token requests, slow down", nil)
		},
	})
}
