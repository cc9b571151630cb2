// Package handler contains the HTTP handlers for the catalog API.
package handler

import (
	"net/http"

	"catalog/internal/delivery/api/response"
	domainerrors "catalog/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// bindAndValidate binds the request into req and runs the echo validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("request body is not valid")
	}

	return errors.WithStack(c.Validate(req))
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil || id == 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails("id: must be a positive integer")
	}

	return id, nil
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

func invalidQuery(err error) error {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) && bindErr.Field != "" {
		return domainerrors.ErrValidationFailed.WithDetails(bindErr.Field + ": invalid value")
	}

	return domainerrors.ErrValidationFailed.WithDetails("invalid query parameters")
}

func validatePage(limit, offset int) error {
	if limit < 0 {
		return domainerrors.ErrValidationFailed.WithDetails("limit: must not be negative")
	}
	if offset < 0 {
		return domainerrors.ErrValidationFailed.WithDetails("offset: must not be negative")
	}

	return nil
}
