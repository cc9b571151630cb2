package handler

import (
	"net/http"

	"catalog/internal/delivery/api/middleware"
	"catalog/internal/delivery/api/response"
	"catalog/internal/domain/entity"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler serves the endpoints about the authenticated user.
type UserHandler struct {
	uc usecase.AuthUsecase
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.AuthUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, user)
}

// DeleteMe deletes the authenticated user's account. Tokens issued for it stop working.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteAccount(c.Request().Context(), user.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

func currentUser(c echo.Context) (*entity.User, error) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return nil, errors.New("current user missing from request context")
	}

	return user, nil
}
