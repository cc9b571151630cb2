package handler

import (
	"net/http"

	"catalog/internal/delivery/api/response"
	"catalog/internal/domain/repository"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CategoryHandler holds dependencies for category endpoints.
type CategoryHandler struct {
	uc usecase.CategoryUsecase
}

// NewCategoryHandler is the constructor for CategoryHandler, injected by Fx.
func NewCategoryHandler(uc usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

// ListCategories handles GET /categories?name=&limit=&offset=.
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	var filter repository.CategoryFilter
	err := echo.QueryParamsBinder(c).
		String("name", &filter.Name).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()
	if err != nil {
		return invalidQuery(err)
	}
	if err := validatePage(filter.Limit, filter.Offset); err != nil {
		return err
	}

	categories, err := h.uc.ListCategories(c.Request().Context(), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, categories)
}

// GetCategory handles GET /categories/:id.
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	category, err := h.uc.GetCategory(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, category)
}

// CreateCategory handles POST /categories.
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.uc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, category)
}

// RenameCategory handles PUT /categories/:id.
func (h *CategoryHandler) RenameCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.uc.RenameCategory(c.Request().Context(), id, req.Name)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/:id.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteCategory(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}
