package handler

import (
	"net/http"

	"catalog/internal/delivery/api/response"
	"catalog/internal/domain/entity"
	"catalog/internal/domain/repository"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type createProductRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	CategoryID  uint     `json:"category_id" validate:"required"`
}

// updateProductRequest is a partial update; absent fields are left untouched.
type updateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	CategoryID  *uint    `json:"category_id" validate:"omitempty,gt=0"`
}

// ProductHandler holds dependencies for product endpoints.
type ProductHandler struct {
	uc usecase.ProductUsecase
}

// NewProductHandler is the constructor for ProductHandler, injected by Fx.
func NewProductHandler(uc usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// ListProducts handles GET /products with the name, category_id, min_price,
// max_price, limit and offset query filters.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	products, err := h.uc.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, products)
}

// GetProduct handles GET /products/:id.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product)
}

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.uc.CreateProduct(c.Request().Context(), &usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, product)
}

// UpdateProduct handles PATCH /products/:id.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.uc.UpdateProduct(c.Request().Context(), id, entity.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

func productFilter(c echo.Context) (repository.ProductFilter, error) {
	var (
		filter     repository.ProductFilter
		categoryID uint
		minPrice   float64
		maxPrice   float64
	)

	err := echo.QueryParamsBinder(c).
		String("name", &filter.Name).
		Uint("category_id", &categoryID).
		Float64("min_price", &minPrice).
		Float64("max_price", &maxPrice).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()
	if err != nil {
		return filter, invalidQuery(err)
	}

	if c.QueryParam("category_id") != "" {
		filter.CategoryID = &categoryID
	}
	if c.QueryParam("min_price") != "" {
		filter.MinPrice = &minPrice
	}
	if c.QueryParam("max_price") != "" {
		filter.MaxPrice = &maxPrice
	}

	return filter, validatePage(filter.Limit, filter.Offset)
}
