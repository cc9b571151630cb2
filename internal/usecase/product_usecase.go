package usecase

import (
	"context"

	"catalog/internal/domain/entity"
	"catalog/internal/domain/repository"
)

// CreateProductInput defines the data required to add a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       float64
	CategoryID  uint
}

// ProductUsecase defines the catalog operations on products.
type ProductUsecase interface {
	CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error)
	GetProduct(ctx context.Context, id uint) (*entity.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error)
	UpdateProduct(ctx context.Context, id uint, patch entity.ProductPatch) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}
