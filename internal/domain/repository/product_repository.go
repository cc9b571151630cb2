package repository

import (
	"context"
	"errors"

	"catalog/internal/domain/entity"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ProductFilter narrows product listings. Nil pointers and zero values mean "no constraint".
type ProductFilter struct {
	Name       string // case-insensitive substring
	CategoryID *uint
	MinPrice   *float64
	MaxPrice   *float64
	Limit      int
	Offset     int
}

// ProductRepository defines the persistence operations for products.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uint) error
}
