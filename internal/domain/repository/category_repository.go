package repository

import (
	"context"
	"errors"

	"catalog/internal/domain/entity"
)

var (
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryInUse is returned when deleting a category that products still reference.
	ErrCategoryInUse = errors.New("category in use")
)

// CategoryFilter narrows category listings. Zero values mean "no constraint".
type CategoryFilter struct {
	Name   string // case-insensitive substring
	Limit  int
	Offset int
}

// CategoryRepository defines the persistence operations for categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uint) error
}
