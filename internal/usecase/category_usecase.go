package usecase

import (
	"context"

	"catalog/internal/domain/entity"
	"catalog/internal/domain/repository"
)

// CategoryUsecase defines the catalog operations on categories.
type CategoryUsecase interface {
	CreateCategory(ctx context.Context, name string) (*entity.Category, error)
	GetCategory(ctx context.Context, id uint) (*entity.Category, error)
	ListCategories(ctx context.Context, filter repository.CategoryFilter) ([]*entity.Category, error)
	RenameCategory(ctx context.Context, id uint, name string) (*entity.Category, error)
	// DeleteCategory fails with ErrCategoryInUse while products still reference the category.
	DeleteCategory(ctx context.Context, id uint) error
}
