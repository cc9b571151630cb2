package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "catalog/internal/delivery/context"
	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/repository"
	"catalog/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// categoryService implements the CategoryUsecase interface.
type categoryService struct {
	txManager    repository.TransactionManager
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

// CategoryServiceParams holds dependencies for CategoryService, injected by Fx.
type CategoryServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	CategoryRepo repository.CategoryRepository
	Logger       *slog.Logger
}

// NewCategoryService creates a new category service instance.
func NewCategoryService(params CategoryServiceParams) usecase.CategoryUsecase {
	return &categoryService{
		txManager:    params.TxManager,
		categoryRepo: params.CategoryRepo,
		logger:       params.Logger,
	}
}

func (srv *categoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateCategory adds a new category.
func (srv *categoryService) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("name is required")
	}

	category := &entity.Category{Name: name}
	if err := srv.categoryRepo.Create(ctx, category); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}

	srv.log(ctx).Info("Category created", slog.Uint64("categoryID", uint64(category.ID)))

	return category, nil
}

// GetCategory returns a single category.
func (srv *categoryService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapCategoryError(err, "failed to find category")
	}

	return category, nil
}

// ListCategories returns the categories matching filter.
func (srv *categoryService) ListCategories(ctx context.Context, filter repository.CategoryFilter) ([]*entity.Category, error) {
	categories, err := srv.categoryRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	return categories, nil
}

// RenameCategory changes the name of an existing category.
func (srv *categoryService) RenameCategory(ctx context.Context, id uint, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("name is required")
	}

	var renamed *entity.Category
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		category, err := categoryRepo.FindByID(ctx, id)
		if err != nil {
			return mapCategoryError(err, "failed to find category")
		}

		category.Name = name
		if err := categoryRepo.Update(ctx, category); err != nil {
			return mapCategoryError(err, "failed to update category")
		}
		renamed = category

		return nil
	})
	if err != nil {
		return nil, err
	}

	return renamed, nil
}

// DeleteCategory removes a category that no product references.
func (srv *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	if err := srv.categoryRepo.Delete(ctx, id); err != nil {
		srv.log(ctx).Warn("Failed to delete category", slog.Uint64("categoryID", uint64(id)), slog.Any("error", err))

		return mapCategoryError(err, "failed to delete category")
	}

	srv.log(ctx).Info("Category deleted", slog.Uint64("categoryID", uint64(id)))

	return nil
}

// mapCategoryError converts repository sentinels into application errors.
func mapCategoryError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return errors.WithStack(domainerrors.ErrCategoryNotFound)
	case errors.Is(err, repository.ErrCategoryInUse):
		return errors.WithStack(domainerrors.ErrCategoryInUse)
	default:
		return errors.Wrap(err, message)
	}
}
