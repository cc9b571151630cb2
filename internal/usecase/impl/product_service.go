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

// productService implements the ProductUsecase interface.
type productService struct {
	txManager   repository.TransactionManager
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// ProductServiceParams holds dependencies for ProductService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProductRepo repository.ProductRepository
	Logger      *slog.Logger
}

// NewProductService creates a new product service instance.
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		txManager:   params.TxManager,
		productRepo: params.ProductRepo,
		logger:      params.Logger,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateProduct adds a product to an existing category.
func (srv *productService) CreateProduct(ctx context.Context, input *usecase.CreateProductInput) (*entity.Product, error) {
	product := &entity.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		category, err := loadCategory(ctx, repoFactory.CategoryRepo(), product.CategoryID)
		if err != nil {
			return err
		}

		if err := repoFactory.ProductRepo().Create(ctx, product); err != nil {
			return mapProductError(err, "failed to create product")
		}
		product.Category = category

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create product", slog.String("name", product.Name), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Product created", slog.Uint64("productID", uint64(product.ID)))

	return product, nil
}

// GetProduct returns a single product with its category.
func (srv *productService) GetProduct(ctx context.Context, id uint) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err, "failed to find product")
	}

	return product, nil
}

// ListProducts returns the products matching filter.
func (srv *productService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, domainerrors.ErrValidationFailed.WithDetails("min_price must not exceed max_price")
	}

	products, err := srv.productRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}

// UpdateProduct applies a partial update. Moving a product requires the target category to exist.
func (srv *productService) UpdateProduct(ctx context.Context, id uint, patch entity.ProductPatch) (*entity.Product, error) {
	var updated *entity.Product

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.ProductRepo()

		product, err := productRepo.FindByID(ctx, id)
		if err != nil {
			return mapProductError(err, "failed to find product")
		}

		if patch.IsEmpty() {
			updated = product

			return nil
		}

		previousCategoryID := product.CategoryID
		patch.Apply(product)
		product.Name = strings.TrimSpace(product.Name)
		if err := validateProduct(product); err != nil {
			return err
		}

		if product.CategoryID != previousCategoryID {
			category, err := loadCategory(ctx, repoFactory.CategoryRepo(), product.CategoryID)
			if err != nil {
				return err
			}
			product.Category = category
		}

		if err := productRepo.Update(ctx, product); err != nil {
			return mapProductError(err, "failed to update product")
		}
		updated = product

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update product", slog.Uint64("productID", uint64(id)), slog.Any("error", err))

		return nil, err
	}

	return updated, nil
}

// DeleteProduct removes a product.
func (srv *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := srv.productRepo.Delete(ctx, id); err != nil {
		return mapProductError(err, "failed to delete product")
	}

	srv.log(ctx).Info("Product deleted", slog.Uint64("productID", uint64(id)))

	return nil
}

func validateProduct(product *entity.Product) error {
	if product.Name == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	}
	if product.Price < 0 {
		return domainerrors.ErrValidationFailed.WithDetails("price must not be negative")
	}
	if product.CategoryID == 0 {
		return domainerrors.ErrValidationFailed.WithDetails("category_id is required")
	}

	return nil
}

func loadCategory(ctx context.Context, categoryRepo repository.CategoryRepository, id uint) (*entity.Category, error) {
	category, err := categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapCategoryError(err, "failed to find category")
	}

	return category, nil
}

// mapProductError converts repository sentinels into application errors.
func mapProductError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return errors.WithStack(domainerrors.ErrProductNotFound)
	case errors.Is(err, repository.ErrCategoryNotFound):
		return errors.WithStack(domainerrors.ErrCategoryNotFound)
	default:
		return errors.Wrap(err, message)
	}
}
