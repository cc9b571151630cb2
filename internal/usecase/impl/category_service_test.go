package impl

import (
	"context"
	"testing"

	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/repository"
	mockRepo "catalog/internal/mocks/repository"
	"catalog/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCategoryServiceWithMocks(t *testing.T) (usecase.CategoryUsecase, *mockRepo.MockTransactionManager, *mockRepo.MockCategoryRepository) {
	txManager := mockRepo.NewMockTransactionManager(t)
	categoryRepo := mockRepo.NewMockCategoryRepository(t)

	svc := NewCategoryService(CategoryServiceParams{
		TxManager:    txManager,
		CategoryRepo: categoryRepo,
		Logger:       discardLogger(),
	})

	return svc, txManager, categoryRepo
}

func TestCategoryService_CreateCategory(t *testing.T) {
	svc, _, categoryRepo := newCategoryServiceWithMocks(t)
	ctx := context.Background()

	categoryRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Category")).
		Run(func(_ context.Context, c *entity.Category) {
			assert.Equal(t, "Books", c.Name)
			c.ID = 5
		}).
		Return(nil)

	category, err := svc.CreateCategory(ctx, " Books ")
	require.NoError(t, err)
	assert.Equal(t, uint(5), category.ID)

	_, err = svc.CreateCategory(ctx, "   ")
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestCategoryService_GetCategory_NotFound(t *testing.T) {
	svc, _, categoryRepo := newCategoryServiceWithMocks(t)
	ctx := context.Background()

	categoryRepo.EXPECT().FindByID(ctx, uint(9)).Return(nil, repository.ErrCategoryNotFound)

	_, err := svc.GetCategory(ctx, 9)
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryNotFound))
}

func TestCategoryService_ListCategories(t *testing.T) {
	svc, _, categoryRepo := newCategoryServiceWithMocks(t)
	ctx := context.Background()
	filter := repository.CategoryFilter{Name: "bo", Limit: 5}

	categoryRepo.EXPECT().List(ctx, filter).Return([]*entity.Category{{ID: 1, Name: "Books"}}, nil)

	categories, err := svc.ListCategories(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCategoryService_RenameCategory(t *testing.T) {
	svc, txManager, categoryRepo := newCategoryServiceWithMocks(t)
	ctx := context.Background()

	expectTx(t, txManager, nil, categoryRepo)
	categoryRepo.EXPECT().FindByID(ctx, uint(1)).Return(&entity.Category{ID: 1, Name: "Books"}, nil)
	categoryRepo.EXPECT().Update(ctx, mock.AnythingOfType("*entity.Category")).Return(nil)

	category, err := svc.RenameCategory(ctx, 1, "Novels")
	require.NoError(t, err)
	assert.Equal(t, "Novels", category.Name)
}

func TestCategoryService_RenameCategory_NotFound(t *testing.T) {
	svc, txManager, categoryRepo := newCategoryServiceWithMocks(t)
	ctx := context.Background()

	expectTx(t, txManager, nil, categoryRepo)
	categoryRepo.EXPECT().FindByID(ctx, uint(1)).Return(nil, repository.ErrCategoryNotFound)

	_, err := svc.RenameCategory(ctx, 1, "Novels")
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryNotFound))
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	svc, _, categoryRepo := newCategoryServiceWithMocks(t)
	ctx := context.Background()

	categoryRepo.EXPECT().Delete(ctx, uint(1)).Return(nil)
	categoryRepo.EXPECT().Delete(ctx, uint(2)).Return(repository.ErrCategoryInUse)
	categoryRepo.EXPECT().Delete(ctx, uint(3)).Return(repository.ErrCategoryNotFound)

	require.NoError(t, svc.DeleteCategory(ctx, 1))
	assert.True(t, errors.Is(svc.DeleteCategory(ctx, 2), domainerrors.ErrCategoryInUse))
	assert.True(t, errors.Is(svc.DeleteCategory(ctx, 3), domainerrors.ErrCategoryNotFound))
}
