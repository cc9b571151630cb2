package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"catalog/internal/domain/repository"
	mockRepo "catalog/internal/mocks/repository"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// expectTx makes txManager run the callback against a factory that hands out the given repositories.
// Nil repositories are not registered on the factory.
func expectTx(
	t *testing.T,
	txManager *mockRepo.MockTransactionManager,
	productRepo *mockRepo.MockProductRepository,
	categoryRepo *mockRepo.MockCategoryRepository,
) {
	t.Helper()

	txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			if productRepo != nil {
				factory.EXPECT().ProductRepo().Return(productRepo).Maybe()
			}
			if categoryRepo != nil {
				factory.EXPECT().CategoryRepo().Return(categoryRepo).Maybe()
			}

			return fn(factory)
		})
}
