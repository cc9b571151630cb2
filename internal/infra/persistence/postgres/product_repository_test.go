package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{"id", "name", "description", "price", "category_id", "created_at", "updated_at"}

func TestProductRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE "products"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(11, "Dune", "A novel", 9.5, 3, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE "categories"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(3, "Books", now, now))

	product, err := repo.FindByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "Dune", product.Name)
	require.NotNil(t, product.Description)
	assert.Equal(t, "A novel", *product.Description)
	assert.InDelta(t, 9.5, product.Price, 0.0001)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Books", product.Category.Name)
}

func TestProductRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := repo.FindByID(context.Background(), 404)
	assert.True(t, errors.Is(err, repository.ErrProductNotFound))
}

func TestProductRepository_List_AppliesEveryFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	now := time.Now().UTC()

	categoryID := uint(3)
	minPrice, maxPrice := 5.0, 20.0

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "products" WHERE name ILIKE $1 AND category_id = $2 AND price >= $3 AND price <= $4 ORDER BY id LIMIT`,
	)).WillReturnRows(sqlmock.NewRows(productColumns).
		AddRow(1, "Dune", nil, 9.5, 3, now, now).
		AddRow(2, "Dune Messiah", nil, 11, 3, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE "categories"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(3, "Books", now, now))

	products, err := repo.List(context.Background(), repository.ProductFilter{
		Name:       "dune",
		CategoryID: &categoryID,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
		Limit:      10,
		Offset:     20,
	})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Nil(t, products[0].Description)
	assert.Equal(t, "Books", products[1].Category.Name)
}

func TestProductRepository_List_NoFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" ORDER BY id LIMIT`)).
		WillReturnRows(sqlmock.NewRows(productColumns))

	products, err := repo.List(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	product := &entity.Product{Name: "Dune", Price: 9.5, CategoryID: 3}
	require.NoError(t, repo.Create(context.Background(), product))
	assert.Equal(t, uint(11), product.ID)
}

// exactFloat matches a bound float64 argument without rounding.
type exactFloat float64

func (f exactFloat) Match(v driver.Value) bool {
	got, ok := v.(float64)

	return ok && got == float64(f)
}

func TestProductRepository_PriceKeepsFullPrecision(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), exactFloat(19.999), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	product := &entity.Product{Name: "Dune", Price: 19.999, CategoryID: 3}
	require.NoError(t, repo.Create(context.Background(), product))

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(12, "Dune", nil, 19.999, 3, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(3, "Books", now, now))

	stored, err := repo.FindByID(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 19.999, stored.Price)
	assert.Equal(t, product.Price, stored.Price)
}

func TestProductRepository_Create_TranslatesConstraintErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{name: "missing category", code: pgErrForeignKeyViolation, wantErr: repository.ErrCategoryNotFound},
		{name: "negative price", code: pgErrCheckViolation, wantErr: domainerrors.ErrValidationFailed},
		{name: "price out of range", code: pgErrNumericOutOfRange, wantErr: domainerrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewProductRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "products"`)).
				WillReturnError(&pgconn.PgError{Code: tt.code})

			err := repo.Create(context.Background(), &entity.Product{Name: "Dune", Price: 1, CategoryID: 99})
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestProductRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), &entity.Product{ID: 11, Name: "Dune", Price: 12, CategoryID: 3}))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &entity.Product{ID: 12, Name: "Gone", CategoryID: 3})
	assert.True(t, errors.Is(err, repository.ErrProductNotFound))
}

func TestProductRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE "products"."id" = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 11))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, errors.Is(repo.Delete(context.Background(), 11), repository.ErrProductNotFound))
}
