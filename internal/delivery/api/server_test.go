package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"catalog/config"
	apimiddleware "catalog/internal/delivery/api/middleware"
	"catalog/internal/delivery/api/router"
	"catalog/internal/delivery/api/router/handler"
	deliverycontext "catalog/internal/delivery/context"
	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/repository"
	mockUsecase "catalog/internal/mocks/usecase"
	"catalog/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type apiMocks struct {
	auth     *mockUsecase.MockAuthUsecase
	session  *mockUsecase.MockSessionUsecase
	product  *mockUsecase.MockProductUsecase
	category *mockUsecase.MockCategoryUsecase
}

func newTestAPI(t *testing.T) (*echo.Echo, apiMocks) {
	t.Helper()

	m := apiMocks{
		auth:     mockUsecase.NewMockAuthUsecase(t),
		session:  mockUsecase.NewMockSessionUsecase(t),
		product:  mockUsecase.NewMockProductUsecase(t),
		category: mockUsecase.NewMockCategoryUsecase(t),
	}

	cfg := &config.Config{
		Auth:    &config.AuthConfig{},
		Metrics: &config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := apimiddleware.NewMetrics()

	e := newEcho(cfg, logger, metrics, router.RouterParams{
		AuthHandler:     handler.NewAuthHandler(m.auth),
		UserHandler:     handler.NewUserHandler(m.auth),
		CategoryHandler: handler.NewCategoryHandler(m.category),
		ProductHandler:  handler.NewProductHandler(m.product),
		AuthMiddleware:  apimiddleware.NewAuthMiddleware(m.session, metrics, logger),
		Metrics:         metrics,
		Config:          cfg,
	})

	return e, m
}

func serve(e *echo.Echo, method, target, contentType, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func TestAPI_Health(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := serve(e, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, env.Meta.RequestID, rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestAPI_Register(t *testing.T) {
	e, m := newTestAPI(t)
	user := &entity.User{ID: uuid.New(), Username: "alice", PasswordHash: "$2a$hash"}

	m.auth.EXPECT().Register(mock.Anything, &usecase.RegisterInput{Username: "alice", Password: "pw-123456"}).
		Return(&usecase.RegisterOutput{User: user}, nil)

	rec := serve(e, http.MethodPost, "/auth/register", echo.MIMEApplicationJSON, `{"username":"alice","password":"pw-123456"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "$2a$hash")
}

func TestAPI_Register_Errors(t *testing.T) {
	e, m := newTestAPI(t)

	rec := serve(e, http.MethodPost, "/auth/register", echo.MIMEApplicationJSON, `{"username":"alice"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, rec).Error.Code)

	m.auth.EXPECT().Register(mock.Anything, mock.Anything).
		Return(nil, domainerrors.ErrUserAlreadyExists.WrapMessage("duplicate username")).Once()
	rec = serve(e, http.MethodPost, "/auth/register", echo.MIMEApplicationJSON, `{"username":"alice","password":"pw-123456"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", decode(t, rec).Error.Code)
}

func TestAPI_Token_FormAndJSON(t *testing.T) {
	e, m := newTestAPI(t)

	m.auth.EXPECT().Login(mock.Anything, &usecase.LoginInput{Username: "alice", Password: "secret"}).
		Return(&usecase.LoginOutput{AccessToken: "a.b.c", TokenType: usecase.TokenTypeBearer, ExpiresIn: 1800}, nil).Twice()

	form := url.Values{"username": {"alice"}, "password": {"secret"}, "grant_type": {"password"}}
	requests := map[string][2]string{
		"form": {echo.MIMEApplicationForm, form.Encode()},
		"json": {echo.MIMEApplicationJSON, `{"username":"alice","password":"secret"}`},
	}

	for name, r := range requests {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/auth/token", r[0], r[1], "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))
			assert.JSONEq(t, `{"access_token":"a.b.c","token_type":"bearer","expires_in":1800}`, rec.Body.String())
		})
	}
}

func TestAPI_Token_InvalidCredentials(t *testing.T) {
	e, m := newTestAPI(t)

	m.auth.EXPECT().Login(mock.Anything, mock.Anything).Return(nil, errors.WithStack(domainerrors.ErrInvalidCredentials))

	rec := serve(e, http.MethodPost, "/auth/token", echo.MIMEApplicationJSON, `{"username":"ghost","password":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, rec).Error.Code)
}

func TestAPI_UsersMe(t *testing.T) {
	e, m := newTestAPI(t)
	user := &entity.User{ID: uuid.New(), Username: "alice"}

	m.session.EXPECT().GetCurrentUser(mock.Anything, "tok").Return(user, nil)
	m.auth.EXPECT().DeleteAccount(mock.Anything, user.ID).Return(nil)

	rec := serve(e, http.MethodGet, "/users/me", "", "", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), user.ID.String())

	rec = serve(e, http.MethodDelete, "/users/me", "", "", "tok")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodGet, "/users/me", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_ProductWritesNeedBearer(t *testing.T) {
	e, _ := newTestAPI(t)

	for _, r := range [][2]string{
		{http.MethodPost, "/products"},
		{http.MethodPatch, "/products/1"},
		{http.MethodDelete, "/products/1"},
		{http.MethodPost, "/categories"},
		{http.MethodPut, "/categories/1"},
		{http.MethodDelete, "/categories/1"},
	} {
		rec := serve(e, r[0], r[1], echo.MIMEApplicationJSON, `{}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, r)
		assert.Equal(t, "UNAUTHORIZED", decode(t, rec).Error.Code)
	}
}

func TestAPI_ListProducts_Filters(t *testing.T) {
	e, m := newTestAPI(t)
	categoryID := uint(3)
	minPrice, maxPrice := 5.0, 20.5

	m.product.EXPECT().ListProducts(mock.Anything, repository.ProductFilter{
		Name:       "dune",
		CategoryID: &categoryID,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
		Limit:      10,
		Offset:     20,
	}).Return([]*entity.Product{{ID: 1, Name: "Dune"}}, nil)

	rec := serve(e, http.MethodGet, "/products?name=dune&category_id=3&min_price=5&max_price=20.5&limit=10&offset=20", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"name":"Dune"`)
}

func TestAPI_ListProducts_BadQuery(t *testing.T) {
	e, _ := newTestAPI(t)

	for _, query := range []string{"min_price=cheap", "category_id=-1", "limit=-5"} {
		rec := serve(e, http.MethodGet, "/products?"+query, "", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Equal(t, "VALIDATION_FAILED", decode(t, rec).Error.Code)
	}
}

func TestAPI_GetProduct(t *testing.T) {
	e, m := newTestAPI(t)

	m.product.EXPECT().GetProduct(mock.Anything, uint(7)).Return(nil, errors.WithStack(domainerrors.ErrProductNotFound))

	rec := serve(e, http.MethodGet, "/products/7", "", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decode(t, rec).Error.Code)

	rec = serve(e, http.MethodGet, "/products/abc", "", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_CreateAndPatchProduct(t *testing.T) {
	e, m := newTestAPI(t)
	user := &entity.User{ID: uuid.New(), Username: "alice"}
	m.session.EXPECT().GetCurrentUser(mock.Anything, "tok").Return(user, nil)

	description := "A novel"
	m.product.EXPECT().CreateProduct(mock.Anything, &usecase.CreateProductInput{
		Name: "Dune", Description: &description, Price: 9.5, CategoryID: 3,
	}).Return(&entity.Product{ID: 1, Name: "Dune", Price: 9.5, CategoryID: 3}, nil)

	rec := serve(e, http.MethodPost, "/products", echo.MIMEApplicationJSON,
		`{"name":"Dune","description":"A novel","price":9.5,"category_id":3}`, "tok")
	assert.Equal(t, http.StatusCreated, rec.Code)

	price := 12.0
	m.product.EXPECT().UpdateProduct(mock.Anything, uint(1), entity.ProductPatch{Price: &price}).
		Return(&entity.Product{ID: 1, Name: "Dune", Price: 12, CategoryID: 3}, nil)

	rec = serve(e, http.MethodPatch, "/products/1", echo.MIMEApplicationJSON, `{"price":12}`, "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"price":12`)

	rec = serve(e, http.MethodPost, "/products", echo.MIMEApplicationJSON, `{"name":"Dune","price":-1,"category_id":3}`, "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price")

	m.product.EXPECT().CreateProduct(mock.Anything, mock.Anything).
		Return(nil, errors.WithStack(domainerrors.ErrCategoryNotFound))
	rec = serve(e, http.MethodPost, "/products", echo.MIMEApplicationJSON, `{"name":"Dune","price":1,"category_id":99}`, "tok")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", decode(t, rec).Error.Code)
}

func TestAPI_Categories(t *testing.T) {
	e, m := newTestAPI(t)
	user := &entity.User{ID: uuid.New(), Username: "alice"}
	m.session.EXPECT().GetCurrentUser(mock.Anything, "tok").Return(user, nil)

	m.category.EXPECT().ListCategories(mock.Anything, repository.CategoryFilter{Name: "bo", Limit: 5}).
		Return([]*entity.Category{{ID: 1, Name: "Books"}}, nil)
	m.category.EXPECT().CreateCategory(mock.Anything, "Books").Return(&entity.Category{ID: 1, Name: "Books"}, nil)
	m.category.EXPECT().RenameCategory(mock.Anything, uint(1), "Novels").Return(&entity.Category{ID: 1, Name: "Novels"}, nil)
	m.category.EXPECT().DeleteCategory(mock.Anything, uint(1)).Return(errors.WithStack(domainerrors.ErrCategoryInUse))

	rec := serve(e, http.MethodGet, "/categories?name=bo&limit=5", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodPost, "/categories", echo.MIMEApplicationJSON, `{"name":"Books"}`, "tok")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodPut, "/categories/1", echo.MIMEApplicationJSON, `{"name":"Novels"}`, "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), "Novels")

	rec = serve(e, http.MethodDelete, "/categories/1", "", "", "tok")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CATEGORY_IN_USE", decode(t, rec).Error.Code)
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	e, _ := newTestAPI(t)

	serve(e, http.MethodGet, "/health", "", "", "")
	rec := serve(e, http.MethodGet, "/metrics", "", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}
