package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog/internal/delivery/api/response"
	"catalog/internal/domain/entity"
	domainerrors "catalog/internal/domain/errors"
	"catalog/internal/domain/service"
	mockUsecase "catalog/internal/mocks/usecase"
	"catalog/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newProtectedEcho mounts GET /me behind Authenticate with the real error handler.
func newProtectedEcho(t *testing.T) (*echo.Echo, *mockUsecase.MockSessionUsecase, *Metrics) {
	t.Helper()

	sessions := mockUsecase.NewMockSessionUsecase(t)
	metrics := NewMetrics()
	auth := NewAuthMiddleware(sessions, metrics, discardLogger())

	e := echo.New()
	e.HTTPErrorHandler = NewErrorMiddleware(discardLogger()).HandleHTTPError
	e.GET("/me", func(c echo.Context) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return errors.New("user missing from context")
		}

		return response.Success(c, http.StatusOK, user)
	}, auth.Authenticate)

	return e, sessions, metrics
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *response.ErrorInfo {
	t.Helper()

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)

	return body.Error
}

func TestAuthMiddleware_AuthenticatesBearer(t *testing.T) {
	e, sessions, _ := newProtectedEcho(t)
	user := &entity.User{ID: uuid.New(), Username: "alice"}

	sessions.EXPECT().GetCurrentUser(mock.Anything, "abc.def.ghi").Return(user, nil)

	for _, header := range []string{"Bearer abc.def.ghi", "bearer abc.def.ghi", "  Bearer   abc.def.ghi "} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, header)
		assert.Contains(t, rec.Body.String(), `"username":"alice"`)
		assert.NotContains(t, rec.Body.String(), "password")
	}
}

func TestAuthMiddleware_RejectsMissingOrIllFormedHeader(t *testing.T) {
	e, _, metrics := newProtectedEcho(t)

	headers := []string{"", "Bearer", "Bearer ", "Basic dXNlcjpwYXNz", "Token abc", "Bearer a b"}
	for _, header := range headers {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
	}

	assert.InDelta(t, float64(len(headers)), testutil.ToFloat64(metrics.sessionRejections.WithLabelValues("missing_bearer")), 0)
}

func TestAuthMiddleware_RejectionsLookTheSame(t *testing.T) {
	reasons := map[string]error{
		"malformed":         service.ErrTokenMalformed,
		"invalid_signature": service.ErrTokenSignatureInvalid,
		"expired":           service.ErrTokenExpired,
		"subject_missing":   usecase.ErrSubjectMissing,
		"unknown_subject":   usecase.ErrUnknownSubject,
	}

	var bodies []string
	for label, reason := range reasons {
		t.Run(label, func(t *testing.T) {
			e, sessions, metrics := newProtectedEcho(t)
			sessions.EXPECT().GetCurrentUser(mock.Anything, "tok").Return(nil, domainerrors.NewUnauthorizedError(reason))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

			info := decodeError(t, rec)
			assert.Equal(t, "UNAUTHORIZED", info.Code)
			assert.Nil(t, info.Details)
			bodies = append(bodies, info.Message)

			assert.InDelta(t, 1, testutil.ToFloat64(metrics.sessionRejections.WithLabelValues(label)), 0)
		})
	}

	for _, body := range bodies {
		assert.Equal(t, bodies[0], body)
	}
}

func TestAuthMiddleware_StoreFailureIsServerError(t *testing.T) {
	e, sessions, _ := newProtectedEcho(t)
	sessions.EXPECT().GetCurrentUser(mock.Anything, "tok").
		Return(nil, domainerrors.NewDatabaseExecuteError(errors.New("conn refused"), "failed to load session user"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", decodeError(t, rec).Code)
	assert.NotContains(t, rec.Body.String(), "conn refused")
}

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails any
	}{
		{
			name:        "app error with details",
			err:         errors.WithStack(domainerrors.ErrPasswordStrength.WithDetails("password must be at least 8 characters long")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "PASSWORD_STRENGTH",
			wantDetails: "password must be at least 8 characters long",
		},
		{name: "not found", err: errors.WithStack(domainerrors.ErrProductNotFound), wantStatus: http.StatusNotFound, wantCode: "PRODUCT_NOT_FOUND"},
		{name: "conflict", err: domainerrors.ErrCategoryInUse, wantStatus: http.StatusConflict, wantCode: "CATEGORY_IN_USE"},
		{name: "echo error", err: echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), wantStatus: http.StatusMethodNotAllowed, wantCode: "HTTP_ERROR"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	handler := NewErrorMiddleware(discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			info := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.wantDetails, info.Details)
			assert.NotContains(t, rec.Body.String(), "boom")
		})
	}
}

func TestErrorMiddleware_InvalidCredentialsChallenge(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/token", nil), rec)

	NewErrorMiddleware(discardLogger()).HandleHTTPError(errors.WithStack(domainerrors.ErrInvalidCredentials), c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, rec).Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "BEARER abc", want: "abc", ok: true},
		{header: "Bearer  abc ", want: "abc", ok: true},
		{header: "", ok: false},
		{header: "Bearer", ok: false},
		{header: "Basic abc", ok: false},
		{header: "Bearer a b", ok: false},
	}

	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
