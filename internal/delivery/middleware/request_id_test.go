package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	deliverycontext "catalog/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware_Process(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewRequestIDMiddleware(logger)

	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generated", incoming: ""},
		{name: "propagated", incoming: "client-supplied-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seenID string
			err := mw.Process(func(c echo.Context) error {
				ctx := c.Request().Context()
				seenID = deliverycontext.GetRequestIDFromContext(ctx)
				deliverycontext.GetLoggerOrDefault(ctx, nil).Info("inside handler")

				return nil
			})(c)
			require.NoError(t, err)

			require.NotEmpty(t, seenID)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seenID)
			}
			assert.Equal(t, seenID, rec.Header().Get(deliverycontext.HeaderXRequestID))
			assert.Equal(t, seenID, deliverycontext.GetRequestID(c))
			assert.Contains(t, buf.String(), `"request_id":"`+seenID+`"`)
		})
	}
}

func TestRequestIDMiddleware_RejectsUnsafeIDs(t *testing.T) {
	mw := NewRequestIDMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	for _, incoming := range []string{"has space", "line\nbreak", strings.Repeat("a", maxRequestIDLength+1)} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(deliverycontext.HeaderXRequestID, incoming)
		rec := httptest.NewRecorder()

		require.NoError(t, mw.Process(func(echo.Context) error { return nil })(e.NewContext(req, rec)))

		got := rec.Header().Get(deliverycontext.HeaderXRequestID)
		assert.NotEqual(t, incoming, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	}
}
