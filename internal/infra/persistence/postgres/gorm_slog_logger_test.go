package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"catalog/config"
	deliverycontext "catalog/internal/delivery/context"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestGormLogger(buf *bytes.Buffer, debug bool) *gormSlogLogger {
	cfg := &config.Config{}
	cfg.Env.Debug = debug
	base := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l, ok := newGormSlogLogger(base, cfg).(*gormSlogLogger)
	if !ok {
		panic("unexpected gorm logger type")
	}
	l.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC) }

	return l
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}

	return lines
}

func sqlFn(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormSlogLogger_Trace(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fast := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC).Add(-time.Millisecond)

	tests := []struct {
		name    string
		debug   bool
		begin   time.Time
		err     error
		wantMsg string
	}{
		{name: "failure", begin: fast, err: errors.New("boom"), wantMsg: "GORM query failed"},
		{name: "slow", begin: started, wantMsg: "GORM slow query"},
		{name: "fast in warn mode", begin: fast},
		{name: "record not found", begin: fast, err: gorm.ErrRecordNotFound},
		{name: "fast in debug mode", debug: true, begin: fast, wantMsg: "GORM query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := newTestGormLogger(&buf, tt.debug)

			l.Trace(context.Background(), tt.begin, sqlFn("SELECT 1"), tt.err)

			lines := logLines(t, &buf)
			if tt.wantMsg == "" {
				assert.Empty(t, lines)

				return
			}
			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantMsg, lines[0]["msg"])
			assert.Equal(t, "SELECT 1", lines[0]["sql"])
		})
	}
}

func TestGormSlogLogger_UsesRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	l := newTestGormLogger(&base, false)

	reqLogger := slog.New(slog.NewJSONHandler(&scoped, nil)).With(slog.String("request_id", "req-1"))
	ctx := deliverycontext.WithLogger(context.Background(), reqLogger)

	l.Warn(ctx, "pool %s", "exhausted")

	assert.Empty(t, base.String())
	lines := logLines(t, &scoped)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "pool exhausted", lines[0]["message"])
}

func TestGormSlogLogger_LogModeSilences(t *testing.T) {
	var buf bytes.Buffer
	l := newTestGormLogger(&buf, true)

	silent := l.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "ignored")
	silent.Trace(context.Background(), time.Time{}, sqlFn("SELECT 1"), errors.New("boom"))

	assert.Empty(t, buf.String())
}
