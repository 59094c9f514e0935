package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates JSON logger", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")
		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text formatter option", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("includes default attributes", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("svc", "test")))
		log.Info("msg")
		assert.Equal(t, "test", decode(t, buf)["svc"])
	})

	t.Run("respects level", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("adds attributes carried by context", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		ctx := logger.ContextWith(context.Background(), slog.String("flow_id", "flow-1"))
		ctx = logger.ContextWith(ctx, logger.Attempt(3, "c0ffee"))
		log.With(logger.Component("gateway")).InfoContext(ctx, "context msg")

		entry := decode(t, buf)
		assert.Equal(t, "flow-1", entry["flow_id"])
		assert.Equal(t, "gateway", entry["component"])
		require.IsType(t, map[string]any{}, entry["attempt"])
	})

	t.Run("context attributes do not leak between records", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.InfoContext(logger.ContextWith(context.Background(), slog.Int("n", 1)), "first")
		buf.Reset()
		log.Info("second")
		assert.NotContains(t, decode(t, buf), "n")
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env      string
		wantEnv  string
		wantJSON bool
	}{
		{"production", logger.EnvProduction, true},
		{"prod", logger.EnvProduction, true},
		{"stage", logger.EnvStaging, true},
		{"local", logger.EnvDevelopment, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			log := logger.New(logger.WithEnvironment(tt.env, "phoneauth"), logger.WithOutput(buf))
			log.Info("boot")
			if tt.wantJSON {
				entry := decode(t, buf)
				assert.Equal(t, tt.wantEnv, entry["env"])
				assert.Equal(t, "phoneauth", entry["service"])
				return
			}
			assert.Contains(t, buf.String(), "env="+tt.wantEnv)
		})
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.False(t, logger.Discard().Enabled(context.Background(), slog.LevelError))
}

func TestContextWith(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.Equal(t, ctx, logger.ContextWith(ctx))
	assert.Empty(t, logger.FromContext(ctx))

	parent := logger.ContextWith(ctx, slog.String("a", "1"))
	child := logger.ContextWith(parent, slog.String("b", "2"))
	assert.Len(t, logger.FromContext(parent), 1)
	assert.Len(t, logger.FromContext(child), 2)
}

func TestWithFormatPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
