package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromAppConfig_ProductionForcesJSON(t *testing.T) {
	cfg := FromAppConfig(config.LogConfig{Level: "debug", Format: "console", Output: "stdout"}, "production")
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.Level)

	cfg = FromAppConfig(config.LogConfig{Format: "console"}, "development")
	assert.Equal(t, "console", cfg.Format)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("PO sent", zap.String("po_code", "PO00001"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"po_code":"PO00001"`)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestL_CarriesRequestFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-1")
	ctx, _ = WithActor(ctx, FromContext(ctx), "u-9", "nhan_vien_mh")

	L(ctx).Info("quota consumed")

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "u-9", fields["user_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestWithActor(t *testing.T) {
	base, _ := WithRequestID(context.Background(), zap.NewNop(), "req-2")
	ctx, l := WithActor(base, zap.NewNop(), "u-1", "giam_doc")
	assert.NotNil(t, l)
	assert.Equal(t, "u-1", GetUserID(ctx))
	assert.Equal(t, "giam_doc", GetRole(ctx))
	assert.Equal(t, "req-2", GetRequestID(ctx), "earlier fields survive")
	assert.Same(t, l, FromContext(ctx))
	assert.Empty(t, GetUserID(base), "parent context is unchanged")
	assert.Empty(t, GetTraceID(ctx))
}

func TestFromContext_OutsideRequest(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestZapConfig(t *testing.T) {
	zc := zapConfig(&Config{Level: "warn", Format: "console"})
	assert.Equal(t, "console", zc.Encoding)
	assert.Equal(t, []string{"stdout"}, zc.OutputPaths)
	assert.Equal(t, zapcore.WarnLevel, zc.Level.Level())

	zc = zapConfig(&Config{Format: "json", Output: "stderr"})
	assert.Equal(t, "json", zc.Encoding)
	assert.Equal(t, []string{"stderr"}, zc.OutputPaths)
	assert.Equal(t, "time", zc.EncoderConfig.TimeKey)
}
