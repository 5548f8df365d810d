package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "warn", Format: "json", Output: &buf})

	logger.Info("hidden")
	logger.Warn("compile failed", slog.Int("error_count", 2))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "compile failed", record["msg"])
	assert.Equal(t, float64(2), record["error_count"])
}

func TestNewLogger_MirrorReceivesRecords(t *testing.T) {
	var out, mirror bytes.Buffer
	logger := NewLogger(Config{Level: "debug", Format: "text", Output: &out, Mirror: &mirror})

	logger.WithRequestID("req-1").WithFields("stage", "plan").Debug("stage finished")

	assert.Contains(t, out.String(), "request_id=req-1")
	assert.Contains(t, out.String(), "stage=plan")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(mirror.Bytes()), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "plan", record["stage"])
}

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx).Logger)
	assert.Equal(t, "", GetRequestID(ctx))

	logger := NewLogger(Config{Output: &bytes.Buffer{}})
	ctx = WithLogger(ctx, logger)
	ctx = WithRequestIDContext(ctx, "req-2")

	assert.Same(t, logger, FromContext(ctx))
	assert.Equal(t, "req-2", GetRequestID(ctx))
}
