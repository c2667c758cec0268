package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestStructuredLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("climate-api", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	ctx := WithRequestID(context.Background(), "req-1")
	logger.Info(ctx, "[TEST] hello", Fields{"year": 2000})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "INFO", e["level"])
	assert.Equal(t, "[TEST] hello", e["message"])
	assert.Equal(t, "climate-api", e["service"])
	assert.Equal(t, "1.0.0", e["version"])
	assert.Equal(t, "req-1", e["request_id"])
	assert.Equal(t, float64(2000), e["year"])
	assert.Contains(t, e, "timestamp")
}

func TestStructuredLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1", WarnLevel)
	logger.SetOutput(&buf)

	logger.Debug(context.Background(), "debug", Fields{})
	logger.Info(context.Background(), "info", Fields{})
	logger.Warn(context.Background(), "warn", Fields{})
	assert.Len(t, decodeLines(t, &buf), 1)

	logger.SetLevel(DebugLevel)
	logger.Debug(context.Background(), "debug", Fields{})
	assert.Len(t, decodeLines(t, &buf), 2)
}

func TestStructuredLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1", InfoLevel)
	logger.SetOutput(&buf)

	logger.Error(context.Background(), "[FAIL] boom", Fields{"stage": "x"}, errors.New("disk full"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, "disk full", entries[0]["error"])
	assert.Contains(t, entries[0]["caller"], "logger_test.go")
}

func TestContextLogger_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1", InfoLevel)
	logger.SetOutput(&buf)

	scoped := logger.WithFields(Fields{"component": "simulation", "kind": "series"})
	scoped.Info(context.Background(), "msg", Fields{"kind": "field"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "simulation", entries[0]["component"])
	assert.Equal(t, "field", entries[0]["kind"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("info"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, "FATAL", FatalLevel.String())
}
