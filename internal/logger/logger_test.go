package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupWriterAndWith(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")
	With("run_id", "r-1")

	L().Info("hidden")
	L().Warn("ring_too_short", "code", "FR")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"ring_too_short"`)
	assert.Contains(t, out, `"run_id":"r-1"`)
	assert.Contains(t, out, `"code":"FR"`)
}
