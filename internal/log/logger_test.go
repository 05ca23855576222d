package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	logger = nil
	closer = nil
	once = *new(sync.Once)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestSetup(t *testing.T) {
	reset()
	Setup("DEBUG")
	require.NotNil(t, logger)
}

func TestSetupWithFileWritesRotatingFile(t *testing.T) {
	reset()
	path := filepath.Join(t.TempDir(), "logs", "biobridge.log")
	SetupWithFile("INFO", FileOptions{Path: path})
	t.Cleanup(func() {
		_ = Close()
		reset()
	})

	Info("to file", "k", "v")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger = newLogger(&buf, "info")

	WithComponent("session").Info("hello")

	out := decodeLine(t, &buf)
	assert.Equal(t, "session", out["component"])
	assert.Equal(t, "hello", out["msg"])
}

func TestWithCommand(t *testing.T) {
	var buf bytes.Buffer
	logger = newLogger(&buf, "info")

	WithCommand("42", "get_log").Info("cmd msg")

	out := decodeLine(t, &buf)
	assert.Equal(t, "42", out["command_id"])
	assert.Equal(t, "get_log", out["kind"])
}

func TestWithCycle(t *testing.T) {
	var buf bytes.Buffer
	logger = newLogger(&buf, "info")

	WithCycle("c-1").Info("cycle msg")

	out := decodeLine(t, &buf)
	assert.Equal(t, "c-1", out["cycle_id"])
}
