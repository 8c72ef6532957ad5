package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warning "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestInit_JSONFormatAndComponentTag(t *testing.T) {
	var buf bytes.Buffer
	Init("json", "debug", &buf)

	L("walker").Debug("visited", "path", "/x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "walker", entry["component"])
	assert.Equal(t, "visited", entry["msg"])
	assert.Equal(t, "/x", entry["path"])
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init("text", "warn", &buf)

	L("x").Info("quiet")
	assert.Zero(t, buf.Len())
	L("x").Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
