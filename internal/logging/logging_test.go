package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter_Structured(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter("debug", "structured", &buf)
	require.NoError(t, err)

	logger.Info("cloned", zap.String("repository", "sample-repo"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cloned", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "sample-repo", entry["repository"])
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter("WARN", " console ", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestNewWithWriter_Invalid(t *testing.T) {
	_, err := NewWithWriter("verbose", "console", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported log level")

	_, err = NewWithWriter("info", "xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported log format")
}
