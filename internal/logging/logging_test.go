package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_InvalidInput(t *testing.T) {
	_, err := NewLogger("loud", "console", "stderr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = NewLogger("info", "xml", "stderr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestInit_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagemeta.log")

	cleanup, err := Init("debug", "json", path)
	require.NoError(t, err)

	zap.S().Debugw("fetching URL", "url", "https://example.com")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"fetching URL"`)
	assert.Contains(t, string(data), `"url":"https://example.com"`)
}

func TestInit_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagemeta.log")

	cleanup, err := Init("warn", "console", path)
	require.NoError(t, err)

	zap.S().Infow("hidden")
	zap.S().Warnw("visible")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}
