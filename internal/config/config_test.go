package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_DIR", "LOG_DIR", "DEBUG_MODE", "NOVEL_API_URL", "NOVEL_ID",
		"NOVEL_REQUEST_TIMEOUT", "NOVEL_AUTOSAVE_DELAY", "NOVEL_VIEW_MODE", "NOVEL_RATE_LIMIT"} {
		t.Setenv(k, "")
	}
}

func TestLoadFileDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "document", cfg.ViewMode)
	assert.Equal(t, 600, cfg.RateLimit)
}

func TestLoadFileYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "novel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: http://writer.local:9000
novel_id: novel-42
request_timeout: 3s
view_mode: grid
`), 0644))

	t.Run("file values apply", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "http://writer.local:9000", cfg.APIBaseURL)
		assert.Equal(t, "novel-42", cfg.NovelID)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "grid", cfg.ViewMode)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("NOVEL_ID", "novel-env")
		t.Setenv("NOVEL_REQUEST_TIMEOUT", "7")
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "novel-env", cfg.NovelID)
		assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	})
}

func TestLoadFileRejectsBadViewMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOVEL_VIEW_MODE", "kanban")

	_, err := LoadFile("")
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("DEBUG_MODE", "yes")
	assert.True(t, getEnvBool("DEBUG_MODE", false))
	t.Setenv("DEBUG_MODE", "off")
	assert.False(t, getEnvBool("DEBUG_MODE", true))
}
