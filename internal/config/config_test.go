package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacewing-lang/lacewing/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.DefaultCachePath, c.CachePath)
	require.Equal(t, config.DefaultServeAddr, c.ServeAddr)
	require.True(t, c.WantsDebugInfo())
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lacewing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_path: custom.db\ndebug_info: false\ncolor: never\n"), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "custom.db", c.CachePath)
	require.False(t, c.WantsDebugInfo())
	require.Equal(t, "never", c.Color)
	require.Equal(t, config.DefaultServeAddr, c.ServeAddr)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lacewing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_path: [unterminated"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
