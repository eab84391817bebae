package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escript-core/escript/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))

	require.NoError(t, err)
	assert.Equal(t, config.DefaultEngineConfig(), cfg)
}

func TestLoadOverlaysPartialFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escript.toml")
	require.NoError(t, os.WriteFile(path, []byte("stack_size_limit = 500\n"), 0o644))

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, 500, cfg.StackSizeLimit)
	assert.Equal(t, config.DefaultEngineConfig().PoolHighWaterMark, cfg.PoolHighWaterMark)
	assert.Equal(t, config.DefaultEngineConfig().AttachStackOnThrow, cfg.AttachStackOnThrow)
}

func TestLoadMalformedFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escript.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := config.Load(path)

	assert.Error(t, err)
}
