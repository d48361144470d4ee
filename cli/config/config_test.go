package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	paths, err := setupConfigDirIn(t.TempDir())
	require.NoError(t, err)

	config, err := ReadConfig(paths)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090", config.Server)
	assert.Empty(t, config.Email)

	_, err = os.Stat(paths.config)
	assert.NoError(t, err, "default config should be written")
}

func TestReadConfigCustom(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(file, []byte(
		"server: https://vault.example.com/\nemail: me@example.com\n"), 0o600))

	config, err := ReadConfig(PathsFor(file))
	require.NoError(t, err)
	assert.Equal(t, "https://vault.example.com", config.Server)
	assert.Equal(t, "me@example.com", config.Email)
}

func TestReadConfigInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(file, []byte("server: [oops"), 0o600))

	_, err := ReadConfig(PathsFor(file))
	assert.Error(t, err)
}
