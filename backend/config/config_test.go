package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8090", cfg.Addr())
	assert.Equal(t, int64(25*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, runtime.NumCPU(), cfg.KDFWorkers)
	assert.Equal(t, "PDF Vault", cfg.TOTPIssuer)
	assert.Equal(t, 16, cfg.RandomPasswordBytes)
	assert.Equal(t, 10*time.Minute, cfg.StatsInterval)
	assert.False(t, cfg.LegacyFixedSalt)
	assert.False(t, cfg.Debug)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PDFVAULT_HOST", "0.0.0.0")
	t.Setenv("PDFVAULT_PORT", "9000")
	t.Setenv("PDFVAULT_MAX_UPLOAD_SIZE", "512K")
	t.Setenv("PDFVAULT_KDF_WORKERS", "3")
	t.Setenv("PDFVAULT_TOTP_ISSUER", "Acme")
	t.Setenv("PDFVAULT_LEGACY_SALT", "1")
	t.Setenv("PDFVAULT_STATS_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, int64(512*1024), cfg.MaxUploadSize)
	assert.Equal(t, 3, cfg.KDFWorkers)
	assert.Equal(t, "Acme", cfg.TOTPIssuer)
	assert.True(t, cfg.LegacyFixedSalt)
	assert.Equal(t, 30*time.Second, cfg.StatsInterval)

	// Values are unset once read
	_, exists := os.LookupEnv("PDFVAULT_PORT")
	assert.False(t, exists)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfvault.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: 127.0.0.1
port: "8443"
max_upload_size: 1MB
totp_issuer: From File
stats_interval: 1h
`), 0o600))

	t.Setenv("PDFVAULT_CONFIG", path)
	t.Setenv("PDFVAULT_PORT", "8444")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8444", cfg.Addr())
	assert.Equal(t, int64(1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, "From File", cfg.TOTPIssuer)
	assert.Equal(t, time.Hour, cfg.StatsInterval)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("PDFVAULT_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))
	_, err := Load()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: [1, 2"), 0o600))
	t.Setenv("PDFVAULT_CONFIG", path)
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PDFVAULT_MAX_UPLOAD_SIZE", "lots")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PDFVAULT_RANDOM_PASSWORD_BYTES", "0")
	_, err = Load()
	assert.Error(t, err)
}
