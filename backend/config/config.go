package config

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"pdfvault/backend/utils"
	"pdfvault/shared/constants"
)

const (
	defaultHost          = "localhost"
	defaultPort          = "8090"
	defaultMaxUploadSize = "25MB"
	defaultStatsInterval = "10m"
)

// =============================================================================
// Server configuration
// =============================================================================

// ServerConfig holds every setting the server reads at startup.
type ServerConfig struct {
	Host                string        `yaml:"host"`
	Port                string        `yaml:"port"`
	MaxUploadSize       int64         `yaml:"-"`
	MaxUploadSizeStr    string        `yaml:"max_upload_size"`
	KDFWorkers          int           `yaml:"kdf_workers"`
	TOTPIssuer          string        `yaml:"totp_issuer"`
	LegacyFixedSalt     bool          `yaml:"legacy_salt"`
	RandomPasswordBytes int           `yaml:"random_password_bytes"`
	StatsInterval       time.Duration `yaml:"-"`
	StatsIntervalStr    string        `yaml:"stats_interval"`
	Debug               bool          `yaml:"debug"`
}

// Addr returns the host:port the server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func defaults() ServerConfig {
	return ServerConfig{
		Host:                defaultHost,
		Port:                defaultPort,
		MaxUploadSizeStr:    defaultMaxUploadSize,
		KDFWorkers:          runtime.NumCPU(),
		TOTPIssuer:          constants.DefaultTOTPIssuer,
		RandomPasswordBytes: constants.RandomPasswordSize,
		StatsIntervalStr:    defaultStatsInterval,
	}
}

// Load builds the server config. Values come from the YAML file named by
// PDFVAULT_CONFIG (if set), and environment variables take precedence over
// the file.
func Load() (ServerConfig, error) {
	cfg := defaults()

	if path := utils.GetEnvVar("PDFVAULT_CONFIG", ""); len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("reading config file: %w", err)
		}

		if cfg, err = parse(data, cfg); err != nil {
			return ServerConfig{}, err
		}
	}

	cfg.Host = utils.GetEnvVar("PDFVAULT_HOST", cfg.Host)
	cfg.Port = utils.GetEnvVar("PDFVAULT_PORT", cfg.Port)
	cfg.MaxUploadSizeStr = utils.GetEnvVar("PDFVAULT_MAX_UPLOAD_SIZE", cfg.MaxUploadSizeStr)
	cfg.KDFWorkers = utils.GetEnvVarInt("PDFVAULT_KDF_WORKERS", cfg.KDFWorkers)
	cfg.TOTPIssuer = utils.GetEnvVar("PDFVAULT_TOTP_ISSUER", cfg.TOTPIssuer)
	cfg.LegacyFixedSalt = utils.GetEnvVarBool("PDFVAULT_LEGACY_SALT", cfg.LegacyFixedSalt)
	cfg.RandomPasswordBytes = utils.GetEnvVarInt(
		"PDFVAULT_RANDOM_PASSWORD_BYTES",
		cfg.RandomPasswordBytes)
	cfg.StatsIntervalStr = utils.GetEnvVar("PDFVAULT_STATS_INTERVAL", cfg.StatsIntervalStr)
	cfg.Debug = utils.GetEnvVarBool("PDFVAULT_DEBUG", cfg.Debug)

	if err := cfg.resolve(); err != nil {
		return ServerConfig{}, err
	}

	cfg.warn()
	return cfg, nil
}

func parse(data []byte, cfg ServerConfig) (ServerConfig, error) {
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// resolve converts the string settings and checks that every value is usable.
func (c *ServerConfig) resolve() error {
	c.MaxUploadSize = utils.ParseSizeString(c.MaxUploadSizeStr)
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("invalid max upload size %q", c.MaxUploadSizeStr)
	}

	// An empty or invalid interval disables the stats monitor
	c.StatsInterval = utils.StrToDuration(c.StatsIntervalStr)

	if c.KDFWorkers < 1 {
		c.KDFWorkers = runtime.NumCPU()
	}

	if c.RandomPasswordBytes < 1 {
		return fmt.Errorf("random password size must be positive, got %d", c.RandomPasswordBytes)
	}

	if len(strings.TrimSpace(c.TOTPIssuer)) == 0 {
		c.TOTPIssuer = constants.DefaultTOTPIssuer
	}

	return nil
}

func (c ServerConfig) warn() {
	if c.LegacyFixedSalt {
		logWarning(
			"Legacy fixed-salt key derivation is enabled.",
			"Identical passwords will produce identical keys.")
	}

	if c.Debug {
		logWarning(
			"DEBUG MODE IS ACTIVE!",
			"DO NOT USE THIS SETTING IN PRODUCTION!")
	}
}

func logWarning(warnings ...string) {
	log.Println(strings.Repeat("@", 57))
	for _, warning := range warnings {
		log.Printf("!!! %s\n", warning)
	}
	log.Println(strings.Repeat("@", 57))
}
