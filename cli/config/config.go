package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"pdfvault/cli/utils"
)

type Paths struct {
	config string
}

type Config struct {
	Server string `yaml:"server,omitempty"`
	Email  string `yaml:"email,omitempty"`
}

var baseConfigPath = filepath.Join(".config", "pdfvault")

const configFileName = "config.yml"

//go:embed config.yml
var defaultConfig string

// SetupConfigDir ensures that the directory necessary for pdfvault's config
// has been created. This path defaults to $HOME/.config/pdfvault.
func SetupConfigDir() (Paths, error) {
	dirname, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}

	return setupConfigDirIn(dirname)
}

func setupConfigDirIn(dirname string) (Paths, error) {
	localConfig, err := makeConfigDirectories(dirname)
	if err != nil {
		return Paths{}, err
	}

	return Paths{config: filepath.Join(localConfig, configFileName)}, nil
}

// PathsFor uses an explicit config file instead of the default location.
func PathsFor(file string) Paths {
	return Paths{config: file}
}

// makeConfigDirectories creates the necessary directories for storing the
// user's local pdfvault config
func makeConfigDirectories(dirname string) (string, error) {
	localConfig := filepath.Join(dirname, baseConfigPath)
	err := os.MkdirAll(localConfig, os.ModePerm)
	if err != nil {
		return "", err
	}

	return localConfig, nil
}

// ReadConfig reads the config file (config.yml) for current configuration,
// writing the default config first if none exists yet.
func ReadConfig(paths Paths) (Config, error) {
	if _, err := os.Stat(paths.config); err != nil {
		if err = utils.CopyToFile(defaultConfig, paths.config); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(paths.config)
	if err != nil {
		return Config{}, err
	}

	config := Config{}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}

	// Strip trailing slash
	config.Server = strings.TrimSuffix(config.Server, "/")
	return config, nil
}
