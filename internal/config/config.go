package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Backend BackendConfig
	Storage StorageConfig
	Log     LogConfig
	UI      UIConfig `mapstructure:"ui"`
}

// BackendConfig holds the trip planner endpoint configuration
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"` // zero means no timeout
}

// StorageConfig holds the local key-value store configuration
type StorageConfig struct {
	Path      string `mapstructure:"path"`
	UserIDKey string `mapstructure:"user_id_key"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// UIConfig holds the terminal UI configuration
type UIConfig struct {
	TranscriptPath string `mapstructure:"transcript_path"`
}

const envPrefix = "RAHAGIR"

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://127.0.0.1:8000")
	v.SetDefault("backend.path", "/plan_trip")
	v.SetDefault("backend.timeout", "0s")
	v.SetDefault("storage.path", "rahagir.db")
	v.SetDefault("storage.user_id_key", "rahagir_user_id")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "rahagir.log")
	v.SetDefault("ui.transcript_path", "")
}

// Load loads the configuration from the file named by CONFIG_PATH, or from
// config.yaml in the working directory.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_PATH"))
}

// LoadFile loads the configuration from path. An empty path searches for an
// optional config.yaml in the working directory; a missing file there is not
// an error. Environment variables prefixed with RAHAGIR_ override both.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
