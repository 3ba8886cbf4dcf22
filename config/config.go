// Package config loads the catalog settings from flags, environment
// variables (LIBRARY_*) and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultBackend   = "file"
	DefaultCSVPath   = "data/bookInfo.csv"
	DefaultDBPath    = "data/library.db"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	EnvPrefix = "LIBRARY"
)

// Config holds the settings needed to open a catalog.
type Config struct {
	Backend   string `mapstructure:"backend" validate:"oneof=memory file sqlite"`
	CSVPath   string `mapstructure:"csv_path" validate:"required_if=Backend file"`
	DBPath    string `mapstructure:"db_path" validate:"required_if=Backend sqlite"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`

	// BackendChosen is false when no flag, variable or file named a backend;
	// the interactive shell then asks for one.
	BackendChosen bool `mapstructure:"-"`
}

// Path returns the storage location of the selected backend.
func (c *Config) Path() string {
	switch c.Backend {
	case "sqlite":
		return c.DBPath
	case "file":
		return c.CSVPath
	default:
		return ""
	}
}

var keys = []string{"backend", "csv_path", "db_path", "log_level", "log_format"}

// New returns a viper instance with defaults and environment bindings.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, k := range keys {
		// BindEnv only fails when given no key.
		_ = v.BindEnv(k)
	}

	// No default for backend: an unset backend must stay detectable.
	v.SetDefault("csv_path", DefaultCSVPath)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	return v
}

// Load reads configFile (if non-empty), unmarshals and validates.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.BackendChosen = cfg.Backend != ""
	if !cfg.BackendChosen {
		cfg.Backend = DefaultBackend
	}
	// Level names match the logger's, which ignores case.
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
