package config

import (
	"os"
	"path/filepath"
	"testing"

	"library-catalog/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBackend, cfg.Backend)
	assert.False(t, cfg.BackendChosen)
	assert.Equal(t, DefaultCSVPath, cfg.CSVPath)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultCSVPath, cfg.Path())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LIBRARY_BACKEND", "sqlite")
	t.Setenv("LIBRARY_DB_PATH", "/tmp/catalog.db")
	t.Setenv("LIBRARY_LOG_LEVEL", "debug")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.True(t, cfg.BackendChosen)
	assert.Equal(t, "/tmp/catalog.db", cfg.Path())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	content := "backend: memory\nlog_level: info\ncsv_path: books.csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LIBRARY_LOG_LEVEL", "error")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, "", cfg.Path())
	assert.Equal(t, "books.csv", cfg.CSVPath)
	assert.Equal(t, "error", cfg.LogLevel, "environment overrides the file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"LIBRARY_BACKEND": "postgres"}},
		{"unknown log level", map[string]string{"LIBRARY_LOG_LEVEL": "verbose"}},
		{"unknown log format", map[string]string{"LIBRARY_LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(New(), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadAcceptsLoggerLevelNames(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"WARN", "warn"},
		{"warning", "warning"},
		{" Debug ", "debug"},
		{"ERROR", "error"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("LIBRARY_LOG_LEVEL", tt.value)
			cfg, err := Load(New(), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LogLevel)

			_, ok := logger.ParseLevel(cfg.LogLevel)
			assert.True(t, ok)
		})
	}
}
