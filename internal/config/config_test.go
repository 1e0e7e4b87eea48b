package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Data:      DataConfig{BasePath: "/some/path"},
		Card:      CardConfig{DraftDebounce: 300 * time.Millisecond},
		Analytics: AnalyticsConfig{BufferSize: 1024},
	}
}

// writeEnvFile writes a .env fixture into a temp dir and returns its path.
func writeEnvFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearEnv unsets keys for the test and restores them afterwards.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key) //nolint:errcheck // Test setup
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"INFO", true},   // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "data base path cannot be empty")
}

func TestValidate_NonPositiveDebounce(t *testing.T) {
	cfg := validConfig()
	cfg.Card.DraftDebounce = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "draft debounce")
}

func TestValidate_NonPositiveAnalyticsBuffer(t *testing.T) {
	cfg := validConfig()
	cfg.Analytics.BufferSize = -1

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "analytics buffer size")
}

func TestExpandDataPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty uses default", "", filepath.Join(homeDir, "LinkCard", "data")},
		{"tilde expansion", "~/my-data", filepath.Join(homeDir, "my-data")},
		{"absolute path kept", "/absolute/path/to/data", "/absolute/path/to/data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Data: DataConfig{BasePath: tt.input}}
			require.NoError(t, cfg.expandDataPath())
			assert.Equal(t, tt.want, cfg.Data.BasePath)
		})
	}
}

func TestExpandDataPath_RelativePathBecomesAbsolute(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "relative/path"}}
	require.NoError(t, cfg.expandDataPath())

	assert.True(t, filepath.IsAbs(cfg.Data.BasePath))
	assert.Contains(t, cfg.Data.BasePath, "relative/path")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	// Flags win over everything.
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "ENV_KEY", "default-value"))

	// Env var wins when the flag is empty.
	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	// Default applies when both are empty.
	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("TEST_INT_KEY", "2048")
	assert.Equal(t, 2048, getIntConfigValue("", "TEST_INT_KEY", 1024))

	assert.Equal(t, 1024, getIntConfigValue("", "NONEXISTENT_INT_KEY", 1024))

	t.Setenv("TEST_BAD_INT_KEY", "not-a-number")
	assert.Equal(t, 1024, getIntConfigValue("", "TEST_BAD_INT_KEY", 1024))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := writeEnvFile(t, `# Test env file
ENV=staging
LOG_LEVEL=debug
DATA_PATH=/test/path
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`)
	clearEnv(t, "ENV", "LOG_LEVEL", "DATA_PATH", "QUOTED_VALUE", "SINGLE_QUOTED")

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "/test/path", os.Getenv("DATA_PATH"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := writeEnvFile(t, `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
ANOTHER_VALID=value
`)

	err := loadEnvFile(envFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := writeEnvFile(t, `TEST_VAR=new-value`)
	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}

func TestLoadEnvFile_EmptyLines(t *testing.T) {
	envFile := writeEnvFile(t, `
KEY1=value1


KEY2=value2

# Comment

KEY3=value3
`)
	clearEnv(t, "KEY1", "KEY2", "KEY3")

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "value1", os.Getenv("KEY1"))
	assert.Equal(t, "value2", os.Getenv("KEY2"))
	assert.Equal(t, "value3", os.Getenv("KEY3"))
}

func TestLoadEnvFile_Whitespace(t *testing.T) {
	envFile := writeEnvFile(t, `  KEY_WITH_SPACES  =  value with spaces  `)
	clearEnv(t, "KEY_WITH_SPACES")

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "value with spaces", os.Getenv("KEY_WITH_SPACES"))
}
