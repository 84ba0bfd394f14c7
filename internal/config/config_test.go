package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray .env is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "greenroots", cfg.DB.DBName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "eur", cfg.DefaultCurrency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProcessorTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	inTempDir(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DEFAULT_CURRENCY", "USD")
	t.Setenv("PROCESSOR_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "usd", cfg.DefaultCurrency)
	assert.Equal(t, 2*time.Second, cfg.ProcessorTimeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-file\nKAFKA_TOPIC=orders\n"), 0o600))
	t.Setenv("KAFKA_TOPIC", "from-env")
	// registered for restore, then removed so the file value applies
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	// real environment wins over .env
	assert.Equal(t, "from-env", cfg.KafkaTopic)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing_jwt_secret", env: map[string]string{}},
		{name: "bad_duration", env: map[string]string{"JWT_SECRET": "x", "REQUEST_TIMEOUT": "soon"}},
		{name: "negative_duration", env: map[string]string{"JWT_SECRET": "x", "SHUTDOWN_TIMEOUT": "-1s"}},
		{name: "bad_db_port", env: map[string]string{"JWT_SECRET": "x", "DB_PORT": "pg"}},
		{name: "bad_http_port", env: map[string]string{"JWT_SECRET": "x", "HTTP_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
