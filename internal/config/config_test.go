package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cms")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cms")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("UPLOADS_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 4000, cfg.Server.Port)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	require.Equal(t, "uploads", cfg.Uploads.Dir)
	require.Equal(t, int64(10<<20), cfg.Uploads.MaxBytes)
	require.Equal(t, "development", cfg.Environment)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cms")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example , https://b.example")
	t.Setenv("EMAIL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiry)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	require.True(t, cfg.Email.Enabled)
}

func TestLoadWithFileOverlaysEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cms")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\nlogging:\n  format: console\n"), 0o600))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "console", cfg.Logging.Format)
	// env values not mentioned in the file survive
	require.Equal(t, "postgres://localhost/cms", cfg.Database.URL)
}

func TestLoadWithFileMissingFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cms")
	t.Setenv("JWT_SECRET", "secret")

	_, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
