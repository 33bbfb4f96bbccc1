package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(envJWTSecretKey, "")
	cfg := Load("")

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10*time.Minute, cfg.OTPExpiry)
	assert.Equal(t, 60*time.Second, cfg.OTPCooldown)
	assert.Equal(t, 5, cfg.OTPMaxPerHour)
	assert.Equal(t, "console", cfg.MailBackend)
	assert.Equal(t, "/media", cfg.MediaURL)
	assert.Equal(t, "10:00", cfg.OfficeStart)
	assert.Equal(t, time.Minute, cfg.LoginRateWindow)
	assert.True(t, cfg.EnableSwagger)
	assert.Empty(t, cfg.LiveOrigins)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv(envJWTSecretKey, "s3cret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("OTP_RESEND_COOLDOWN_SECONDS", "30")
	t.Setenv("MEDIA_URL", "https://cdn.example.com/media/")
	t.Setenv("LIVE_ORIGIN_PATTERNS", " app.example.com ,, *.example.org ")
	t.Setenv("ENABLE_SWAGGER", "false")
	t.Setenv("APP_TIME_ZONE", "Mars/Olympus")

	cfg := Load("")
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.OTPCooldown)
	assert.Equal(t, "https://cdn.example.com/media", cfg.MediaURL)
	assert.Equal(t, []string{"app.example.com", "*.example.org"}, cfg.LiveOrigins)
	assert.False(t, cfg.EnableSwagger)
	assert.Equal(t, "UTC", cfg.TimeZone, "unknown zones fall back to UTC")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=9191\n"), 0o600))
	// registered so the value godotenv sets is cleared after the test
	t.Setenv("SERVER_PORT", "")
	require.NoError(t, os.Unsetenv("SERVER_PORT"))

	cfg := Load(path)
	assert.Equal(t, "9191", cfg.ServerPort)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
	assert.Equal(t, []string{"a", "b"}, splitList("a, b"))
}
