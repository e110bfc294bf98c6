package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Profile)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "https://api.dataforseo.com/v3", cfg.DataForSEO.BaseURL)
	assert.InDelta(t, 10, cfg.DataForSEO.RateLimit, 0.001)
	assert.True(t, cfg.SEO.Enabled)
	assert.Equal(t, 5, cfg.SEO.Concurrency)
	assert.Equal(t, 2840, cfg.SEO.DefaultLocation)
	assert.Equal(t, "8480887", cfg.Kit.FormID)
	assert.InDelta(t, 6500, cfg.Forecast.DefaultAvgTicket, 0.001)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 5, cfg.Circuit.Threshold)
	assert.False(t, cfg.SEOReady())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
profile: production
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins: ["https://example.com"]
dataforseo:
  login: me
  password: pw
seo:
  concurrency: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 8, cfg.SEO.Concurrency)
	assert.True(t, cfg.SEOReady())
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.SEO.LookupTimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
token:
  secret: from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PIPELINE_LOG_LEVEL", "warn")
	t.Setenv("PIPELINE_TOKEN_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Token.Secret)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PIPELINE_SERVER_PORT", "3000")
	t.Setenv("PIPELINE_KIT_KEY", "kit-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "kit-key", cfg.Kit.Key)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestRetryAndBreakerConversion(t *testing.T) {
	cfg := validDefaults()
	p := cfg.RetryPolicy()
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, 250*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 5*time.Second, p.MaxDelay)

	b := cfg.BreakerConfig()
	assert.Equal(t, 5, b.Threshold)
	assert.Equal(t, 30*time.Second, b.Cooldown)
}

func TestTokenSecret(t *testing.T) {
	cfg := validDefaults()
	cfg.Token.Secret = "s3cret"
	s, err := cfg.TokenSecret()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", s)

	cfg.Token.Secret = ""
	cfg.Profile = "production"
	cfg.Token.DevMode = true
	_, err = cfg.TokenSecret()
	assert.Error(t, err)
}
