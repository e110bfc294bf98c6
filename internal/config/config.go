package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/pipeline-score/internal/resilience"
	"github.com/sells-group/pipeline-score/internal/token"
)

// Config holds the full application configuration.
type Config struct {
	Profile    string           `yaml:"profile" mapstructure:"profile"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Token      TokenConfig      `yaml:"token" mapstructure:"token"`
	DataForSEO DataForSEOConfig `yaml:"dataforseo" mapstructure:"dataforseo"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	SEO        SEOConfig        `yaml:"seo" mapstructure:"seo"`
	Close      CloseConfig      `yaml:"close" mapstructure:"close"`
	Kit        KitConfig        `yaml:"kit" mapstructure:"kit"`
	Webhook    WebhookConfig    `yaml:"webhook" mapstructure:"webhook"`
	Forecast   ForecastConfig   `yaml:"forecast" mapstructure:"forecast"`
	Sinks      SinksConfig      `yaml:"sinks" mapstructure:"sinks"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
	MaxBodyBytes        int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TokenConfig configures result-token signing.
type TokenConfig struct {
	Secret  string `yaml:"secret" mapstructure:"secret"`
	DevMode bool   `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// DataForSEOConfig holds keyword-data provider credentials.
type DataForSEOConfig struct {
	Login     string  `yaml:"login" mapstructure:"login"`
	Password  string  `yaml:"password" mapstructure:"password"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// GoogleConfig holds Places API settings.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SEOConfig configures ranking enrichment.
type SEOConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	Concurrency       int  `yaml:"concurrency" mapstructure:"concurrency"`
	LookupTimeoutSecs int  `yaml:"lookup_timeout_secs" mapstructure:"lookup_timeout_secs"`
	VolumeTimeoutSecs int  `yaml:"volume_timeout_secs" mapstructure:"volume_timeout_secs"`
	DefaultLocation   int  `yaml:"default_location" mapstructure:"default_location"`
	ResolveCities     bool `yaml:"resolve_cities" mapstructure:"resolve_cities"`
}

// CloseConfig holds Close CRM settings. An empty key disables the sink.
type CloseConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// KitConfig holds Kit settings. An empty key disables the sink and emailed
// reports.
type KitConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	FormID  string `yaml:"form_id" mapstructure:"form_id"`
}

// WebhookConfig configures a generic lead webhook. An empty URL disables it.
type WebhookConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// ForecastConfig configures revenue projection.
type ForecastConfig struct {
	DefaultAvgTicket float64 `yaml:"default_avg_ticket" mapstructure:"default_avg_ticket"`
}

// SinksConfig configures CRM/ESP delivery.
type SinksConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RetryConfig configures retries of provider and sink calls.
type RetryConfig struct {
	Attempts    int `yaml:"attempts" mapstructure:"attempts"`
	BaseDelayMs int `yaml:"base_delay_ms" mapstructure:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms" mapstructure:"max_delay_ms"`
}

// CircuitConfig configures the per-provider circuit breakers.
type CircuitConfig struct {
	Threshold    int `yaml:"threshold" mapstructure:"threshold"`
	CooldownSecs int `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("profile", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 20)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("token.secret", "")
	v.SetDefault("token.dev_mode", false)
	v.SetDefault("dataforseo.login", "")
	v.SetDefault("dataforseo.password", "")
	v.SetDefault("google.key", "")
	v.SetDefault("close.key", "")
	v.SetDefault("kit.key", "")
	v.SetDefault("webhook.url", "")
	v.SetDefault("dataforseo.base_url", "https://api.dataforseo.com/v3")
	v.SetDefault("dataforseo.rate_limit", 10)
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("seo.enabled", true)
	v.SetDefault("seo.concurrency", 5)
	v.SetDefault("seo.lookup_timeout_secs", 10)
	v.SetDefault("seo.volume_timeout_secs", 15)
	v.SetDefault("seo.default_location", 2840)
	v.SetDefault("seo.resolve_cities", true)
	v.SetDefault("close.base_url", "https://api.close.com/api/v1")
	v.SetDefault("kit.base_url", "https://api.kit.com/v4")
	v.SetDefault("kit.form_id", "8480887")
	v.SetDefault("forecast.default_avg_ticket", 6500)
	v.SetDefault("sinks.timeout_secs", 15)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.base_delay_ms", 250)
	v.SetDefault("retry.max_delay_ms", 5000)
	v.SetDefault("circuit.threshold", 5)
	v.SetDefault("circuit.cooldown_secs", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Profile == token.ProfileProduction
}

// TokenSecret resolves the result-token signing secret for the profile.
func (c *Config) TokenSecret() (string, error) {
	return token.ResolveSecret(c.Token.Secret, c.Profile, c.Token.DevMode)
}

// RetryPolicy converts the retry settings.
func (c *Config) RetryPolicy() resilience.Policy {
	p := resilience.DefaultPolicy()
	p.Attempts = c.Retry.Attempts
	p.BaseDelay = time.Duration(c.Retry.BaseDelayMs) * time.Millisecond
	p.MaxDelay = time.Duration(c.Retry.MaxDelayMs) * time.Millisecond
	return p
}

// BreakerConfig converts the circuit breaker settings.
func (c *Config) BreakerConfig() resilience.BreakerConfig {
	return resilience.BreakerConfig{
		Threshold: c.Circuit.Threshold,
		Cooldown:  time.Duration(c.Circuit.CooldownSecs) * time.Second,
	}
}

// SEOReady reports whether ranking enrichment can run.
func (c *Config) SEOReady() bool {
	return c.SEO.Enabled && c.DataForSEO.Login != "" && c.DataForSEO.Password != ""
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
