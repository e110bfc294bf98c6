package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a command mode depends on. Modes are
// "serve", "score", "seo" and "token".
func (c *Config) Validate(mode string) error {
	var problems []string
	add := func(msg string) { problems = append(problems, msg) }

	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "console" {
		add("log.format must be json or console")
	}

	checkToken := func() {
		if c.Token.Secret != "" {
			return
		}
		switch {
		case c.IsProduction():
			add("token.secret is required in the production profile")
		case !c.Token.DevMode:
			add("token.secret is required unless token.dev_mode is set")
		}
	}
	checkSEO := func() {
		if c.DataForSEO.Login == "" {
			add("dataforseo.login is required")
		}
		if c.DataForSEO.Password == "" {
			add("dataforseo.password is required")
		}
		if c.SEO.Concurrency < 1 || c.SEO.Concurrency > 50 {
			add("seo.concurrency must be between 1 and 50")
		}
	}
	checkResilience := func() {
		if c.Retry.Attempts < 1 || c.Retry.Attempts > 10 {
			add("retry.attempts must be between 1 and 10")
		}
		if c.Circuit.Threshold < 1 {
			add("circuit.threshold must be >= 1")
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			add("server.port must be > 0")
		}
		checkToken()
		if c.SEO.Enabled {
			checkSEO()
		}
		checkResilience()
		if c.Sinks.TimeoutSecs <= 0 {
			add("sinks.timeout_secs must be > 0")
		}
	case "score":
		if c.Forecast.DefaultAvgTicket < 0 {
			add("forecast.default_avg_ticket must be >= 0")
		}
	case "seo":
		checkSEO()
		checkResilience()
	case "token":
		checkToken()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
