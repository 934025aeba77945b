package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks the configuration for structural errors and fills
// defaults for unset fields. It is the single place duration strings are
// verified, so later ParseDuration calls cannot fail.
func Validate(cfg *Config) error {
	if cfg.Buffer.MaxTokens < 0 {
		return fmt.Errorf("config: buffer.max_tokens must not be negative")
	}
	if err := checkDuration("buffer.summarize_timeout", cfg.Buffer.SummarizeTimeout); err != nil {
		return err
	}
	if err := checkDuration("sweep.interval", cfg.Sweep.Interval); err != nil {
		return err
	}
	if err := checkDuration("sweep.idle_ttl", cfg.Sweep.IdleTTL); err != nil {
		return err
	}
	if err := checkDuration("gateway.stats_interval", cfg.Gateway.StatsInterval); err != nil {
		return err
	}

	if cfg.Gateway.Listen == "" {
		cfg.Gateway.Listen = ":8420"
	}

	if s := cfg.Summarizer; s != nil {
		if s.BaseURL == "" {
			return fmt.Errorf("config: summarizer.base_url is required")
		}
		u, err := url.Parse(s.BaseURL)
		if err != nil {
			return fmt.Errorf("config: summarizer.base_url is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("config: summarizer.base_url scheme must be http or https, got %q", u.Scheme)
		}
		if s.Model == "" {
			return fmt.Errorf("config: summarizer.model is required")
		}
		if s.APIKey == "" && s.APIKeyEnv == "" {
			return fmt.Errorf("config: one of summarizer.api_key or summarizer.api_key_env is required")
		}
		if err := checkDuration("summarizer.timeout", s.Timeout); err != nil {
			return err
		}
	}

	if st := cfg.Store; st != nil && st.Path == "" {
		return fmt.Errorf("config: store.path is required when store is configured")
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("config: telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "contextd"
	}

	return nil
}

// Duration parses a validated duration string, returning fallback for "".
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func checkDuration(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("config: %s: invalid duration %q: %w", field, value, err)
	}
	return nil
}
