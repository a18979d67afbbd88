// Package bot is the Telegram transport: it receives free-form messages and
// replies with the orchestrator's single integer.
package bot

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the bot process.
type Config struct {
	// Telegram configuration
	TelegramToken string

	// Dataset configuration
	DatabaseURL string

	// Optional LLM intent producer. Absence of the toggle leaves the rule
	// extractor as the sole producer.
	LLMEnabled      bool
	AnthropicAPIKey string
	LLMModel        string
	LLMBaseURL      string
	LLMTimeout      time.Duration

	// Server configuration
	MetricsAddr string

	// Feature flags
	Verbose     bool
	EnablePprof bool
}

const defaultLLMModel = "claude-haiku-4-5-20251001"

// LoadFromEnv loads configuration from environment variables and flags.
func LoadFromEnv(metricsAddrFlag string, verbose, enablePprof bool) (*Config, error) {
	cfg := &Config{
		MetricsAddr: metricsAddrFlag,
		Verbose:     verbose,
		EnablePprof: enablePprof,
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Calendar-day boundaries are defined in UTC; refuse any other setting.
	if tz := os.Getenv("DB_TIMEZONE"); tz != "" && tz != "UTC" {
		return nil, fmt.Errorf("DB_TIMEZONE must be UTC, got: %s", tz)
	}

	if v := os.Getenv("LLM_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LLM_ENABLED must be a boolean, got: %s", v)
		}
		cfg.LLMEnabled = enabled
	}

	if cfg.LLMEnabled {
		cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_ENABLED=true")
		}
	}

	cfg.LLMModel = os.Getenv("LLM_MODEL")
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel
	}
	cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")

	cfg.LLMTimeout = 15 * time.Second
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("LLM_TIMEOUT must be a positive duration, got: %s", v)
		}
		cfg.LLMTimeout = d
	}

	return cfg, nil
}
