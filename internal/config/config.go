// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Model             string `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxInFlight       int    `mapstructure:"max_in_flight" yaml:"max_in_flight"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Dedup struct {
		ToleranceMinutes int `mapstructure:"tolerance_minutes" yaml:"tolerance_minutes"`
	} `mapstructure:"dedup" yaml:"dedup"`

	Categorization struct {
		DefaultCategory string `mapstructure:"default_category" yaml:"default_category"`
		RuleConfidence  int    `mapstructure:"rule_confidence" yaml:"rule_confidence"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Data struct {
		RulesFile       string `mapstructure:"rules_file" yaml:"rules_file"`
		CorrectionsFile string `mapstructure:"corrections_file" yaml:"corrections_file"`
	} `mapstructure:"data" yaml:"data"`
}

// AITimeout returns the per-call AI timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// DedupTolerance returns the dedup time window as a duration.
func (c *Config) DedupTolerance() time.Duration {
	return time.Duration(c.Dedup.ToleranceMinutes) * time.Minute
}

// Load initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.ledger-unify")
	v.AddConfigPath(".ledger-unify")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Keep going with defaults and env vars; a broken file is not fatal.
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// API key always comes from the environment, unprefixed.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_in_flight", 4)

	v.SetDefault("dedup.tolerance_minutes", 1)

	v.SetDefault("categorization.default_category", "Other")
	v.SetDefault("categorization.rule_confidence", 95)

	v.SetDefault("data.rules_file", "rules.yaml")
	v.SetDefault("data.corrections_file", "corrections.yaml")
}

func validate(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
		if config.AI.MaxInFlight < 1 || config.AI.MaxInFlight > 64 {
			return fmt.Errorf("ai.max_in_flight must be between 1 and 64, got: %d", config.AI.MaxInFlight)
		}
	}

	if config.Dedup.ToleranceMinutes < 0 {
		return fmt.Errorf("dedup.tolerance_minutes must not be negative, got: %d", config.Dedup.ToleranceMinutes)
	}

	if config.Categorization.RuleConfidence < 0 || config.Categorization.RuleConfidence > 100 {
		return fmt.Errorf("categorization.rule_confidence must be between 0 and 100, got: %d", config.Categorization.RuleConfidence)
	}

	if config.Categorization.DefaultCategory == "" {
		return fmt.Errorf("categorization.default_category must not be empty")
	}

	return nil
}

// ConfigureLogging builds a logrus logger from the Log section.
func ConfigureLogging(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
