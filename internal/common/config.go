// Package common provides shared utilities for folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for folio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PortfolioConfig describes the holding data and how amounts are shown
type PortfolioConfig struct {
	Name     string `toml:"name"`
	DataPath string `toml:"data_path"` // TOML holdings file; empty uses the embedded seed portfolio
	Currency string `toml:"currency"`  // ISO code used in narrative amounts (default "INR")
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration. An empty API key disables
// the external insight generator.
type GeminiConfig struct {
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	Timeout           string  `toml:"timeout"`
	RateLimit         int     `toml:"rate_limit"` // requests per minute
	Temperature       float32 `toml:"temperature"`
	MaxOutputTokens   int32   `toml:"max_output_tokens"`
	SystemInstruction string  `toml:"system_instruction"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Portfolio: PortfolioConfig{
			Name:     "Indian Equity Portfolio",
			Currency: money.INR,
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:             "gemini-2.0-flash",
				Timeout:           "20s",
				RateLimit:         30,
				Temperature:       0.4,
				MaxOutputTokens:   300,
				SystemInstruction: "You are a concise, data-driven portfolio analyst.",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "./logs/folio.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is read first; variables already
// set in the process environment take precedence over it.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	// PORT is honoured for platforms that inject it; FOLIO_PORT wins.
	for _, name := range []string{"PORT", "FOLIO_PORT"} {
		if port := os.Getenv(name); port != "" {
			if p, err := strconv.Atoi(port); err == nil {
				config.Server.Port = p
			}
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Portfolio.DataPath = path
	}

	if cur := os.Getenv("FOLIO_CURRENCY"); cur != "" {
		config.Portfolio.Currency = strings.ToUpper(cur)
	}

	if model := os.Getenv("FOLIO_GEMINI_MODEL"); model != "" {
		config.Clients.Gemini.Model = model
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from the environment, falling back to
// the configured value. An empty result with an error means the key is not
// configured anywhere.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "FOLIO_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// validateCurrency ensures Currency is a known ISO code, defaulting to INR.
func validateCurrency(config *Config) {
	code := strings.ToUpper(strings.TrimSpace(config.Portfolio.Currency))
	if money.GetCurrency(code) == nil {
		code = money.INR
	}
	config.Portfolio.Currency = code
}
