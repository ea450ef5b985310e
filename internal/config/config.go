package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL     string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	PaymentRequired   bool   `env:"PAYMENT_REQUIRED" envDefault:"true"`
	PayBaseURL        string `env:"PAY_BASE_URL" envDefault:"http://localhost:8080/pay-wallet"`
	PaymentTTLSeconds int    `env:"PAYMENT_TTL_SECONDS" envDefault:"300"`
	DefaultAmount     int    `env:"PAYMENT_DEFAULT_AMOUNT" envDefault:"2"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir         string `env:"STATIC_DIR" envDefault:"static"`
	AllowedOrigins    string `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

func (c *Config) PaymentTTL() time.Duration {
	return time.Duration(c.PaymentTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (c *Config) Validate(isProduction bool) error {
	if c.PaymentTTLSeconds <= 0 {
		return fmt.Errorf("PAYMENT_TTL_SECONDS must be positive, got %d", c.PaymentTTLSeconds)
	}

	if isProduction {
		if !c.PaymentRequired {
			log.Warn().Msg("PAYMENT_REQUIRED is false in production: all generation requests pass without payment")
		}
		if c.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY is empty in production: generation endpoints will run in disabled mode")
		}
		if c.AllowedOrigins == "*" {
			log.Warn().Msg("ALLOWED_ORIGINS is * in production: consider restricting to the front-end origin")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
