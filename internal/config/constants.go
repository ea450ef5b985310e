package config

import "time"

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Outbound Gemini call timeout
const GeminiRequestTimeout = 45 * time.Second

// Generation defaults
const (
	DefaultMaxOutputTokens = 1024
	DefaultTemperature     = 0.85
)

// Default per-IP rate limit for generation endpoints
const DefaultRateLimitPerMin = 20
