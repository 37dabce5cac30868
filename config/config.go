package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	DefaultGeminiTimeout  = 30 * time.Second
)

// Config holds all configuration for the recycling helper relay.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins []string

	// Gemini configuration
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
	GeminiTimeout  time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "5000"),
		AllowedOrigins: getStringSliceEnv("ALLOWED_ORIGINS", "*"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GeminiEndpoint: getEnv("GEMINI_ENDPOINT", DefaultGeminiEndpoint),
		GeminiTimeout:  getDurationEnv("GEMINI_TIMEOUT", DefaultGeminiTimeout),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// HasAPIKey reports whether the Gemini credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.GeminiAPIKey != ""
}

// GeminiURL returns the generateContent URL for the configured model
// with the API key attached as the "key" query parameter.
func (c *Config) GeminiURL() string {
	endpoint := fmt.Sprintf(c.GeminiEndpoint, url.PathEscape(c.GeminiModel))
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "key=" + url.QueryEscape(c.GeminiAPIKey)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma-separated environment variable
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
