// Package config provides configuration helpers for go-aura commands.
package config

import "os"

// Defaults for the aura binary.
const (
	DefaultPort     = "8090"
	DefaultLogLevel = "info"
)

// GeminiAPIKey returns the Gemini API key from the environment.
// Checks GEMINI_API_KEY first, then GOOGLE_API_KEY.
func GeminiAPIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// Port returns the dashboard port from AURA_PORT or the default.
func Port() string {
	if port := os.Getenv("AURA_PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// LogLevel returns the log level from LOG_LEVEL or the default.
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}
