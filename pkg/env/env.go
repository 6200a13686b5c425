// Package env reads process environment variables with fallbacks. It covers
// the few lookups that happen before envconfig has parsed the full
// configuration, such as picking the log level at logger init.
package env

import "os"

// Get returns the named variable, or fallback when unset or empty.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
