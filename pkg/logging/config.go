package logging

import (
	"log/slog"
)

// Name represents the name of the application for the logging.
type Name string

// String returns the string representation of the Name.
func (n Name) String() string {
	return string(n)
}

// Config is the configuration for the logging.
type Config struct {
	// appName is the name of the application.
	appName Name

	// minLevel is the minimum level that gets logged.
	minLevel slog.Level
}

// NewConfig creates a new Config at the default debug level.
func NewConfig(appName Name) *Config {
	return &Config{
		appName:  appName,
		minLevel: slog.LevelDebug,
	}
}

// WithLevel sets the minimum level that gets logged.
func (c *Config) WithLevel(l slog.Level) *Config {
	c.minLevel = l
	return c
}
