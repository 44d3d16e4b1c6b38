package config

import (
	"time"

	"stagehand/internal/scope"
)

const (
	// DefaultEnvironmentFile is looked up in the working directory when no
	// path is given.
	DefaultEnvironmentFile = "stagehand.yaml"

	// EnvironmentVariable overrides DefaultEnvironmentFile.
	EnvironmentVariable = "STAGEHAND_ENV"

	// DefaultScope applies to devices that declare no scope.
	DefaultScope = scope.Class

	// DefaultDriverTimeout bounds a single driver construction.
	DefaultDriverTimeout = 2 * time.Minute

	// DefaultEnvironmentName is used when the file does not name the run.
	DefaultEnvironmentName = "default"
)

// GetDefaultConfig returns an environment with defaults applied and no devices.
func GetDefaultConfig() EnvironmentConfig {
	return EnvironmentConfig{
		Name:          DefaultEnvironmentName,
		DefaultScope:  DefaultScope,
		DriverTimeout: DefaultDriverTimeout,
	}
}

// applyDefaults fills unset top-level fields.
func applyDefaults(c *EnvironmentConfig) {
	if c.Name == "" {
		c.Name = DefaultEnvironmentName
	}
	if c.DefaultScope == scope.Unspecified {
		c.DefaultScope = DefaultScope
	}
	if c.DriverTimeout == 0 {
		c.DriverTimeout = DefaultDriverTimeout
	}
}
