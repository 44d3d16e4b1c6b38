package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"stagehand/internal/api"
	"stagehand/pkg/logging"
)

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// ResolvePath picks the environment file: the explicit path if given, then
// $STAGEHAND_ENV, then DefaultEnvironmentFile.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v, ok := lookupEnv(EnvironmentVariable); ok && v != "" {
		return v
	}
	return DefaultEnvironmentFile
}

// LoadEnvironment reads, defaults and validates the environment file at path.
// A missing file is reported as api.ErrNoConfiguration.
func LoadEnvironment(path string) (EnvironmentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Warn("Config", "No environment file found at %s", path)
			return EnvironmentConfig{}, fmt.Errorf("%w: %s not found", api.ErrNoConfiguration, path)
		}
		return EnvironmentConfig{}, fmt.Errorf("error reading environment file %s: %w", path, err)
	}

	cfg, err := ParseEnvironment(data, path)
	if err != nil {
		return EnvironmentConfig{}, err
	}
	logging.Info("Config", "Loaded environment %s with %d device(s) from %s", cfg.Name, len(cfg.Devices), path)
	return cfg, nil
}

// ParseEnvironment decodes an environment document. Unknown fields are
// rejected so typos in attribute names surface instead of silently scoring 0.
// source only labels errors.
func ParseEnvironment(data []byte, source string) (EnvironmentConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return EnvironmentConfig{}, fmt.Errorf("%w: %s is empty", api.ErrNoConfiguration, source)
	}

	var cfg EnvironmentConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return EnvironmentConfig{}, api.ConfigurationError{
			FilePath: source,
			Message:  fmt.Sprintf("malformed yaml: %v", err),
		}
	}

	applyDefaults(&cfg)
	if err := Validate(cfg, source); err != nil {
		return EnvironmentConfig{}, err
	}
	return cfg, nil
}
