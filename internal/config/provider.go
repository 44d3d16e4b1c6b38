package config

import (
	"fmt"
	"sync"

	"stagehand/internal/api"
	"stagehand/internal/device"
)

// Provider supplies the environment of a run. Implementations return
// api.ErrNoConfiguration (possibly wrapped) when none is available.
type Provider interface {
	Environment() (*device.Environment, error)
}

// FileProvider loads the environment from a yaml file once and caches it.
type FileProvider struct {
	Path string

	once sync.Once
	env  *device.Environment
	err  error
}

// NewFileProvider creates a provider for path, resolved with ResolvePath.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: ResolvePath(path)}
}

// Environment implements Provider.
func (p *FileProvider) Environment() (*device.Environment, error) {
	p.once.Do(func() {
		cfg, err := LoadEnvironment(p.Path)
		if err != nil {
			p.err = err
			return
		}
		p.env = cfg.Environment()
	})
	return p.env, p.err
}

// StaticProvider serves an environment built in memory.
type StaticProvider struct {
	env *device.Environment
	err error
}

// NewStaticProvider validates cfg after applying defaults and serves it.
// Validation errors are returned from Environment.
func NewStaticProvider(cfg EnvironmentConfig) *StaticProvider {
	applyDefaults(&cfg)
	if err := Validate(cfg, ""); err != nil {
		return &StaticProvider{err: fmt.Errorf("invalid environment %s: %w", cfg.Name, err)}
	}
	return &StaticProvider{env: cfg.Environment()}
}

// Environment implements Provider.
func (p *StaticProvider) Environment() (*device.Environment, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.env == nil {
		return nil, api.ErrNoConfiguration
	}
	return p.env, nil
}
