package lifecycle

import (
	"fmt"
	"os"

	"stagehand/internal/api"
	"stagehand/internal/config"
	"stagehand/internal/device"
	"stagehand/internal/driver"
	"stagehand/internal/events"
	"stagehand/internal/registry"
	"stagehand/internal/variant"
	"stagehand/pkg/logging"
)

// ExitNoConfiguration is the process exit code used when no environment is
// available at startup.
const ExitNoConfiguration = 78

// exit is replaced in tests.
var exit = os.Exit

// ExecutionContext is the process-wide state of one run: the environment,
// the shared driver stores, the driver factory and the variant resolver.
type ExecutionContext struct {
	env      *device.Environment
	registry *registry.Registry
	factory  driver.Factory
	resolver *variant.Resolver
	recorder events.Recorder
}

// Option configures an ExecutionContext.
type Option func(*ExecutionContext)

// WithRecorder sets the event recorder. The default discards events.
func WithRecorder(rec events.Recorder) Option {
	return func(e *ExecutionContext) {
		if rec != nil {
			e.recorder = rec
		}
	}
}

// WithRegistry replaces the scope registry, for sharing one across contexts in tests.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *ExecutionContext) {
		if reg != nil {
			e.registry = reg
		}
	}
}

// NewExecution builds the execution context from the environment supplied by
// provider. It fails with api.ErrNoConfiguration when provider is nil or
// cannot supply a valid environment. The factory is bounded by the
// environment's driver timeout. A nil resolver means no variants are registered.
func NewExecution(provider config.Provider, factory driver.Factory, resolver *variant.Resolver, opts ...Option) (*ExecutionContext, error) {
	if provider == nil {
		return nil, api.ErrNoConfiguration
	}
	env, err := provider.Environment()
	if err != nil {
		if api.IsNoConfiguration(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", api.ErrNoConfiguration, err)
	}
	if env == nil {
		return nil, api.ErrNoConfiguration
	}

	if factory != nil {
		factory = driver.WithDeadline(factory, env.DriverTimeout())
	}
	if resolver == nil {
		resolver = variant.NewResolver(variant.NewRegistry())
	}

	e := &ExecutionContext{
		env:      env,
		registry: registry.New(),
		factory:  factory,
		resolver: resolver,
		recorder: events.Nop,
	}
	for _, opt := range opts {
		opt(e)
	}

	logging.Info("Lifecycle", "Execution context ready for environment %s (%d devices, default scope %s)",
		env.Name(), len(env.Devices()), env.DefaultScope())
	return e, nil
}

// MustNewExecution is NewExecution for process startup: when no valid
// environment is available it logs the cause and exits the process with
// ExitNoConfiguration.
func MustNewExecution(provider config.Provider, factory driver.Factory, resolver *variant.Resolver, opts ...Option) *ExecutionContext {
	e, err := NewExecution(provider, factory, resolver, opts...)
	if err != nil {
		logging.Error("Lifecycle", err, "Cannot start without an environment")
		exit(ExitNoConfiguration)
		return nil
	}
	return e
}

// Environment returns the run's environment.
func (e *ExecutionContext) Environment() *device.Environment {
	return e.env
}

// Registry returns the scope registry holding the shared stores.
func (e *ExecutionContext) Registry() *registry.Registry {
	return e.registry
}

// Resolver returns the variant resolver.
func (e *ExecutionContext) Resolver() *variant.Resolver {
	return e.resolver
}

// Recorder returns the event recorder.
func (e *ExecutionContext) Recorder() events.Recorder {
	return e.recorder
}
