package device

import (
	"fmt"
	"time"

	"stagehand/internal/scope"
)

// Device is the identity of a requested execution target together with the
// attributes variant matching scores against. A Device is immutable once
// loaded and is shared by pointer; stores key handles by Key().
type Device struct {
	Name           string            `yaml:"name" json:"name"`
	Type           Type              `yaml:"type" json:"type"`
	Scope          scope.Scope       `yaml:"scope,omitempty" json:"scope,omitempty"`
	OS             OS                `yaml:"os,omitempty" json:"os,omitempty"`
	OSVersion      string            `yaml:"osVersion,omitempty" json:"osVersion,omitempty"`
	Browser        Browser           `yaml:"browser,omitempty" json:"browser,omitempty"`
	BrowserVersion string            `yaml:"browserVersion,omitempty" json:"browserVersion,omitempty"`
	MobileOS       MobileOS          `yaml:"mobileOS,omitempty" json:"mobileOS,omitempty"`
	Simulator      bool              `yaml:"simulator,omitempty" json:"simulator,omitempty"`
	Resolution     Resolution        `yaml:"resolution,omitempty" json:"resolution,omitempty"`
	Capabilities   map[string]string `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
}

// Key returns the identity used by resource stores.
func (d *Device) Key() string {
	return d.Name
}

func (d *Device) String() string {
	if d == nil {
		return "<nil device>"
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.Type)
}

// IsWeb, IsMobile and IsDesktop report the device kind.
func (d *Device) IsWeb() bool { return d.Type == TypeWeb }
func (d *Device) IsMobile() bool { return d.Type == TypeMobile }
func (d *Device) IsDesktop() bool { return d.Type == TypeDesktop }

// Capability returns a free-form capability value.
func (d *Device) Capability(key string) (string, bool) {
	v, ok := d.Capabilities[key]
	return v, ok
}

// Environment is the resolved set of devices for one run. It is read-only
// after construction and safe for concurrent use.
type Environment struct {
	name          string
	defaultScope  scope.Scope
	driverTimeout time.Duration
	devices       []*Device
	byName        map[string]*Device
}

// NewEnvironment builds an Environment. Device names are expected to be unique;
// the first device wins if they are not.
func NewEnvironment(name string, defaultScope scope.Scope, driverTimeout time.Duration, devices []*Device) *Environment {
	env := &Environment{
		name:          name,
		defaultScope:  defaultScope.Or(scope.Class),
		driverTimeout: driverTimeout,
		devices:       make([]*Device, 0, len(devices)),
		byName:        make(map[string]*Device, len(devices)),
	}
	for _, d := range devices {
		if d == nil {
			continue
		}
		if _, exists := env.byName[d.Name]; exists {
			continue
		}
		env.devices = append(env.devices, d)
		env.byName[d.Name] = d
	}
	return env
}

func (e *Environment) Name() string { return e.name }

// DefaultScope is the scope used for devices that do not declare one.
func (e *Environment) DefaultScope() scope.Scope { return e.defaultScope }

// DriverTimeout bounds each external driver construction. Zero disables the bound.
func (e *Environment) DriverTimeout() time.Duration { return e.driverTimeout }

// Devices returns the devices in declaration order.
func (e *Environment) Devices() []*Device {
	out := make([]*Device, len(e.devices))
	copy(out, e.devices)
	return out
}

// Device looks a device up by name.
func (e *Environment) Device(name string) (*Device, bool) {
	d, ok := e.byName[name]
	return d, ok
}

// FirstOfType returns the first declared device of the given type.
func (e *Environment) FirstOfType(t Type) (*Device, bool) {
	for _, d := range e.devices {
		if d.Type == t {
			return d, true
		}
	}
	return nil, false
}

// OfType returns every device of the given type in declaration order.
func (e *Environment) OfType(t Type) []*Device {
	var out []*Device
	for _, d := range e.devices {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// ScopeFor returns the scope a new handle for d should be declared with.
func (e *Environment) ScopeFor(d *Device) scope.Scope {
	return d.Scope.Or(e.defaultScope)
}
