package config

import (
	"time"

	"stagehand/internal/device"
	"stagehand/internal/scope"
)

// EnvironmentConfig is the on-disk shape of an environment file.
//
//	name: nightly
//	defaultScope: CLASS
//	driverTimeout: 90s
//	devices:
//	  - name: chrome
//	    type: WEB
//	    browser: CHROME
//	    os: LINUX
//	    scope: SUITE
type EnvironmentConfig struct {
	Name          string          `yaml:"name"`
	DefaultScope  scope.Scope     `yaml:"defaultScope,omitempty"`
	DriverTimeout time.Duration   `yaml:"driverTimeout,omitempty"`
	Devices       []device.Device `yaml:"devices"`
}

// Environment converts the configuration into an immutable device.Environment.
// Each device is copied so later edits to c do not leak into the environment.
func (c EnvironmentConfig) Environment() *device.Environment {
	devices := make([]*device.Device, len(c.Devices))
	for i := range c.Devices {
		d := c.Devices[i]
		if d.Capabilities != nil {
			caps := make(map[string]string, len(d.Capabilities))
			for k, v := range d.Capabilities {
				caps[k] = v
			}
			d.Capabilities = caps
		}
		devices[i] = &d
	}
	return device.NewEnvironment(c.Name, c.DefaultScope, c.DriverTimeout, devices)
}
