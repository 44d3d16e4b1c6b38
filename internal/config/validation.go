package config

import (
	"fmt"
	"strings"

	"stagehand/internal/api"
	"stagehand/internal/device"
)

var (
	allowedTypes     = []string{string(device.TypeWeb), string(device.TypeMobile), string(device.TypeDesktop), string(device.TypeOther)}
	allowedOS        = []string{string(device.OSWindows), string(device.OSMac), string(device.OSLinux), device.Other}
	allowedBrowsers  = []string{string(device.BrowserChrome), string(device.BrowserFirefox), string(device.BrowserSafari), string(device.BrowserEdge), device.Other}
	allowedMobileOSs = []string{string(device.MobileAndroid), string(device.MobileIOS), device.Other}
)

// validator collects every problem of one file instead of stopping at the first.
type validator struct {
	path   string
	errors api.ConfigurationErrorCollection
}

func (v *validator) add(field, format string, args ...interface{}) {
	v.errors.Add(api.ConfigurationError{
		FilePath: v.path,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

// required records an error when value is blank.
func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
	}
}

// oneOf records an error when a non-empty value is not in allowed.
func (v *validator) oneOf(field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.add(field, "%q must be one of: %s", value, strings.Join(allowed, ", "))
}

// Validate checks c and returns an api.ConfigurationErrorCollection listing
// every problem, or nil. path only labels the errors.
func Validate(c EnvironmentConfig, path string) error {
	v := &validator{path: path}

	if !c.DefaultScope.Valid() {
		v.add("defaultScope", "unknown scope %d", int(c.DefaultScope))
	}
	if c.DriverTimeout < 0 {
		v.add("driverTimeout", "must not be negative, got %s", c.DriverTimeout)
	}
	if len(c.Devices) == 0 {
		v.add("devices", "must have at least one device")
	}

	seen := make(map[string]int, len(c.Devices))
	for i, d := range c.Devices {
		field := fmt.Sprintf("devices[%d]", i)

		v.required(field+".name", d.Name)
		if d.Name != "" {
			if first, dup := seen[d.Name]; dup {
				v.add(field+".name", "duplicate device name %q (first defined at devices[%d])", d.Name, first)
			} else {
				seen[d.Name] = i
			}
		}

		v.required(field+".type", string(d.Type))
		v.oneOf(field+".type", string(d.Type), allowedTypes)
		v.oneOf(field+".os", string(d.OS), allowedOS)
		v.oneOf(field+".browser", string(d.Browser), allowedBrowsers)
		v.oneOf(field+".mobileOS", string(d.MobileOS), allowedMobileOSs)

		if d.Resolution.Width < 0 || d.Resolution.Height < 0 {
			v.add(field+".resolution", "dimensions must not be negative")
		}
		if d.Browser != "" && d.Type != device.TypeWeb {
			v.add(field+".browser", "only applies to WEB devices, device is %s", d.Type)
		}
		if d.MobileOS != "" && d.Type != device.TypeMobile {
			v.add(field+".mobileOS", "only applies to MOBILE devices, device is %s", d.Type)
		}
	}

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}
