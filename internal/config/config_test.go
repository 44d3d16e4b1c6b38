package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/api"
	"stagehand/internal/device"
	"stagehand/internal/scope"
	"stagehand/pkg/logging"
)

const nightly = `
name: nightly
defaultScope: SUITE
driverTimeout: 90s
devices:
  - name: chrome
    type: WEB
    browser: CHROME
    browserVersion: "126"
    os: LINUX
    resolution: {width: 1920, height: 1080}
    capabilities:
      headless: "true"
  - name: pixel
    type: MOBILE
    mobileOS: ANDROID
    simulator: true
    scope: method
  - name: notepad
    type: DESKTOP
    os: WINDOWS
`

// Helper function to create a temporary environment file
func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stagehand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := LoadEnvironment(writeEnvFile(t, nightly))
	require.NoError(t, err)

	assert.Equal(t, "nightly", cfg.Name)
	assert.Equal(t, scope.Suite, cfg.DefaultScope)
	assert.Equal(t, 90*time.Second, cfg.DriverTimeout)
	require.Len(t, cfg.Devices, 3)

	chrome := cfg.Devices[0]
	assert.Equal(t, device.TypeWeb, chrome.Type)
	assert.Equal(t, device.BrowserChrome, chrome.Browser)
	assert.Equal(t, "126", chrome.BrowserVersion)
	assert.Equal(t, device.Resolution{Width: 1920, Height: 1080}, chrome.Resolution)
	assert.Equal(t, "true", chrome.Capabilities["headless"])
	assert.Equal(t, scope.Unspecified, chrome.Scope)

	pixel := cfg.Devices[1]
	assert.Equal(t, device.MobileAndroid, pixel.MobileOS)
	assert.True(t, pixel.Simulator)
	assert.Equal(t, scope.Method, pixel.Scope)
}

func TestLoadEnvironment_Defaults(t *testing.T) {
	cfg, err := LoadEnvironment(writeEnvFile(t, "devices:\n  - name: chrome\n    type: WEB\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultEnvironmentName, cfg.Name)
	assert.Equal(t, scope.Class, cfg.DefaultScope)
	assert.Equal(t, 2*time.Minute, cfg.DriverTimeout)
}

func TestLoadEnvironment_Missing(t *testing.T) {
	_, err := LoadEnvironment(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNoConfiguration))
}

func TestParseEnvironment_Empty(t *testing.T) {
	_, err := ParseEnvironment([]byte("  \n"), "inline")
	assert.ErrorIs(t, err, api.ErrNoConfiguration)
}

func TestParseEnvironment_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		expect  string
	}{
		{"bad yaml", "devices: [", "malformed yaml"},
		{"unknown field", "devices:\n  - name: a\n    type: WEB\n    brwoser: CHROME\n", "brwoser"},
		{"bad scope", "defaultScope: FOREVER\ndevices:\n  - name: a\n    type: WEB\n", "FOREVER"},
		{"bad duration", "driverTimeout: soon\ndevices:\n  - name: a\n    type: WEB\n", "malformed yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvironment([]byte(tt.content), "env.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)

			var cfgErr api.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "env.yaml", cfgErr.FilePath)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    EnvironmentConfig
		fields []string
	}{
		{
			name: "valid",
			cfg: EnvironmentConfig{DefaultScope: scope.Class, Devices: []device.Device{
				{Name: "chrome", Type: device.TypeWeb, Browser: device.BrowserChrome},
			}},
		},
		{
			name:   "no devices",
			cfg:    EnvironmentConfig{DefaultScope: scope.Class},
			fields: []string{"devices"},
		},
		{
			name: "missing name and type",
			cfg: EnvironmentConfig{DefaultScope: scope.Class, Devices: []device.Device{
				{},
			}},
			fields: []string{"devices[0].name", "devices[0].type"},
		},
		{
			name: "duplicate names",
			cfg: EnvironmentConfig{DefaultScope: scope.Class, Devices: []device.Device{
				{Name: "chrome", Type: device.TypeWeb},
				{Name: "chrome", Type: device.TypeWeb},
			}},
			fields: []string{"devices[1].name"},
		},
		{
			name: "unknown enums",
			cfg: EnvironmentConfig{DefaultScope: scope.Class, Devices: []device.Device{
				{Name: "x", Type: "TV", OS: "BEOS"},
			}},
			fields: []string{"devices[0].type", "devices[0].os"},
		},
		{
			name: "attributes on the wrong family",
			cfg: EnvironmentConfig{DefaultScope: scope.Class, Devices: []device.Device{
				{Name: "pixel", Type: device.TypeMobile, Browser: device.BrowserChrome},
				{Name: "chrome", Type: device.TypeWeb, MobileOS: device.MobileIOS},
			}},
			fields: []string{"devices[0].browser", "devices[1].mobileOS"},
		},
		{
			name: "negative values",
			cfg: EnvironmentConfig{DefaultScope: scope.Class, DriverTimeout: -time.Second, Devices: []device.Device{
				{Name: "chrome", Type: device.TypeWeb, Resolution: device.Resolution{Width: -1}},
			}},
			fields: []string{"driverTimeout", "devices[0].resolution"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg, "env.yaml")
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var collection api.ConfigurationErrorCollection
			require.True(t, errors.As(err, &collection))

			var got []string
			for _, e := range collection.Errors {
				assert.Equal(t, "env.yaml", e.FilePath)
				got = append(got, e.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestResolvePath(t *testing.T) {
	original := lookupEnv
	defer func() { lookupEnv = original }()

	lookupEnv = func(string) (string, bool) { return "", false }
	assert.Equal(t, "explicit.yaml", ResolvePath("explicit.yaml"))
	assert.Equal(t, DefaultEnvironmentFile, ResolvePath(""))

	lookupEnv = func(key string) (string, bool) {
		assert.Equal(t, EnvironmentVariable, key)
		return "/etc/stagehand/ci.yaml", true
	}
	assert.Equal(t, "/etc/stagehand/ci.yaml", ResolvePath(""))
	assert.Equal(t, "explicit.yaml", ResolvePath("explicit.yaml"))
}

func TestFileProvider(t *testing.T) {
	p := NewFileProvider(writeEnvFile(t, nightly))

	env, err := p.Environment()
	require.NoError(t, err)
	assert.Equal(t, "nightly", env.Name())
	assert.Equal(t, scope.Suite, env.DefaultScope())

	again, err := p.Environment()
	require.NoError(t, err)
	assert.Same(t, env, again)

	pixel, ok := env.Device("pixel")
	require.True(t, ok)
	assert.Equal(t, scope.Method, env.ScopeFor(pixel))

	first, ok := env.FirstOfType(device.TypeDesktop)
	require.True(t, ok)
	assert.Equal(t, "notepad", first.Name)
}

func TestFileProvider_Missing(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	env, err := p.Environment()
	assert.Nil(t, env)
	assert.ErrorIs(t, err, api.ErrNoConfiguration)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(EnvironmentConfig{Devices: []device.Device{
		{Name: "chrome", Type: device.TypeWeb},
	}})
	env, err := p.Environment()
	require.NoError(t, err)
	assert.Equal(t, DefaultEnvironmentName, env.Name())
	assert.Equal(t, DefaultDriverTimeout, env.DriverTimeout())

	invalid := NewStaticProvider(EnvironmentConfig{})
	_, err = invalid.Environment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have at least one device")

	var zero StaticProvider
	_, err = zero.Environment()
	assert.ErrorIs(t, err, api.ErrNoConfiguration)
}

func TestEnvironmentCopiesDevices(t *testing.T) {
	cfg := EnvironmentConfig{Name: "x", DefaultScope: scope.Class, Devices: []device.Device{
		{Name: "chrome", Type: device.TypeWeb, Capabilities: map[string]string{"k": "v"}},
	}}
	env := cfg.Environment()

	cfg.Devices[0].Name = "changed"
	cfg.Devices[0].Capabilities["k"] = "changed"

	d, ok := env.Device("chrome")
	require.True(t, ok)
	v, _ := d.Capability("k")
	assert.Equal(t, "v", v)
}

func TestLoadEnvironmentLogsUnderConfigSubsystem(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.LevelDebug, &buf, logging.FormatText)
	defer logging.Init(logging.LevelInfo, os.Stderr, logging.FormatText)

	dir := t.TempDir()
	path := filepath.Join(dir, "stagehand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(nightly), 0o644))

	_, err := LoadEnvironment(path)
	require.NoError(t, err)
	_, err = LoadEnvironment(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "subsystem=Config")
	assert.Contains(t, out, "Loaded environment nightly")
	assert.Contains(t, out, "No environment file found")
	assert.NotContains(t, out, "ConfigLoader")
}
