package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/scope"
)

func testDevices() []*Device {
	return []*Device{
		{Name: "chrome-win", Type: TypeWeb, Browser: BrowserChrome, OS: OSWindows},
		{Name: "pixel", Type: TypeMobile, MobileOS: MobileAndroid, Scope: scope.Suite},
		{Name: "firefox-linux", Type: TypeWeb, Browser: BrowserFirefox, OS: OSLinux},
		{Name: "chrome-win", Type: TypeDesktop},
	}
}

func TestNewEnvironment(t *testing.T) {
	env := NewEnvironment("nightly", scope.Unspecified, time.Minute, testDevices())

	assert.Equal(t, "nightly", env.Name())
	assert.Equal(t, scope.Class, env.DefaultScope(), "unspecified default scope falls back to CLASS")
	assert.Equal(t, time.Minute, env.DriverTimeout())

	devices := env.Devices()
	require.Len(t, devices, 3, "duplicate names keep the first device")
	assert.Equal(t, TypeWeb, devices[0].Type)

	devices[0] = nil
	assert.NotNil(t, env.Devices()[0], "Devices returns a copy")
}

func TestEnvironmentLookup(t *testing.T) {
	env := NewEnvironment("nightly", scope.Method, 0, testDevices())

	d, ok := env.Device("pixel")
	require.True(t, ok)
	assert.True(t, d.IsMobile())

	_, ok = env.Device("missing")
	assert.False(t, ok)

	first, ok := env.FirstOfType(TypeWeb)
	require.True(t, ok)
	assert.Equal(t, "chrome-win", first.Name)

	assert.Len(t, env.OfType(TypeWeb), 2)

	_, ok = env.FirstOfType(TypeDesktop)
	assert.False(t, ok)
}

func TestScopeFor(t *testing.T) {
	env := NewEnvironment("nightly", scope.Method, 0, testDevices())

	chrome, _ := env.Device("chrome-win")
	pixel, _ := env.Device("pixel")

	assert.Equal(t, scope.Method, env.ScopeFor(chrome))
	assert.Equal(t, scope.Suite, env.ScopeFor(pixel))
}

func TestKnownEnums(t *testing.T) {
	assert.True(t, TypeWeb.Known())
	assert.False(t, Type("TV").Known())
	assert.True(t, OSOther.Known())
	assert.False(t, OS("BEOS").Known())
	assert.True(t, BrowserEdge.Known())
	assert.False(t, Browser("").Known())
	assert.True(t, MobileIOS.Known())
	assert.False(t, MobileOS("SYMBIAN").Known())
}

func TestResolutionIsZero(t *testing.T) {
	assert.True(t, Resolution{}.IsZero())
	assert.False(t, Resolution{Width: 1280}.IsZero())
}
