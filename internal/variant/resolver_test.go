package variant

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/api"
	"stagehand/internal/device"
)

type loginPage interface {
	Title() string
}

type chromeLogin struct{}

func (chromeLogin) Title() string { return "chrome" }

type windowsLogin struct{}

func (windowsLogin) Title() string { return "windows" }

type firefoxLogin struct{}

func (firefoxLogin) Title() string { return "firefox" }

func (firefoxLogin) MatchCriteria() Criteria {
	return Criteria{Browser: device.BrowserFirefox}
}

type defaultLogin struct{ serial int }

func (defaultLogin) Title() string { return "default" }

func chromeOnWindows() *device.Device {
	return &device.Device{
		Name:    "chrome-win",
		Type:    device.TypeWeb,
		Browser: device.BrowserChrome,
		OS:      device.OSWindows,
	}
}

func TestResolveTieKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(chromeLogin{},
		Criteria{Browser: device.BrowserChrome, OS: device.OSOther})))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(windowsLogin{},
		Criteria{Browser: device.BrowserOther, OS: device.OSWindows})))

	r := NewResolver(reg)
	for i := 0; i < 50; i++ {
		page, err := ResolveFor[loginPage](r, chromeOnWindows())
		require.NoError(t, err)
		assert.Equal(t, "chrome", page.Title())
	}
}

func TestResolveHighestScoreWins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(defaultLogin{})))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(windowsLogin{},
		Criteria{OS: device.OSWindows})))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(chromeLogin{},
		Criteria{Browser: device.BrowserChrome, OS: device.OSWindows})))

	page, err := ResolveFor[loginPage](NewResolver(reg), chromeOnWindows())
	require.NoError(t, err)
	assert.Equal(t, "chrome", page.Title())
}

func TestResolveRejectsNegativeScores(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(firefoxLogin{})))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(defaultLogin{})))

	page, err := ResolveFor[loginPage](NewResolver(reg), chromeOnWindows())
	require.NoError(t, err)
	assert.Equal(t, "default", page.Title(), "zero beats negative even when registered later")
}

func TestResolveLoneMismatchFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(firefoxLogin{})))

	_, err := ResolveFor[loginPage](NewResolver(reg), chromeOnWindows())
	require.Error(t, err)

	var noMatch *api.NoMatchingVariantError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, "chrome-win", noMatch.Device)
	assert.Equal(t, 1, noMatch.Candidates)
	assert.Contains(t, err.Error(), "variant.loginPage")
}

func TestResolveLoneCandidateWithoutCriteria(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(defaultLogin{})))

	mobile := &device.Device{Name: "pixel", Type: device.TypeMobile, MobileOS: device.MobileAndroid}
	page, err := ResolveFor[loginPage](NewResolver(reg), mobile)
	require.NoError(t, err)
	assert.Equal(t, "default", page.Title())
}

func TestResolveNoCandidates(t *testing.T) {
	_, err := ResolveFor[loginPage](NewResolver(NewRegistry()), chromeOnWindows())

	var noMatch *api.NoMatchingVariantError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, 0, noMatch.Candidates)
}

func TestResolveExactTypePin(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(chromeLogin{},
		Criteria{Browser: device.BrowserChrome, OS: device.OSWindows})))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(windowsLogin{})))

	r := NewResolver(reg)

	pinned, err := ResolveFor[windowsLogin](r, chromeOnWindows())
	require.NoError(t, err)
	assert.Equal(t, "windows", pinned.Title(), "concrete request ignores the higher scoring sibling")

	page, err := ResolveFor[loginPage](r, chromeOnWindows())
	require.NoError(t, err)
	assert.Equal(t, "chrome", page.Title())
}

func TestSelectExactTypePinFromMixedCandidates(t *testing.T) {
	candidates := []Candidate{
		Instance(chromeLogin{}, Criteria{Browser: device.BrowserChrome}),
		Instance(windowsLogin{}, Criteria{OS: device.OSWindows}),
	}

	winner, err := Select(TypeOf[windowsLogin](), candidates, chromeOnWindows())
	require.NoError(t, err)
	assert.Equal(t, TypeOf[windowsLogin](), winner.Type)

	_, err = Select(TypeOf[firefoxLogin](), candidates, chromeOnWindows())
	assert.Error(t, err)
}

func TestConstructorBuildsFreshInstances(t *testing.T) {
	serial := 0
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Constructor(func() loginPage {
		serial++
		return defaultLogin{serial: serial}
	})))

	r := NewResolver(reg)
	first, err := ResolveFor[loginPage](r, chromeOnWindows())
	require.NoError(t, err)
	second, err := ResolveFor[loginPage](r, chromeOnWindows())
	require.NoError(t, err)

	assert.NotEqual(t, first.(defaultLogin).serial, second.(defaultLogin).serial)
}

func TestConstructorReadsMatcherCriteria(t *testing.T) {
	c := Constructor(func() firefoxLogin { return firefoxLogin{} })
	assert.Equal(t, device.BrowserFirefox, c.Criteria.Browser)

	explicit := Constructor(func() firefoxLogin { return firefoxLogin{} }, Criteria{Browser: device.BrowserChrome})
	assert.Equal(t, device.BrowserChrome, explicit.Criteria.Browser)
}

type pointerMatcher struct{}

func (*pointerMatcher) MatchCriteria() Criteria {
	return Criteria{DeviceType: device.TypeMobile}
}

func TestConstructorDoesNotBuildAtRegistration(t *testing.T) {
	calls := 0

	byValue := Constructor(func() firefoxLogin {
		calls++
		return firefoxLogin{}
	})
	assert.Equal(t, device.BrowserFirefox, byValue.Criteria.Browser)

	byPointer := Constructor(func() *pointerMatcher {
		calls++
		return &pointerMatcher{}
	})
	assert.Equal(t, device.TypeMobile, byPointer.Criteria.DeviceType)

	addressable := Constructor(func() pointerMatcher {
		calls++
		return pointerMatcher{}
	})
	assert.Equal(t, device.TypeMobile, addressable.Criteria.DeviceType)

	assert.Zero(t, calls)

	byValue.New()
	assert.Equal(t, 1, calls)
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.Register(nil, Instance(chromeLogin{})))
	assert.Error(t, RegisterFor[loginPage](reg, Candidate{Type: TypeOf[chromeLogin]()}))
	assert.Error(t, RegisterFor[loginPage](reg, Candidate{New: func() any { return chromeLogin{} }}))
	assert.Error(t, RegisterFor[loginPage](reg, Instance("not a page")))

	assert.Empty(t, reg.Capabilities())
}

func TestRegistryCapabilitiesOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(chromeLogin{})))
	require.NoError(t, RegisterFor[any](reg, Instance(42)))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(windowsLogin{})))

	assert.Equal(t, []string{"variant.loginPage", "interface {}"}, typeNames(reg.Capabilities()))
	assert.Len(t, reg.Candidates(TypeOf[loginPage]()), 2)
}

func TestExplain(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(firefoxLogin{})))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(chromeLogin{}, Criteria{Browser: device.BrowserChrome})))
	require.NoError(t, RegisterFor[loginPage](reg, Candidate{
		Name: "fallback",
		Type: TypeOf[defaultLogin](),
		New:  func() any { return defaultLogin{} },
	}))

	rankings := NewResolver(reg).Explain(TypeOf[loginPage](), chromeOnWindows())
	require.Len(t, rankings, 3)

	assert.Equal(t, "variant.chromeLogin", rankings[0].Name())
	assert.Equal(t, 1, rankings[0].Score)
	assert.True(t, rankings[0].Selected)

	assert.Equal(t, "fallback", rankings[1].Name())
	assert.False(t, rankings[1].Selected)
	assert.False(t, rankings[1].Rejected)

	assert.Equal(t, "variant.firefoxLogin", rankings[2].Name())
	assert.Equal(t, -1, rankings[2].Score)
	assert.True(t, rankings[2].Rejected)
}

func TestExplainMarksPinnedExclusions(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterFor[loginPage](reg, Instance(chromeLogin{})))
	require.NoError(t, RegisterFor[loginPage](reg, Instance(windowsLogin{})))

	rankings := NewResolver(reg).Explain(TypeOf[windowsLogin](), chromeOnWindows())
	require.Len(t, rankings, 2)
	assert.True(t, rankings[0].Selected)
	assert.Equal(t, "variant.windowsLogin", rankings[0].Name())
	assert.True(t, rankings[1].Excluded)
}

func typeNames(types []reflect.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
