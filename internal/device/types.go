package device

// Other is the wildcard value of every enum-valued attribute. In match
// criteria it means "indifferent"; on a device it is a valid concrete value.
const Other = "OTHER"

// Type is the kind of execution target a device represents.
type Type string

const (
	TypeWeb     Type = "WEB"
	TypeMobile  Type = "MOBILE"
	TypeDesktop Type = "DESKTOP"
	TypeOther   Type = Other
)

// Known reports whether t is one of the declared device types.
func (t Type) Known() bool {
	switch t {
	case TypeWeb, TypeMobile, TypeDesktop, TypeOther:
		return true
	}
	return false
}

// OS is the operating system a browser or desktop application runs on.
type OS string

const (
	OSWindows OS = "WINDOWS"
	OSMac     OS = "MAC"
	OSLinux   OS = "LINUX"
	OSOther   OS = Other
)

func (o OS) Known() bool {
	switch o {
	case OSWindows, OSMac, OSLinux, OSOther:
		return true
	}
	return false
}

// Browser identifies a browser family.
type Browser string

const (
	BrowserChrome  Browser = "CHROME"
	BrowserFirefox Browser = "FIREFOX"
	BrowserSafari  Browser = "SAFARI"
	BrowserEdge    Browser = "EDGE"
	BrowserOther   Browser = Other
)

func (b Browser) Known() bool {
	switch b {
	case BrowserChrome, BrowserFirefox, BrowserSafari, BrowserEdge, BrowserOther:
		return true
	}
	return false
}

// MobileOS identifies a mobile platform.
type MobileOS string

const (
	MobileAndroid MobileOS = "ANDROID"
	MobileIOS     MobileOS = "IOS"
	MobileOther   MobileOS = Other
)

func (m MobileOS) Known() bool {
	switch m {
	case MobileAndroid, MobileIOS, MobileOther:
		return true
	}
	return false
}

// Resolution is a screen or window size in pixels. Zero means unknown.
type Resolution struct {
	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`
}

// IsZero reports whether neither dimension is known.
func (r Resolution) IsZero() bool {
	return r.Width == 0 && r.Height == 0
}
