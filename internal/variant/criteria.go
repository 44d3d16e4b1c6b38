package variant

import (
	"fmt"
	"strconv"

	"stagehand/internal/device"
)

// Criteria is the declarative match metadata of a candidate. Zero values
// mean "indifferent": empty enums and strings, a nil Simulator flag and a
// zero resolution never affect the score.
type Criteria struct {
	DeviceType     device.Type     `yaml:"deviceType,omitempty" json:"deviceType,omitempty"`
	OS             device.OS       `yaml:"os,omitempty" json:"os,omitempty"`
	OSVersion      string          `yaml:"osVersion,omitempty" json:"osVersion,omitempty"`
	Browser        device.Browser  `yaml:"browser,omitempty" json:"browser,omitempty"`
	BrowserVersion string          `yaml:"browserVersion,omitempty" json:"browserVersion,omitempty"`
	MobileOS       device.MobileOS `yaml:"mobileOS,omitempty" json:"mobileOS,omitempty"`
	Simulator      *bool           `yaml:"simulator,omitempty" json:"simulator,omitempty"`
	Width          int             `yaml:"width,omitempty" json:"width,omitempty"`
	Height         int             `yaml:"height,omitempty" json:"height,omitempty"`
}

// IsZero reports whether c declares no expectation at all.
func (c Criteria) IsZero() bool {
	return c.DeviceType == "" && c.OS == "" && c.OSVersion == "" &&
		c.Browser == "" && c.BrowserVersion == "" && c.MobileOS == "" &&
		c.Simulator == nil && c.Width == 0 && c.Height == 0
}

// Matcher is implemented by candidates that declare their own criteria.
type Matcher interface {
	MatchCriteria() Criteria
}

// Bool returns a pointer to b, for populating Criteria.Simulator.
func Bool(b bool) *bool {
	return &b
}

// Contribution is the score one attribute added to a candidate.
type Contribution struct {
	Attribute string `json:"attribute"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual,omitempty"`
	Points    int    `json:"points"`
}

// Score sums the per-attribute contributions of c against d.
func Score(c Criteria, d *device.Device) int {
	total, _ := ScoreDetail(c, d)
	return total
}

// ScoreDetail returns the total score and the non-indifferent contributions.
//
// The device type always scores. Browser attributes (browser, browser
// version, os, os version, resolution) only score on WEB devices, mobile
// attributes (mobile os, os version, simulator) only on MOBILE devices and
// desktop attributes (os, os version, resolution) only on DESKTOP devices.
func ScoreDetail(c Criteria, d *device.Device) (int, []Contribution) {
	if d == nil {
		return 0, nil
	}

	var s scorer
	s.enum("deviceType", string(c.DeviceType), string(d.Type))

	switch d.Type {
	case device.TypeWeb:
		s.enum("browser", string(c.Browser), string(d.Browser))
		s.str("browserVersion", c.BrowserVersion, d.BrowserVersion)
		s.enum("os", string(c.OS), string(d.OS))
		s.str("osVersion", c.OSVersion, d.OSVersion)
		s.resolution(c.Width, c.Height, d.Resolution)
	case device.TypeMobile:
		s.enum("mobileOS", string(c.MobileOS), string(d.MobileOS))
		s.str("osVersion", c.OSVersion, d.OSVersion)
		s.flag("simulator", c.Simulator, d.Simulator)
	case device.TypeDesktop:
		s.enum("os", string(c.OS), string(d.OS))
		s.str("osVersion", c.OSVersion, d.OSVersion)
		s.resolution(c.Width, c.Height, d.Resolution)
	}

	return s.total, s.parts
}

type scorer struct {
	total int
	parts []Contribution
}

func (s *scorer) add(attr, expected, actual string, points int) {
	s.total += points
	s.parts = append(s.parts, Contribution{Attribute: attr, Expected: expected, Actual: actual, Points: points})
}

// enum: OTHER or empty expectation is indifferent, an unknown actual value
// scores 0, otherwise +1 on equality and -1 on mismatch.
func (s *scorer) enum(attr, expected, actual string) {
	if expected == "" || expected == device.Other {
		return
	}
	if actual == "" {
		s.add(attr, expected, actual, 0)
		return
	}
	if expected == actual {
		s.add(attr, expected, actual, 1)
		return
	}
	s.add(attr, expected, actual, -1)
}

// str: empty expectation is indifferent, otherwise exact equality.
func (s *scorer) str(attr, expected, actual string) {
	if expected == "" {
		return
	}
	if expected == actual {
		s.add(attr, expected, actual, 1)
		return
	}
	s.add(attr, expected, actual, -1)
}

// flag: an undeclared flag is indifferent, otherwise exact equality.
func (s *scorer) flag(attr string, expected *bool, actual bool) {
	if expected == nil {
		return
	}
	points := -1
	if *expected == actual {
		points = 1
	}
	s.add(attr, strconv.FormatBool(*expected), strconv.FormatBool(actual), points)
}

// resolution: each specified bound scores +1 when the device fits within it
// and -1 when it does not. Dimensions the device does not report score 0.
func (s *scorer) resolution(width, height int, actual device.Resolution) {
	if width == 0 && height == 0 {
		return
	}
	if actual.IsZero() {
		s.add("resolution", fmt.Sprintf("%dx%d", width, height), "", 0)
		return
	}
	if width > 0 && actual.Width > 0 {
		s.add("width", strconv.Itoa(width), strconv.Itoa(actual.Width), fits(actual.Width, width))
	}
	if height > 0 && actual.Height > 0 {
		s.add("height", strconv.Itoa(height), strconv.Itoa(actual.Height), fits(actual.Height, height))
	}
}

func fits(actual, bound int) int {
	if actual <= bound {
		return 1
	}
	return -1
}
