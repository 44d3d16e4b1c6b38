// Package variant picks one implementation of a capability when several
// candidates are registered for it.
//
// Each candidate declares Criteria (device type, os, browser, versions,
// resolution bounds, simulator flag). At request time every candidate is
// scored against the active device, attribute by attribute:
//
//	enum      OTHER/unset expected: 0, unknown actual: 0, equal: +1, different: -1
//	string    empty expected: 0, equal: +1, different: -1
//	boolean   undeclared: 0, equal: +1, different: -1
//	resolution per declared bound the device reports: fits: +1, exceeds: -1
//
// Browser attributes only count on WEB devices, mobile attributes on MOBILE
// devices and desktop attributes on DESKTOP devices.
//
// Candidates are stable-sorted by score; negative scores are rejected and the
// first remaining candidate wins, so ties go to the earliest registration.
// When the requested capability is a concrete type, only candidates of exactly
// that type are considered.
//
//	reg := variant.NewRegistry()
//	_ = variant.RegisterFor[LoginPage](reg, variant.Constructor(newChromeLogin,
//	    variant.Criteria{Browser: device.BrowserChrome}))
//	_ = variant.RegisterFor[LoginPage](reg, variant.Constructor(newDefaultLogin))
//
//	page, err := variant.ResolveFor[LoginPage](variant.NewResolver(reg), dev)
package variant
