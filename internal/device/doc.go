// Package device describes execution targets (browsers, mobile devices,
// desktop applications) and the Environment that groups them for a run.
//
// Enum-valued attributes are string types. The empty string means the value
// is unknown; "OTHER" is a concrete value on a device and the wildcard in
// match criteria.
package device
