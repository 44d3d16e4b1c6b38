// Package store implements the resource stores that pool driver handles.
//
// A Store maps a device identity to one live Handle. Two implementations
// exist: NewLocal for the METHOD/CLASS store bound to a single worker, and
// NewShared for the SUITE and EXECUTION stores that every worker reaches.
//
// Clearing a store is best-effort. Every handle is released even if an
// earlier release fails; failures are logged and returned together as a
// multierror that callers log and absorb. Clearing an empty store does
// nothing.
package store
