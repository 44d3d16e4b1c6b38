// Package registry implements the driver resolution chain across scopes.
//
// Lookup always walks from narrowest to widest:
//
//	worker store (METHOD/CLASS) -> suite store (SUITE) -> execution store (EXECUTION)
//
// Placement writes to the store matching the handle's declared scope. Suite
// stores are created on first placement and dropped by ClearSuite; ClearAll
// releases the execution store and every remaining suite store at the end of
// a run.
//
// The registry never retries driver creation. A factory error or a missing
// driver surfaces as api.DriverUnavailableError naming the device.
package registry
