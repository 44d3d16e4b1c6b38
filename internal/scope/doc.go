// Package scope defines the reuse boundaries of pooled driver handles.
//
// METHOD and CLASS handles live in the store bound to one worker, SUITE
// handles in a store keyed by suite name, and EXECUTION handles in the single
// run-wide store. Lookups walk the scopes from narrowest to widest.
package scope
