package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/singleflight"

	"stagehand/internal/api"
	"stagehand/internal/device"
	"stagehand/internal/driver"
	"stagehand/internal/scope"
	"stagehand/internal/store"
	"stagehand/pkg/logging"
)

// Registry composes the resource stores of every scope and implements the
// narrowest-to-widest resolution chain. The worker-bound store is owned by
// the caller and passed to each call; suite and execution stores live here
// and are shared by all workers.
type Registry struct {
	global store.Store
	suites sync.Map // suite name -> store.Store

	creating singleflight.Group
}

// New creates a registry with an empty execution store.
func New() *Registry {
	return &Registry{
		global: store.NewShared("execution"),
	}
}

// Global returns the run-wide EXECUTION store.
func (r *Registry) Global() store.Store {
	return r.global
}

// Suite returns the SUITE store for name if one has been created.
func (r *Registry) Suite(name string) (store.Store, bool) {
	v, ok := r.suites.Load(name)
	if !ok {
		return nil, false
	}
	return v.(store.Store), true
}

func (r *Registry) suiteStore(name string) store.Store {
	if s, ok := r.Suite(name); ok {
		return s
	}
	v, loaded := r.suites.LoadOrStore(name, store.NewShared("suite "+name))
	if !loaded {
		logging.Debug("Registry", "Created suite store for %s", name)
	}
	return v.(store.Store)
}

// Resolve looks d up in the worker-bound store, then the suite store, then
// the execution store, and returns the first handle found.
func (r *Registry) Resolve(local store.Store, suite string, d *device.Device) (*store.Handle, bool) {
	if local != nil {
		if h, ok := local.Get(d); ok {
			return h, true
		}
	}
	if s, ok := r.Suite(suite); ok {
		if h, ok := s.Get(d); ok {
			return h, true
		}
	}
	return r.global.Get(d)
}

// ResolveByType walks the same chain as Resolve but matches any handle whose
// device has type t.
func (r *Registry) ResolveByType(local store.Store, suite string, t device.Type) (*store.Handle, bool) {
	if local != nil {
		if h, ok := local.FindByType(t); ok {
			return h, true
		}
	}
	if s, ok := r.Suite(suite); ok {
		if h, ok := s.FindByType(t); ok {
			return h, true
		}
	}
	return r.global.FindByType(t)
}

// Place stores h in the store matching its declared scope. The suite store
// is created on first use.
func (r *Registry) Place(local store.Store, suite string, h *store.Handle) error {
	target, err := r.target(local, suite, h.Scope())
	if err != nil {
		return err
	}
	target.Put(h.Device(), h)
	logging.Debug("Registry", "Placed %s (suite=%s)", h, suite)
	return nil
}

func (r *Registry) target(local store.Store, suite string, sc scope.Scope) (store.Store, error) {
	switch sc {
	case scope.Method, scope.Class:
		if local == nil {
			return nil, fmt.Errorf("%s-scoped handle requires a worker-bound store", sc)
		}
		return local, nil
	case scope.Suite:
		if suite == "" {
			return nil, fmt.Errorf("%s-scoped handle requires a suite name", sc)
		}
		return r.suiteStore(suite), nil
	case scope.Execution:
		return r.global, nil
	default:
		return nil, fmt.Errorf("cannot place handle with scope %s", sc)
	}
}

// Acquire returns the live handle for d, creating one through factory when
// no store in the chain holds it. The new handle is declared with scope sc
// and placed accordingly. Concurrent creations of the same suite or execution
// handle are collapsed into one factory call. created reports whether this
// call built the handle.
func (r *Registry) Acquire(ctx context.Context, local store.Store, suite string, d *device.Device, sc scope.Scope, factory driver.Factory) (h *store.Handle, created bool, err error) {
	if h, ok := r.Resolve(local, suite, d); ok {
		return h, false, nil
	}

	target, err := r.target(local, suite, sc)
	if err != nil {
		return nil, false, err
	}

	if sc.ThreadBound() {
		h, err := r.create(ctx, d, sc, factory)
		if err != nil {
			return nil, false, err
		}
		target.Put(d, h)
		logging.Debug("Registry", "Placed %s in worker store", h)
		return h, true, nil
	}

	key := flightKey(sc, suite, d)

	// The creation outlives any single caller: a waiter that gives up must
	// not fail the others sharing the flight.
	createCtx := context.WithoutCancel(ctx)
	var ran bool
	ch := r.creating.DoChan(key, func() (interface{}, error) {
		// Double-check after winning the flight
		if existing, ok := target.Get(d); ok {
			return existing, nil
		}
		ran = true
		h, err := r.create(createCtx, d, sc, factory)
		if err != nil {
			return nil, err
		}
		target.Put(d, h)
		logging.Debug("Registry", "Placed %s in %s store (suite=%s)", h, sc, suite)
		return h, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, api.NewDriverUnavailableError(d.Name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*store.Handle), ran, nil
	}
}

// flightKey identifies one shared creation. Names are quoted so that no
// (suite, device) pair can collide with another.
func flightKey(sc scope.Scope, suite string, d *device.Device) string {
	if sc != scope.Suite {
		suite = ""
	}
	return fmt.Sprintf("%s|%q|%q", sc, suite, d.Key())
}

func (r *Registry) create(ctx context.Context, d *device.Device, sc scope.Scope, factory driver.Factory) (*store.Handle, error) {
	if factory == nil {
		return nil, api.NewDriverUnavailableError(d.Name, fmt.Errorf("no driver factory configured"))
	}

	drv, err := factory.Create(ctx, d)
	if err != nil {
		logging.Error("Registry", err, "Driver factory failed for %s", d)
		return nil, api.NewDriverUnavailableError(d.Name, err)
	}
	if drv == nil {
		logging.Warn("Registry", "Driver factory returned no driver for %s", d)
		return nil, api.NewDriverUnavailableError(d.Name, nil)
	}

	h := store.NewHandle(drv, d, sc, nil)
	logging.Info("Registry", "Created driver %s", h)
	return h, nil
}

// ClearSuite drops the suite store for name and releases its handles.
func (r *Registry) ClearSuite(name string) error {
	v, ok := r.suites.LoadAndDelete(name)
	if !ok {
		return nil
	}
	logging.Debug("Registry", "Clearing suite store %s", name)
	return v.(store.Store).Clear()
}

// ClearAll releases the execution store and every remaining suite store.
func (r *Registry) ClearAll() error {
	var result *multierror.Error
	if err := r.global.Clear(); err != nil {
		result = multierror.Append(result, err)
	}
	for _, name := range r.Suites() {
		if err := r.ClearSuite(name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Suites returns the names of the live suite stores, sorted.
func (r *Registry) Suites() []string {
	var names []string
	r.suites.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Stats counts the handles held in the shared stores.
type Stats struct {
	Execution int
	Suites    map[string]int
}

// Snapshot returns handle counts for diagnostics. Counts are taken store by
// store and are not a consistent cut across stores.
func (r *Registry) Snapshot() Stats {
	stats := Stats{
		Execution: r.global.Len(),
		Suites:    make(map[string]int),
	}
	r.suites.Range(func(k, v any) bool {
		stats.Suites[k.(string)] = v.(store.Store).Len()
		return true
	})
	return stats
}
