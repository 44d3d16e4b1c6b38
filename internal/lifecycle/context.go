package lifecycle

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"stagehand/internal/api"
	"stagehand/internal/device"
	"stagehand/internal/events"
	"stagehand/internal/scope"
	"stagehand/internal/store"
	"stagehand/internal/variant"
	"stagehand/pkg/logging"
)

// TestContext is the per-worker state of the running test. It is created on
// the worker's first TestStart, reset in place for every later test and
// becomes unusable once the worker is retired.
//
// The worker-bound store is only touched by the owning worker. The metadata
// is guarded so after-test listeners on other goroutines can read it.
type TestContext struct {
	worker string
	exec   *ExecutionContext
	local  store.Store

	mu         sync.RWMutex
	id         string
	state      State
	test       string
	class      string
	suite      string
	startedAt  time.Time
	finishedAt time.Time
	params     map[string]string
	attributes map[string]any
	used       []*store.Handle
	result     Result
}

func newTestContext(exec *ExecutionContext, worker string) *TestContext {
	return &TestContext{
		worker: worker,
		exec:   exec,
		local:  store.NewLocal("worker " + worker),
		state:  StateUnbound,
	}
}

// seed resets the per-test metadata from ev. METHOD handles left in the
// worker store are released; CLASS handles stay for the next test.
func (tc *TestContext) seed(ev TestStart) {
	if err := tc.local.ClearScope(scope.Method); err != nil {
		logging.Warn("Lifecycle", "Worker %s: releasing leftover method drivers failed: %v", tc.worker, err)
	}

	params := make(map[string]string, len(ev.Params))
	for k, v := range ev.Params {
		params[k] = v
	}
	startedAt := ev.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	tc.mu.Lock()
	tc.id = uuid.New().String()
	tc.test = ev.Test
	tc.class = ev.Class
	tc.suite = ev.Suite
	tc.startedAt = startedAt
	tc.finishedAt = time.Time{}
	tc.params = params
	tc.attributes = make(map[string]any)
	tc.used = nil
	tc.result = ""
	tc.mu.Unlock()
}

// ID returns the unique id of the current test binding.
func (tc *TestContext) ID() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.id
}

// Worker returns the worker id this context is bound to.
func (tc *TestContext) Worker() string {
	return tc.worker
}

// State returns the lifecycle state.
func (tc *TestContext) State() State {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.state
}

// Test returns the current test name.
func (tc *TestContext) Test() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.test
}

// Class returns the current test class.
func (tc *TestContext) Class() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.class
}

// Suite returns the current suite name.
func (tc *TestContext) Suite() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.suite
}

// StartedAt returns when the current test started.
func (tc *TestContext) StartedAt() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.startedAt
}

// Param returns a string parameter of the current test.
func (tc *TestContext) Param(key string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	v, ok := tc.params[key]
	return v, ok
}

// Params returns a copy of the string parameters of the current test.
func (tc *TestContext) Params() map[string]string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	out := make(map[string]string, len(tc.params))
	for k, v := range tc.params {
		out[k] = v
	}
	return out
}

// SetAttribute stores an object for the rest of the current test.
func (tc *TestContext) SetAttribute(key string, value any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.attributes == nil {
		tc.attributes = make(map[string]any)
	}
	tc.attributes[key] = value
}

// Attribute returns an object stored with SetAttribute.
func (tc *TestContext) Attribute(key string) (any, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	v, ok := tc.attributes[key]
	return v, ok
}

// UsedDrivers returns every handle the current test touched, in first-use
// order. It stays readable after TestFinish until the next TestStart.
func (tc *TestContext) UsedDrivers() []*store.Handle {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	out := make([]*store.Handle, len(tc.used))
	copy(out, tc.used)
	return out
}

// LastResult returns the result reported by the last TestFinish, or "" while
// the test is running.
func (tc *TestContext) LastResult() Result {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.result
}

// Environment returns the run's environment.
func (tc *TestContext) Environment() *device.Environment {
	return tc.exec.env
}

// Store returns the worker-bound store holding METHOD and CLASS handles.
func (tc *TestContext) Store() store.Store {
	return tc.local
}

// Device returns the device variant requests are scored against: the device
// of the first driver the test used, else the first device of the environment.
func (tc *TestContext) Device() *device.Device {
	tc.mu.RLock()
	if len(tc.used) > 0 {
		d := tc.used[0].Device()
		tc.mu.RUnlock()
		return d
	}
	tc.mu.RUnlock()

	if devices := tc.exec.env.Devices(); len(devices) > 0 {
		return devices[0]
	}
	return nil
}

func (tc *TestContext) active() error {
	switch tc.State() {
	case StateActive:
		return nil
	case StateRetired:
		return api.ErrContextRetired
	default:
		return api.ErrNoActiveTest
	}
}

func (tc *TestContext) use(h *store.Handle) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, u := range tc.used {
		if u == h {
			return
		}
	}
	tc.used = append(tc.used, h)
}

func (tc *TestContext) usedByType(t device.Type) *store.Handle {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	for _, h := range tc.used {
		if h.Device().Type == t && !h.Released() {
			return h
		}
	}
	return nil
}

func (tc *TestContext) record(reason events.EventReason, data events.EventData) {
	data.Worker = tc.worker
	if data.Test == "" {
		data.Test = tc.Test()
	}
	if data.Suite == "" {
		data.Suite = tc.Suite()
	}
	tc.exec.recorder.Record(reason, data)
}

// DriverOption adjusts a driver request.
type DriverOption func(*driverRequest)

type driverRequest struct {
	name  string
	scope scope.Scope
}

// WithName requests the device with this name instead of the first device
// of the requested type.
func WithName(name string) DriverOption {
	return func(r *driverRequest) { r.name = name }
}

// WithScope declares the scope of a newly created handle, overriding the
// device and environment defaults. It has no effect when a live handle is reused.
func WithScope(s scope.Scope) DriverOption {
	return func(r *driverRequest) { r.scope = s }
}

// Driver returns a live driver handle for a device of type t, creating one
// through the factory when no store in the chain holds it.
//
// Without WithName, drivers the test already used and drivers of type t held
// anywhere in the chain are reused first. A new handle is declared with the
// WithScope scope, else the device's own scope, else the environment default.
// The returned handle is recorded in UsedDrivers.
func (tc *TestContext) Driver(ctx context.Context, t device.Type, opts ...DriverOption) (*store.Handle, error) {
	if err := tc.active(); err != nil {
		return nil, err
	}
	var req driverRequest
	for _, opt := range opts {
		opt(&req)
	}

	env := tc.exec.env
	reg := tc.exec.registry
	suite := tc.Suite()

	var d *device.Device
	if req.name != "" {
		var ok bool
		d, ok = env.Device(req.name)
		if !ok {
			return nil, api.NewDeviceNotFoundError(req.name)
		}
		if t != "" && d.Type != t {
			return nil, fmt.Errorf("device %s is of type %s, not %s", d.Name, d.Type, t)
		}
	} else {
		if h := tc.usedByType(t); h != nil {
			tc.reused(h)
			return h, nil
		}
		if h, ok := reg.ResolveByType(tc.local, suite, t); ok {
			tc.use(h)
			tc.reused(h)
			return h, nil
		}
		var ok bool
		d, ok = env.FirstOfType(t)
		if !ok {
			return nil, api.NewDeviceTypeNotFoundError(string(t))
		}
	}

	return tc.acquire(ctx, d, req.scope.Or(env.ScopeFor(d)))
}

// DriverFor is Driver for a device already in hand.
func (tc *TestContext) DriverFor(ctx context.Context, d *device.Device, opts ...DriverOption) (*store.Handle, error) {
	if err := tc.active(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, api.NewDeviceNotFoundError("")
	}
	var req driverRequest
	for _, opt := range opts {
		opt(&req)
	}
	return tc.acquire(ctx, d, req.scope.Or(tc.exec.env.ScopeFor(d)))
}

func (tc *TestContext) acquire(ctx context.Context, d *device.Device, sc scope.Scope) (*store.Handle, error) {
	start := time.Now()
	h, created, err := tc.exec.registry.Acquire(ctx, tc.local, tc.Suite(), d, sc, tc.exec.factory)
	if err != nil {
		tc.record(events.ReasonDriverUnavailable, events.EventData{
			Device: d.Name,
			Scope:  sc.String(),
			Error:  err.Error(),
		})
		return nil, err
	}

	tc.use(h)
	if created {
		tc.record(events.ReasonDriverCreated, events.EventData{
			Device:   d.Name,
			Scope:    h.Scope().String(),
			Session:  h.ID(),
			Duration: time.Since(start),
		})
	} else {
		tc.reused(h)
	}
	return h, nil
}

func (tc *TestContext) reused(h *store.Handle) {
	tc.record(events.ReasonDriverReused, events.EventData{
		Device:  h.Device().Name,
		Scope:   h.Scope().String(),
		Session: h.ID(),
	})
}

// Variant resolves capability against the test's current device. A winner
// implementing ContextBinder is bound to this context before it is returned.
func (tc *TestContext) Variant(capability reflect.Type) (any, error) {
	if err := tc.active(); err != nil {
		return nil, err
	}
	d := tc.Device()
	v, err := tc.exec.resolver.Resolve(capability, d)
	return tc.finishVariant(capability, d, v, err)
}

// SelectVariant picks among explicitly supplied candidates instead of the
// registered ones.
func (tc *TestContext) SelectVariant(capability reflect.Type, candidates []variant.Candidate) (any, error) {
	if err := tc.active(); err != nil {
		return nil, err
	}
	d := tc.Device()
	winner, err := variant.Select(capability, candidates, d)
	if err != nil {
		return tc.finishVariant(capability, d, nil, err)
	}
	return tc.finishVariant(capability, d, winner.New(), nil)
}

func (tc *TestContext) finishVariant(capability reflect.Type, d *device.Device, v any, err error) (any, error) {
	data := events.EventData{Capability: fmt.Sprint(capability)}
	if d != nil {
		data.Device = d.Name
	}
	if err != nil {
		data.Error = err.Error()
		tc.record(events.ReasonVariantUnmatched, data)
		return nil, err
	}

	if b, ok := v.(ContextBinder); ok {
		b.BindTestContext(tc)
	}
	data.Candidate = fmt.Sprintf("%T", v)
	tc.record(events.ReasonVariantResolved, data)
	return v, nil
}

// ContextBinder is implemented by variants that need the test context after
// construction.
type ContextBinder interface {
	BindTestContext(tc *TestContext)
}

// Resolve resolves capability T for tc and returns it typed.
func Resolve[T any](tc *TestContext) (T, error) {
	var zero T
	v, err := tc.Variant(variant.TypeOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("variant for %s returned %T", variant.TypeOf[T](), v)
	}
	return typed, nil
}

type contextKey struct{}

// WithTestContext returns a copy of ctx carrying tc.
func WithTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext returns the test context carried by ctx.
func FromContext(ctx context.Context) (*TestContext, bool) {
	tc, ok := ctx.Value(contextKey{}).(*TestContext)
	return tc, ok && tc != nil
}
