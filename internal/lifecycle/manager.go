package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stagehand/internal/api"
	"stagehand/internal/events"
	"stagehand/internal/scope"
	"stagehand/internal/store"
	"stagehand/pkg/logging"
)

// Manager binds workers to test contexts and turns runner signals into
// store cleanups. Each worker's signals must be delivered in order from one
// goroutine; different workers may signal concurrently.
type Manager struct {
	exec *ExecutionContext

	mu            sync.RWMutex
	contexts      map[string]*TestContext
	retired       map[string]struct{}
	finished      bool
	stateChangeCb StateChangeCallback
}

// NewManager creates a manager over exec.
func NewManager(exec *ExecutionContext) *Manager {
	return &Manager{
		exec:     exec,
		contexts: make(map[string]*TestContext),
		retired:  make(map[string]struct{}),
	}
}

// Execution returns the execution context.
func (m *Manager) Execution() *ExecutionContext {
	return m.exec
}

// SetStateChangeCallback sets the state change callback
func (m *Manager) SetStateChangeCallback(callback StateChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateChangeCb = callback
}

// updateState moves tc to newState and notifies the callback
func (m *Manager) updateState(tc *TestContext, newState State) {
	tc.mu.Lock()
	oldState := tc.state
	tc.state = newState
	tc.mu.Unlock()

	m.mu.RLock()
	callback := m.stateChangeCb
	m.mu.RUnlock()

	// Call the callback outside of the lock to avoid deadlocks
	if callback != nil && oldState != newState {
		callback(tc.worker, oldState, newState)
	}
}

// Context returns the test context bound to worker.
func (m *Manager) Context(worker string) (*TestContext, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tc, ok := m.contexts[worker]
	return tc, ok
}

// Workers returns the ids of workers with a bound context, sorted.
func (m *Manager) Workers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.contexts))
	for w := range m.contexts {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Dispatch routes a runner signal to its handler. Cleanup failures are
// logged and never returned; errors only report signals that cannot apply.
func (m *Manager) Dispatch(ctx context.Context, sig Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch s := sig.(type) {
	case TestStart:
		_, err := m.OnTestStart(s)
		return err
	case TestFinish:
		return m.OnTestFinish(s)
	case ClassFinish:
		m.OnClassFinish(s)
		return nil
	case SuiteFinish:
		m.OnSuiteFinish(s)
		return nil
	case RunFinish:
		m.OnRunFinish()
		return nil
	case Retire:
		m.Retire(s.Worker)
		return nil
	case nil:
		return fmt.Errorf("nil signal")
	default:
		return fmt.Errorf("unsupported signal %T", sig)
	}
}

// OnTestStart binds worker to the test in ev. The worker's first test
// creates its context; later tests reset it in place.
func (m *Manager) OnTestStart(ev TestStart) (*TestContext, error) {
	if ev.Worker == "" {
		return nil, fmt.Errorf("test start for %s carries no worker id", ev.Test)
	}

	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return nil, fmt.Errorf("run already finished, cannot start %s", ev.Test)
	}
	if _, gone := m.retired[ev.Worker]; gone {
		m.mu.Unlock()
		return nil, fmt.Errorf("worker %s: %w", ev.Worker, api.ErrContextRetired)
	}
	tc, exists := m.contexts[ev.Worker]
	if !exists {
		tc = newTestContext(m.exec, ev.Worker)
		m.contexts[ev.Worker] = tc
	}
	m.mu.Unlock()

	if exists {
		logging.Debug("Lifecycle", "Worker %s: resetting context for %s", ev.Worker, ev.Test)
	} else {
		logging.Debug("Lifecycle", "Worker %s: binding new context for %s", ev.Worker, ev.Test)
	}

	tc.seed(ev)
	m.updateState(tc, StateActive)
	tc.record(events.ReasonTestStarted, events.EventData{})
	return tc, nil
}

// OnTestFinish releases the worker's METHOD handles and records the result.
// Test metadata and used drivers stay readable until the next TestStart.
func (m *Manager) OnTestFinish(ev TestFinish) error {
	tc, ok := m.Context(ev.Worker)
	if !ok {
		return fmt.Errorf("worker %s: %w", ev.Worker, api.ErrNoActiveTest)
	}
	if tc.State() != StateActive {
		return fmt.Errorf("worker %s: %w", ev.Worker, api.ErrNoActiveTest)
	}

	m.clearLocal(tc, scope.Method)

	now := time.Now()
	tc.mu.Lock()
	tc.result = ev.Result
	tc.finishedAt = now
	duration := now.Sub(tc.startedAt)
	tc.mu.Unlock()

	m.updateState(tc, StateFinished)
	tc.record(events.ReasonTestFinished, events.EventData{
		Result:   string(ev.Result),
		Duration: duration,
	})
	return nil
}

// OnClassFinish releases every handle in the worker's store.
func (m *Manager) OnClassFinish(ev ClassFinish) {
	tc, ok := m.Context(ev.Worker)
	if !ok {
		logging.Debug("Lifecycle", "Class finish for unbound worker %s ignored", ev.Worker)
		return
	}
	m.clearLocal(tc, scope.Unspecified)
}

// OnSuiteFinish drops and releases the suite's store. Worker stores are not
// touched.
func (m *Manager) OnSuiteFinish(ev SuiteFinish) {
	reg := m.exec.registry
	count := 0
	if s, ok := reg.Suite(ev.Suite); ok {
		count = s.Len()
	}

	data := events.EventData{Suite: ev.Suite, Scope: scope.Suite.String(), Count: count}
	if err := reg.ClearSuite(ev.Suite); err != nil {
		logging.Error("Lifecycle", err, "Suite %s cleanup incomplete", ev.Suite)
		data.Error = err.Error()
		m.exec.recorder.Record(events.ReasonDriverReleaseFailed, data)
	}
	logging.Info("Lifecycle", "Suite %s finished, %d driver(s) released", ev.Suite, count)
	m.exec.recorder.Record(events.ReasonSuiteCleared, data)
}

// OnRunFinish retires any worker still bound, then releases the execution
// store and every remaining suite store. Later TestStart signals are refused.
func (m *Manager) OnRunFinish() {
	m.mu.Lock()
	m.finished = true
	m.mu.Unlock()

	if workers := m.Workers(); len(workers) > 0 {
		logging.Warn("Lifecycle", "Run finished with %d worker(s) still bound: %v", len(workers), workers)
		for _, w := range workers {
			m.Retire(w)
		}
	}

	reg := m.exec.registry
	stats := reg.Snapshot()
	count := stats.Execution
	for _, n := range stats.Suites {
		count += n
	}

	data := events.EventData{Scope: scope.Execution.String(), Count: count}
	if err := reg.ClearAll(); err != nil {
		logging.Error("Lifecycle", err, "Run cleanup incomplete")
		data.Error = err.Error()
		m.exec.recorder.Record(events.ReasonDriverReleaseFailed, data)
	}
	logging.Info("Lifecycle", "Run finished, %d shared driver(s) released", count)
	m.exec.recorder.Record(events.ReasonRunCleared, data)
}

// Retire releases every handle in the worker's store and makes its context
// unusable. The worker id cannot be bound again.
func (m *Manager) Retire(worker string) {
	m.mu.Lock()
	tc, ok := m.contexts[worker]
	delete(m.contexts, worker)
	m.retired[worker] = struct{}{}
	m.mu.Unlock()

	if !ok {
		return
	}

	m.clearLocal(tc, scope.Unspecified)
	m.updateState(tc, StateRetired)
	tc.record(events.ReasonContextRetired, events.EventData{})
	logging.Debug("Lifecycle", "Worker %s retired", worker)
}

// clearLocal releases the worker's METHOD handles, or all of them when sc is
// Unspecified. Failures are logged and recorded, never returned.
func (m *Manager) clearLocal(tc *TestContext, sc scope.Scope) {
	count := countScope(tc.local, sc)
	if count == 0 {
		return
	}

	var err error
	label := sc.String()
	if sc == scope.Unspecified {
		err = tc.local.Clear()
		label = "WORKER"
	} else {
		err = tc.local.ClearScope(sc)
	}

	data := events.EventData{Scope: label, Count: count}
	if err != nil {
		logging.Error("Lifecycle", err, "Worker %s: releasing %s drivers failed", tc.worker, label)
		data.Error = err.Error()
		tc.record(events.ReasonDriverReleaseFailed, data)
	}
	tc.record(events.ReasonDriverReleased, data)
}

func countScope(s store.Store, sc scope.Scope) int {
	if sc == scope.Unspecified {
		return s.Len()
	}
	n := 0
	for _, h := range s.Handles() {
		if h.Scope() == sc {
			n++
		}
	}
	return n
}
