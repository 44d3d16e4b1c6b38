// Package events records what the test-context lifecycle does: tests starting
// and finishing, drivers being created, reused and released, shared stores
// being cleared and variants being resolved.
//
// Events carry a reason code, a severity and a message rendered from a
// per-reason template:
//
//   - Recorder: the interface the lifecycle emits into
//   - LogRecorder: writes rendered events to the structured log
//   - MemoryRecorder: keeps events for tests and the CLI run summary
//   - Multi: fans out to several recorders
//
// Usage:
//
//	rec := events.NewMemoryRecorder()
//	mgr := lifecycle.NewManager(exec, lifecycle.WithRecorder(events.Multi(events.NewLogRecorder(), rec)))
//	...
//	fmt.Println(rec.Count(events.ReasonDriverCreated))
package events
