// Package lifecycle binds workers to test contexts and releases drivers when
// the scope they were declared with ends.
//
// An ExecutionContext holds the run-wide state: the environment, the shared
// SUITE and EXECUTION stores, the driver factory and the variant resolver.
// It is built once at startup; without an environment the process cannot
// continue and MustNewExecution exits.
//
// A Manager keeps one TestContext per worker and reacts to runner signals:
//
//	TestStart    create the worker's context, or reset it in place
//	TestFinish   release METHOD drivers; metadata stays readable
//	ClassFinish  release every driver of the worker
//	SuiteFinish  drop and release the suite's store
//	RunFinish    retire remaining workers, release every shared store
//	Retire       release every driver of the worker, context unusable
//
// Test code requests drivers and variants through its TestContext:
//
//	tc, _ := mgr.OnTestStart(lifecycle.TestStart{Worker: "w1", Test: "login", Suite: "smoke"})
//	h, err := tc.Driver(ctx, device.TypeWeb)
//	page, err := lifecycle.Resolve[LoginPage](tc)
//
// The context can be carried explicitly with WithTestContext and FromContext
// instead of looking it up by worker id.
package lifecycle
