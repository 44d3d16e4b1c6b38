package lifecycle

import (
	"time"
)

// Signal is an inbound lifecycle notification from the test runner.
type Signal interface {
	signal()
}

// TestStart binds the worker to a new test.
type TestStart struct {
	Worker    string
	Test      string
	Class     string
	Suite     string
	Params    map[string]string
	StartedAt time.Time
}

// TestFinish ends the worker's current test.
type TestFinish struct {
	Worker string
	Result Result
}

// ClassFinish ends the test class the worker was running.
type ClassFinish struct {
	Worker string
}

// SuiteFinish ends a suite. The runner must only send it once every worker
// that ran tests of the suite has finished its last test.
type SuiteFinish struct {
	Suite string
}

// RunFinish ends the run.
type RunFinish struct{}

// Retire tears the worker down.
type Retire struct {
	Worker string
}

func (TestStart) signal() {}
func (TestFinish) signal() {}
func (ClassFinish) signal() {}
func (SuiteFinish) signal() {}
func (RunFinish) signal() {}
func (Retire) signal() {}

// Result is the outcome a runner reports for a finished test.
type Result string

const (
	ResultPassed  Result = "PASSED"
	ResultFailed  Result = "FAILED"
	ResultSkipped Result = "SKIPPED"
)
