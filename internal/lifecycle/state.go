package lifecycle

// State is the lifecycle state of a worker's test context.
type State int

const (
	// StateUnbound means the worker has no test context.
	StateUnbound State = iota
	// StateActive means a test is running.
	StateActive
	// StateFinished means the last test ended; its metadata and used drivers
	// stay readable until the next TestStart.
	StateFinished
	// StateRetired means the worker was torn down. The context is unusable.
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "Unbound"
	case StateActive:
		return "Active"
	case StateFinished:
		return "Finished"
	case StateRetired:
		return "Retired"
	}
	return "Unknown"
}

// StateChangeCallback observes every state transition of a worker's context.
type StateChangeCallback func(worker string, oldState, newState State)
