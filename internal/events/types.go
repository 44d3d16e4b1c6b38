package events

import (
	"time"
)

// EventType represents the severity of an event.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events that may require attention.
	EventTypeWarning EventType = "Warning"
)

// EventReason represents the reason code for an event.
type EventReason string

// Test lifecycle event reasons
const (
	// ReasonTestStarted indicates a worker bound a test context to a new test.
	ReasonTestStarted EventReason = "TestStarted"

	// ReasonTestFinished indicates a test ended and its METHOD drivers were released.
	ReasonTestFinished EventReason = "TestFinished"

	// ReasonContextRetired indicates a worker's test context was retired.
	ReasonContextRetired EventReason = "ContextRetired"
)

// Driver event reasons
const (
	// ReasonDriverCreated indicates the factory built a new driver.
	ReasonDriverCreated EventReason = "DriverCreated"

	// ReasonDriverReused indicates a request was served by an existing driver.
	ReasonDriverReused EventReason = "DriverReused"

	// ReasonDriverUnavailable indicates the factory failed or returned no driver.
	ReasonDriverUnavailable EventReason = "DriverUnavailable"

	// ReasonDriverReleased indicates a cleanup released one or more drivers.
	ReasonDriverReleased EventReason = "DriverReleased"

	// ReasonDriverReleaseFailed indicates at least one release failed during cleanup.
	ReasonDriverReleaseFailed EventReason = "DriverReleaseFailed"
)

// Shared store event reasons
const (
	// ReasonSuiteCleared indicates a suite store was torn down.
	ReasonSuiteCleared EventReason = "SuiteCleared"

	// ReasonRunCleared indicates the execution store and all suite stores were torn down.
	ReasonRunCleared EventReason = "RunCleared"
)

// Variant event reasons
const (
	// ReasonVariantResolved indicates a candidate was selected for a capability.
	ReasonVariantResolved EventReason = "VariantResolved"

	// ReasonVariantUnmatched indicates no candidate qualified for a capability.
	ReasonVariantUnmatched EventReason = "VariantUnmatched"
)

// EventData holds contextual information for event message templating.
type EventData struct {
	// Worker is the id of the worker that emitted the event.
	Worker string

	// Test is the name of the running test.
	Test string

	// Suite is the suite the event belongs to.
	Suite string

	// Device is the name of the device involved.
	Device string

	// Scope is the driver scope involved.
	Scope string

	// Session is the driver handle id.
	Session string

	// Capability is the requested capability type for variant events.
	Capability string

	// Candidate is the selected candidate for variant events.
	Candidate string

	// Result is the outcome reported for a finished test.
	Result string

	// Count is the number of drivers affected by a cleanup.
	Count int

	// Error contains error information for failure events.
	Error string

	// Duration is the duration of an operation.
	Duration time.Duration
}

// Event is one recorded occurrence.
type Event struct {
	Reason    EventReason
	Type      EventType
	Message   string
	Data      EventData
	Timestamp time.Time
}

// getEventType returns the appropriate EventType for a given EventReason.
func getEventType(reason EventReason) EventType {
	switch reason {
	case ReasonDriverUnavailable,
		ReasonDriverReleaseFailed,
		ReasonVariantUnmatched:
		return EventTypeWarning
	default:
		return EventTypeNormal
	}
}
