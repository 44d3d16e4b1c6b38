package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError represents a resource not found error with contextual information.
//
// The error includes resource type and name so a failed lookup can be reported
// against the exact device or capability the test asked for.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "device", "capability", "suite")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewNotFoundErrorWithMessage creates a new NotFoundError with a custom message.
func NewNotFoundErrorWithMessage(resourceType, resourceName, message string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
		Message:      message,
	}
}

// Specific NotFoundError constructors for each resource type.
var (
	// NewDeviceNotFoundError creates a device not found error.
	NewDeviceNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("device", name)
	}

	// NewDeviceTypeNotFoundError is returned when the environment has no device of a type.
	NewDeviceTypeNotFoundError = func(deviceType string) *NotFoundError {
		return NewNotFoundErrorWithMessage("device", deviceType,
			fmt.Sprintf("no device of type %s in environment", deviceType))
	}

	// NewCapabilityNotFoundError creates a capability not found error.
	NewCapabilityNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("capability", name)
	}

	// NewTestContextNotFoundError is returned when a worker has no bound test context.
	NewTestContextNotFoundError = func(worker string) *NotFoundError {
		return NewNotFoundErrorWithMessage("test context", worker,
			fmt.Sprintf("no test context bound to worker %s", worker))
	}
)

// DriverUnavailableError is returned when the external factory could not
// produce a driver for a device. It is never retried inside stagehand.
type DriverUnavailableError struct {
	// Device is the name of the requested device
	Device string
	// Reason is the factory error, nil when the factory returned no driver
	Reason error
}

func (e *DriverUnavailableError) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("unable to create driver for device %s: factory returned no driver", e.Device)
	}
	return fmt.Sprintf("unable to create driver for device %s: %v", e.Device, e.Reason)
}

func (e *DriverUnavailableError) Unwrap() error {
	return e.Reason
}

// NewDriverUnavailableError creates a DriverUnavailableError for a device.
func NewDriverUnavailableError(device string, reason error) *DriverUnavailableError {
	return &DriverUnavailableError{Device: device, Reason: reason}
}

// IsDriverUnavailable checks if an error is or wraps a DriverUnavailableError.
func IsDriverUnavailable(err error) bool {
	var target *DriverUnavailableError
	return errors.As(err, &target)
}

// NoMatchingVariantError is returned when no candidate implementation of a
// capability scores non-negative against the active device.
type NoMatchingVariantError struct {
	// Capability is the requested capability type name
	Capability string
	// Device is the device the candidates were scored against, if any
	Device string
	// Candidates is how many candidates were considered
	Candidates int
}

func (e *NoMatchingVariantError) Error() string {
	msg := fmt.Sprintf("no matching variant for %s", e.Capability)
	if e.Device != "" {
		msg += fmt.Sprintf(" on device %s", e.Device)
	}
	return fmt.Sprintf("%s (%d candidate(s) considered)", msg, e.Candidates)
}

// NewNoMatchingVariantError creates a NoMatchingVariantError.
func NewNoMatchingVariantError(capability, device string, candidates int) *NoMatchingVariantError {
	return &NoMatchingVariantError{Capability: capability, Device: device, Candidates: candidates}
}

// IsNoMatchingVariant checks if an error is or wraps a NoMatchingVariantError.
func IsNoMatchingVariant(err error) bool {
	var target *NoMatchingVariantError
	return errors.As(err, &target)
}

// ConfigurationError describes one problem found while loading or validating
// an environment definition.
type ConfigurationError struct {
	FilePath string // File the error was found in, empty for in-memory environments
	Field    string // Offending field path, e.g. devices[2].type
	Message  string // Human-readable description
}

func (ce ConfigurationError) Error() string {
	var parts []string
	if ce.FilePath != "" {
		parts = append(parts, ce.FilePath)
	}
	if ce.Field != "" {
		parts = append(parts, ce.Field)
	}
	if len(parts) == 0 {
		return ce.Message
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, ": "), ce.Message)
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError
}

// Error implements the error interface for the collection
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// Add appends an error to the collection
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

var (
	// ErrNoConfiguration means no top-level configuration was available when
	// the execution context was built. The process cannot continue.
	ErrNoConfiguration = errors.New("no environment configuration available")

	// ErrContextRetired is returned for signals addressed to a retired test context.
	ErrContextRetired = errors.New("test context has been retired")

	// ErrNoActiveTest is returned when a capability is requested outside a running test.
	ErrNoActiveTest = errors.New("no active test on this context")
)

// IsNoConfiguration reports whether err is or wraps ErrNoConfiguration.
func IsNoConfiguration(err error) bool {
	return errors.Is(err, ErrNoConfiguration)
}
