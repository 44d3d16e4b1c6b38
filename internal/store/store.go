package store

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"stagehand/internal/device"
	"stagehand/internal/scope"
	"stagehand/pkg/logging"
)

// Store holds driver handles for one scope instance, keyed by device identity.
type Store interface {
	// Get returns the handle for exactly this device.
	Get(d *device.Device) (*Handle, bool)

	// Put stores h for d. The last writer for a device wins; an overwritten
	// handle is not released.
	Put(d *device.Device, h *Handle)

	// FindByType returns any held handle whose device has the given type.
	FindByType(t device.Type) (*Handle, bool)

	// Clear releases and discards every handle. Release failures are logged
	// and collected; every handle is attempted.
	Clear() error

	// ClearScope releases and discards the handles declared with scope s.
	ClearScope(s scope.Scope) error

	// Len returns the number of held handles.
	Len() int

	// Handles returns the held handles.
	Handles() []*Handle
}

// releaseAll releases handles best-effort and aggregates the failures.
func releaseAll(owner string, handles []*Handle) error {
	var result *multierror.Error
	for _, h := range handles {
		if err := h.Release(); err != nil {
			logging.Error("Store", err, "Failed to release driver %s from %s store", h, owner)
			result = multierror.Append(result, fmt.Errorf("release %s: %w", h, err))
			continue
		}
		logging.Debug("Store", "Released driver %s from %s store", h, owner)
	}
	return result.ErrorOrNil()
}
