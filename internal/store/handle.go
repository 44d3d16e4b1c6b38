package store

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"stagehand/internal/device"
	"stagehand/internal/driver"
	"stagehand/internal/scope"
)

// ReleaseFunc tears down the driver behind a handle.
type ReleaseFunc func(h *Handle) error

// Handle is a pooled, scope-tagged wrapper around one live driver. A handle is
// owned by at most one store at a time and is released at most once.
type Handle struct {
	id        string
	driver    driver.Driver
	device    *device.Device
	scope     scope.Scope
	createdAt time.Time
	release   ReleaseFunc

	once       sync.Once
	released   atomic.Bool
	releaseErr error
}

// NewHandle wraps drv. When release is nil the driver is closed on release.
func NewHandle(drv driver.Driver, d *device.Device, s scope.Scope, release ReleaseFunc) *Handle {
	if release == nil {
		release = closeDriver
	}
	return &Handle{
		id:        uuid.New().String(),
		driver:    drv,
		device:    d,
		scope:     s,
		createdAt: time.Now(),
		release:   release,
	}
}

func closeDriver(h *Handle) error {
	if h.driver == nil {
		return nil
	}
	return h.driver.Close()
}

// ID is a unique session id assigned at creation.
func (h *Handle) ID() string { return h.id }

// Driver returns the wrapped driver.
func (h *Handle) Driver() driver.Driver { return h.driver }

// Device returns the device the driver serves.
func (h *Handle) Device() *device.Device { return h.device }

// Scope returns the declared reuse scope.
func (h *Handle) Scope() scope.Scope { return h.scope }

// CreatedAt returns when the handle was created.
func (h *Handle) CreatedAt() time.Time { return h.createdAt }

// Released reports whether Release has run.
func (h *Handle) Released() bool { return h.released.Load() }

// Release invokes the release callback once. Later calls return the first
// call's error without invoking the callback again.
func (h *Handle) Release() error {
	h.once.Do(func() {
		defer h.released.Store(true)
		defer func() {
			if r := recover(); r != nil {
				h.releaseErr = fmt.Errorf("release of %s panicked: %v", h.id, r)
			}
		}()
		h.releaseErr = h.release(h)
	})
	return h.releaseErr
}

func (h *Handle) String() string {
	if h == nil {
		return "<nil handle>"
	}
	name := "<nil device>"
	if h.device != nil {
		name = h.device.Name
	}
	return fmt.Sprintf("%s[%s %s]", name, h.scope, shortID(h.id))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
