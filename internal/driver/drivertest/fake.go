// Package drivertest provides a recording driver factory for tests.
package drivertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"stagehand/internal/device"
	"stagehand/internal/driver"
)

// Driver is a fake session that records whether it was closed.
type Driver struct {
	ID     int
	Device *device.Device

	closed   atomic.Int32
	closeErr error
}

// Close marks the driver closed and returns the configured close error.
func (d *Driver) Close() error {
	d.closed.Add(1)
	return d.closeErr
}

// Closed reports whether Close was called at least once.
func (d *Driver) Closed() bool {
	return d.closed.Load() > 0
}

// CloseCount reports how many times Close was called.
func (d *Driver) CloseCount() int {
	return int(d.closed.Load())
}

// Factory is a concurrency-safe fake driver.Factory.
type Factory struct {
	mu       sync.Mutex
	nextID   int
	created  []*Driver
	failures map[string]error
	nilFor   map[string]bool
	closeErr map[string]error
	delay    time.Duration
}

var _ driver.Factory = (*Factory)(nil)

// NewFactory creates an empty fake factory.
func NewFactory() *Factory {
	return &Factory{
		failures: make(map[string]error),
		nilFor:   make(map[string]bool),
		closeErr: make(map[string]error),
	}
}

// FailFor makes Create return err for the named device.
func (f *Factory) FailFor(deviceName string, err error) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[deviceName] = err
	return f
}

// NilFor makes Create return no driver and no error for the named device.
func (f *Factory) NilFor(deviceName string) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nilFor[deviceName] = true
	return f
}

// CloseErrorFor makes drivers created for the named device fail on Close.
func (f *Factory) CloseErrorFor(deviceName string, err error) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeErr[deviceName] = err
	return f
}

// WithDelay makes every Create block for d, or until ctx is done.
func (f *Factory) WithDelay(d time.Duration) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	return f
}

// Create implements driver.Factory.
func (f *Factory) Create(ctx context.Context, d *device.Device) (driver.Driver, error) {
	if d == nil {
		return nil, errors.New("nil device")
	}

	f.mu.Lock()
	delay := f.delay
	failure := f.failures[d.Name]
	returnNil := f.nilFor[d.Name]
	closeErr := f.closeErr[d.Name]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("creating driver for %s: %w", d.Name, ctx.Err())
		}
	}

	if failure != nil {
		return nil, failure
	}
	if returnNil {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	drv := &Driver{ID: f.nextID, Device: d, closeErr: closeErr}
	f.created = append(f.created, drv)
	return drv, nil
}

// Created returns every driver created so far, in creation order.
func (f *Factory) Created() []*Driver {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Driver, len(f.created))
	copy(out, f.created)
	return out
}

// CreatedFor returns how many drivers were created for the named device.
func (f *Factory) CreatedFor(deviceName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, drv := range f.created {
		if drv.Device.Name == deviceName {
			n++
		}
	}
	return n
}

// Open returns how many created drivers have not been closed.
func (f *Factory) Open() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, drv := range f.created {
		if !drv.Closed() {
			n++
		}
	}
	return n
}
