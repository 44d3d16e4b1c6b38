package driver

import (
	"context"
	"fmt"
	"time"

	"stagehand/internal/device"
	"stagehand/pkg/logging"
)

// Driver is one live automation session (browser, mobile or desktop).
// Concrete drivers are built outside stagehand; the core only closes them.
type Driver interface {
	Close() error
}

// Factory constructs drivers. It is the only place a concrete driver is
// instantiated. Returning (nil, nil) means "no driver available".
type Factory interface {
	Create(ctx context.Context, d *device.Device) (Driver, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, d *device.Device) (Driver, error)

func (f FactoryFunc) Create(ctx context.Context, d *device.Device) (Driver, error) {
	return f(ctx, d)
}

// WithDeadline bounds every Create call with timeout. A zero or negative
// timeout returns the factory unchanged. A driver returned after the deadline
// has passed is closed and the deadline error is returned instead.
func WithDeadline(f Factory, timeout time.Duration) Factory {
	if timeout <= 0 {
		return f
	}
	return FactoryFunc(func(ctx context.Context, d *device.Device) (Driver, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		drv, err := f.Create(ctx, d)
		if ctxErr := ctx.Err(); ctxErr != nil {
			if drv != nil {
				if closeErr := drv.Close(); closeErr != nil {
					logging.Warn("Driver", "Failed to close late driver for %s: %v", d.Name, closeErr)
				}
			}
			if err == nil {
				err = ctxErr
			}
			return nil, fmt.Errorf("driver construction exceeded %s: %w", timeout, err)
		}
		if err == nil {
			logging.Debug("Driver", "Factory returned for %s after %s", d.Name, time.Since(start).Round(time.Millisecond))
		}
		return drv, err
	})
}

// CloserFunc adapts a close function to the Driver interface, for factories
// wrapping sessions that are torn down through another API.
type CloserFunc func() error

func (f CloserFunc) Close() error {
	return f()
}
