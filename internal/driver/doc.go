// Package driver is the boundary to the external driver factory.
//
// stagehand never builds browser or device sessions itself. It asks a
// Factory for one when a test requests a device no live handle covers, and
// closes it when the handle's scope ends:
//
//	factory := driver.FactoryFunc(func(ctx context.Context, d *device.Device) (driver.Driver, error) {
//	    return grid.NewSession(ctx, d.Capabilities)
//	})
//	factory = driver.WithDeadline(factory, env.DriverTimeout())
//
// The drivertest subpackage provides a recording fake for tests.
package driver
