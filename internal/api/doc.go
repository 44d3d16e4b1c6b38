// Package api holds the error types shared by every stagehand package.
//
// Resolution and creation failures are typed so the test runner can report
// them against the device or capability the test asked for:
//
//	handle, err := tc.Driver(ctx, device.TypeWeb)
//	if api.IsDriverUnavailable(err) {
//	    // the external factory could not build a driver
//	}
//
//	page, err := lifecycle.Resolve[LoginPage](tc)
//	if api.IsNoMatchingVariant(err) {
//	    // no implementation of LoginPage fits the active device
//	}
//
// Cleanup failures are never surfaced through these types; they are logged and
// absorbed by the store that released the driver.
package api
