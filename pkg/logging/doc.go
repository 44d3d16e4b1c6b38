// Package logging provides the structured logging used across stagehand.
//
// It wraps Go's slog package behind a small printf-style API where every
// entry carries a subsystem name:
//
//	logging.Init(logging.LevelInfo, os.Stderr, logging.FormatText)
//
//	logging.Info("Lifecycle", "test %s started on worker %s", test, worker)
//	logging.Debug("Registry", "placed %s in suite store %s", device, suite)
//	logging.Error("Store", err, "failed to release driver %s", sessionID)
//
// Subsystems in use:
//
//   - Store: resource store placement and release
//   - Registry: scope resolution chain and shared-scope creation
//   - Variant: candidate scoring and selection
//   - Lifecycle: test/class/suite/run signal handling
//   - Config: environment loading and validation
//   - Driver: factory boundary
//
// Before Init is called only warnings and errors are written, to stderr.
package logging
