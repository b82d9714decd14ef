// Package preflight checks that an index can be built and read before
// wordex starts work on it.
//
// The package validates:
//   - Free disk space in the index directory
//   - Write permissions in the index directory
//   - File descriptor limits
//   - The skip words file, when one is configured
//   - The built index, when one exists
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, preflight.Target{Files: files})
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
