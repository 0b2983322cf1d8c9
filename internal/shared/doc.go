// Package shared provides common utilities and test helpers used
// across the Ads Pulse codebase. It serves as a central location for
// functionality that doesn't belong to any specific domain layer.
//
// # Structure
//
// - testutil: testing utilities, currently a buffering slog handler
//   with assertion helpers for log-behavior tests
//
// # Usage Guidelines
//
// This package should only contain:
//
// 1. Test utilities used by multiple packages
// 2. Generic helper functions with no domain-specific logic
//
// It should NOT contain business logic, dependencies beyond the
// standard library and test tooling, or circular dependencies with
// other internal packages.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    runThing(logger)
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "harvest complete")
//	}
package shared
