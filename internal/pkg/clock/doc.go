// Package clock provides a tiny time abstraction.
//
// Production code depends on Clocker instead of calling time.Now directly.
// Manual is the deterministic clock used by tests that need to step through
// expiry windows.
package clock
