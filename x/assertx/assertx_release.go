//go:build !brainsdebug

package assertx

// Enabled reports whether contract checks are compiled in.
const Enabled = false

// Failf is a no-op in release builds.
func Failf(format string, args ...any) {}
