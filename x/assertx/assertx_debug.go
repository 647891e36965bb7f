//go:build brainsdebug

package assertx

import "fmt"

// Enabled reports whether contract checks are compiled in.
const Enabled = true

// Failf panics with a formatted contract-violation message.
func Failf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
