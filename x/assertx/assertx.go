// Package assertx holds build-gated contract checks for caller obligations:
// port ranges, self-join, closed classifier contracts. With the brainsdebug
// tag the checks panic; in release builds they compile out and the caller
// degrades to its documented recoverable behaviour.
package assertx

// Assert panics with msg when cond is false and assertions are enabled.
func Assert(cond bool, msg string) {
	if Enabled && !cond {
		panic("assert: " + msg)
	}
}
