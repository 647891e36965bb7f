// Package devices holds the typed capability objects built from consumed
// port tokens. Every method is a thin forwarder to one raw kernel call with
// its status classified through errcode; no retries, no caching beyond what
// the constructor configured. A caller that sees StillCalibrating retries at
// its own cadence, normally via an rtos select arm.
package devices

// Direction selects which way a sensor or motor counts as positive.
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)
