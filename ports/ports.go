// Package ports manages ownership of the brain's physical connectors. The
// firmware treats port numbers as freely reusable integers; the arena here is
// the sole source of truth for which ports are already driving a device, and
// its tokens are the only way to construct one.
package ports

import (
	"sync/atomic"

	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/x/assertx"
)

const (
	// MaxPort is the highest numbered smart port on the brain.
	MaxPort = 21
	// MaxTriPort is the highest numbered tri-port per bank.
	MaxTriPort = 8
	// InternalExpanderPort is the synthetic smart port of the brain's own
	// tri-port bank.
	InternalExpanderPort = 22
)

// Port is the exclusive ownership token for one smart port. Treat it as
// move-only: it is minted once by the arena and consumed irreversibly by a
// device constructor. There is no public way to mint a second one for the
// same index.
type Port struct {
	index uint8
}

// Index returns the 1-based port number. Zero only for an invalid token.
func (p Port) Index() uint8 { return p.index }

// Valid reports whether the token was minted by the arena (not a zero value).
func (p Port) Valid() bool { return p.index != 0 }

// PluggedType reports what the firmware currently sees in this port. It can
// race with hot-plugging, so it is a diagnostic only, never a safety check.
func (p Port) PluggedType() DeviceType {
	return DeviceTypeFromRaw(kernel.Active().RegistryPluggedType(p.index))
}

// TriPort is the ownership token for one tri-port: a pin index within the
// bank hosted by a smart port (the internal bank lives on port 22). Same
// move-only discipline as Port.
type TriPort struct {
	pin uint8
	ext uint8
}

// Index returns the (pin, host smart port) pair.
func (t TriPort) Index() (pin, ext uint8) { return t.pin, t.ext }

// Valid reports whether the token was minted (not a zero value).
func (t TriPort) Valid() bool { return t.pin != 0 }

var arenaInitialized atomic.Bool

// Arena holds the not-yet-claimed tokens for every physical connector.
//
// Take is not internally synchronised: the arena is populated and drained by
// the single startup task, and any later hand-off between tasks goes through
// a Mutex.
type Arena struct {
	smart [MaxPort + 1]bool    // index -> token still available
	tri   [MaxTriPort + 1]bool // internal bank
}

// Initialize mints the full fixed set of tokens. Callable exactly once, at
// process startup; a second call is a boot-order bug and panics.
func Initialize() *Arena {
	if !arenaInitialized.CompareAndSwap(false, true) {
		panic("ports: arena initialized twice")
	}
	a := &Arena{}
	for i := 1; i <= MaxPort; i++ {
		a.smart[i] = true
	}
	for i := 1; i <= MaxTriPort; i++ {
		a.tri[i] = true
	}
	return a
}

// Take removes and returns the token for smart port index. Indices outside
// 1..21 are a programmer error reported as PortRange; an index already taken
// is the legitimate runtime condition ResourceInUse. A taken slot never
// returns to the pool, even if the later device conversion fails.
func (a *Arena) Take(index uint8) (Port, error) {
	if index < 1 || index > MaxPort {
		assertx.Failf("ports: take(%d) outside 1..%d", index, MaxPort)
		return Port{}, &errcode.DeviceError{C: errcode.PortRange, Op: "ports.take", Port: int(index)}
	}
	if !a.smart[index] {
		return Port{}, &errcode.DeviceError{C: errcode.ResourceInUse, Op: "ports.take", Port: int(index)}
	}
	a.smart[index] = false
	return Port{index: index}, nil
}

// TakeTri removes and returns the token for a pin of the internal tri-port
// bank. Same range and in-use semantics as Take.
func (a *Arena) TakeTri(index uint8) (TriPort, error) {
	if index < 1 || index > MaxTriPort {
		assertx.Failf("ports: takeTri(%d) outside 1..%d", index, MaxTriPort)
		return TriPort{}, &errcode.DeviceError{C: errcode.PortRange, Op: "ports.take_tri", Port: int(index)}
	}
	if !a.tri[index] {
		return TriPort{}, &errcode.DeviceError{C: errcode.ResourceInUse, Op: "ports.take_tri", Port: int(index)}
	}
	a.tri[index] = false
	return TriPort{pin: index, ext: InternalExpanderPort}, nil
}

// PluggedType reports the firmware's registry entry for a smart port without
// touching ownership. Diagnostic only.
func (a *Arena) PluggedType(index uint8) DeviceType {
	if index < 1 || index > MaxPort {
		return DeviceTypeUndefined
	}
	return DeviceTypeFromRaw(kernel.Active().RegistryPluggedType(index))
}

// resetForTest re-arms the once-only initialization. Test support.
func resetForTest() {
	arenaInitialized.Store(false)
}
