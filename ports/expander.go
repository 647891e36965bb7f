package ports

// Expander holds the eight tri-port tokens minted for a tri-port expander
// plugged into a smart port. Creating it consumes the smart-port token, so
// no device can be driven on that port afterwards; the pin tokens A..H are
// synthetic — they exist only here, never in the arena.
//
// Whether an expander is actually plugged is not checked: the registry query
// races with hot-plugging and is never used for a safety decision. A missing
// expander surfaces as device errors on the pins.
type Expander struct {
	port uint8
	A    TriPort
	B    TriPort
	C    TriPort
	D    TriPort
	E    TriPort
	F    TriPort
	G    TriPort
	H    TriPort
}

// NewExpander consumes the smart-port token and mints the expander's pin
// tokens. Each pin token follows the same move-only discipline as arena
// tokens: convert it into a mode once, then only the mode wrapper remains.
func NewExpander(p Port) Expander {
	ext := p.Index()
	mk := func(pin uint8) TriPort { return TriPort{pin: pin, ext: ext} }
	return Expander{
		port: ext,
		A:    mk(1), B: mk(2), C: mk(3), D: mk(4),
		E: mk(5), F: mk(6), G: mk(7), H: mk(8),
	}
}

// Port returns the smart port the expander occupies.
func (e Expander) Port() uint8 { return e.port }
