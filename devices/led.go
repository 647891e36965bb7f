package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/ports"
)

// Colour is a packed 0x00RRGGBB value for addressable LEDs.
type Colour uint32

const (
	White Colour = 0xFFFFFF
	Red   Colour = 0xFF0000
	Green Colour = 0x00FF00
	Blue  Colour = 0x0000FF
)

// RGB packs channel values into a Colour.
func RGB(r, g, b uint8) Colour {
	return Colour(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// R returns the red channel.
func (c Colour) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Colour) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Colour) B() uint8 { return uint8(c) }

// LedStrip drives an addressable LED strip on a tri-port.
type LedStrip struct {
	pin uint8
	ext uint8
}

// NewLedStrip consumes the tri-port token. The pin stays consumed on
// failure.
func NewLedStrip(t ports.TriPort) (*LedStrip, error) {
	pin, ext := t.Index()
	s := &LedStrip{pin: pin, ext: ext}
	if v, st := kernel.Active().AdiPortSetConfig(ext, pin, kernel.AdiConfigDigitalOut); v == kernel.ErrValue {
		return nil, errcode.New(errcode.ADI, st, "led.new", int(pin))
	}
	return s, nil
}

// Set writes the whole colour buffer to the strip.
func (s *LedStrip) Set(colours []Colour) error {
	raw := make([]uint32, len(colours))
	for i, c := range colours {
		raw[i] = uint32(c)
	}
	if v, st := kernel.Active().AdiLedSet(s.ext, s.pin, raw); v == kernel.ErrValue {
		return errcode.New(errcode.ADI, st, "led.set", int(s.pin))
	}
	return nil
}

// Clear blanks n pixels.
func (s *LedStrip) Clear(n int) error {
	return s.Set(make([]Colour, n))
}
