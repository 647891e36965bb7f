// Package config describes a brain's physical layout: what is plugged into
// which smart port, how the internal tri-ports are wired, and whether a
// handset is paired. The sim uses it to populate a simulated brain; robots
// use it to decide which tokens to take at startup.
package config

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"brainrtos-go/kernel/sim"
	"brainrtos-go/ports"
)

// Device describes one smart-port device.
type Device struct {
	Type     string `yaml:"type"`
	Reversed bool   `yaml:"reversed,omitempty"`
	Gearset  string `yaml:"gearset,omitempty"`
}

// Layout is the full declared wiring of one brain.
type Layout struct {
	Ports      map[int]Device `yaml:"ports"`
	Adi        map[int]string `yaml:"adi,omitempty"` // pin -> mode
	Controller bool           `yaml:"controller,omitempty"`
}

var deviceTypes = map[string]bool{
	"motor":    true,
	"imu":      true,
	"gps":      true,
	"rotation": true,
	"distance": true,
	"vision":   true,
	"expander": true,
}

var adiModes = map[string]bool{
	"analog_in":   true,
	"analog_out":  true,
	"digital_in":  true,
	"digital_out": true,
}

// Parse decodes a layout. Unknown fields are rejected so a typo fails fast
// instead of silently leaving a port empty.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &l, nil
}

// Load reads and parses a layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks the whole layout and reports every fault at once, not
// just the first.
func (l *Layout) Validate() error {
	var err error
	for port, dev := range l.Ports {
		if port < 1 || port > ports.MaxPort {
			err = multierr.Append(err, fmt.Errorf("config: port %d outside 1..%d", port, ports.MaxPort))
		}
		if !deviceTypes[dev.Type] {
			err = multierr.Append(err, fmt.Errorf("config: port %d: unknown device type %q", port, dev.Type))
		}
		if dev.Gearset != "" && dev.Type != "motor" {
			err = multierr.Append(err, fmt.Errorf("config: port %d: gearset on non-motor", port))
		}
	}
	for pin, mode := range l.Adi {
		if pin < 1 || pin > ports.MaxTriPort {
			err = multierr.Append(err, fmt.Errorf("config: adi pin %d outside 1..%d", pin, ports.MaxTriPort))
		}
		if !adiModes[mode] {
			err = multierr.Append(err, fmt.Errorf("config: adi pin %d: unknown mode %q", pin, mode))
		}
	}
	return err
}

// Apply plugs the declared devices into a simulated brain. Host-side only.
func (l *Layout) Apply(b *sim.Brain) error {
	if err := l.Validate(); err != nil {
		return err
	}
	var err error
	for port, dev := range l.Ports {
		var perr error
		switch dev.Type {
		case "motor":
			_, perr = b.PlugMotor(uint8(port))
		case "imu":
			_, perr = b.PlugIMU(uint8(port))
		case "gps":
			_, perr = b.PlugGPS(uint8(port))
		case "rotation":
			_, perr = b.PlugRotation(uint8(port))
		case "distance":
			_, perr = b.PlugDistance(uint8(port))
		case "vision":
			_, perr = b.PlugVision(uint8(port))
		case "expander":
			perr = b.PlugExpander(uint8(port))
		}
		err = multierr.Append(err, perr)
	}
	return err
}
