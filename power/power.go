// Package power sequences the flip-dot board's supply rails and samples
// the battery voltage.
//
// The board has two switched rails: the 24V coil supply that actually
// flips dots, and the logic supply feeding the decoder networks. Both
// are driven from GPIO high-side switches. Battery voltage is sensed
// through a resistive divider on an ADC input.
package power

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Opts is the configuration for the power controller.
type Opts struct {
	// Supply24V switches the coil supply. Mandatory.
	Supply24V gpio.PinOut
	// Logic switches the flip-board logic supply. Mandatory.
	Logic gpio.PinOut

	// Battery is the battery-sense ADC input. Optional; without it
	// BatteryVoltage returns an error.
	Battery analog.PinADC
	// DividerRatio is Vbattery/Vadc of the sense divider
	// (default: 1.0, sense pin directly on the battery).
	DividerRatio float64
}

// Rails is the handle for the board's switched supplies.
type Rails struct {
	supply24V gpio.PinOut
	logic     gpio.PinOut
	battery   analog.PinADC
	ratio     float64
}

// New claims both rail pins and leaves the board fully powered down.
func New(opts *Opts) (*Rails, error) {
	if opts == nil || opts.Supply24V == nil || opts.Logic == nil {
		return nil, errors.New("power: both supply pins must be provided")
	}
	ratio := opts.DividerRatio
	if ratio == 0 {
		ratio = 1.0
	}
	if ratio < 0 {
		return nil, fmt.Errorf("power: divider ratio %v must be positive", ratio)
	}

	r := &Rails{
		supply24V: opts.Supply24V,
		logic:     opts.Logic,
		battery:   opts.Battery,
		ratio:     ratio,
	}
	if err := r.DisableBoard(); err != nil {
		return nil, fmt.Errorf("power: claiming rail pins: %w", err)
	}
	return r, nil
}

// Enable24V switches on the coil supply.
func (r *Rails) Enable24V() error {
	return r.supply24V.Out(gpio.High)
}

// Disable24V switches off the coil supply.
func (r *Rails) Disable24V() error {
	return r.supply24V.Out(gpio.Low)
}

// EnableLogic switches on the flip-board logic supply.
func (r *Rails) EnableLogic() error {
	return r.logic.Out(gpio.High)
}

// DisableLogic switches off the flip-board logic supply.
func (r *Rails) DisableLogic() error {
	return r.logic.Out(gpio.Low)
}

// EnableBoard powers the whole board: coil supply first, then logic.
func (r *Rails) EnableBoard() error {
	if err := r.Enable24V(); err != nil {
		return err
	}
	return r.EnableLogic()
}

// DisableBoard powers the whole board down.
func (r *Rails) DisableBoard() error {
	if err := r.Disable24V(); err != nil {
		return err
	}
	return r.DisableLogic()
}

// BatteryVoltage samples the battery-sense input and scales it by the
// divider ratio.
func (r *Rails) BatteryVoltage() (physic.ElectricPotential, error) {
	if r.battery == nil {
		return 0, errors.New("power: no battery sense pin configured")
	}
	s, err := r.battery.Read()
	if err != nil {
		return 0, fmt.Errorf("power: reading battery sense: %w", err)
	}
	return physic.ElectricPotential(float64(s.V) * r.ratio), nil
}
