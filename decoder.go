package flipdot

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Line binds one logical select or enable signal to a physical output
// pin. Inverted marks lines that are wired active-low on the board;
// callers always write logical levels and the inversion is applied at
// the pin. A Line is fixed at configuration time and never changes.
type Line struct {
	Pin      gpio.PinOut
	Inverted bool
}

// present reports whether the line is bound to a pin. Optional lines
// (the A3 select of an 8-position axis) are left with a nil Pin.
func (l Line) present() bool {
	return l.Pin != nil
}

// write drives the logical level through the pin, honoring the
// inversion flag.
func (l Line) write(level bool) error {
	if l.Inverted {
		level = !level
	}
	return l.Pin.Out(gpio.Level(level))
}

// positionDecoder drives a 4-to-16 line decoder (74HC4514 on the
// reference board). A0-A2 are mandatory; A3 is optional and absent on
// axes that only need 8 positions, in which case the top address bit
// is discarded and positions collapse modulo 8.
type positionDecoder struct {
	a0, a1, a2 Line
	a3         Line
}

// configure claims every bound select pin as an output by driving it
// low. Any pin failure is fatal: the decoder is unusable and the
// display must not be brought up.
func (d *positionDecoder) configure() error {
	for _, sl := range []struct {
		name string
		l    Line
	}{
		{"A0", d.a0}, {"A1", d.a1}, {"A2", d.a2},
	} {
		if !sl.l.present() {
			return fmt.Errorf("select line %s is not assigned", sl.name)
		}
		if err := sl.l.write(false); err != nil {
			return fmt.Errorf("claiming select line %s: %w", sl.name, err)
		}
	}
	if d.a3.present() {
		if err := d.a3.write(false); err != nil {
			return fmt.Errorf("claiming select line A3: %w", err)
		}
	}
	return nil
}

// selectOutput routes the decoder to one of its 16 outputs. The A3
// input is wired inverted relative to bit 3 on the board, so the top
// bit is written negated. Pure signal writes; pulse timing belongs to
// the caller.
func (d *positionDecoder) selectOutput(pos uint8) error {
	if err := d.a0.write(pos&0x01 != 0); err != nil {
		return err
	}
	if err := d.a1.write(pos&0x02 != 0); err != nil {
		return err
	}
	if err := d.a2.write(pos&0x04 != 0); err != nil {
		return err
	}
	if d.a3.present() {
		return d.a3.write(pos&0x08 == 0)
	}
	return nil
}

// Decoder halves of the dual 2-to-4 group decoder. The row half gates
// the row coil network, the column half gates the column coil network.
type half int

const (
	rowHalf half = iota
	colHalf
)

// Enable channels. Channel 1 stays asserted for the whole session to
// gate the row path; channel 2 is the pulse channel and is asserted
// only for the duration of a single flip.
const (
	rowChannel   = 1
	pulseChannel = 2
)

// groupDecoder drives a dual 2-to-4 line decoder (74HC139 on the
// reference board): two independent 2-bit group selects plus one
// enable line per half. Selecting a group causes no current flow by
// itself; the matching enable must be asserted separately.
type groupDecoder struct {
	rowSel [2]Line // 1A0, 1A1
	colSel [2]Line // 2A0, 2A1
	enable [2]Line // 1E, 2E
}

func (d *groupDecoder) configure() error {
	for _, sl := range []struct {
		name string
		l    Line
	}{
		{"1A0", d.rowSel[0]}, {"1A1", d.rowSel[1]},
		{"2A0", d.colSel[0]}, {"2A1", d.colSel[1]},
		{"1E", d.enable[0]}, {"2E", d.enable[1]},
	} {
		if !sl.l.present() {
			return fmt.Errorf("group line %s is not assigned", sl.name)
		}
		if err := sl.l.write(false); err != nil {
			return fmt.Errorf("claiming group line %s: %w", sl.name, err)
		}
	}
	return nil
}

// selectGroup writes a 0-3 group index to one half's select pair. The
// enable lines are never touched here.
func (d *groupDecoder) selectGroup(h half, group uint8) error {
	sel := &d.rowSel
	if h == colHalf {
		sel = &d.colSel
	}
	if err := sel[0].write(group&0x01 != 0); err != nil {
		return err
	}
	return sel[1].write(group&0x02 != 0)
}

// setEnabled asserts or deasserts one enable channel. Leaving the
// pulse channel asserted across flips causes spurious dots; every
// assert must be paired with a deassert by the caller.
func (d *groupDecoder) setEnabled(channel int, on bool) error {
	return d.enable[channel-1].write(on)
}
