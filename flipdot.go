package flipdot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"sync"
	"time"

	"github.com/flipdisc/flipdot/imagebit"
)

// positionsPerGroup is the number of coil positions each decoder group
// fans out to. It is a hardware constant of the row/column driver
// network sizing, not a display dimension.
const positionsPerGroup = 7

// maxAxis is the largest row or column count addressable with four
// decoder groups.
const maxAxis = 4 * positionsPerGroup

// settleDelay is how long the board is left alone after power-path
// changes during initialization.
const settleDelay = 200 * time.Millisecond

var errHalted = errors.New("flipdot: halted")

// Pins is the board-specific line assignment. The three select lines of
// each position decoder are mandatory; A3 is optional and left unset on
// an axis that only needs 8 positions (the reference board wires A3 on
// the column decoder only). Inversion flags belong to the board wiring,
// not to the caller's data.
type Pins struct {
	// Row position decoder select lines.
	RowA0, RowA1, RowA2 Line
	RowA3               Line // optional

	// Column position decoder select lines.
	ColA0, ColA1, ColA2 Line
	ColA3               Line // optional

	// Group decoder select pairs. Group1 addresses the row half,
	// Group2 the column half.
	Group1A0, Group1A1 Line
	Group2A0, Group2A1 Line

	// Enable lines. Enable1 gates the row path and stays asserted for
	// the whole session; Enable2 is the pulse channel.
	Enable1, Enable2 Line
}

// Opts is the configuration for the flip-dot display.
type Opts struct {
	// Display dimensions in dots.
	W int // Columns (default: 28, must be 1..28)
	H int // Rows (default: 13, must be 1..28)

	// PulseDuration is how long the coil is energized per flip
	// (default: 500µs). RecoveryDelay is the pause after each pulse
	// that lets the pulse-forming capacitor recharge (default: 1ms).
	// Both are quantized by the host scheduler; on a stock kernel the
	// effective floor is around a millisecond.
	PulseDuration time.Duration
	RecoveryDelay time.Duration

	// Sweep is the visual order in which differing dots are flipped
	// during Update.
	Sweep SweepMode

	// SwapPolarity inverts the polarity bit fed to the position
	// decoders. Board revisions disagree on the sign of the set pulse;
	// this is a per-board calibration constant.
	SwapPolarity bool

	// Rand is the source used by SweepRandom. Defaults to the shared
	// math/rand source.
	Rand *rand.Rand
}

// Dev is the device handle for the flip-dot display.
type Dev struct {
	// Every public entry point funnels through this lock: the
	// addressing protocol tolerates exactly one flip in flight.
	mu sync.Mutex

	// Decoder networks.
	groups groupDecoder
	rowDec positionDecoder
	colDec positionDecoder

	// Display geometry.
	w, h int

	// Timing and behavior.
	pulse        time.Duration
	recovery     time.Duration
	sweep        SweepMode
	swapPolarity bool
	rnd          *rand.Rand

	// mirror is the last physically committed value of every dot,
	// row-major. Only setPixel writes it cell-wise; Update overwrites
	// it wholesale after a completed sweep. There is no feedback from
	// the hardware, so a mechanically stuck flap silently diverges.
	mirror []bool

	halted bool
}

// New creates a flip-dot device driving the given line assignment.
//
// Every bound pin is claimed as an output immediately; a pin that
// cannot be driven makes initialization fail and no usable device is
// returned. The display is cleared dot by dot so the mirror and the
// physical state agree from the start.
//
// opts can be nil to use defaults (28x13, 500µs pulse, row sweep).
func New(pins *Pins, opts *Opts) (*Dev, error) {
	if pins == nil {
		return nil, errors.New("flipdot: pins must be provided")
	}
	if opts == nil {
		opts = &Opts{}
	}

	w, h := opts.W, opts.H
	if w == 0 {
		w = 28
	}
	if h == 0 {
		h = 13
	}
	if w < 1 || w > maxAxis {
		return nil, fmt.Errorf("flipdot: width must be between 1 and %d", maxAxis)
	}
	if h < 1 || h > maxAxis {
		return nil, fmt.Errorf("flipdot: height must be between 1 and %d", maxAxis)
	}
	if opts.Sweep == SweepDiagonal {
		return nil, errors.New("flipdot: diagonal sweep is not implemented")
	}
	if opts.Sweep < SweepRows || opts.Sweep > SweepDiagonal {
		return nil, fmt.Errorf("flipdot: unknown sweep mode %d", opts.Sweep)
	}

	pulse := opts.PulseDuration
	if pulse == 0 {
		pulse = 500 * time.Microsecond
	}
	recovery := opts.RecoveryDelay
	if recovery == 0 {
		recovery = time.Millisecond
	}

	d := &Dev{
		groups: groupDecoder{
			rowSel: [2]Line{pins.Group1A0, pins.Group1A1},
			colSel: [2]Line{pins.Group2A0, pins.Group2A1},
			enable: [2]Line{pins.Enable1, pins.Enable2},
		},
		rowDec:       positionDecoder{a0: pins.RowA0, a1: pins.RowA1, a2: pins.RowA2, a3: pins.RowA3},
		colDec:       positionDecoder{a0: pins.ColA0, a1: pins.ColA1, a2: pins.ColA2, a3: pins.ColA3},
		w:            w,
		h:            h,
		pulse:        pulse,
		recovery:     recovery,
		sweep:        opts.Sweep,
		swapPolarity: opts.SwapPolarity,
		rnd:          opts.Rand,
		mirror:       make([]bool, w*h),
	}

	if err := d.rowDec.configure(); err != nil {
		return nil, fmt.Errorf("flipdot: row decoder: %w", err)
	}
	if err := d.colDec.configure(); err != nil {
		return nil, fmt.Errorf("flipdot: column decoder: %w", err)
	}
	if err := d.groups.configure(); err != nil {
		return nil, fmt.Errorf("flipdot: group decoder: %w", err)
	}

	// The row path stays gated on for the whole session; the pulse
	// channel rests deasserted between flips.
	if err := d.groups.setEnabled(rowChannel, true); err != nil {
		return nil, fmt.Errorf("flipdot: enabling row channel: %w", err)
	}
	if err := d.groups.setEnabled(pulseChannel, false); err != nil {
		return nil, fmt.Errorf("flipdot: parking pulse channel: %w", err)
	}
	time.Sleep(settleDelay)

	// Reset every dot so the zeroed mirror matches physical reality.
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if err := d.setPixel(r, c, false); err != nil {
				return nil, fmt.Errorf("flipdot: clearing display: %w", err)
			}
		}
	}
	time.Sleep(settleDelay)

	return d, nil
}

// SetPixel flips a single dot to the given value, synchronously. The
// call blocks for the pulse and recovery durations. Out-of-range
// coordinates are rejected before any signal is written.
func (d *Dev) SetPixel(row, col int, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	if err := d.checkBounds(row, col); err != nil {
		return err
	}
	return d.setPixel(row, col, value)
}

// FillRect flips every dot in the inclusive rectangle [r0,r1]x[c0,c1]
// to value, one at a time. It bypasses the diff engine and pulses every
// cell in the rectangle regardless of its current state.
func (d *Dev) FillRect(r0, r1, c0, c1 int, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	if err := d.checkBounds(r0, c0); err != nil {
		return err
	}
	if err := d.checkBounds(r1, c1); err != nil {
		return err
	}
	if r1 < r0 || c1 < c0 {
		return fmt.Errorf("flipdot: empty rectangle [%d,%d]x[%d,%d]", r0, r1, c0, c1)
	}
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if err := d.setPixel(r, c, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear resets the whole display to the dark side.
func (d *Dev) Clear() error {
	return d.FillRect(0, d.h-1, 0, d.w-1, false)
}

// checkBounds rejects out-of-range coordinates. Nothing is written to
// the hardware on failure.
func (d *Dev) checkBounds(row, col int) error {
	if row < 0 || row >= d.h {
		return fmt.Errorf("flipdot: row %d out of range [0,%d)", row, d.h)
	}
	if col < 0 || col >= d.w {
		return fmt.Errorf("flipdot: column %d out of range [0,%d)", col, d.w)
	}
	return nil
}

// setPixel runs the single-dot addressing protocol. The caller holds
// the lock and has validated the coordinates.
//
// Row and column indexes decompose into a decoder group and an
// intra-group offset. The selected output position carries the offset
// plus the polarity bit that picks the set or reset coil half.
func (d *Dev) setPixel(row, col int, value bool) error {
	rowGroup := uint8(row / positionsPerGroup)
	rowOffset := uint8(row % positionsPerGroup)
	colGroup := uint8(col / positionsPerGroup)
	colOffset := uint8(col % positionsPerGroup)

	pos := func(offset uint8) uint8 {
		p := offset + 1
		if value != d.swapPolarity {
			p += 8
		}
		return p
	}

	if err := d.groups.selectGroup(rowHalf, rowGroup); err != nil {
		return err
	}
	if err := d.rowDec.selectOutput(pos(rowOffset)); err != nil {
		return err
	}
	if err := d.groups.selectGroup(colHalf, colGroup); err != nil {
		return err
	}
	if err := d.colDec.selectOutput(pos(colOffset)); err != nil {
		return err
	}

	// One timed pulse through the selected coil, then let the
	// pulse-forming capacitor recover before the next flip.
	if err := d.groups.setEnabled(pulseChannel, true); err != nil {
		return err
	}
	time.Sleep(d.pulse)
	if err := d.groups.setEnabled(pulseChannel, false); err != nil {
		return err
	}
	time.Sleep(d.recovery)

	d.mirror[row*d.w+col] = value
	return nil
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return imagebit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.w, d.h)
}

// Draw draws an image onto the display. It implements display.Drawer
// from periph.io: the source is composited over the current frame and
// only the dots that actually changed are flipped.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	dstRect = dstRect.Intersect(d.Bounds())
	if dstRect.Empty() {
		return nil
	}

	d.mu.Lock()
	if d.halted {
		d.mu.Unlock()
		return errHalted
	}
	img := imagebit.New(d.Bounds())
	for i, v := range d.mirror {
		img.Pix[i] = imagebit.Bit(v)
	}
	d.mu.Unlock()

	draw.Draw(img, dstRect, src, sp, draw.Src)
	return d.Update(img)
}

// Halt parks both enable channels and rejects all further operations.
// The dots keep whatever state they were last flipped to.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	d.halted = true
	if err := d.groups.setEnabled(pulseChannel, false); err != nil {
		return err
	}
	return d.groups.setEnabled(rowChannel, false)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("flipdot.Dev{%dx%d}", d.w, d.h)
}
