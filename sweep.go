package flipdot

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/flipdisc/flipdot/imagebit"
)

// SweepMode is the visual ordering applied to the set of dots that
// differ between the committed state and a requested frame. Only the
// order changes; the set of flipped dots is always exactly the diff.
type SweepMode int

const (
	// SweepRows flips dots in row-major scan order.
	SweepRows SweepMode = iota
	// SweepColumns flips dots column by column, preserving row-major
	// order within a column.
	SweepColumns
	// SweepRandom flips dots in uniformly shuffled order.
	SweepRandom
	// SweepDiagonal is reserved and currently rejected by New.
	SweepDiagonal
)

func (m SweepMode) String() string {
	switch m {
	case SweepRows:
		return "rows"
	case SweepColumns:
		return "columns"
	case SweepRandom:
		return "random"
	case SweepDiagonal:
		return "diagonal"
	}
	return fmt.Sprintf("SweepMode(%d)", int(m))
}

// flipRequest is one pending dot flip, produced by the diff and
// consumed immediately by the addressing protocol.
type flipRequest struct {
	row, col int
}

// diff lists the coordinates where img disagrees with the mirror, in
// row-major scan order.
func (d *Dev) diff(img *imagebit.Image) []flipRequest {
	var flips []flipRequest
	min := img.Bounds().Min
	for r := 0; r < d.h; r++ {
		for c := 0; c < d.w; c++ {
			if bool(img.BitAt(min.X+c, min.Y+r)) != d.mirror[r*d.w+c] {
				flips = append(flips, flipRequest{row: r, col: c})
			}
		}
	}
	return flips
}

// orderFlips reorders the flip list in place according to the
// configured sweep mode.
func (d *Dev) orderFlips(flips []flipRequest) {
	switch d.sweep {
	case SweepRows:
		// The diff is already in row-major order.
	case SweepColumns:
		sort.SliceStable(flips, func(i, j int) bool {
			return flips[i].col < flips[j].col
		})
	case SweepRandom:
		intn := rand.Intn
		if d.rnd != nil {
			intn = d.rnd.Intn
		}
		for i := len(flips) - 1; i > 0; i-- {
			j := intn(i + 1)
			flips[i], flips[j] = flips[j], flips[i]
		}
	}
}

// Update moves the display to the given frame. Only the dots that
// differ from the committed state are pulsed, in the configured sweep
// order, so the cost of an update is proportional to the Hamming
// distance between the frames. The frame must match the display
// dimensions exactly.
func (d *Dev) Update(img *imagebit.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	if img.Bounds().Dx() != d.w || img.Bounds().Dy() != d.h {
		return fmt.Errorf("flipdot: frame size %dx%d does not match display %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), d.w, d.h)
	}

	flips := d.diff(img)
	d.orderFlips(flips)

	min := img.Bounds().Min
	for _, f := range flips {
		if err := d.setPixel(f.row, f.col, bool(img.BitAt(min.X+f.col, min.Y+f.row))); err != nil {
			return err
		}
	}

	// Bulk commit. Every differing dot was flipped above, so this only
	// rewrites cells that already match the physical state; committing
	// before the flips would desynchronize the mirror if interrupted.
	for r := 0; r < d.h; r++ {
		for c := 0; c < d.w; c++ {
			d.mirror[r*d.w+c] = bool(img.BitAt(min.X+c, min.Y+r))
		}
	}
	return nil
}
