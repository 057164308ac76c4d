// Package flipdot controls a flip-dot matrix display whose coils are
// addressed through two GPIO-driven demultiplexer networks.
//
// A flip-dot pixel is a bistable mechanical flap with a permanent magnet.
// Pulsing the addressed coil in one polarity shows the bright side, the
// opposite polarity shows the dark side, and the flap then holds its
// state with zero power. There is no electrical feedback: the driver
// keeps a software mirror of what was last committed and trusts it
// because it is the only writer.
//
// # Hardware Topology
//
// The reference board addresses the coil matrix with three decoder
// stages, all driven from plain GPIO lines:
//
//   - One 4-to-16 position decoder per axis (74HC4514) selecting the
//     coil within a group. Rows use 3 select lines, columns use 4; the
//     A3 input is wired inverted on the board.
//   - A dual 2-to-4 group decoder (74HC139) selecting which group of 7
//     coils each position decoder fans into, with one enable line per
//     half. Enable channel 1 gates the row path for the whole session;
//     enable channel 2 is pulsed once per flip.
//
// A dot flip is: select row group and position, select column group and
// position, assert the pulse channel for the configured duration,
// deassert it, and wait for the pulse-forming capacitor to recover.
// Exactly one dot is addressed at a time.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/flipdisc/flipdot"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		pin := func(name string) flipdot.Line {
//			return flipdot.Line{Pin: gpioreg.ByName(name)}
//		}
//
//		dev, err := flipdot.New(&flipdot.Pins{
//			RowA0: pin("GPIO10"), RowA1: pin("GPIO11"), RowA2: pin("GPIO12"),
//			ColA0: pin("GPIO6"), ColA1: pin("GPIO7"), ColA2: pin("GPIO8"),
//			ColA3: flipdot.Line{Pin: gpioreg.ByName("GPIO9"), Inverted: true},
//			Group1A0: pin("GPIO0"), Group1A1: pin("GPIO1"),
//			Group2A0: pin("GPIO2"), Group2A1: pin("GPIO3"),
//			Enable1:  pin("GPIO4"),
//			Enable2:  flipdot.Line{Pin: gpioreg.ByName("GPIO5"), Inverted: true},
//		}, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//
//		dev.SetPixel(6, 14, true)
//	}
//
// # Frame Updates
//
// Update takes a full frame (an imagebit.Image matching the display
// dimensions), diffs it against the mirror and flips only the dots that
// changed, in the configured sweep order:
//
//	img := imagebit.New(dev.Bounds())
//	img.SetBit(0, 0, imagebit.On)
//	dev.Update(img)
//
// The cost of an update is proportional to the number of changed dots,
// not the display size; an update with an identical frame issues no
// pulses at all. Dev also implements display.Drawer from periph.io, so
// arbitrary image.Image sources can be composited with Draw.
//
// # Timing
//
// Every flip blocks for PulseDuration plus RecoveryDelay. Both are
// quantized by the host's scheduler; on a non-realtime kernel the
// effective floor is on the order of a millisecond, which bounds a
// full-frame redraw of the 28x13 reference board to roughly a second.
//
// # Polarity Calibration
//
// Board revisions disagree on whether the set pulse uses the pixel
// value or its complement as the polarity bit. Opts.SwapPolarity
// selects between the two; if a freshly initialized display shows the
// inverse of what you draw, flip it.
package flipdot
