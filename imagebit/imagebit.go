// Package imagebit provides a 1-bit monochrome image format matching the
// flip-dot pixel model.
//
// A flip-dot is bistable: a pixel is either flipped to its bright side or
// its dark side, with nothing in between. This package provides the Bit
// color type and a row-major Image implementation that the driver consumes
// as a frame buffer.
package imagebit

import (
	"image"
	"image/color"
)

// Bit is a 1-bit color: the pixel is either On (bright side showing) or
// Off (dark side showing).
type Bit bool

const (
	Off Bit = false
	On  Bit = true
)

// RGBA converts the Bit color to standard RGBA.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// toBit converts any color.Color to Bit by thresholding its luminance.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Standard grayscale conversion: 0.299R + 0.587G + 0.114B
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// Image is a 1-bit monochrome image stored one pixel per element in
// row-major order.
type Image struct {
	Pix    []Bit           // Pixel data, row-major
	Stride int             // Pixels per row
	Rect   image.Rectangle // Image bounds
}

// New creates a fully Off image with the specified bounds.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]Bit, w*h),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *Image) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the Bit value of the pixel at (x, y).
func (p *Image) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Off
	}
	return p.Pix[p.pixOffset(x, y)]
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.pixOffset(x, y)] = BitModel.Convert(c).(Bit)
}

// SetBit sets the Bit value of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *Image) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.pixOffset(x, y)] = b
}

// pixOffset returns the index of the pixel at (x, y) in Pix.
func (p *Image) pixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x - p.Rect.Min.X)
}
