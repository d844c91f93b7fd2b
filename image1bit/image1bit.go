package image1bit

import (
	"image"
	"image/color"
)

// Threshold is the luma value a color must exceed to be treated as white.
// Luma is scaled by 1000 so the comparison stays in integer arithmetic.
const Threshold = 128 * 1000

// Bit represents a 1-bit color. On is white, Off is black.
type Bit bool

const (
	Off = Bit(false) // black
	On  = Bit(true)  // white
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

// Luma returns 1000·(0.299·R + 0.587·G + 0.114·B) for 8-bit channels.
func Luma(r, g, b uint8) uint32 {
	return 299*uint32(r) + 587*uint32(g) + 114*uint32(b)
}

// IsWhite reports whether the 8-bit channels threshold to white.
func IsWhite(r, g, b uint8) bool {
	return Luma(r, g, b) > Threshold
}

func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	return Bit(IsWhite(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
}

// BitModel converts colors to Bit by luma thresholding.
var BitModel = color.ModelFunc(toBit)

// Stride returns the number of bytes per row for an image of width w.
// Rows are aligned to 32 bits.
func Stride(w int) int {
	if w <= 0 {
		return 0
	}
	return (w + 31) / 32 * 4
}

// Bitmap is a 1-bit image where rows are packed MSB-first and 4-byte aligned.
type Bitmap struct {
	Pix    []byte          // Pixel data (8 pixels per byte)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewBitmap creates a new all-black Bitmap with the specified bounds.
func NewBitmap(r image.Rectangle) *Bitmap {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Bitmap{Rect: r}
	}
	stride := Stride(w)
	return &Bitmap{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// FromImage thresholds src into a new Bitmap with the same bounds.
func FromImage(src image.Image) *Bitmap {
	if b, ok := src.(*Bitmap); ok {
		dst := &Bitmap{Pix: make([]byte, len(b.Pix)), Stride: b.Stride, Rect: b.Rect}
		copy(dst.Pix, b.Pix)
		return dst
	}
	r := src.Bounds()
	dst := NewBitmap(r)
	if rgba, ok := src.(*image.RGBA); ok {
		dst.fromRGBA(rgba)
		return dst
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if toBit(src.At(x, y)).(Bit) {
				offset, mask := dst.pixOffset(x, y)
				dst.Pix[offset] |= mask
			}
		}
	}
	return dst
}

// fromRGBA reads the RGBA pixel buffer directly.
func (p *Bitmap) fromRGBA(src *image.RGBA) {
	r := p.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := src.PixOffset(r.Min.X, y)
		row := (y - r.Min.Y) * p.Stride
		for x := 0; x < r.Dx(); x++ {
			if IsWhite(src.Pix[i], src.Pix[i+1], src.Pix[i+2]) {
				p.Pix[row+x/8] |= 0x80 >> uint(x%8)
			}
			i += 4
		}
	}
}

// ColorModel returns the color model of the image.
func (p *Bitmap) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *Bitmap) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *Bitmap) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the Bit color of the pixel at (x, y).
func (p *Bitmap) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Off
	}
	offset, mask := p.pixOffset(x, y)
	return p.Pix[offset]&mask != 0
}

// Set sets the color of the pixel at (x, y).
func (p *Bitmap) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the Bit color of the pixel at (x, y).
func (p *Bitmap) SetBit(x, y int, c Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, mask := p.pixOffset(x, y)
	if c {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// Fill sets every pixel to c. Row padding stays zero.
func (p *Bitmap) Fill(c Bit) {
	if !c {
		clear(p.Pix)
		return
	}
	w := p.Rect.Dx()
	full, rem := w/8, w%8
	for y := 0; y < p.Rect.Dy(); y++ {
		row := p.Pix[y*p.Stride : (y+1)*p.Stride]
		clear(row)
		for i := 0; i < full; i++ {
			row[i] = 0xFF
		}
		if rem != 0 {
			row[full] = byte(0xFF) << uint(8-rem)
		}
	}
}

// SubImage returns a copy of the region r intersected with the bounds.
// Unlike the standard library images the pixels are not shared, as rows of a
// sub-region do not start on a byte boundary in general.
func (p *Bitmap) SubImage(r image.Rectangle) *Bitmap {
	r = r.Intersect(p.Rect)
	dst := NewBitmap(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetBit(x, y, p.BitAt(x, y))
		}
	}
	return dst
}

// pixOffset returns the byte offset and bit mask for the pixel at (x, y).
// The leftmost pixel of each byte is the most significant bit.
func (p *Bitmap) pixOffset(x, y int) (offset int, mask byte) {
	dx := x - p.Rect.Min.X
	offset = (y-p.Rect.Min.Y)*p.Stride + dx/8
	mask = 0x80 >> uint(dx%8)
	return
}
