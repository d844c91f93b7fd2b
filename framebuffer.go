package zonerender

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3/display"

	"github.com/flavioheleno/zonerender/image1bit"
	"github.com/flavioheleno/zonerender/monobmp"
)

// FramebufferOpts is the configuration for a Framebuffer.
type FramebufferOpts struct {
	// Canvas dimensions in pixels (default: 800x480)
	W int
	H int

	// Target receives the changed region on every flush (optional).
	// Any periph.io e-ink or OLED driver can be used.
	Target display.Drawer

	// Background of the initial frame and of pixels no zone covers any
	// more (default: white)
	Background color.Color
}

// Framebuffer keeps the full 1-bit frame shown on a panel. Zone updates are
// composited into it and only the bounding box of pixels that differ from
// the last flushed frame is sent to the target.
//
// Framebuffer implements display.Drawer, so it can stand in for a panel in
// tests and previews.
type Framebuffer struct {
	rect   image.Rectangle
	target display.Drawer

	cur  *image1bit.Bitmap // frame being composed
	last *image1bit.Bitmap // frame last flushed
	full bool              // next flush sends the whole frame
	bg   image1bit.Bit

	legs []image.Rectangle // legs region zones of the last pass that had any

	halted bool
}

// NewFramebuffer creates a framebuffer filled with the background.
//
// opts can be nil to use the default 800x480 canvas without a target.
func NewFramebuffer(opts *FramebufferOpts) (*Framebuffer, error) {
	if opts == nil {
		opts = &FramebufferOpts{}
	}
	w, h := opts.W, opts.H
	if w == 0 && h == 0 {
		w, h = 800, 480
	}
	if w <= 0 || h <= 0 {
		return nil, errors.New("zonerender: framebuffer size must be positive")
	}
	if opts.Target != nil {
		if b := opts.Target.Bounds(); b.Dx() < w || b.Dy() < h {
			return nil, fmt.Errorf("zonerender: target %v is smaller than %dx%d", b, w, h)
		}
	}

	bg := image1bit.On
	if opts.Background != nil {
		bg = image1bit.BitModel.Convert(opts.Background).(image1bit.Bit)
	}

	r := image.Rect(0, 0, w, h)
	f := &Framebuffer{
		rect:   r,
		target: opts.Target,
		cur:    image1bit.NewBitmap(r),
		last:   image1bit.NewBitmap(r),
		full:   true,
		bg:     bg,
	}
	f.cur.Fill(bg)
	f.last.Fill(bg)
	return f, nil
}

// ColorModel returns the color model of the frame.
func (f *Framebuffer) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the frame bounds.
func (f *Framebuffer) Bounds() image.Rectangle {
	return f.rect
}

// Draw composes src into dst and flushes the changed region.
func (f *Framebuffer) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if f.halted {
		return errors.New("zonerender: framebuffer halted")
	}
	f.paint(dst, src, sp)
	_, err := f.Flush()
	return err
}

func (f *Framebuffer) paint(dst image.Rectangle, src image.Image, sp image.Point) {
	// Clip to frame bounds
	dst = dst.Intersect(f.rect)
	if dst.Empty() {
		return
	}
	if m, ok := src.(*image1bit.Bitmap); ok {
		// Bit copy, no color conversion
		for y := dst.Min.Y; y < dst.Max.Y; y++ {
			for x := dst.Min.X; x < dst.Max.X; x++ {
				f.cur.SetBit(x, y, m.BitAt(sp.X+x-dst.Min.X, sp.Y+y-dst.Min.Y))
			}
		}
		return
	}
	draw.Draw(f.cur, dst, src, sp, draw.Src)
}

// Apply composites the changed zones of a render pass and flushes once.
// Zones without a bitmap are skipped. Every bitmap is checked before any is
// painted, so a bad zone leaves the frame untouched.
//
// When the pass carries legs region zones, pixels of the previous legs
// layout that none of them covers are reset to the background. This clears
// legs left over after the journey got shorter.
//
// It returns the flushed rectangle, empty when no pixel changed.
func (f *Framebuffer) Apply(zones []RenderedZone) (image.Rectangle, error) {
	if f.halted {
		return image.Rectangle{}, errors.New("zonerender: framebuffer halted")
	}

	type patch struct {
		r image.Rectangle
		m *image1bit.Bitmap
	}
	var (
		patches []patch
		legs    []image.Rectangle
	)
	for _, z := range zones {
		if z.Kind.inLegsRegion() {
			legs = append(legs, z.Rect())
		}
		if !z.Changed || z.Bitmap == nil {
			continue
		}
		m, err := monobmp.Decode(bytes.NewReader(z.Bitmap))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("zonerender: zone %s: %w", z.ID, err)
		}
		if m.Rect.Dx() != z.W || m.Rect.Dy() != z.H {
			return image.Rectangle{}, fmt.Errorf("zonerender: zone %s bitmap is %dx%d, zone is %dx%d",
				z.ID, m.Rect.Dx(), m.Rect.Dy(), z.W, z.H)
		}
		patches = append(patches, patch{r: z.Rect(), m: m})
	}

	if len(legs) > 0 {
		f.clearVacated(legs)
		f.legs = legs
	}
	for _, p := range patches {
		f.paint(p.r, p.m, image.Point{})
	}
	return f.Flush()
}

// clearVacated resets the pixels of the previous legs region zones that are
// outside every rectangle of legs.
func (f *Framebuffer) clearVacated(legs []image.Rectangle) {
	for _, old := range f.legs {
		old = old.Intersect(f.rect)
		for y := old.Min.Y; y < old.Max.Y; y++ {
		next:
			for x := old.Min.X; x < old.Max.X; x++ {
				p := image.Pt(x, y)
				for _, r := range legs {
					if p.In(r) {
						continue next
					}
				}
				f.cur.SetBit(x, y, f.bg)
			}
		}
	}
}

// Flush sends the region that changed since the last flush to the target.
func (f *Framebuffer) Flush() (image.Rectangle, error) {
	var r image.Rectangle
	if f.full {
		r = f.rect
	} else {
		r = f.calculateDiff()
	}
	if r.Empty() {
		return r, nil
	}
	if f.target != nil {
		if err := f.target.Draw(r, f.cur, r.Min); err != nil {
			return image.Rectangle{}, err
		}
	}
	copy(f.last.Pix, f.cur.Pix)
	f.full = false
	return r, nil
}

// Invalidate makes the next flush send the whole frame, as needed after a
// full panel refresh.
func (f *Framebuffer) Invalidate() {
	f.full = true
}

// calculateDiff compares the current and last frames and returns the
// bounding box of changed pixels, widened to whole bytes horizontally since
// panel controllers address columns in groups of 8.
func (f *Framebuffer) calculateDiff() image.Rectangle {
	width := f.rect.Dx()
	height := f.rect.Dy()
	stride := f.cur.Stride

	minRow, maxRow := height, -1
	minByte, maxByte := stride, -1

	// Scan row by row to find differences
	for y := 0; y < height; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		if bytes.Equal(f.last.Pix[rowStart:rowEnd], f.cur.Pix[rowStart:rowEnd]) {
			continue
		}
		if y < minRow {
			minRow = y
		}
		maxRow = y

		// Scan columns within this row for precise boundaries
		for x := 0; x < stride; x++ {
			if f.last.Pix[rowStart+x] != f.cur.Pix[rowStart+x] {
				if x < minByte {
					minByte = x
				}
				if x > maxByte {
					maxByte = x
				}
			}
		}
	}
	if maxRow < 0 {
		return image.Rectangle{}
	}

	maxX := (maxByte + 1) * 8
	if maxX > width {
		maxX = width
	}
	return image.Rect(minByte*8, minRow, maxX, maxRow+1)
}

// Frame returns a copy of the current frame.
func (f *Framebuffer) Frame() *image1bit.Bitmap {
	return image1bit.FromImage(f.cur)
}

// Encode returns the current frame as a monochrome bitmap file.
func (f *Framebuffer) Encode() []byte {
	return monobmp.EncodeBitmap(f.cur, nil)
}

// Halt stops accepting updates and halts the target.
func (f *Framebuffer) Halt() error {
	f.halted = true
	if f.target != nil {
		return f.target.Halt()
	}
	return nil
}

// String returns a string representation of the framebuffer.
func (f *Framebuffer) String() string {
	return fmt.Sprintf("zonerender.Framebuffer{%dx%d}", f.rect.Dx(), f.rect.Dy())
}

var _ display.Drawer = (*Framebuffer)(nil)
