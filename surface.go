package zonerender

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// ErrNoRenderer is reported for zones whose kind has no registered renderer.
var ErrNoRenderer = errors.New("zonerender: no renderer for zone kind")

// Surface is the private drawing area of one zone. Coordinates are local to
// the zone: (0, 0) is its top-left corner and it is exactly Zone.W×Zone.H.
type Surface struct {
	*gg.Context
	Zone Zone
}

func newSurface(z Zone, bg color.Color) *Surface {
	dc := gg.NewContext(z.W, z.H)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetColor(color.Black)
	return &Surface{Context: dc, Zone: z}
}

// Bounds returns the local bounds of the surface.
func (s *Surface) Bounds() image.Rectangle {
	return s.Image().Bounds()
}

// ZoneRenderer draws the content of one zone kind.
type ZoneRenderer interface {
	Draw(s *Surface, z Zone, d *DisplayData) error
}

// RendererFunc adapts a function to ZoneRenderer.
type RendererFunc func(s *Surface, z Zone, d *DisplayData) error

// Draw calls f.
func (f RendererFunc) Draw(s *Surface, z Zone, d *DisplayData) error {
	return f(s, z, d)
}

// Renderers maps zone kinds to their renderer.
type Renderers map[Kind]ZoneRenderer

// Lookup returns the renderer for k.
func (r Renderers) Lookup(k Kind) (ZoneRenderer, bool) {
	zr, ok := r[k]
	return zr, ok && zr != nil
}

// Compositor allocates zone surfaces and runs renderers against them.
type Compositor struct {
	// Background fills every new surface. Defaults to white.
	Background color.Color
}

// Draw renders zone z into a new surface. Renderer errors and panics are
// returned as errors so they only affect this zone.
func (c *Compositor) Draw(z Zone, d *DisplayData, r ZoneRenderer) (s *Surface, err error) {
	if r == nil {
		return nil, fmt.Errorf("%w %q (zone %s)", ErrNoRenderer, z.Kind, z.ID)
	}
	bg := c.Background
	if bg == nil {
		bg = color.White
	}
	s = newSurface(z, bg)

	defer func() {
		if p := recover(); p != nil {
			s, err = nil, fmt.Errorf("zonerender: renderer for zone %s panicked: %v", z.ID, p)
		}
	}()
	if err := r.Draw(s, z, d); err != nil {
		return nil, fmt.Errorf("zonerender: draw zone %s: %w", z.ID, err)
	}
	return s, nil
}
