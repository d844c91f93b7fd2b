// Package dashboard draws the commute dashboard zones.
//
// It provides one zonerender.ZoneRenderer per zone kind. Text uses the Go
// fonts for large figures and basicfont for small print, both rendered in
// black on white so they survive 1-bit thresholding.
package dashboard

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/flavioheleno/zonerender"
)

// Font sizes in points at 72 DPI, i.e. pixels.
const (
	sizeClock  = 64
	sizeLarge  = 40
	sizeMedium = 20
	sizeSmall  = 16
)

// Theme holds the parsed fonts. Faces are created per draw call and closed
// when it returns, since opentype faces cache glyphs and must not be shared
// between goroutines.
type Theme struct {
	Bold    *opentype.Font
	Regular *opentype.Font
}

// DefaultTheme parses the embedded Go fonts.
func DefaultTheme() (*Theme, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse regular font: %w", err)
	}
	return &Theme{Bold: bold, Regular: regular}, nil
}

func (t *Theme) face(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: font face %vpt: %w", size, err)
	}
	return face, nil
}

// New returns renderers for every zone kind of the default layout. theme can
// be nil to use DefaultTheme; New panics if the embedded fonts fail to parse.
func New(theme *Theme) zonerender.Renderers {
	if theme == nil {
		var err error
		if theme, err = DefaultTheme(); err != nil {
			panic(err)
		}
	}
	return zonerender.Renderers{
		zonerender.KindTime:      zonerender.RendererFunc(theme.drawTime),
		zonerender.KindDate:      zonerender.RendererFunc(theme.drawDate),
		zonerender.KindWeather:   zonerender.RendererFunc(theme.drawWeather),
		zonerender.KindStatus:    zonerender.RendererFunc(theme.drawStatus),
		zonerender.KindLeg:       zonerender.RendererFunc(theme.drawLeg),
		zonerender.KindConnector: zonerender.RendererFunc(drawConnector),
		zonerender.KindNoLegs:    zonerender.RendererFunc(theme.drawNoLegs),
		zonerender.KindLocation:  zonerender.RendererFunc(theme.drawLocation),
	}
}

func (t *Theme) drawTime(s *zonerender.Surface, z zonerender.Zone, d *zonerender.DisplayData) error {
	// Shrink the clock on short zones, e.g. small panels.
	size := math.Min(sizeClock, float64(z.H)*0.65)
	face, err := t.face(t.Bold, size)
	if err != nil {
		return err
	}
	defer face.Close()
	s.SetFontFace(face)
	s.DrawStringAnchored(d.Time, 12, float64(z.H)/2-8, 0, 0.5)

	s.SetFontFace(basicfont.Face7x13)
	s.DrawStringAnchored(leaveText(d.Status.LeaveInMinutes), 14, float64(z.H)-10, 0, 0)
	return nil
}

func leaveText(minutes int) string {
	switch {
	case minutes <= 0:
		return "LEAVE NOW"
	case minutes == 1:
		return "LEAVE IN 1 MIN"
	}
	return fmt.Sprintf("LEAVE IN %d MIN", minutes)
}

func (t *Theme) drawDate(s *zonerender.Surface, z zonerender.Zone, d *zonerender.DisplayData) error {
	face, err := t.face(t.Regular, sizeMedium)
	if err != nil {
		return err
	}
	defer face.Close()
	s.SetFontFace(face)
	s.DrawStringAnchored(fit(s.Context, d.Date, float64(z.W-16)), float64(z.W)/2, float64(z.H)/2, 0.5, 0.5)
	return nil
}

func (t *Theme) drawWeather(s *zonerender.Surface, z zonerender.Zone, d *zonerender.DisplayData) error {
	large, err := t.face(t.Bold, sizeLarge)
	if err != nil {
		return err
	}
	defer large.Close()
	w := d.Weather
	s.SetFontFace(large)
	s.DrawStringAnchored(fmt.Sprintf("%d°", w.Temp), float64(z.W)-12, 40, 1, 0.5)

	s.SetFontFace(basicfont.Face7x13)
	s.DrawStringAnchored(fit(s.Context, strings.ToUpper(w.Condition), float64(z.W-24)), float64(z.W)-12, 76, 1, 0.5)

	if w.Umbrella {
		drawUmbrella(s.Context, 30, 40, 18)
	}
	return nil
}

func (t *Theme) drawStatus(s *zonerender.Surface, z zonerender.Zone, d *zonerender.DisplayData) error {
	st := d.Status
	s.SetColor(color.Black)
	s.DrawRectangle(0, 0, float64(z.W), float64(z.H))
	s.Fill()

	parts := []string{strings.ToUpper(st.Type)}
	if st.ArriveBy != "" {
		parts = append(parts, "ARRIVE "+st.ArriveBy)
	}
	if st.TotalMinutes > 0 {
		parts = append(parts, fmt.Sprintf("%d MIN", st.TotalMinutes))
	}
	label := strings.Join(nonEmpty(parts), "  |  ")

	s.SetFontFace(basicfont.Face7x13)
	s.SetColor(color.White)
	s.DrawStringAnchored(fit(s.Context, label, float64(z.W-24)), 12, float64(z.H)/2, 0, 0.35)
	return nil
}

func (t *Theme) drawLeg(s *zonerender.Surface, z zonerender.Zone, d *zonerender.DisplayData) error {
	leg, ok := d.Leg(z.Leg)
	if !ok {
		return fmt.Errorf("dashboard: no leg %d in display data", z.Leg)
	}
	w, h := float64(z.W), float64(z.H)

	// Frame
	s.SetLineWidth(2)
	if leg.State == zonerender.LegSkip {
		s.SetDash(6, 4)
	}
	s.DrawRoundedRectangle(1, 1, w-2, h-2, 6)
	s.Stroke()
	s.SetDash()

	// Icon
	iconSize := h * 0.6
	if iconSize > 36 {
		iconSize = 36
	}
	drawIcon(s.Context, leg.Type, 8+iconSize/2, h/2, iconSize)

	// Minutes on the right
	medium, err := t.face(t.Bold, sizeMedium)
	if err != nil {
		return err
	}
	defer medium.Close()
	s.SetFontFace(medium)
	minutes := fmt.Sprintf("%d MIN", leg.Minutes)
	s.DrawStringAnchored(minutes, w-12, h/2, 1, 0.35)
	mw, _ := s.MeasureString(minutes)

	// Title and subtitle
	textX := 16 + iconSize
	textW := w - textX - mw - 36
	if leg.State == zonerender.LegDelayed {
		textW -= badgeWidth
		drawBadge(s, "DELAYED", w-mw-24-badgeWidth, h/2)
	}
	title := fit(s.Context, leg.Title, textW)
	if h >= 40 && leg.Subtitle != "" {
		s.DrawStringAnchored(title, textX, h/2-4, 0, 0)
		s.SetFontFace(basicfont.Face7x13)
		s.DrawStringAnchored(fit(s.Context, leg.Subtitle, textW), textX, h/2+14, 0, 0)
	} else {
		s.DrawStringAnchored(title, textX, h/2, 0, 0.35)
	}

	if leg.State == zonerender.LegCancelled {
		s.SetLineWidth(3)
		s.DrawLine(6, h/2, w-6, h/2)
		s.Stroke()
	}
	return nil
}

const badgeWidth = 70

// connectorX is the connector axis, under the leg icon column.
const connectorX = 26

// drawConnector draws a down arrow from the leg above to the next one,
// dashed when the next leg is skipped or cancelled.
func drawConnector(s *zonerender.Surface, z zonerender.Zone, d *zonerender.DisplayData) error {
	next, ok := d.Leg(z.Leg + 1)
	if !ok {
		return fmt.Errorf("dashboard: no leg %d after connector %s", z.Leg+1, z.ID)
	}
	h := float64(z.H)
	head := h / 2
	if head > 6 {
		head = 6
	}

	s.SetLineWidth(2)
	if next.State == zonerender.LegSkip || next.State == zonerender.LegCancelled {
		s.SetDash(2, 2)
	}
	s.DrawLine(connectorX, 0, connectorX, h-head)
	s.Stroke()
	s.SetDash()

	s.MoveTo(connectorX-head, h-head)
	s.LineTo(connectorX+head, h-head)
	s.LineTo(connectorX, h)
	s.ClosePath()
	s.Fill()
	return nil
}

func drawBadge(s *zonerender.Surface, label string, x, cy float64) {
	s.DrawRoundedRectangle(x, cy-9, badgeWidth, 18, 4)
	s.Fill()
	s.SetColor(color.White)
	s.Push()
	s.SetFontFace(basicfont.Face7x13)
	s.DrawStringAnchored(label, x+badgeWidth/2, cy, 0.5, 0.35)
	s.Pop()
	s.SetColor(color.Black)
}

func (t *Theme) drawNoLegs(s *zonerender.Surface, z zonerender.Zone, _ *zonerender.DisplayData) error {
	face, err := t.face(t.Regular, sizeMedium)
	if err != nil {
		return err
	}
	defer face.Close()
	s.SetLineWidth(2)
	s.SetDash(8, 6)
	s.DrawRectangle(1, 1, float64(z.W)-2, float64(z.H)-2)
	s.Stroke()
	s.SetDash()

	s.SetFontFace(face)
	s.DrawStringAnchored("No journey configured", float64(z.W)/2, float64(z.H)/2, 0.5, 0.5)
	return nil
}

func (t *Theme) drawLocation(s *zonerender.Surface, z zonerender.Zone, d *zonerender.DisplayData) error {
	s.SetLineWidth(1)
	s.DrawLine(0, 0.5, float64(z.W), 0.5)
	s.Stroke()

	face, err := t.face(t.Regular, sizeSmall)
	if err != nil {
		return err
	}
	defer face.Close()
	s.SetFontFace(face)
	s.DrawStringAnchored(fit(s.Context, d.Location, float64(z.W-24)), 12, float64(z.H)/2+1, 0, 0.4)
	return nil
}

// fit shortens s with a trailing "..." until it is at most maxW wide in the
// current font.
func fit(dc *gg.Context, s string, maxW float64) string {
	if w, _ := dc.MeasureString(s); w <= maxW {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		c := strings.TrimRight(string(r), " ") + "..."
		if w, _ := dc.MeasureString(c); w <= maxW {
			return c
		}
	}
	return ""
}

func nonEmpty(ss []string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
