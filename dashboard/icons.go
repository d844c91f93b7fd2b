package dashboard

import (
	"strings"

	"github.com/fogleman/gg"
)

// drawIcon draws the symbol of a leg type centered on (cx, cy) within a
// size×size box.
func drawIcon(dc *gg.Context, legType string, cx, cy, size float64) {
	r := size / 2
	dc.Push()
	defer dc.Pop()
	dc.SetLineWidth(2)

	switch strings.ToLower(legType) {
	case "walk":
		// Stick figure
		dc.DrawCircle(cx, cy-r*0.7, r*0.2)
		dc.Fill()
		dc.DrawLine(cx, cy-r*0.45, cx, cy+r*0.2)
		dc.DrawLine(cx, cy+r*0.2, cx-r*0.4, cy+r)
		dc.DrawLine(cx, cy+r*0.2, cx+r*0.4, cy+r)
		dc.DrawLine(cx-r*0.5, cy-r*0.1, cx+r*0.5, cy-r*0.2)
		dc.Stroke()
	case "train", "tram":
		dc.DrawRoundedRectangle(cx-r*0.7, cy-r, r*1.4, r*1.6, r*0.25)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawRectangle(cx-r*0.5, cy-r*0.75, r, r*0.5)
		dc.Fill()
		dc.DrawCircle(cx-r*0.35, cy+r*0.3, r*0.12)
		dc.DrawCircle(cx+r*0.35, cy+r*0.3, r*0.12)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawLine(cx-r*0.5, cy+r*0.6, cx-r*0.8, cy+r)
		dc.DrawLine(cx+r*0.5, cy+r*0.6, cx+r*0.8, cy+r)
		dc.Stroke()
		if strings.EqualFold(legType, "tram") {
			dc.DrawLine(cx, cy-r, cx, cy-r*1.2)
			dc.Stroke()
		}
	case "bus":
		dc.DrawRoundedRectangle(cx-r*0.9, cy-r*0.8, r*1.8, r*1.4, r*0.2)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawRectangle(cx-r*0.7, cy-r*0.6, r*1.4, r*0.5)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawCircle(cx-r*0.5, cy+r*0.7, r*0.2)
		dc.DrawCircle(cx+r*0.5, cy+r*0.7, r*0.2)
		dc.Fill()
	case "coffee":
		// Cup with handle and steam
		dc.MoveTo(cx-r*0.6, cy-r*0.2)
		dc.LineTo(cx+r*0.4, cy-r*0.2)
		dc.LineTo(cx+r*0.3, cy+r*0.8)
		dc.LineTo(cx-r*0.5, cy+r*0.8)
		dc.ClosePath()
		dc.Fill()
		dc.DrawArc(cx+r*0.45, cy+r*0.25, r*0.25, gg.Radians(-90), gg.Radians(90))
		dc.Stroke()
		dc.DrawLine(cx-r*0.3, cy-r*0.5, cx-r*0.2, cy-r*0.9)
		dc.DrawLine(cx+r*0.1, cy-r*0.5, cx+r*0.2, cy-r*0.9)
		dc.Stroke()
	case "ferry":
		dc.MoveTo(cx-r, cy+r*0.2)
		dc.LineTo(cx+r, cy+r*0.2)
		dc.LineTo(cx+r*0.6, cy+r*0.7)
		dc.LineTo(cx-r*0.6, cy+r*0.7)
		dc.ClosePath()
		dc.Fill()
		dc.DrawRectangle(cx-r*0.4, cy-r*0.4, r*0.8, r*0.6)
		dc.Fill()
	default:
		dc.DrawCircle(cx, cy, r*0.5)
		dc.Fill()
	}
}

// drawUmbrella draws an umbrella centered on (cx, cy).
func drawUmbrella(dc *gg.Context, cx, cy, r float64) {
	dc.Push()
	defer dc.Pop()
	dc.DrawArc(cx, cy, r, gg.Radians(180), gg.Radians(360))
	dc.ClosePath()
	dc.Fill()
	dc.SetLineWidth(2)
	dc.DrawLine(cx, cy, cx, cy+r)
	dc.Stroke()
	dc.DrawArc(cx-r*0.2, cy+r, r*0.2, 0, gg.Radians(180))
	dc.Stroke()
}
