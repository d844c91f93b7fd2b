// Package zonerender renders a commute dashboard onto a monochrome e-ink
// panel as independently refreshable zones.
//
// E-ink panels refresh slowly and flash while doing so, so the display is
// split into zones that are redrawn only when their content changed. Each
// zone belongs to a refresh tier:
//
//	Tier1  clock and leave-in countdown      redrawn on every tier 1 poll
//	Tier2  weather, status, journey legs     redrawn when their data changed
//	Tier3  location label                    redrawn after a reset only
//
// A full refresh redraws every zone regardless of tier, to clear the ghosting
// partial refreshes leave behind.
//
// # Layout
//
// All geometry comes from a single Layout descriptor. Static zones (header,
// status, footer) are fixed; journey legs share a reserved vertical span and
// their height depends on how many there are:
//
//	height = min(MaxLegHeight, (LegsHeight - (n-1)*(LegGap+ArrowSpace)) / n)
//	y(i)   = LegsTop + (i-1)*(height+LegGap+ArrowSpace)
//
// Journeys longer than MaxLegs are truncated. A journey without legs shows a
// single placeholder zone instead.
//
//	reg, err := zonerender.NewLayoutBuilder(nil).
//		WithLegSpacing(4, 10).
//		WithLegLimits(5, 64).
//		Build()
//
// # Rendering
//
// An Engine owns a ChangeCache of per-zone fingerprints. Zone content is drawn
// by a ZoneRenderer per zone Kind onto a private Surface (a gg drawing
// context the size of the zone) and encoded with package monobmp:
//
//	eng, err := zonerender.NewEngine(dashboard.New(nil), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	zones, err := eng.Render(zonerender.TierRequest(zonerender.Tier2), data)
//	for _, z := range zones {
//		if z.Changed {
//			// send z.Bitmap to the panel at z.X, z.Y
//		}
//	}
//
// RenderFrame renders the whole canvas into one bitmap for previews.
//
// # Devices
//
// Engines are safe for concurrent use but serialize their render passes.
// Hosts serving several displays should use Sessions, which gives each device
// its own engine and change cache.
//
// # Panels
//
// Framebuffer composites rendered zones into a persistent frame and forwards
// the changed rectangle to any periph.io display.Drawer:
//
//	fb, err := zonerender.NewFramebuffer(&zonerender.FramebufferOpts{Target: epd})
//	rect, err := fb.Apply(zones)
package zonerender
