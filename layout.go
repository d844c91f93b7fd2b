package zonerender

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidLayout is wrapped by every layout validation error.
var ErrInvalidLayout = errors.New("zonerender: invalid layout")

// ZoneSpec describes a static zone of a Layout.
type ZoneSpec struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	Tier Tier   `json:"tier"`
}

func (s ZoneSpec) zone() Zone {
	return Zone{ID: s.ID, Kind: s.Kind, X: s.X, Y: s.Y, W: s.W, H: s.H, Tier: s.Tier}
}

// Layout is the single descriptor all zone geometry is derived from.
type Layout struct {
	// Canvas dimensions in pixels
	W int `json:"w"`
	H int `json:"h"`

	// Static zones (header, status, footer)
	Static []ZoneSpec `json:"static"`

	// Vertical span reserved for journey legs
	LegsTop    int `json:"legsTop"`
	LegsHeight int `json:"legsHeight"`
	LegMargin  int `json:"legMargin"` // horizontal inset on both sides

	LegGap       int  `json:"legGap"`       // spacing between legs
	ArrowSpace   int  `json:"arrowSpace"`   // connector height between legs (0: no connectors)
	MaxLegHeight int  `json:"maxLegHeight"` // cap for sparse journeys
	MaxLegs      int  `json:"maxLegs"`      // legs beyond this are dropped
	LegTier      Tier `json:"legTier"`
}

// DefaultLayout returns the 800x480 commute dashboard layout.
//
//	y   0 ┌─────────────┬───────────┬──────────┐
//	      │ header.time │ header.   │ header.  │
//	      │             │ date      │ weather  │
//	   96 ├─────────────┴───────────┴──────────┤
//	      │ status                             │
//	  128 ├────────────────────────────────────┤
//	      │ leg1 … legN  (or legs.empty)       │
//	  448 ├────────────────────────────────────┤
//	      │ footer                             │
//	  480 └────────────────────────────────────┘
func DefaultLayout() *Layout {
	return &Layout{
		W: 800,
		H: 480,
		Static: []ZoneSpec{
			{ID: ZoneTime, Kind: KindTime, X: 0, Y: 0, W: 320, H: 94, Tier: Tier1},
			{ID: ZoneDate, Kind: KindDate, X: 320, Y: 0, W: 260, H: 94, Tier: Tier2},
			{ID: ZoneWeather, Kind: KindWeather, X: 580, Y: 0, W: 220, H: 94, Tier: Tier2},
			{ID: ZoneStatus, Kind: KindStatus, X: 0, Y: 96, W: 800, H: 28, Tier: Tier2},
			{ID: ZoneLocation, Kind: KindLocation, X: 0, Y: 448, W: 800, H: 32, Tier: Tier3},
		},
		LegsTop:      128,
		LegsHeight:   316,
		LegMargin:    8,
		LegGap:       4,
		ArrowSpace:   0,
		MaxLegHeight: 64,
		MaxLegs:      6,
		LegTier:      Tier2,
	}
}

// StepperLayout is DefaultLayout with a connector zone between consecutive
// legs. The connectors cost height, so fewer legs fit.
func StepperLayout() *Layout {
	l := DefaultLayout()
	l.ArrowSpace = 10
	l.MaxLegs = 5
	return l
}

func (l *Layout) clone() *Layout {
	c := *l
	c.Static = append([]ZoneSpec(nil), l.Static...)
	return &c
}

func (l *Layout) canvas() image.Rectangle {
	return image.Rect(0, 0, l.W, l.H)
}

func (l *Layout) legsRect() image.Rectangle {
	return image.Rect(l.LegMargin, l.LegsTop, l.W-l.LegMargin, l.LegsTop+l.LegsHeight)
}

// Validate checks that all zones are inside the canvas and pairwise disjoint.
func (l *Layout) Validate() error {
	if l.W <= 0 || l.H <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidLayout, l.W, l.H)
	}
	if l.MaxLegs < 1 {
		return fmt.Errorf("%w: max legs must be at least 1", ErrInvalidLayout)
	}
	if l.MaxLegHeight < 1 || l.LegGap < 0 || l.ArrowSpace < 0 || l.LegMargin < 0 {
		return fmt.Errorf("%w: negative leg spacing or empty leg height", ErrInvalidLayout)
	}
	if !l.LegTier.Valid() {
		return fmt.Errorf("%w: leg tier %d", ErrInvalidLayout, l.LegTier)
	}
	canvas := l.canvas()
	legs := l.legsRect()
	if legs.Empty() || !legs.In(canvas) {
		return fmt.Errorf("%w: legs region %v outside canvas %v", ErrInvalidLayout, legs, canvas)
	}
	if h := legHeight(l, l.MaxLegs); h < 1 {
		return fmt.Errorf("%w: %d legs do not fit in %d pixels", ErrInvalidLayout, l.MaxLegs, l.LegsHeight)
	}

	seen := map[string]bool{ZoneNoLegs: true}
	for i, s := range l.Static {
		if s.ID == "" || seen[s.ID] {
			return fmt.Errorf("%w: duplicate or empty zone id %q", ErrInvalidLayout, s.ID)
		}
		if isLegsRegionID(s.ID) {
			return fmt.Errorf("%w: zone id %q is reserved for legs", ErrInvalidLayout, s.ID)
		}
		seen[s.ID] = true
		if !s.Tier.Valid() {
			return fmt.Errorf("%w: zone %q has tier %d", ErrInvalidLayout, s.ID, s.Tier)
		}
		r := s.zone().Rect()
		if r.Empty() || !r.In(canvas) {
			return fmt.Errorf("%w: zone %q %v outside canvas %v", ErrInvalidLayout, s.ID, r, canvas)
		}
		if r.Overlaps(legs) {
			return fmt.Errorf("%w: zone %q overlaps the legs region", ErrInvalidLayout, s.ID)
		}
		for _, o := range l.Static[:i] {
			if r.Overlaps(o.zone().Rect()) {
				return fmt.Errorf("%w: zones %q and %q overlap", ErrInvalidLayout, o.ID, s.ID)
			}
		}
	}
	return nil
}

// legHeight returns the height of each leg when n legs share the region.
func legHeight(l *Layout, n int) int {
	if n < 1 {
		return 0
	}
	h := (l.LegsHeight - (n-1)*(l.LegGap+l.ArrowSpace)) / n
	if h > l.MaxLegHeight {
		h = l.MaxLegHeight
	}
	return h
}

// LayoutBuilder assembles a Layout step by step.
type LayoutBuilder struct {
	l *Layout
}

// NewLayoutBuilder starts from a copy of base, or DefaultLayout when nil.
func NewLayoutBuilder(base *Layout) *LayoutBuilder {
	if base == nil {
		base = DefaultLayout()
	}
	return &LayoutBuilder{l: base.clone()}
}

// WithCanvas sets the canvas size.
func (b *LayoutBuilder) WithCanvas(w, h int) *LayoutBuilder {
	b.l.W, b.l.H = w, h
	return b
}

// WithZone adds a static zone, replacing any zone with the same id.
func (b *LayoutBuilder) WithZone(s ZoneSpec) *LayoutBuilder {
	for i := range b.l.Static {
		if b.l.Static[i].ID == s.ID {
			b.l.Static[i] = s
			return b
		}
	}
	b.l.Static = append(b.l.Static, s)
	return b
}

// WithoutZone removes a static zone.
func (b *LayoutBuilder) WithoutZone(id string) *LayoutBuilder {
	out := b.l.Static[:0]
	for _, s := range b.l.Static {
		if s.ID != id {
			out = append(out, s)
		}
	}
	b.l.Static = out
	return b
}

// WithLegsRegion sets the vertical span reserved for legs.
func (b *LayoutBuilder) WithLegsRegion(top, height, margin int) *LayoutBuilder {
	b.l.LegsTop, b.l.LegsHeight, b.l.LegMargin = top, height, margin
	return b
}

// WithLegSpacing sets the gap and connector height between legs.
func (b *LayoutBuilder) WithLegSpacing(gap, arrowSpace int) *LayoutBuilder {
	b.l.LegGap, b.l.ArrowSpace = gap, arrowSpace
	return b
}

// WithLegLimits sets the leg count and height caps.
func (b *LayoutBuilder) WithLegLimits(maxLegs, maxLegHeight int) *LayoutBuilder {
	b.l.MaxLegs, b.l.MaxLegHeight = maxLegs, maxLegHeight
	return b
}

// WithLegTier sets the tier of leg zones and the placeholder.
func (b *LayoutBuilder) WithLegTier(t Tier) *LayoutBuilder {
	b.l.LegTier = t
	return b
}

// Layout returns a copy of the layout built so far.
func (b *LayoutBuilder) Layout() *Layout {
	return b.l.clone()
}

// Build validates the layout and returns a Registry for it.
func (b *LayoutBuilder) Build() (*Registry, error) {
	return NewRegistry(b.l)
}

// Registry resolves zone geometry from a validated Layout.
type Registry struct {
	layout *Layout
	static []Zone
}

// NewRegistry validates l and returns a Registry. l can be nil to use
// DefaultLayout.
func NewRegistry(l *Layout) (*Registry, error) {
	if l == nil {
		l = DefaultLayout()
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{layout: l.clone()}
	for _, s := range r.layout.Static {
		r.static = append(r.static, s.zone())
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on an invalid layout.
func MustRegistry(l *Layout) *Registry {
	r, err := NewRegistry(l)
	if err != nil {
		panic(err)
	}
	return r
}

// Layout returns a copy of the layout.
func (r *Registry) Layout() *Layout {
	return r.layout.clone()
}

// Canvas returns the canvas rectangle.
func (r *Registry) Canvas() image.Rectangle {
	return r.layout.canvas()
}

// MaxLegs returns the number of legs that can be shown.
func (r *Registry) MaxLegs() int {
	return r.layout.MaxLegs
}

// LegsRect returns the region reserved for legs.
func (r *Registry) LegsRect() image.Rectangle {
	return r.layout.legsRect()
}

// StaticZones returns the fixed header, status and footer zones.
func (r *Registry) StaticZones() []Zone {
	return append([]Zone(nil), r.static...)
}

// ShownLegs clamps total to the range of legs that are drawn.
func (r *Registry) ShownLegs(total int) int {
	switch {
	case total < 0:
		return 0
	case total > r.layout.MaxLegs:
		return r.layout.MaxLegs
	}
	return total
}

// LegZone returns the geometry of the 1-based leg index when total legs are
// shown. Totals above MaxLegs are truncated; indexes past the truncated
// total do not exist.
func (r *Registry) LegZone(index, total int) (Zone, bool) {
	total = r.ShownLegs(total)
	if index < 1 || index > total {
		return Zone{}, false
	}
	l := r.layout
	h := legHeight(l, total)
	legs := l.legsRect()
	return Zone{
		ID:   LegID(index),
		Kind: KindLeg,
		Leg:  index,
		X:    legs.Min.X,
		Y:    l.LegsTop + (index-1)*(h+l.LegGap+l.ArrowSpace),
		W:    legs.Dx(),
		H:    h,
		Tier: l.LegTier,
	}, true
}

// ConnectorZone returns the connector between the 1-based leg index and the
// next leg when total legs are shown. It sits in the middle of the space
// between the two legs. Layouts without ArrowSpace have no connectors.
func (r *Registry) ConnectorZone(index, total int) (Zone, bool) {
	l := r.layout
	if l.ArrowSpace == 0 || index >= r.ShownLegs(total) {
		return Zone{}, false
	}
	leg, ok := r.LegZone(index, total)
	if !ok {
		return Zone{}, false
	}
	return Zone{
		ID:   ConnectorID(index),
		Kind: KindConnector,
		Leg:  index,
		X:    leg.X,
		Y:    leg.Y + leg.H + l.LegGap/2,
		W:    leg.W,
		H:    l.ArrowSpace,
		Tier: l.LegTier,
	}, true
}

// PlaceholderZone returns the zone drawn instead of legs when there are none.
func (r *Registry) PlaceholderZone() Zone {
	legs := r.layout.legsRect()
	return Zone{
		ID:   ZoneNoLegs,
		Kind: KindNoLegs,
		X:    legs.Min.X,
		Y:    legs.Min.Y,
		W:    legs.Dx(),
		H:    legs.Dy(),
		Tier: r.layout.LegTier,
	}
}

// LegZones returns the zones filling the legs region: one per shown leg,
// each followed by its connector if the layout has them, or the placeholder
// when total is 0.
func (r *Registry) LegZones(total int) []Zone {
	n := r.ShownLegs(total)
	if n == 0 {
		return []Zone{r.PlaceholderZone()}
	}
	zones := make([]Zone, 0, 2*n)
	for i := 1; i <= n; i++ {
		z, _ := r.LegZone(i, n)
		zones = append(zones, z)
		if c, ok := r.ConnectorZone(i, n); ok {
			zones = append(zones, c)
		}
	}
	return zones
}

// ActiveZones returns every zone present for a journey of total legs.
func (r *Registry) ActiveZones(total int) []Zone {
	return append(r.StaticZones(), r.LegZones(total)...)
}

// Zone resolves a zone id for a journey of total legs.
func (r *Registry) Zone(id string, total int) (Zone, bool) {
	for _, z := range r.static {
		if z.ID == id {
			return z, true
		}
	}
	if id == ZoneNoLegs {
		if r.ShownLegs(total) == 0 {
			return r.PlaceholderZone(), true
		}
		return Zone{}, false
	}
	if i, ok := ParseLegID(id); ok {
		return r.LegZone(i, total)
	}
	if i, ok := ParseConnectorID(id); ok {
		return r.ConnectorZone(i, total)
	}
	return Zone{}, false
}
