package zonerender

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/flavioheleno/zonerender/monobmp"
)

// Opts is the configuration of an Engine.
type Opts struct {
	// Layout of the canvas (default: DefaultLayout)
	Layout *Layout

	// Background of every zone surface (default: white)
	Background color.Color

	// Cache to use instead of a private one. Engines sharing a cache see
	// each other's fingerprints, so only share it between engines that
	// drive the same display.
	Cache *ChangeCache

	// Session labels logs and metrics (optional)
	Session string

	Logger  *slog.Logger // default: slog.Default()
	Metrics *Metrics     // optional
}

// RenderedZone is the outcome of one zone in a render pass.
type RenderedZone struct {
	Zone

	// Changed is set when the zone was redrawn and Bitmap holds its pixels.
	Changed bool

	// Bitmap is the zone encoded with monobmp, nil when unchanged or failed.
	Bitmap []byte

	// Err is set when the zone could not be drawn. Other zones are unaffected.
	Err error
}

// Engine renders display data into zone bitmaps, skipping zones whose
// content has not changed since they were last drawn.
type Engine struct {
	reg       *Registry
	sched     *Scheduler
	comp      Compositor
	renderers Renderers
	cache     *ChangeCache
	session   string
	log       *slog.Logger
	metrics   *Metrics

	mu       sync.Mutex // serializes render passes
	lastLegs int        // shown leg count of the previous pass, -1 before the first
}

// NewEngine creates an Engine drawing zones with renderers.
//
// opts can be nil to use the default layout and a private cache.
func NewEngine(renderers Renderers, opts *Opts) (*Engine, error) {
	if opts == nil {
		opts = &Opts{}
	}
	reg, err := NewRegistry(opts.Layout)
	if err != nil {
		return nil, err
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewChangeCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Session != "" {
		logger = logger.With("session", opts.Session)
	}
	r := make(Renderers, len(renderers))
	for k, v := range renderers {
		r[k] = v
	}
	return &Engine{
		reg:       reg,
		sched:     NewScheduler(reg),
		comp:      Compositor{Background: opts.Background},
		renderers: r,
		cache:     cache,
		session:   opts.Session,
		log:       logger,
		metrics:   opts.Metrics,
		lastLegs:  -1,
	}, nil
}

// Registry returns the zone registry of the engine.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Cache returns the change cache of the engine.
func (e *Engine) Cache() *ChangeCache {
	return e.cache
}

// Reset forgets every fingerprint, so the next pass of each tier redraws
// all of its zones.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Reset()
	e.lastLegs = -1
	e.metrics.cache(e.sessionLabel(), 0)
	e.log.Debug("change cache reset")
}

func (e *Engine) sessionLabel() string {
	if e.session == "" {
		return "default"
	}
	return e.session
}

// Render runs one pass for req over d and returns one entry per candidate
// zone. Full requests redraw every active zone; tier requests redraw tier 1
// zones always, tier 2 zones when their fingerprint changed and tier 3
// zones only when they have not been seen since the last reset.
//
// The only error is an invalid request; zone failures are reported in
// RenderedZone.Err.
func (e *Engine) Render(req Request, d *DisplayData) ([]RenderedZone, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if d == nil {
		d = &DisplayData{}
	}
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	total := d.TotalLegs()
	shown := e.reg.ShownLegs(total)
	if total > shown {
		e.log.Debug("journey truncated", "legs", total, "shown", shown)
	}
	if e.lastLegs >= 0 && e.lastLegs != shown {
		e.cache.ForgetLegs()
		e.log.Debug("leg count changed", "from", e.lastLegs, "to", shown)
	}
	e.lastLegs = shown

	zones := e.sched.ZonesForRequest(req, total)
	out := make([]RenderedZone, 0, len(zones))
	drawn := 0
	for _, z := range zones {
		if !e.dirty(req, z, d) {
			out = append(out, RenderedZone{Zone: z})
			e.metrics.zone(z.Tier, resultUnchanged)
			continue
		}
		rz := e.draw(z, d)
		if rz.Err != nil {
			// Retry on the next pass instead of trusting a fingerprint that
			// was never drawn.
			e.cache.Forget(z.ID)
			e.log.Warn("zone render failed", "zone", z.ID, "tier", int(z.Tier), "error", rz.Err)
			e.metrics.zone(z.Tier, resultFailed)
		} else {
			drawn++
			e.metrics.zone(z.Tier, resultDrawn)
			e.metrics.bitmap(len(rz.Bitmap))
		}
		out = append(out, rz)
	}

	e.metrics.render(req, time.Since(start))
	e.metrics.cache(e.sessionLabel(), e.cache.Len())
	e.log.Debug("render pass", "request", req.String(), "zones", len(zones), "drawn", drawn)
	return out, nil
}

// dirty updates the cache for z and reports whether it must be redrawn.
func (e *Engine) dirty(req Request, z Zone, d *DisplayData) bool {
	fp := Fingerprint(z, d)
	if req.Full {
		e.cache.Seen(z.ID, fp)
		return true
	}
	switch z.Tier {
	case Tier1:
		e.cache.Seen(z.ID, fp)
		return true
	case Tier3:
		seen := e.cache.Seen(z.ID, fp)
		return !seen || req.Force
	}
	changed := e.cache.IsDirty(z.ID, fp)
	return changed || req.Force
}

func (e *Engine) draw(z Zone, d *DisplayData) RenderedZone {
	r, ok := e.renderers.Lookup(z.Kind)
	if !ok {
		return RenderedZone{Zone: z, Err: fmt.Errorf("%w %q (zone %s)", ErrNoRenderer, z.Kind, z.ID)}
	}
	s, err := e.comp.Draw(z, d, r)
	if err != nil {
		return RenderedZone{Zone: z, Err: err}
	}
	return RenderedZone{
		Zone:    z,
		Changed: true,
		Bitmap:  monobmp.EncodeSized(s.Image(), z.W, z.H),
	}
}

// RenderFrame draws every active zone into one canvas-sized image and
// encodes it. It is meant for previews and does not read or update the
// change cache. Zones that fail are left blank and their errors joined into
// the returned error; the image is returned either way.
func (e *Engine) RenderFrame(d *DisplayData) (image.Image, []byte, error) {
	if d == nil {
		d = &DisplayData{}
	}
	canvas := e.reg.Canvas()
	bg := e.comp.Background
	if bg == nil {
		bg = color.White
	}
	frame := imaging.New(canvas.Dx(), canvas.Dy(), bg)

	var errs []error
	for _, z := range e.reg.ActiveZones(d.TotalLegs()) {
		r, ok := e.renderers.Lookup(z.Kind)
		if !ok {
			errs = append(errs, fmt.Errorf("%w %q (zone %s)", ErrNoRenderer, z.Kind, z.ID))
			continue
		}
		s, err := e.comp.Draw(z, d, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		frame = imaging.Paste(frame, s.Image(), image.Pt(z.X, z.Y))
	}
	return frame, monobmp.EncodeSized(frame, canvas.Dx(), canvas.Dy()), errors.Join(errs...)
}
