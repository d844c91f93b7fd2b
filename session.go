package zonerender

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the engine of one paired display. Each session owns its change
// cache, so devices polling at different cadences never hide changes from
// each other.
type Session struct {
	*Engine

	ID      string // random id, stable for the lifetime of the session
	Device  string
	Created time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

// LastUsed returns the time of the last render through Sessions.Render.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// Sessions partitions rendering state per device. It is safe for concurrent
// use; renders for different devices run in parallel.
type Sessions struct {
	renderers Renderers
	opts      Opts
	now       func() time.Time

	mu       sync.Mutex
	byDevice map[string]*Session
}

// NewSessions returns an empty session pool. opts is the template for every
// session engine; its Cache and Session fields are ignored.
func NewSessions(renderers Renderers, opts *Opts) (*Sessions, error) {
	var o Opts
	if opts != nil {
		o = *opts
	}
	if _, err := NewRegistry(o.Layout); err != nil {
		return nil, err
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Cache = nil
	return &Sessions{
		renderers: renderers,
		opts:      o,
		now:       time.Now,
		byDevice:  make(map[string]*Session),
	}, nil
}

// Get returns the session of device, creating it on first use.
func (p *Sessions) Get(device string) (*Session, error) {
	if device == "" {
		return nil, errors.New("zonerender: empty device id")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.byDevice[device]; ok {
		return s, nil
	}

	id := uuid.NewString()
	o := p.opts
	o.Session = device
	o.Logger = p.opts.Logger.With("session_id", id)
	e, err := NewEngine(p.renderers, &o)
	if err != nil {
		return nil, err
	}
	now := p.now()
	s := &Session{Engine: e, ID: id, Device: device, Created: now, lastUsed: now}
	p.byDevice[device] = s
	o.Logger.Info("session created", "device", device)
	return s, nil
}

// Render runs a pass on the session of device.
func (p *Sessions) Render(device string, req Request, d *DisplayData) ([]RenderedZone, error) {
	s, err := p.Get(device)
	if err != nil {
		return nil, err
	}
	s.touch(p.now())
	return s.Render(req, d)
}

// Drop removes the session of device. Its next render starts from an empty
// cache, as after a reset.
func (p *Sessions) Drop(device string) bool {
	p.mu.Lock()
	s, ok := p.byDevice[device]
	delete(p.byDevice, device)
	p.mu.Unlock()
	if ok {
		s.metrics.forget(s.sessionLabel())
		s.log.Info("session dropped", "device", device)
	}
	return ok
}

// Prune drops sessions unused for longer than idle and returns how many.
func (p *Sessions) Prune(idle time.Duration) int {
	cutoff := p.now().Add(-idle)
	var stale []string
	p.mu.Lock()
	for device, s := range p.byDevice {
		if s.LastUsed().Before(cutoff) {
			stale = append(stale, device)
		}
	}
	p.mu.Unlock()
	n := 0
	for _, device := range stale {
		if p.Drop(device) {
			n++
		}
	}
	return n
}

// Devices returns the ids of all devices with a session, sorted.
func (p *Sessions) Devices() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	devices := make([]string, 0, len(p.byDevice))
	for d := range p.byDevice {
		devices = append(devices, d)
	}
	sort.Strings(devices)
	return devices
}
