package zonerender

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Request selects the zones of one render pass.
type Request struct {
	// Tier selects the zones of one tier. Ignored when Full is set.
	Tier Tier
	// Full renders every active zone regardless of cached fingerprints, to
	// clear the ghosting e-ink panels accumulate from partial refreshes.
	Full bool
	// Force marks every zone of Tier dirty while still updating the cache.
	Force bool
}

// FullRefresh returns a request for every active zone.
func FullRefresh() Request {
	return Request{Full: true}
}

// TierRequest returns a request for the zones of tier t.
func TierRequest(t Tier) Request {
	return Request{Tier: t}
}

// ParseRequest parses "1", "2", "3", "tier2" or "full".
func ParseRequest(s string) (Request, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "full" {
		return FullRefresh(), nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "tier"))
	if err != nil || !Tier(n).Valid() {
		return Request{}, fmt.Errorf("zonerender: invalid request %q", s)
	}
	return TierRequest(Tier(n)), nil
}

// Validate checks that a non-full request names a tier.
func (r Request) Validate() error {
	if !r.Full && !r.Tier.Valid() {
		return fmt.Errorf("zonerender: invalid tier %d", r.Tier)
	}
	return nil
}

func (r Request) String() string {
	switch {
	case r.Full:
		return "full"
	case r.Force:
		return r.Tier.String() + "+force"
	}
	return r.Tier.String()
}

// Scheduler resolves the candidate zones of a request.
type Scheduler struct {
	reg *Registry
}

// NewScheduler returns a Scheduler over the zones of reg.
func NewScheduler(reg *Registry) *Scheduler {
	return &Scheduler{reg: reg}
}

// ZonesForRequest returns every active zone for a full request, or the
// active zones assigned to the requested tier.
func (s *Scheduler) ZonesForRequest(req Request, totalLegs int) []Zone {
	active := s.reg.ActiveZones(totalLegs)
	if req.Full {
		return active
	}
	var zones []Zone
	for _, z := range active {
		if z.Tier == req.Tier {
			zones = append(zones, z)
		}
	}
	return zones
}

// ZoneIDs is ZonesForRequest returning only ids.
func (s *Scheduler) ZoneIDs(req Request, totalLegs int) []string {
	zones := s.ZonesForRequest(req, totalLegs)
	ids := make([]string, len(zones))
	for i, z := range zones {
		ids[i] = z.ID
	}
	return ids
}

// Schedule tracks when each tier was last polled and decides which requests
// are due. It is meant for a single polling loop and is not safe for
// concurrent use.
type Schedule struct {
	// Polling interval per tier. Missing tiers use Tier.Interval.
	Intervals map[Tier]time.Duration
	// FullEvery forces a full refresh after this long (0: never by time).
	FullEvery time.Duration
	// MaxPartials forces a full refresh after this many tier passes (0: no limit).
	MaxPartials int

	last     map[Tier]time.Time
	lastFull time.Time
	partials int
}

// NewSchedule returns a schedule with the default tier intervals and a full
// refresh every two hours or every 60 partial passes.
func NewSchedule() *Schedule {
	return &Schedule{
		Intervals:   map[Tier]time.Duration{},
		FullEvery:   2 * time.Hour,
		MaxPartials: 60,
	}
}

func (s *Schedule) interval(t Tier) time.Duration {
	if d, ok := s.Intervals[t]; ok && d > 0 {
		return d
	}
	return t.Interval()
}

// Due returns the requests to run at now. A due full refresh supersedes the
// tier requests.
func (s *Schedule) Due(now time.Time) []Request {
	if s.lastFull.IsZero() ||
		(s.FullEvery > 0 && now.Sub(s.lastFull) >= s.FullEvery) ||
		(s.MaxPartials > 0 && s.partials >= s.MaxPartials) {
		return []Request{FullRefresh()}
	}
	var due []Request
	for _, t := range []Tier{Tier1, Tier2, Tier3} {
		last := s.last[t]
		if last.IsZero() || now.Sub(last) >= s.interval(t) {
			due = append(due, TierRequest(t))
		}
	}
	return due
}

// Mark records that req ran at now.
func (s *Schedule) Mark(req Request, now time.Time) {
	if s.last == nil {
		s.last = make(map[Tier]time.Time)
	}
	if req.Full {
		s.lastFull = now
		s.partials = 0
		for _, t := range []Tier{Tier1, Tier2, Tier3} {
			s.last[t] = now
		}
		return
	}
	s.last[req.Tier] = now
	s.partials++
}

// Next returns the earliest time a request becomes due.
func (s *Schedule) Next(now time.Time) time.Time {
	if len(s.Due(now)) > 0 {
		return now
	}
	next := time.Time{}
	consider := func(t time.Time) {
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	if s.FullEvery > 0 {
		consider(s.lastFull.Add(s.FullEvery))
	}
	for _, t := range []Tier{Tier1, Tier2, Tier3} {
		consider(s.last[t].Add(s.interval(t)))
	}
	return next
}
