package zonerender

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// ChangeCache remembers the last fingerprint seen per zone id. It is safe
// for concurrent use; engines that serve different devices should still own
// separate caches so one device's polls do not hide changes from another.
type ChangeCache struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewChangeCache returns an empty cache.
func NewChangeCache() *ChangeCache {
	return &ChangeCache{entries: make(map[string]string)}
}

// IsDirty reports whether fingerprint differs from the one cached for
// zoneID. A differing or missing entry is replaced and reported dirty; an
// identical one leaves the cache untouched.
func (c *ChangeCache) IsDirty(zoneID, fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[zoneID]; ok && prev == fingerprint {
		return false
	}
	c.entries[zoneID] = fingerprint
	return true
}

// Seen records fingerprint for zoneID and reports whether an entry existed
// before the call.
func (c *ChangeCache) Seen(zoneID, fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[zoneID]
	c.entries[zoneID] = fingerprint
	return ok
}

// Lookup returns the cached fingerprint for zoneID.
func (c *ChangeCache) Lookup(zoneID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fp, ok := c.entries[zoneID]
	return fp, ok
}

// Forget drops the entry for zoneID so its next evaluation is dirty.
func (c *ChangeCache) Forget(zoneID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, zoneID)
}

// ForgetLegs drops every leg and connector entry and the legs placeholder.
// Their geometry depends on the leg count, so they must be redrawn when it
// changes.
func (c *ChangeCache) ForgetLegs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.entries {
		if isLegsRegionID(id) {
			delete(c.entries, id)
		}
	}
}

func isLegsRegionID(id string) bool {
	if _, ok := ParseLegID(id); ok {
		return true
	}
	if _, ok := ParseConnectorID(id); ok {
		return true
	}
	return id == ZoneNoLegs
}

// Reset clears every entry.
func (c *ChangeCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
}

// Len returns the number of cached zones.
func (c *ChangeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type timeFields struct {
	Time           string
	LeaveInMinutes int
}

type statusFields struct {
	Type         string
	ArriveBy     string
	TotalMinutes int
}

type legFields struct {
	Index int
	Leg   Leg
}

type connectorFields struct {
	Index int
	Next  LegState
}

// fingerprintInput returns the subset of d that zone z displays.
func fingerprintInput(z Zone, d *DisplayData) any {
	if d == nil {
		d = &DisplayData{}
	}
	switch z.Kind {
	case KindTime:
		return timeFields{Time: d.Time, LeaveInMinutes: d.Status.LeaveInMinutes}
	case KindDate:
		return d.Date
	case KindWeather:
		return d.Weather
	case KindStatus:
		return statusFields{Type: d.Status.Type, ArriveBy: d.Status.ArriveBy, TotalMinutes: d.Status.TotalMinutes}
	case KindLeg:
		leg, _ := d.Leg(z.Leg)
		return legFields{Index: z.Leg, Leg: leg}
	case KindConnector:
		next, _ := d.Leg(z.Leg + 1)
		return connectorFields{Index: z.Leg, Next: next.State}
	case KindNoLegs:
		return ZoneNoLegs
	case KindLocation:
		return d.Location
	}
	// Unknown kinds, e.g. zones added through a custom layout, depend on
	// everything.
	return d
}

// Fingerprint returns a stable digest of the part of d shown by zone z.
// Two snapshots that differ only in fields z does not display produce the
// same fingerprint.
func Fingerprint(z Zone, d *DisplayData) string {
	b, err := json.Marshal(fingerprintInput(z, d))
	if err != nil {
		// Only plain strings, ints and bools are marshalled.
		panic("zonerender: fingerprint: " + err.Error())
	}
	sum := sha256.Sum256(append([]byte(string(z.Kind)+"\x00"), b...))
	return hex.EncodeToString(sum[:])
}
