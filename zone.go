package zonerender

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"
)

// Tier is the refresh class of a zone.
type Tier int

const (
	// Tier1 zones are time critical (clock, leave-in countdown) and are
	// redrawn on every tier 1 poll.
	Tier1 Tier = 1
	// Tier2 zones carry content that changes at human pace and are redrawn
	// only when their fingerprint changes.
	Tier2 Tier = 2
	// Tier3 zones are near static and are redrawn only on first render,
	// after a cache reset or on a full refresh.
	Tier3 Tier = 3
)

// Default polling intervals per tier.
const (
	Tier1Interval = time.Minute
	Tier2Interval = 5 * time.Minute
	Tier3Interval = time.Hour
)

// Valid reports whether t is one of the three tiers.
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier3
}

// Interval returns the default polling interval for the tier.
func (t Tier) Interval() time.Duration {
	switch t {
	case Tier1:
		return Tier1Interval
	case Tier2:
		return Tier2Interval
	case Tier3:
		return Tier3Interval
	}
	return 0
}

func (t Tier) String() string {
	return "tier" + strconv.Itoa(int(t))
}

// Kind identifies what a zone shows and selects its renderer.
type Kind string

const (
	KindTime     Kind = "time"
	KindDate     Kind = "date"
	KindWeather  Kind = "weather"
	KindStatus   Kind = "status"
	KindLeg       Kind = "leg"
	KindConnector Kind = "connector"
	KindNoLegs    Kind = "nolegs"
	KindLocation  Kind = "location"
)

// inLegsRegion reports whether zones of kind k are laid out in the legs
// region, whose geometry depends on the leg count.
func (k Kind) inLegsRegion() bool {
	return k == KindLeg || k == KindConnector || k == KindNoLegs
}

// Zone ids of the static zones and the leg placeholder.
const (
	ZoneTime     = "header.time"
	ZoneDate     = "header.date"
	ZoneWeather  = "header.weather"
	ZoneStatus   = "status"
	ZoneNoLegs   = "legs.empty"
	ZoneLocation = "footer"
)

const (
	legPrefix       = "leg"
	connectorPrefix = "arrow"
)

// LegID returns the zone id of the 1-based leg index.
func LegID(index int) string {
	return legPrefix + strconv.Itoa(index)
}

// ParseLegID returns the leg index of a leg zone id.
func ParseLegID(id string) (int, bool) {
	return parseIndexedID(id, legPrefix)
}

// ConnectorID returns the zone id of the connector below the 1-based leg
// index.
func ConnectorID(index int) string {
	return connectorPrefix + strconv.Itoa(index)
}

// ParseConnectorID returns the leg index of a connector zone id.
func ParseConnectorID(id string) (int, bool) {
	return parseIndexedID(id, connectorPrefix)
}

func parseIndexedID(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Zone is an axis-aligned region of the canvas that is rendered and
// refreshed independently.
type Zone struct {
	ID   string
	Kind Kind
	Leg  int // 1-based leg index (the leg above for connectors), 0 otherwise
	X, Y int
	W, H int
	Tier Tier
}

// Rect returns the zone rectangle in canvas coordinates.
func (z Zone) Rect() image.Rectangle {
	return image.Rect(z.X, z.Y, z.X+z.W, z.Y+z.H)
}

func (z Zone) String() string {
	return fmt.Sprintf("%s{%d,%d %dx%d %v}", z.ID, z.X, z.Y, z.W, z.H, z.Tier)
}
