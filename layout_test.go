package zonerender

import (
	"errors"
	"fmt"
	"testing"
)

func TestDefaultLayoutValid(t *testing.T) {
	for name, l := range map[string]*Layout{"default": DefaultLayout(), "stepper": StepperLayout()} {
		if err := l.Validate(); err != nil {
			t.Errorf("%s layout: %v", name, err)
		}
	}
}

func TestLegLayoutInvariant(t *testing.T) {
	for name, l := range map[string]*Layout{"default": DefaultLayout(), "stepper": StepperLayout()} {
		reg := MustRegistry(l)
		region := reg.LegsRect()

		for total := 0; total <= reg.MaxLegs()+3; total++ {
			t.Run(fmt.Sprintf("%s/%d legs", name, total), func(t *testing.T) {
				zones := reg.LegZones(total)
				span := 0
				for i, z := range zones {
					if !z.Rect().In(region) {
						t.Errorf("%v outside legs region %v", z, region)
					}
					if z.H <= 0 || z.W <= 0 {
						t.Errorf("%v is empty", z)
					}
					span += z.H
					for _, o := range zones[:i] {
						if z.Rect().Overlaps(o.Rect()) {
							t.Errorf("%v overlaps %v", z, o)
						}
					}
				}
				if span > l.LegsHeight {
					t.Errorf("legs use %d pixels, region has %d", span, l.LegsHeight)
				}
			})
		}
	}
}

func TestLegZoneGeometry(t *testing.T) {
	reg := MustRegistry(nil)

	tests := []struct {
		name         string
		index, total int
		wantY, wantH int
	}{
		{"single leg capped", 1, 1, 128, 64},
		{"three legs capped", 3, 3, 128 + 2*68, 64},
		{"five legs", 1, 5, 128, 60},
		{"five legs last", 5, 5, 128 + 4*64, 60},
		{"six legs", 6, 6, 128 + 5*53, 49},
		{"nine legs truncated", 6, 9, 128 + 5*53, 49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, ok := reg.LegZone(tt.index, tt.total)
			if !ok {
				t.Fatalf("LegZone(%d, %d) not found", tt.index, tt.total)
			}
			if z.Y != tt.wantY || z.H != tt.wantH {
				t.Errorf("LegZone(%d, %d) = y %d h %d, want y %d h %d", tt.index, tt.total, z.Y, z.H, tt.wantY, tt.wantH)
			}
			if z.X != 8 || z.W != 784 {
				t.Errorf("LegZone(%d, %d) = x %d w %d, want x 8 w 784", tt.index, tt.total, z.X, z.W)
			}
			if z.ID != LegID(tt.index) || z.Kind != KindLeg || z.Leg != tt.index || z.Tier != Tier2 {
				t.Errorf("LegZone(%d, %d) = %+v", tt.index, tt.total, z)
			}
		})
	}
}

func TestStepperLegGeometry(t *testing.T) {
	reg := MustRegistry(StepperLayout())

	// (316 - 4*14) / 5 = 52
	z, ok := reg.LegZone(2, 5)
	if !ok {
		t.Fatal("LegZone(2, 5) not found")
	}
	if z.H != 52 || z.Y != 128+52+14 {
		t.Errorf("LegZone(2, 5) = y %d h %d, want y %d h 52", z.Y, z.H, 128+52+14)
	}
}

func TestConnectorZones(t *testing.T) {
	reg := MustRegistry(StepperLayout())

	zones := reg.LegZones(3)
	var ids []string
	for _, z := range zones {
		ids = append(ids, z.ID)
	}
	want := []string{"leg1", "arrow1", "leg2", "arrow2", "leg3"}
	if !sameIDs(ids, want) {
		t.Fatalf("LegZones(3) = %v, want %v", ids, want)
	}

	// Legs are capped at 64, so the connector sits 2 px below leg 1.
	arrow := zones[1]
	if arrow.Kind != KindConnector || arrow.Leg != 1 || arrow.Y != 128+64+2 || arrow.H != 10 || arrow.Tier != Tier2 {
		t.Errorf("arrow1 = %v (leg %d), want y %d h 10 below leg 1", arrow, arrow.Leg, 128+64+2)
	}
	if next := zones[2]; arrow.Rect().Max.Y > next.Y {
		t.Errorf("arrow1 %v overlaps leg2 %v", arrow, next)
	}

	tests := []struct {
		id     string
		total  int
		wantOK bool
	}{
		{"arrow2", 3, true},
		{"arrow3", 3, false},
		{"arrow1", 1, false},
		{"arrow5", 9, false}, // truncated to 5 legs
		{"arrow4", 9, true},
	}
	for _, tt := range tests {
		if _, ok := reg.Zone(tt.id, tt.total); ok != tt.wantOK {
			t.Errorf("Zone(%q, %d) ok = %v, want %v", tt.id, tt.total, ok, tt.wantOK)
		}
	}
}

func TestNoConnectorsWithoutArrowSpace(t *testing.T) {
	reg := MustRegistry(nil)
	for _, z := range reg.LegZones(4) {
		if z.Kind != KindLeg {
			t.Errorf("default layout has %s zone %s", z.Kind, z.ID)
		}
	}
	if _, ok := reg.ConnectorZone(1, 4); ok {
		t.Error("ConnectorZone(1, 4) found without arrow space")
	}
}

func TestLegZoneOutOfRange(t *testing.T) {
	reg := MustRegistry(nil)
	tests := []struct{ index, total int }{
		{0, 3},
		{4, 3},
		{7, 9}, // dropped by truncation
		{1, 0},
		{-1, 2},
	}
	for _, tt := range tests {
		if z, ok := reg.LegZone(tt.index, tt.total); ok {
			t.Errorf("LegZone(%d, %d) = %v, want none", tt.index, tt.total, z)
		}
	}
}

func TestNoLegsPlaceholder(t *testing.T) {
	reg := MustRegistry(nil)

	zones := reg.LegZones(0)
	if len(zones) != 1 || zones[0].ID != ZoneNoLegs {
		t.Fatalf("LegZones(0) = %v, want only %s", zones, ZoneNoLegs)
	}
	if zones[0].Rect() != reg.LegsRect() {
		t.Errorf("placeholder %v, want legs region %v", zones[0].Rect(), reg.LegsRect())
	}
	for _, z := range reg.ActiveZones(0) {
		if _, ok := ParseLegID(z.ID); ok {
			t.Errorf("ActiveZones(0) contains leg zone %s", z.ID)
		}
	}
}

func TestTruncatedLegs(t *testing.T) {
	reg := MustRegistry(nil)

	zones := reg.LegZones(9)
	if len(zones) != 6 {
		t.Fatalf("LegZones(9) returned %d zones, want 6", len(zones))
	}
	for i, z := range zones {
		if z.ID != LegID(i+1) {
			t.Errorf("zone %d = %s, want %s", i, z.ID, LegID(i+1))
		}
	}
}

func TestActiveZonesDisjoint(t *testing.T) {
	reg := MustRegistry(nil)
	canvas := reg.Canvas()
	for total := 0; total <= 9; total++ {
		zones := reg.ActiveZones(total)
		for i, z := range zones {
			if !z.Rect().In(canvas) {
				t.Errorf("%d legs: %v outside canvas", total, z)
			}
			for _, o := range zones[:i] {
				if z.Rect().Overlaps(o.Rect()) {
					t.Errorf("%d legs: %v overlaps %v", total, z, o)
				}
			}
		}
	}
}

func TestRegistryZoneLookup(t *testing.T) {
	reg := MustRegistry(nil)

	tests := []struct {
		id     string
		total  int
		wantOK bool
	}{
		{ZoneTime, 3, true},
		{ZoneLocation, 0, true},
		{"leg3", 3, true},
		{"leg4", 3, false},
		{ZoneNoLegs, 0, true},
		{ZoneNoLegs, 2, false},
		{"unknown", 2, false},
	}
	for _, tt := range tests {
		z, ok := reg.Zone(tt.id, tt.total)
		if ok != tt.wantOK {
			t.Errorf("Zone(%q, %d) ok = %v, want %v", tt.id, tt.total, ok, tt.wantOK)
		}
		if ok && z.ID != tt.id {
			t.Errorf("Zone(%q, %d) = %s", tt.id, tt.total, z.ID)
		}
	}
}

func TestLayoutBuilderErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *LayoutBuilder
	}{
		{"zero canvas", NewLayoutBuilder(nil).WithCanvas(0, 0)},
		{"zone outside canvas", NewLayoutBuilder(nil).WithZone(ZoneSpec{ID: "x", Kind: KindDate, X: 790, Y: 0, W: 20, H: 10, Tier: Tier2})},
		{"overlapping zones", NewLayoutBuilder(nil).WithZone(ZoneSpec{ID: "x", Kind: KindDate, X: 10, Y: 10, W: 20, H: 10, Tier: Tier2})},
		{"zone over legs", NewLayoutBuilder(nil).WithoutZone(ZoneStatus).WithZone(ZoneSpec{ID: "x", Kind: KindDate, X: 0, Y: 100, W: 20, H: 40, Tier: Tier2})},
		{"reserved id", NewLayoutBuilder(nil).WithoutZone(ZoneStatus).WithZone(ZoneSpec{ID: "leg1", Kind: KindStatus, X: 0, Y: 96, W: 800, H: 28, Tier: Tier2})},
		{"reserved connector id", NewLayoutBuilder(nil).WithoutZone(ZoneStatus).WithZone(ZoneSpec{ID: "arrow1", Kind: KindStatus, X: 0, Y: 96, W: 800, H: 28, Tier: Tier2})},
		{"invalid tier", NewLayoutBuilder(nil).WithZone(ZoneSpec{ID: ZoneStatus, Kind: KindStatus, X: 0, Y: 96, W: 800, H: 28, Tier: 4})},
		{"no legs", NewLayoutBuilder(nil).WithLegLimits(0, 64)},
		{"legs do not fit", NewLayoutBuilder(nil).WithLegLimits(6, 64).WithLegSpacing(60, 10)},
		{"legs outside canvas", NewLayoutBuilder(nil).WithLegsRegion(128, 400, 8)},
		{"negative gap", NewLayoutBuilder(nil).WithLegSpacing(-1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("Build() error = %v, want ErrInvalidLayout", err)
			}
		})
	}
}

func TestLayoutBuilderDoesNotAliasBase(t *testing.T) {
	base := DefaultLayout()
	b := NewLayoutBuilder(base).WithoutZone(ZoneDate).WithLegLimits(7, 40)

	if len(base.Static) != 5 || base.MaxLegs != 6 {
		t.Error("builder modified its base layout")
	}
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if reg.MaxLegs() != 7 || len(reg.StaticZones()) != 4 {
		t.Errorf("registry has %d legs and %d static zones, want 7 and 4", reg.MaxLegs(), len(reg.StaticZones()))
	}
	if _, ok := reg.Zone(ZoneDate, 1); ok {
		t.Error("removed zone is still resolvable")
	}
}

func TestParseLegID(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{"leg1", 1, true},
		{"leg12", 12, true},
		{"leg0", 0, false},
		{"legs.empty", 0, false},
		{"leg", 0, false},
		{"header.time", 0, false},
		{"arrow1", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLegID(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLegID(%q) = (%d, %v), want (%d, %v)", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseConnectorID(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{"arrow1", 1, true},
		{ConnectorID(4), 4, true},
		{"arrow0", 0, false},
		{"arrow", 0, false},
		{"leg1", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseConnectorID(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseConnectorID(%q) = (%d, %v), want (%d, %v)", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}
