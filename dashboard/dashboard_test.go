package dashboard

import (
	"bytes"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/flavioheleno/zonerender"
	"github.com/flavioheleno/zonerender/image1bit"
	"github.com/flavioheleno/zonerender/monobmp"
)

func sample() *zonerender.DisplayData {
	return &zonerender.DisplayData{
		Time:     "07:42",
		Date:     "Monday 19 October",
		Location: "Home, Elsternwick",
		Weather:  zonerender.Weather{Temp: -3, Condition: "Light rain", Umbrella: true},
		Status:   zonerender.Status{Type: "leave", ArriveBy: "08:45", TotalMinutes: 48, LeaveInMinutes: 1},
		Legs: []zonerender.Leg{
			{Type: "walk", Title: "Walk to Elsternwick station", Minutes: 6, State: zonerender.LegNormal},
			{Type: "coffee", Title: "Coffee at Hills", Subtitle: "Order ahead", Minutes: 5, State: zonerender.LegSkip},
			{Type: "train", Title: "Sandringham line to Flinders Street", Subtitle: "Platform 1", Minutes: 22, State: zonerender.LegDelayed},
			{Type: "tram", Title: "Route 96", Minutes: 9, State: zonerender.LegCancelled},
			{Type: "bus", Title: "Route 216", Minutes: 4},
			{Type: "ferry", Title: "Docklands ferry", Minutes: 12},
			{Type: "unknown", Title: "Teleport", Minutes: 1},
		},
	}
}

func newEngine(t *testing.T, l *zonerender.Layout) *zonerender.Engine {
	t.Helper()
	e, err := zonerender.NewEngine(New(nil), &zonerender.Opts{
		Layout: l,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestRenderAllZones(t *testing.T) {
	tests := []struct {
		name   string
		layout *zonerender.Layout
		legs   int
	}{
		{"default no legs", nil, 0},
		{"default one leg", nil, 1},
		{"default truncated", nil, 7},
		{"stepper", zonerender.StepperLayout(), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sample()
			d.Legs = d.Legs[:tt.legs]

			zones, err := newEngine(t, tt.layout).Render(zonerender.FullRefresh(), d)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, z := range zones {
				if z.Err != nil {
					t.Errorf("%s: %v", z.ID, z.Err)
					continue
				}
				m, err := monobmp.Decode(bytes.NewReader(z.Bitmap))
				if err != nil {
					t.Fatalf("%s: Decode() error = %v", z.ID, err)
				}
				if black := countBlack(m); black == 0 {
					t.Errorf("%s: zone is blank", z.ID)
				}
			}
		})
	}
}

func TestStatusBarIsInverted(t *testing.T) {
	zones, err := newEngine(t, nil).Render(zonerender.TierRequest(zonerender.Tier2), sample())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, z := range zones {
		if z.ID != zonerender.ZoneStatus {
			continue
		}
		m, err := monobmp.Decode(bytes.NewReader(z.Bitmap))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if black, total := countBlack(m), z.W*z.H; black < total/2 {
			t.Errorf("status bar has %d of %d black pixels, want mostly black", black, total)
		}
		return
	}
	t.Fatal("status zone not rendered")
}

func TestRenderFrame(t *testing.T) {
	_, bmp, err := newEngine(t, nil).RenderFrame(sample())
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	if len(bmp) != monobmp.Size(800, 480) {
		t.Errorf("frame is %d bytes, want %d", len(bmp), monobmp.Size(800, 480))
	}
}

func TestDrawLegMissing(t *testing.T) {
	theme, err := DefaultTheme()
	if err != nil {
		t.Fatalf("DefaultTheme() error = %v", err)
	}
	z := zonerender.Zone{ID: "leg3", Kind: zonerender.KindLeg, Leg: 3, W: 784, H: 64, Tier: zonerender.Tier2}
	s := &zonerender.Surface{Context: gg.NewContext(z.W, z.H), Zone: z}

	d := sample()
	d.Legs = d.Legs[:2]
	if err := theme.drawLeg(s, z, d); err == nil {
		t.Error("drawLeg() for a missing leg succeeded")
	}
}

func TestDrawConnector(t *testing.T) {
	tests := []struct {
		name    string
		leg     int
		legs    int
		wantErr bool
	}{
		{"before a skipped leg", 1, 3, false},
		{"before a delayed leg", 2, 3, false},
		{"after the last leg", 2, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := zonerender.Zone{ID: zonerender.ConnectorID(tt.leg), Kind: zonerender.KindConnector, Leg: tt.leg, W: 784, H: 10, Tier: zonerender.Tier2}
			dc := gg.NewContext(z.W, z.H)
			dc.SetColor(color.White)
			dc.Clear()
			dc.SetColor(color.Black)
			s := &zonerender.Surface{Context: dc, Zone: z}

			d := sample()
			d.Legs = d.Legs[:tt.legs]
			err := drawConnector(s, z, d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("drawConnector() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			m, err := monobmp.Decode(bytes.NewReader(monobmp.Encode(s.Image())))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if countBlack(m) == 0 {
				t.Error("connector is blank")
			}
			if m.BitAt(z.W-1, z.H/2) != image1bit.On {
				t.Error("connector drawn outside the icon column")
			}
		})
	}
}

func TestRenderersShared(t *testing.T) {
	r := New(nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := zonerender.NewEngine(r, &zonerender.Opts{
				Layout: zonerender.StepperLayout(),
				Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
			if err != nil {
				errs <- err
				return
			}
			zones, err := e.Render(zonerender.FullRefresh(), sample())
			if err != nil {
				errs <- err
				return
			}
			for _, z := range zones {
				if z.Err != nil {
					errs <- z.Err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestLeaveText(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{-2, "LEAVE NOW"},
		{0, "LEAVE NOW"},
		{1, "LEAVE IN 1 MIN"},
		{12, "LEAVE IN 12 MIN"},
	}
	for _, tt := range tests {
		if got := leaveText(tt.minutes); got != tt.want {
			t.Errorf("leaveText(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFit(t *testing.T) {
	dc := gg.NewContext(10, 10)
	dc.SetFontFace(basicfont.Face7x13)

	tests := []struct {
		name string
		s    string
		maxW float64
		want string
	}{
		{"fits", "Route 96", 100, "Route 96"},
		{"exact", "abcd", 28, "abcd"},
		{"truncated", "Sandringham line", 70, "Sandrin..."},
		{"trailing space trimmed", "Route 96 to city", 77, "Route 96..."},
		{"too narrow", "abc", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fit(dc, tt.s, tt.maxW)
			if got != tt.want {
				t.Errorf("fit(%q, %v) = %q, want %q", tt.s, tt.maxW, got, tt.want)
			}
			if w, _ := dc.MeasureString(got); w > tt.maxW {
				t.Errorf("fit(%q, %v) is %v wide", tt.s, tt.maxW, w)
			}
		})
	}
}

func TestNonEmpty(t *testing.T) {
	got := strings.Join(nonEmpty([]string{"", "LEAVE", "", "48 MIN"}), "|")
	if got != "LEAVE|48 MIN" {
		t.Errorf("nonEmpty() = %q", got)
	}
}

func countBlack(m *image1bit.Bitmap) int {
	n := 0
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if m.BitAt(x, y) == image1bit.Off {
				n++
			}
		}
	}
	return n
}
