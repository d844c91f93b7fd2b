package zonerender

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Zone outcomes recorded by Metrics.
const (
	resultDrawn     = "drawn"
	resultUnchanged = "unchanged"
	resultFailed    = "failed"
)

// Metrics exports render counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	zones        *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	bitmapBytes  prometheus.Counter
	cacheEntries *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		zones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zonerender_zones_total",
			Help: "Zones evaluated by tier and result (drawn, unchanged, failed).",
		}, []string{"tier", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zonerender_render_duration_seconds",
			Help:    "Histogram of render pass durations by request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"request"}),
		bitmapBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zonerender_bitmap_bytes_total",
			Help: "Total bytes of encoded zone bitmaps.",
		}),
		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zonerender_cache_entries",
			Help: "Zones tracked by the change cache per session.",
		}, []string{"session"}),
	}
	for _, c := range []prometheus.Collector{m.zones, m.duration, m.bitmapBytes, m.cacheEntries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) zone(t Tier, result string) {
	if m == nil {
		return
	}
	m.zones.WithLabelValues(t.String(), result).Inc()
}

func (m *Metrics) bitmap(n int) {
	if m == nil {
		return
	}
	m.bitmapBytes.Add(float64(n))
}

func (m *Metrics) render(req Request, d time.Duration) {
	if m == nil {
		return
	}
	label := req.Tier.String()
	if req.Full {
		label = "full"
	}
	m.duration.WithLabelValues(label).Observe(d.Seconds())
}

func (m *Metrics) cache(session string, n int) {
	if m == nil {
		return
	}
	m.cacheEntries.WithLabelValues(session).Set(float64(n))
}

func (m *Metrics) forget(session string) {
	if m == nil {
		return
	}
	m.cacheEntries.DeleteLabelValues(session)
}
