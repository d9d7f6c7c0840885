// Package metrics defines the Prometheus collectors for the optimizer and
// the result cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache request results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
	ResultOK    = "ok"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// CacheRequests counts cache reads by result (hit, miss, error).
	CacheRequests *prometheus.CounterVec
	// CacheWrites counts cache writes by result (ok, error).
	CacheWrites *prometheus.CounterVec
	// PackDuration tracks how long one material group takes to pack.
	PackDuration *prometheus.HistogramVec
	// SheetsOpened counts sheets opened per material.
	SheetsOpened *prometheus.CounterVec
	// Unplaced counts piece units that could not be placed, by reason.
	Unplaced *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what tests usually want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardcut_cache_requests_total",
				Help: "Total number of result cache reads by result",
			},
			[]string{"result"},
		),
		CacheWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardcut_cache_writes_total",
				Help: "Total number of result cache writes by result",
			},
			[]string{"result"},
		),
		PackDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boardcut_pack_duration_seconds",
				Help:    "Time spent packing one material group in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"material"},
		),
		SheetsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardcut_sheets_opened_total",
				Help: "Total number of sheets opened by material",
			},
			[]string{"material"},
		),
		Unplaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardcut_unplaced_pieces_total",
				Help: "Total number of piece units left unplaced by reason",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.CacheRequests, m.CacheWrites, m.PackDuration, m.SheetsOpened, m.Unplaced)
	}
	return m
}

func (m *Metrics) CacheRequest(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheWrite(result string) {
	if m == nil {
		return
	}
	m.CacheWrites.WithLabelValues(result).Inc()
}

// ObservePack records the packing time of one material group and the sheets it opened.
func (m *Metrics) ObservePack(material string, seconds float64, sheets int) {
	if m == nil {
		return
	}
	m.PackDuration.WithLabelValues(material).Observe(seconds)
	m.SheetsOpened.WithLabelValues(material).Add(float64(sheets))
}

func (m *Metrics) UnplacedPiece(reason string) {
	if m == nil {
		return
	}
	m.Unplaced.WithLabelValues(reason).Inc()
}
