package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CacheRequest(ResultHit)
	m.CacheRequest(ResultHit)
	m.CacheRequest(ResultMiss)
	m.CacheWrite(ResultError)
	m.ObservePack("MEL18", 0.01, 3)
	m.UnplacedPiece("exceeds_sheet")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheWrites.WithLabelValues(ResultError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SheetsOpened.WithLabelValues("MEL18")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unplaced.WithLabelValues("exceeds_sheet")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheRequest(ResultHit)
		m.CacheWrite(ResultOK)
		m.ObservePack("X", 1, 1)
		m.UnplacedPiece("sheet_limit")
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
