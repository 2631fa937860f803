package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObservePhase(t *testing.T) {
	c := NewCollector(nil)

	c.ObservePhase(false, 12)
	c.ObservePhase(false, 40)
	c.ObservePhase(true, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.phaseRuns.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.phaseRuns.WithLabelValues("true")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.expressionLength))
}

func TestCollector_ObserveContributor(t *testing.T) {
	c := NewCollector(nil)

	c.ObserveContributor("building", time.Millisecond)
	c.ObserveContributor("doneBuilding", time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(c.contributorDuration))
}

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObservePhase(false, 5)

	expected := `
# HELP searchq_phase_runs_total Number of query phases run, by search-as-you-type flag.
# TYPE searchq_phase_runs_total counter
searchq_phase_runs_total{search_as_you_type="false"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "searchq_phase_runs_total")
	require.NoError(t, err)

	assert.Panics(t, func() { NewCollector(reg) }, "registering twice must fail")
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector

	// Should not panic
	c.ObservePhase(true, 10)
	c.ObserveContributor("building", time.Second)
}
