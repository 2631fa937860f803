// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes prometheus collectors for the query phase.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "searchq"

// Collector groups the query phase metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	phaseRuns           *prometheus.CounterVec
	contributorDuration *prometheus.HistogramVec
	expressionLength    prometheus.Histogram
}

// NewCollector creates the query phase metrics and registers them with reg.
// A nil reg leaves the metrics unregistered, which is handy in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		phaseRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_runs_total",
			Help:      "Number of query phases run, by search-as-you-type flag.",
		}, []string{"search_as_you_type"}),
		contributorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contributor_duration_seconds",
			Help:      "Time spent in each contributor call, by stage.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"stage"}),
		expressionLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expression_length_bytes",
			Help:      "Length of the complete expression of each built request.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(c.phaseRuns, c.contributorDuration, c.expressionLength)
	}
	return c
}

// ObservePhase records one finished query phase.
func (c *Collector) ObservePhase(searchAsYouType bool, expressionLength int) {
	if c == nil {
		return
	}
	c.phaseRuns.WithLabelValues(strconv.FormatBool(searchAsYouType)).Inc()
	c.expressionLength.Observe(float64(expressionLength))
}

// ObserveContributor records the duration of one contributor call.
func (c *Collector) ObserveContributor(stage string, d time.Duration) {
	if c == nil {
		return
	}
	c.contributorDuration.WithLabelValues(stage).Observe(d.Seconds())
}
