// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/coregx/searchq/internal/logger"
	"github.com/coregx/searchq/internal/metrics"
	"github.com/coregx/searchq/internal/tracer"
)

// spanLogger exports finished spans as debug log lines.
type spanLogger struct {
	log logger.Logger
}

func (e *spanLogger) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		args := []any{
			"span", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"duration", s.EndTime().Sub(s.StartTime()).String(),
			"status", s.Status().Code.String(),
		}
		for _, kv := range s.Attributes() {
			args = append(args, string(kv.Key), kv.Value.Emit())
		}
		e.log.Debug("span finished", args...)
	}
	return nil
}

func (e *spanLogger) Shutdown(context.Context) error { return nil }

// newTracer returns a tracer whose spans are logged, and its shutdown func.
func newTracer(log logger.Logger) (tracer.Tracer, func(context.Context) error) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(&spanLogger{log: log}))
	return tracer.NewOtelTracer(tp.Tracer("searchq")), tp.Shutdown
}

// newMetrics returns a collector on a private registry.
func newMetrics() (*metrics.Collector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.NewCollector(reg), reg
}

// writeMetrics dumps reg in the prometheus text format.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
