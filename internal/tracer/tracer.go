// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tracer provides distributed tracing abstractions for searchq.
// It supports OpenTelemetry and allows custom tracer implementations.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names emitted by the query phase.
const (
	SpanPhase       = "searchq.phase"
	SpanContributor = "searchq.contributor"
)

// Tracer defines the tracing interface used by the query phase.
type Tracer interface {
	// StartSpan starts a new tracing span with the given name
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a tracing span that captures the execution of an operation.
type Span interface {
	// SetAttributes sets key-value attributes on the span
	SetAttributes(attrs ...attribute.KeyValue)
	// RecordError records an error that occurred during the span
	RecordError(err error)
	// SetStatus sets the status code and description of the span
	SetStatus(code codes.Code, description string)
	// End marks the span as complete
	End()
}

// NoopTracer is a tracer that does nothing.
// This is the default tracer used when no tracing is configured.
type NoopTracer struct{}

// StartSpan returns the context unchanged with a no-op span.
func (n *NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, &NoopSpan{}
}

// NoopSpan is a span that does nothing.
type NoopSpan struct{}

// SetAttributes does nothing.
func (n *NoopSpan) SetAttributes(_ ...attribute.KeyValue) {}

// RecordError does nothing.
func (n *NoopSpan) RecordError(_ error) {}

// SetStatus does nothing.
func (n *NoopSpan) SetStatus(_ codes.Code, _ string) {}

// End does nothing.
func (n *NoopSpan) End() {}

// OtelTracer wraps an OpenTelemetry tracer to implement the Tracer interface.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer creates a new OpenTelemetry tracer adapter.
// The provided tracer must not be nil.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: tracer}
}

// StartSpan starts a new OpenTelemetry span.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &OtelSpan{span: span}
}

// OtelSpan wraps an OpenTelemetry span.
type OtelSpan struct {
	span trace.Span
}

// SetAttributes sets OpenTelemetry attributes on the span.
func (s *OtelSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// RecordError records an error on the OpenTelemetry span.
func (s *OtelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

// SetStatus sets the status of the OpenTelemetry span.
func (s *OtelSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

// End completes the OpenTelemetry span.
func (s *OtelSpan) End() {
	s.span.End()
}

// RequestMetadata describes one query phase for tracing purposes.
type RequestMetadata struct {
	// PhaseID identifies the query cycle
	PhaseID string
	// SearchAsYouType is true for suggestion-as-you-type cycles
	SearchAsYouType bool
	// Contributors is the number of contributors that ran
	Contributors int
	// Parts maps each non-empty expression part (q, aq, cq, lq, dq) to its length
	Parts map[string]int
	// Expression is the complete expression, possibly masked for logging
	Expression string
	// FirstResult and NumberOfResults describe the requested page
	FirstResult     int
	NumberOfResults int
	// GroupBy is the number of group-by requests
	GroupBy int
	// Duration is how long the phase took
	Duration time.Duration
	// Error is any error that stopped the phase
	Error error
}

// AddRequestAttributes adds search.* attributes describing a query phase to a span.
func AddRequestAttributes(span Span, meta *RequestMetadata) {
	attrs := []attribute.KeyValue{
		attribute.String("search.phase_id", meta.PhaseID),
		attribute.Bool("search.as_you_type", meta.SearchAsYouType),
		attribute.Int("search.contributors", meta.Contributors),
		attribute.StringSlice("search.parts", ActiveParts(meta.Parts)),
		attribute.Int("search.first_result", meta.FirstResult),
		attribute.Int("search.number_of_results", meta.NumberOfResults),
		attribute.Float64("search.duration_ms", float64(meta.Duration.Microseconds())/1000.0),
	}

	if meta.Expression != "" {
		attrs = append(attrs, attribute.String("search.expression", meta.Expression))
	}

	if meta.GroupBy > 0 {
		attrs = append(attrs, attribute.Int("search.group_by", meta.GroupBy))
	}

	span.SetAttributes(attrs...)

	if meta.Error != nil {
		span.RecordError(meta.Error)
		span.SetStatus(codes.Error, meta.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// AddContributorAttributes describes one contributor call on a span.
func AddContributorAttributes(span Span, name, stage string, duration time.Duration) {
	span.SetAttributes(
		attribute.String("search.contributor", name),
		attribute.String("search.stage", stage),
		attribute.Float64("search.duration_ms", float64(duration.Microseconds())/1000.0),
	)
}

// partOrder is the order expression parts are reported in.
var partOrder = []string{"q", "aq", "cq", "lq", "dq"}

// ActiveParts returns the names of the non-empty expression parts in
// q, aq, cq, lq, dq order. Unknown names are ignored.
func ActiveParts(parts map[string]int) []string {
	active := make([]string, 0, len(partOrder))
	for _, name := range partOrder {
		if parts[name] > 0 {
			active = append(active, name)
		}
	}
	return active
}
