// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package prepare

import (
	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/logger"
	"github.com/coregx/searchq/internal/metrics"
	"github.com/coregx/searchq/internal/tracer"
)

// Option is a functional option for configuring a Pipeline.
type Option func(*Pipeline)

// WithDefaults sets the builder options applied to every fresh QueryBuilder.
func WithDefaults(opts ...core.Option) Option {
	return func(p *Pipeline) {
		p.defaults = append(p.defaults, opts...)
	}
}

// WithLogger enables structured logging of each phase.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSanitizer replaces the sanitizer used to mask logged context values
// and expression terms.
func WithSanitizer(s *logger.Sanitizer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.sanitizer = s
		}
	}
}

// WithTracer enables tracing of each phase and contributor call.
func WithTracer(t tracer.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithMetrics records phase metrics in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) {
		p.metrics = c
	}
}

// WithPhaseHook sets a callback invoked after each phase.
func WithPhaseHook(hook PhaseHook) Option {
	return func(p *Pipeline) {
		p.hook = hook
	}
}
