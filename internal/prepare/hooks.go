// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package prepare

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coregx/searchq/internal/core"
)

// PhaseEvent contains information about a finished query phase.
// This is passed to PhaseHook callbacks for logging, metrics, or persistence.
type PhaseEvent struct {
	// ID identifies the query cycle
	ID uuid.UUID
	// SearchAsYouType is true for suggestion-as-you-type cycles
	SearchAsYouType bool
	// Contributors is the number of contributor calls made
	Contributors int
	// Request is the built request (zero when Error is set)
	Request core.Request
	// Expression is the complete expression of the request
	Expression core.QueryBuilderExpression
	// CreatedAt is when the phase started
	CreatedAt time.Time
	// Duration is how long the phase took
	Duration time.Duration
	// Error is set when the phase did not run (nil on success)
	Error error
}

// PhaseHook is a callback function invoked after each query phase.
//
// Example:
//
//	p := prepare.New(prepare.WithPhaseHook(func(ctx context.Context, e prepare.PhaseEvent) {
//	    slog.Info("phase", "id", e.ID, "q", e.Request.Q, "duration", e.Duration)
//	}))
type PhaseHook func(ctx context.Context, event PhaseEvent)

// invokeHook calls the phase hook if set.
func (p *Pipeline) invokeHook(ctx context.Context, event PhaseEvent) {
	if p.hook != nil {
		p.hook(ctx, event)
	}
}

// ChainHooks returns a hook that calls every non-nil hook in order.
func ChainHooks(hooks ...PhaseHook) PhaseHook {
	var chain []PhaseHook
	for _, h := range hooks {
		if h != nil {
			chain = append(chain, h)
		}
	}
	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	}
	return func(ctx context.Context, event PhaseEvent) {
		for _, h := range chain {
			h(ctx, event)
		}
	}
}
