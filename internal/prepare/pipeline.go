// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package prepare runs the query phase: every subscribed contributor adds its
// part to a fresh QueryBuilder, then the request is built once.
//
// Contributors are called synchronously in subscription order, first all
// building contributors, then all done-building contributors. Done-building
// contributors see everything added during building, which is where facets
// compute their exclusion queries.
package prepare

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/logger"
	"github.com/coregx/searchq/internal/metrics"
	"github.com/coregx/searchq/internal/tracer"
)

// Stage of the query phase a contributor runs in.
type Stage string

// Stages in execution order.
const (
	StageBuilding     Stage = "building"
	StageDoneBuilding Stage = "doneBuilding"
)

var stages = []Stage{StageBuilding, StageDoneBuilding}

// BuildingArgs is handed to every contributor of one phase.
// Builder is shared by all contributors of the phase.
type BuildingArgs struct {
	Builder         *core.QueryBuilder
	SearchAsYouType bool
	Stage           Stage
}

// Contributor adds its part of a query to the shared builder.
// Contribute must not retain args after it returns.
type Contributor interface {
	Contribute(ctx context.Context, args *BuildingArgs)
}

// ContributorFunc adapts a function to the Contributor interface.
type ContributorFunc func(ctx context.Context, args *BuildingArgs)

// Contribute calls f(ctx, args).
func (f ContributorFunc) Contribute(ctx context.Context, args *BuildingArgs) {
	f(ctx, args)
}

// Prepared is the outcome of one query phase.
type Prepared struct {
	ID uuid.UUID
	// Builder is the builder after every contributor ran. It stays usable,
	// e.g. for ComputeCompleteExpressionExcept.
	Builder    *core.QueryBuilder
	Request    core.Request
	Expression core.QueryBuilderExpression
	// SearchAsYouType is copied from the Run call.
	SearchAsYouType bool
	CreatedAt       time.Time
}

type subscription struct {
	name        string
	contributor Contributor
}

// Pipeline dispatches the query phase to its contributors.
//
// Subscribe and Run may be called from different goroutines. Run does not
// hold the lock while contributors execute, so a contributor may subscribe
// others; they take part from the next phase on.
type Pipeline struct {
	mu            sync.RWMutex
	subscriptions map[Stage][]subscription

	defaults  []core.Option
	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	metrics   *metrics.Collector
	hook      PhaseHook

	now   func() time.Time
	newID func() uuid.UUID
}

// New creates a pipeline with no contributors.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		subscriptions: make(map[Stage][]subscription, len(stages)),
		logger:        &logger.NoopLogger{},
		sanitizer:     logger.NewSanitizer(nil),
		tracer:        &tracer.NoopTracer{},
		now:           time.Now,
		newID:         uuid.New,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Subscribe registers c for stage. name identifies the contributor in logs,
// spans and Contributors. Unknown stages panic.
func (p *Pipeline) Subscribe(stage Stage, name string, c Contributor) {
	if stage != StageBuilding && stage != StageDoneBuilding {
		panic(fmt.Sprintf("prepare: unknown stage %q", stage))
	}
	if c == nil {
		panic("prepare: nil contributor " + name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions[stage] = append(p.subscriptions[stage], subscription{name: name, contributor: c})
}

// OnBuilding subscribes f to the building stage.
func (p *Pipeline) OnBuilding(name string, f func(ctx context.Context, args *BuildingArgs)) {
	p.Subscribe(StageBuilding, name, ContributorFunc(f))
}

// OnDoneBuilding subscribes f to the done-building stage.
func (p *Pipeline) OnDoneBuilding(name string, f func(ctx context.Context, args *BuildingArgs)) {
	p.Subscribe(StageDoneBuilding, name, ContributorFunc(f))
}

// Contributors returns the names subscribed to stage, in call order.
func (p *Pipeline) Contributors(stage Stage) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	subs := p.subscriptions[stage]
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.name
	}
	return names
}

// Run executes one query phase and returns the built request.
//
// A context that is already done returns ErrPhaseCanceled and no contributor
// is called. Once started, the phase always runs to completion; contributors
// may watch ctx themselves. A panicking contributor aborts the phase and the
// panic propagates to the caller.
func (p *Pipeline) Run(ctx context.Context, searchAsYouType bool) (*Prepared, error) {
	id := p.newID()
	start := p.now()

	ctx, span := p.tracer.StartSpan(ctx, tracer.SpanPhase)
	defer span.End()

	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("%w: %w", core.ErrPhaseCanceled, err)
		p.finish(ctx, span, PhaseEvent{
			ID:              id,
			SearchAsYouType: searchAsYouType,
			Error:           err,
			CreatedAt:       start,
			Duration:        p.now().Sub(start),
		})
		return nil, err
	}

	p.mu.RLock()
	plan := make(map[Stage][]subscription, len(stages))
	for _, stage := range stages {
		plan[stage] = append([]subscription(nil), p.subscriptions[stage]...)
	}
	p.mu.RUnlock()

	args := &BuildingArgs{
		Builder:         core.NewQueryBuilder(p.defaults...),
		SearchAsYouType: searchAsYouType,
	}

	calls := 0
	for _, stage := range stages {
		args.Stage = stage
		for _, sub := range plan[stage] {
			p.contribute(ctx, sub, args)
			calls++
		}
	}

	prepared := &Prepared{
		ID:              id,
		Builder:         args.Builder,
		Request:         args.Builder.Build(),
		Expression:      args.Builder.ComputeCompleteExpressionParts(),
		SearchAsYouType: searchAsYouType,
		CreatedAt:       start,
	}

	p.finish(ctx, span, PhaseEvent{
		ID:              id,
		SearchAsYouType: searchAsYouType,
		Contributors:    calls,
		Request:         prepared.Request,
		Expression:      prepared.Expression,
		CreatedAt:       start,
		Duration:        p.now().Sub(start),
	})

	return prepared, nil
}

func (p *Pipeline) contribute(ctx context.Context, sub subscription, args *BuildingArgs) {
	ctx, span := p.tracer.StartSpan(ctx, tracer.SpanContributor)
	defer span.End()

	start := p.now()
	sub.contributor.Contribute(ctx, args)
	elapsed := p.now().Sub(start)

	tracer.AddContributorAttributes(span, sub.name, string(args.Stage), elapsed)
	p.metrics.ObserveContributor(string(args.Stage), elapsed)
	p.logger.Debug("contributor done",
		"contributor", sub.name,
		"stage", string(args.Stage),
		"duration_ms", elapsed.Milliseconds(),
	)
}

// finish reports a phase to the span, the logs, the metrics and the hook.
func (p *Pipeline) finish(ctx context.Context, span tracer.Span, event PhaseEvent) {
	req := event.Request
	full := p.sanitizer.FormatExpression(event.Expression.Full)

	tracer.AddRequestAttributes(span, &tracer.RequestMetadata{
		PhaseID:         event.ID.String(),
		SearchAsYouType: event.SearchAsYouType,
		Contributors:    event.Contributors,
		Parts: map[string]int{
			"q":  len(req.Q),
			"aq": len(req.AQ),
			"cq": len(req.CQ),
			"lq": len(req.LQ),
			"dq": len(req.DQ),
		},
		Expression:      full,
		FirstResult:     req.FirstResult,
		NumberOfResults: req.NumberOfResults,
		GroupBy:         len(req.GroupBy),
		Duration:        event.Duration,
		Error:           event.Error,
	})

	if event.Error != nil {
		p.logger.Warn("query phase not started",
			"phase_id", event.ID.String(),
			"error", event.Error,
		)
	} else {
		p.metrics.ObservePhase(event.SearchAsYouType, len(event.Expression.Full))
		p.logger.Debug("query phase done",
			"phase_id", event.ID.String(),
			"search_as_you_type", event.SearchAsYouType,
			"contributors", event.Contributors,
			"expression", full,
			"context", p.sanitizer.MaskContext(contextValues(req.Context)),
			"duration_ms", event.Duration.Milliseconds(),
		)
	}

	p.invokeHook(ctx, event)
}

func contextValues(ctx map[string]core.ContextValue) map[string][]string {
	if len(ctx) == 0 {
		return nil
	}
	out := make(map[string][]string, len(ctx))
	for k, v := range ctx {
		out[k] = v.Values()
	}
	return out
}
