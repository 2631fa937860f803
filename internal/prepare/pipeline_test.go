package prepare

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/logger"
	"github.com/coregx/searchq/internal/metrics"
	"github.com/coregx/searchq/internal/tracer"
)

func TestPipeline_RunBuildsOnce(t *testing.T) {
	p := New()
	p.OnBuilding("searchbox", func(_ context.Context, args *BuildingArgs) {
		args.Builder.Expression.Add("a")
	})
	p.OnBuilding("tab", func(_ context.Context, args *BuildingArgs) {
		args.Builder.AdvancedExpression.Add("b")
	})

	prepared, err := p.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, "a", prepared.Request.Q)
	assert.Equal(t, "b", prepared.Request.AQ)
	assert.Equal(t, "a AND b", prepared.Expression.Full)
	assert.NotEqual(t, uuid.Nil, prepared.ID)
	assert.False(t, prepared.SearchAsYouType)
}

func TestPipeline_StageOrder(t *testing.T) {
	p := New()
	var order []string

	record := func(name string) func(context.Context, *BuildingArgs) {
		return func(_ context.Context, args *BuildingArgs) {
			order = append(order, name+":"+string(args.Stage))
		}
	}

	// Done-building subscribed first still runs after every building contributor.
	p.OnDoneBuilding("facet", record("facet"))
	p.OnBuilding("first", record("first"))
	p.OnBuilding("second", record("second"))
	p.OnDoneBuilding("pager", record("pager"))

	_, err := p.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"first:building",
		"second:building",
		"facet:doneBuilding",
		"pager:doneBuilding",
	}, order)
	assert.Equal(t, []string{"first", "second"}, p.Contributors(StageBuilding))
	assert.Equal(t, []string{"facet", "pager"}, p.Contributors(StageDoneBuilding))
}

func TestPipeline_FacetSeesBuildingParts(t *testing.T) {
	const filter = `@filetype=="pdf"`

	p := New()
	p.OnBuilding("searchbox", func(_ context.Context, args *BuildingArgs) {
		args.Builder.Expression.Add("report")
	})
	p.OnBuilding("facet:@filetype", func(_ context.Context, args *BuildingArgs) {
		args.Builder.AdvancedExpression.AddFieldExpression("@filetype", "==", "pdf")
	})
	p.OnDoneBuilding("facet:@filetype", func(_ context.Context, args *BuildingArgs) {
		gb := args.Builder.GroupByExcept("@filetype", filter)
		args.Builder.GroupByRequests = append(args.Builder.GroupByRequests, gb)
	})

	prepared, err := p.Run(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, prepared.Request.GroupBy, 1)
	gb := prepared.Request.GroupBy[0]
	assert.Equal(t, "report", gb.QueryOverride)
	assert.Equal(t, core.MatchAllExpression, gb.AdvancedQueryOverride)
	assert.Equal(t, "report AND "+filter, prepared.Expression.Full)
	assert.Equal(t, "report", prepared.Builder.ComputeCompleteExpressionExcept(filter))
}

func TestPipeline_SearchAsYouType(t *testing.T) {
	p := New()
	p.OnBuilding("omnibox", func(_ context.Context, args *BuildingArgs) {
		if args.SearchAsYouType {
			args.Builder.NumberOfResults = 3
		}
	})

	prepared, err := p.Run(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, prepared.SearchAsYouType)
	assert.Equal(t, 3, prepared.Request.NumberOfResults)

	prepared, err = p.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultNumberOfResults, prepared.Request.NumberOfResults)
}

func TestPipeline_FreshBuilderPerRun(t *testing.T) {
	p := New(WithDefaults(core.WithSearchHub("support"), core.WithNumberOfResults(25)))
	p.OnBuilding("searchbox", func(_ context.Context, args *BuildingArgs) {
		args.Builder.Expression.Add("a")
	})

	first, err := p.Run(context.Background(), false)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, "a", second.Request.Q, "parts must not accumulate across phases")
	assert.Equal(t, "support", second.Request.SearchHub)
	assert.Equal(t, 25, second.Request.NumberOfResults)
	assert.NotSame(t, first.Builder, second.Builder)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPipeline_CanceledContext(t *testing.T) {
	var events []PhaseEvent
	p := New(WithPhaseHook(func(_ context.Context, e PhaseEvent) {
		events = append(events, e)
	}))

	called := false
	p.OnBuilding("searchbox", func(_ context.Context, _ *BuildingArgs) {
		called = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prepared, err := p.Run(ctx, false)

	require.Error(t, err)
	assert.Nil(t, prepared)
	assert.True(t, errors.Is(err, core.ErrPhaseCanceled))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
	require.Len(t, events, 1)
	assert.Equal(t, err, events[0].Error)
}

func TestPipeline_ContextCanceledDuringPhaseRunsToCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New()
	p.OnBuilding("canceler", func(_ context.Context, _ *BuildingArgs) {
		cancel()
	})
	p.OnBuilding("late", func(_ context.Context, args *BuildingArgs) {
		args.Builder.Expression.Add("still here")
	})

	prepared, err := p.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "still here", prepared.Request.Q)
}

func TestPipeline_PanicPropagates(t *testing.T) {
	p := New()
	p.OnBuilding("broken", func(_ context.Context, _ *BuildingArgs) {
		panic("boom")
	})

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = p.Run(context.Background(), false)
	})
}

func TestPipeline_SubscribeValidation(t *testing.T) {
	p := New()
	assert.Panics(t, func() { p.Subscribe("afterBuilding", "x", ContributorFunc(func(context.Context, *BuildingArgs) {})) })
	assert.Panics(t, func() { p.Subscribe(StageBuilding, "x", nil) })
}

func TestPipeline_SubscribeDuringRun(t *testing.T) {
	p := New()
	p.OnBuilding("registrar", func(_ context.Context, _ *BuildingArgs) {
		p.OnBuilding("late", func(_ context.Context, args *BuildingArgs) {
			args.Builder.Expression.Add("late")
		})
	})

	first, err := p.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, first.Request.Q, "contributors added during a phase join the next one")

	second, err := p.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "late", second.Request.Q)
}

func TestPipeline_ConcurrentRuns(t *testing.T) {
	p := New()
	p.OnBuilding("searchbox", func(_ context.Context, args *BuildingArgs) {
		args.Builder.Expression.Add("a")
	})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prepared, err := p.Run(context.Background(), false)
			if err == nil {
				results[i] = prepared.Request.Q
			}
		}(i)
	}
	wg.Wait()

	for _, q := range results {
		assert.Equal(t, "a", q)
	}
}

func TestPipeline_Hook(t *testing.T) {
	var got PhaseEvent
	p := New(WithPhaseHook(func(_ context.Context, e PhaseEvent) {
		got = e
	}))
	p.OnBuilding("a", func(_ context.Context, args *BuildingArgs) { args.Builder.Expression.Add("a") })
	p.OnDoneBuilding("b", func(_ context.Context, _ *BuildingArgs) {})

	prepared, err := p.Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, prepared.ID, got.ID)
	assert.Equal(t, 2, got.Contributors)
	assert.True(t, got.SearchAsYouType)
	assert.Equal(t, prepared.Request, got.Request)
	assert.Equal(t, "a", got.Expression.Full)
	assert.NoError(t, got.Error)
}

func TestPipeline_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	p := New(WithTracer(tracer.NewOtelTracer(tp.Tracer("test"))))
	p.OnBuilding("searchbox", func(_ context.Context, args *BuildingArgs) { args.Builder.Expression.Add("a") })
	p.OnDoneBuilding("facet", func(_ context.Context, _ *BuildingArgs) {})

	_, err := p.Run(context.Background(), false)
	require.NoError(t, err)
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)

	// Children end first.
	assert.Equal(t, tracer.SpanContributor, spans[0].Name)
	assert.Equal(t, tracer.SpanContributor, spans[1].Name)
	assert.Equal(t, tracer.SpanPhase, spans[2].Name)
	assert.Equal(t, spans[2].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[2].SpanContext.SpanID(), spans[1].Parent.SpanID())
}

func TestPipeline_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := New(WithMetrics(metrics.NewCollector(reg)))
	p.OnBuilding("searchbox", func(_ context.Context, args *BuildingArgs) { args.Builder.Expression.Add("a") })

	_, err := p.Run(context.Background(), false)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), true)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "searchq_phase_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per search-as-you-type value")

	count, err = testutil.GatherAndCount(reg, "searchq_contributor_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPipeline_LogsAreSanitized(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	p := New(WithLogger(logger.NewZapAdapter(zap.New(zcore))))
	p.OnBuilding("context", func(_ context.Context, args *BuildingArgs) {
		args.Builder.AddContextValue("userEmail", core.ContextString("john@example.com"))
		args.Builder.AddContextValue("role", core.ContextString("agent"))
		args.Builder.AdvancedExpression.AddFieldExpression("@email", "==", "john@example.com")
	})

	_, err := p.Run(context.Background(), false)
	require.NoError(t, err)

	done := logs.FilterMessage("query phase done").All()
	require.Len(t, done, 1)

	fields := done[0].ContextMap()
	assert.Equal(t, "@email=="+logger.DefaultMask, fields["expression"])
	assert.Equal(t, map[string]string{
		"userEmail": logger.DefaultMask,
		"role":      "agent",
	}, fields["context"])
	assert.Len(t, logs.FilterMessage("contributor done").All(), 1)
}

func TestPipeline_DeterministicClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

	p := New()
	p.now = func() time.Time { return fixed }
	p.newID = func() uuid.UUID { return id }

	prepared, err := p.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, fixed, prepared.CreatedAt)
	assert.Equal(t, id, prepared.ID)
}
