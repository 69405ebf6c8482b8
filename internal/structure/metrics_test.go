package structure

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	svc, _ := newTestService(t, WithMetrics(m))
	ctx := context.Background()

	appendToRoot(t, svc, 10, 20)
	require.NoError(t, svc.MoveAfter(ctx, testStructure, element(20), 10, ir.ModeAuto))
	require.Error(t, svc.Prepend(ctx, testStructure, element(30), 999, ir.ModeAuto))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.placements.WithLabelValues(VerbAppendToRoot, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.placements.WithLabelValues(VerbMoveAfter, OutcomeNoOp)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.placements.WithLabelValues(VerbPrepend, "not_found")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.duration))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"nestedset_placements_total", "nestedset_placement_duration_seconds"}, names)
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(VerbAppend, OutcomeOK, 0) })
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeOK, outcomeOf(nil, false))
	assert.Equal(t, OutcomeNoOp, outcomeOf(nil, true))
	assert.Equal(t, OutcomeError, outcomeOf(assert.AnError, false))
	assert.Equal(t, "vetoed_move", outcomeOf(engine.NewVetoedError(testStructure, 1), false))
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	svc, _ := newTestService(t, WithTracer(tp.Tracer("test")))
	ctx := context.Background()

	require.NoError(t, svc.AppendToRoot(ctx, testStructure, element(10), ir.ModeAuto))
	require.Error(t, svc.Prepend(ctx, testStructure, element(20), 999, ir.ModeAuto))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "Service."+VerbAppendToRoot, spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("structure.id", testStructure))
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("element.id", 10))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("node.level", 2))

	assert.Equal(t, "Service."+VerbPrepend, spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	require.Len(t, spans[1].Events(), 1)
}
