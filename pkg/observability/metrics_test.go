package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/history"
	"github.com/aretw0/rewind/pkg/observability"
)

func TestHooks_RecordMetricsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := observability.Hooks(logger, metrics)

	ctx := context.Background()
	hooks.Fire(ctx, &domain.HistoryEvent{Type: domain.EventDispatch, Kind: history.KindApply, SessionID: "s", Length: 2})
	hooks.Fire(ctx, &domain.HistoryEvent{Type: domain.EventDispatch, Kind: history.KindApply, SessionID: "s", Length: 3})
	hooks.Fire(ctx, &domain.HistoryEvent{Type: domain.EventUndo, Kind: history.KindUndo, SessionID: "s", Length: 3})
	hooks.Fire(ctx, &domain.HistoryEvent{Type: domain.EventNoop, Kind: history.KindRedo, SessionID: "s", Length: 3})

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Dispatches.WithLabelValues("apply")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Dispatches.WithLabelValues("undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Noops.WithLabelValues("redo")))

	assert.Contains(t, buf.String(), `"msg":"history_step"`)
	assert.Contains(t, buf.String(), `"kind":"redo"`)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "rewind_dispatch_total")
	assert.Contains(t, rec.Body.String(), "rewind_history_length_count 3")
}

func TestHooks_NilMetrics(t *testing.T) {
	hooks := observability.Hooks(slog.New(slog.DiscardHandler), nil)
	assert.NotPanics(t, func() {
		hooks.Fire(context.Background(), &domain.HistoryEvent{Type: domain.EventDispatch})
	})
}

func TestChain(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnUndo: func(context.Context, *domain.HistoryEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{OnUndo: func(context.Context, *domain.HistoryEvent) { calls = append(calls, "b") }}

	observability.Chain(a, b).Fire(context.Background(), &domain.HistoryEvent{Type: domain.EventUndo})
	assert.Equal(t, []string{"a", "b"}, calls)
}
