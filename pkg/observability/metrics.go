package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/rewind/pkg/domain"
)

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	Dispatches    *prometheus.CounterVec
	Noops         *prometheus.CounterVec
	HistoryLength prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers the collectors on reg.
// Passing a *prometheus.Registry also makes Handler serve exactly these metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rewind_dispatch_total",
			Help: "Total number of history steps, by kind (apply, undo, redo).",
		}, []string{"kind"}),
		Noops: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rewind_noop_total",
			Help: "Undo at the oldest or redo at the newest document.",
		}, []string{"kind"}),
		HistoryLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rewind_history_length",
			Help:    "Number of documents in a session after each step.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		gatherer: prometheus.DefaultGatherer,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that log every step and, when metrics is not
// nil, record it.
func Hooks(logger *slog.Logger, metrics *Metrics) domain.LifecycleHooks {
	record := func(ctx context.Context, e *domain.HistoryEvent) {
		logger.InfoContext(ctx, "history_step",
			"event", e.Type,
			"session_id", e.SessionID,
			"kind", e.Kind.String(),
			"action", e.ActionType,
			"cursor", e.Cursor,
			"length", e.Length,
		)
		if metrics == nil {
			return
		}
		if e.Type == domain.EventNoop {
			metrics.Noops.WithLabelValues(e.Kind.String()).Inc()
			return
		}
		metrics.Dispatches.WithLabelValues(e.Kind.String()).Inc()
		metrics.HistoryLength.Observe(float64(e.Length))
	}

	return domain.LifecycleHooks{
		OnDispatch: record,
		OnUndo:     record,
		OnRedo:     record,
		OnNoop:     record,
	}
}

// Chain returns hooks that call each of the given hooks in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	fire := func(ctx context.Context, e *domain.HistoryEvent) {
		for _, h := range hooks {
			h.Fire(ctx, e)
		}
	}
	return domain.LifecycleHooks{
		OnDispatch: fire,
		OnUndo:     fire,
		OnRedo:     fire,
		OnNoop:     fire,
	}
}
