/*
Package observability turns engine lifecycle events into structured logs and
Prometheus metrics.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	eng, _ := rewind.New(rewind.WithLifecycleHooks(observability.Hooks(logger, metrics)))
*/
package observability
