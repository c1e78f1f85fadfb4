// Package prometheus exports decoder metrics to Prometheus.
//
// Collector implements imdf.MetricsCollector:
//
//	c := prometheus.NewCollector(prometheus.WithNamespace("indoor"))
//	reg.MustRegister(c)
//	v, err := imdf.Decode(ctx, dir, imdf.WithMetricsCollector(c))
package prometheus
