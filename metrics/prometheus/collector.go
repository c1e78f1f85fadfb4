package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/imdf"
)

var _ imdf.MetricsCollector = (*Collector)(nil)
var _ prometheus.Collector = (*Collector)(nil)

// Options configures a Collector.
type Options struct {
	Namespace string
	Buckets   []float64
}

// Option configures a Collector.
type Option func(*Options)

// WithNamespace sets the metric namespace. Defaults to "imdf".
func WithNamespace(ns string) Option {
	return func(o *Options) { o.Namespace = ns }
}

// WithBuckets sets the latency histogram buckets.
func WithBuckets(b []float64) Option {
	return func(o *Options) { o.Buckets = b }
}

// Collector records decode metrics as Prometheus counters and histograms.
type Collector struct {
	decodes      *prometheus.HistogramVec
	fileDecodes  *prometheus.HistogramVec
	features     *prometheus.CounterVec
	skippedLinks *prometheus.CounterVec
}

// NewCollector creates a Collector. It is not registered; pass it to a
// prometheus.Registerer.
func NewCollector(optFns ...Option) *Collector {
	opts := Options{
		Namespace: "imdf",
		Buckets:   prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Collector{
		decodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "decode_duration_seconds",
			Help:      "Latency of archive decodes including linking",
			Buckets:   opts.Buckets,
		}, []string{"status"}),
		fileDecodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "file_decode_duration_seconds",
			Help:      "Latency of single feature file decodes",
			Buckets:   opts.Buckets,
		}, []string{"file", "status"}),
		features: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "features_decoded_total",
			Help:      "Total features decoded per file",
		}, []string{"file"}),
		skippedLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "skipped_references_total",
			Help:      "References to features outside the archive that were skipped",
		}, []string{"relation"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordFileDecode implements imdf.MetricsCollector.
func (c *Collector) RecordFileDecode(file string, features int, duration time.Duration, err error) {
	c.fileDecodes.WithLabelValues(file, status(err)).Observe(duration.Seconds())
	c.features.WithLabelValues(file).Add(float64(features))
}

// RecordDecode implements imdf.MetricsCollector.
func (c *Collector) RecordDecode(duration time.Duration, err error) {
	c.decodes.WithLabelValues(status(err)).Observe(duration.Seconds())
}

// RecordSkippedReference implements imdf.MetricsCollector.
func (c *Collector) RecordSkippedReference(relation string) {
	c.skippedLinks.WithLabelValues(relation).Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.decodes.Describe(ch)
	c.fileDecodes.Describe(ch)
	c.features.Describe(ch)
	c.skippedLinks.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.decodes.Collect(ch)
	c.fileDecodes.Collect(ch)
	c.features.Collect(ch)
	c.skippedLinks.Collect(ch)
}
