package imdf

import (
	"log/slog"

	"github.com/hupe1980/imdf/archive"
	"github.com/hupe1980/imdf/geometry"
	"github.com/hupe1980/imdf/resource"
)

type options struct {
	reader             archive.Reader
	provider           geometry.Provider
	concurrency        int
	metricsCollector   MetricsCollector
	logger             *Logger
	resourceController *resource.Controller
}

// Option configures a Decoder.
type Option func(*options)

// WithReader configures where archive files are read from.
//
// If nil is passed, the local file system is used.
//
// Example reading a zipped archive:
//
//	zr, _ := archive.OpenZip("venue.zip")
//	defer zr.Close()
//	v, _ := imdf.Decode(ctx, zr.Root(), imdf.WithReader(zr))
func WithReader(r archive.Reader) Option {
	return func(o *options) {
		if r == nil {
			r = archive.NewLocalReader()
		}
		o.reader = r
	}
}

// WithGeometryProvider configures the GeoJSON decoder.
//
// If nil is passed, geometry.GeoJSON is used.
func WithGeometryProvider(p geometry.Provider) Option {
	return func(o *options) {
		if p == nil {
			p = geometry.GeoJSON{}
		}
		o.provider = p
	}
}

// WithConcurrency limits how many feature files are decoded in parallel.
// The default decodes all seven files at once; 1 decodes them sequentially.
// Values <= 0 remove the limit.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring decodes.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &imdf.BasicMetricsCollector{}
//	v, _ := imdf.Decode(ctx, dir, imdf.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Features: %d, Avg latency: %dns\n", stats.FeaturesDecoded, stats.DecodeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for decodes.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := imdf.NewJSONLogger(slog.LevelInfo)
//	v, _ := imdf.Decode(ctx, dir, imdf.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController bounds memory, concurrent loads and read
// throughput. A controller can be shared by several decoders.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		reader:           archive.NewLocalReader(),
		provider:         geometry.GeoJSON{},
		concurrency:      len(archive.Required()),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
