// Command imdf-inspect decodes an IMDF archive and prints a JSON summary of
// its venue graph.
//
// Usage:
//
//	imdf-inspect [-lang de] [-indent] <directory | archive.zip | key prefix>
//
// The archive source and logging are configured through the environment,
// optionally loaded from a .env file:
//
//	IMDF_SOURCE            local (default), zip, s3 or minio
//	IMDF_CONCURRENCY       parallel file decodes (default 7)
//	IMDF_MEMORY_LIMIT      cap for buffered file bytes, e.g. "64MB"
//	IMDF_S3_BUCKET         bucket for the s3 source
//	IMDF_S3_REGION         AWS region
//	IMDF_S3_ENDPOINT       custom S3 endpoint
//	IMDF_S3_PATH_STYLE     path-style addressing (true/false)
//	IMDF_MINIO_ENDPOINT    MinIO endpoint (default localhost:9000)
//	IMDF_MINIO_ACCESS_KEY  MinIO access key
//	IMDF_MINIO_SECRET_KEY  MinIO secret key
//	IMDF_MINIO_BUCKET      bucket for the minio source
//	IMDF_MINIO_SECURE      use TLS (true/false)
//	LOG_LEVEL              debug, info, warn (default) or error
//	LOG_FORMAT             text (default) or json
//	IMDF_METRICS_ADDR      serve Prometheus metrics on this address until interrupted
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/hupe1980/imdf"
	"github.com/hupe1980/imdf/archive"
	imdfminio "github.com/hupe1980/imdf/archive/minio"
	imdfs3 "github.com/hupe1980/imdf/archive/s3"
	imdfprom "github.com/hupe1980/imdf/metrics/prometheus"
	"github.com/hupe1980/imdf/resource"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "imdf-inspect:", err)
		os.Exit(2)
	}

	if err := run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "imdf-inspect:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("imdf-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	lang := fs.String("lang", "", "preferred language for names (BCP 47)")
	indent := fs.Bool("indent", false, "indent JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one archive location")
	}

	var preferred []language.Tag
	if *lang != "" {
		tag, err := language.Parse(*lang)
		if err != nil {
			return fmt.Errorf("-lang: %w", err)
		}
		preferred = append(preferred, tag)
	}

	reader, dir, closeFn, err := openSource(ctx, cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	logger := newLogger(cfg, stderr)

	collector := imdfprom.NewCollector()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector)

	opts := []imdf.Option{
		imdf.WithReader(reader),
		imdf.WithLogger(logger),
		imdf.WithMetricsCollector(collector),
	}
	if cfg.Concurrency > 0 {
		opts = append(opts, imdf.WithConcurrency(cfg.Concurrency))
	}
	if cfg.MemoryLimit > 0 {
		opts = append(opts, imdf.WithResourceController(resource.NewController(resource.Config{
			MemoryLimitBytes: cfg.MemoryLimit,
		})))
	}

	v, err := imdf.Decode(ctx, dir, opts...)
	if err != nil {
		return err
	}

	enc := gojson.NewEncoder(stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(summarize(v, preferred...)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if cfg.MetricsAddr != "" {
		return serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}
	return nil
}

func newLogger(cfg config, w io.Writer) *imdf.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return imdf.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return imdf.NewLogger(slog.NewTextHandler(w, opts))
}

// openSource returns the reader and base directory for location.
func openSource(ctx context.Context, cfg config, location string) (archive.Reader, string, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case sourceZip:
		z, err := archive.OpenZip(location)
		if err != nil {
			return nil, "", nil, err
		}
		return z, z.Root(), z.Close, nil
	case sourceS3:
		var opts []imdfs3.Option
		if cfg.S3Region != "" {
			opts = append(opts, imdfs3.WithRegion(cfg.S3Region))
		}
		if cfg.S3Endpoint != "" {
			opts = append(opts, imdfs3.WithEndpoint(cfg.S3Endpoint))
		}
		opts = append(opts, imdfs3.WithPathStyle(cfg.S3PathStyle || cfg.S3Endpoint != ""))

		r, err := imdfs3.New(ctx, cfg.S3Bucket, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		return r, location, noop, nil
	case sourceMinio:
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioSecure,
		})
		if err != nil {
			return nil, "", nil, fmt.Errorf("minio client: %w", err)
		}
		return imdfminio.NewReader(client, cfg.MinioBucket, ""), location, noop, nil
	default:
		return archive.NewLocalReader(), filepath.ToSlash(location), noop, nil
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *imdf.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
