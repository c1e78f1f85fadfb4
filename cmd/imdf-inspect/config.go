package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Source names accepted in IMDF_SOURCE.
const (
	sourceLocal = "local"
	sourceZip   = "zip"
	sourceS3    = "s3"
	sourceMinio = "minio"
)

type config struct {
	Source      string
	Concurrency int
	MemoryLimit int64

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	LogLevel    slog.Level
	LogFormat   string
	MetricsAddr string
}

// loadConfig reads the configuration through getenv, usually os.Getenv.
func loadConfig(getenv func(string) string) (config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := config{
		Source:         strings.ToLower(env("IMDF_SOURCE", sourceLocal)),
		S3Bucket:       env("IMDF_S3_BUCKET", ""),
		S3Region:       env("IMDF_S3_REGION", ""),
		S3Endpoint:     env("IMDF_S3_ENDPOINT", ""),
		MinioEndpoint:  env("IMDF_MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: env("IMDF_MINIO_ACCESS_KEY", ""),
		MinioSecretKey: env("IMDF_MINIO_SECRET_KEY", ""),
		MinioBucket:    env("IMDF_MINIO_BUCKET", ""),
		LogFormat:      strings.ToLower(env("LOG_FORMAT", "text")),
		MetricsAddr:    env("IMDF_METRICS_ADDR", ""),
	}

	switch cfg.Source {
	case sourceLocal, sourceZip, sourceS3, sourceMinio:
	default:
		return config{}, fmt.Errorf("IMDF_SOURCE: unknown source %q", cfg.Source)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return config{}, fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "warn"))); err != nil {
		return config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.S3PathStyle, err = strconv.ParseBool(env("IMDF_S3_PATH_STYLE", "false")); err != nil {
		return config{}, fmt.Errorf("IMDF_S3_PATH_STYLE: %w", err)
	}
	if cfg.MinioSecure, err = strconv.ParseBool(env("IMDF_MINIO_SECURE", "false")); err != nil {
		return config{}, fmt.Errorf("IMDF_MINIO_SECURE: %w", err)
	}
	if cfg.Concurrency, err = strconv.Atoi(env("IMDF_CONCURRENCY", "0")); err != nil {
		return config{}, fmt.Errorf("IMDF_CONCURRENCY: %w", err)
	}

	if v := env("IMDF_MEMORY_LIMIT", ""); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return config{}, fmt.Errorf("IMDF_MEMORY_LIMIT: %w", err)
		}
		cfg.MemoryLimit = int64(n)
	}

	if cfg.Source == sourceS3 && cfg.S3Bucket == "" {
		return config{}, fmt.Errorf("IMDF_S3_BUCKET is required for source %q", cfg.Source)
	}
	if cfg.Source == sourceMinio && cfg.MinioBucket == "" {
		return config{}, fmt.Errorf("IMDF_MINIO_BUCKET is required for source %q", cfg.Source)
	}

	return cfg, nil
}
