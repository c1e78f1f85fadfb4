package s3

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/imdf/archive"
)

// Client is the subset of the S3 API used by Reader.
type Client interface {
	manager.DownloadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options configures a Reader.
type Options struct {
	// Prefix is prepended to every file name.
	Prefix string

	// Region overrides the region from the shared AWS config.
	Region string

	// Endpoint overrides the S3 endpoint, e.g. for LocalStack.
	Endpoint string

	// UsePathStyle forces path-style addressing.
	UsePathStyle bool

	// AccessKeyID and SecretAccessKey set static credentials.
	AccessKeyID     string
	SecretAccessKey string

	// PartSize is the ranged GET size used by the downloader.
	// If 0, the transfer manager default (5 MiB) is used.
	PartSize int64

	// Concurrency is the number of parallel part downloads per file.
	// If 0, the transfer manager default is used.
	Concurrency int
}

// Option configures a Reader.
type Option func(*Options)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint sets a custom endpoint and enables path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.Endpoint = endpoint
		o.UsePathStyle = true
	}
}

// WithPathStyle toggles path-style addressing. Apply after WithEndpoint to
// override its default.
func WithPathStyle(enabled bool) Option {
	return func(o *Options) { o.UsePathStyle = enabled }
}

// WithCredentials sets static credentials.
func WithCredentials(accessKeyID, secretAccessKey string) Option {
	return func(o *Options) {
		o.AccessKeyID = accessKeyID
		o.SecretAccessKey = secretAccessKey
	}
}

// WithPartSize sets the download part size in bytes.
func WithPartSize(size int64) Option {
	return func(o *Options) { o.PartSize = size }
}

// WithConcurrency sets the number of parallel part downloads per file.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

// Reader implements archive.Reader for S3.
type Reader struct {
	client     Client
	downloader *manager.Downloader
	bucket     string
	prefix     string
}

var _ archive.Reader = (*Reader)(nil)

// New creates a Reader from the default AWS configuration chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Reader, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return NewReader(client, bucket, optFns...), nil
}

// NewReader creates a Reader using an existing client.
func NewReader(client Client, bucket string, optFns ...Option) *Reader {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		if opts.PartSize > 0 {
			d.PartSize = opts.PartSize
		}
		if opts.Concurrency > 0 {
			d.Concurrency = opts.Concurrency
		}
	})

	return &Reader{
		client:     client,
		downloader: downloader,
		bucket:     bucket,
		prefix:     opts.Prefix,
	}
}

func (r *Reader) key(name string) string {
	return path.Join(r.prefix, name)
}

// ReadFile implements archive.Reader.
func (r *Reader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	key := r.key(name)

	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, key)
	}

	size := aws.ToInt64(head.ContentLength)
	buf := manager.NewWriteAtBuffer(make([]byte, 0, size))

	n, err := r.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, key)
	}

	return buf.Bytes()[:n], nil
}

// mapError translates S3 not-found responses into archive.ErrNotFound.
func mapError(err error, key string) error {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %s", archive.ErrNotFound, key)
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", archive.ErrNotFound, key)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%w: %s", archive.ErrNotFound, key)
		}
	}
	return err
}
