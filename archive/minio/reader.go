package minio

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/imdf/archive"
	"github.com/minio/minio-go/v7"
)

// Reader implements archive.Reader for MinIO and S3-compatible storage.
type Reader struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ archive.Reader = (*Reader)(nil)

// NewReader creates a MinIO archive reader.
// rootPrefix is prepended to all file names (e.g. "venues/").
func NewReader(client *minio.Client, bucket, rootPrefix string) *Reader {
	return &Reader{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (r *Reader) key(name string) string {
	return path.Join(r.prefix, name)
}

// ReadFile implements archive.Reader.
func (r *Reader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	key := r.key(name)

	obj, err := r.client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, key)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(err, key)
	}
	return data, nil
}

func mapError(err error, key string) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return fmt.Errorf("%w: %s", archive.ErrNotFound, key)
	}
	return err
}
