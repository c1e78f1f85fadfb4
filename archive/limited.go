package archive

import (
	"context"

	"github.com/hupe1980/imdf/resource"
)

// LimitedReader bounds concurrent loads and read throughput of another Reader.
type LimitedReader struct {
	inner Reader
	rc    *resource.Controller
}

// NewLimitedReader wraps inner. A nil controller imposes no limits.
func NewLimitedReader(inner Reader, rc *resource.Controller) *LimitedReader {
	return &LimitedReader{inner: inner, rc: rc}
}

// ReadFile implements Reader.
func (r *LimitedReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := r.rc.AcquireLoad(ctx); err != nil {
		return nil, err
	}
	defer r.rc.ReleaseLoad()

	data, err := r.inner.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}
