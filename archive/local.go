package archive

import (
	"context"
	"os"
	"path/filepath"
)

// LocalReader reads archives from the local file system. Names are
// interpreted relative to the process working directory unless absolute.
type LocalReader struct{}

// NewLocalReader returns a reader for the local file system.
func NewLocalReader() *LocalReader {
	return &LocalReader{}
}

// ReadFile implements Reader.
func (r *LocalReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.FromSlash(name))
}
