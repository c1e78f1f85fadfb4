package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrIO is matched by every *IOError.
	ErrIO = errors.New("imdf: i/o error")

	// ErrNotFound is returned when a file does not exist.
	//
	// Readers should return an error that satisfies `errors.Is(err, ErrNotFound)`.
	// The default maps to `fs.ErrNotExist`.
	ErrNotFound = fs.ErrNotExist
)

// Reader loads whole files of an archive.
// Implementations must be safe for concurrent use.
type Reader interface {
	// ReadFile returns the contents of the file at name.
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// IOError reports a file that is missing or could not be read.
//
// errors.Is(err, ErrIO) holds for every *IOError; the reader's error is
// available through errors.Unwrap / errors.As.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("imdf: read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// NotFound reports whether err is (or wraps) a missing-file error.
func NotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
