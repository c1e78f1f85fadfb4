package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ZipReader reads archive files from a zip file.
type ZipReader struct {
	files  map[string]*zip.File
	closer io.Closer
}

// NewZipReader indexes the zip file held by r.
func NewZipReader(r io.ReaderAt, size int64) (*ZipReader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return newZipReader(zr, nil), nil
}

// OpenZip opens the zip file at name. The returned reader must be closed.
func OpenZip(name string) (*ZipReader, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	return newZipReader(&rc.Reader, rc), nil
}

func newZipReader(zr *zip.Reader, closer io.Closer) *ZipReader {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files[cleanName(f.Name)] = f
	}
	return &ZipReader{files: files, closer: closer}
}

// Names returns the names of all files in the zip, in no particular order.
func (z *ZipReader) Names() []string {
	names := make([]string, 0, len(z.files))
	for name := range z.files {
		names = append(names, name)
	}
	return names
}

// Root returns the directory holding venue.geojson, or "" if it sits at the
// top level or is absent. Zipped archives are often wrapped in a single folder.
func (z *ZipReader) Root() string {
	if _, ok := z.files[Venue.Filename()]; ok {
		return ""
	}
	root := ""
	for name := range z.files {
		if path.Base(name) != Venue.Filename() || strings.HasPrefix(name, "__MACOSX/") {
			continue
		}
		dir := path.Dir(name)
		if root == "" || len(dir) < len(root) || (len(dir) == len(root) && dir < root) {
			root = dir
		}
	}
	return root
}

// ReadFile implements Reader.
func (z *ZipReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, ok := z.files[cleanName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// Close releases the underlying file when opened with OpenZip.
func (z *ZipReader) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}
