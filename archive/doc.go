// Package archive locates and loads the files of an IMDF archive.
//
// An IMDF archive is a directory holding one GeoJSON file per feature kind
// ("venue.geojson", "level.geojson", ...). [Archive] resolves a [File] kind to
// its path below a base directory; a [Reader] loads the bytes.
//
// Readers must return errors satisfying errors.Is(err, ErrNotFound) for
// missing files. [Archive.Load] wraps every read failure into an *IOError so
// callers can tell I/O problems apart from malformed content.
//
// # Built-in Implementations
//
//   - [LocalReader]: local file system
//   - [MemoryReader]: in-memory files for tests and synthetic archives
//   - [ZipReader]: zipped archives as distributed by IMDF tooling
//   - [LimitedReader]: applies a resource.Controller budget to another Reader
//   - s3.Reader: Amazon S3 (package archive/s3)
//   - minio.Reader: MinIO and other S3-compatible stores (package archive/minio)
//
// # Custom Implementations
//
//	type Reader interface {
//	    ReadFile(ctx context.Context, name string) ([]byte, error)
//	}
package archive
