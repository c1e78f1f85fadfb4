package archive

import (
	"context"
	"fmt"
	"path"
)

// File identifies one of the IMDF feature files.
type File int

// IMDF feature files, in archive listing order.
const (
	Address File = iota
	Amenity
	Anchor
	Building
	Detail
	Fixture
	Footprint
	Geofence
	Kiosk
	Level
	Manifest
	Occupant
	Opening
	Relationship
	Section
	Unit
	Venue
)

var fileNames = [...]string{
	Address:      "address",
	Amenity:      "amenity",
	Anchor:       "anchor",
	Building:     "building",
	Detail:       "detail",
	Fixture:      "fixture",
	Footprint:    "footprint",
	Geofence:     "geofence",
	Kiosk:        "kiosk",
	Level:        "level",
	Manifest:     "manifest",
	Occupant:     "occupant",
	Opening:      "opening",
	Relationship: "relationship",
	Section:      "section",
	Unit:         "unit",
	Venue:        "venue",
}

// String returns the lower-case kind name, e.g. "unit".
func (f File) String() string {
	if f < 0 || int(f) >= len(fileNames) {
		return fmt.Sprintf("File(%d)", int(f))
	}
	return fileNames[f]
}

// Filename returns the case-sensitive file name, e.g. "unit.geojson".
func (f File) Filename() string {
	return f.String() + ".geojson"
}

// Files returns all known IMDF files.
func Files() []File {
	out := make([]File, len(fileNames))
	for i := range fileNames {
		out[i] = File(i)
	}
	return out
}

// Required returns the files a venue graph is decoded from. The remaining
// files are ignored.
func Required() []File {
	return []File{Venue, Level, Unit, Opening, Amenity, Occupant, Anchor}
}

// Archive is an IMDF archive rooted at a base directory.
type Archive struct {
	baseDirectory string
}

// New returns the archive rooted at baseDirectory. Paths use forward slashes
// so the same archive works for local, zip and object-store readers.
func New(baseDirectory string) Archive {
	return Archive{baseDirectory: baseDirectory}
}

// BaseDirectory returns the directory the archive was created with.
func (a Archive) BaseDirectory() string {
	return a.baseDirectory
}

// Path returns the path of file f inside the archive.
func (a Archive) Path(f File) string {
	if a.baseDirectory == "" {
		return f.Filename()
	}
	return path.Join(a.baseDirectory, f.Filename())
}

// Load reads file f through r. Every failure is returned as *IOError.
func (a Archive) Load(ctx context.Context, r Reader, f File) ([]byte, error) {
	p := a.Path(f)
	if err := ctx.Err(); err != nil {
		return nil, &IOError{Path: p, Err: err}
	}
	data, err := r.ReadFile(ctx, p)
	if err != nil {
		return nil, &IOError{Path: p, Err: err}
	}
	return data, nil
}
