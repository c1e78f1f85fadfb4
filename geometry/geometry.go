package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	// ErrNotPoint is returned when a shape that must locate a feature is not a point.
	ErrNotPoint = errors.New("geometry is not a point")

	// ErrUnsupportedType is returned when a file is not a feature collection.
	ErrUnsupportedType = errors.New("unsupported geojson type")
)

// FeatureError reports a feature whose geometry could not be decoded.
type FeatureError struct {
	// Index is the position of the feature in its collection.
	Index int
	// ID is the raw feature id, empty if the feature has no string id.
	ID  string
	Err error
}

func (e *FeatureError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("feature %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("feature %q: %v", e.ID, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// Shape is one decoded geometry of a feature.
type Shape = orb.Geometry

// RawFeature is a single feature as produced by a Provider, before its
// identifier and properties are interpreted.
type RawFeature struct {
	// ID is the textual feature id, nil if the feature carries none (or a
	// non-string id).
	ID *string

	// Properties holds the undecoded properties object. It is nil when the
	// feature has no properties or they are JSON null.
	Properties []byte

	// Geometry holds the feature's shapes in source order. Geometry
	// collections are flattened; a null geometry yields an empty slice.
	Geometry []Shape
}

// RawID returns the textual id or an empty string.
func (f RawFeature) RawID() string {
	if f.ID == nil {
		return ""
	}
	return *f.ID
}

// Provider decodes one feature file into raw features.
// Implementations must be safe for concurrent use.
type Provider interface {
	DecodeFeatures(data []byte) ([]RawFeature, error)
}

// FirstPoint returns shapes[0] if it is a point.
func FirstPoint(shapes []Shape) (orb.Point, error) {
	if len(shapes) == 0 {
		return orb.Point{}, fmt.Errorf("%w: feature has no geometry", ErrNotPoint)
	}
	p, ok := shapes[0].(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("%w: got %s", ErrNotPoint, shapes[0].GeoJSONType())
	}
	return p, nil
}

// flatten expands collections into their members, depth first.
func flatten(g orb.Geometry, dst []Shape) []Shape {
	switch v := g.(type) {
	case nil:
		return dst
	case orb.Collection:
		for _, member := range v {
			dst = flatten(member, dst)
		}
		return dst
	default:
		return append(dst, v)
	}
}
