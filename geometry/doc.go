// Package geometry turns the raw bytes of one IMDF feature file into raw
// feature records.
//
// The decoder core never looks at coordinates itself. It asks a [Provider]
// for a sequence of [RawFeature] values (id, undecoded properties and the
// decoded shapes) and only inspects geometry where a kind needs a display
// point (amenities and anchors).
//
// # Built-in Implementations
//
//   - [GeoJSON]: RFC 7946 FeatureCollections, shapes backed by github.com/paulmach/orb
//
// # Custom Implementations
//
// Implement [Provider] to plug in another geometry library:
//
//	type Provider interface {
//	    DecodeFeatures(data []byte) ([]RawFeature, error)
//	}
package geometry
