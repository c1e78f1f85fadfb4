// Package imdf decodes Indoor Mapping Data Format (IMDF) archives into a
// linked, in-memory venue graph.
//
// An IMDF archive is a directory with one GeoJSON feature collection per
// feature kind. The decoder reads the seven kinds a venue graph is built
// from (venue, level, unit, opening, amenity, occupant and anchor), decodes
// them in parallel and resolves their references:
//
//	venue ─┬─ levels (by ordinal) ─┬─ units ─┬─ amenities
//	       │                       │         └─ occupants (via anchors)
//	       │                       └─ openings
//
// # Quick Start
//
//	ctx := context.Background()
//	v, err := imdf.Decode(ctx, "./archive")
//	if err != nil {
//	    return err
//	}
//	for _, lvl := range v.Levels() {
//	    fmt.Println(lvl.Properties.ShortName.Best(), len(lvl.Units))
//	}
//
// Zipped and remote archives are read through an archive.Reader:
//
//	zr, _ := archive.OpenZip("venue.zip")
//	defer zr.Close()
//	v, err := imdf.Decode(ctx, zr.Root(), imdf.WithReader(zr))
//
//	r, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("venues/"))
//	v, err := imdf.Decode(ctx, "airport", imdf.WithReader(r))
//
// # Errors
//
// Decoding is all-or-nothing. Errors matching ErrIO report a missing or
// unreadable file (*IOError). Errors matching ErrInvalidData report malformed
// content (*Error) and name the feature kind and id: a bad identifier,
// missing or invalid properties, a venue file without exactly one venue, an
// amenity or anchor not located by a point, or an occupant whose anchor does
// not exist.
//
// Two gaps are tolerated: amenity unit ids and anchor unit ids that match no
// unit are skipped. They are counted in Venue.Stats, logged at debug level
// and reported to the MetricsCollector.
//
// # Graph Ownership
//
// Units own their occupants. The occupant's link back to its unit is stored
// as an id and resolved through the venue:
//
//	for _, o := range v.Occupants() {
//	    if u, ok := v.UnitOf(o); ok {
//	        fmt.Println(o.Title(), "in", u.Properties.Name.Best())
//	    }
//	}
//
// The graph is not modified after Decode returns and may be read
// concurrently.
package imdf
