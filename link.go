package imdf

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/imdf/archive"
	"github.com/hupe1980/imdf/feature"
	"github.com/hupe1980/imdf/geometry"
)

// LinkStats summarizes a linked venue graph.
type LinkStats struct {
	Levels    int
	Units     int
	Openings  int
	Amenities int
	Occupants int
	Anchors   int

	// SkippedAmenityUnits counts amenity unit ids without a matching unit.
	SkippedAmenityUnits int

	// UnassociatedOccupants counts occupants whose anchor names an unknown unit.
	UnassociatedOccupants int
}

type linker struct {
	metrics MetricsCollector
	logger  *Logger
}

func newLinker(metrics MetricsCollector, logger *Logger) *linker {
	return &linker{metrics: metrics, logger: logger}
}

// link resolves the cross-file references of fully decoded features. It
// runs on a single goroutine and mutates the decoded features in place.
func (l *linker) link(ctx context.Context, res decoded) (*Venue, error) {
	if n := len(res.venues); n != 1 {
		return nil, feature.Invalid(archive.Venue.String(), "", fmt.Errorf("%w: found %d", ErrVenueCount, n))
	}
	venue := res.venues[0]
	venue.stats = LinkStats{
		Levels:    len(res.levels),
		Units:     len(res.units),
		Openings:  len(res.openings),
		Amenities: len(res.amenities),
		Occupants: len(res.occupants),
		Anchors:   len(res.anchors),
	}

	venue.levels = res.levels
	venue.LevelsByOrdinal = groupBy(res.levels, func(lv *Level) int { return lv.Properties.Ordinal })

	unitsByLevel := groupBy(res.units, func(u *Unit) uuid.UUID { return u.Properties.LevelID })
	openingsByLevel := groupBy(res.openings, func(o *Opening) uuid.UUID { return o.Properties.LevelID })
	for _, lv := range res.levels {
		if units, ok := unitsByLevel[lv.Identifier]; ok {
			lv.Units = units
		}
		if openings, ok := openingsByLevel[lv.Identifier]; ok {
			lv.Openings = openings
		}
	}

	venue.units = indexByID(res.units, func(u *Unit) uuid.UUID { return u.Identifier })

	for _, a := range res.amenities {
		p, err := geometry.FirstPoint(a.Geometry)
		if err != nil {
			return nil, feature.Invalid(archive.Amenity.String(), a.Identifier.String(), err)
		}
		a.Coordinate = p

		for _, unitID := range a.Properties.UnitIDs {
			u, ok := venue.units[unitID]
			if !ok {
				venue.stats.SkippedAmenityUnits++
				l.skipped(ctx, RelationAmenityUnit, a.Identifier, unitID)
				continue
			}
			u.Amenities = append(u.Amenities, a)
		}
	}
	venue.amenities = res.amenities

	venue.anchors = indexByID(res.anchors, func(a *Anchor) uuid.UUID { return a.Identifier })

	for _, o := range res.occupants {
		anchor, ok := venue.anchors[o.Properties.AnchorID]
		if !ok {
			return nil, feature.Invalid(archive.Occupant.String(), o.Identifier.String(),
				fmt.Errorf("%w: %s", ErrMissingAnchor, o.Properties.AnchorID))
		}

		p, err := geometry.FirstPoint(anchor.Geometry)
		if err != nil {
			return nil, feature.Invalid(archive.Anchor.String(), anchor.Identifier.String(),
				fmt.Errorf("locate occupant %s: %w", o.Identifier, err))
		}
		o.Coordinate = p

		u, ok := venue.units[anchor.Properties.UnitID]
		if !ok {
			venue.stats.UnassociatedOccupants++
			l.skipped(ctx, RelationAnchorUnit, anchor.Identifier, anchor.Properties.UnitID)
			continue
		}
		u.Occupants = append(u.Occupants, o)
		o.unitID = uuid.NullUUID{UUID: u.Identifier, Valid: true}
	}
	venue.occupants = res.occupants

	return venue, nil
}

func (l *linker) skipped(ctx context.Context, relation string, from, to uuid.UUID) {
	l.metrics.RecordSkippedReference(relation)
	l.logger.LogSkippedReference(ctx, relation, from, to)
}

// groupBy buckets items by key, keeping input order within each bucket.
func groupBy[K comparable, T any](items []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// indexByID builds an id table. Later duplicates replace earlier ones.
func indexByID[T any](items []T, id func(T) uuid.UUID) map[uuid.UUID]T {
	table := make(map[uuid.UUID]T, len(items))
	for _, item := range items {
		table[id(item)] = item
	}
	return table
}
