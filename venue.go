package imdf

import (
	"slices"

	"github.com/google/uuid"
)

// Stats returns counts gathered while linking.
func (v *Venue) Stats() LinkStats {
	return v.stats
}

// Ordinals returns the level ordinals in ascending order.
func (v *Venue) Ordinals() []int {
	ordinals := make([]int, 0, len(v.LevelsByOrdinal))
	for o := range v.LevelsByOrdinal {
		ordinals = append(ordinals, o)
	}
	slices.Sort(ordinals)
	return ordinals
}

// Levels returns all levels ordered by ordinal. Levels sharing an ordinal
// keep the order of the level file.
func (v *Venue) Levels() []*Level {
	levels := make([]*Level, 0, len(v.levels))
	for _, o := range v.Ordinals() {
		levels = append(levels, v.LevelsByOrdinal[o]...)
	}
	return levels
}

// Unit returns the unit with the given id.
func (v *Venue) Unit(id uuid.UUID) (*Unit, bool) {
	u, ok := v.units[id]
	return u, ok
}

// Anchor returns the anchor with the given id.
func (v *Venue) Anchor(id uuid.UUID) (*Anchor, bool) {
	a, ok := v.anchors[id]
	return a, ok
}

// UnitOf returns the unit an occupant belongs to. It reports false for
// occupants whose anchor references a unit outside the archive.
func (v *Venue) UnitOf(o *Occupant) (*Unit, bool) {
	id, ok := o.UnitID()
	if !ok {
		return nil, false
	}
	return v.Unit(id)
}

// Amenities returns all amenities in file order.
func (v *Venue) Amenities() []*Amenity {
	return slices.Clone(v.amenities)
}

// Occupants returns all occupants in file order, including those without a unit.
func (v *Venue) Occupants() []*Occupant {
	return slices.Clone(v.occupants)
}
