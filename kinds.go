package imdf

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"golang.org/x/text/language"

	"github.com/hupe1980/imdf/feature"
)

// VenueProperties are the properties of a venue feature.
type VenueProperties struct {
	Category    string        `json:"category" validate:"required"`
	Name        LocalizedName `json:"name"`
	AltName     LocalizedName `json:"altName"`
	Restriction *string       `json:"restriction"`
	Hours       *string       `json:"hours"`
	Phone       *string       `json:"phone"`
	Website     *string       `json:"website"`
	AddressID   *string       `json:"addressId"`
}

// Venue is the root of a decoded archive. After decoding it owns every other
// feature of the graph.
type Venue struct {
	feature.Feature[VenueProperties]

	// LevelsByOrdinal groups the levels by ordinal. Levels sharing an ordinal
	// keep the order of the level file.
	LevelsByOrdinal map[int][]*Level

	levels    []*Level
	units     map[uuid.UUID]*Unit
	anchors   map[uuid.UUID]*Anchor
	amenities []*Amenity
	occupants []*Occupant
	stats     LinkStats
}

// LevelProperties are the properties of a level feature.
type LevelProperties struct {
	Ordinal     int           `json:"ordinal" validate:"present"`
	Category    string        `json:"category" validate:"required"`
	ShortName   LocalizedName `json:"shortName" validate:"required"`
	Outdoor     bool          `json:"outdoor" validate:"present"`
	BuildingIDs []string      `json:"buildingIds"`
	Name        LocalizedName `json:"name"`
	Restriction *string       `json:"restriction"`
}

// Level is one floor of a building.
type Level struct {
	feature.Feature[LevelProperties]

	Units    []*Unit
	Openings []*Opening
}

// UnitProperties are the properties of a unit feature.
type UnitProperties struct {
	Category    string        `json:"category" validate:"required"`
	LevelID     uuid.UUID     `json:"levelId" validate:"required"`
	Name        LocalizedName `json:"name"`
	AltName     LocalizedName `json:"altName"`
	Restriction *string       `json:"restriction"`
}

// Unit is a room or area on a level.
type Unit struct {
	feature.Feature[UnitProperties]

	Occupants []*Occupant
	Amenities []*Amenity
}

// OpeningProperties are the properties of an opening feature.
type OpeningProperties struct {
	Category string        `json:"category" validate:"required"`
	LevelID  uuid.UUID     `json:"levelId" validate:"required"`
	Name     LocalizedName `json:"name"`
}

// Opening is a door or passage on a level.
type Opening struct {
	feature.Feature[OpeningProperties]
}

// AmenityProperties are the properties of an amenity feature.
type AmenityProperties struct {
	Category string        `json:"category" validate:"required"`
	Name     LocalizedName `json:"name"`
	UnitIDs  []uuid.UUID   `json:"unitIds" validate:"present"`
	Hours    *string       `json:"hours"`
	Phone    *string       `json:"phone"`
	Website  *string       `json:"website"`
}

// Amenity is a point of interest serving one or more units.
type Amenity struct {
	feature.Feature[AmenityProperties]

	// Coordinate is the amenity's first geometry, always a point.
	Coordinate orb.Point
}

// Title returns the amenity name in the preferred language, falling back
// to its category.
func (a *Amenity) Title(preferred ...language.Tag) string {
	if name := a.Properties.Name.Best(preferred...); name != "" {
		return name
	}
	return a.Properties.Category
}

// OccupantProperties are the properties of an occupant feature.
type OccupantProperties struct {
	Category string        `json:"category" validate:"required"`
	Name     LocalizedName `json:"name" validate:"required"`
	AnchorID uuid.UUID     `json:"anchorId" validate:"required"`
	Hours    *string       `json:"hours"`
	Phone    *string       `json:"phone"`
	Website  *string       `json:"website"`
}

// Occupant is a business or organization located by an anchor.
type Occupant struct {
	feature.Feature[OccupantProperties]

	// Coordinate is the first geometry of the occupant's anchor.
	Coordinate orb.Point

	unitID uuid.NullUUID
}

// UnitID returns the id of the unit the occupant was associated with, if any.
// Resolve it with Venue.UnitOf.
func (o *Occupant) UnitID() (uuid.UUID, bool) {
	return o.unitID.UUID, o.unitID.Valid
}

// Title returns the occupant name in the preferred language.
func (o *Occupant) Title(preferred ...language.Tag) string {
	return o.Properties.Name.Best(preferred...)
}

// AnchorProperties are the properties of an anchor feature.
type AnchorProperties struct {
	AddressID *string   `json:"addressId"`
	UnitID    uuid.UUID `json:"unitId" validate:"required"`
}

// Anchor gives a physical point to a feature without geometry of its own.
type Anchor struct {
	feature.Feature[AnchorProperties]
}

func newVenue(f feature.Feature[VenueProperties]) *Venue {
	return &Venue{Feature: f, LevelsByOrdinal: map[int][]*Level{}}
}

func newLevel(f feature.Feature[LevelProperties]) *Level {
	return &Level{Feature: f, Units: []*Unit{}, Openings: []*Opening{}}
}

func newUnit(f feature.Feature[UnitProperties]) *Unit {
	return &Unit{Feature: f, Occupants: []*Occupant{}, Amenities: []*Amenity{}}
}

func newOpening(f feature.Feature[OpeningProperties]) *Opening {
	return &Opening{Feature: f}
}

func newAmenity(f feature.Feature[AmenityProperties]) *Amenity {
	return &Amenity{Feature: f}
}

func newOccupant(f feature.Feature[OccupantProperties]) *Occupant {
	return &Occupant{Feature: f}
}

func newAnchor(f feature.Feature[AnchorProperties]) *Anchor {
	return &Anchor{Feature: f}
}
