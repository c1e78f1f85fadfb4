package imdf_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imdf"
	"github.com/hupe1980/imdf/archive"
	"github.com/hupe1980/imdf/feature"
	"github.com/hupe1980/imdf/geometry"
	"github.com/hupe1980/imdf/resource"
	"github.com/hupe1980/imdf/testutil"
)

const base = "imdf"

func decode(t *testing.T, a *testutil.Archive, opts ...imdf.Option) (*imdf.Venue, error) {
	t.Helper()
	opts = append([]imdf.Option{imdf.WithReader(a.MemoryReader(base))}, opts...)
	return imdf.Decode(context.Background(), base, opts...)
}

// scenario is the classroom archive: unit U1 on level L1 (ordinal 2),
// anchor A1 in U1 and occupant O1 at A1.
type scenario struct {
	venue, level, unit, anchor, occupant uuid.UUID
	point                                orb.Point
}

func newScenario() (*testutil.Archive, scenario) {
	s := scenario{
		venue:    uuid.New(),
		level:    uuid.New(),
		unit:     uuid.New(),
		anchor:   uuid.New(),
		occupant: uuid.New(),
		point:    orb.Point{-122.0090, 37.3349},
	}
	a := testutil.NewArchive().
		Add(archive.Venue, testutil.Venue(s.venue, "university")).
		Add(archive.Level, testutil.Level(s.level, 2, "L2")).
		Add(archive.Unit, testutil.Unit(s.unit, s.level, "classroom")).
		Add(archive.Anchor, testutil.Anchor(s.anchor, s.unit, s.point)).
		Add(archive.Occupant, testutil.Occupant(s.occupant, s.anchor, "Room 101", "classroom"))
	return a, s
}

func TestDecode_Scenario(t *testing.T) {
	a, s := newScenario()

	v, err := decode(t, a)
	require.NoError(t, err)

	assert.Equal(t, s.venue, v.Identifier)
	assert.Equal(t, "university", v.Properties.Category)

	require.Len(t, v.LevelsByOrdinal[2], 1)
	l1 := v.LevelsByOrdinal[2][0]
	assert.Equal(t, s.level, l1.Identifier)
	assert.Equal(t, "L2", l1.Properties.ShortName.Best())

	require.Len(t, l1.Units, 1)
	u1 := l1.Units[0]
	assert.Equal(t, s.unit, u1.Identifier)
	assert.Empty(t, l1.Openings)
	assert.NotNil(t, l1.Openings)

	require.Len(t, u1.Occupants, 1)
	o1 := u1.Occupants[0]
	assert.Equal(t, s.occupant, o1.Identifier)
	assert.Equal(t, s.point, o1.Coordinate)
	assert.Equal(t, "Room 101", o1.Title())

	unitID, ok := o1.UnitID()
	require.True(t, ok)
	assert.Equal(t, s.unit, unitID)

	owner, ok := v.UnitOf(o1)
	require.True(t, ok)
	assert.Same(t, u1, owner)

	anchor, ok := v.Anchor(s.anchor)
	require.True(t, ok)
	assert.Equal(t, s.unit, anchor.Properties.UnitID)
	assert.Nil(t, anchor.Properties.AddressID)

	assert.Equal(t, imdf.LinkStats{Levels: 1, Units: 1, Anchors: 1, Occupants: 1}, v.Stats())
}

func TestDecode_GeneratedGraph(t *testing.T) {
	g := testutil.Generate(testutil.NewRNG(7), testutil.GenerateConfig{
		Levels:           6,
		UnitsPerLevel:    8,
		OpeningsPerLevel: 3,
		Amenities:        40,
		Occupants:        30,
		DanglingRatio:    0.25,
	})

	v, err := decode(t, g.Archive)
	require.NoError(t, err)

	t.Run("LevelsByOrdinal", func(t *testing.T) {
		want := map[int]bool{}
		for _, o := range g.Ordinals {
			want[o] = true
		}
		got := map[int]bool{}
		total := 0
		for o, levels := range v.LevelsByOrdinal {
			got[o] = true
			total += len(levels)
			for _, l := range levels {
				assert.Equal(t, o, l.Properties.Ordinal)
			}
		}
		assert.Equal(t, want, got)
		assert.Equal(t, len(g.LevelIDs), total)
		assert.True(t, sort.IntsAreSorted(v.Ordinals()))
		assert.Len(t, v.Levels(), len(g.LevelIDs))
	})

	t.Run("UnitsAndOpenings", func(t *testing.T) {
		for _, l := range v.Levels() {
			assert.Len(t, l.Units, 8)
			assert.Len(t, l.Openings, 3)
			for _, u := range l.Units {
				assert.Equal(t, l.Identifier, g.UnitLevel[u.Identifier])
			}
		}
	})

	t.Run("Amenities", func(t *testing.T) {
		for _, unitID := range g.UnitIDs {
			u, ok := v.Unit(unitID)
			require.True(t, ok)

			want := 0
			for _, refs := range g.AmenityUnits {
				for _, ref := range refs {
					if ref == unitID {
						want++
					}
				}
			}
			assert.Len(t, u.Amenities, want)
			for _, a := range u.Amenities {
				assert.Contains(t, a.Properties.UnitIDs, unitID)
			}
		}
	})

	t.Run("Occupants", func(t *testing.T) {
		for _, unitID := range g.UnitIDs {
			u, _ := v.Unit(unitID)
			want := map[uuid.UUID]bool{}
			for occ, ref := range g.OccupantUnit {
				if ref == unitID {
					want[occ] = true
				}
			}
			got := map[uuid.UUID]bool{}
			for _, o := range u.Occupants {
				got[o.Identifier] = true
			}
			assert.Equal(t, want, got)
		}

		unassociated := 0
		for _, o := range v.Occupants() {
			if _, ok := v.UnitOf(o); !ok {
				unassociated++
				_, known := v.Unit(g.OccupantUnit[o.Identifier])
				assert.False(t, known)
			}
		}
		assert.Equal(t, v.Stats().UnassociatedOccupants, unassociated)
	})
}

func TestDecode_Idempotent(t *testing.T) {
	g := testutil.Generate(testutil.NewRNG(99), testutil.GenerateConfig{
		Levels: 5, UnitsPerLevel: 6, OpeningsPerLevel: 2, Amenities: 20, Occupants: 15, DanglingRatio: 0.1,
	})
	dir := filepath.Join(t.TempDir(), "imdf")
	require.NoError(t, g.Archive.WriteDir(dir))

	first, err := imdf.Decode(context.Background(), dir)
	require.NoError(t, err)
	second, err := imdf.Decode(context.Background(), dir, imdf.WithConcurrency(1))
	require.NoError(t, err)

	assert.Equal(t, summarize(first), summarize(second))
	assert.Equal(t, first.Stats(), second.Stats())
}

func TestDecode_Backends(t *testing.T) {
	g := testutil.Generate(testutil.NewRNG(3), testutil.GenerateConfig{
		Levels: 3, UnitsPerLevel: 4, OpeningsPerLevel: 1, Amenities: 6, Occupants: 6,
	})
	ctx := context.Background()

	mem, err := imdf.Decode(ctx, base, imdf.WithReader(g.Archive.MemoryReader(base)))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "archive")
	require.NoError(t, g.Archive.WriteDir(dir))
	local, err := imdf.Decode(ctx, dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Archive.WriteZip(&buf, "export"))
	zr, err := archive.NewZipReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	zipped, err := imdf.Decode(ctx, zr.Root(), imdf.WithReader(zr))
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 10, MaxConcurrentLoads: 2, IOLimitBytesPerSec: 1 << 30})
	limited, err := imdf.Decode(ctx, base,
		imdf.WithReader(g.Archive.MemoryReader(base)),
		imdf.WithResourceController(rc),
	)
	require.NoError(t, err)
	assert.Zero(t, rc.MemoryUsage())

	want := summarize(mem)
	assert.Equal(t, want, summarize(local))
	assert.Equal(t, want, summarize(zipped))
	assert.Equal(t, want, summarize(limited))
}

func TestDecode_VenueCount(t *testing.T) {
	t.Run("Zero", func(t *testing.T) {
		a, _ := newScenario()
		a.SetRaw(archive.Venue, []byte(`{"type":"FeatureCollection","features":[]}`))

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)
		assert.ErrorIs(t, err, imdf.ErrVenueCount)
		assert.NotErrorIs(t, err, imdf.ErrIO)
	})

	t.Run("Two", func(t *testing.T) {
		a, _ := newScenario()
		a.Add(archive.Venue, testutil.Venue(uuid.New(), "airport"))

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)
		assert.ErrorIs(t, err, imdf.ErrVenueCount)
	})

	t.Run("FileMissing", func(t *testing.T) {
		a, _ := newScenario()
		a.Remove(archive.Venue)

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrIO)
		assert.ErrorIs(t, err, imdf.ErrNotFound)
		assert.NotErrorIs(t, err, imdf.ErrInvalidData)

		var ioErr *imdf.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "imdf/venue.geojson", ioErr.Path)
	})
}

func TestDecode_MissingFiles(t *testing.T) {
	for _, file := range archive.Required() {
		t.Run(file.String(), func(t *testing.T) {
			a, _ := newScenario()
			a.Remove(file)

			v, err := decode(t, a)
			assert.Nil(t, v)
			assert.ErrorIs(t, err, imdf.ErrIO)
			assert.NotErrorIs(t, err, imdf.ErrInvalidData)
		})
	}

	t.Run("UnusedFilesIgnored", func(t *testing.T) {
		a, _ := newScenario()
		a.SetRaw(archive.Building, []byte("garbage"))

		_, err := decode(t, a)
		require.NoError(t, err)
	})
}

func TestDecode_DanglingAmenityUnit(t *testing.T) {
	a, s := newScenario()
	amenityID, missingUnit := uuid.New(), uuid.New()
	a.Add(archive.Amenity, testutil.Amenity(amenityID, "bathroom", orb.Point{1, 2}, missingUnit))

	metrics := &imdf.BasicMetricsCollector{}
	v, err := decode(t, a, imdf.WithMetricsCollector(metrics))
	require.NoError(t, err)

	u, ok := v.Unit(s.unit)
	require.True(t, ok)
	assert.Empty(t, u.Amenities)

	amenities := v.Amenities()
	require.Len(t, amenities, 1)
	assert.Equal(t, orb.Point{1, 2}, amenities[0].Coordinate)
	assert.Equal(t, "bathroom", amenities[0].Title())

	assert.Equal(t, 1, v.Stats().SkippedAmenityUnits)
	assert.Equal(t, int64(1), metrics.GetStats().SkippedAmenityUnits)
}

func TestDecode_AmenityLinks(t *testing.T) {
	a, s := newScenario()
	other := uuid.New()
	a.Add(archive.Unit, testutil.Unit(other, s.level, "restroom"))
	amenityID := uuid.New()
	a.Add(archive.Amenity, testutil.Amenity(amenityID, "restroom", orb.Point{0, 0}, s.unit, other))

	v, err := decode(t, a)
	require.NoError(t, err)

	for _, id := range []uuid.UUID{s.unit, other} {
		u, ok := v.Unit(id)
		require.True(t, ok)
		require.Len(t, u.Amenities, 1)
		assert.Equal(t, amenityID, u.Amenities[0].Identifier)
	}
	assert.Same(t, mustUnit(t, v, s.unit).Amenities[0], mustUnit(t, v, other).Amenities[0])
}

func TestDecode_UnresolvedAnchor(t *testing.T) {
	a, _ := newScenario()
	occupantID := uuid.New()
	a.Add(archive.Occupant, testutil.Occupant(occupantID, uuid.New(), "Lost", "office"))

	_, err := decode(t, a)
	assert.ErrorIs(t, err, imdf.ErrInvalidData)
	assert.ErrorIs(t, err, imdf.ErrMissingAnchor)

	var fe *imdf.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "occupant", fe.Kind)
	assert.Equal(t, occupantID.String(), fe.FeatureID)
}

func TestDecode_AnchorUnitOutsideArchive(t *testing.T) {
	a, _ := newScenario()
	anchorID, occupantID := uuid.New(), uuid.New()
	a.Add(archive.Anchor, testutil.Anchor(anchorID, uuid.New(), orb.Point{5, 6}))
	a.Add(archive.Occupant, testutil.Occupant(occupantID, anchorID, "Kiosk", "office"))

	v, err := decode(t, a)
	require.NoError(t, err)

	var found *imdf.Occupant
	for _, o := range v.Occupants() {
		if o.Identifier == occupantID {
			found = o
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, orb.Point{5, 6}, found.Coordinate)
	_, ok := found.UnitID()
	assert.False(t, ok)
	_, ok = v.UnitOf(found)
	assert.False(t, ok)
	assert.Equal(t, 1, v.Stats().UnassociatedOccupants)
}

func TestDecode_NonPointGeometry(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}

	t.Run("Amenity", func(t *testing.T) {
		a, s := newScenario()
		amenityID := uuid.New()
		f := testutil.Amenity(amenityID, "bathroom", orb.Point{}, s.unit)
		f.Geometry = square
		a.Add(archive.Amenity, f)

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)
		assert.ErrorIs(t, err, imdf.ErrNotPoint)

		var fe *imdf.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "amenity", fe.Kind)
		assert.Equal(t, amenityID.String(), fe.FeatureID)
	})

	t.Run("AmenityWithoutGeometry", func(t *testing.T) {
		a, s := newScenario()
		f := testutil.Amenity(uuid.New(), "bathroom", orb.Point{}, s.unit)
		f.Geometry = nil
		a.Add(archive.Amenity, f)

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrNotPoint)
	})

	t.Run("Anchor", func(t *testing.T) {
		a, s := newScenario()
		anchorID := uuid.New()
		f := testutil.Anchor(anchorID, s.unit, orb.Point{})
		f.Geometry = square
		a.Add(archive.Anchor, f)
		a.Add(archive.Occupant, testutil.Occupant(uuid.New(), anchorID, "Shop", "office"))

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)
		assert.ErrorIs(t, err, imdf.ErrNotPoint)

		var fe *imdf.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "anchor", fe.Kind)
		assert.Equal(t, anchorID.String(), fe.FeatureID)
	})

	t.Run("UnreferencedAnchor", func(t *testing.T) {
		a, s := newScenario()
		f := testutil.Anchor(uuid.New(), s.unit, orb.Point{})
		f.Geometry = square
		a.Add(archive.Anchor, f)

		_, err := decode(t, a)
		require.NoError(t, err)
	})
}

func TestDecode_InvalidFeature(t *testing.T) {
	t.Run("NotAUUID", func(t *testing.T) {
		a, s := newScenario()
		f := testutil.Unit(uuid.New(), s.level, "room")
		f.ID = "not-a-uuid"
		a.Add(archive.Unit, f)

		v, err := decode(t, a)
		assert.Nil(t, v)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)

		var fe *imdf.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "unit", fe.Kind)
		assert.Equal(t, "not-a-uuid", fe.FeatureID)
	})

	t.Run("MissingRequiredProperty", func(t *testing.T) {
		a, _ := newScenario()
		f := testutil.Level(uuid.New(), 1, "L1")
		delete(f.Properties, "outdoor")
		a.Add(archive.Level, f)

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)
	})

	t.Run("MissingProperties", func(t *testing.T) {
		a, _ := newScenario()
		f := testutil.Anchor(uuid.New(), uuid.New(), orb.Point{})
		f.Properties = nil
		a.Add(archive.Anchor, f)

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)
	})

	t.Run("NotAFeatureCollection", func(t *testing.T) {
		a, _ := newScenario()
		a.SetRaw(archive.Opening, []byte(`{"type":"Feature","geometry":null,"properties":{}}`))

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)
		assert.ErrorIs(t, err, geometry.ErrUnsupportedType)
		assert.NotErrorIs(t, err, imdf.ErrIO)
	})

	t.Run("BadGeometry", func(t *testing.T) {
		a, s := newScenario()
		bad := uuid.New()
		a.SetRaw(archive.Unit, []byte(fmt.Sprintf(`{"type": "FeatureCollection", "features": [
			{"type": "Feature", "id": %q, "properties": {"category": "room", "level_id": %q},
			 "geometry": {"type": "Point", "coordinates": [0, 0]}},
			{"type": "Feature", "id": %q, "properties": {"category": "room", "level_id": %q},
			 "geometry": {"type": "Blob", "coordinates": [0, 0]}}
		]}`, s.unit, s.level, bad, s.level)))

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)

		var fe *imdf.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "unit", fe.Kind)
		assert.Equal(t, bad.String(), fe.FeatureID)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		a, _ := newScenario()
		a.SetRaw(archive.Level, []byte(`{"type":`))

		_, err := decode(t, a)
		assert.ErrorIs(t, err, imdf.ErrInvalidData)

		var fe *feature.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "level", fe.Kind)
	})
}

func TestDecode_UnlinkedReferencesAreText(t *testing.T) {
	_, s := newScenario()

	venue := testutil.Venue(s.venue, "university")
	venue.Properties["address_id"] = "addr-1"
	level := testutil.Level(s.level, 2, "L2")
	level.Properties["building_ids"] = []string{"bldg-1", "bldg-2"}
	anchor := testutil.Anchor(s.anchor, s.unit, s.point)
	anchor.Properties["address_id"] = "addr-2"

	a := testutil.NewArchive().
		Add(archive.Venue, venue).
		Add(archive.Level, level).
		Add(archive.Unit, testutil.Unit(s.unit, s.level, "classroom")).
		Add(archive.Anchor, anchor)

	v, err := decode(t, a)
	require.NoError(t, err)

	require.NotNil(t, v.Properties.AddressID)
	assert.Equal(t, "addr-1", *v.Properties.AddressID)
	assert.Equal(t, []string{"bldg-1", "bldg-2"}, v.LevelsByOrdinal[2][0].Properties.BuildingIDs)

	got, ok := v.Anchor(s.anchor)
	require.True(t, ok)
	require.NotNil(t, got.Properties.AddressID)
	assert.Equal(t, "addr-2", *got.Properties.AddressID)
}

func TestDecode_OrdinalTies(t *testing.T) {
	a, s := newScenario()
	second, third := uuid.New(), uuid.New()
	a.Add(archive.Level, testutil.Level(second, 2, "L2b"))
	a.Add(archive.Level, testutil.Level(third, -1, "B1"))

	v, err := decode(t, a)
	require.NoError(t, err)

	require.Len(t, v.LevelsByOrdinal[2], 2)
	assert.Equal(t, s.level, v.LevelsByOrdinal[2][0].Identifier)
	assert.Equal(t, second, v.LevelsByOrdinal[2][1].Identifier)
	assert.Equal(t, []int{-1, 2}, v.Ordinals())

	levels := v.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, third, levels[0].Identifier)

	empty := v.LevelsByOrdinal[2][1]
	assert.NotNil(t, empty.Units)
	assert.Empty(t, empty.Units)
}

func TestDecode_Canceled(t *testing.T) {
	a, _ := newScenario()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := imdf.Decode(ctx, base, imdf.WithReader(a.MemoryReader(base)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_Metrics(t *testing.T) {
	a, _ := newScenario()
	metrics := &imdf.BasicMetricsCollector{}

	_, err := decode(t, a, imdf.WithMetricsCollector(metrics))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.DecodeCount)
	assert.Zero(t, stats.DecodeErrors)
	assert.Equal(t, int64(7), stats.FileDecodeCount)
	assert.Equal(t, int64(5), stats.FeaturesDecoded)

	a.Remove(archive.Unit)
	_, err = decode(t, a, imdf.WithMetricsCollector(metrics))
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GetStats().DecodeErrors)
	assert.GreaterOrEqual(t, metrics.GetStats().FileDecodeErrors, int64(1))
}

func TestDecoder_Concurrent(t *testing.T) {
	g := testutil.Generate(testutil.NewRNG(11), testutil.GenerateConfig{
		Levels: 3, UnitsPerLevel: 5, Amenities: 10, Occupants: 10,
	})
	d := imdf.New(imdf.WithReader(g.Archive.MemoryReader(base)))

	want, err := d.Decode(context.Background(), base)
	require.NoError(t, err)

	results := make(chan *imdf.Venue, 8)
	errs := make(chan error, 8)
	for range 8 {
		go func() {
			v, err := d.Decode(context.Background(), base)
			results <- v
			errs <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-errs)
		got := <-results
		assert.NotSame(t, want, got)
		assert.Equal(t, summarize(want), summarize(got))
	}
}

func mustUnit(t *testing.T, v *imdf.Venue, id uuid.UUID) *imdf.Unit {
	t.Helper()
	u, ok := v.Unit(id)
	require.True(t, ok)
	return u
}

// graphSummary captures identifiers, grouping and relationship cardinalities.
type graphSummary struct {
	Venue     uuid.UUID
	Levels    map[int][]uuid.UUID
	Units     map[uuid.UUID][]uuid.UUID
	Amenities map[uuid.UUID]int
	Occupants map[uuid.UUID][]uuid.UUID
	Coords    map[uuid.UUID]orb.Point
}

func summarize(v *imdf.Venue) graphSummary {
	s := graphSummary{
		Venue:     v.Identifier,
		Levels:    map[int][]uuid.UUID{},
		Units:     map[uuid.UUID][]uuid.UUID{},
		Amenities: map[uuid.UUID]int{},
		Occupants: map[uuid.UUID][]uuid.UUID{},
		Coords:    map[uuid.UUID]orb.Point{},
	}
	for ordinal, levels := range v.LevelsByOrdinal {
		for _, l := range levels {
			s.Levels[ordinal] = append(s.Levels[ordinal], l.Identifier)
			for _, u := range l.Units {
				s.Units[l.Identifier] = append(s.Units[l.Identifier], u.Identifier)
				s.Amenities[u.Identifier] = len(u.Amenities)
				for _, o := range u.Occupants {
					s.Occupants[u.Identifier] = append(s.Occupants[u.Identifier], o.Identifier)
				}
			}
		}
	}
	for _, o := range v.Occupants() {
		s.Coords[o.Identifier] = o.Coordinate
	}
	return s
}
