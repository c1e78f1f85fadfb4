package testutil

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/hupe1980/imdf/archive"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UUID returns a pseudo-random version 4 UUID.
func (r *RNG) UUID() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := uuid.NewRandomFromReader(r.rand)
	if err != nil {
		panic(err) // math/rand never fails
	}
	return id
}

// Point returns a pseudo-random point inside the given bounds.
func (r *RNG) Point(bound orb.Bound) orb.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return orb.Point{
		bound.Min[0] + r.rand.Float64()*(bound.Max[0]-bound.Min[0]),
		bound.Min[1] + r.rand.Float64()*(bound.Max[1]-bound.Min[1]),
	}
}

// Feature is one feature of a synthetic archive. ID and Properties are
// written verbatim, so tests can produce invalid ids or snake_case keys.
type Feature struct {
	ID         any
	Properties map[string]any
	Geometry   orb.Geometry
}

type wireFeature struct {
	Type       string            `json:"type"`
	ID         any               `json:"id,omitempty"`
	Properties map[string]any    `json:"properties"`
	Geometry   *geojson.Geometry `json:"geometry"`
}

type wireCollection struct {
	Type     string        `json:"type"`
	Features []wireFeature `json:"features"`
}

// Archive is a synthetic IMDF archive. All seven linked files exist (as
// empty collections) unless removed.
type Archive struct {
	mu       sync.Mutex
	features map[archive.File][]Feature
	raw      map[archive.File][]byte
	removed  map[archive.File]bool
}

// NewArchive creates an empty archive.
func NewArchive() *Archive {
	return &Archive{
		features: make(map[archive.File][]Feature),
		raw:      make(map[archive.File][]byte),
		removed:  make(map[archive.File]bool),
	}
}

// Add appends features to file.
func (a *Archive) Add(file archive.File, features ...Feature) *Archive {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.features[file] = append(a.features[file], features...)
	delete(a.removed, file)
	return a
}

// SetRaw replaces the content of file with data.
func (a *Archive) SetRaw(file archive.File, data []byte) *Archive {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raw[file] = data
	delete(a.removed, file)
	return a
}

// Remove drops file from the archive.
func (a *Archive) Remove(file archive.File) *Archive {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed[file] = true
	return a
}

// Bytes returns the encoded content of file.
func (a *Archive) Bytes(file archive.File) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.encode(file)
}

func (a *Archive) encode(file archive.File) ([]byte, error) {
	if data, ok := a.raw[file]; ok {
		return data, nil
	}

	coll := wireCollection{Type: "FeatureCollection", Features: []wireFeature{}}
	for _, f := range a.features[file] {
		wf := wireFeature{Type: "Feature", ID: f.ID, Properties: f.Properties}
		if f.Geometry != nil {
			wf.Geometry = geojson.NewGeometry(f.Geometry)
		}
		coll.Features = append(coll.Features, wf)
	}
	return gojson.Marshal(coll)
}

// files returns the files to materialize, sorted.
func (a *Archive) files() []archive.File {
	set := make(map[archive.File]struct{})
	for _, f := range archive.Required() {
		set[f] = struct{}{}
	}
	for f := range a.features {
		set[f] = struct{}{}
	}
	for f := range a.raw {
		set[f] = struct{}{}
	}

	var files []archive.File
	for f := range set {
		if !a.removed[f] {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })
	return files
}

func (a *Archive) each(fn func(file archive.File, data []byte) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, f := range a.files() {
		data, err := a.encode(f)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f, err)
		}
		if err := fn(f, data); err != nil {
			return err
		}
	}
	return nil
}

// MemoryReader returns an in-memory reader holding the archive below base.
func (a *Archive) MemoryReader(base string) *archive.MemoryReader {
	mem := archive.NewMemoryReader()
	if err := a.each(func(file archive.File, data []byte) error {
		mem.Put(path.Join(base, file.Filename()), data)
		return nil
	}); err != nil {
		panic(err)
	}
	return mem
}

// WriteDir writes the archive files into dir.
func (a *Archive) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return a.each(func(file archive.File, data []byte) error {
		return os.WriteFile(filepath.Join(dir, file.Filename()), data, 0o600)
	})
}

// WriteZip writes the archive as a zip file with all entries below base.
func (a *Archive) WriteZip(w io.Writer, base string) error {
	zw := zip.NewWriter(w)
	if err := a.each(func(file archive.File, data []byte) error {
		fw, err := zw.Create(path.Join(base, file.Filename()))
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		return err
	}); err != nil {
		return err
	}
	return zw.Close()
}

func en(s string) map[string]string {
	return map[string]string{"en": s}
}

// Venue returns a venue feature.
func Venue(id uuid.UUID, category string) Feature {
	return Feature{
		ID: id.String(),
		Properties: map[string]any{
			"category": category,
			"name":     en("Test Venue"),
		},
		Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
	}
}

// Level returns a level feature.
func Level(id uuid.UUID, ordinal int, shortName string) Feature {
	return Feature{
		ID: id.String(),
		Properties: map[string]any{
			"ordinal":      ordinal,
			"category":     "unspecified",
			"short_name":   en(shortName),
			"outdoor":      false,
			"building_ids": []string{},
		},
		Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
	}
}

// Unit returns a unit feature on the given level.
func Unit(id, levelID uuid.UUID, category string) Feature {
	return Feature{
		ID: id.String(),
		Properties: map[string]any{
			"category": category,
			"level_id": levelID.String(),
		},
		Geometry: orb.Polygon{{{0, 0}, {0.1, 0}, {0.1, 0.1}, {0, 0.1}, {0, 0}}},
	}
}

// Opening returns an opening feature on the given level.
func Opening(id, levelID uuid.UUID) Feature {
	return Feature{
		ID: id.String(),
		Properties: map[string]any{
			"category": "pedestrian",
			"level_id": levelID.String(),
		},
		Geometry: orb.LineString{{0, 0}, {0.01, 0}},
	}
}

// Amenity returns an amenity feature located at p serving unitIDs.
func Amenity(id uuid.UUID, category string, p orb.Point, unitIDs ...uuid.UUID) Feature {
	ids := make([]string, 0, len(unitIDs))
	for _, u := range unitIDs {
		ids = append(ids, u.String())
	}
	return Feature{
		ID: id.String(),
		Properties: map[string]any{
			"category": category,
			"unit_ids": ids,
		},
		Geometry: p,
	}
}

// Occupant returns an occupant feature located by anchorID.
func Occupant(id, anchorID uuid.UUID, name, category string) Feature {
	return Feature{
		ID: id.String(),
		Properties: map[string]any{
			"category":  category,
			"name":      en(name),
			"anchor_id": anchorID.String(),
			"hours":     nil,
			"phone":     nil,
			"website":   nil,
		},
	}
}

// Anchor returns an anchor feature at p belonging to unitID.
func Anchor(id, unitID uuid.UUID, p orb.Point) Feature {
	return Feature{
		ID: id.String(),
		Properties: map[string]any{
			"address_id": nil,
			"unit_id":    unitID.String(),
		},
		Geometry: p,
	}
}

// GenerateConfig sizes a random archive.
type GenerateConfig struct {
	Levels           int
	UnitsPerLevel    int
	OpeningsPerLevel int
	Amenities        int
	Occupants        int

	// DanglingRatio is the share of amenity and anchor unit references that
	// point at units missing from the archive.
	DanglingRatio float64
}

// Generated describes a random archive and its expected graph.
type Generated struct {
	Archive *Archive

	VenueID  uuid.UUID
	LevelIDs []uuid.UUID
	UnitIDs  []uuid.UUID

	// Ordinals maps each level id to its ordinal.
	Ordinals map[uuid.UUID]int
	// UnitLevel maps each unit id to its level id.
	UnitLevel map[uuid.UUID]uuid.UUID
	// AmenityUnits maps each amenity id to its unit references.
	AmenityUnits map[uuid.UUID][]uuid.UUID
	// OccupantUnit maps each occupant id to the unit named by its anchor.
	OccupantUnit map[uuid.UUID]uuid.UUID
}

var bounds = orb.Bound{Min: orb.Point{13.0, 52.0}, Max: orb.Point{13.1, 52.1}}

// Generate builds a random, valid archive. Ordinals are drawn from a small
// range so that several levels share an ordinal.
func Generate(rng *RNG, cfg GenerateConfig) *Generated {
	g := &Generated{
		Archive:      NewArchive(),
		VenueID:      rng.UUID(),
		Ordinals:     make(map[uuid.UUID]int),
		UnitLevel:    make(map[uuid.UUID]uuid.UUID),
		AmenityUnits: make(map[uuid.UUID][]uuid.UUID),
		OccupantUnit: make(map[uuid.UUID]uuid.UUID),
	}
	g.Archive.Add(archive.Venue, Venue(g.VenueID, "airport"))

	for i := 0; i < cfg.Levels; i++ {
		levelID := rng.UUID()
		ordinal := rng.Intn(max(cfg.Levels/2, 1)) - 1
		g.LevelIDs = append(g.LevelIDs, levelID)
		g.Ordinals[levelID] = ordinal
		g.Archive.Add(archive.Level, Level(levelID, ordinal, fmt.Sprintf("L%d", i)))

		for j := 0; j < cfg.UnitsPerLevel; j++ {
			unitID := rng.UUID()
			g.UnitIDs = append(g.UnitIDs, unitID)
			g.UnitLevel[unitID] = levelID
			g.Archive.Add(archive.Unit, Unit(unitID, levelID, UnitCategory(rng)))
		}
		for j := 0; j < cfg.OpeningsPerLevel; j++ {
			g.Archive.Add(archive.Opening, Opening(rng.UUID(), levelID))
		}
	}

	unitRef := func() uuid.UUID {
		if len(g.UnitIDs) == 0 || float64(rng.Intn(1000))/1000 < cfg.DanglingRatio {
			return rng.UUID()
		}
		return g.UnitIDs[rng.Intn(len(g.UnitIDs))]
	}

	for i := 0; i < cfg.Amenities; i++ {
		id := rng.UUID()
		refs := []uuid.UUID{unitRef()}
		if rng.Intn(2) == 0 {
			refs = append(refs, unitRef())
		}
		g.AmenityUnits[id] = refs
		g.Archive.Add(archive.Amenity, Amenity(id, "bathroom", rng.Point(bounds), refs...))
	}

	for i := 0; i < cfg.Occupants; i++ {
		id, anchorID, unitID := rng.UUID(), rng.UUID(), unitRef()
		g.OccupantUnit[id] = unitID
		g.Archive.Add(archive.Anchor, Anchor(anchorID, unitID, rng.Point(bounds)))
		g.Archive.Add(archive.Occupant, Occupant(id, anchorID, fmt.Sprintf("Occupant %d", i), "office"))
	}

	return g
}

var unitCategories = []string{"room", "walkway", "elevator", "stairs", "restroom", "nonpublic"}

// UnitCategory returns a random unit category.
func UnitCategory(rng *RNG) string {
	return unitCategories[rng.Intn(len(unitCategories))]
}
