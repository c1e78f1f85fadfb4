package archive

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/imdf/resource"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	t.Run("Names", func(t *testing.T) {
		assert.Equal(t, "unit", Unit.String())
		assert.Equal(t, "unit.geojson", Unit.Filename())
		assert.Equal(t, "venue.geojson", Venue.Filename())
		assert.Equal(t, "relationship.geojson", Relationship.Filename())
		assert.Equal(t, "File(99)", File(99).String())
	})

	t.Run("Files", func(t *testing.T) {
		files := Files()
		require.Len(t, files, 17)
		assert.Equal(t, Address, files[0])
		assert.Equal(t, Venue, files[16])
	})

	t.Run("Required", func(t *testing.T) {
		assert.Equal(t, []File{Venue, Level, Unit, Opening, Amenity, Occupant, Anchor}, Required())
	})
}

func TestArchive_Path(t *testing.T) {
	tests := []struct {
		base string
		file File
		want string
	}{
		{"", Venue, "venue.geojson"},
		{"data", Level, "data/level.geojson"},
		{"data/", Unit, "data/unit.geojson"},
		{"/srv/imdf", Anchor, "/srv/imdf/anchor.geojson"},
		{"./a/../b", Opening, "b/opening.geojson"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			a := New(tt.base)
			assert.Equal(t, tt.base, a.BaseDirectory())
			assert.Equal(t, tt.want, a.Path(tt.file))
		})
	}
}

func TestArchive_Load(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryReader()
	mem.Put("imdf/venue.geojson", []byte(`{"type":"FeatureCollection","features":[]}`))

	a := New("imdf")

	t.Run("Success", func(t *testing.T) {
		data, err := a.Load(ctx, mem, Venue)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := a.Load(ctx, mem, Level)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, NotFound(err))

		var ioErr *IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "imdf/level.geojson", ioErr.Path)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := a.Load(cctx, mem, Venue)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemoryReader(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryReader()

	data := []byte("hello")
	mem.Put("./a/b.geojson", data)
	data[0] = 'j'

	got, err := mem.ReadFile(ctx, "a//b.geojson")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got[0] = 'x'
	again, err := mem.ReadFile(ctx, "/a/b.geojson")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))

	mem.Put("a/c.geojson", nil)
	mem.Put("z.geojson", nil)
	assert.Equal(t, []string{"a/b.geojson", "a/c.geojson"}, mem.List("a/"))

	mem.Delete("a/b.geojson")
	_, err = mem.ReadFile(ctx, "a/b.geojson")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalReader(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "venue.geojson"), []byte("{}"), 0o600))

	a := New(filepath.ToSlash(dir))
	r := NewLocalReader()

	data, err := a.Load(ctx, r, Venue)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	_, err = a.Load(ctx, r, Unit)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestZipReader(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"export/venue.geojson":          `{"venue":true}`,
		"export/level.geojson":          `{"level":true}`,
		"__MACOSX/export/venue.geojson": `junk`,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	_, err := zw.Create("export/")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := NewZipReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	defer zr.Close()

	assert.Len(t, zr.Names(), 3)
	assert.Equal(t, "export", zr.Root())

	a := New(zr.Root())
	data, err := a.Load(ctx, zr, Venue)
	require.NoError(t, err)
	assert.Equal(t, `{"venue":true}`, string(data))

	_, err = a.Load(ctx, zr, Unit)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("OpenZip", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "archive.zip")
		require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o600))

		zr, err := OpenZip(p)
		require.NoError(t, err)
		defer func() { require.NoError(t, zr.Close()) }()

		data, err := zr.ReadFile(ctx, "export/level.geojson")
		require.NoError(t, err)
		assert.Equal(t, `{"level":true}`, string(data))
	})

	t.Run("NotAZip", func(t *testing.T) {
		_, err := NewZipReader(bytes.NewReader([]byte("nope")), 4)
		assert.Error(t, err)
	})
}

func TestLimitedReader(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryReader()
	mem.Put("venue.geojson", []byte("{}"))

	rc := resource.NewController(resource.Config{MaxConcurrentLoads: 1, IOLimitBytesPerSec: 1024})
	r := NewLimitedReader(mem, rc)

	data, err := r.ReadFile(ctx, "venue.geojson")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	// The load slot is released after each read.
	assert.True(t, rc.TryAcquireLoad())
	rc.ReleaseLoad()

	_, err = r.ReadFile(ctx, "missing.geojson")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("SlotBusy", func(t *testing.T) {
		require.NoError(t, rc.AcquireLoad(ctx))
		defer rc.ReleaseLoad()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.ReadFile(cctx, "venue.geojson")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("NilController", func(t *testing.T) {
		data, err := NewLimitedReader(mem, nil).ReadFile(ctx, "venue.geojson")
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	})
}
