package imdf

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/imdf/archive"
	"github.com/hupe1980/imdf/feature"
	"github.com/hupe1980/imdf/geometry"
	"github.com/hupe1980/imdf/resource"
)

// Decoder turns IMDF archives into venue graphs.
// A Decoder is safe for concurrent use; every Decode call builds an
// independent graph.
type Decoder struct {
	reader      archive.Reader
	provider    geometry.Provider
	concurrency int
	metrics     MetricsCollector
	logger      *Logger
	rc          *resource.Controller
}

// New creates a Decoder.
func New(optFns ...Option) *Decoder {
	o := applyOptions(optFns)

	reader := o.reader
	if o.resourceController != nil {
		reader = archive.NewLimitedReader(reader, o.resourceController)
	}

	return &Decoder{
		reader:      reader,
		provider:    o.provider,
		concurrency: o.concurrency,
		metrics:     o.metricsCollector,
		logger:      o.logger,
		rc:          o.resourceController,
	}
}

// Decode decodes the archive in dir with a Decoder configured by optFns.
func Decode(ctx context.Context, dir string, optFns ...Option) (*Venue, error) {
	return New(optFns...).Decode(ctx, dir)
}

// decoded holds the per-kind results of the decode phase.
type decoded struct {
	venues    []*Venue
	levels    []*Level
	units     []*Unit
	openings  []*Opening
	amenities []*Amenity
	occupants []*Occupant
	anchors   []*Anchor
}

// Decode reads the seven linked feature files below dir, decodes them in
// parallel and links them into a venue graph.
//
// The result is all-or-nothing: the first failure is returned and no partial
// graph is produced. Failures to read a file match ErrIO, malformed content
// matches ErrInvalidData.
func (d *Decoder) Decode(ctx context.Context, dir string) (*Venue, error) {
	start := time.Now()
	logger := d.logger.WithDirectory(dir)

	v, err := d.decode(ctx, logger, archive.New(dir))

	duration := time.Since(start)
	d.metrics.RecordDecode(duration, err)
	var stats LinkStats
	if v != nil {
		stats = v.stats
	}
	logger.LogDecode(ctx, stats, duration, err)

	return v, err
}

func (d *Decoder) decode(ctx context.Context, logger *Logger, a archive.Archive) (*Venue, error) {
	var res decoded

	g, gctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}

	g.Go(func() (err error) {
		res.venues, err = decodeFile(gctx, d, logger, a, archive.Venue, newVenue)
		return err
	})
	g.Go(func() (err error) {
		res.levels, err = decodeFile(gctx, d, logger, a, archive.Level, newLevel)
		return err
	})
	g.Go(func() (err error) {
		res.units, err = decodeFile(gctx, d, logger, a, archive.Unit, newUnit)
		return err
	})
	g.Go(func() (err error) {
		res.openings, err = decodeFile(gctx, d, logger, a, archive.Opening, newOpening)
		return err
	})
	g.Go(func() (err error) {
		res.amenities, err = decodeFile(gctx, d, logger, a, archive.Amenity, newAmenity)
		return err
	})
	g.Go(func() (err error) {
		res.occupants, err = decodeFile(gctx, d, logger, a, archive.Occupant, newOccupant)
		return err
	})
	g.Go(func() (err error) {
		res.anchors, err = decodeFile(gctx, d, logger, a, archive.Anchor, newAnchor)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newLinker(d.metrics, logger).link(ctx, res)
}

// decodeFile loads one feature file and decodes every feature in it with
// properties type P, wrapping each into the kind's type T.
func decodeFile[P, T any](
	ctx context.Context,
	d *Decoder,
	logger *Logger,
	a archive.Archive,
	file archive.File,
	wrap func(feature.Feature[P]) T,
) (out []T, err error) {
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		d.metrics.RecordFileDecode(file.String(), len(out), duration, err)
		logger.LogFileDecoded(ctx, file.String(), len(out), duration, err)
	}()

	data, err := a.Load(ctx, d.reader, file)
	if err != nil {
		return nil, err
	}

	reserved, err := d.rc.AcquireMemory(ctx, int64(len(data)))
	if err != nil {
		return nil, &archive.IOError{Path: a.Path(file), Err: err}
	}
	defer d.rc.ReleaseMemory(reserved)

	raws, err := d.provider.DecodeFeatures(data)
	if err != nil {
		var fe *geometry.FeatureError
		if errors.As(err, &fe) {
			return nil, feature.Invalid(file.String(), fe.ID, fe.Err)
		}
		return nil, feature.Invalid(file.String(), "", err)
	}

	kind := file.String()
	out = make([]T, 0, len(raws))
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := feature.Decode[P](kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, wrap(f))
	}
	return out, nil
}
