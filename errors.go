package imdf

import (
	"errors"

	"github.com/hupe1980/imdf/archive"
	"github.com/hupe1980/imdf/feature"
	"github.com/hupe1980/imdf/geometry"
)

var (
	// ErrInvalidData is matched by every failure caused by malformed archive
	// content. The concrete error is a *feature.Error naming kind and feature.
	ErrInvalidData = feature.ErrInvalidData

	// ErrIO is matched by every failure to read an archive file. The concrete
	// error is an *archive.IOError naming the path.
	ErrIO = archive.ErrIO

	// ErrNotFound is matched when an archive file does not exist.
	ErrNotFound = archive.ErrNotFound

	// ErrVenueCount is returned when the venue file does not hold exactly one venue.
	ErrVenueCount = errors.New("archive must contain exactly one venue")

	// ErrMissingAnchor is returned when an occupant references an unknown anchor.
	ErrMissingAnchor = errors.New("anchor not found")

	// ErrNotPoint is returned when an amenity or anchor is not located by a point.
	ErrNotPoint = geometry.ErrNotPoint
)

// Error is the concrete error for invalid archive content.
type Error = feature.Error

// IOError is the concrete error for unreadable archive files.
type IOError = archive.IOError
