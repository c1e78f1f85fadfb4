// Package feature decodes single IMDF features into strongly-typed records.
//
// A [Feature] carries the parts every IMDF kind shares: a UUID identifier, a
// kind-specific properties record and the feature's shapes. [Decode] builds
// one from a [geometry.RawFeature]:
//
//	f, err := feature.Decode[UnitProperties]("unit", raw)
//
// Property keys arrive in snake_case and are translated to lowerCamel before
// they are matched against the json tags of the properties type. Required
// fields are declared with `validate:"required"` (zero value invalid) or
// `validate:"present"` (key must exist, zero allowed).
package feature

import (
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/hupe1980/imdf/geometry"
)

var (
	errMissingID         = errors.New("missing identifier")
	errMissingProperties = errors.New("missing properties")
)

// canonicalUUIDLen is the length of the 8-4-4-4-12 textual form.
const canonicalUUIDLen = 36

// Feature is the shared shape of all IMDF kinds.
//
// Kinds embed it and add their relationship slots. Geometry order is
// significant: point-like kinds are located by Geometry[0].
type Feature[P any] struct {
	Identifier uuid.UUID
	Properties P
	Geometry   []geometry.Shape
}

// ID returns the identifier of the feature.
func (f *Feature[P]) ID() uuid.UUID { return f.Identifier }

// ParseIdentifier parses the canonical textual UUID form only. Braced, URN
// and hex-only forms accepted by uuid.Parse are rejected.
func ParseIdentifier(s string) (uuid.UUID, error) {
	if len(s) != canonicalUUIDLen {
		return uuid.Nil, fmt.Errorf("invalid identifier %q", s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	return id, nil
}

// Decode turns raw into a Feature of properties type P. kind names the
// feature kind in errors. Every failure is an *Error matching ErrInvalidData.
func Decode[P any](kind string, raw geometry.RawFeature) (Feature[P], error) {
	if raw.ID == nil {
		return Feature[P]{}, Invalid(kind, "", errMissingID)
	}
	rawID := *raw.ID

	id, err := ParseIdentifier(rawID)
	if err != nil {
		return Feature[P]{}, Invalid(kind, rawID, err)
	}

	if raw.Properties == nil {
		return Feature[P]{}, Invalid(kind, rawID, errMissingProperties)
	}

	props, err := DecodeProperties[P](raw.Properties)
	if err != nil {
		return Feature[P]{}, Invalid(kind, rawID, err)
	}

	return Feature[P]{
		Identifier: id,
		Properties: props,
		Geometry:   raw.Geometry,
	}, nil
}

// DecodeProperties translates the keys of data and decodes it into P,
// enforcing P's validate tags.
func DecodeProperties[P any](data []byte) (P, error) {
	var props P

	translated, present, err := translateKeys(data)
	if err != nil {
		return props, fmt.Errorf("decode properties: %w", err)
	}
	if err := gojson.Unmarshal(translated, &props); err != nil {
		return props, fmt.Errorf("decode properties: %w", err)
	}
	if err := validateProperties(&props, present); err != nil {
		return props, fmt.Errorf("validate properties: %w", err)
	}
	return props, nil
}
