package geometry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON decodes RFC 7946 FeatureCollections.
//
// Feature ids must be JSON strings to be reported; numeric ids are dropped so
// that the identifier check downstream rejects them. Properties are passed on
// untouched. Geometry decoding is delegated to orb/geojson, one feature at a
// time, so a bad geometry is reported as a *FeatureError naming its feature.
type GeoJSON struct{}

type featureCollection struct {
	Type     string        `json:"type"`
	Features []wireFeature `json:"features"`
}

type wireFeature struct {
	ID         json.RawMessage `json:"id"`
	Properties json.RawMessage `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

var nullLiteral = []byte("null")

// DecodeFeatures implements Provider.
func (GeoJSON) DecodeFeatures(data []byte) ([]RawFeature, error) {
	var fc featureCollection
	if err := gojson.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, fc.Type)
	}

	out := make([]RawFeature, 0, len(fc.Features))
	for i := range fc.Features {
		wf := &fc.Features[i]

		raw := RawFeature{
			ID:         stringID(wf.ID),
			Properties: rawObject(wf.Properties),
		}
		if g := rawObject(wf.Geometry); g != nil {
			geom, err := geojson.UnmarshalGeometry(g)
			if err != nil {
				return nil, &FeatureError{Index: i, ID: raw.RawID(), Err: err}
			}
			raw.Geometry = flatten(geom.Geometry(), nil)
		}
		out = append(out, raw)
	}
	return out, nil
}

func stringID(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var s string
	if err := gojson.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func rawObject(raw json.RawMessage) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, nullLiteral) {
		return nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}
