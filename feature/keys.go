package feature

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	gojson "github.com/goccy/go-json"
	"github.com/iancoleman/strcase"
)

var errNotObject = errors.New("properties must be a JSON object")

// TranslateKeys rewrites the top-level keys of a JSON object from snake_case
// to lowerCamel case ("level_id" becomes "levelId"). Nested values are copied
// verbatim; localized name maps are keyed by language tags and must not be
// touched.
//
// When two source keys translate to the same name, the one sorting last wins.
// Keys whose value is null do not count as present for required checks.
func TranslateKeys(data []byte) ([]byte, error) {
	translated, _, err := translateKeys(data)
	return translated, err
}

func translateKeys(data []byte) ([]byte, map[string]struct{}, error) {
	var obj map[string]json.RawMessage
	if err := gojson.Unmarshal(data, &obj); err != nil {
		return nil, nil, err
	}
	if obj == nil {
		return nil, nil, errNotObject
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make(map[string]json.RawMessage, len(obj))
	present := make(map[string]struct{}, len(obj))
	for _, k := range keys {
		name := strcase.ToLowerCamel(k)
		out[name] = obj[k]
		if !bytes.Equal(bytes.TrimSpace(obj[k]), []byte("null")) {
			present[name] = struct{}{}
		}
	}

	b, err := gojson.Marshal(out)
	if err != nil {
		return nil, nil, fmt.Errorf("re-encode properties: %w", err)
	}
	return b, present, nil
}
