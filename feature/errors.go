package feature

import (
	"errors"
	"fmt"
)

// ErrInvalidData is the sentinel for every malformed-input failure: a bad
// identifier, missing or schema-violating properties, a wrong geometry shape
// or a broken required reference.
var ErrInvalidData = errors.New("imdf: invalid data")

// Error reports which kind and which feature could not be decoded or linked.
//
// errors.Is(err, ErrInvalidData) holds for every *Error. The underlying cause
// (if any) can be accessed via errors.Unwrap / errors.As.
type Error struct {
	// Kind is the feature kind or file name, e.g. "unit".
	Kind string
	// FeatureID is the raw id string as found in the file, empty if absent.
	FeatureID string
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.FeatureID != "" && e.Err != nil:
		return fmt.Sprintf("imdf: invalid %s feature %q: %v", e.Kind, e.FeatureID, e.Err)
	case e.FeatureID != "":
		return fmt.Sprintf("imdf: invalid %s feature %q", e.Kind, e.FeatureID)
	case e.Err != nil:
		return fmt.Sprintf("imdf: invalid %s data: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("imdf: invalid %s data", e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidData}
	}
	return []error{ErrInvalidData, e.Err}
}

// Invalid builds an *Error for kind and feature id.
func Invalid(kind, featureID string, err error) *Error {
	return &Error{Kind: kind, FeatureID: featureID, Err: err}
}
