package feature

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type presentKeysKey struct{}

// validate checks properties structs after decoding.
//
// Field names reported by the validator are the json tag names so that the
// "present" rule can look them up among the keys found on the wire. Use
// "required" where the zero value is never valid and "present" for scalars
// like ordinal or outdoor where zero is a legal value but the key must exist.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidationCtx("present", keyPresent); err != nil {
		panic(err)
	}
	return v
}

func keyPresent(ctx context.Context, fl validator.FieldLevel) bool {
	keys, ok := ctx.Value(presentKeysKey{}).(map[string]struct{})
	if !ok {
		return false
	}
	_, ok = keys[fl.FieldName()]
	return ok
}

func validateProperties(v any, present map[string]struct{}) error {
	ctx := context.WithValue(context.Background(), presentKeysKey{}, present)
	return validate.StructCtx(ctx, v)
}
