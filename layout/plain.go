package layout

import (
	"fmt"
	"reflect"

	"github.com/wippyai/rawbuf/errors"
)

// CheckPlain reports whether values of t can be stored byte for byte in raw
// container storage. The type must not contain anything the garbage
// collector tracks: pointers, slices, strings, maps, interfaces, channels or
// funcs, at any depth.
func CheckPlain(t reflect.Type) error {
	if t == nil {
		return errors.InvalidArgument(errors.ContainerLayout, "CheckPlain", "nil type")
	}
	if err := checkType(t); err != nil {
		return errors.New(errors.ContainerLayout, errors.KindInvalidArgument).
			Op("CheckPlain").
			Value(t.String()).
			Detail("type %s cannot be stored in raw memory: %v", t, err).
			Build()
	}
	return nil
}

func checkType(t reflect.Type) error {
	switch kind := t.Kind(); kind {
	case reflect.Array:
		return checkType(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if err := checkType(field.Type); err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
		}
		return nil
	default:
		if kind >= reflect.Bool && kind <= reflect.Complex128 {
			return nil
		}
		return fmt.Errorf("unsupported kind %q", kind.String())
	}
}
