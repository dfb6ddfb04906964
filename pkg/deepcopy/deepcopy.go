// Package deepcopy duplicates nested configuration values so that no map, slice
// or pointer in the copy is shared with the original.
//
// Empty maps and slices stay empty (never nil) and nil containers stay nil.
// Structs are copied by value with their exported fields copied recursively,
// which keeps time.Time and uuid.UUID as plain scalars. Cyclic values are not
// supported.
package deepcopy

import (
	"reflect"

	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

// Copy returns a structurally equal duplicate of value.
// A nil value is rejected with an InvalidArgumentError.
func Copy(value any) (any, error) {
	if value == nil {
		return nil, hydraterrors.NewInvalidArgumentError("value", "a value to copy is required")
	}
	return copyValue(reflect.ValueOf(value)).Interface(), nil
}

// Of is the typed form of Copy.
func Of[T any](value T) (T, error) {
	var zero T
	copied, err := Copy(any(value))
	if err != nil {
		return zero, err
	}
	return copied.(T), nil
}

// Map copies a string-keyed attribute map. A nil map is rejected.
func Map(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, hydraterrors.NewInvalidArgumentError("value", "a map to copy is required")
	}
	return Of(m)
}

func copyValue(src reflect.Value) reflect.Value {
	switch src.Kind() {
	case reflect.Map:
		if src.IsNil() {
			return reflect.Zero(src.Type())
		}
		dst := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(copyValue(iter.Key()), copyValue(iter.Value()))
		}
		return dst

	case reflect.Slice:
		if src.IsNil() {
			return reflect.Zero(src.Type())
		}
		dst := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			dst.Index(i).Set(copyValue(src.Index(i)))
		}
		return dst

	case reflect.Array:
		dst := reflect.New(src.Type()).Elem()
		for i := 0; i < src.Len(); i++ {
			dst.Index(i).Set(copyValue(src.Index(i)))
		}
		return dst

	case reflect.Pointer:
		if src.IsNil() {
			return reflect.Zero(src.Type())
		}
		dst := reflect.New(src.Type().Elem())
		dst.Elem().Set(copyValue(src.Elem()))
		return dst

	case reflect.Interface:
		if src.IsNil() {
			return reflect.Zero(src.Type())
		}
		inner := copyValue(src.Elem())
		dst := reflect.New(src.Type()).Elem()
		dst.Set(inner)
		return dst

	case reflect.Struct:
		dst := reflect.New(src.Type()).Elem()
		dst.Set(src)
		for i := 0; i < src.NumField(); i++ {
			if !dst.Field(i).CanSet() {
				continue
			}
			dst.Field(i).Set(copyValue(src.Field(i)))
		}
		return dst

	default:
		return src
	}
}
