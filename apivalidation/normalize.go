package apivalidation

import "reflect"

// Normalizer is implemented by request types that clean themselves up after
// decoding, for example by trimming strings. The decode helpers call
// Normalize on the top-level value first, then depth-first on every nested
// struct, pointer, slice element and map value that implements it.
type Normalizer interface {
	Normalize()
}

func normalizeRecursive(a any) {
	if a == nil {
		return
	}
	rv := reflect.ValueOf(a)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return
	}
	callNormalize(a)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	walkNormalize(rv)
}

func callNormalize(v any) {
	if n, ok := v.(Normalizer); ok {
		n.Normalize()
	}
}

// walkNormalize visits the children of rv. rv itself has already been
// normalized by the caller.
func walkNormalize(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Struct:
		for i := range rv.NumField() {
			if rv.Type().Field(i).IsExported() {
				normalizeValue(rv.Field(i))
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			normalizeValue(rv.Index(i))
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			val := iter.Value()
			if val.Kind() != reflect.Struct {
				normalizeValue(val)
				continue
			}
			// Map values are not addressable: normalize a copy and store it.
			cp := reflect.New(val.Type())
			cp.Elem().Set(val)
			callNormalize(cp.Interface())
			walkNormalize(cp.Elem())
			rv.SetMapIndex(iter.Key(), cp.Elem())
		}
	}
}

func normalizeValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Struct:
		if v.CanAddr() {
			callNormalize(v.Addr().Interface())
		}
		walkNormalize(v)
	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		callNormalize(v.Interface())
		walkNormalize(v.Elem())
	case reflect.Slice, reflect.Array, reflect.Map:
		walkNormalize(v)
	}
}
