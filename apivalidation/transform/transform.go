package transform

import (
	"reflect"
	"strings"
)

// StructTrimSpace runs [strings.TrimSpace] on every string reachable from the
// struct v points to: fields, pointers, slice elements and map values.
func StructTrimSpace(v any) {
	StructStringFunc(v, strings.TrimSpace)
}

// StructCollapseSpace trims strings and collapses inner runs of whitespace to
// a single space, so "Joy  Division " becomes "Joy Division".
func StructCollapseSpace(v any) {
	StructStringFunc(v, func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	})
}

// StructStringFunc applies f to every string reachable from the struct v
// points to. Interface fields are left alone.
func StructStringFunc(v any, f func(string) string) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}
	apply(rv.Elem(), f)
}

// NilIfEmpty sets every *string field of the struct v points to to nil when
// it points to "". Run it after trimming so optional fields sent as blanks
// are stored as absent.
func NilIfEmpty(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}
	s := rv.Elem()
	for i := range s.NumField() {
		field := s.Field(i)
		if !field.CanSet() {
			continue
		}
		switch {
		case field.Kind() == reflect.Pointer && !field.IsNil() && field.Elem().Kind() == reflect.String:
			if field.Elem().String() == "" {
				field.Set(reflect.Zero(field.Type()))
			}
		case field.Kind() == reflect.Struct:
			NilIfEmpty(field.Addr().Interface())
		}
	}
}

// Multi runs fns on v in order.
func Multi(v any, fns ...func(any)) {
	for _, f := range fns {
		f(v)
	}
}

func apply(v reflect.Value, f func(string) string) {
	switch v.Kind() {
	case reflect.String:
		if v.CanSet() {
			v.SetString(f(v.String()))
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if v.Field(i).CanSet() {
				apply(v.Field(i), f)
			}
		}
	case reflect.Pointer:
		if !v.IsNil() {
			apply(v.Elem(), f)
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			apply(v.Index(i), f)
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			val := iter.Value()
			if val.Kind() != reflect.String && val.Kind() != reflect.Struct {
				continue
			}
			cp := reflect.New(val.Type()).Elem()
			cp.Set(val)
			apply(cp, f)
			v.SetMapIndex(iter.Key(), cp)
		}
	}
}
