package apivalidation

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/goccy/go-json"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationErrors maps field names to their errors. It is ozzo-validation's
// [validation.Errors], so handlers can match it with errors.As.
type ValidationErrors = validation.Errors

// Validate is the single entry point for validation. Types implementing
// [Ruler] or [ContextRuler] have their fields checked, [ValueRuler] types
// have their own rules applied, and collections of Rulers are checked
// element by element.
func Validate(value any) error {
	return validateCore(context.Background(), value)
}

// ValidateCtx is like [Validate] but passes ctx to [ContextRuler.Rules].
func ValidateCtx(ctx context.Context, value any) error {
	return validateCore(ctx, value)
}

// UnmarshalAndValidate decodes JSON into dst, normalizes it and validates it.
func UnmarshalAndValidate(b []byte, dst any) error {
	return UnmarshalAndValidateCtx(context.Background(), b, dst)
}

// UnmarshalAndValidateCtx is like [UnmarshalAndValidate] with a context.
func UnmarshalAndValidateCtx(ctx context.Context, b []byte, dst any) error {
	if err := json.Unmarshal(b, dst); err != nil {
		return &DecodeError{Err: err}
	}
	normalizeRecursive(dst)
	return ValidateCtx(ctx, dst)
}

// DecodeAndValidate reads a JSON document from r into dst, then normalizes
// and validates it.
func DecodeAndValidate(r io.Reader, dst any) error {
	return DecodeAndValidateCtx(context.Background(), r, dst)
}

// DecodeAndValidateCtx is like [DecodeAndValidate] with a context.
func DecodeAndValidateCtx(ctx context.Context, r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return &DecodeError{Err: err}
	}
	normalizeRecursive(dst)
	return ValidateCtx(ctx, dst)
}

// DecodeError reports a body that is not valid JSON for the target type.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "invalid JSON body: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

func validateCore(ctx context.Context, value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil
	}

	if fields, ok := rulesOf(ctx, value); ok {
		return validation.ValidateStruct(value, convertFieldRules(ctx, value, fields)...)
	}
	// ozzo hands struct fields to the bridge by value; the rules live on *T.
	if rv.Kind() == reflect.Struct {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		if fields, ok := rulesOf(ctx, ptr.Interface()); ok {
			return validation.ValidateStruct(ptr.Interface(), convertFieldRules(ctx, ptr.Interface(), fields)...)
		}
	}

	if vr, ok := value.(ValueRuler); ok {
		for _, rule := range vr.ValueRules() {
			if err := rule.Validate(value); err != nil {
				return err
			}
		}
		return nil
	}

	rv = reflect.Indirect(rv)
	switch rv.Kind() {
	case reflect.Map:
		if autoValidates(rv.Type().Elem()) {
			return validateMap(ctx, rv)
		}
	case reflect.Slice, reflect.Array:
		if autoValidates(rv.Type().Elem()) {
			return validateSlice(ctx, rv)
		}
	case reflect.Interface:
		if !rv.IsNil() {
			return validateCore(ctx, rv.Elem().Interface())
		}
	}
	return nil
}

// autoValidates reports whether elements of t, possibly nested in further
// collections, declare rules.
func autoValidates(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		_, ok := rulesOf(context.Background(), reflect.New(t).Interface())
		return ok
	case reflect.Slice, reflect.Array, reflect.Map:
		return autoValidates(t.Elem())
	}
	return false
}

func validateElement(ctx context.Context, v reflect.Value) error {
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}
	if v.Kind() == reflect.Struct {
		ptr := reflect.New(v.Type())
		if v.CanAddr() {
			ptr = v.Addr()
		} else {
			ptr.Elem().Set(v)
		}
		return validateCore(ctx, ptr.Interface())
	}
	return validateCore(ctx, v.Interface())
}

func validateSlice(ctx context.Context, rv reflect.Value) error {
	errs := ValidationErrors{}
	for i := range rv.Len() {
		if err := validateElement(ctx, rv.Index(i)); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	return errs.Filter()
}

func validateMap(ctx context.Context, rv reflect.Value) error {
	errs := ValidationErrors{}
	iter := rv.MapRange()
	for iter.Next() {
		if err := validateElement(ctx, iter.Value()); err != nil {
			errs[fmt.Sprint(iter.Key().Interface())] = err
		}
	}
	return errs.Filter()
}

// rulerBridge lets ozzo recurse into fields whose types declare their own
// rules.
type rulerBridge struct {
	ctx context.Context
}

func (b rulerBridge) Validate(value any) error {
	if value == nil {
		return nil
	}
	return validateCore(b.ctx, value)
}

// convertFieldRules turns our field rules into ozzo's, appending the bridge
// to every field.
func convertFieldRules(ctx context.Context, structPtr any, fields []*FieldRules) []*validation.FieldRules {
	flat := expandFields(ctx, structPtr, fields)
	out := make([]*validation.FieldRules, len(flat))
	for i, fr := range flat {
		rules := make([]validation.Rule, 0, len(fr.rules)+1)
		for _, r := range fr.rules {
			rules = append(rules, r)
		}
		rules = append(rules, rulerBridge{ctx: ctx})
		out[i] = validation.Field(fr.fieldPtr, rules...)
	}
	return out
}
