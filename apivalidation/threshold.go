package apivalidation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Min checks value >= threshold. The threshold's kind decides how the value
// is compared, so pass 0.0 for float fields and 0 for integer fields.
func Min(threshold any) Rule {
	return thresholdRule{
		ThresholdRule: validation.Min(threshold),
		threshold:     threshold,
		min:           true,
	}
}

// Max checks value <= threshold.
func Max(threshold any) Rule {
	return thresholdRule{
		ThresholdRule: validation.Max(threshold),
		threshold:     threshold,
	}
}

type thresholdRule struct {
	validation.ThresholdRule
	threshold any
	min       bool
}

func (r thresholdRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	f, err := toFloat(r.threshold)
	if err != nil {
		return err
	}
	if r.min {
		ref.Value.Min = &f
	} else {
		ref.Value.Max = &f
	}
	return nil
}

var floatType = reflect.TypeOf(float64(0))

func toFloat(v any) (float64, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if !rv.IsValid() || !rv.Type().ConvertibleTo(floatType) {
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
	return rv.Convert(floatType).Float(), nil
}

// Validate also accepts numeric strings such as json.Number, parsing them
// according to the threshold's kind.
func (r thresholdRule) Validate(value any) error {
	value, isNil := validation.Indirect(value)
	if isNil || validation.IsEmpty(value) {
		return nil
	}
	if reflect.ValueOf(value).Kind() != reflect.String {
		return r.ThresholdRule.Validate(value)
	}

	s := reflect.ValueOf(value).String()
	var err error
	switch reflect.ValueOf(r.threshold).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.New("must be an integer")
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return errors.New("must be a non-negative integer")
		}
	case reflect.Float32, reflect.Float64:
		value, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("must be a number")
		}
	}
	return r.ThresholdRule.Validate(value)
}

// MaxDecimals checks that a number, or a numeric string, has at most n
// digits after the decimal point.
func MaxDecimals(n int) Rule {
	return decimalsRule{n: n}
}

type decimalsRule struct {
	n int
}

func (r decimalsRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	step := math.Pow10(-r.n)
	ref.Value.MultipleOf = &step
	appendDescription(ref, fmt.Sprintf("no more than %d decimals", r.n))
	return nil
}

func (r decimalsRule) Validate(value any) error {
	value, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	var s string
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		s = strconv.FormatFloat(rv.Float(), 'f', -1, rv.Type().Bits())
	case reflect.String:
		s = rv.String()
	default:
		return nil
	}
	if _, frac, ok := strings.Cut(s, "."); ok && len(frac) > r.n {
		return fmt.Errorf("must have no more than %d decimals", r.n)
	}
	return nil
}
