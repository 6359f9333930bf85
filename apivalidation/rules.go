package apivalidation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Required rejects empty values: "", 0, nil pointers and empty slices.
var Required = requiredRule{validation.Required}

type requiredRule struct {
	validation.RequiredRule
}

func (r requiredRule) Describe(name string, schema *openapi3.Schema, _ *openapi3.SchemaRef) error {
	schema.Required = append(schema.Required, name)
	return nil
}

// NotNil rejects nil pointers but accepts a pointer to a zero value, which
// makes it the rule for fields where 0 is a meaningful answer.
var NotNil = notNilRule{validation.NotNil}

type notNilRule struct {
	validation.Rule
}

func (r notNilRule) Describe(name string, schema *openapi3.Schema, ref *openapi3.SchemaRef) error {
	ref.Value.Nullable = false
	schema.Required = append(schema.Required, name)
	return nil
}

// Length checks that a string has between lo and hi runes. Empty strings
// pass; combine with [Required] to reject them.
func Length(lo, hi int) Rule {
	return &lengthRule{
		LengthRule: validation.RuneLength(lo, hi),
		min:        lo,
		max:        hi,
	}
}

type lengthRule struct {
	validation.LengthRule
	min, max int
}

func (r *lengthRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	lo := uint64(r.min)
	ref.Value.MinLength = lo
	if r.max > 0 {
		hi := uint64(r.max)
		ref.Value.MaxLength = &hi
	}
	return nil
}

// In checks that the value is one of values.
func In(values ...any) Rule {
	want := make([]string, len(values))
	for i := range values {
		want[i] = fmt.Sprintf("'%v'", values[i])
	}
	return &inRule{
		InRule: validation.In(values...).Error("must be one of " + strings.Join(want, ", ")),
		values: values,
	}
}

type inRule struct {
	validation.InRule
	values []any
}

func (r *inRule) Validate(value any) error {
	if err := r.InRule.Validate(value); err != nil {
		return fmt.Errorf("%s, got '%v'", err, value)
	}
	return nil
}

func (r *inRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	ref.Value.Enum = r.values
	return nil
}

// Each applies rules to every element of a slice, array or map.
func Each(rules ...Rule) Rule {
	return &eachRule{
		EachRule: validation.Each(convertRules(rules...)...),
		rules:    rules,
	}
}

type eachRule struct {
	validation.EachRule
	rules []Rule
}

// Describe documents the element rules on the item schema when there is one.
func (r *eachRule) Describe(name string, schema *openapi3.Schema, ref *openapi3.SchemaRef) error {
	target := ref
	if ref.Value.Items != nil && ref.Value.Items.Value != nil {
		target = ref.Value.Items
	}
	for _, rule := range r.rules {
		if err := rule.Describe(name, schema, target); err != nil {
			return err
		}
	}
	return nil
}

// Unique checks that key returns a distinct value for every element index of
// a slice.
func Unique(key func(i int) any, desc string) Rule {
	return uniqueRule{key: key, desc: desc}
}

type uniqueRule struct {
	key  func(i int) any
	desc string
}

func (r uniqueRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	ref.Value.UniqueItems = true
	appendDescription(ref, r.desc)
	return nil
}

func (r uniqueRule) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil
	}
	rv = reflect.Indirect(rv)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return errors.New("must be a list")
	}
	seen := make(map[any]struct{}, rv.Len())
	for i := range rv.Len() {
		k := r.key(i)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("must not contain duplicates, got '%v' twice", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Custom validates with f and documents the field with desc.
func Custom(f func(any) error, desc string) Rule {
	return custom{f: f, desc: desc}
}

type custom struct {
	f    func(any) error
	desc string
}

func (r custom) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	appendDescription(ref, r.desc)
	return nil
}

func (r custom) Validate(value any) error {
	return r.f(value)
}

// By wraps f as a rule; ozzo's error handling applies to what f returns.
func By(f RuleFunc, desc string) Rule {
	return &inlineRule{Rule: validation.By(validation.RuleFunc(f)), desc: desc}
}

type inlineRule struct {
	validation.Rule
	desc string
}

func (r *inlineRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	appendDescription(ref, r.desc)
	return nil
}

func convertRules(rules ...Rule) []validation.Rule {
	out := make([]validation.Rule, len(rules))
	for i := range rules {
		out[i] = rules[i]
	}
	return out
}
