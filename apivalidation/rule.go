package apivalidation

import (
	"context"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

type (
	// RuleFunc validates a value and returns an error if it is invalid.
	RuleFunc func(value any) error

	// Rule is implemented by every validation rule. Describe records the
	// constraint on the OpenAPI schema of the field it is bound to.
	Rule interface {
		Validate(value any) error
		Describe(name string, schema *openapi3.Schema, ref *openapi3.SchemaRef) error
	}

	// FieldRules binds a struct field pointer to its validation rules.
	FieldRules struct {
		fieldPtr any
		tag      string
		rules    []Rule
	}

	// Ruler is implemented by request types that declare their field rules.
	Ruler interface {
		Rules() []*FieldRules
	}

	// ContextRuler is like [Ruler] but its rules may depend on the request
	// context.
	ContextRuler interface {
		Rules(ctx context.Context) []*FieldRules
	}

	// ValueRuler is implemented by non-struct types that carry their own
	// rules. The rules apply during validation and schema generation
	// wherever the type appears as a field.
	//
	//	type Condition string
	//
	//	func (c Condition) ValueRules() []Rule {
	//	    return []Rule{In(Condition("mint"), Condition("used"))}
	//	}
	ValueRuler interface {
		ValueRules() []Rule
	}
)

// Field binds the field at fieldPtr to rules.
func Field[T any](fieldPtr *T, rules ...Rule) *FieldRules {
	return &FieldRules{
		fieldPtr: fieldPtr,
		rules:    rules,
	}
}

// rulesOf returns the field rules declared by v, if any.
func rulesOf(ctx context.Context, v any) ([]*FieldRules, bool) {
	switch r := v.(type) {
	case Ruler:
		return r.Rules(), true
	case ContextRuler:
		return r.Rules(ctx), true
	}
	return nil, false
}

// expandFields inlines the rules of embedded Ruler fields so error keys and
// schema properties stay flat.
func expandFields(ctx context.Context, structPtr any, fields []*FieldRules) []*FieldRules {
	structVal := reflect.Indirect(reflect.ValueOf(structPtr))
	if !structVal.IsValid() || structVal.Kind() != reflect.Struct {
		return fields
	}

	out := make([]*FieldRules, 0, len(fields))
	for _, fr := range fields {
		fv := reflect.ValueOf(fr.fieldPtr)
		if fv.Kind() == reflect.Pointer {
			if sf := findStructField(structVal, fv); sf != nil && sf.Anonymous {
				embedded := fv.Interface()
				if inner, ok := rulesOf(ctx, embedded); ok {
					out = append(out, expandFields(ctx, embedded, inner)...)
					continue
				}
			}
		}
		out = append(out, fr)
	}
	return out
}

// findStructField returns the field of structVal whose address is fieldPtr,
// searching embedded structs as well.
func findStructField(structVal reflect.Value, fieldPtr reflect.Value) *reflect.StructField {
	ptr := fieldPtr.Pointer()
	for i := range structVal.NumField() {
		sf := structVal.Type().Field(i)
		fv := structVal.Field(i)
		if fv.CanAddr() && fv.Addr().Pointer() == ptr && fv.Type() == fieldPtr.Type().Elem() {
			return &sf
		}
		if sf.Anonymous {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				if found := findStructField(inner, fieldPtr); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

// jsonName returns the json tag name of sf, or "" when it has none.
func jsonName(sf reflect.StructField) string {
	return strings.Split(sf.Tag.Get("json"), ",")[0]
}

// fieldName is the name sf is reported under: its json name, or its Go
// name when untagged.
func fieldName(sf reflect.StructField) string {
	if n := jsonName(sf); n != "" && n != "-" {
		return n
	}
	return sf.Name
}

// appendDescription adds desc to the schema description, separated by a space.
func appendDescription(ref *openapi3.SchemaRef, desc string) {
	if desc == "" {
		return
	}
	if ref.Value.Description != "" && !strings.HasSuffix(ref.Value.Description, " ") {
		ref.Value.Description += " "
	}
	ref.Value.Description += desc
}
