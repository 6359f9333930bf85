package apivalidation

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// NewSchemaRefForValue generates an OpenAPI schema for value and lets the
// rules of every [Ruler], [ContextRuler] and [ValueRuler] type it contains
// describe themselves on it.
func NewSchemaRefForValue(value any) (*openapi3.SchemaRef, error) {
	g := openapi3gen.NewGenerator(openapi3gen.SchemaCustomizer(describeSchema))
	return g.NewSchemaRefForValue(value, nil)
}

// describeSchema is the openapi3gen customizer. It runs once per generated
// type.
func describeSchema(name string, t reflect.Type, _ reflect.StructTag, schema *openapi3.Schema) error {
	inst := reflect.New(t).Interface()
	fields, ok := rulesOf(context.Background(), inst)
	if !ok {
		return describeValueRuler(t, name, schema)
	}
	structVal := reflect.Indirect(reflect.ValueOf(inst))
	fields = expandFields(context.Background(), inst, fields)

	dropSkipped(structVal.Type(), schema)
	if err := tagFields(fields, structVal); err != nil {
		return err
	}
	for key, prop := range schema.Properties {
		for _, f := range fields {
			if f.tag != key {
				continue
			}
			for _, rule := range f.rules {
				if err := rule.Describe(key, schema, prop); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// dropSkipped removes the properties of fields tagged docs:"skip".
func dropSkipped(t reflect.Type, schema *openapi3.Schema) {
	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Anonymous {
			inner := sf.Type
			if inner.Kind() == reflect.Pointer {
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				dropSkipped(inner, schema)
			}
			continue
		}
		if strings.Split(sf.Tag.Get("docs"), ",")[0] == "skip" {
			delete(schema.Properties, jsonName(sf))
		}
	}
}

// tagFields resolves each field pointer to the json name of its field.
func tagFields(fields []*FieldRules, structVal reflect.Value) error {
	for i, fr := range fields {
		fv := reflect.ValueOf(fr.fieldPtr)
		if fv.Kind() != reflect.Pointer {
			return fmt.Errorf("rule target %d of %s must be a pointer, got %s", i, structVal.Type(), fv.Kind())
		}
		sf := findStructField(structVal, fv)
		if sf == nil {
			return fmt.Errorf("rule target %d not found in %s", i, structVal.Type())
		}
		if sf.Anonymous {
			fr.tag = ""
			continue
		}
		fr.tag = fieldName(*sf)
	}
	return nil
}

func describeValueRuler(t reflect.Type, name string, schema *openapi3.Schema) error {
	vr, ok := reflect.New(t).Interface().(ValueRuler)
	if !ok {
		return nil
	}
	ref := &openapi3.SchemaRef{Value: schema}
	for _, rule := range vr.ValueRules() {
		if err := rule.Describe(name, schema, ref); err != nil {
			return err
		}
	}
	return nil
}
