package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	av "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/keycase"
)

// NewSchemaRefForValue generates the schema of value with the constraints of
// its rules applied.
func NewSchemaRefForValue(value any) (*openapi3.SchemaRef, error) {
	return av.NewSchemaRefForValue(value)
}

// RenameProperties rewrites every property name, required list entry and
// parameter name reachable from doc's operations with fn. Types are tagged in
// the storage convention; the wire speaks internal-capital keys, so servers
// that rewrite bodies at the boundary call
//
//	openapi.RenameProperties(doc, keycase.ToInternalConvention)
//
// once after registering their endpoints.
func RenameProperties(doc *openapi3.T, fn keycase.KeyFunc) {
	r := renamer{fn: fn, seen: map[*openapi3.Schema]bool{}}
	for _, item := range doc.Paths.Map() {
		for _, op := range item.Operations() {
			for _, p := range op.Parameters {
				if p.Value != nil && p.Value.In == openapi3.ParameterInQuery {
					p.Value.Name = fn(p.Value.Name)
				}
			}
			if op.RequestBody != nil && op.RequestBody.Value != nil {
				r.content(op.RequestBody.Value.Content)
			}
			if op.Responses == nil {
				continue
			}
			for _, resp := range op.Responses.Map() {
				if resp.Value != nil {
					r.content(resp.Value.Content)
				}
			}
		}
	}
}

type renamer struct {
	fn   keycase.KeyFunc
	seen map[*openapi3.Schema]bool
}

func (r renamer) content(c openapi3.Content) {
	for _, mt := range c {
		if mt != nil {
			r.ref(mt.Schema)
		}
	}
}

func (r renamer) ref(ref *openapi3.SchemaRef) {
	if ref == nil || ref.Value == nil || r.seen[ref.Value] {
		return
	}
	s := ref.Value
	r.seen[s] = true

	if len(s.Properties) > 0 {
		props := make(openapi3.Schemas, len(s.Properties))
		for name, prop := range s.Properties {
			props[r.fn(name)] = prop
			r.ref(prop)
		}
		s.Properties = props
	}
	for i, name := range s.Required {
		s.Required[i] = r.fn(name)
	}
	r.ref(s.Items)
	if s.AdditionalProperties.Schema != nil {
		r.ref(s.AdditionalProperties.Schema)
	}
	for _, group := range []openapi3.SchemaRefs{s.OneOf, s.AnyOf, s.AllOf} {
		for _, sub := range group {
			r.ref(sub)
		}
	}
}
