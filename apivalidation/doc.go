// Package apivalidation validates decoded request bodies and describes the
// same constraints in OpenAPI 3 schemas.
//
// Request types declare their rules by implementing [Ruler]:
//
//	func (r *CategoryRequest) Rules() []*FieldRules {
//	    return []*FieldRules{
//	        Field(&r.Name, Required, Length(1, 100), HasAlphabetic()),
//	        Field(&r.Description, Length(0, 500)),
//	    }
//	}
//
// and are checked with a single call:
//
//	err := Validate(&req)
//
// [UnmarshalAndValidate] and [DecodeAndValidate] decode JSON, run
// [Normalizer] hooks and validate in one step. Failures are
// [ValidationErrors] keyed by the json name of each field.
//
// Sub-packages:
//   - openapi: endpoint registration, schema generation and Swagger UI
//   - transform: recursive string normalizers for request structs
//   - is: string format rules
package apivalidation
