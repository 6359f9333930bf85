// Package transform rewrites the string fields of request structs in place.
// The helpers are meant to be called from [apivalidation.Normalizer]
// implementations:
//
//	func (r *ItemRequest) Normalize() {
//	    transform.Multi(r, transform.StructTrimSpace, transform.NilIfEmpty)
//	}
package transform
