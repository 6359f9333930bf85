// Package keycase rewrites the keys of JSON-like values between the
// underscore convention used by persistence (category_id) and the
// internal-capital convention used on the wire (categoryId).
//
// Payloads are parsed once into a tagged [Value] (Null, Bool, Number,
// String, Array, *Object) so transforms can switch on the concrete type
// instead of probing at runtime:
//
//	v, err := keycase.Parse(body)
//	if err != nil {
//	    return err
//	}
//	ext, err := keycase.ToExternal(v, keycase.OnCollision(keycase.ErrorOnCollision))
//
// Transforms never mutate their input and are safe for concurrent use.
//
// Round trips are only lossless for keys where every underscore is followed
// by a lowercase ASCII letter and no uppercase letter is present. Keys that
// start with an uppercase letter gain a leading underscore in
// [ToExternalConvention] ("ABC" becomes "_a_b_c"); that behavior is kept for
// compatibility with existing clients.
package keycase
