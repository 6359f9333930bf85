package keycase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicStructure is returned when an object or array contains itself.
	ErrCyclicStructure = errors.New("keycase: cyclic structure")

	// ErrKeyCollision is returned under [ErrorOnCollision] when two keys of
	// one object transform to the same key.
	ErrKeyCollision = errors.New("keycase: key collision")

	// ErrUnsupportedType is returned by [FromAny] for values with no
	// JSON-like shape.
	ErrUnsupportedType = errors.New("keycase: unsupported type")
)

// KeyFunc rewrites a single mapping key.
type KeyFunc func(string) string

// CollisionPolicy decides what happens when two keys of one object map to
// the same transformed key.
type CollisionPolicy int

const (
	// LastWins keeps the value of the key visited last in iteration order.
	// The entry stays at the position of the first key.
	LastWins CollisionPolicy = iota
	// FirstWins keeps the value of the key visited first.
	FirstWins
	// ErrorOnCollision fails the transform with [ErrKeyCollision].
	ErrorOnCollision
)

type options struct {
	collision CollisionPolicy
}

// Option configures a transform.
type Option func(*options)

// OnCollision sets the collision policy. The default is [LastWins].
func OnCollision(p CollisionPolicy) Option {
	return func(o *options) {
		o.collision = p
	}
}

// ToInternalConvention rewrites an underscore key to internal-capital form:
// every '_' directly followed by a lowercase ASCII letter is dropped and the
// letter uppercased ("img_url" becomes "imgUrl"). Underscores followed by
// anything else, including a trailing underscore, are kept as they are.
func ToInternalConvention(key string) string {
	if strings.IndexByte(key, '_') < 0 {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' && i+1 < len(key) && isLowerASCII(key[i+1]) {
			b.WriteByte(key[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToExternalConvention rewrites an internal-capital key to underscore form:
// every uppercase ASCII letter becomes '_' plus its lowercase form
// ("categoryId" becomes "category_id"). A leading capital yields a leading
// underscore.
func ToExternalConvention(key string) string {
	n := 0
	for i := 0; i < len(key); i++ {
		if isUpperASCII(key[i]) {
			n++
		}
	}
	if n == 0 {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + n)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if isUpperASCII(c) {
			b.WriteByte('_')
			b.WriteByte(c - 'A' + 'a')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isLowerASCII(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpperASCII(c byte) bool { return c >= 'A' && c <= 'Z' }

// ToInternal rewrites every key in v with [ToInternalConvention].
func ToInternal(v Value, opts ...Option) (Value, error) {
	return Transform(v, ToInternalConvention, opts...)
}

// ToExternal rewrites every key in v with [ToExternalConvention].
func ToExternal(v Value, opts ...Option) (Value, error) {
	return Transform(v, ToExternalConvention, opts...)
}

// Transform returns a copy of v with every object key replaced by fn(key).
// Arrays keep their length and order, primitives are returned as they are,
// and v itself is never modified.
func Transform(v Value, fn KeyFunc, opts ...Option) (Value, error) {
	o := options{collision: LastWins}
	for _, opt := range opts {
		opt(&o)
	}
	t := transformer{fn: fn, opts: o, active: map[any]struct{}{}}
	return t.value(v, "$")
}

// RewriteJSON parses data, transforms its keys with fn and encodes the result.
func RewriteJSON(data []byte, fn KeyFunc, opts ...Option) ([]byte, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	out, err := Transform(v, fn, opts...)
	if err != nil {
		return nil, err
	}
	return Marshal(out)
}

type transformer struct {
	fn   KeyFunc
	opts options
	// active holds the objects and arrays on the current path; a value that
	// is still active when reached again is a cycle.
	active map[any]struct{}
}

func (t *transformer) value(v Value, path string) (Value, error) {
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return v, nil
		}
		return t.object(val, path)
	case Array:
		if val == nil {
			return v, nil
		}
		return t.array(val, path)
	}
	return v, nil
}

func (t *transformer) object(obj *Object, path string) (Value, error) {
	if err := t.enter(obj, path); err != nil {
		return nil, err
	}
	defer delete(t.active, obj)

	out := NewObject(obj.Len())
	origin := make(map[string]string, obj.Len())
	for k, child := range obj.All() {
		nk := t.fn(k)
		tv, err := t.value(child, path+"."+k)
		if err != nil {
			return nil, err
		}
		if prev, dup := origin[nk]; dup {
			switch t.opts.collision {
			case FirstWins:
				continue
			case ErrorOnCollision:
				return nil, fmt.Errorf("%w: %q and %q both become %q at %s", ErrKeyCollision, prev, k, nk, path)
			}
		}
		origin[nk] = k
		out.Set(nk, tv)
	}
	return out, nil
}

func (t *transformer) array(arr Array, path string) (Value, error) {
	out := make(Array, len(arr))
	if len(arr) == 0 {
		return out, nil
	}
	id := arrayID{first: &arr[0], n: len(arr)}
	if err := t.enter(id, path); err != nil {
		return nil, err
	}
	defer delete(t.active, id)

	for i, child := range arr {
		tv, err := t.value(child, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = tv
	}
	return out, nil
}

// arrayID identifies an array by its backing storage and length, so a
// shorter view of the same storage is a different array.
type arrayID struct {
	first *Value
	n     int
}

func (t *transformer) enter(id any, path string) error {
	if _, ok := t.active[id]; ok {
		return fmt.Errorf("%w at %s", ErrCyclicStructure, path)
	}
	t.active[id] = struct{}{}
	return nil
}
