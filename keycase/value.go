package keycase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind identifies the concrete type behind a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a JSON-like value. The set of implementations is closed:
// [Null], [Bool], [Number], [String], [Array] and *[Object].
// A nil Value is treated as null.
type Value interface {
	Kind() Kind
	MarshalJSON() ([]byte, error)
}

type (
	// Null is the JSON null literal.
	Null struct{}

	// Bool is a JSON boolean.
	Bool bool

	// Number holds the literal text of a JSON number so no precision is lost
	// between decoding and encoding.
	Number string

	// String is a JSON string.
	String string

	// Array is an ordered sequence of values.
	Array []Value
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (b Bool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !json.Valid([]byte(n)) {
		return nil, fmt.Errorf("keycase: invalid number literal %q", string(n))
	}
	return []byte(n), nil
}

func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalValue(v)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Object is a mapping from unique string keys to values that remembers
// insertion order. The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty object with room for n entries.
func NewObject(n int) *Object {
	return &Object{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

func (o *Object) Kind() Kind { return KindObject }

// Set stores v under key. Replacing an existing key keeps its position.
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = map[string]Value{}
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// All iterates over the entries in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalValue(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return v.MarshalJSON()
}

// Marshal encodes v as JSON, writing object entries in insertion order.
func Marshal(v Value) ([]byte, error) {
	return marshalValue(v)
}

// errTrailingData reports input that continues after the JSON document.
var errTrailingData = errors.New("unexpected data after JSON document")

// Parse decodes a single JSON document into a Value. Object entries keep
// their document order, a key repeated within one object keeps its first
// position and its last value, and numbers keep their literal text.
// Anything other than whitespace after the document is an error.
func Parse(data []byte) (Value, error) {
	// The token stream skips separators without checking them, so the
	// document is validated as a whole first.
	if !json.Valid(data) {
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("keycase: parse: %w", err)
		}
		return nil, fmt.Errorf("keycase: parse: %w", errTrailingData)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("keycase: parse: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("keycase: parse: %w", errTrailingData)
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		// the decoder may reuse the memory behind number tokens
		return Number(strings.Clone(string(t))), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func parseObject(dec *json.Decoder) (Value, error) {
	obj := NewObject(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		child, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, child)
	}
	if err := closeDelim(dec, '}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func parseArray(dec *json.Decoder) (Value, error) {
	arr := Array{}
	for dec.More() {
		child, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, child)
	}
	if err := closeDelim(dec, ']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func closeDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %v, got %v", want, tok)
	}
	return nil
}

// FromAny converts decoded Go data into a Value. Maps must have string
// keys; their entries are inserted in sorted key order so that iteration,
// and therefore collision handling, is deterministic. Structs and other
// types without a JSON-like shape are rejected with [ErrUnsupportedType].
func FromAny(a any) (Value, error) {
	c := converter{active: map[refID]struct{}{}}
	return c.convert(a, "$")
}

type refID struct {
	ptr  uintptr
	len  int
	kind reflect.Kind
}

type converter struct {
	active map[refID]struct{}
}

func (c *converter) convert(a any, path string) (Value, error) { //nolint:revive // type switch over every JSON-like Go type
	switch v := a.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case []byte:
		return String(v), nil
	case json.Number:
		if !json.Valid([]byte(v)) {
			return nil, fmt.Errorf("%w: invalid number %q at %s", ErrUnsupportedType, v.String(), path)
		}
		return Number(v), nil
	case float64:
		return floatNumber(v, 64, path)
	case float32:
		return floatNumber(float64(v), 32, path)
	case int:
		return Number(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return Number(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return Number(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return Number(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return Number(strconv.FormatInt(v, 10)), nil
	case uint:
		return Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return Number(strconv.FormatUint(v, 10)), nil
	}
	return c.convertReflect(reflect.ValueOf(a), path)
}

func (c *converter) convertReflect(rv reflect.Value, path string) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return c.convert(rv.Elem().Interface(), path)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s at %s", ErrUnsupportedType, rv.Type().Key(), path)
		}
		if rv.IsNil() {
			return Null{}, nil
		}
		id := refID{ptr: rv.Pointer(), kind: reflect.Map}
		if err := c.enter(id, path); err != nil {
			return nil, err
		}
		defer delete(c.active, id)

		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)

		obj := NewObject(len(keys))
		for _, k := range keys {
			child, err := c.convert(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(), path+"."+k)
			if err != nil {
				return nil, err
			}
			obj.Set(k, child)
		}
		return obj, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return Null{}, nil
			}
			if rv.Len() > 0 {
				id := refID{ptr: rv.Pointer(), len: rv.Len(), kind: reflect.Slice}
				if err := c.enter(id, path); err != nil {
					return nil, err
				}
				defer delete(c.active, id)
			}
		}
		arr := make(Array, rv.Len())
		for i := range rv.Len() {
			child, err := c.convert(rv.Index(i).Interface(), path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			arr[i] = child
		}
		return arr, nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return floatNumber(rv.Float(), rv.Type().Bits(), path)
	}
	return nil, fmt.Errorf("%w: %s at %s", ErrUnsupportedType, rv.Type(), path)
}

func (c *converter) enter(id refID, path string) error {
	if _, ok := c.active[id]; ok {
		return fmt.Errorf("%w at %s", ErrCyclicStructure, path)
	}
	c.active[id] = struct{}{}
	return nil
}

func floatNumber(f float64, bits int, path string) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v at %s", ErrUnsupportedType, f, path)
	}
	return Number(strconv.FormatFloat(f, 'g', -1, bits)), nil
}

// ToAny converts v back into plain Go data: nil, bool, [json.Number],
// string, []any and map[string]any.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return json.Number(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = ToAny(e)
		}
		return out
	case *Object:
		if val == nil {
			return nil
		}
		out := make(map[string]any, val.Len())
		for k, e := range val.All() {
			out[k] = ToAny(e)
		}
		return out
	}
	return nil
}

// Equal reports whether a and b are deeply equal. Object key order is
// ignored; numbers compare by literal text.
func Equal(a, b Value) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(Bool) == b.(Bool)
	case KindNumber:
		return a.(Number) == b.(Number)
	case KindString:
		return a.(String) == b.(String)
	case KindArray:
		aa, ba := a.(Array), b.(Array)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := a.(*Object), b.(*Object)
		if ao.Len() != bo.Len() {
			return false
		}
		for k, av := range ao.All() {
			bv, ok := bo.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	if o, ok := v.(*Object); ok && o == nil {
		return KindNull
	}
	return v.Kind()
}
