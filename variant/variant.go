// Package variant provides the tagged-union value type produced by Peg
// captures and consumed by downstream tree walkers (code generators,
// diagnostics printers).
//
// A Value is one of five kinds: None, Integer, String, Array or Map. None is
// distinct from an empty String/Array/Map -- it represents the absence of a
// value, not an empty one. Values are immutable once constructed; Array and
// Map share their backing storage on copy, which is safe only because
// nothing ever mutates that storage in place after construction.
package variant

import "fmt"

// Kind identifies which alternative of the tagged union a Value holds.
type Kind int

const (
	// None is the absence of a value. It is distinct from an empty String,
	// Array or Map.
	None Kind = iota
	Integer
	String
	Array
	Map
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Integer:
		return "Integer"
	case String:
		return "String"
	case Array:
		return "Array"
	case Map:
		return "Map"
	default:
		return "Unknown"
	}
}

// entry is one key/value pair of a Map, kept in insertion order.
type entry struct {
	key   string
	value Value
}

// Value is the tagged union. The zero Value is None.
type Value struct {
	kind    Kind
	integer int64
	text    string
	array   []Value
	entries []entry // only meaningful when kind == Map
}

// Nil is the canonical None value.
var Nil = Value{kind: None}

// NewInteger builds an Integer value.
func NewInteger(n int64) Value { return Value{kind: Integer, integer: n} }

// NewString builds a String value.
func NewString(s string) Value { return Value{kind: String, text: s} }

// NewArray builds an Array value from the given elements. The slice is
// retained, not copied; callers must not mutate it afterwards.
func NewArray(items []Value) Value { return Value{kind: Array, array: items} }

// NewMap builds an empty Map value, ready to grow with Put.
func NewMap() Value { return Value{kind: Map} }

// Kind reports which alternative this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the absence of a value.
func (v Value) IsNone() bool { return v.kind == None }

// Int returns the integer payload, or 0 if v is not an Integer.
func (v Value) Int() int64 { return v.integer }

// Str returns the string payload, or "" if v is not a String.
func (v Value) Str() string { return v.text }

// Items returns the Array payload, or nil if v is not an Array.
func (v Value) Items() []Value { return v.array }

// Put returns a new Map value with key bound to val, preserving insertion
// order of previously-seen keys and overwriting the value of a repeated key
// in place. Put never mutates the receiver, so it is safe to call on a Value
// still referenced elsewhere.
func (v Value) Put(key string, val Value) Value {
	for i := range v.entries {
		if v.entries[i].key == key {
			out := v
			out.entries = append([]entry(nil), v.entries...)
			out.entries[i].value = val
			out.kind = Map
			return out
		}
	}
	out := v
	out.kind = Map
	out.entries = append(append([]entry(nil), v.entries...), entry{key, val})
	return out
}

// Get returns the value bound to key in a Map, and whether it was present.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return Nil, false
}

// Has reports whether key is bound in a Map.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the Map's keys in insertion order. Returns nil for
// non-Map values.
func (v Value) Keys() []string {
	if v.kind != Map {
		return nil
	}
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of elements of an Array or Map, or 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.array)
	case Map:
		return len(v.entries)
	default:
		return 0
	}
}

// Equal reports whether v and other are structurally identical: same Kind
// and, recursively, same contents. Map equality requires same keys bound to
// equal values, regardless of insertion order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case None:
		return true
	case Integer:
		return v.integer == other.integer
	case String:
		return v.text == other.text
	case Array:
		if len(v.array) != len(other.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].Equal(other.array[i]) {
				return false
			}
		}
		return true
	case Map:
		if len(v.entries) != len(other.entries) {
			return false
		}
		for _, e := range v.entries {
			ov, ok := other.Get(e.key)
			if !ok || !e.value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a debugging representation. It is not meant for
// round-tripping and is not used by any parsing path.
func (v Value) String() string {
	switch v.kind {
	case None:
		return "None"
	case Integer:
		return fmt.Sprintf("%d", v.integer)
	case String:
		return fmt.Sprintf("%q", v.text)
	case Array:
		return fmt.Sprintf("%v", v.array)
	case Map:
		out := "{"
		for i, e := range v.entries {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%s: %v", e.key, e.value)
		}
		return out + "}"
	default:
		return "<invalid variant>"
	}
}
