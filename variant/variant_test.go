package variant

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func cmpValues(a, b Value) bool {
	return cmp.Equal(a, b, cmp.Comparer(func(x, y Value) bool { return x.Equal(y) }))
}

func TestNoneDistinctFromEmpty(t *testing.T) {
	if Nil.Equal(NewString("")) {
		t.Fatal("None must not equal empty string")
	}
	if Nil.Equal(NewArray(nil)) {
		t.Fatal("None must not equal empty array")
	}
	if Nil.Equal(NewMap()) {
		t.Fatal("None must not equal empty map")
	}
}

func TestMapInsertionOrderAndOverwrite(t *testing.T) {
	m := NewMap()
	m = m.Put("a", NewInteger(1))
	m = m.Put("b", NewInteger(2))
	m = m.Put("a", NewInteger(3))

	if got := m.Keys(); !cmp.Equal(got, []string{"a", "b"}) {
		t.Fatalf("keys = %v, want [a b]", got)
	}
	v, ok := m.Get("a")
	if !ok || v.Int() != 3 {
		t.Fatalf("m[a] = %v, want 3", v)
	}
}

func TestPutDoesNotMutateReceiver(t *testing.T) {
	m1 := NewMap().Put("x", NewInteger(1))
	m2 := m1.Put("x", NewInteger(2))

	v1, _ := m1.Get("x")
	v2, _ := m2.Get("x")
	if v1.Int() != 1 {
		t.Fatalf("m1[x] mutated to %v", v1)
	}
	if v2.Int() != 2 {
		t.Fatalf("m2[x] = %v, want 2", v2)
	}
}

func TestStructuralEquality(t *testing.T) {
	a := NewArray([]Value{NewInteger(1), NewString("hi")})
	b := NewArray([]Value{NewInteger(1), NewString("hi")})
	if !cmpValues(a, b) {
		t.Fatal("expected structurally equal arrays to compare equal")
	}

	m1 := NewMap().Put("a", NewInteger(1)).Put("b", NewInteger(2))
	m2 := NewMap().Put("b", NewInteger(2)).Put("a", NewInteger(1))
	if !cmpValues(m1, m2) {
		t.Fatal("map equality should ignore insertion order")
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{None, "None"}, {Integer, "Integer"}, {String, "String"},
		{Array, "Array"}, {Map, "Map"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}
