package runtime

import (
	"testing"
	"time"
)

func mustDecimal(t *testing.T, text string) DecimalValue {
	t.Helper()
	d, err := NewDecimal(text)
	if err != nil {
		t.Fatalf("NewDecimal(%q): %v", text, err)
	}
	return d
}

func TestIsTruthy(t *testing.T) {
	falsy := []Value{nil, Null, False, NewInteger(0), NewFloat(0), mustDecimal(t, "0.00"), NewString(""), NewList(), NewMapping()}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Fatalf("expected %s to be falsy", Repr(v))
		}
	}
	m := NewMapping()
	m.Set("k", Null)
	truthy := []Value{True, NewInteger(-1), NewFloat(0.5), mustDecimal(t, "0.01"), NewString(" "), NewList(Null), m, NewDateTime(time.Time{})}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Fatalf("expected %s to be truthy", Repr(v))
		}
	}
}

func TestEqualCoercesNumericStrings(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{NewString("5"), NewInteger(5), true},
		{NewInteger(5), NewString("5.0"), true},
		{NewString("abc"), NewInteger(5), false},
		{NewInteger(1), NewFloat(1.0), true},
		{mustDecimal(t, "1.50"), NewFloat(1.5), true},
		{mustDecimal(t, "2"), NewInteger(2), true},
		{Null, nil, true},
		{Null, NewInteger(0), false},
		{True, NewInteger(1), false},
		{NewList(NewInteger(1), NewString("a")), NewList(NewFloat(1), NewString("a")), true},
		{NewList(NewInteger(1)), NewList(NewInteger(1), NewInteger(2)), false},
	}
	for _, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("Equal(%s, %s) = %v, want %v", Repr(tc.a), Repr(tc.b), got, tc.want)
		}
	}
}

func TestEqualMappingsIgnoreOrder(t *testing.T) {
	a := NewMapping()
	a.Set("x", NewInteger(1))
	a.Set("y", NewString("z"))
	b := NewMapping()
	b.Set("y", NewString("z"))
	b.Set("x", NewFloat(1))
	if !Equal(a, b) {
		t.Fatalf("expected mappings to be equal")
	}
	b.Set("w", Null)
	if Equal(a, b) {
		t.Fatalf("expected mappings with different keys to differ")
	}
}

func TestCompare(t *testing.T) {
	if c, err := Compare(NewInteger(2), NewFloat(2.5)); err != nil || c != -1 {
		t.Fatalf("Compare(2, 2.5) = %d, %v", c, err)
	}
	if c, err := Compare(NewString("b"), NewString("a")); err != nil || c != 1 {
		t.Fatalf("Compare(b, a) = %d, %v", c, err)
	}
	if c, err := Compare(NewList(NewInteger(1), NewInteger(2)), NewList(NewInteger(1))); err != nil || c != 1 {
		t.Fatalf("Compare lists = %d, %v", c, err)
	}
	if _, err := Compare(NewString("5"), NewInteger(5)); err == nil {
		t.Fatalf("expected mixed compare to fail")
	}
	if _, err := CompareNumbers(NewString("5"), NewInteger(5)); err == nil {
		t.Fatalf("expected CompareNumbers to refuse strings")
	}
}

func TestAsString(t *testing.T) {
	m := NewMapping()
	m.Set("name", NewString("it's"))
	m.Set("tags", NewList(NewString("a"), Null, True))
	cases := []struct {
		value Value
		want  string
	}{
		{Null, "None"},
		{True, "True"},
		{NewInteger(-42), "-42"},
		{NewFloat(3), "3.0"},
		{NewFloat(0.1), "0.1"},
		{NewFloat(1e20), "1e+20"},
		{NewFloat(1.5e-5), "1.5e-05"},
		{mustDecimal(t, "1.50"), "1.50"},
		{NewString("plain"), "plain"},
		{m, `{'name': "it's", 'tags': ['a', None, True]}`},
		{NewDateTime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)), "2024-03-01T12:30:00Z"},
	}
	for _, tc := range cases {
		if got := AsString(tc.value); got != tc.want {
			t.Fatalf("AsString(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestDecimalSumIsExact(t *testing.T) {
	sum := mustDecimal(t, "0.1").Val.Add(mustDecimal(t, "0.2").Val)
	if got := AsString(DecimalValue{Val: sum}); got != "0.3" {
		t.Fatalf("expected 0.3, got %s", got)
	}
}

func TestConversions(t *testing.T) {
	if n, err := ToLong(NewFloat(-3.9)); err != nil || n != -3 {
		t.Fatalf("ToLong(-3.9) = %d, %v", n, err)
	}
	if n, err := ToLong(NewString(" 12 ")); err != nil || n != 12 {
		t.Fatalf("ToLong(' 12 ') = %d, %v", n, err)
	}
	if _, err := ToLong(NewString("1.5")); err == nil {
		t.Fatalf("expected int('1.5') to fail")
	}
	if f, err := ToFloat(mustDecimal(t, "2.25")); err != nil || f != 2.25 {
		t.Fatalf("ToFloat(2.25) = %v, %v", f, err)
	}
	num, err := ToNumber(NewString("7"))
	if err != nil || num != NewInteger(7) {
		t.Fatalf("ToNumber('7') = %#v, %v", num, err)
	}
	if _, err := ToDecimal(NewFloat(0.1)); err == nil {
		t.Fatalf("expected float to Decimal to be refused")
	}
	if idx, ok := ResolveIndex(-1, 3); !ok || idx != 2 {
		t.Fatalf("ResolveIndex(-1, 3) = %d, %v", idx, ok)
	}
	if _, ok := ResolveIndex(3, 3); ok {
		t.Fatalf("expected index 3 to be out of range")
	}
}

func TestMappingPreservesInsertionOrder(t *testing.T) {
	m := NewMapping()
	for _, k := range []string{"c", "a", "b"} {
		m.Set(k, NewString(k))
	}
	m.Set("a", NewInteger(1))
	if _, ok := m.Delete("c"); !ok {
		t.Fatalf("expected c to be deleted")
	}
	m.Set("c", True)
	keys := m.Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
	if v, _ := m.Get("a"); v != NewInteger(1) {
		t.Fatalf("expected replaced value, got %#v", v)
	}
}
