package builtins

import (
	"testing"

	"grizzly/interpreter-go/pkg/runtime"
)

func TestStringMethods(t *testing.T) {
	cases := []struct {
		recv string
		name string
		args []runtime.Value
		want runtime.Value
	}{
		{"Hello", "upper", nil, str("HELLO")},
		{"Hello", "lower", nil, str("hello")},
		{"  pad \n", "strip", nil, str("pad")},
		{"xxpadxx", "strip", []runtime.Value{str("x")}, str("pad")},
		{"  pad  ", "lstrip", nil, str("pad  ")},
		{"  pad  ", "rstrip", nil, str("  pad")},
		{"a,b,,c", "split", []runtime.Value{str(",")}, strs("a", "b", "", "c")},
		{"  a  b ", "split", nil, strs("a", "b")},
		{"a b c", "split", []runtime.Value{runtime.Null, num(1)}, strs("a", "b c")},
		{"a-b-c", "split", []runtime.Value{str("-"), num(1)}, strs("a", "b-c")},
		{", ", "join", []runtime.Value{strs("x", "y")}, str("x, y")},
		{"aaa", "replace", []runtime.Value{str("a"), str("b")}, str("bbb")},
		{"aaa", "replace", []runtime.Value{str("a"), str("b"), num(2)}, str("bba")},
		{"report.csv", "endswith", []runtime.Value{strs(".json", ".csv")}, runtime.True},
		{"report.csv", "startswith", []runtime.Value{str("rep")}, runtime.True},
		{"héllo", "find", []runtime.Value{str("l")}, num(2)},
		{"hello", "find", []runtime.Value{str("z")}, num(-1)},
		{"banana", "count", []runtime.Value{str("an")}, num(2)},
		{"banana", "contains", []runtime.Value{str("nan")}, runtime.True},
		{"123", "isdigit", nil, runtime.True},
		{"", "isdigit", nil, runtime.False},
		{"ab1", "isalpha", nil, runtime.False},
		{" \t", "isspace", nil, runtime.True},
		{"hello wORLD", "title", nil, str("Hello World")},
		{"hELLO", "capitalize", nil, str("Hello")},
		{"-42", "zfill", []runtime.Value{num(5)}, str("-0042")},
		{"42", "zfill", []runtime.Value{num(1)}, str("42")},
	}
	for _, tc := range cases {
		got := method(t, str(tc.recv), tc.name, tc.args...)
		expectValue(t, tc.recv+"."+tc.name, got, tc.want)
	}
}

func TestStringMethodErrors(t *testing.T) {
	join, _ := testRegistry.Method(runtime.KindString, "join")
	if _, err := join.CallMethod(nil, str(","), []runtime.Value{ints(1, 2)}); err == nil {
		t.Fatalf("expected join over ints to fail")
	}
	split, _ := testRegistry.Method(runtime.KindString, "split")
	if _, err := split.CallMethod(nil, str("abc"), []runtime.Value{str("")}); err == nil {
		t.Fatalf("expected empty separator to fail")
	}
	upper, _ := testRegistry.Method(runtime.KindString, "upper")
	if _, err := upper.CallMethod(nil, str("abc"), []runtime.Value{num(1)}); err == nil {
		t.Fatalf("expected arity error")
	}
	zfill, _ := testRegistry.Method(runtime.KindString, "zfill")
	if _, err := zfill.CallMethod(nil, str("1"), []runtime.Value{num(runtime.MaxSequenceSize + 1)}); err == nil {
		t.Fatalf("expected oversized zfill width to fail")
	}
}

func TestListMethods(t *testing.T) {
	l := ints(1, 2, 3).(*runtime.ListValue)
	method(t, l, "append", num(4))
	method(t, l, "insert", num(0), num(0))
	method(t, l, "insert", num(100), num(9))
	expectValue(t, "after inserts", l, ints(0, 1, 2, 3, 4, 9))

	expectValue(t, "pop()", method(t, l, "pop"), num(9))
	expectValue(t, "pop(0)", method(t, l, "pop", num(0)), num(0))
	expectValue(t, "pop(-2)", method(t, l, "pop", num(-2)), num(3))
	expectValue(t, "after pops", l, ints(1, 2, 4))

	method(t, l, "extend", ints(2, 2))
	expectValue(t, "count", method(t, l, "count", num(2)), num(3))
	expectValue(t, "index", method(t, l, "index", num(4)), num(2))
	method(t, l, "remove", num(2))
	expectValue(t, "after remove", l, ints(1, 4, 2, 2))

	method(t, l, "sort")
	expectValue(t, "sorted", l, ints(1, 2, 2, 4))
	method(t, l, "sort", runtime.True)
	expectValue(t, "sorted reverse", l, ints(4, 2, 2, 1))
	method(t, l, "reverse")
	expectValue(t, "reversed", l, ints(1, 2, 2, 4))

	cp := method(t, l, "copy").(*runtime.ListValue)
	method(t, l, "clear")
	if l.Len() != 0 || cp.Len() != 4 {
		t.Fatalf("clear affected copy: list=%d copy=%d", l.Len(), cp.Len())
	}

	pop, _ := testRegistry.Method(runtime.KindList, "pop")
	if _, err := pop.CallMethod(nil, l, nil); err == nil {
		t.Fatalf("expected pop from empty list to fail")
	}
	remove, _ := testRegistry.Method(runtime.KindList, "remove")
	if _, err := remove.CallMethod(nil, ints(1), []runtime.Value{num(5)}); err == nil {
		t.Fatalf("expected remove of missing value to fail")
	}
}

func TestListAppendRespectsLimit(t *testing.T) {
	appendFn, _ := testRegistry.Method(runtime.KindList, "append")
	ctx := &CallContext{MaxItems: 2}
	l := ints(1, 2)
	if _, err := appendFn.CallMethod(ctx, l, []runtime.Value{num(3)}); err == nil {
		t.Fatalf("expected append past the item limit to fail")
	}
}

func TestMappingMethods(t *testing.T) {
	m := runtime.NewMapping()
	m.Set("a", num(1))
	m.Set("b", num(2))

	expectValue(t, "get", method(t, m, "get", str("a")), num(1))
	expectValue(t, "get missing", method(t, m, "get", str("z")), runtime.Null)
	expectValue(t, "get default", method(t, m, "get", str("z"), num(0)), num(0))
	expectValue(t, "keys", method(t, m, "keys"), strs("a", "b"))
	expectValue(t, "values", method(t, m, "values"), ints(1, 2))
	expectValue(t, "items", method(t, m, "items"),
		runtime.NewList(runtime.NewList(str("a"), num(1)), runtime.NewList(str("b"), num(2))))

	other := runtime.NewMapping()
	other.Set("b", num(20))
	other.Set("c", num(3))
	method(t, m, "update", other)
	expectValue(t, "keys after update", method(t, m, "keys"), strs("a", "b", "c"))
	expectValue(t, "b after update", method(t, m, "get", str("b")), num(20))

	expectValue(t, "setdefault existing", method(t, m, "setdefault", str("a"), num(9)), num(1))
	expectValue(t, "setdefault new", method(t, m, "setdefault", str("d"), num(4)), num(4))
	expectValue(t, "pop", method(t, m, "pop", str("d")), num(4))
	expectValue(t, "pop default", method(t, m, "pop", str("d"), str("none")), str("none"))
	expectValue(t, "contains", method(t, m, "contains", str("c")), runtime.True)
	expectValue(t, "contains non-str", method(t, m, "contains", num(1)), runtime.False)

	cp := method(t, m, "copy").(*runtime.MappingValue)
	method(t, m, "clear")
	if m.Len() != 0 || cp.Len() != 3 {
		t.Fatalf("clear affected copy: mapping=%d copy=%d", m.Len(), cp.Len())
	}

	pop, _ := testRegistry.Method(runtime.KindMapping, "pop")
	if _, err := pop.CallMethod(nil, m, []runtime.Value{str("zz")}); err == nil {
		t.Fatalf("expected pop of missing key to fail")
	}
}
