package builtins

import (
	"math"
	"testing"

	"grizzly/interpreter-go/pkg/runtime"
)

func moduleCall(t *testing.T, module, name string, args ...runtime.Value) (runtime.Value, error) {
	t.Helper()
	mod, ok := testRegistry.Module(module)
	if !ok {
		t.Fatalf("module %s not registered", module)
	}
	fn, ok := mod.Function(name)
	if !ok {
		t.Fatalf("module %s has no function %s", module, name)
	}
	return fn.Call(nil, args)
}

func mustModuleCall(t *testing.T, module, name string, args ...runtime.Value) runtime.Value {
	t.Helper()
	v, err := moduleCall(t, module, name, args...)
	if err != nil {
		t.Fatalf("%s.%s: %v", module, name, err)
	}
	return v
}

func TestRegexMatching(t *testing.T) {
	expectValue(t, "match", mustModuleCall(t, "re", "match", str(`(\d+)-(\d+)`), str("12-34x")), strs("12-34", "12", "34"))
	expectValue(t, "match anchored", mustModuleCall(t, "re", "match", str(`\d`), str("a1")), runtime.Null)
	expectValue(t, "search", mustModuleCall(t, "re", "search", str(`\d`), str("a1")), strs("1"))
	expectValue(t, "fullmatch", mustModuleCall(t, "re", "fullmatch", str(`\d+`), str("123a")), runtime.Null)
	expectValue(t, "fullmatch alternation", mustModuleCall(t, "re", "fullmatch", str(`a|ab`), str("ab")), strs("ab"))

	optional := mustModuleCall(t, "re", "match", str(`(a)(b)?`), str("a")).(*runtime.ListValue)
	if !runtime.IsNull(optional.Elements[2]) {
		t.Fatalf("unmatched group = %s, want None", runtime.Repr(optional.Elements[2]))
	}

	if _, err := moduleCall(t, "re", "search", str(`(`), str("x")); err == nil {
		t.Fatalf("expected invalid pattern to fail")
	}
}

func TestRegexFindAll(t *testing.T) {
	expectValue(t, "no groups", mustModuleCall(t, "re", "findall", str(`\d+`), str("a1b22c333")), strs("1", "22", "333"))
	expectValue(t, "one group", mustModuleCall(t, "re", "findall", str(`(\w)=\d`), str("a=1 b=2")), strs("a", "b"))
	expectValue(t, "groups", mustModuleCall(t, "re", "findall", str(`(\w)=(\d)`), str("a=1 b=2")),
		runtime.NewList(strs("a", "1"), strs("b", "2")))
}

func TestRegexSubAndSplit(t *testing.T) {
	expectValue(t, "sub backref", mustModuleCall(t, "re", "sub", str(`(\w+)@(\w+)`), str(`\2 at \1`), str("ada@host")), str("host at ada"))
	expectValue(t, "sub named", mustModuleCall(t, "re", "sub", str(`(?P<user>\w+)@`), str(`\g<user>:`), str("ada@host")), str("ada:host"))
	expectValue(t, "sub dollar", mustModuleCall(t, "re", "sub", str(`\d+`), str("$"), str("cost 5")), str("cost $"))
	expectValue(t, "sub count", mustModuleCall(t, "re", "sub", str(`a`), str("b"), str("aaa"), num(2)), str("bba"))
	expectValue(t, "split", mustModuleCall(t, "re", "split", str(`\s*,\s*`), str("a , b,c")), strs("a", "b", "c"))
	expectValue(t, "split max", mustModuleCall(t, "re", "split", str(`,`), str("a,b,c"), num(1)), strs("a", "b,c"))
	expectValue(t, "escape", mustModuleCall(t, "re", "escape", str("1.5+")), str(`1\.5\+`))
}

func TestMathModule(t *testing.T) {
	expectValue(t, "floor", mustModuleCall(t, "math", "floor", flt(-1.5)), num(-2))
	expectValue(t, "ceil", mustModuleCall(t, "math", "ceil", flt(1.2)), num(2))
	expectValue(t, "ceil decimal", mustModuleCall(t, "math", "ceil", dec(t, "-1.5")), num(-1))
	expectValue(t, "floor int", mustModuleCall(t, "math", "floor", num(7)), num(7))
	expectValue(t, "sqrt", mustModuleCall(t, "math", "sqrt", num(9)), flt(3))
	expectValue(t, "pow", mustModuleCall(t, "math", "pow", num(2), num(10)), flt(1024))
	expectValue(t, "log", mustModuleCall(t, "math", "log", num(1)), flt(0))
	expectValue(t, "log base", mustModuleCall(t, "math", "log", num(1), num(2)), flt(0))
	expectValue(t, "exp", mustModuleCall(t, "math", "exp", num(0)), flt(1))

	for _, bad := range [][]runtime.Value{{flt(-1)}, {str("4")}} {
		if _, err := moduleCall(t, "math", "sqrt", bad...); err == nil {
			t.Fatalf("expected math.sqrt(%s) to fail", runtime.Repr(bad[0]))
		}
	}
	if _, err := moduleCall(t, "math", "exp", num(1000)); err == nil {
		t.Fatalf("expected overflow to fail")
	}

	mod, _ := testRegistry.Module("math")
	pi, ok := mod.Constants["pi"].(runtime.FloatValue)
	if !ok || pi.Val != math.Pi {
		t.Fatalf("math.pi = %v", mod.Constants["pi"])
	}
}

func TestModuleNames(t *testing.T) {
	names := testRegistry.ModuleNames()
	if len(names) != 2 || names[0] != "math" || names[1] != "re" {
		t.Fatalf("ModuleNames() = %v", names)
	}
}
