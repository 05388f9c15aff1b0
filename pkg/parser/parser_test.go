package parser_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/parser"
)

// shape renders a node as generic JSON with line numbers removed so parsed
// trees can be compared against DSL-built ones.
func shape(t testing.TB, node ast.Node) any {
	t.Helper()
	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal %T: %v", node, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal %T: %v", node, err)
	}
	dropLines(out)
	return out
}

func dropLines(v any) {
	switch n := v.(type) {
	case map[string]any:
		delete(n, "line")
		for _, child := range n {
			dropLines(child)
		}
	case []any:
		for _, child := range n {
			dropLines(child)
		}
	}
}

func assertProgramsEqual(t testing.TB, expected, actual *ast.Program) {
	t.Helper()
	if diff := cmp.Diff(shape(t, expected), shape(t, actual)); diff != "" {
		t.Fatalf("program mismatch (-want +got):\n%s", diff)
	}
}

func mustParse(t testing.TB, source string) *ast.Program {
	t.Helper()
	program, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	return program
}

func TestParseTransformFunction(t *testing.T) {
	source := `def transform(INPUT):
    result = {}
    result["name"] = INPUT.customer.name.upper()
    if INPUT.total > 100:
        result["tier"] = "gold"
    elif INPUT.total > 10:
        result["tier"] = "silver"
    else:
        result["tier"] = "bronze"
    return result
`
	program := mustParse(t, source)

	total := ast.Attr(ast.ID("INPUT"), "total")
	tier := func(v string) ast.Statement {
		return ast.Assign(ast.Index(ast.ID("result"), ast.Str("tier")), ast.Str(v))
	}
	expected := ast.Prog(nil,
		ast.Fn("transform", []string{"INPUT"},
			ast.Assign(ast.ID("result"), ast.Map()),
			ast.Assign(
				ast.Index(ast.ID("result"), ast.Str("name")),
				ast.Method(ast.Attr(ast.Attr(ast.ID("INPUT"), "customer"), "name"), "upper"),
			),
			ast.If(
				ast.Bin(">", total, ast.Int(100)),
				ast.Blk(tier("gold")),
				[]*ast.ElifClause{ast.Elif(ast.Bin(">", total, ast.Int(10)), ast.Blk(tier("silver")))},
				ast.Blk(tier("bronze")),
			),
			ast.Ret(ast.ID("result")),
		),
	)
	assertProgramsEqual(t, expected, program)
}

func TestParseOperatorPrecedence(t *testing.T) {
	cases := []struct {
		source string
		want   ast.Expression
	}{
		{"1 + 2 * 3", ast.Bin("+", ast.Int(1), ast.Bin("*", ast.Int(2), ast.Int(3)))},
		{"(1 + 2) * 3", ast.Bin("*", ast.Bin("+", ast.Int(1), ast.Int(2)), ast.Int(3))},
		{"a or b and c", ast.Bin("or", ast.ID("a"), ast.Bin("and", ast.ID("b"), ast.ID("c")))},
		{"not a == b", ast.Un("not", ast.Bin("==", ast.ID("a"), ast.ID("b")))},
		{"-x ** 2", ast.Bin("**", ast.Un("-", ast.ID("x")), ast.Int(2))},
		{"a - b - c", ast.Bin("-", ast.Bin("-", ast.ID("a"), ast.ID("b")), ast.ID("c"))},
		{"x not in items", ast.Bin("not in", ast.ID("x"), ast.ID("items"))},
		{"x is not None", ast.Bin("is not", ast.ID("x"), ast.Null())},
		{"7 // 2 % 3", ast.Bin("%", ast.Bin("//", ast.Int(7), ast.Int(2)), ast.Int(3))},
		{"a?.b?[0]", ast.SafeIndex(ast.SafeAttr(ast.ID("a"), "b"), ast.Int(0))},
		{"len(xs) >= 2.5", ast.Bin(">=", ast.Call("len", ast.ID("xs")), ast.Flt(2.5))},
	}
	for _, tc := range cases {
		t.Run(tc.source, func(t *testing.T) {
			program := mustParse(t, "def f():\n    return "+tc.source+"\n")
			expected := ast.Prog(nil, ast.Fn("f", nil, ast.Ret(tc.want)))
			assertProgramsEqual(t, expected, program)
		})
	}
}

func TestParseLiteralExpressions(t *testing.T) {
	source := `def literals():
    a = 42
    b = 3.25
    c = True
    d = false
    e = None
    f = null
    g = "tab\tquote\""
    h = r"\d+\.\d"
    i = [1, 2, 3,]
    j = {"k": [], "n": {}}
`
	program := mustParse(t, source)
	expected := ast.Prog(nil, ast.Fn("literals", nil,
		ast.Assign(ast.ID("a"), ast.Int(42)),
		ast.Assign(ast.ID("b"), ast.Flt(3.25)),
		ast.Assign(ast.ID("c"), ast.Bool(true)),
		ast.Assign(ast.ID("d"), ast.Bool(false)),
		ast.Assign(ast.ID("e"), ast.Null()),
		ast.Assign(ast.ID("f"), ast.Null()),
		ast.Assign(ast.ID("g"), ast.Str("tab\tquote\"")),
		ast.Assign(ast.ID("h"), ast.Str(`\d+\.\d`)),
		ast.Assign(ast.ID("i"), ast.List(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Assign(ast.ID("j"), ast.Map(
			ast.Entry(ast.Str("k"), ast.List()),
			ast.Entry(ast.Str("n"), ast.Map()),
		)),
	))
	assertProgramsEqual(t, expected, program)
}

func TestParseLoopsAndImports(t *testing.T) {
	source := `import math
import re as regex
from datetime import now, today

def walk(items):
    total = 0
    for key, value in items.items():
        if value is None: continue
        total += value
        if total > 10: break
    return total
`
	program := mustParse(t, source)
	loop := ast.NewForStatement(
		[]*ast.Identifier{ast.ID("key"), ast.ID("value")},
		ast.Method(ast.ID("items"), "items"),
		ast.Blk(
			ast.If(ast.Bin("is", ast.ID("value"), ast.Null()), ast.Blk(ast.Cont()), nil, nil),
			ast.AssignOp(ast.ID("total"), "+=", ast.ID("value")),
			ast.If(ast.Bin(">", ast.ID("total"), ast.Int(10)), ast.Blk(ast.Brk()), nil, nil),
		),
	)
	expected := ast.Prog(
		[]*ast.ImportStatement{
			ast.Import("math"),
			ast.NewImportStatement("re", "regex", nil),
			ast.NewImportStatement("datetime", "", []string{"now", "today"}),
		},
		ast.Fn("walk", []string{"items"},
			ast.Assign(ast.ID("total"), ast.Int(0)),
			loop,
			ast.Ret(ast.ID("total")),
		),
	)
	assertProgramsEqual(t, expected, program)
	if got := program.Imports[1].Binding(); got != "regex" {
		t.Fatalf("expected alias binding regex, got %q", got)
	}
}

func TestParseImplicitLineJoining(t *testing.T) {
	source := `def f(a,
      b):
    return [
        a,
        b,
    ]
`
	program := mustParse(t, source)
	expected := ast.Prog(nil, ast.Fn("f", []string{"a", "b"}, ast.Ret(ast.List(ast.ID("a"), ast.ID("b")))))
	assertProgramsEqual(t, expected, program)
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	source := "# header\n\ndef f():\n\n    # inside\n    x = 1  # trailing\n\n        \n    return x\n"
	program := mustParse(t, source)
	expected := ast.Prog(nil, ast.Fn("f", nil,
		ast.Assign(ast.ID("x"), ast.Int(1)),
		ast.Ret(ast.ID("x")),
	))
	assertProgramsEqual(t, expected, program)
}

func TestParseRecordsLineNumbers(t *testing.T) {
	source := "def f():\n    x = 1\n\n    return x\n"
	program := mustParse(t, source)
	fn, ok := program.Function("f")
	if !ok {
		t.Fatalf("function f not indexed")
	}
	if fn.LineNumber() != 1 {
		t.Fatalf("expected def on line 1, got %d", fn.LineNumber())
	}
	if got := fn.Body.Body[1].LineNumber(); got != 4 {
		t.Fatalf("expected return on line 4, got %d", got)
	}
}

func TestParseLaterDefinitionShadows(t *testing.T) {
	program := mustParse(t, "def f():\n    return 1\ndef f():\n    return 2\n")
	fn, _ := program.Function("f")
	if fn.LineNumber() != 3 {
		t.Fatalf("expected second definition, got line %d", fn.LineNumber())
	}
	if names := program.FunctionNames(); len(names) != 2 {
		t.Fatalf("expected both definitions listed, got %v", names)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	source := `import math
from re import sub

def clean(s):
    return sub("[^a-z]", "", s?.lower())

def transform(INPUT):
    out = {"tags": [], "n": 0}
    for item in INPUT.items:
        if item?.price > 10 and not item.hidden:
            out.tags[0] = clean(item.name)
        elif item.price is None:
            continue
        out.n += item.price ** 2 // 3
    out.root = math.sqrt(INPUT["area"])
    return out
`
	render := func() string {
		program := mustParse(t, source)
		text, err := ast.Canonical(program)
		if err != nil {
			t.Fatalf("canonical: %v", err)
		}
		return text
	}
	first, second := render(), render()
	if first == "" || first == "null" {
		t.Fatalf("expected a rendered program, got %q", first)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("canonical form differs between parses (-first +second):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		line    int
		message string
	}{
		{"missing block", "def f():\nx = 1\n", 2, "expected an indented block"},
		{"empty body at eof", "def f():\n", 2, "expected an indented block"},
		{"top level statement", "x = 1\n", 1, "only function definitions and imports"},
		{"nested def", "def f():\n    def g():\n        return 1\n", 2, "only allowed at top level"},
		{"assign to call", "def f():\n    g() = 1\n", 2, "cannot assign to a function call"},
		{"assign through safe", "def f():\n    a?.b = 1\n", 2, "cannot assign through '?.'"},
		{"unterminated string", "def f():\n    return \"abc\n", 2, "unterminated string"},
		{"bang", "def f():\n    return !x\n", 2, "unexpected '!'"},
		{"stray indent", "def f():\n    x = 1\n        y = 2\n", 3, "unexpected indent"},
		{"dangling else", "def f():\n    else:\n        return 1\n", 2, "without a matching 'if'"},
		{"unclosed call", "def f():\n    return g(1\n", 3, "')' to close argument list"},
		{"missing colon", "def f()\n    return 1\n", 1, "':' after function signature"},
		{"duplicate param", "def f(a, a):\n    return a\n", 1, "duplicate parameter"},
		{"huge integer", "def f():\n    return 99999999999999999999\n", 2, "out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.ParseSource(tc.source)
			if err == nil {
				t.Fatalf("expected parse error")
			}
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Line != tc.line {
				t.Fatalf("expected error on line %d, got %d (%v)", tc.line, perr.Line, err)
			}
			if !strings.Contains(perr.Message, tc.message) {
				t.Fatalf("expected message containing %q, got %q", tc.message, perr.Message)
			}
		})
	}
}
