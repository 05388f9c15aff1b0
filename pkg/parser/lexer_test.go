package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tokenShape struct {
	Kind  TokenKind
	Value string
}

func shapes(tokens []Token) []tokenShape {
	out := make([]tokenShape, len(tokens))
	for i, tok := range tokens {
		out[i] = tokenShape{Kind: tok.Kind, Value: tok.Value}
	}
	return out
}

func TestTokenizeIndentation(t *testing.T) {
	source := "def f(x):\n    if x:\n        return 1\n    return 2\n"
	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := []tokenShape{
		{TokenKeyword, "def"}, {TokenIdentifier, "f"}, {TokenDelimiter, "("}, {TokenIdentifier, "x"},
		{TokenDelimiter, ")"}, {TokenDelimiter, ":"}, {TokenNewline, ""},
		{TokenIndent, ""}, {TokenKeyword, "if"}, {TokenIdentifier, "x"}, {TokenDelimiter, ":"}, {TokenNewline, ""},
		{TokenIndent, ""}, {TokenKeyword, "return"}, {TokenNumber, "1"}, {TokenNewline, ""},
		{TokenDedent, ""}, {TokenKeyword, "return"}, {TokenNumber, "2"}, {TokenNewline, ""},
		{TokenDedent, ""}, {TokenEOF, ""},
	}
	if diff := cmp.Diff(want, shapes(tokens)); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeTabsCountAsOneLevel(t *testing.T) {
	tokens, err := Tokenize("def f():\n\treturn 1\n")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	indents := 0
	for _, tok := range tokens {
		if tok.Kind == TokenIndent {
			indents++
		}
	}
	if indents != 1 {
		t.Fatalf("expected one indent, got %d", indents)
	}
}

func TestTokenizeOperators(t *testing.T) {
	tokens, err := Tokenize("a?.b ?[c] // d ** e != f <= g += 1")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	var ops []string
	for _, tok := range tokens {
		if tok.Kind == TokenOperator {
			ops = append(ops, tok.Value)
		}
	}
	want := []string{"?.", "?[", "//", "**", "!=", "<=", "+="}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("operator mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeNumbersAndPositions(t *testing.T) {
	tokens, err := Tokenize("x = 3.14\ny = 7.name")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if tokens[2].Kind != TokenNumber || tokens[2].Value != "3.14" {
		t.Fatalf("expected float literal, got %s", tokens[2])
	}
	if tokens[2].Line != 1 || tokens[2].Column != 5 {
		t.Fatalf("expected 1:5, got %d:%d", tokens[2].Line, tokens[2].Column)
	}
	// 7.name keeps the dot as attribute access.
	if tokens[6].Value != "7" || tokens[7].Value != "." || tokens[8].Value != "name" {
		t.Fatalf("unexpected split: %v", tokens[6:9])
	}
	if tokens[6].Line != 2 {
		t.Fatalf("expected line 2, got %d", tokens[6].Line)
	}
}

func TestTokenizeStrings(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`"a\nb"`, "a\nb"},
		{`'it\'s'`, "it's"},
		{`"keep \d"`, `keep \d`},
		{`r"\d+\""`, `\d+\"`},
		{`"ünï"`, "ünï"},
	}
	for _, tc := range cases {
		tokens, err := Tokenize(tc.source)
		if err != nil {
			t.Fatalf("Tokenize(%s) error: %v", tc.source, err)
		}
		if tokens[0].Kind != TokenString || tokens[0].Value != tc.want {
			t.Fatalf("Tokenize(%s): expected %q, got %s", tc.source, tc.want, tokens[0])
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		source string
		line   int
		column int
	}{
		{"x = 'open", 1, 5},
		{"x = 1\ny = r'open", 2, 5},
		{"x = $", 1, 5},
		{"x ? y", 1, 3},
	}
	for _, tc := range cases {
		_, err := Tokenize(tc.source)
		perr, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("Tokenize(%q): expected *ParseError, got %v", tc.source, err)
		}
		if perr.Line != tc.line || perr.Column != tc.column {
			t.Fatalf("Tokenize(%q): expected %d:%d, got %d:%d", tc.source, tc.line, tc.column, perr.Line, perr.Column)
		}
	}
}
