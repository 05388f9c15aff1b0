package parser

import "fmt"

// TokenKind tags a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNewline
	TokenIndent
	TokenDedent
	TokenKeyword
	TokenIdentifier
	TokenNumber
	TokenString
	TokenOperator
	TokenDelimiter
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenNewline:
		return "newline"
	case TokenIndent:
		return "indent"
	case TokenDedent:
		return "dedent"
	case TokenKeyword:
		return "keyword"
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenDelimiter:
		return "delimiter"
	default:
		return fmt.Sprintf("token_kind_%d", int(k))
	}
}

// Token is an immutable lexical unit. Value holds the literal payload for
// numbers and strings (escapes already processed) and the spelling for
// keywords, identifiers, operators and delimiters.
type Token struct {
	Kind   TokenKind
	Value  string
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF, TokenNewline, TokenIndent, TokenDedent:
		return t.Kind.String()
	case TokenString:
		return fmt.Sprintf("string %q", t.Value)
	default:
		return fmt.Sprintf("%s '%s'", t.Kind, t.Value)
	}
}

// Is reports whether the token has the given kind and spelling.
func (t Token) Is(kind TokenKind, value string) bool {
	return t.Kind == kind && t.Value == value
}

var keywords = map[string]struct{}{
	"def":      {},
	"return":   {},
	"if":       {},
	"elif":     {},
	"else":     {},
	"for":      {},
	"in":       {},
	"not":      {},
	"and":      {},
	"or":       {},
	"is":       {},
	"break":    {},
	"continue": {},
	"import":   {},
	"from":     {},
	"as":       {},
	"True":     {},
	"False":    {},
	"None":     {},
	"true":     {},
	"false":    {},
	"null":     {},
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
