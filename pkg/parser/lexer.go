package parser

import (
	"strings"
	"unicode"
)

// indentWidth is the number of spaces that make one indentation level. A tab
// always counts as one level.
const indentWidth = 4

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int

	level         int
	depth         int
	atLineStart   bool
	lineHasTokens bool

	tokens []Token
}

// Tokenize converts source text into a flat token sequence, resolving
// indentation into explicit indent/dedent tokens. The returned slice always
// ends with a TokenEOF.
func Tokenize(source string) ([]Token, error) {
	lx := &lexer{
		src:         []rune(source),
		line:        1,
		col:         1,
		atLineStart: true,
	}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.tokens, nil
}

func (lx *lexer) run() error {
	for {
		if lx.atLineStart && lx.depth == 0 {
			lx.indentation()
		}
		if lx.eof() {
			break
		}
		c := lx.peek()
		switch {
		case c == '\n':
			line, col := lx.line, lx.col
			lx.advance()
			if lx.depth == 0 {
				if lx.lineHasTokens {
					lx.emitAt(TokenNewline, "", line, col)
					lx.lineHasTokens = false
				}
				lx.atLineStart = true
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			lx.advance()
		case c == '#':
			for !lx.eof() && lx.peek() != '\n' {
				lx.advance()
			}
		case isDigit(c):
			lx.scanNumber()
		case c == 'r' && (lx.peekAt(1) == '"' || lx.peekAt(1) == '\''):
			if err := lx.scanRawString(); err != nil {
				return err
			}
		case isIdentStart(c):
			lx.scanIdentifier()
		case c == '"' || c == '\'':
			if err := lx.scanString(); err != nil {
				return err
			}
		default:
			if err := lx.scanOperator(); err != nil {
				return err
			}
		}
	}
	if lx.lineHasTokens {
		lx.emitAt(TokenNewline, "", lx.line, lx.col)
		lx.lineHasTokens = false
	}
	for ; lx.level > 0; lx.level-- {
		lx.emitAt(TokenDedent, "", lx.line, 1)
	}
	lx.emitAt(TokenEOF, "", lx.line, lx.col)
	return nil
}

// indentation measures leading whitespace on a fresh line and emits the
// indent/dedent tokens needed to reach the new level. Blank and comment-only
// lines leave the level untouched.
func (lx *lexer) indentation() {
	lx.atLineStart = false
	spaces, tabs := 0, 0
scan:
	for !lx.eof() {
		switch lx.peek() {
		case ' ':
			spaces++
		case '\t':
			tabs++
		default:
			break scan
		}
		lx.advance()
	}
	if lx.eof() {
		return
	}
	switch lx.peek() {
	case '\n', '#', '\r':
		return
	}
	level := spaces/indentWidth + tabs
	for lx.level < level {
		lx.level++
		lx.emitAt(TokenIndent, "", lx.line, 1)
	}
	for lx.level > level {
		lx.level--
		lx.emitAt(TokenDedent, "", lx.line, 1)
	}
}

func (lx *lexer) scanNumber() {
	line, col := lx.line, lx.col
	var b strings.Builder
	seenDot := false
	for !lx.eof() {
		c := lx.peek()
		if isDigit(c) {
			b.WriteRune(c)
			lx.advance()
			continue
		}
		if c == '.' && !seenDot && isDigit(lx.peekAt(1)) {
			seenDot = true
			b.WriteRune(c)
			lx.advance()
			continue
		}
		break
	}
	lx.emitAt(TokenNumber, b.String(), line, col)
}

func (lx *lexer) scanIdentifier() {
	line, col := lx.line, lx.col
	var b strings.Builder
	for !lx.eof() && isIdentPart(lx.peek()) {
		b.WriteRune(lx.peek())
		lx.advance()
	}
	word := b.String()
	kind := TokenIdentifier
	if IsKeyword(word) {
		kind = TokenKeyword
	}
	lx.emitAt(kind, word, line, col)
}

var escapes = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

func (lx *lexer) scanString() error {
	line, col := lx.line, lx.col
	quote := lx.advance()
	var b strings.Builder
	for {
		if lx.eof() || lx.peek() == '\n' {
			return errorAt(line, col, "unterminated string")
		}
		c := lx.advance()
		if c == quote {
			break
		}
		if c != '\\' {
			b.WriteRune(c)
			continue
		}
		if lx.eof() || lx.peek() == '\n' {
			return errorAt(line, col, "unterminated string")
		}
		next := lx.advance()
		if esc, ok := escapes[next]; ok {
			b.WriteRune(esc)
			continue
		}
		b.WriteRune('\\')
		b.WriteRune(next)
	}
	lx.emitAt(TokenString, b.String(), line, col)
	return nil
}

// scanRawString reads r"..." without escape processing. A backslash still
// keeps the following quote from closing the literal; both characters stay.
func (lx *lexer) scanRawString() error {
	line, col := lx.line, lx.col
	lx.advance() // r
	quote := lx.advance()
	var b strings.Builder
	for {
		if lx.eof() || lx.peek() == '\n' {
			return errorAt(line, col, "unterminated raw string")
		}
		c := lx.advance()
		if c == quote {
			break
		}
		b.WriteRune(c)
		if c == '\\' && !lx.eof() && lx.peek() != '\n' {
			b.WriteRune(lx.advance())
		}
	}
	lx.emitAt(TokenString, b.String(), line, col)
	return nil
}

var twoCharOperators = map[string]struct{}{
	"//": {}, "**": {}, "==": {}, "!=": {}, "<=": {}, ">=": {},
	"+=": {}, "-=": {}, "*=": {}, "/=": {}, "?.": {}, "?[": {},
}

func (lx *lexer) scanOperator() error {
	line, col := lx.line, lx.col
	c := lx.peek()
	pair := string([]rune{c, lx.peekAt(1)})
	if _, ok := twoCharOperators[pair]; ok {
		lx.advance()
		lx.advance()
		if pair == "?[" {
			lx.depth++
		}
		lx.emitAt(TokenOperator, pair, line, col)
		return nil
	}
	switch c {
	case '+', '-', '*', '/', '%', '<', '>', '=', '.':
		lx.advance()
		lx.emitAt(TokenOperator, string(c), line, col)
	case '(', '[', '{':
		lx.advance()
		lx.depth++
		lx.emitAt(TokenDelimiter, string(c), line, col)
	case ')', ']', '}':
		lx.advance()
		if lx.depth > 0 {
			lx.depth--
		}
		lx.emitAt(TokenDelimiter, string(c), line, col)
	case ',', ':':
		lx.advance()
		lx.emitAt(TokenDelimiter, string(c), line, col)
	case '!':
		return errorAt(line, col, "unexpected '!' (did you mean '!=' or 'not'?)")
	case '?':
		return errorAt(line, col, "unexpected '?' (expected '?.' or '?[')")
	default:
		return errorAt(line, col, "unrecognized symbol %q", c)
	}
	return nil
}

func (lx *lexer) emitAt(kind TokenKind, value string, line, col int) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Value: value, Line: line, Column: col})
	switch kind {
	case TokenNewline, TokenIndent, TokenDedent, TokenEOF:
	default:
		lx.lineHasTokens = true
	}
}

func (lx *lexer) eof() bool { return lx.pos >= len(lx.src) }

func (lx *lexer) peek() rune { return lx.peekAt(0) }

func (lx *lexer) peekAt(offset int) rune {
	if lx.pos+offset >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+offset]
}

func (lx *lexer) advance() rune {
	c := lx.src[lx.pos]
	lx.pos++
	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return c
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isIdentStart(c rune) bool { return c == '_' || unicode.IsLetter(c) }

func isIdentPart(c rune) bool { return isIdentStart(c) || unicode.IsDigit(c) }
