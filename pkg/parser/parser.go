package parser

import (
	"grizzly/interpreter-go/pkg/ast"
)

// Parser is a recursive-descent parser with one token of lookahead. A Parser
// is single-use; build a new one per token stream.
type Parser struct {
	tokens []Token
	pos    int
}

// ParseSource tokenizes and parses source text in one step.
func ParseSource(source string) (*ast.Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse builds a Program from a token sequence produced by Tokenize.
func Parse(tokens []Token) (*ast.Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Kind: TokenEOF, Line: line})
	}
	p := &Parser{tokens: tokens}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	var (
		imports   []*ast.ImportStatement
		functions []*ast.FunctionDefinition
	)
	for !p.check(TokenEOF, "") {
		tok := p.peek()
		switch {
		case tok.Kind == TokenNewline:
			p.next()
		case tok.Is(TokenKeyword, "def"):
			fn, err := p.parseFunctionDefinition()
			if err != nil {
				return nil, err
			}
			functions = append(functions, fn)
		case tok.Is(TokenKeyword, "import"), tok.Is(TokenKeyword, "from"):
			stmt, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			if err := p.expectLineEnd(); err != nil {
				return nil, err
			}
			imports = append(imports, stmt)
		case tok.Kind == TokenIndent:
			return nil, p.errorf(tok, "unexpected indent")
		default:
			return nil, p.errorf(tok, "only function definitions and imports are allowed at top level, found %s", tok)
		}
	}
	return ast.At(ast.NewProgram(imports, functions), 1), nil
}

func (p *Parser) parseFunctionDefinition() (*ast.FunctionDefinition, error) {
	defTok := p.next()
	nameTok, err := p.expectKind(TokenIdentifier, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, "(", "'(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	seen := make(map[string]struct{})
	if !p.check(TokenDelimiter, ")") {
		for {
			paramTok, err := p.expectKind(TokenIdentifier, "parameter name")
			if err != nil {
				return nil, err
			}
			if _, dup := seen[paramTok.Value]; dup {
				return nil, p.errorf(paramTok, "duplicate parameter '%s' in function '%s'", paramTok.Value, nameTok.Value)
			}
			seen[paramTok.Value] = struct{}{}
			params = append(params, paramTok.Value)
			if !p.accept(TokenDelimiter, ",") {
				break
			}
		}
	}
	if _, err := p.expect(TokenDelimiter, ")", "')' to close parameter list"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, ":", "':' after function signature"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(defTok)
	if err != nil {
		return nil, err
	}
	return ast.At(ast.NewFunctionDefinition(nameTok.Value, params, body), defTok.Line), nil
}

// parseBlock parses the body following a ':'. Either an indented statement
// sequence closed by its own dedent, or a single simple statement on the same
// line.
func (p *Parser) parseBlock(owner Token) (*ast.Block, error) {
	if !p.accept(TokenNewline, "") {
		if p.check(TokenEOF, "") {
			return nil, p.errorf(p.peek(), "expected an indented block after %s on line %d", owner, owner.Line)
		}
		start := p.peek()
		stmt, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return ast.At(ast.NewBlock([]ast.Statement{stmt}), start.Line), nil
	}
	indent := p.peek()
	if indent.Kind != TokenIndent {
		return nil, p.errorf(indent, "expected an indented block after %s on line %d", owner, owner.Line)
	}
	p.next()
	var body []ast.Statement
	for !p.check(TokenDedent, "") && !p.check(TokenEOF, "") {
		if p.accept(TokenNewline, "") {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if len(body) == 0 {
		return nil, p.errorf(p.peek(), "expected an indented block after %s on line %d", owner, owner.Line)
	}
	if _, err := p.expectKind(TokenDedent, "end of block"); err != nil {
		return nil, err
	}
	return ast.At(ast.NewBlock(body), indent.Line), nil
}

//-----------------------------------------------------------------------------
// Token helpers
//-----------------------------------------------------------------------------

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// check reports whether the lookahead has the given kind and, when value is
// non-empty, the given spelling.
func (p *Parser) check(kind TokenKind, value string) bool {
	tok := p.peek()
	if tok.Kind != kind {
		return false
	}
	return value == "" || tok.Value == value
}

func (p *Parser) accept(kind TokenKind, value string) bool {
	if p.check(kind, value) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind, value, what string) (Token, error) {
	if !p.check(kind, value) {
		return Token{}, p.errorf(p.peek(), "expected %s, found %s", what, p.peek())
	}
	return p.next(), nil
}

func (p *Parser) expectKind(kind TokenKind, what string) (Token, error) {
	return p.expect(kind, "", what)
}

func (p *Parser) expectLineEnd() error {
	if p.accept(TokenNewline, "") || p.check(TokenEOF, "") {
		return nil
	}
	return p.errorf(p.peek(), "expected end of line, found %s", p.peek())
}

func (p *Parser) errorf(tok Token, format string, args ...any) *ParseError {
	return errorAt(tok.Line, tok.Column, format, args...)
}
