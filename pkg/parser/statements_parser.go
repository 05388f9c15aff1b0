package parser

import (
	"grizzly/interpreter-go/pkg/ast"
)

var assignmentOperators = map[string]struct{}{
	"=": {}, "+=": {}, "-=": {}, "*=": {}, "/=": {},
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	switch {
	case tok.Is(TokenKeyword, "if"):
		return p.parseIf()
	case tok.Is(TokenKeyword, "for"):
		return p.parseFor()
	case tok.Is(TokenKeyword, "def"):
		return nil, p.errorf(tok, "function definitions are only allowed at top level")
	case tok.Is(TokenKeyword, "elif"), tok.Is(TokenKeyword, "else"):
		return nil, p.errorf(tok, "'%s' without a matching 'if'", tok.Value)
	case tok.Kind == TokenIndent:
		return nil, p.errorf(tok, "unexpected indent")
	}
	stmt, err := p.parseSimpleStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSimpleStatement parses a statement that fits on one line. The caller
// consumes the line terminator.
func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	tok := p.peek()
	switch {
	case tok.Is(TokenKeyword, "return"):
		p.next()
		if p.check(TokenNewline, "") || p.check(TokenEOF, "") {
			return ast.At(ast.NewReturnStatement(nil), tok.Line), nil
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return ast.At(ast.NewReturnStatement(value), tok.Line), nil
	case tok.Is(TokenKeyword, "break"):
		p.next()
		return ast.At(ast.NewBreakStatement(), tok.Line), nil
	case tok.Is(TokenKeyword, "continue"):
		p.next()
		return ast.At(ast.NewContinueStatement(), tok.Line), nil
	case tok.Is(TokenKeyword, "import"), tok.Is(TokenKeyword, "from"):
		return p.parseImport()
	case tok.Is(TokenKeyword, "if"), tok.Is(TokenKeyword, "for"), tok.Is(TokenKeyword, "def"):
		return nil, p.errorf(tok, "'%s' must start on its own line", tok.Value)
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	opTok := p.peek()
	if opTok.Kind != TokenOperator {
		return ast.At(ast.NewExpressionStatement(expr), tok.Line), nil
	}
	if _, ok := assignmentOperators[opTok.Value]; !ok {
		return ast.At(ast.NewExpressionStatement(expr), tok.Line), nil
	}
	if err := validateTarget(expr); err != nil {
		return nil, p.errorf(opTok, "%s", err.Message)
	}
	p.next()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.At(ast.NewAssignmentStatement(expr, opTok.Value, value), tok.Line), nil
}

// validateTarget accepts identifiers and plain attribute or index chains.
func validateTarget(expr ast.Expression) *ParseError {
	switch target := expr.(type) {
	case *ast.Identifier:
		return nil
	case *ast.AttributeAccess:
		if target.Safe {
			return &ParseError{Message: "cannot assign through '?.'"}
		}
		return nil
	case *ast.IndexAccess:
		if target.Safe {
			return &ParseError{Message: "cannot assign through '?['"}
		}
		return nil
	case *ast.FunctionCall, *ast.MethodCall:
		return &ParseError{Message: "cannot assign to a function call"}
	default:
		return &ParseError{Message: "invalid assignment target"}
	}
}

func (p *Parser) parseIf() (*ast.IfStatement, error) {
	ifTok := p.next()
	condition, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(ifTok)
	if err != nil {
		return nil, err
	}
	var elifs []*ast.ElifClause
	for p.check(TokenKeyword, "elif") {
		elifTok := p.next()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		elifBody, err := p.parseBlock(elifTok)
		if err != nil {
			return nil, err
		}
		elifs = append(elifs, ast.At(ast.NewElifClause(cond, elifBody), elifTok.Line))
	}
	var elseBlock *ast.Block
	if p.check(TokenKeyword, "else") {
		elseTok := p.next()
		if _, err := p.expect(TokenDelimiter, ":", "':' after 'else'"); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseBlock(elseTok)
		if err != nil {
			return nil, err
		}
	}
	return ast.At(ast.NewIfStatement(condition, body, elifs, elseBlock), ifTok.Line), nil
}

// parseCondition reads `expr :`.
func (p *Parser) parseCondition() (ast.Expression, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, ":", "':' after condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseFor() (*ast.ForStatement, error) {
	forTok := p.next()
	var targets []*ast.Identifier
	for {
		nameTok, err := p.expectKind(TokenIdentifier, "loop variable")
		if err != nil {
			return nil, err
		}
		targets = append(targets, ast.At(ast.NewIdentifier(nameTok.Value), nameTok.Line))
		if !p.accept(TokenDelimiter, ",") {
			break
		}
	}
	if _, err := p.expect(TokenKeyword, "in", "'in' after loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, ":", "':' after for header"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(forTok)
	if err != nil {
		return nil, err
	}
	return ast.At(ast.NewForStatement(targets, iterable, body), forTok.Line), nil
}

func (p *Parser) parseImport() (*ast.ImportStatement, error) {
	tok := p.next()
	moduleTok, err := p.expectKind(TokenIdentifier, "module name")
	if err != nil {
		return nil, err
	}
	if tok.Value == "import" {
		alias := ""
		if p.accept(TokenKeyword, "as") {
			aliasTok, err := p.expectKind(TokenIdentifier, "alias after 'as'")
			if err != nil {
				return nil, err
			}
			alias = aliasTok.Value
		}
		return ast.At(ast.NewImportStatement(moduleTok.Value, alias, nil), tok.Line), nil
	}
	if _, err := p.expect(TokenKeyword, "import", "'import' after module name"); err != nil {
		return nil, err
	}
	var names []string
	for {
		nameTok, err := p.expectKind(TokenIdentifier, "imported name")
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok.Value)
		if !p.accept(TokenDelimiter, ",") {
			break
		}
	}
	return ast.At(ast.NewImportStatement(moduleTok.Value, "", names), tok.Line), nil
}
