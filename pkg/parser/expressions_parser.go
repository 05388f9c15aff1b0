package parser

import (
	"strconv"
	"strings"

	"grizzly/interpreter-go/pkg/ast"
)

// Precedence, loosest first:
//
//	or
//	and
//	not
//	== != < > <= >= in, not in, is, is not
//	+ -
//	* / // % **
//	unary - +
//	postfix . ?. [ ] ?[ ] ( )
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(TokenKeyword, "or") {
		opTok := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.At(ast.NewBinaryExpression("or", left, right), opTok.Line)
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.check(TokenKeyword, "and") {
		opTok := p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.At(ast.NewBinaryExpression("and", left, right), opTok.Line)
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Expression, error) {
	if p.check(TokenKeyword, "not") {
		opTok := p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.At(ast.NewUnaryExpression("not", operand), opTok.Line), nil
	}
	return p.parseComparison()
}

var comparisonOperators = map[string]struct{}{
	"==": {}, "!=": {}, "<": {}, ">": {}, "<=": {}, ">=": {},
}

// comparisonOperator consumes a comparison operator if one is next.
func (p *Parser) comparisonOperator() (string, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == TokenOperator:
		if _, ok := comparisonOperators[tok.Value]; ok {
			p.next()
			return tok.Value, true
		}
	case tok.Is(TokenKeyword, "in"):
		p.next()
		return "in", true
	case tok.Is(TokenKeyword, "not") && p.peekAt(1).Is(TokenKeyword, "in"):
		p.next()
		p.next()
		return "not in", true
	case tok.Is(TokenKeyword, "is"):
		p.next()
		if p.accept(TokenKeyword, "not") {
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		line := p.peek().Line
		op, ok := p.comparisonOperator()
		if !ok {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.At(ast.NewBinaryExpression(op, left, right), line)
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(TokenOperator, "+") || p.check(TokenOperator, "-") {
		opTok := p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.At(ast.NewBinaryExpression(opTok.Value, left, right), opTok.Line)
	}
	return left, nil
}

var multiplicativeOperators = map[string]struct{}{
	"*": {}, "/": {}, "//": {}, "%": {}, "**": {},
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenOperator {
			return left, nil
		}
		if _, ok := multiplicativeOperators[tok.Value]; !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.At(ast.NewBinaryExpression(tok.Value, left, right), tok.Line)
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.check(TokenOperator, "-") || p.check(TokenOperator, "+") {
		opTok := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.At(ast.NewUnaryExpression(opTok.Value, operand), opTok.Line), nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case tok.Is(TokenOperator, "."), tok.Is(TokenOperator, "?."):
			p.next()
			safe := tok.Value == "?."
			nameTok := p.peek()
			if nameTok.Kind != TokenIdentifier && nameTok.Kind != TokenKeyword {
				return nil, p.errorf(nameTok, "expected attribute name after '%s', found %s", tok.Value, nameTok)
			}
			p.next()
			if p.check(TokenDelimiter, "(") {
				args, err := p.parseArguments()
				if err != nil {
					return nil, err
				}
				expr = ast.At(ast.NewMethodCall(expr, nameTok.Value, args, safe), tok.Line)
				continue
			}
			expr = ast.At(ast.NewAttributeAccess(expr, nameTok.Value, safe), tok.Line)
		case tok.Is(TokenDelimiter, "["), tok.Is(TokenOperator, "?["):
			p.next()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenDelimiter, "]", "']' to close index"); err != nil {
				return nil, err
			}
			expr = ast.At(ast.NewIndexAccess(expr, index, tok.Value == "?["), tok.Line)
		case tok.Is(TokenDelimiter, "("):
			return nil, p.errorf(tok, "only named functions and methods can be called")
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expect(TokenDelimiter, "(", "'('"); err != nil {
		return nil, err
	}
	args, err := p.parseSequence(")")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, ")", "')' to close argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseSequence reads comma separated expressions up to (not including) the
// closing delimiter. A trailing comma is allowed.
func (p *Parser) parseSequence(closer string) ([]ast.Expression, error) {
	var items []ast.Expression
	for !p.check(TokenDelimiter, closer) {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.accept(TokenDelimiter, ",") {
			break
		}
	}
	return items, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenNumber:
		p.next()
		return p.numberLiteral(tok)
	case TokenString:
		p.next()
		return ast.At(ast.NewStringLiteral(tok.Value), tok.Line), nil
	case TokenIdentifier:
		p.next()
		if p.check(TokenDelimiter, "(") {
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			return ast.At(ast.NewFunctionCall(tok.Value, args), tok.Line), nil
		}
		return ast.At(ast.NewIdentifier(tok.Value), tok.Line), nil
	case TokenKeyword:
		switch tok.Value {
		case "True", "true":
			p.next()
			return ast.At(ast.NewBooleanLiteral(true), tok.Line), nil
		case "False", "false":
			p.next()
			return ast.At(ast.NewBooleanLiteral(false), tok.Line), nil
		case "None", "null":
			p.next()
			return ast.At(ast.NewNullLiteral(), tok.Line), nil
		}
	case TokenDelimiter:
		switch tok.Value {
		case "[":
			p.next()
			elements, err := p.parseSequence("]")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenDelimiter, "]", "']' to close list"); err != nil {
				return nil, err
			}
			return ast.At(ast.NewListLiteral(elements), tok.Line), nil
		case "{":
			return p.parseMapping()
		case "(":
			p.next()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenDelimiter, ")", "')' to close parenthesis"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	if tok.Kind == TokenEOF || tok.Kind == TokenNewline {
		return nil, p.errorf(tok, "expected an expression, found %s", tok)
	}
	return nil, p.errorf(tok, "unexpected %s", tok)
}

func (p *Parser) parseMapping() (ast.Expression, error) {
	open := p.next()
	var entries []*ast.MappingEntry
	for !p.check(TokenDelimiter, "}") {
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDelimiter, ":", "':' after mapping key"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.At(ast.NewMappingEntry(key, value), key.LineNumber()))
		if !p.accept(TokenDelimiter, ",") {
			break
		}
	}
	if _, err := p.expect(TokenDelimiter, "}", "'}' to close mapping"); err != nil {
		return nil, err
	}
	return ast.At(ast.NewMappingLiteral(entries), open.Line), nil
}

func (p *Parser) numberLiteral(tok Token) (ast.Expression, error) {
	if strings.Contains(tok.Value, ".") {
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number literal '%s'", tok.Value)
		}
		return ast.At(ast.NewFloatLiteral(value), tok.Line), nil
	}
	value, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		return nil, p.errorf(tok, "integer literal '%s' out of range", tok.Value)
	}
	return ast.At(ast.NewIntegerLiteral(value), tok.Line), nil
}
