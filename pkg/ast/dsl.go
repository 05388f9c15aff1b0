package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func List(elements ...Expression) *ListLiteral {
	return NewListLiteral(elements)
}

func Entry(key, value Expression) *MappingEntry {
	return NewMappingEntry(key, value)
}

func Map(entries ...*MappingEntry) *MappingLiteral {
	return NewMappingLiteral(entries)
}

// Access and operator helpers.

func Attr(object Expression, name string) *AttributeAccess {
	return NewAttributeAccess(object, name, false)
}

func SafeAttr(object Expression, name string) *AttributeAccess {
	return NewAttributeAccess(object, name, true)
}

func Index(object, index Expression) *IndexAccess {
	return NewIndexAccess(object, index, false)
}

func SafeIndex(object, index Expression) *IndexAccess {
	return NewIndexAccess(object, index, true)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(name, args)
}

func Method(receiver Expression, name string, args ...Expression) *MethodCall {
	return NewMethodCall(receiver, name, args, false)
}

// Statement helpers.

func Assign(target Expression, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(target, "=", value)
}

func AssignOp(target Expression, op string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(target, op, value)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Blk(body ...Statement) *Block {
	return NewBlock(body)
}

func If(condition Expression, body *Block, elifs []*ElifClause, elseBlock *Block) *IfStatement {
	return NewIfStatement(condition, body, elifs, elseBlock)
}

func Elif(condition Expression, body *Block) *ElifClause {
	return NewElifClause(condition, body)
}

func For(target string, iterable Expression, body *Block) *ForStatement {
	return NewForStatement([]*Identifier{ID(target)}, iterable, body)
}

func Brk() *BreakStatement {
	return NewBreakStatement()
}

func Cont() *ContinueStatement {
	return NewContinueStatement()
}

func Import(module string) *ImportStatement {
	return NewImportStatement(module, "", nil)
}

func Fn(name string, params []string, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(name, params, NewBlock(body))
}

func Prog(imports []*ImportStatement, functions ...*FunctionDefinition) *Program {
	return NewProgram(imports, functions)
}
