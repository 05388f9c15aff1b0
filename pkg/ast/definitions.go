package ast

// Statements

type AssignmentStatement struct {
	nodeImpl
	statementMarker

	Target   Expression `json:"target"`
	Operator string     `json:"operator"`
	Value    Expression `json:"value"`
}

func NewAssignmentStatement(target Expression, operator string, value Expression) *AssignmentStatement {
	return &AssignmentStatement{nodeImpl: newNodeImpl(NodeAssignmentStatement), Target: target, Operator: operator, Value: value}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

// Block is an indented statement sequence. It never introduces a scope.
type Block struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: body}
}

type ElifClause struct {
	nodeImpl

	Condition Expression `json:"condition"`
	Body      *Block     `json:"body"`
}

func NewElifClause(condition Expression, body *Block) *ElifClause {
	return &ElifClause{nodeImpl: newNodeImpl(NodeElifClause), Condition: condition, Body: body}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression    `json:"condition"`
	Body      *Block        `json:"body"`
	Elifs     []*ElifClause `json:"elifs,omitempty"`
	Else      *Block        `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, body *Block, elifs []*ElifClause, elseBlock *Block) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Body: body, Elifs: elifs, Else: elseBlock}
}

type ForStatement struct {
	nodeImpl
	statementMarker

	Targets  []*Identifier `json:"targets"`
	Iterable Expression    `json:"iterable"`
	Body     *Block        `json:"body"`
}

func NewForStatement(targets []*Identifier, iterable Expression, body *Block) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Targets: targets, Iterable: iterable, Body: body}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

func NewContinueStatement() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

// ImportStatement covers `import m`, `import m as a` and `from m import f, g`.
// Names is empty for the first two forms.
type ImportStatement struct {
	nodeImpl
	statementMarker

	Module string   `json:"module"`
	Alias  string   `json:"alias,omitempty"`
	Names  []string `json:"names,omitempty"`
}

func NewImportStatement(module, alias string, names []string) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Module: module, Alias: alias, Names: names}
}

// Binding returns the name the module is bound to for plain imports.
func (s *ImportStatement) Binding() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Module
}

// Definitions

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	Name   string   `json:"name"`
	Params []string `json:"params"`
	Body   *Block   `json:"body"`
}

func NewFunctionDefinition(name string, params []string, body *Block) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), Name: name, Params: params, Body: body}
}

// Program is the parse result: top-level imports and function definitions.
// It is immutable once built and may be shared between concurrent runs.
type Program struct {
	nodeImpl

	Imports   []*ImportStatement    `json:"imports"`
	Functions []*FunctionDefinition `json:"functions"`

	index map[string]*FunctionDefinition
}

func NewProgram(imports []*ImportStatement, functions []*FunctionDefinition) *Program {
	index := make(map[string]*FunctionDefinition, len(functions))
	for _, fn := range functions {
		if fn == nil {
			continue
		}
		// Later definitions shadow earlier ones, as a re-def would.
		index[fn.Name] = fn
	}
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Imports: imports, Functions: functions, index: index}
}

// Function looks up a top-level function by name.
func (p *Program) Function(name string) (*FunctionDefinition, bool) {
	if p == nil {
		return nil, false
	}
	if p.index == nil {
		for idx := len(p.Functions) - 1; idx >= 0; idx-- {
			if fn := p.Functions[idx]; fn != nil && fn.Name == name {
				return fn, true
			}
		}
		return nil, false
	}
	fn, ok := p.index[name]
	return fn, ok
}

// FunctionNames lists the defined functions in source order.
func (p *Program) FunctionNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Functions))
	for _, fn := range p.Functions {
		if fn != nil {
			names = append(names, fn.Name)
		}
	}
	return names
}
