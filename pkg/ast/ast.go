package ast

type NodeType string

const (
	NodeIdentifier          NodeType = "Identifier"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeIntegerLiteral      NodeType = "IntegerLiteral"
	NodeFloatLiteral        NodeType = "FloatLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeNullLiteral         NodeType = "NullLiteral"
	NodeListLiteral         NodeType = "ListLiteral"
	NodeMappingEntry        NodeType = "MappingEntry"
	NodeMappingLiteral      NodeType = "MappingLiteral"
	NodeAttributeAccess     NodeType = "AttributeAccess"
	NodeIndexAccess         NodeType = "IndexAccess"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeMethodCall          NodeType = "MethodCall"
	NodeFunctionCall        NodeType = "FunctionCall"
	NodeAssignmentStatement NodeType = "AssignmentStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeIfStatement         NodeType = "IfStatement"
	NodeElifClause          NodeType = "ElifClause"
	NodeForStatement        NodeType = "ForStatement"
	NodeBreakStatement      NodeType = "BreakStatement"
	NodeContinueStatement   NodeType = "ContinueStatement"
	NodeImportStatement     NodeType = "ImportStatement"
	NodeFunctionDefinition  NodeType = "FunctionDefinition"
	NodeBlock               NodeType = "Block"
	NodeProgram             NodeType = "Program"
)

type Node interface {
	NodeType() NodeType
	LineNumber() int
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	Line int      `json:"line,omitempty"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) LineNumber() int    { return n.Line }
func (nodeImpl) isNode()              {}

// SetLine records the 1-based source line the node starts on.
func (n *nodeImpl) SetLine(line int) { n.Line = line }

// Positioned is implemented by every concrete node pointer.
type Positioned interface {
	Node
	SetLine(line int)
}

// At stamps a line onto a freshly built node and returns it.
func At[T Positioned](node T, line int) T {
	node.SetLine(line)
	return node
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

// Collections

type ListLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	return &ListLiteral{nodeImpl: newNodeImpl(NodeListLiteral), Elements: elements}
}

type MappingEntry struct {
	nodeImpl

	Key   Expression `json:"key"`
	Value Expression `json:"value"`
}

func NewMappingEntry(key, value Expression) *MappingEntry {
	return &MappingEntry{nodeImpl: newNodeImpl(NodeMappingEntry), Key: key, Value: value}
}

type MappingLiteral struct {
	nodeImpl
	expressionMarker

	Entries []*MappingEntry `json:"entries"`
}

func NewMappingLiteral(entries []*MappingEntry) *MappingLiteral {
	return &MappingLiteral{nodeImpl: newNodeImpl(NodeMappingLiteral), Entries: entries}
}

// Access

// AttributeAccess is `object.name`, or `object?.name` when Safe is set.
type AttributeAccess struct {
	nodeImpl
	expressionMarker

	Object Expression `json:"object"`
	Name   string     `json:"name"`
	Safe   bool       `json:"safe,omitempty"`
}

func NewAttributeAccess(object Expression, name string, safe bool) *AttributeAccess {
	return &AttributeAccess{nodeImpl: newNodeImpl(NodeAttributeAccess), Object: object, Name: name, Safe: safe}
}

// IndexAccess is `object[index]`, or `object?[index]` when Safe is set.
type IndexAccess struct {
	nodeImpl
	expressionMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
	Safe   bool       `json:"safe,omitempty"`
}

func NewIndexAccess(object, index Expression, safe bool) *IndexAccess {
	return &IndexAccess{nodeImpl: newNodeImpl(NodeIndexAccess), Object: object, Index: index, Safe: safe}
}

// Operators

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// Calls

type MethodCall struct {
	nodeImpl
	expressionMarker

	Receiver  Expression   `json:"receiver"`
	Method    string       `json:"method"`
	Arguments []Expression `json:"arguments"`
	Safe      bool         `json:"safe,omitempty"`
}

func NewMethodCall(receiver Expression, method string, args []Expression, safe bool) *MethodCall {
	return &MethodCall{nodeImpl: newNodeImpl(NodeMethodCall), Receiver: receiver, Method: method, Arguments: args, Safe: safe}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker

	Name      string       `json:"name"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(name string, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Name: name, Arguments: args}
}
