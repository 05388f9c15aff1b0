package interpreter

import (
	"fmt"
	"strings"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/runtime"
)

// evaluateExpression evaluates node and positions any failure at it.
func (i *Interpreter) evaluateExpression(state *evalState, node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	val, _, err := i.evaluateWithPath(state, node, env)
	return val, err
}

// evaluateWithPath also returns the access path of node, e.g. INPUT.a[0], so
// that accesses built on it can be reported.
func (i *Interpreter) evaluateWithPath(state *evalState, node ast.Expression, env *runtime.Environment) (runtime.Value, string, error) {
	val, path, err := i.evaluateNode(state, node, env)
	if err != nil {
		return nil, "", state.attach(err, node)
	}
	return val, path, nil
}

func (i *Interpreter) evaluateNode(state *evalState, node ast.Expression, env *runtime.Environment) (runtime.Value, string, error) {
	switch n := node.(type) {
	case *ast.StringLiteral:
		return runtime.NewString(n.Value), literalPath, nil
	case *ast.IntegerLiteral:
		return runtime.NewInteger(n.Value), literalPath, nil
	case *ast.FloatLiteral:
		return runtime.NewFloat(n.Value), literalPath, nil
	case *ast.BooleanLiteral:
		return runtime.NewBool(n.Value), literalPath, nil
	case *ast.NullLiteral:
		return runtime.Null, literalPath, nil
	case *ast.Identifier:
		val, err := i.lookupIdentifier(state, n, env)
		return val, n.Name, err
	case *ast.ListLiteral:
		items, err := i.evaluateArguments(state, n.Elements, env)
		if err != nil {
			return nil, "", err
		}
		return runtime.NewList(items...), "[...]", nil
	case *ast.MappingLiteral:
		val, err := i.evaluateMappingLiteral(state, n, env)
		return val, "{...}", err
	case *ast.AttributeAccess:
		return i.evaluateAttributeAccess(state, n, env)
	case *ast.IndexAccess:
		return i.evaluateIndexAccess(state, n, env)
	case *ast.UnaryExpression:
		val, err := i.evaluateUnaryExpression(state, n, env)
		return val, exprPath, err
	case *ast.BinaryExpression:
		val, err := i.evaluateBinaryExpression(state, n, env)
		return val, exprPath, err
	case *ast.FunctionCall:
		val, err := i.evaluateFunctionCall(state, n, env)
		return val, n.Name + "()", err
	case *ast.MethodCall:
		return i.evaluateMethodCall(state, n, env)
	default:
		return nil, "", fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

func (i *Interpreter) lookupIdentifier(state *evalState, id *ast.Identifier, env *runtime.Environment) (runtime.Value, error) {
	if val, ok := env.Lookup(id.Name); ok {
		return val, nil
	}
	if _, ok := state.modules[id.Name]; ok {
		return nil, fmt.Errorf("module '%s' cannot be used as a value", id.Name)
	}
	return nil, fmt.Errorf("undefined variable '%s'%s", id.Name, didYouMean(id.Name, env.Names()))
}

func (i *Interpreter) evaluateArguments(state *evalState, exprs []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	out := make([]runtime.Value, len(exprs))
	for idx, expr := range exprs {
		val, err := i.evaluateExpression(state, expr, env)
		if err != nil {
			return nil, err
		}
		out[idx] = val
	}
	return out, nil
}

func (i *Interpreter) evaluateMappingLiteral(state *evalState, lit *ast.MappingLiteral, env *runtime.Environment) (runtime.Value, error) {
	out := runtime.NewMapping()
	for _, entry := range lit.Entries {
		key, err := i.evaluateExpression(state, entry.Key, env)
		if err != nil {
			return nil, err
		}
		name, ok := key.(runtime.StringValue)
		if !ok {
			return nil, state.attach(fmt.Errorf("dict keys must be str, not %s", runtime.TypeName(key)), entry.Key)
		}
		val, err := i.evaluateExpression(state, entry.Value, env)
		if err != nil {
			return nil, err
		}
		out.Set(name.Val, val)
	}
	return out, nil
}

func (i *Interpreter) evaluateUnaryExpression(state *evalState, expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(state, expr.Operand, env)
	if err != nil {
		return nil, err
	}
	return ApplyUnaryOperator(expr.Operator, operand)
}

// ApplyUnaryOperator evaluates `not`, unary minus and unary plus.
func ApplyUnaryOperator(op string, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case "not":
		return runtime.NewBool(!runtime.IsTruthy(operand)), nil
	case "-":
		return runtime.Negate(operand)
	case "+":
		if !runtime.IsNumeric(operand) {
			return nil, fmt.Errorf("bad operand type for unary +: '%s'", runtime.TypeName(operand))
		}
		return operand, nil
	}
	return nil, fmt.Errorf("unsupported unary operator %s", op)
}

func (i *Interpreter) evaluateBinaryExpression(state *evalState, expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(state, expr.Left, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "and":
		if !runtime.IsTruthy(left) {
			return left, nil
		}
		return i.evaluateExpression(state, expr.Right, env)
	case "or":
		if runtime.IsTruthy(left) {
			return left, nil
		}
		return i.evaluateExpression(state, expr.Right, env)
	}
	right, err := i.evaluateExpression(state, expr.Right, env)
	if err != nil {
		return nil, err
	}
	return ApplyBinaryOperator(expr.Operator, left, right)
}

// ApplyBinaryOperator evaluates every binary operator except the
// short-circuiting `and` and `or`.
func ApplyBinaryOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "==":
		return runtime.NewBool(runtime.Equal(left, right)), nil
	case "!=":
		return runtime.NewBool(!runtime.Equal(left, right)), nil
	case "<", ">", "<=", ">=":
		return compareOrdered(op, left, right)
	case "in":
		return membership(left, right)
	case "not in":
		found, err := membership(left, right)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(!runtime.IsTruthy(found)), nil
	case "is":
		return runtime.NewBool(identical(left, right)), nil
	case "is not":
		return runtime.NewBool(!identical(left, right)), nil
	case "+":
		return add(left, right)
	case "*":
		return multiply(left, right)
	case "-", "/", "//", "%", "**":
		return runtime.Arithmetic(op, left, right)
	}
	return nil, fmt.Errorf("unsupported operator %s", op)
}

// compareOrdered accepts numeric operands only.
func compareOrdered(op string, left, right runtime.Value) (runtime.Value, error) {
	if !runtime.IsNumeric(left) || !runtime.IsNumeric(right) {
		return nil, fmt.Errorf("'%s' not supported between instances of '%s' and '%s'", op, runtime.TypeName(left), runtime.TypeName(right))
	}
	c, err := runtime.CompareNumbers(left, right)
	if err != nil {
		return nil, err
	}
	switch op {
	case "<":
		return runtime.NewBool(c < 0), nil
	case ">":
		return runtime.NewBool(c > 0), nil
	case "<=":
		return runtime.NewBool(c <= 0), nil
	default:
		return runtime.NewBool(c >= 0), nil
	}
}

func membership(needle, haystack runtime.Value) (runtime.Value, error) {
	switch container := haystack.(type) {
	case *runtime.ListValue:
		for _, el := range container.Elements {
			if runtime.Equal(el, needle) {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	case runtime.StringValue:
		sub, ok := needle.(runtime.StringValue)
		if !ok {
			return nil, fmt.Errorf("'in <string>' requires string as left operand, not %s", runtime.TypeName(needle))
		}
		return runtime.NewBool(strings.Contains(container.Val, sub.Val)), nil
	case *runtime.MappingValue:
		key, ok := needle.(runtime.StringValue)
		return runtime.NewBool(ok && container.Has(key.Val)), nil
	}
	return nil, fmt.Errorf("argument of type '%s' is not iterable", runtime.TypeName(haystack))
}

// identical is None identity, and equality for everything else.
func identical(left, right runtime.Value) bool {
	if runtime.IsNull(left) || runtime.IsNull(right) {
		return runtime.IsNull(left) && runtime.IsNull(right)
	}
	if l, ok := left.(*runtime.ListValue); ok {
		r, ok := right.(*runtime.ListValue)
		return ok && l == r
	}
	if l, ok := left.(*runtime.MappingValue); ok {
		r, ok := right.(*runtime.MappingValue)
		return ok && l == r
	}
	return left.Kind() == right.Kind() && runtime.Equal(left, right)
}

func add(left, right runtime.Value) (runtime.Value, error) {
	_, ls := left.(runtime.StringValue)
	_, rs := right.(runtime.StringValue)
	if ls || rs {
		return runtime.NewString(runtime.AsString(left) + runtime.AsString(right)), nil
	}
	if l, ok := left.(*runtime.ListValue); ok {
		r, ok := right.(*runtime.ListValue)
		if !ok {
			return nil, fmt.Errorf("can only concatenate list (not \"%s\") to list", runtime.TypeName(right))
		}
		out := make([]runtime.Value, 0, l.Len()+r.Len())
		out = append(out, l.Elements...)
		out = append(out, r.Elements...)
		return runtime.NewList(out...), nil
	}
	return runtime.Arithmetic("+", left, right)
}

func multiply(left, right runtime.Value) (runtime.Value, error) {
	if n, ok := left.(runtime.IntegerValue); ok {
		switch right.(type) {
		case runtime.StringValue, *runtime.ListValue:
			return repeat(right, n.Val)
		}
	}
	if n, ok := right.(runtime.IntegerValue); ok {
		switch left.(type) {
		case runtime.StringValue, *runtime.ListValue:
			return repeat(left, n.Val)
		}
	}
	return runtime.Arithmetic("*", left, right)
}

func repeat(seq runtime.Value, times int64) (runtime.Value, error) {
	if times < 0 {
		times = 0
	}
	switch v := seq.(type) {
	case runtime.StringValue:
		if len(v.Val) > 0 && times > runtime.MaxSequenceSize/int64(len(v.Val)) {
			return nil, fmt.Errorf("repeated string would exceed %d bytes", runtime.MaxSequenceSize)
		}
		return runtime.NewString(strings.Repeat(v.Val, int(times))), nil
	case *runtime.ListValue:
		if v.Len() > 0 && times > runtime.MaxSequenceSize/int64(v.Len()) {
			return nil, fmt.Errorf("repeated list would exceed %d items", runtime.MaxSequenceSize)
		}
		out := make([]runtime.Value, 0, v.Len()*int(times))
		for j := int64(0); j < times; j++ {
			out = append(out, v.Elements...)
		}
		return runtime.NewList(out...), nil
	}
	return nil, fmt.Errorf("cannot repeat %s", runtime.TypeName(seq))
}
