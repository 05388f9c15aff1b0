package typechecker

import (
	"strings"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
	"grizzly/interpreter-go/pkg/interpreter"
	"grizzly/interpreter-go/pkg/runtime"
)

func (c *Checker) checkAssignment(st *ast.AssignmentStatement) {
	c.targetIndexes(st.Target)
	if st.Operator == "=" || st.Operator == "" {
		c.expr(st.Value)
		return
	}
	current := c.expr(st.Target)
	operand := c.expr(st.Value)
	c.binary(st, strings.TrimSuffix(st.Operator, "="), current, operand)
}

// targetIndexes checks the index expressions of an assignment target. The
// containers themselves are created on demand, so they are not read.
func (c *Checker) targetIndexes(target ast.Expression) {
	switch t := target.(type) {
	case *ast.AttributeAccess:
		c.targetIndexes(t.Object)
	case *ast.IndexAccess:
		c.targetIndexes(t.Object)
		c.expr(t.Index)
	}
}

func (c *Checker) checkFor(st *ast.ForStatement) {
	t := c.expr(st.Iterable)
	if t.Known() {
		if _, err := runtime.Iterate(t.sample()); err != nil {
			c.report(st.Iterable, "%s", err)
		}
	}
	c.loopDepth++
	c.checkBlock(st.Body)
	c.loopDepth--
}

func (c *Checker) expr(e ast.Expression) Type {
	switch n := e.(type) {
	case nil:
		return Unknown
	case *ast.StringLiteral:
		return constType(runtime.NewString(n.Value))
	case *ast.IntegerLiteral:
		return constType(runtime.NewInteger(n.Value))
	case *ast.FloatLiteral:
		return constType(runtime.NewFloat(n.Value))
	case *ast.BooleanLiteral:
		return constType(runtime.NewBool(n.Value))
	case *ast.NullLiteral:
		return constType(runtime.Null)
	case *ast.Identifier:
		if c.moduleRef(n) != nil {
			c.report(n, "module '%s' cannot be used as a value", n.Name)
		}
		return Unknown
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			c.expr(el)
		}
		return kindType(runtime.KindList)
	case *ast.MappingLiteral:
		for _, entry := range n.Entries {
			if key := c.expr(entry.Key); key.Known() && key.Kind() != runtime.KindString {
				c.report(entry.Key, "dict keys must be str, not %s", key.Name())
			}
			c.expr(entry.Value)
		}
		return kindType(runtime.KindMapping)
	case *ast.AttributeAccess:
		return c.attribute(n)
	case *ast.IndexAccess:
		return c.index(n)
	case *ast.UnaryExpression:
		return c.unary(n)
	case *ast.BinaryExpression:
		left := c.expr(n.Left)
		right := c.expr(n.Right)
		if n.Operator == "and" || n.Operator == "or" {
			return Unknown
		}
		return c.binary(n, n.Operator, left, right)
	case *ast.MethodCall:
		return c.methodCall(n)
	case *ast.FunctionCall:
		return c.functionCall(n)
	}
	return Unknown
}

// moduleRef resolves an identifier bound by `import m` that the current
// function does not shadow.
func (c *Checker) moduleRef(e ast.Expression) *builtins.Module {
	id, ok := e.(*ast.Identifier)
	if !ok || (c.scope != nil && c.scope.has(id.Name)) {
		return nil
	}
	return c.modules[id.Name]
}

func (c *Checker) attribute(n *ast.AttributeAccess) Type {
	if mod := c.moduleRef(n.Object); mod != nil {
		path := mod.Name + "." + n.Name
		if val, ok := mod.Constants[n.Name]; ok {
			return constType(val)
		}
		if _, ok := mod.Function(n.Name); ok {
			c.report(n, "'%s' is a function; call it as %s(...)", path, path)
			return Unknown
		}
		c.report(n, "module '%s' has no attribute '%s'%s", mod.Name, n.Name, builtins.DidYouMean(n.Name, mod.Names()))
		return Unknown
	}
	obj := c.expr(n.Object)
	if !obj.Known() || obj.Kind() == runtime.KindNull || obj.Kind() == runtime.KindMapping {
		return Unknown
	}
	c.report(n, "'%s' object has no attribute %s", obj.Name(), runtime.Repr(runtime.NewString(n.Name)))
	return Unknown
}

func (c *Checker) index(n *ast.IndexAccess) Type {
	obj := c.expr(n.Object)
	key := c.expr(n.Index)
	if !obj.Known() {
		return Unknown
	}
	switch obj.Kind() {
	case runtime.KindNull:
		return Unknown
	case runtime.KindMapping:
		if key.Known() && key.Kind() != runtime.KindString {
			c.report(n, "dict keys must be str, not %s", key.Name())
		}
		return Unknown
	case runtime.KindList, runtime.KindString:
		if key.Known() && key.Kind() != runtime.KindInteger {
			c.report(n, "%s indices must be integers, not %s", obj.Name(), key.Name())
			return Unknown
		}
		if obj.Kind() == runtime.KindString {
			return kindType(runtime.KindString)
		}
		return Unknown
	}
	c.report(n, "'%s' object is not subscriptable", obj.Name())
	return Unknown
}

func (c *Checker) unary(n *ast.UnaryExpression) Type {
	operand := c.expr(n.Operand)
	if !operand.Known() {
		if n.Operator == "not" {
			return kindType(runtime.KindBool)
		}
		return Unknown
	}
	val, err := interpreter.ApplyUnaryOperator(n.Operator, operand.sample())
	if err != nil {
		c.report(n, "%s", err)
		return Unknown
	}
	return resultType(val, operand.value != nil)
}

// binary runs the interpreter's own operator on constants, or on sample
// values of the operands' kinds, so the two agree on what is an error.
func (c *Checker) binary(node ast.Node, op string, left, right Type) Type {
	if !left.Known() || !right.Known() {
		switch op {
		case "==", "!=", "is", "is not", "in", "not in", "<", ">", "<=", ">=":
			return kindType(runtime.KindBool)
		}
		return Unknown
	}
	val, err := interpreter.ApplyBinaryOperator(op, left.sample(), right.sample())
	if err != nil {
		c.report(node, "%s", err)
		return Unknown
	}
	constant := left.value != nil && right.value != nil
	// The result kind of ** depends on the sign of the exponent.
	if op == "**" && !constant {
		return Unknown
	}
	return resultType(val, constant)
}

func resultType(val runtime.Value, constant bool) Type {
	switch val.Kind() {
	case runtime.KindList, runtime.KindMapping:
		return kindType(val.Kind())
	}
	if constant {
		return constType(val)
	}
	return kindType(val.Kind())
}

func (c *Checker) arguments(args []ast.Expression) {
	for _, arg := range args {
		c.expr(arg)
	}
}

func (c *Checker) methodCall(n *ast.MethodCall) Type {
	if mod := c.moduleRef(n.Receiver); mod != nil {
		c.arguments(n.Arguments)
		fn, ok := mod.Function(n.Method)
		if !ok {
			c.report(n, "module '%s' has no function '%s'%s", mod.Name, n.Method, builtins.DidYouMean(n.Method, mod.Names()))
			return Unknown
		}
		if err := fn.CheckArity(len(n.Arguments)); err != nil {
			c.report(n, "%s", err)
		}
		return Unknown
	}
	recv := c.expr(n.Receiver)
	c.arguments(n.Arguments)
	if !recv.Known() {
		return Unknown
	}
	if recv.Kind() == runtime.KindNull {
		if !n.Safe {
			c.report(n, "cannot call method '%s' on None", n.Method)
		}
		return Unknown
	}
	fn, ok := c.registry.Method(recv.Kind(), n.Method)
	if !ok {
		c.report(n, "'%s' object has no method '%s'%s",
			recv.Name(), n.Method, builtins.DidYouMean(n.Method, c.registry.MethodNames(recv.Kind())))
		return Unknown
	}
	if err := fn.CheckArity(len(n.Arguments)); err != nil {
		c.report(n, "%s", err)
		return Unknown
	}
	return methodResult(recv.Kind(), n.Method)
}

func (c *Checker) functionCall(n *ast.FunctionCall) Type {
	c.arguments(n.Arguments)
	if fn, ok := c.registry.Function(n.Name); ok {
		if err := fn.CheckArity(len(n.Arguments)); err != nil {
			c.report(n, "%s", err)
			return Unknown
		}
		return functionResult(n.Name)
	}
	if fn, ok := c.functions[n.Name]; ok {
		if err := fn.CheckArity(len(n.Arguments)); err != nil {
			c.report(n, "%s", err)
		}
		return Unknown
	}
	if def, ok := c.program.Function(n.Name); ok {
		if got, want := len(n.Arguments), len(def.Params); got != want {
			c.report(n, "%s", builtins.ArgumentCountError(def.Name, want, got))
		}
		return Unknown
	}
	c.report(n, "undefined function '%s'%s", n.Name, builtins.DidYouMean(n.Name, c.callableNames()))
	return Unknown
}

func (c *Checker) callableNames() []string {
	names := append([]string(nil), c.registry.FunctionNames()...)
	names = append(names, c.program.FunctionNames()...)
	for name := range c.functions {
		names = append(names, name)
	}
	return names
}
