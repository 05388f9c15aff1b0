package interpreter

import (
	"fmt"
	"strings"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateAssignment(state *evalState, stmt *ast.AssignmentStatement, env *runtime.Environment) error {
	var value runtime.Value
	if stmt.Operator == "=" {
		val, err := i.evaluateExpression(state, stmt.Value, env)
		if err != nil {
			return err
		}
		value = val
	} else {
		current, err := i.evaluateExpression(state, stmt.Target, env)
		if err != nil {
			return err
		}
		operand, err := i.evaluateExpression(state, stmt.Value, env)
		if err != nil {
			return err
		}
		if value, err = ApplyBinaryOperator(strings.TrimSuffix(stmt.Operator, "="), current, operand); err != nil {
			return err
		}
	}
	return i.assignTo(state, stmt.Target, value, env)
}

func (i *Interpreter) assignTo(state *evalState, target ast.Expression, value runtime.Value, env *runtime.Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		env.Set(t.Name, value)
		return nil
	case *ast.AttributeAccess:
		container, err := i.ensureContainer(state, t.Object, env)
		if err != nil {
			return err
		}
		return storeMember(container, runtime.NewString(t.Name), value)
	case *ast.IndexAccess:
		container, err := i.ensureContainer(state, t.Object, env)
		if err != nil {
			return err
		}
		key, err := i.evaluateExpression(state, t.Index, env)
		if err != nil {
			return err
		}
		return storeMember(container, key, value)
	}
	return fmt.Errorf("cannot assign to %s", target.NodeType())
}

// ensureContainer returns the value at expr, creating empty mappings for
// segments that are missing or None so that a nested store can proceed.
// The root variable must already be bound.
func (i *Interpreter) ensureContainer(state *evalState, expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		val, ok := env.Lookup(e.Name)
		if !ok {
			return nil, state.attach(fmt.Errorf("undefined variable '%s'%s", e.Name, didYouMean(e.Name, env.Names())), e)
		}
		if runtime.IsNull(val) {
			fresh := runtime.NewMapping()
			env.Set(e.Name, fresh)
			return fresh, nil
		}
		return val, nil
	case *ast.AttributeAccess:
		parent, err := i.ensureContainer(state, e.Object, env)
		if err != nil {
			return nil, err
		}
		return vivify(parent, runtime.NewString(e.Name))
	case *ast.IndexAccess:
		parent, err := i.ensureContainer(state, e.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := i.evaluateExpression(state, e.Index, env)
		if err != nil {
			return nil, err
		}
		return vivify(parent, key)
	}
	return i.evaluateExpression(state, expr, env)
}

// vivify returns parent[key], storing a fresh mapping there first when the
// slot is missing or None.
func vivify(parent, key runtime.Value) (runtime.Value, error) {
	switch container := parent.(type) {
	case *runtime.MappingValue:
		name, ok := key.(runtime.StringValue)
		if !ok {
			return nil, fmt.Errorf("dict keys must be str, not %s", runtime.TypeName(key))
		}
		if existing, found := container.Get(name.Val); found && !runtime.IsNull(existing) {
			return existing, nil
		}
		fresh := runtime.NewMapping()
		container.Set(name.Val, fresh)
		return fresh, nil
	case *runtime.ListValue:
		idx, err := indexKey(parent, key)
		if err != nil {
			return nil, err
		}
		pos, ok := runtime.ResolveIndex(idx, container.Len())
		if !ok {
			return nil, fmt.Errorf("list index %d out of range", idx)
		}
		if existing := container.Elements[pos]; !runtime.IsNull(existing) {
			return existing, nil
		}
		fresh := runtime.NewMapping()
		container.Elements[pos] = fresh
		return fresh, nil
	}
	return nil, fmt.Errorf("'%s' object does not support item assignment", runtime.TypeName(parent))
}

func storeMember(container, key, value runtime.Value) error {
	switch c := container.(type) {
	case *runtime.MappingValue:
		name, ok := key.(runtime.StringValue)
		if !ok {
			return fmt.Errorf("dict keys must be str, not %s", runtime.TypeName(key))
		}
		c.Set(name.Val, value)
		return nil
	case *runtime.ListValue:
		idx, err := indexKey(container, key)
		if err != nil {
			return err
		}
		pos, ok := runtime.ResolveIndex(idx, c.Len())
		if !ok {
			return fmt.Errorf("list assignment index %d out of range for list of length %d", idx, c.Len())
		}
		c.Elements[pos] = value
		return nil
	}
	return fmt.Errorf("'%s' object does not support item assignment", runtime.TypeName(container))
}
