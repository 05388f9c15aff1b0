package interpreter

import (
	"fmt"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateAttributeAccess(state *evalState, expr *ast.AttributeAccess, env *runtime.Environment) (runtime.Value, string, error) {
	if mod, ok := state.module(expr.Object, env); ok {
		path := mod.Name + "." + expr.Name
		if val, ok := mod.Constants[expr.Name]; ok {
			return val, path, nil
		}
		if _, ok := mod.Function(expr.Name); ok {
			return nil, "", fmt.Errorf("'%s' is a function; call it as %s(...)", path, path)
		}
		return nil, "", fmt.Errorf("module '%s' has no attribute '%s'%s", mod.Name, expr.Name, didYouMean(expr.Name, mod.Names()))
	}
	obj, base, err := i.evaluateWithPath(state, expr.Object, env)
	if err != nil {
		return nil, "", err
	}
	path := attributePath(base, expr.Name)
	val, err := readMember(env, expr, obj, base, path, runtime.NewString(expr.Name), true, expr.Safe)
	return val, path, err
}

func (i *Interpreter) evaluateIndexAccess(state *evalState, expr *ast.IndexAccess, env *runtime.Environment) (runtime.Value, string, error) {
	obj, base, err := i.evaluateWithPath(state, expr.Object, env)
	if err != nil {
		return nil, "", err
	}
	key, err := i.evaluateExpression(state, expr.Index, env)
	if err != nil {
		return nil, "", err
	}
	path := indexPath(base, key)
	val, err := readMember(env, expr, obj, base, path, key, false, expr.Safe)
	return val, path, err
}

// readMember performs one access step and applies the run's null mode to a
// failed step. base is the path of obj; path is the path of the result.
// Type errors are raised in every mode.
func readMember(env *runtime.Environment, node ast.Node, obj runtime.Value, base, path string, key runtime.Value, attribute, safe bool) (runtime.Value, error) {
	line := node.LineNumber()
	if runtime.IsNull(obj) {
		return accessFailed(env, runtime.AccessBrokenPath, base, safe, line,
			fmt.Errorf("cannot access %s: %s is None", describeKey(key, attribute), base))
	}
	switch container := obj.(type) {
	case *runtime.MappingValue:
		name, ok := key.(runtime.StringValue)
		if !ok {
			return nil, fmt.Errorf("dict keys must be str, not %s", runtime.TypeName(key))
		}
		if val, found := container.Get(name.Val); found {
			return accessSucceeded(env, val, path, safe, line), nil
		}
		return accessFailed(env, runtime.AccessKeyNotFound, path, safe, line,
			fmt.Errorf("key %s not found at %s", runtime.Repr(key), path))
	case *runtime.ListValue:
		if attribute {
			return nil, noAttribute(obj, key)
		}
		idx, err := indexKey(obj, key)
		if err != nil {
			return nil, err
		}
		pos, ok := runtime.ResolveIndex(idx, container.Len())
		if !ok {
			return accessFailed(env, runtime.AccessIndexOutOfBounds, path, safe, line,
				fmt.Errorf("index %d out of range for list of length %d at %s", idx, container.Len(), path))
		}
		return accessSucceeded(env, container.Elements[pos], path, safe, line), nil
	case runtime.StringValue:
		if attribute {
			return nil, noAttribute(obj, key)
		}
		idx, err := indexKey(obj, key)
		if err != nil {
			return nil, err
		}
		chars := []rune(container.Val)
		pos, ok := runtime.ResolveIndex(idx, len(chars))
		if !ok {
			return accessFailed(env, runtime.AccessIndexOutOfBounds, path, safe, line,
				fmt.Errorf("index %d out of range for string of length %d at %s", idx, len(chars), path))
		}
		return accessSucceeded(env, runtime.NewString(string(chars[pos])), path, safe, line), nil
	}
	if attribute {
		return nil, noAttribute(obj, key)
	}
	return nil, fmt.Errorf("'%s' object is not subscriptable", runtime.TypeName(obj))
}

func accessSucceeded(env *runtime.Environment, val runtime.Value, path string, safe bool, line int) runtime.Value {
	env.Record(runtime.AccessEvent{Path: path, Kind: runtime.AccessSuccess, Safe: safe, Line: line})
	return val
}

// accessFailed records the failure, then raises it in strict mode unless the
// access was safe. Every other combination yields None.
func accessFailed(env *runtime.Environment, kind runtime.AccessKind, path string, safe bool, line int, cause error) (runtime.Value, error) {
	env.Record(runtime.AccessEvent{Path: path, Kind: kind, Safe: safe, Line: line})
	if env.NullMode() == runtime.NullStrict && !safe {
		return nil, cause
	}
	return runtime.Null, nil
}

func indexKey(obj, key runtime.Value) (int64, error) {
	n, ok := key.(runtime.IntegerValue)
	if !ok {
		return 0, fmt.Errorf("%s indices must be integers, not %s", runtime.TypeName(obj), runtime.TypeName(key))
	}
	return n.Val, nil
}

func noAttribute(obj, key runtime.Value) error {
	return fmt.Errorf("'%s' object has no attribute %s", runtime.TypeName(obj), runtime.Repr(key))
}

func describeKey(key runtime.Value, attribute bool) string {
	if attribute {
		return "attribute " + runtime.Repr(key)
	}
	return "index " + runtime.Repr(key)
}
