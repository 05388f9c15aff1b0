package builtins

import (
	"fmt"

	"grizzly/interpreter-go/pkg/runtime"
)

func typeError(fn string, pos int, want string, got runtime.Value) error {
	return fmt.Errorf("%s() argument %d must be %s, not %s", fn, pos+1, want, runtime.TypeName(got))
}

func argString(fn string, args []runtime.Value, pos int) (string, error) {
	s, ok := args[pos].(runtime.StringValue)
	if !ok {
		return "", typeError(fn, pos, "str", args[pos])
	}
	return s.Val, nil
}

func argInt(fn string, args []runtime.Value, pos int) (int, error) {
	n, ok := args[pos].(runtime.IntegerValue)
	if !ok {
		if b, isBool := args[pos].(runtime.BoolValue); isBool {
			if b.Val {
				return 1, nil
			}
			return 0, nil
		}
		return 0, typeError(fn, pos, "int", args[pos])
	}
	return runtime.ToInteger(n)
}

func argList(fn string, args []runtime.Value, pos int) (*runtime.ListValue, error) {
	l, ok := args[pos].(*runtime.ListValue)
	if !ok {
		return nil, typeError(fn, pos, "list", args[pos])
	}
	return l, nil
}

func argMapping(fn string, args []runtime.Value, pos int) (*runtime.MappingValue, error) {
	m, ok := args[pos].(*runtime.MappingValue)
	if !ok {
		return nil, typeError(fn, pos, "dict", args[pos])
	}
	return m, nil
}

// optional returns args[pos] or fallback when the argument was omitted.
func optional(args []runtime.Value, pos int, fallback runtime.Value) runtime.Value {
	if pos < len(args) {
		return args[pos]
	}
	return fallback
}

// mappingKey enforces string keys.
func mappingKey(fn string, key runtime.Value) (string, error) {
	s, ok := key.(runtime.StringValue)
	if !ok {
		return "", fmt.Errorf("%s(): mapping keys must be str, not %s", fn, runtime.TypeName(key))
	}
	return s.Val, nil
}

func checkSize(fn string, ctx *CallContext, n uint64) error {
	if limit := ctx.maxItems(); n > uint64(limit) {
		return fmt.Errorf("%s() would produce %d items, exceeding the limit of %d", fn, n, limit)
	}
	return nil
}
