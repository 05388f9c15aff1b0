package builtins

import (
	"fmt"
	"slices"

	"grizzly/interpreter-go/pkg/runtime"
)

func registerIteration(r *Registry) {
	r.addFunction("enumerate", 1, 2, builtinEnumerate)
	r.addFunction("zip", 0, -1, builtinZip)
	r.addFunction("sorted", 1, 2, builtinSorted)
	r.addFunction("reversed", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		items, err := runtime.Iterate(args[0])
		if err != nil {
			return nil, fmt.Errorf("reversed(): %w", err)
		}
		slices.Reverse(items)
		return runtime.NewList(items...), nil
	})
	r.addFunction("any", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		items, err := runtime.Iterate(args[0])
		if err != nil {
			return nil, fmt.Errorf("any(): %w", err)
		}
		return runtime.NewBool(slices.ContainsFunc(items, runtime.IsTruthy)), nil
	})
	r.addFunction("all", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		items, err := runtime.Iterate(args[0])
		if err != nil {
			return nil, fmt.Errorf("all(): %w", err)
		}
		for _, item := range items {
			if !runtime.IsTruthy(item) {
				return runtime.False, nil
			}
		}
		return runtime.True, nil
	})
	r.addFunction("list", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 || runtime.IsNull(args[0]) {
			return runtime.NewList(), nil
		}
		items, err := runtime.Iterate(args[0])
		if err != nil {
			return nil, fmt.Errorf("list(): %w", err)
		}
		return runtime.NewList(items...), nil
	})
	r.addFunction("dict", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return buildMapping("dict", args)
	})
	r.addFunction("mapping", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return buildMapping("mapping", args)
	})
}

func builtinEnumerate(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	items, err := runtime.Iterate(args[0])
	if err != nil {
		return nil, fmt.Errorf("enumerate(): %w", err)
	}
	start := int64(0)
	if len(args) == 2 {
		n, ok := args[1].(runtime.IntegerValue)
		if !ok {
			return nil, typeError("enumerate", 1, "int", args[1])
		}
		start = n.Val
	}
	out := make([]runtime.Value, len(items))
	for i, item := range items {
		out[i] = runtime.NewList(runtime.NewInteger(start+int64(i)), item)
	}
	return runtime.NewList(out...), nil
}

func builtinZip(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewList(), nil
	}
	columns := make([][]runtime.Value, len(args))
	shortest := -1
	for i, arg := range args {
		items, err := runtime.Iterate(arg)
		if err != nil {
			return nil, fmt.Errorf("zip() argument %d: %w", i+1, err)
		}
		columns[i] = items
		if shortest < 0 || len(items) < shortest {
			shortest = len(items)
		}
	}
	rows := make([]runtime.Value, shortest)
	for row := 0; row < shortest; row++ {
		tuple := make([]runtime.Value, len(columns))
		for col := range columns {
			tuple[col] = columns[col][row]
		}
		rows[row] = runtime.NewList(tuple...)
	}
	return runtime.NewList(rows...), nil
}

// sortValues sorts in place with a stable order, surfacing the first
// comparison error.
func sortValues(items []runtime.Value, reverse bool) error {
	var cmpErr error
	slices.SortStableFunc(items, func(a, b runtime.Value) int {
		c, err := runtime.Compare(a, b)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		if reverse {
			return -c
		}
		return c
	})
	return cmpErr
}

func builtinSorted(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	items, err := runtime.Iterate(args[0])
	if err != nil {
		return nil, fmt.Errorf("sorted(): %w", err)
	}
	reverse := len(args) == 2 && runtime.IsTruthy(args[1])
	if err := sortValues(items, reverse); err != nil {
		return nil, fmt.Errorf("sorted(): %w", err)
	}
	return runtime.NewList(items...), nil
}

// buildMapping copies a mapping or collects [key, value] pairs.
func buildMapping(fn string, args []runtime.Value) (runtime.Value, error) {
	out := runtime.NewMapping()
	if len(args) == 0 || runtime.IsNull(args[0]) {
		return out, nil
	}
	switch src := args[0].(type) {
	case *runtime.MappingValue:
		return src.Clone(), nil
	case *runtime.ListValue:
		for i, item := range src.Elements {
			pair, ok := item.(*runtime.ListValue)
			if !ok || pair.Len() != 2 {
				return nil, fmt.Errorf("%s(): element %d is not a [key, value] pair", fn, i)
			}
			key, err := mappingKey(fn, pair.Elements[0])
			if err != nil {
				return nil, err
			}
			out.Set(key, pair.Elements[1])
		}
		return out, nil
	}
	return nil, typeError(fn, 0, "a dict or a list of pairs", args[0])
}
