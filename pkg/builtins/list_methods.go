package builtins

import (
	"fmt"

	"grizzly/interpreter-go/pkg/runtime"
)

func receiverList(args []runtime.Value) *runtime.ListValue {
	return args[0].(*runtime.ListValue)
}

func registerListMethods(r *Registry) {
	add := func(name string, minArgs, maxArgs int, impl NativeFunc) {
		r.addMethod(runtime.KindList, name, minArgs, maxArgs, impl)
	}
	add("append", 1, 1, func(ctx *CallContext, args []runtime.Value) (runtime.Value, error) {
		l := receiverList(args)
		if err := checkSize("append", ctx, uint64(l.Len())+1); err != nil {
			return nil, err
		}
		l.Append(args[1])
		return runtime.Null, nil
	})
	add("extend", 1, 1, func(ctx *CallContext, args []runtime.Value) (runtime.Value, error) {
		items, err := runtime.Iterate(args[1])
		if err != nil {
			return nil, fmt.Errorf("extend(): %w", err)
		}
		l := receiverList(args)
		if err := checkSize("extend", ctx, uint64(l.Len())+uint64(len(items))); err != nil {
			return nil, err
		}
		l.Append(items...)
		return runtime.Null, nil
	})
	add("insert", 2, 2, listInsert)
	add("pop", 0, 1, listPop)
	add("remove", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		l := receiverList(args)
		idx := indexOf(l, args[1])
		if idx < 0 {
			return nil, fmt.Errorf("remove(): %s not in list", runtime.Repr(args[1]))
		}
		l.Elements = append(l.Elements[:idx], l.Elements[idx+1:]...)
		return runtime.Null, nil
	})
	add("index", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		idx := indexOf(receiverList(args), args[1])
		if idx < 0 {
			return nil, fmt.Errorf("index(): %s not in list", runtime.Repr(args[1]))
		}
		return runtime.NewInteger(int64(idx)), nil
	})
	add("count", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		n := 0
		for _, el := range receiverList(args).Elements {
			if runtime.Equal(el, args[1]) {
				n++
			}
		}
		return runtime.NewInteger(int64(n)), nil
	})
	add("sort", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		l := receiverList(args)
		reverse := len(args) == 2 && runtime.IsTruthy(args[1])
		sorted := l.Snapshot()
		if err := sortValues(sorted, reverse); err != nil {
			return nil, fmt.Errorf("sort(): %w", err)
		}
		l.Elements = sorted
		return runtime.Null, nil
	})
	add("reverse", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		els := receiverList(args).Elements
		for i, j := 0, len(els)-1; i < j; i, j = i+1, j-1 {
			els[i], els[j] = els[j], els[i]
		}
		return runtime.Null, nil
	})
	add("copy", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.NewList(receiverList(args).Snapshot()...), nil
	})
	add("clear", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		receiverList(args).Elements = nil
		return runtime.Null, nil
	})
}

func indexOf(l *runtime.ListValue, target runtime.Value) int {
	for i, el := range l.Elements {
		if runtime.Equal(el, target) {
			return i
		}
	}
	return -1
}

// listInsert clamps out-of-range positions to the ends of the list.
func listInsert(ctx *CallContext, args []runtime.Value) (runtime.Value, error) {
	l := receiverList(args)
	pos, err := argInt("insert", args, 1)
	if err != nil {
		return nil, err
	}
	if err := checkSize("insert", ctx, uint64(l.Len())+1); err != nil {
		return nil, err
	}
	n := l.Len()
	if pos < 0 {
		pos = max(pos+n, 0)
	}
	pos = min(pos, n)
	l.Elements = append(l.Elements, nil)
	copy(l.Elements[pos+1:], l.Elements[pos:])
	l.Elements[pos] = args[2]
	return runtime.Null, nil
}

func listPop(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	l := receiverList(args)
	if l.Len() == 0 {
		return nil, fmt.Errorf("pop(): pop from empty list")
	}
	idx := int64(-1)
	if len(args) == 2 {
		n, err := argInt("pop", args, 1)
		if err != nil {
			return nil, err
		}
		idx = int64(n)
	}
	pos, ok := runtime.ResolveIndex(idx, l.Len())
	if !ok {
		return nil, fmt.Errorf("pop(): index %d out of range", idx)
	}
	val := l.Elements[pos]
	l.Elements = append(l.Elements[:pos], l.Elements[pos+1:]...)
	return val, nil
}
