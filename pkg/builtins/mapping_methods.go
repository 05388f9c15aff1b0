package builtins

import (
	"fmt"

	"grizzly/interpreter-go/pkg/runtime"
)

func receiverMapping(args []runtime.Value) *runtime.MappingValue {
	return args[0].(*runtime.MappingValue)
}

func registerMappingMethods(r *Registry) {
	add := func(name string, minArgs, maxArgs int, impl NativeFunc) {
		r.addMethod(runtime.KindMapping, name, minArgs, maxArgs, impl)
	}
	add("get", 1, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		key, err := mappingKey("get", args[1])
		if err != nil {
			return nil, err
		}
		if v, ok := receiverMapping(args).Get(key); ok {
			return v, nil
		}
		return optional(args, 2, runtime.Null), nil
	})
	add("keys", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		keys := receiverMapping(args).Keys()
		out := make([]runtime.Value, len(keys))
		for i, k := range keys {
			out[i] = runtime.NewString(k)
		}
		return runtime.NewList(out...), nil
	})
	add("values", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.NewList(receiverMapping(args).Values()...), nil
	})
	add("items", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		m := receiverMapping(args)
		keys := m.Keys()
		out := make([]runtime.Value, len(keys))
		for i, k := range keys {
			v, _ := m.Get(k)
			out[i] = runtime.NewList(runtime.NewString(k), v)
		}
		return runtime.NewList(out...), nil
	})
	add("update", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		src, err := buildMapping("update", args[1:])
		if err != nil {
			return nil, err
		}
		m := receiverMapping(args)
		other := src.(*runtime.MappingValue)
		for _, k := range other.Keys() {
			v, _ := other.Get(k)
			m.Set(k, v)
		}
		return runtime.Null, nil
	})
	add("pop", 1, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		key, err := mappingKey("pop", args[1])
		if err != nil {
			return nil, err
		}
		if v, ok := receiverMapping(args).Delete(key); ok {
			return v, nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return nil, fmt.Errorf("pop(): key %s not found", runtime.Repr(args[1]))
	})
	add("setdefault", 1, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		key, err := mappingKey("setdefault", args[1])
		if err != nil {
			return nil, err
		}
		m := receiverMapping(args)
		if v, ok := m.Get(key); ok {
			return v, nil
		}
		v := optional(args, 2, runtime.Null)
		m.Set(key, v)
		return v, nil
	})
	add("copy", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return receiverMapping(args).Clone(), nil
	})
	add("clear", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		receiverMapping(args).Clear()
		return runtime.Null, nil
	})
	add("contains", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		key, ok := args[1].(runtime.StringValue)
		return runtime.NewBool(ok && receiverMapping(args).Has(key.Val)), nil
	})
}
