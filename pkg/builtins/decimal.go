package builtins

import (
	"grizzly/interpreter-go/pkg/runtime"
)

func registerDecimal(r *Registry) {
	r.addFunction("Decimal", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.DecimalFromInt(0), nil
		}
		d, err := runtime.ToDecimal(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.DecimalValue{Val: d}, nil
	})

	r.addMethod(runtime.KindDecimal, "round", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		places := 0
		if len(args) == 2 {
			var err error
			if places, err = argInt("round", args, 1); err != nil {
				return nil, err
			}
		}
		return runtime.DecimalValue{Val: args[0].(runtime.DecimalValue).Val.Round(int32(places))}, nil
	})
	r.addMethod(runtime.KindDecimal, "scale", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		exp := args[0].(runtime.DecimalValue).Val.Exponent()
		if exp > 0 {
			exp = 0
		}
		return runtime.NewInteger(int64(-exp)), nil
	})
}
