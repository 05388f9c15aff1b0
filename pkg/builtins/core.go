package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"grizzly/interpreter-go/pkg/runtime"
)

func registerCore(r *Registry) {
	r.addFunction("len", 1, 1, builtinLen)
	r.addFunction("range", 1, 3, builtinRange)
	r.addFunction("str", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewString(""), nil
		}
		return runtime.NewString(runtime.AsString(args[0])), nil
	})
	r.addFunction("int", 0, 2, builtinInt)
	r.addFunction("float", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewFloat(0), nil
		}
		f, err := runtime.ToFloat(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.NewFloat(f), nil
	})
	r.addFunction("bool", 0, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.NewBool(len(args) == 1 && runtime.IsTruthy(args[0])), nil
	})
	r.addFunction("abs", 1, 1, builtinAbs)
	r.addFunction("min", 1, -1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return extreme("min", args, -1)
	})
	r.addFunction("max", 1, -1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return extreme("max", args, 1)
	})
	r.addFunction("sum", 1, 2, builtinSum)
	r.addFunction("type", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.NewString(runtime.TypeName(args[0])), nil
	})
	r.addFunction("isinstance", 2, 2, builtinIsInstance)
	r.addFunction("hasattr", 2, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		name, err := argString("hasattr", args, 1)
		if err != nil {
			return nil, err
		}
		m, ok := args[0].(*runtime.MappingValue)
		return runtime.NewBool(ok && m.Has(name)), nil
	})
	r.addFunction("getattr", 2, 3, builtinGetAttr)
	r.addFunction("round", 1, 2, builtinRound)
	r.addFunction("coalesce", 0, -1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		for _, arg := range args {
			if !runtime.IsNull(arg) {
				return arg, nil
			}
		}
		return runtime.Null, nil
	})
}

func builtinLen(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.StringValue:
		return runtime.NewInteger(int64(utf8.RuneCountInString(v.Val))), nil
	case *runtime.ListValue:
		return runtime.NewInteger(int64(v.Len())), nil
	case *runtime.MappingValue:
		return runtime.NewInteger(int64(v.Len())), nil
	}
	return nil, fmt.Errorf("object of type '%s' has no len()", runtime.TypeName(args[0]))
}

// Range is the arithmetic progression described by range(start, stop, step).
type Range struct {
	Start, Stop, Step int64
}

// ParseRange reads the 1, 2 or 3 integer arguments of range().
func ParseRange(args []runtime.Value) (Range, error) {
	if err := checkArity("range", 1, 3, len(args)); err != nil {
		return Range{}, err
	}
	bounds := make([]int64, len(args))
	for i, arg := range args {
		n, ok := arg.(runtime.IntegerValue)
		if !ok {
			return Range{}, typeError("range", i, "int", arg)
		}
		bounds[i] = n.Val
	}
	rng := Range{Step: 1}
	switch len(bounds) {
	case 1:
		rng.Stop = bounds[0]
	case 2:
		rng.Start, rng.Stop = bounds[0], bounds[1]
	case 3:
		rng.Start, rng.Stop, rng.Step = bounds[0], bounds[1], bounds[2]
	}
	if rng.Step == 0 {
		return Range{}, fmt.Errorf("range() arg 3 must not be zero")
	}
	return rng, nil
}

// Len is the number of values the range yields.
func (r Range) Len() uint64 {
	switch {
	case r.Step > 0 && r.Start < r.Stop:
		return (uint64(r.Stop-r.Start)-1)/uint64(r.Step) + 1
	case r.Step < 0 && r.Start > r.Stop:
		return (uint64(r.Start-r.Stop)-1)/uint64(-r.Step) + 1
	}
	return 0
}

// At returns the i-th value; i must be below Len.
func (r Range) At(i uint64) int64 {
	return r.Start + int64(i)*r.Step
}

func builtinRange(ctx *CallContext, args []runtime.Value) (runtime.Value, error) {
	rng, err := ParseRange(args)
	if err != nil {
		return nil, err
	}
	n := rng.Len()
	if err := checkSize("range", ctx, n); err != nil {
		return nil, err
	}
	out := make([]runtime.Value, n)
	for i := uint64(0); i < n; i++ {
		out[i] = runtime.NewInteger(rng.At(i))
	}
	return runtime.NewList(out...), nil
}

func builtinInt(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewInteger(0), nil
	}
	if len(args) == 2 {
		text, err := argString("int", args, 0)
		if err != nil {
			return nil, err
		}
		base, err := argInt("int", args, 1)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(text), base, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal for int() with base %d: %s", base, runtime.Repr(args[0]))
		}
		return runtime.NewInteger(n), nil
	}
	n, err := runtime.ToLong(args[0])
	if err != nil {
		return nil, err
	}
	return runtime.NewInteger(n), nil
}

func builtinAbs(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.IntegerValue:
		if v.Val < 0 {
			return runtime.Negate(v)
		}
		return v, nil
	case runtime.FloatValue:
		return runtime.NewFloat(math.Abs(v.Val)), nil
	case runtime.DecimalValue:
		return runtime.DecimalValue{Val: v.Val.Abs()}, nil
	}
	return nil, fmt.Errorf("bad operand type for abs(): '%s'", runtime.TypeName(args[0]))
}

// extreme implements min (sign -1) and max (sign 1): one iterable argument or
// several values. The first extreme wins ties.
func extreme(fn string, args []runtime.Value, sign int) (runtime.Value, error) {
	items := args
	if len(args) == 1 {
		var err error
		if items, err = runtime.Iterate(args[0]); err != nil {
			return nil, fmt.Errorf("%s(): %w", fn, err)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s() arg is an empty sequence", fn)
	}
	best := items[0]
	for _, item := range items[1:] {
		c, err := runtime.Compare(item, best)
		if err != nil {
			return nil, fmt.Errorf("%s(): %w", fn, err)
		}
		if c*sign > 0 {
			best = item
		}
	}
	return best, nil
}

func builtinSum(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	items, err := runtime.Iterate(args[0])
	if err != nil {
		return nil, fmt.Errorf("sum(): %w", err)
	}
	acc := optional(args, 1, runtime.NewInteger(0))
	for _, item := range items {
		if acc, err = runtime.Arithmetic("+", acc, item); err != nil {
			return nil, fmt.Errorf("sum(): %w", err)
		}
	}
	return acc, nil
}

var typeAliases = map[string][]string{
	"None":     {"NoneType"},
	"null":     {"NoneType"},
	"string":   {"str"},
	"integer":  {"int"},
	"boolean":  {"bool"},
	"mapping":  {"dict"},
	"decimal":  {"Decimal"},
	"number":   {"int", "float", "Decimal"},
	"datetime": {"datetime"},
}

func builtinIsInstance(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	var names []string
	switch spec := args[1].(type) {
	case runtime.StringValue:
		names = []string{spec.Val}
	case *runtime.ListValue:
		for i, el := range spec.Elements {
			s, ok := el.(runtime.StringValue)
			if !ok {
				return nil, fmt.Errorf("isinstance() type list item %d must be str, not %s", i, runtime.TypeName(el))
			}
			names = append(names, s.Val)
		}
	default:
		return nil, typeError("isinstance", 1, "a type name or list of type names", args[1])
	}
	actual := runtime.TypeName(args[0])
	for _, name := range names {
		candidates, ok := typeAliases[name]
		if !ok {
			candidates = []string{name}
		}
		for _, c := range candidates {
			if c == actual {
				return runtime.True, nil
			}
		}
	}
	return runtime.False, nil
}

func builtinGetAttr(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	name, err := argString("getattr", args, 1)
	if err != nil {
		return nil, err
	}
	if m, ok := args[0].(*runtime.MappingValue); ok {
		if v, found := m.Get(name); found {
			return v, nil
		}
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return nil, fmt.Errorf("'%s' object has no attribute '%s'", runtime.TypeName(args[0]), name)
}

// builtinRound rounds half to even for ints and floats and half away from zero
// for Decimals. Without a digit count ints and floats round to an int.
func builtinRound(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	digits, hasDigits := 0, len(args) == 2
	if hasDigits {
		var err error
		if digits, err = argInt("round", args, 1); err != nil {
			return nil, err
		}
	}
	switch v := args[0].(type) {
	case runtime.IntegerValue:
		if !hasDigits || digits >= 0 {
			return v, nil
		}
		return runtime.NewInteger(decimal.NewFromInt(v.Val).RoundBank(int32(digits)).IntPart()), nil
	case runtime.FloatValue:
		if math.IsNaN(v.Val) || math.IsInf(v.Val, 0) {
			if hasDigits {
				return v, nil
			}
			return nil, fmt.Errorf("cannot round %s to an integer", runtime.FormatFloat(v.Val))
		}
		if !hasDigits {
			n, err := runtime.ToLong(runtime.NewFloat(math.RoundToEven(v.Val)))
			if err != nil {
				return nil, err
			}
			return runtime.NewInteger(n), nil
		}
		f, _ := decimal.NewFromFloat(v.Val).RoundBank(int32(digits)).Float64()
		return runtime.NewFloat(f), nil
	case runtime.DecimalValue:
		return runtime.DecimalValue{Val: v.Val.Round(int32(digits))}, nil
	}
	return nil, typeError("round", 0, "a number", args[0])
}
