package interpreter

import (
	"math"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
	"grizzly/interpreter-go/pkg/runtime"
)

// sequence is what a for-loop walks.
type sequence interface {
	len() int
	at(idx int) runtime.Value
}

type valueSequence []runtime.Value

func (s valueSequence) len() int                 { return len(s) }
func (s valueSequence) at(idx int) runtime.Value { return s[idx] }

// rangeSequence yields range() values on demand, so `for i in range(n)` never
// materializes the list and is bounded only by the loop governor.
type rangeSequence struct {
	rng builtins.Range
	n   int
}

func (s rangeSequence) len() int { return s.n }
func (s rangeSequence) at(idx int) runtime.Value {
	return runtime.NewInteger(s.rng.At(uint64(idx)))
}

func (i *Interpreter) iterationSource(state *evalState, expr ast.Expression, env *runtime.Environment) (sequence, error) {
	if call, ok := expr.(*ast.FunctionCall); ok && call.Name == "range" {
		args, err := i.evaluateArguments(state, call.Arguments, env)
		if err != nil {
			return nil, err
		}
		rng, err := builtins.ParseRange(args)
		if err != nil {
			return nil, state.attach(err, call)
		}
		n := rng.Len()
		if n > math.MaxInt {
			n = math.MaxInt
		}
		return rangeSequence{rng: rng, n: int(n)}, nil
	}
	val, err := i.evaluateExpression(state, expr, env)
	if err != nil {
		return nil, err
	}
	items, err := runtime.Iterate(val)
	if err != nil {
		return nil, state.attach(err, expr)
	}
	return valueSequence(items), nil
}
