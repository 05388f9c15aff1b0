package typechecker

import (
	"time"

	"grizzly/interpreter-go/pkg/runtime"
)

// Type is what the checker knows about an expression: nothing, its kind, or
// its exact value when the expression is a constant.
type Type struct {
	kind  runtime.Kind
	known bool
	value runtime.Value
}

// Unknown is the type of anything whose value depends on the input or on
// the caller's scope.
var Unknown = Type{}

func kindType(kind runtime.Kind) Type {
	return Type{kind: kind, known: true}
}

func constType(v runtime.Value) Type {
	return Type{kind: v.Kind(), known: true, value: v}
}

func (t Type) Known() bool { return t.known }

func (t Type) Kind() runtime.Kind { return t.kind }

// Constant returns the folded value, if there is one.
func (t Type) Constant() (runtime.Value, bool) {
	return t.value, t.value != nil
}

// Name renders the type the way runtime errors name values.
func (t Type) Name() string {
	if !t.known {
		return "unknown"
	}
	return runtime.TypeName(t.sample())
}

// sample is a representative value of the type. Samples are nonzero so
// operator checks never trip over division by zero.
func (t Type) sample() runtime.Value {
	if t.value != nil {
		return t.value
	}
	switch t.kind {
	case runtime.KindNull:
		return runtime.Null
	case runtime.KindBool:
		return runtime.True
	case runtime.KindInteger:
		return runtime.NewInteger(1)
	case runtime.KindFloat:
		return runtime.NewFloat(1.5)
	case runtime.KindDecimal:
		return runtime.DecimalFromInt(1)
	case runtime.KindString:
		return runtime.NewString("s")
	case runtime.KindList:
		return runtime.NewList()
	case runtime.KindMapping:
		return runtime.NewMapping()
	case runtime.KindDateTime:
		return runtime.NewDateTime(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	}
	return runtime.Null
}
