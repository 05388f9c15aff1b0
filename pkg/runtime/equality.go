package runtime

import (
	"cmp"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Equal implements ==. A number compared with a string parses the string as a
// number first; numbers compare across int, float and Decimal; lists compare
// element-wise and mappings by key set and values.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	if IsNumeric(a) && IsNumeric(b) {
		c, err := CompareNumbers(a, b)
		return err == nil && c == 0
	}
	if IsNumeric(a) && b.Kind() == KindString {
		num, ok := ParseNumber(b.(StringValue).Val)
		return ok && Equal(a, num)
	}
	if a.Kind() == KindString && IsNumeric(b) {
		num, ok := ParseNumber(a.(StringValue).Val)
		return ok && Equal(num, b)
	}
	switch left := a.(type) {
	case BoolValue:
		right, ok := b.(BoolValue)
		return ok && left.Val == right.Val
	case StringValue:
		right, ok := b.(StringValue)
		return ok && left.Val == right.Val
	case DateTimeValue:
		right, ok := b.(DateTimeValue)
		return ok && left.Val.Equal(right.Val)
	case *ListValue:
		right, ok := b.(*ListValue)
		if !ok || len(left.Elements) != len(right.Elements) {
			return false
		}
		if left == right {
			return true
		}
		for i := range left.Elements {
			if !Equal(left.Elements[i], right.Elements[i]) {
				return false
			}
		}
		return true
	case *MappingValue:
		right, ok := b.(*MappingValue)
		if !ok || left.Len() != right.Len() {
			return false
		}
		if left == right {
			return true
		}
		for _, key := range left.keys {
			rv, ok := right.entries[key]
			if !ok || !Equal(left.entries[key], rv) {
				return false
			}
		}
		return true
	}
	return false
}

// CompareNumbers orders two numeric values. A Decimal against a finite float
// is compared through the float's exact decimal expansion; infinities compare
// as floats and nan does not order at all.
func CompareNumbers(a, b Value) (int, error) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return 0, fmt.Errorf("cannot order %s and %s numerically", TypeName(a), TypeName(b))
	}
	if nonFinite(a) || nonFinite(b) {
		af, _ := ToFloat(a)
		bf, _ := ToFloat(b)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, fmt.Errorf("cannot order nan")
		}
		return cmp.Compare(af, bf), nil
	}
	if a.Kind() == KindDecimal || b.Kind() == KindDecimal {
		return decimalOf(a).Cmp(decimalOf(b)), nil
	}
	if ai, ok := a.(IntegerValue); ok {
		if bi, ok := b.(IntegerValue); ok {
			return cmp.Compare(ai.Val, bi.Val), nil
		}
	}
	af, _ := ToFloat(a)
	bf, _ := ToFloat(b)
	if math.IsNaN(af) || math.IsNaN(bf) {
		return 0, fmt.Errorf("cannot order nan")
	}
	return cmp.Compare(af, bf), nil
}

func nonFinite(v Value) bool {
	f, ok := v.(FloatValue)
	return ok && (math.IsNaN(f.Val) || math.IsInf(f.Val, 0))
}

// decimalOf must not see a non-finite float.
func decimalOf(v Value) decimal.Decimal {
	switch val := v.(type) {
	case DecimalValue:
		return val.Val
	case IntegerValue:
		return decimal.NewFromInt(val.Val)
	case FloatValue:
		return decimal.NewFromFloat(val.Val)
	}
	return decimal.Zero
}

// Compare is the total order used by sorted(), min() and max(): numbers,
// strings, bools and date-times each order among themselves, lists order
// lexicographically. Mixed kinds are an error.
func Compare(a, b Value) (int, error) {
	if IsNumeric(a) && IsNumeric(b) {
		return CompareNumbers(a, b)
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return 0, fmt.Errorf("cannot compare %s with %s", TypeName(a), TypeName(b))
	}
	switch left := a.(type) {
	case StringValue:
		return cmp.Compare(left.Val, b.(StringValue).Val), nil
	case BoolValue:
		return cmp.Compare(boolRank(left.Val), boolRank(b.(BoolValue).Val)), nil
	case DateTimeValue:
		return left.Val.Compare(b.(DateTimeValue).Val), nil
	case *ListValue:
		right := b.(*ListValue)
		for i := 0; i < len(left.Elements) && i < len(right.Elements); i++ {
			c, err := Compare(left.Elements[i], right.Elements[i])
			if err != nil || c != 0 {
				return c, err
			}
		}
		return cmp.Compare(len(left.Elements), len(right.Elements)), nil
	}
	return 0, fmt.Errorf("cannot order values of type %s", TypeName(a))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
