package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToNumber converts v to an int, float or Decimal value. Strings are parsed,
// preferring an integer reading; bools become 0 or 1.
func ToNumber(v Value) (Value, error) {
	switch val := v.(type) {
	case IntegerValue, FloatValue, DecimalValue:
		return val, nil
	case BoolValue:
		if val.Val {
			return NewInteger(1), nil
		}
		return NewInteger(0), nil
	case StringValue:
		if num, ok := ParseNumber(val.Val); ok {
			return num, nil
		}
		return nil, fmt.Errorf("could not convert string to number: %s", Repr(val))
	default:
		return nil, fmt.Errorf("expected a number, got %s", TypeName(v))
	}
}

// ParseNumber reads text as an int when it has no fractional part and as a
// float otherwise. Surrounding whitespace is ignored.
func ParseNumber(text string) (Value, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return NewInteger(n), true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, false
	}
	return NewFloat(f), true
}

// ToLong converts v to an int64. Floats and Decimals truncate toward zero;
// strings must hold an integer literal.
func ToLong(v Value) (int64, error) {
	switch val := v.(type) {
	case IntegerValue:
		return val.Val, nil
	case FloatValue:
		if math.IsNaN(val.Val) || math.IsInf(val.Val, 0) {
			return 0, fmt.Errorf("cannot convert float %s to integer", FormatFloat(val.Val))
		}
		if val.Val >= math.MaxInt64 || val.Val < math.MinInt64 {
			return 0, fmt.Errorf("float %s out of integer range", FormatFloat(val.Val))
		}
		return int64(val.Val), nil
	case DecimalValue:
		truncated := val.Val.Truncate(0)
		if !truncated.BigInt().IsInt64() {
			return 0, fmt.Errorf("Decimal %s out of integer range", FormatDecimal(val.Val))
		}
		return truncated.IntPart(), nil
	case BoolValue:
		if val.Val {
			return 1, nil
		}
		return 0, nil
	case StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(val.Val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid literal for int(): %s", Repr(val))
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %s", TypeName(v))
	}
}

// ToInteger is ToLong narrowed to a Go int, for sizes, counts and indexes.
func ToInteger(v Value) (int, error) {
	n, err := ToLong(v)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt || n < math.MinInt {
		return 0, fmt.Errorf("integer %d out of range", n)
	}
	return int(n), nil
}

// ToFloat converts v to a float64. Decimals are rounded to the nearest float.
func ToFloat(v Value) (float64, error) {
	switch val := v.(type) {
	case IntegerValue:
		return float64(val.Val), nil
	case FloatValue:
		return val.Val, nil
	case DecimalValue:
		f, _ := val.Val.Float64()
		return f, nil
	case BoolValue:
		if val.Val {
			return 1, nil
		}
		return 0, nil
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(val.Val), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %s", Repr(val))
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %s", TypeName(v))
	}
}

// ToDecimal converts ints, Decimals and numeric strings. Floats are refused
// so binary rounding error never leaks into exact arithmetic.
func ToDecimal(v Value) (decimal.Decimal, error) {
	switch val := v.(type) {
	case DecimalValue:
		return val.Val, nil
	case IntegerValue:
		return decimal.NewFromInt(val.Val), nil
	case StringValue:
		d, err := decimal.NewFromString(strings.TrimSpace(val.Val))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid Decimal literal %s", Repr(val))
		}
		return d, nil
	case FloatValue:
		return decimal.Decimal{}, fmt.Errorf("cannot mix Decimal and float; build the Decimal from a string")
	default:
		return decimal.Decimal{}, fmt.Errorf("expected a Decimal, got %s", TypeName(v))
	}
}
