package runtime

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrIntegerOverflow = errors.New("integer overflow")
)

// MaxSequenceSize bounds the strings and lists a single operation may build.
const MaxSequenceSize = 10_000_000

// MaxDecimalDigits bounds the estimated digit count of a Decimal power.
const MaxDecimalDigits = 100_000

// Arithmetic applies a numeric binary operator (+ - * / // % **). Two ints
// stay int unless the operator is / or a negative power; any float promotes
// to float; any Decimal selects exact decimal arithmetic.
func Arithmetic(op string, a, b Value) (Value, error) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, fmt.Errorf("unsupported operand type(s) for %s: '%s' and '%s'", op, TypeName(a), TypeName(b))
	}
	if a.Kind() == KindDecimal || b.Kind() == KindDecimal {
		if a.Kind() == KindFloat || b.Kind() == KindFloat {
			return nil, fmt.Errorf("cannot mix Decimal and float in '%s'; build the Decimal from a string", op)
		}
		return decimalArithmetic(op, decimalOf(a), decimalOf(b))
	}
	if ai, ok := a.(IntegerValue); ok {
		if bi, ok := b.(IntegerValue); ok {
			return integerArithmetic(op, ai.Val, bi.Val)
		}
	}
	af, _ := ToFloat(a)
	bf, _ := ToFloat(b)
	return floatArithmetic(op, af, bf)
}

func integerArithmetic(op string, a, b int64) (Value, error) {
	switch op {
	case "+":
		s := a + b
		if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
			return nil, ErrIntegerOverflow
		}
		return NewInteger(s), nil
	case "-":
		d := a - b
		if (a >= 0 && b < 0 && d < 0) || (a < 0 && b > 0 && d >= 0) {
			return nil, ErrIntegerOverflow
		}
		return NewInteger(d), nil
	case "*":
		p, ok := mulInt64(a, b)
		if !ok {
			return nil, ErrIntegerOverflow
		}
		return NewInteger(p), nil
	case "/":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return NewFloat(float64(a) / float64(b)), nil
	case "//":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		if a == math.MinInt64 && b == -1 {
			return nil, ErrIntegerOverflow
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return NewInteger(q), nil
	case "%":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		if b == -1 {
			return NewInteger(0), nil
		}
		r := a % b
		if r != 0 && ((r < 0) != (b < 0)) {
			r += b
		}
		return NewInteger(r), nil
	case "**":
		if b < 0 {
			if a == 0 {
				return nil, ErrDivisionByZero
			}
			return NewFloat(math.Pow(float64(a), float64(b))), nil
		}
		result, base := int64(1), a
		for exp := b; exp > 0; exp >>= 1 {
			var ok bool
			if exp&1 == 1 {
				if result, ok = mulInt64(result, base); !ok {
					return nil, ErrIntegerOverflow
				}
			}
			if exp > 1 {
				if base, ok = mulInt64(base, base); !ok {
					return nil, ErrIntegerOverflow
				}
			}
		}
		return NewInteger(result), nil
	}
	return nil, fmt.Errorf("unknown arithmetic operator '%s'", op)
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}

func floatArithmetic(op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return NewFloat(a + b), nil
	case "-":
		return NewFloat(a - b), nil
	case "*":
		return NewFloat(a * b), nil
	case "/":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return NewFloat(a / b), nil
	case "//":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return NewFloat(math.Floor(a / b)), nil
	case "%":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		r := math.Mod(a, b)
		if r != 0 && ((r < 0) != (b < 0)) {
			r += b
		}
		return NewFloat(r), nil
	case "**":
		if a == 0 && b < 0 {
			return nil, ErrDivisionByZero
		}
		p := math.Pow(a, b)
		if math.IsNaN(p) && !math.IsNaN(a) && !math.IsNaN(b) {
			return nil, fmt.Errorf("math domain error: %s ** %s", FormatFloat(a), FormatFloat(b))
		}
		return NewFloat(p), nil
	}
	return nil, fmt.Errorf("unknown arithmetic operator '%s'", op)
}

func decimalArithmetic(op string, a, b decimal.Decimal) (Value, error) {
	switch op {
	case "+":
		return DecimalValue{Val: a.Add(b)}, nil
	case "-":
		return DecimalValue{Val: a.Sub(b)}, nil
	case "*":
		return DecimalValue{Val: a.Mul(b)}, nil
	case "/":
		if b.IsZero() {
			return nil, ErrDivisionByZero
		}
		return DecimalValue{Val: normalizeDecimal(a.Div(b))}, nil
	case "//":
		if b.IsZero() {
			return nil, ErrDivisionByZero
		}
		r := floorMod(a, b)
		return DecimalValue{Val: a.Sub(r).Div(b).Round(0)}, nil
	case "%":
		if b.IsZero() {
			return nil, ErrDivisionByZero
		}
		return DecimalValue{Val: floorMod(a, b)}, nil
	case "**":
		if !b.Equal(b.Truncate(0)) || !b.BigInt().IsInt64() || b.IntPart() > math.MaxInt32 || b.IntPart() < math.MinInt32 {
			return nil, fmt.Errorf("Decimal exponent must be an integer, got %s", FormatDecimal(b))
		}
		if a.IsZero() && b.Sign() < 0 {
			return nil, ErrDivisionByZero
		}
		if err := checkPowerSize(a, b.IntPart()); err != nil {
			return nil, err
		}
		p, err := a.PowInt32(int32(b.IntPart()))
		if err != nil {
			return nil, err
		}
		if b.Sign() < 0 {
			p = normalizeDecimal(p)
		}
		return DecimalValue{Val: p}, nil
	}
	return nil, fmt.Errorf("unknown arithmetic operator '%s'", op)
}

// checkPowerSize refuses powers whose coefficient would grow past
// MaxDecimalDigits or whose exponent would leave the int32 range. A zero or
// unit coefficient never grows.
func checkPowerSize(base decimal.Decimal, exp int64) error {
	if exp < 0 {
		exp = -exp
	}
	scale := int64(base.Exponent())
	if scale < 0 {
		scale = -scale
	}
	if scale*exp > math.MaxInt32 {
		return fmt.Errorf("Decimal power exponent out of range")
	}
	coef := base.Coefficient()
	if coef.Sign() == 0 || coef.CmpAbs(big.NewInt(1)) == 0 {
		return nil
	}
	if int64(base.NumDigits())*exp > MaxDecimalDigits {
		return fmt.Errorf("Decimal power would exceed %d digits", MaxDecimalDigits)
	}
	return nil
}

// floorMod is the remainder with the divisor's sign.
func floorMod(a, b decimal.Decimal) decimal.Decimal {
	r := a.Mod(b)
	if !r.IsZero() && r.Sign() != b.Sign() {
		r = r.Add(b)
	}
	return r
}

// normalizeDecimal drops the trailing zeros that fixed-precision division
// leaves behind.
func normalizeDecimal(d decimal.Decimal) decimal.Decimal {
	n, err := decimal.NewFromString(d.String())
	if err != nil {
		return d
	}
	return n
}

// Negate implements unary minus.
func Negate(v Value) (Value, error) {
	switch val := v.(type) {
	case IntegerValue:
		if val.Val == math.MinInt64 {
			return nil, ErrIntegerOverflow
		}
		return NewInteger(-val.Val), nil
	case FloatValue:
		return NewFloat(-val.Val), nil
	case DecimalValue:
		return DecimalValue{Val: val.Val.Neg()}, nil
	}
	return nil, fmt.Errorf("bad operand type for unary -: '%s'", TypeName(v))
}
