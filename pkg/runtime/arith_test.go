package runtime

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestArithmeticPromotion(t *testing.T) {
	cases := []struct {
		op   string
		a, b Value
		want string
	}{
		{"+", NewInteger(2), NewInteger(3), "5"},
		{"/", NewInteger(6), NewInteger(3), "2.0"},
		{"*", NewInteger(2), NewFloat(1.5), "3.0"},
		{"**", NewInteger(2), NewInteger(10), "1024"},
		{"**", NewInteger(2), NewInteger(-1), "0.5"},
		{"+", mustDecimal(t, "0.1"), mustDecimal(t, "0.2"), "0.3"},
		{"*", mustDecimal(t, "1.25"), NewInteger(4), "5.00"},
		{"/", mustDecimal(t, "1"), mustDecimal(t, "4"), "0.25"},
		{"/", mustDecimal(t, "1"), mustDecimal(t, "3"), "0.3333333333333333"},
		{"**", mustDecimal(t, "1.1"), NewInteger(2), "1.21"},
	}
	for _, tc := range cases {
		got, err := Arithmetic(tc.op, tc.a, tc.b)
		if err != nil {
			t.Fatalf("%s %s %s: %v", Repr(tc.a), tc.op, Repr(tc.b), err)
		}
		if AsString(got) != tc.want {
			t.Fatalf("%s %s %s = %s, want %s", Repr(tc.a), tc.op, Repr(tc.b), AsString(got), tc.want)
		}
	}
}

// Floor division and modulo follow the divisor's sign for every numeric kind.
func TestFloorDivisionAndModuloWithNegatives(t *testing.T) {
	cases := []struct {
		a, b     Value
		div, mod string
	}{
		{NewInteger(7), NewInteger(2), "3", "1"},
		{NewInteger(-7), NewInteger(2), "-4", "1"},
		{NewInteger(7), NewInteger(-2), "-4", "-1"},
		{NewInteger(-7), NewInteger(-2), "3", "-1"},
		{NewFloat(-7), NewFloat(2), "-4.0", "1.0"},
		{NewFloat(7.5), NewFloat(-2), "-4.0", "-0.5"},
		{mustDecimal(t, "-7"), mustDecimal(t, "2"), "-4", "1"},
		{mustDecimal(t, "7.5"), mustDecimal(t, "-2"), "-4", "-0.5"},
		{mustDecimal(t, "-7.5"), NewInteger(-2), "3", "-1.5"},
	}
	for _, tc := range cases {
		div, err := Arithmetic("//", tc.a, tc.b)
		if err != nil {
			t.Fatalf("%s // %s: %v", Repr(tc.a), Repr(tc.b), err)
		}
		mod, err := Arithmetic("%", tc.a, tc.b)
		if err != nil {
			t.Fatalf("%s %% %s: %v", Repr(tc.a), Repr(tc.b), err)
		}
		if AsString(div) != tc.div || AsString(mod) != tc.mod {
			t.Fatalf("%s //,%% %s = %s, %s; want %s, %s", Repr(tc.a), Repr(tc.b), AsString(div), AsString(mod), tc.div, tc.mod)
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	if _, err := Arithmetic("+", mustDecimal(t, "1"), NewFloat(1)); err == nil {
		t.Fatalf("expected Decimal and float to be refused")
	}
	if _, err := Arithmetic("/", NewInteger(1), NewInteger(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	if _, err := Arithmetic("%", mustDecimal(t, "1"), mustDecimal(t, "0")); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected Decimal modulo by zero, got %v", err)
	}
	if _, err := Arithmetic("+", NewInteger(math.MaxInt64), NewInteger(1)); !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := Arithmetic("**", NewInteger(10), NewInteger(19)); !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("expected power overflow, got %v", err)
	}
	if _, err := Arithmetic("-", NewString("1"), NewInteger(1)); err == nil {
		t.Fatalf("expected string operand to be refused")
	}
	if _, err := Negate(NewInteger(math.MinInt64)); !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("expected negate overflow, got %v", err)
	}
}

func TestDecimalPowerBounds(t *testing.T) {
	cases := []struct {
		base    string
		exp     int64
		want    string
		wantErr string
	}{
		{base: "1.0000001", exp: 3000000, wantErr: "Decimal power would exceed 100000 digits"},
		{base: "12", exp: -60000, wantErr: "Decimal power would exceed"},
		{base: "1e-100000", exp: 30000, wantErr: "exponent out of range"},
		{base: "1", exp: 2000000000, want: "1"},
		{base: "-1", exp: 3, want: "-1"},
		{base: "0", exp: 5, want: "0"},
		{base: "1.5", exp: 2, want: "2.25"},
	}
	for _, tc := range cases {
		got, err := Arithmetic("**", mustDecimal(t, tc.base), NewInteger(tc.exp))
		if tc.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("%s ** %d: expected %q, got %v", tc.base, tc.exp, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s ** %d: %v", tc.base, tc.exp, err)
		}
		if s := FormatDecimal(got.(DecimalValue).Val); s != tc.want {
			t.Fatalf("%s ** %d = %s, want %s", tc.base, tc.exp, s, tc.want)
		}
	}
}

func TestIterate(t *testing.T) {
	chars, err := Iterate(NewString("hé"))
	if err != nil || len(chars) != 2 || AsString(chars[1]) != "é" {
		t.Fatalf("Iterate string = %v, %v", chars, err)
	}
	if _, err := Iterate(Null); err == nil {
		t.Fatalf("expected None to be refused")
	}
	if _, err := Iterate(NewInteger(3)); err == nil {
		t.Fatalf("expected int to be refused")
	}
}
