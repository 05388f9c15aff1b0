package runtime

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AsString renders v the way str() does.
func AsString(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return val.Val
	case DateTimeValue:
		return FormatDateTime(val.Val)
	case DecimalValue:
		return FormatDecimal(val.Val)
	default:
		return Repr(v)
	}
}

// Repr renders v the way it appears inside a printed collection: strings are
// quoted, everything else matches AsString.
func Repr(v Value) string {
	var b strings.Builder
	writeRepr(&b, v)
	return b.String()
}

func writeRepr(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil, NullValue:
		b.WriteString("None")
	case BoolValue:
		if val.Val {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case IntegerValue:
		b.WriteString(strconv.FormatInt(val.Val, 10))
	case FloatValue:
		b.WriteString(FormatFloat(val.Val))
	case DecimalValue:
		b.WriteString("Decimal('")
		b.WriteString(FormatDecimal(val.Val))
		b.WriteString("')")
	case StringValue:
		b.WriteString(quote(val.Val))
	case DateTimeValue:
		b.WriteString("datetime('")
		b.WriteString(FormatDateTime(val.Val))
		b.WriteString("')")
	case *ListValue:
		b.WriteByte('[')
		for i, el := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, el)
		}
		b.WriteByte(']')
	case *MappingValue:
		b.WriteByte('{')
		for i, key := range val.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(key))
			b.WriteString(": ")
			writeRepr(b, val.entries[key])
		}
		b.WriteByte('}')
	default:
		b.WriteString("<" + v.Kind().String() + ">")
	}
}

// quote uses single quotes unless the text contains one and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// FormatFloat renders the shortest round-tripping form, always showing a
// fractional part or an exponent so floats stay distinguishable from ints.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FormatDecimal keeps the decimal's own scale, so Decimal("1.50") prints as
// 1.50.
func FormatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// FormatDateTime renders RFC 3339 with fractional seconds only when present.
func FormatDateTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
