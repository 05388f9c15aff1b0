package runtime

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindDecimal
	KindString
	KindList
	KindMapping
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	case KindDateTime:
		return "datetime"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// Null is the single null value. A nil Value is treated the same way.
var Null Value = NullValue{}

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

var (
	True  Value = BoolValue{Val: true}
	False Value = BoolValue{Val: false}
)

func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

func NewInteger(n int64) IntegerValue { return IntegerValue{Val: n} }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

func NewFloat(f float64) FloatValue { return FloatValue{Val: f} }

// DecimalValue is an exact decimal. It is only ever built from text, an
// integer or another decimal, never from a float.
type DecimalValue struct {
	Val decimal.Decimal
}

func (v DecimalValue) Kind() Kind { return KindDecimal }

// NewDecimal parses text into an exact decimal.
func NewDecimal(text string) (DecimalValue, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return DecimalValue{}, fmt.Errorf("invalid Decimal literal %q", text)
	}
	return DecimalValue{Val: d}, nil
}

func DecimalFromInt(n int64) DecimalValue { return DecimalValue{Val: decimal.NewFromInt(n)} }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

func NewString(s string) StringValue { return StringValue{Val: s} }

// DateTimeValue is a zone-aware instant.
type DateTimeValue struct {
	Val time.Time
}

func (v DateTimeValue) Kind() Kind { return KindDateTime }

func NewDateTime(t time.Time) DateTimeValue { return DateTimeValue{Val: t} }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ListValue is mutable and shared by reference.
type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

func NewList(elements ...Value) *ListValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ListValue{Elements: elements}
}

func (v *ListValue) Len() int { return len(v.Elements) }

func (v *ListValue) Append(items ...Value) { v.Elements = append(v.Elements, items...) }

// Snapshot copies the element slice so callers can iterate while the list is
// being mutated.
func (v *ListValue) Snapshot() []Value {
	out := make([]Value, len(v.Elements))
	copy(out, v.Elements)
	return out
}

// ResolveIndex maps a possibly negative index onto the list, reporting false
// when it falls outside.
func ResolveIndex(idx int64, length int) (int, bool) {
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, false
	}
	return int(idx), true
}

// MappingValue is an insertion-ordered, string-keyed mapping. It is mutable
// and shared by reference.
type MappingValue struct {
	keys    []string
	entries map[string]Value
}

func (v *MappingValue) Kind() Kind { return KindMapping }

func NewMapping() *MappingValue {
	return &MappingValue{entries: make(map[string]Value)}
}

func (m *MappingValue) Len() int { return len(m.keys) }

func (m *MappingValue) Get(key string) (Value, bool) {
	val, ok := m.entries[key]
	return val, ok
}

func (m *MappingValue) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Set inserts or replaces a key. Replacing keeps the original position.
func (m *MappingValue) Set(key string, val Value) {
	if val == nil {
		val = Null
	}
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = val
}

func (m *MappingValue) Delete(key string) (Value, bool) {
	val, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	delete(m.entries, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	return val, true
}

func (m *MappingValue) Clear() {
	m.keys = nil
	m.entries = make(map[string]Value)
}

// Keys returns the keys in insertion order.
func (m *MappingValue) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *MappingValue) Values() []Value {
	out := make([]Value, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.entries[k]
	}
	return out
}

// Clone makes a shallow copy.
func (m *MappingValue) Clone() *MappingValue {
	out := &MappingValue{keys: m.Keys(), entries: make(map[string]Value, len(m.entries))}
	for k, v := range m.entries {
		out.entries[k] = v
	}
	return out
}

//-----------------------------------------------------------------------------
// Introspection
//-----------------------------------------------------------------------------

func IsNull(v Value) bool {
	return v == nil || v.Kind() == KindNull
}

// IsNumeric reports whether v is an int, float or Decimal.
func IsNumeric(v Value) bool {
	if v == nil {
		return false
	}
	switch v.Kind() {
	case KindInteger, KindFloat, KindDecimal:
		return true
	}
	return false
}

// TypeName returns the user-facing type name used in diagnostics and by
// type().
func TypeName(v Value) string {
	if v == nil {
		return "NoneType"
	}
	switch v.Kind() {
	case KindNull:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "Decimal"
	case KindString:
		return "str"
	case KindList:
		return "list"
	case KindMapping:
		return "dict"
	case KindDateTime:
		return "datetime"
	default:
		return v.Kind().String()
	}
}

// IsTruthy: None, False, zero numbers and empty strings or collections are
// false.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case nil, NullValue:
		return false
	case BoolValue:
		return val.Val
	case IntegerValue:
		return val.Val != 0
	case FloatValue:
		return val.Val != 0
	case DecimalValue:
		return !val.Val.IsZero()
	case StringValue:
		return val.Val != ""
	case *ListValue:
		return len(val.Elements) > 0
	case *MappingValue:
		return val.Len() > 0
	default:
		return true
	}
}
