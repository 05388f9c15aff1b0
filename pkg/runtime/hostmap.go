package runtime

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	valueType   = reflect.TypeOf((*Value)(nil)).Elem()
)

// FromGo maps a host value onto the runtime model. Maps need string keys and
// are emitted in sorted key order; structs use their json field names and
// honour "-" and omitempty.
func FromGo(v any) (Value, error) {
	if v == nil {
		return Null, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null, nil
	}
	if !rv.CanInterface() {
		return nil, fmt.Errorf("cannot read unexported value of type %s", rv.Type())
	}
	if rv.Type().Implements(valueType) && rv.Kind() != reflect.Interface {
		return rv.Interface().(Value), nil
	}
	switch rv.Type() {
	case timeType:
		return NewDateTime(rv.Interface().(time.Time)), nil
	case decimalType:
		return DecimalValue{Val: rv.Interface().(decimal.Decimal)}, nil
	}
	if num, ok := rv.Interface().(json.Number); ok {
		if parsed, ok := ParseNumber(string(num)); ok {
			return parsed, nil
		}
		return nil, fmt.Errorf("invalid json.Number %q", string(num))
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return fromReflect(rv.Elem())
	case reflect.Bool:
		return NewBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInteger(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned value %d overflows int", u)
		}
		return NewInteger(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return NewFloat(rv.Float()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null, nil
		}
		fallthrough
	case reflect.Array:
		list := NewList(make([]Value, 0, rv.Len())...)
		for i := 0; i < rv.Len(); i++ {
			el, err := fromReflect(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list.Append(el)
		}
		return list, nil
	case reflect.Map:
		if rv.IsNil() {
			return Null, nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", rv.Type().Key())
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		m := NewMapping()
		for _, key := range keys {
			el, err := fromReflect(rv.MapIndex(key))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key.String(), err)
			}
			m.Set(key.String(), el)
		}
		return m, nil
	case reflect.Struct:
		return structToMapping(rv)
	default:
		return nil, fmt.Errorf("unsupported host type %s", rv.Type())
	}
}

func structToMapping(rv reflect.Value) (Value, error) {
	m := NewMapping()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonFieldName(field)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		el, err := fromReflect(fv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		m.Set(name, el)
	}
	return m, nil
}

func jsonFieldName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// ToGo converts a runtime value to plain Go data: nil, bool, int64, float64,
// decimal.Decimal, string, time.Time, []any and map[string]any.
func ToGo(v Value) any {
	switch val := v.(type) {
	case nil, NullValue:
		return nil
	case BoolValue:
		return val.Val
	case IntegerValue:
		return val.Val
	case FloatValue:
		return val.Val
	case DecimalValue:
		return val.Val
	case StringValue:
		return val.Val
	case DateTimeValue:
		return val.Val
	case *ListValue:
		out := make([]any, len(val.Elements))
		for i, el := range val.Elements {
			out[i] = ToGo(el)
		}
		return out
	case *MappingValue:
		out := make(map[string]any, val.Len())
		for _, key := range val.keys {
			out[key] = ToGo(val.entries[key])
		}
		return out
	default:
		return nil
	}
}
