package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"grizzly/interpreter-go/pkg/runtime"
)

// decodeJSON walks the token stream so object keys keep document order.
// Integral numbers become int unless they overflow, in which case they fall
// back to float like any other number.
func decodeJSON(data []byte) (runtime.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return val, nil
}

func readJSONValue(dec *json.Decoder) (runtime.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := runtime.NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				out.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		case '[':
			out := runtime.NewList()
			for dec.More() {
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", out.Len(), err)
				}
				out.Append(val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return jsonNumber(string(t))
	case string:
		return runtime.NewString(t), nil
	case bool:
		return runtime.NewBool(t), nil
	case nil:
		return runtime.Null, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func jsonNumber(text string) (runtime.Value, error) {
	if !strings.ContainsAny(text, ".eE") {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return runtime.NewInteger(n), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s", text)
	}
	return runtime.NewFloat(f), nil
}

// encodeJSON writes two-space indented JSON with mapping order preserved and
// a trailing newline.
func encodeJSON(v runtime.Value) ([]byte, error) {
	var b bytes.Buffer
	if err := writeJSON(&b, v, 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func writeJSON(b *bytes.Buffer, v runtime.Value, depth int) error {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		b.WriteString("null")
	case runtime.BoolValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case runtime.IntegerValue:
		b.WriteString(strconv.FormatInt(val.Val, 10))
	case runtime.FloatValue:
		if math.IsNaN(val.Val) || math.IsInf(val.Val, 0) {
			return fmt.Errorf("cannot encode %s as a JSON number", runtime.FormatFloat(val.Val))
		}
		b.WriteString(runtime.FormatFloat(val.Val))
	case runtime.DecimalValue:
		b.WriteString(runtime.FormatDecimal(val.Val))
	case runtime.StringValue:
		writeJSONString(b, val.Val)
	case runtime.DateTimeValue:
		writeJSONString(b, runtime.FormatDateTime(val.Val))
	case *runtime.ListValue:
		if val.Len() == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteByte('[')
		for i, el := range val.Elements {
			if i > 0 {
				b.WriteByte(',')
			}
			newline(b, depth+1)
			if err := writeJSON(b, el, depth+1); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		newline(b, depth)
		b.WriteByte(']')
	case *runtime.MappingValue:
		if val.Len() == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteByte('{')
		for i, key := range val.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			newline(b, depth+1)
			writeJSONString(b, key)
			b.WriteString(": ")
			el, _ := val.Get(key)
			if err := writeJSON(b, el, depth+1); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
		newline(b, depth)
		b.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode %s", runtime.TypeName(v))
	}
	return nil
}

func newline(b *bytes.Buffer, depth int) {
	b.WriteByte('\n')
	for j := 0; j < depth; j++ {
		b.WriteString("  ")
	}
}

func writeJSONString(b *bytes.Buffer, s string) {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encoder always terminates with a newline.
	b.Truncate(b.Len() - 1)
}
