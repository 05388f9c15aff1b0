package codec

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"grizzly/interpreter-go/pkg/runtime"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	opts.TimeTag = cbor.EncTagRequired
	var err error
	if cborEnc, err = opts.EncMode(); err != nil {
		panic(fmt.Sprintf("cbor encoder: %v", err))
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSignedOrFail,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor decoder: %v", err))
	}
}

func decodeCBOR(data []byte) (runtime.Value, error) {
	var raw any
	if err := cborDec.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromCBOR(raw)
}

func fromCBOR(v any) (runtime.Value, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := runtime.NewMapping()
		for _, key := range keys {
			el, err := fromCBOR(val[key])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out.Set(key, el)
		}
		return out, nil
	case []any:
		out := runtime.NewList()
		for i, item := range val {
			el, err := fromCBOR(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Append(el)
		}
		return out, nil
	case []byte:
		return runtime.NewString(string(val)), nil
	case cbor.Tag:
		return nil, fmt.Errorf("unsupported CBOR tag %d", val.Number)
	}
	return scalar(v)
}

// encodeCBOR writes canonical CBOR. Decimals become their exact text since
// CBOR has no portable decimal type.
func encodeCBOR(v runtime.Value) ([]byte, error) {
	host, err := toCBOR(v)
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(host)
}

func toCBOR(v runtime.Value) (any, error) {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return nil, nil
	case runtime.BoolValue:
		return val.Val, nil
	case runtime.IntegerValue:
		return val.Val, nil
	case runtime.FloatValue:
		return val.Val, nil
	case runtime.DecimalValue:
		return runtime.FormatDecimal(val.Val), nil
	case runtime.StringValue:
		return val.Val, nil
	case runtime.DateTimeValue:
		return val.Val, nil
	case *runtime.ListValue:
		out := make([]any, len(val.Elements))
		for i, el := range val.Elements {
			host, err := toCBOR(el)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = host
		}
		return out, nil
	case *runtime.MappingValue:
		out := make(map[string]any, val.Len())
		for _, key := range val.Keys() {
			el, _ := val.Get(key)
			host, err := toCBOR(el)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = host
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot encode %s", runtime.TypeName(v))
}
