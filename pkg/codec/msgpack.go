package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"grizzly/interpreter-go/pkg/runtime"
)

// decodeMsgPack reads maps and arrays itself so map order survives; scalars
// go through the library's loose decoder.
func decodeMsgPack(data []byte) (runtime.Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	val, err := readMsgPack(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return val, nil
}

func readMsgPack(dec *msgpack.Decoder) (runtime.Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		out := runtime.NewMapping()
		for j := 0; j < n; j++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("map key: %w", err)
			}
			val, err := readMsgPack(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out.Set(key, val)
		}
		return out, nil
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		out := runtime.NewList()
		for i := 0; i < n; i++ {
			val, err := readMsgPack(dec)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Append(val)
		}
		return out, nil
	}
	raw, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	if b, ok := raw.([]byte); ok {
		return runtime.NewString(string(b)), nil
	}
	return scalar(raw)
}

// encodeMsgPack writes maps in mapping order. Decimals are written as
// strings.
func encodeMsgPack(v runtime.Value) ([]byte, error) {
	var b bytes.Buffer
	enc := msgpack.NewEncoder(&b)
	if err := writeMsgPack(enc, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeMsgPack(enc *msgpack.Encoder, v runtime.Value) error {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return enc.EncodeNil()
	case runtime.BoolValue:
		return enc.EncodeBool(val.Val)
	case runtime.IntegerValue:
		return enc.EncodeInt(val.Val)
	case runtime.FloatValue:
		return enc.EncodeFloat64(val.Val)
	case runtime.DecimalValue:
		return enc.EncodeString(runtime.FormatDecimal(val.Val))
	case runtime.StringValue:
		return enc.EncodeString(val.Val)
	case runtime.DateTimeValue:
		return enc.EncodeTime(val.Val)
	case *runtime.ListValue:
		if err := enc.EncodeArrayLen(val.Len()); err != nil {
			return err
		}
		for i, el := range val.Elements {
			if err := writeMsgPack(enc, el); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case *runtime.MappingValue:
		if err := enc.EncodeMapLen(val.Len()); err != nil {
			return err
		}
		for _, key := range val.Keys() {
			if err := enc.EncodeString(key); err != nil {
				return err
			}
			el, _ := val.Get(key)
			if err := writeMsgPack(enc, el); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
		return nil
	}
	return fmt.Errorf("cannot encode %s", runtime.TypeName(v))
}
