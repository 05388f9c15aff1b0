// Package codec converts between serialized documents and runtime values.
//
// JSON and YAML keep mapping order in both directions. CBOR decodes maps in
// sorted key order and encodes them canonically. TOML and MessagePack are
// accepted for inputs and outputs with the limits noted on each format.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"grizzly/interpreter-go/pkg/runtime"
)

type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	CBOR    Format = "cbor"
	TOML    Format = "toml"
	MsgPack Format = "msgpack"
)

var formats = []Format{JSON, YAML, CBOR, TOML, MsgPack}

// Formats lists every supported format.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

func (f Format) String() string { return string(f) }

// Set implements pflag.Value.
func (f *Format) Set(text string) error {
	parsed, err := ParseFormat(text)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }

// ParseFormat accepts a format name or common alias, case-insensitively.
func ParseFormat(text string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	case "toml":
		return TOML, nil
	case "msgpack", "mpk", "messagepack":
		return MsgPack, nil
	}
	return "", fmt.Errorf("unknown format %q (expected one of %s)", text, joinFormats())
}

// FormatFromPath infers a format from a file extension. ok is false when the
// extension is not recognised.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// Decode parses data in the given format.
func Decode(format Format, data []byte) (runtime.Value, error) {
	var (
		val runtime.Value
		err error
	)
	switch format {
	case JSON:
		val, err = decodeJSON(data)
	case YAML:
		val, err = decodeYAML(data)
	case CBOR:
		val, err = decodeCBOR(data)
	case TOML:
		val, err = decodeTOML(data)
	case MsgPack:
		val, err = decodeMsgPack(data)
	default:
		return nil, fmt.Errorf("unknown format %q", string(format))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return val, nil
}

// Encode serializes v in the given format.
func Encode(format Format, v runtime.Value) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch format {
	case JSON:
		out, err = encodeJSON(v)
	case YAML:
		out, err = encodeYAML(v)
	case CBOR:
		out, err = encodeCBOR(v)
	case TOML:
		out, err = encodeTOML(v)
	case MsgPack:
		out, err = encodeMsgPack(v)
	default:
		return nil, fmt.Errorf("unknown format %q", string(format))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return out, nil
}

// DecodeMapping is Decode for documents that must be a mapping, such as
// program inputs.
func DecodeMapping(format Format, data []byte) (*runtime.MappingValue, error) {
	val, err := Decode(format, data)
	if err != nil {
		return nil, err
	}
	m, ok := val.(*runtime.MappingValue)
	if !ok {
		return nil, fmt.Errorf("decode %s: expected a mapping at the top level, got %s", format, runtime.TypeName(val))
	}
	return m, nil
}

func joinFormats() string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// scalar converts a decoded host scalar; containers are handled by each
// format's own walker so that order survives.
func scalar(v any) (runtime.Value, error) {
	return runtime.FromGo(v)
}
