package codec

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"grizzly/interpreter-go/pkg/runtime"
)

// decodeTOML keeps key order by replaying the document's key list, which the
// decoder reports in the order keys appear.
func decodeTOML(data []byte) (runtime.Value, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	order := make(map[string]int)
	for i, key := range md.Keys() {
		path := strings.Join(key, "\x00")
		if _, seen := order[path]; !seen {
			order[path] = i
		}
	}
	return fromTOMLTable(raw, nil, order)
}

func fromTOMLTable(table map[string]any, path []string, order map[string]int) (*runtime.MappingValue, error) {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	position := func(key string) int {
		if pos, ok := order[strings.Join(append(path[:len(path):len(path)], key), "\x00")]; ok {
			return pos
		}
		return len(order)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, pj := position(keys[i]), position(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})
	out := runtime.NewMapping()
	for _, key := range keys {
		val, err := fromTOML(table[key], append(path[:len(path):len(path)], key), order)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out.Set(key, val)
	}
	return out, nil
}

func fromTOML(v any, path []string, order map[string]int) (runtime.Value, error) {
	switch val := v.(type) {
	case map[string]any:
		return fromTOMLTable(val, path, order)
	case []map[string]any:
		out := runtime.NewList()
		for _, table := range val {
			el, err := fromTOMLTable(table, path, order)
			if err != nil {
				return nil, err
			}
			out.Append(el)
		}
		return out, nil
	case []any:
		out := runtime.NewList()
		for i, item := range val {
			el, err := fromTOML(item, path, order)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Append(el)
		}
		return out, nil
	}
	return scalar(v)
}

// encodeTOML requires a mapping at the top level. TOML has no null, so None
// anywhere is an error; Decimals are written as strings and keys come out
// sorted.
func encodeTOML(v runtime.Value) ([]byte, error) {
	if _, ok := v.(*runtime.MappingValue); !ok {
		return nil, fmt.Errorf("top level must be a mapping, got %s", runtime.TypeName(v))
	}
	host, err := toTOML(v)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(host); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func toTOML(v runtime.Value) (any, error) {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return nil, fmt.Errorf("TOML cannot represent None")
	case runtime.DecimalValue:
		return runtime.FormatDecimal(val.Val), nil
	case *runtime.ListValue:
		out := make([]any, len(val.Elements))
		for i, el := range val.Elements {
			host, err := toTOML(el)
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
			host, err := toTOML(el)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = host
		}
		return out, nil
	}
	return runtime.ToGo(v), nil
}
