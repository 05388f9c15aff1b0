package runtime

import "fmt"

// Iterate lists what a for-loop visits: list elements (a snapshot), the
// characters of a string, or the keys of a mapping in insertion order.
func Iterate(v Value) ([]Value, error) {
	switch val := v.(type) {
	case *ListValue:
		return val.Snapshot(), nil
	case StringValue:
		out := make([]Value, 0, len(val.Val))
		for _, r := range val.Val {
			out = append(out, NewString(string(r)))
		}
		return out, nil
	case *MappingValue:
		keys := val.Keys()
		out := make([]Value, len(keys))
		for i, k := range keys {
			out[i] = NewString(k)
		}
		return out, nil
	case nil, NullValue:
		return nil, fmt.Errorf("cannot iterate over None")
	default:
		return nil, fmt.Errorf("'%s' object is not iterable", TypeName(v))
	}
}
