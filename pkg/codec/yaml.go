package codec

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"grizzly/interpreter-go/pkg/runtime"
)

func decodeYAML(data []byte) (runtime.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return runtime.Null, nil
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(node *yaml.Node) (runtime.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return runtime.Null, nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.MappingNode:
		out := runtime.NewMapping()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			if keyNode.ShortTag() == "!!merge" {
				if err := mergeYAML(out, valNode); err != nil {
					return nil, err
				}
				continue
			}
			val, err := fromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			out.Set(keyNode.Value, val)
		}
		return out, nil
	case yaml.SequenceNode:
		out := runtime.NewList()
		for _, child := range node.Content {
			val, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			out.Append(val)
		}
		return out, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
}

// mergeYAML applies a `<<` merge key; keys already present win.
func mergeYAML(out *runtime.MappingValue, node *yaml.Node) error {
	sources := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		sources = node.Content
	}
	for _, src := range sources {
		val, err := fromYAMLNode(src)
		if err != nil {
			return err
		}
		m, ok := val.(*runtime.MappingValue)
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", src.Line)
		}
		for _, key := range m.Keys() {
			if !out.Has(key) {
				el, _ := m.Get(key)
				out.Set(key, el)
			}
		}
	}
	return nil
}

func fromYAMLScalar(node *yaml.Node) (runtime.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return runtime.Null, nil
	case "!!str", "!!binary":
		return runtime.NewString(node.Value), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			var f float64
			if ferr := node.Decode(&f); ferr != nil {
				return nil, fmt.Errorf("line %d: %w", node.Line, err)
			}
			return runtime.NewFloat(f), nil
		}
		return runtime.NewInteger(n), nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return runtime.NewDateTime(t), nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return scalar(v)
}

func encodeYAML(v runtime.Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func toYAMLNode(v runtime.Value) (*yaml.Node, error) {
	scalarNode := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return scalarNode("!!null", "null"), nil
	case runtime.BoolValue:
		return scalarNode("!!bool", strconv.FormatBool(val.Val)), nil
	case runtime.IntegerValue:
		return scalarNode("!!int", strconv.FormatInt(val.Val, 10)), nil
	case runtime.FloatValue:
		switch {
		case math.IsNaN(val.Val):
			return scalarNode("!!float", ".nan"), nil
		case math.IsInf(val.Val, 1):
			return scalarNode("!!float", ".inf"), nil
		case math.IsInf(val.Val, -1):
			return scalarNode("!!float", "-.inf"), nil
		}
		return scalarNode("!!float", runtime.FormatFloat(val.Val)), nil
	case runtime.DecimalValue:
		text := runtime.FormatDecimal(val.Val)
		if val.Val.Exponent() >= 0 {
			return scalarNode("!!int", text), nil
		}
		return scalarNode("!!float", text), nil
	case runtime.StringValue:
		return scalarNode("!!str", val.Val), nil
	case runtime.DateTimeValue:
		return scalarNode("!!str", runtime.FormatDateTime(val.Val)), nil
	case *runtime.ListValue:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, el := range val.Elements {
			child, err := toYAMLNode(el)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Content = append(out.Content, child)
		}
		return out, nil
	case *runtime.MappingValue:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range val.Keys() {
			el, _ := val.Get(key)
			child, err := toYAMLNode(el)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out.Content = append(out.Content, scalarNode("!!str", key), child)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot encode %s", runtime.TypeName(v))
}
