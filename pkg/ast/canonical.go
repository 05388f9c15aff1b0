package ast

import (
	"encoding/json"
	"fmt"
)

// Canonical renders a node (usually a *Program) as indented JSON. Two parses
// of the same source always render identically.
func Canonical(node Node) (string, error) {
	if node == nil {
		return "null", nil
	}
	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ast: render %s: %w", node.NodeType(), err)
	}
	return string(data), nil
}
