package interpreter

import (
	"strconv"

	"grizzly/interpreter-go/pkg/runtime"
)

// Paths for expressions that are not themselves accesses.
const (
	literalPath = "<literal>"
	exprPath    = "<expression>"
)

// attributePath renders base.name, or base["name"] when name is not a plain
// identifier.
func attributePath(base, name string) string {
	if isPlainName(name) {
		return base + "." + name
	}
	return base + "[" + strconv.Quote(name) + "]"
}

// indexPath renders base[key] using the evaluated key.
func indexPath(base string, key runtime.Value) string {
	switch k := key.(type) {
	case runtime.StringValue:
		if isPlainName(k.Val) {
			return base + "." + k.Val
		}
		return base + "[" + strconv.Quote(k.Val) + "]"
	case runtime.IntegerValue:
		return base + "[" + strconv.FormatInt(k.Val, 10) + "]"
	}
	return base + "[" + runtime.Repr(key) + "]"
}

func methodPath(base, method string) string {
	return base + "." + method + "()"
}

func isPlainName(name string) bool {
	if name == "" {
		return false
	}
	for idx, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && idx > 0:
		default:
			return false
		}
	}
	return true
}
