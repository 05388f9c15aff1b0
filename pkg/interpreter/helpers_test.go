package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/parser"
	"grizzly/interpreter-go/pkg/runtime"
)

func mustParse(t testing.TB, source string) *ast.Program {
	t.Helper()
	program, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("parse: %v\nsource:\n%s", err, source)
	}
	return program
}

// record builds an input mapping from alternating keys and values.
func record(pairs ...any) *runtime.MappingValue {
	out := runtime.NewMapping()
	for idx := 0; idx+1 < len(pairs); idx += 2 {
		out.Set(pairs[idx].(string), toValue(pairs[idx+1]))
	}
	return out
}

func toValue(v any) runtime.Value {
	switch x := v.(type) {
	case nil:
		return runtime.Null
	case runtime.Value:
		return x
	case string:
		return runtime.NewString(x)
	case int:
		return runtime.NewInteger(int64(x))
	case float64:
		return runtime.NewFloat(x)
	case bool:
		return runtime.NewBool(x)
	case []any:
		items := make([]runtime.Value, len(x))
		for idx, item := range x {
			items[idx] = toValue(item)
		}
		return runtime.NewList(items...)
	}
	panic("unsupported test value")
}

func runWith(t testing.TB, cfg Config, source string, input *runtime.MappingValue) (*runtime.MappingValue, *runtime.AccessTracker, error) {
	t.Helper()
	if input == nil {
		input = runtime.NewMapping()
	}
	return New(cfg).RunTracked(context.Background(), mustParse(t, source), input, nil)
}

func mustRun(t testing.TB, source string, input *runtime.MappingValue) *runtime.MappingValue {
	t.Helper()
	out, _, err := runWith(t, DefaultConfig(), source, input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return out
}

// evalExpr runs `return {"v": <expr>}` and returns v.
func evalExpr(t testing.TB, expr string) runtime.Value {
	t.Helper()
	out := mustRun(t, "def transform(INPUT):\n    return {\"v\": "+expr+"}\n", nil)
	val, _ := out.Get("v")
	return val
}

func expectRepr(t testing.TB, want string, got runtime.Value) {
	t.Helper()
	if repr := runtime.Repr(got); repr != want {
		t.Fatalf("expected %s, got %s", want, repr)
	}
}

func expectExecError(t testing.TB, err error, fragment string) *ExecutionError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q", fragment)
	}
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecutionError, got %T: %v", err, err)
	}
	if !strings.Contains(execErr.Message, fragment) {
		t.Fatalf("expected message containing %q, got %q", fragment, execErr.Message)
	}
	return execErr
}

func runErr(t testing.TB, source string, input *runtime.MappingValue) error {
	t.Helper()
	_, _, err := runWith(t, DefaultConfig(), source, input)
	if err == nil {
		t.Fatalf("expected run to fail")
	}
	return err
}
