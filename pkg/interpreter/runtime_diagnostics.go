package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
)

type callFrame struct {
	function string
	line     int
}

// Frame is one entry of an execution error's call trace: the function that
// was running and the line it was called from.
type Frame struct {
	Function string
	Line     int
}

func (f Frame) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("in %s() called at line %d", f.Function, f.Line)
	}
	return fmt.Sprintf("in %s()", f.Function)
}

// ExecutionError is a failure raised while a program runs. Line is 0 when no
// source position applies. Trace lists the active calls, innermost first.
type ExecutionError struct {
	Message string
	Line    int
	Trace   []Frame

	cause error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Message)
	for _, frame := range e.Trace {
		b.WriteString("\n  ")
		b.WriteString(frame.String())
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error {
	return e.cause
}

// Governor reports whether a resource limit stopped the run.
func (e *ExecutionError) Governor() bool {
	return errors.Is(e.cause, ErrLoopLimit) ||
		errors.Is(e.cause, ErrRecursionLimit) ||
		errors.Is(e.cause, ErrTimeout) ||
		errors.Is(e.cause, ErrCanceled)
}

// attach turns a plain error into an ExecutionError positioned at node. An
// error that already carries a position passes through unchanged, so the
// innermost node wins.
func (s *evalState) attach(err error, node ast.Node) error {
	if err == nil {
		return nil
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return err
	}
	line := 0
	if node != nil {
		line = node.LineNumber()
	}
	return &ExecutionError{Message: err.Error(), Line: line, Trace: s.trace(), cause: err}
}

func (s *evalState) trace() []Frame {
	if len(s.callStack) == 0 {
		return nil
	}
	out := make([]Frame, 0, len(s.callStack))
	for idx := len(s.callStack) - 1; idx >= 0; idx-- {
		frame := s.callStack[idx]
		out = append(out, Frame{Function: frame.function, Line: frame.line})
	}
	return out
}

func didYouMean(name string, candidates []string) string {
	return builtins.DidYouMean(name, candidates)
}
