package interpreter

import (
	"context"
	"errors"
	"fmt"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
	"grizzly/interpreter-go/pkg/runtime"
)

// Governor trips. ExecutionError unwraps to one of these.
var (
	ErrLoopLimit      = errors.New("loop iteration limit exceeded")
	ErrRecursionLimit = errors.New("recursion depth limit exceeded")
	ErrTimeout        = errors.New("execution timed out")
	ErrCanceled       = errors.New("execution canceled")
)

// deadlineCheckInterval is how many loop iterations pass between context
// checks.
const deadlineCheckInterval = 1000

// evalState is everything one run mutates. It never outlives the run.
type evalState struct {
	ctx     context.Context
	interp  *Interpreter
	program *ast.Program
	call    *builtins.CallContext

	iterations int
	depth      int

	// modules binds import names (or aliases) to modules; functions holds
	// names pulled in with `from m import f`.
	modules   map[string]*builtins.Module
	functions map[string]builtins.NativeFunction

	callStack []callFrame
}

func newEvalState(ctx context.Context, interp *Interpreter, program *ast.Program) *evalState {
	return &evalState{
		ctx:       ctx,
		interp:    interp,
		program:   program,
		call:      &builtins.CallContext{Now: interp.cfg.Now, MaxItems: interp.cfg.MaxCollectionSize},
		modules:   make(map[string]*builtins.Module),
		functions: make(map[string]builtins.NativeFunction),
	}
}

// tick counts one loop iteration attempt against the governor.
func (s *evalState) tick() error {
	s.iterations++
	limit := s.interp.cfg.MaxLoopIterations
	if s.iterations > limit {
		return fmt.Errorf("%w: more than %d iterations", ErrLoopLimit, limit)
	}
	if s.iterations%deadlineCheckInterval == 0 {
		return s.checkDeadline()
	}
	return nil
}

func (s *evalState) checkDeadline() error {
	switch err := s.ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrTimeout, s.interp.cfg.Timeout)
	default:
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	}
}

// enter pushes a user-function frame after checking depth and deadline.
func (s *evalState) enter(name string, line int) error {
	if err := s.checkDeadline(); err != nil {
		return err
	}
	limit := s.interp.cfg.MaxRecursionDepth
	if s.depth+1 > limit {
		return fmt.Errorf("%w: calling '%s' would exceed depth %d", ErrRecursionLimit, name, limit)
	}
	s.depth++
	s.callStack = append(s.callStack, callFrame{function: name, line: line})
	return nil
}

func (s *evalState) leave() {
	s.depth--
	s.callStack = s.callStack[:len(s.callStack)-1]
}

// bindImport makes a module, or names from it, visible for the rest of the
// run. Unknown modules and names fail here rather than at parse time.
func (s *evalState) bindImport(imp *ast.ImportStatement) error {
	mod, ok := s.interp.registry.Module(imp.Module)
	if !ok {
		return fmt.Errorf("no module named '%s'%s", imp.Module, didYouMean(imp.Module, s.interp.registry.ModuleNames()))
	}
	if len(imp.Names) == 0 {
		s.modules[imp.Binding()] = mod
		return nil
	}
	for _, name := range imp.Names {
		fn, ok := mod.Function(name)
		if !ok {
			return fmt.Errorf("cannot import name '%s' from '%s'%s", name, imp.Module, didYouMean(name, mod.Names()))
		}
		s.functions[name] = fn
	}
	return nil
}

// module resolves an identifier to an imported module unless a variable of
// that name is visible.
func (s *evalState) module(expr ast.Expression, env *runtime.Environment) (*builtins.Module, bool) {
	id, ok := expr.(*ast.Identifier)
	if !ok || env.Has(id.Name) {
		return nil, false
	}
	mod, ok := s.modules[id.Name]
	return mod, ok
}
