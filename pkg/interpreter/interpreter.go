// Package interpreter evaluates parsed programs against an input mapping.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
	"grizzly/interpreter-go/pkg/runtime"
)

const (
	DefaultMaxLoopIterations = 100000
	DefaultMaxRecursionDepth = 100
	DefaultTimeout           = 30 * time.Second
	DefaultEntryFunction     = "transform"
)

// Config tunes a single Interpreter. Zero numeric fields and an empty entry
// name take their defaults; TrackAccess is used as given.
type Config struct {
	MaxLoopIterations int
	MaxRecursionDepth int
	Timeout           time.Duration
	// MaxCollectionSize caps lists built by builtins such as range().
	MaxCollectionSize int
	NullMode          runtime.NullMode
	TrackAccess       bool
	EntryFunction     string
	Logger            *slog.Logger
	// Now is the clock behind now(); time.Now when nil.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		MaxLoopIterations: DefaultMaxLoopIterations,
		MaxRecursionDepth: DefaultMaxRecursionDepth,
		Timeout:           DefaultTimeout,
		MaxCollectionSize: builtins.DefaultMaxItems,
		NullMode:          runtime.NullStrict,
		TrackAccess:       true,
		EntryFunction:     DefaultEntryFunction,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxLoopIterations <= 0 {
		c.MaxLoopIterations = DefaultMaxLoopIterations
	}
	if c.MaxRecursionDepth <= 0 {
		c.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxCollectionSize <= 0 {
		c.MaxCollectionSize = builtins.DefaultMaxItems
	}
	if c.EntryFunction == "" {
		c.EntryFunction = DefaultEntryFunction
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Interpreter runs programs. It holds no per-run state and is safe for
// concurrent use.
type Interpreter struct {
	cfg      Config
	registry *builtins.Registry
}

// New returns an interpreter with the builtin registry assembled once.
func New(cfg Config) *Interpreter {
	return &Interpreter{cfg: cfg.withDefaults(), registry: builtins.NewRegistry()}
}

// Config returns the effective configuration.
func (i *Interpreter) Config() Config {
	return i.cfg
}

// Registry exposes the builtin surface, e.g. for listing functions.
func (i *Interpreter) Registry() *builtins.Registry {
	return i.registry
}

// Run evaluates the entry function of program against input.
func (i *Interpreter) Run(ctx context.Context, program *ast.Program, input runtime.Value) (*runtime.MappingValue, error) {
	var tracker *runtime.AccessTracker
	if i.cfg.TrackAccess {
		tracker = runtime.NewAccessTracker()
	}
	return i.run(ctx, program, input, tracker)
}

// RunTracked is Run with a caller-supplied access tracker, which is returned
// populated. A nil tracker is replaced with a fresh one. Silent mode records
// nothing.
func (i *Interpreter) RunTracked(ctx context.Context, program *ast.Program, input runtime.Value, tracker *runtime.AccessTracker) (*runtime.MappingValue, *runtime.AccessTracker, error) {
	if tracker == nil {
		tracker = runtime.NewAccessTracker()
	}
	out, err := i.run(ctx, program, input, tracker)
	return out, tracker, err
}

func (i *Interpreter) run(ctx context.Context, program *ast.Program, input runtime.Value, tracker *runtime.AccessTracker) (*runtime.MappingValue, error) {
	if program == nil {
		return nil, &ExecutionError{Message: "no program to run"}
	}
	if _, ok := input.(*runtime.MappingValue); !ok {
		return nil, &ExecutionError{Message: fmt.Sprintf("input must be a dict, got %s", runtime.TypeName(input))}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	log := i.cfg.Logger.With("entry", i.cfg.EntryFunction, "null_mode", i.cfg.NullMode.String())
	started := time.Now()
	log.Debug("run started")

	state := newEvalState(ctx, i, program)
	env := runtime.NewEnvironment(i.cfg.NullMode, tracker)
	env.Set(runtime.InputName, input)

	out, err := i.runEntry(state, env, input)
	if err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) && execErr.Governor() {
			log.Warn("run stopped by governor", "error", execErr.Message, "line", execErr.Line)
		} else {
			log.Debug("run failed", "error", err)
		}
		return nil, err
	}
	log.Debug("run finished",
		"elapsed", time.Since(started),
		"iterations", state.iterations,
		"accesses", tracker.Len())
	return out, nil
}

func (i *Interpreter) runEntry(state *evalState, env *runtime.Environment, input runtime.Value) (*runtime.MappingValue, error) {
	for _, imp := range state.program.Imports {
		if err := state.bindImport(imp); err != nil {
			return nil, state.attach(err, imp)
		}
	}
	entry, ok := state.program.Function(i.cfg.EntryFunction)
	if !ok {
		return nil, &ExecutionError{Message: fmt.Sprintf("entry function '%s' is not defined", i.cfg.EntryFunction)}
	}
	if len(entry.Params) > 1 {
		return nil, state.attach(fmt.Errorf("entry function '%s' must take at most one parameter, got %d", entry.Name, len(entry.Params)), entry)
	}
	var args []runtime.Value
	if len(entry.Params) == 1 {
		args = []runtime.Value{input}
	}
	result, err := i.callUserFunction(state, entry, args, env, 0)
	if err != nil {
		return nil, state.attach(err, entry)
	}
	// A single expression can outlast the deadline between checks.
	if err := state.checkDeadline(); err != nil {
		return nil, state.attach(err, entry)
	}
	out, ok := result.(*runtime.MappingValue)
	if !ok {
		return nil, &ExecutionError{
			Message: fmt.Sprintf("entry function '%s' must return a dict, got %s", entry.Name, runtime.TypeName(result)),
			Line:    entry.LineNumber(),
		}
	}
	return out, nil
}
