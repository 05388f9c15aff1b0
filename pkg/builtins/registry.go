// Package builtins holds the native function table, the per-type method
// tables and the importable modules. Everything here is immutable once
// NewRegistry returns and may be shared by concurrent runs.
package builtins

import (
	"fmt"
	"sort"
	"time"

	"grizzly/interpreter-go/pkg/runtime"
)

// CallContext carries the per-run facilities a native function may need.
type CallContext struct {
	// Now is the run's clock.
	Now func() time.Time
	// MaxItems caps how many elements a builtin may materialize at once.
	MaxItems int
}

func (c *CallContext) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *CallContext) maxItems() int {
	if c == nil || c.MaxItems <= 0 {
		return DefaultMaxItems
	}
	return c.MaxItems
}

// DefaultMaxItems applies when a CallContext sets no limit.
const DefaultMaxItems = 100000

type NativeFunc func(ctx *CallContext, args []runtime.Value) (runtime.Value, error)

// NativeFunction is a builtin with an argument count range. MaxArgs < 0 means
// variadic. For methods args[0] is the receiver and is not counted.
type NativeFunction struct {
	Name    string
	MinArgs int
	MaxArgs int
	Impl    NativeFunc
}

// CheckArity reports whether got arguments fit the function.
func (f NativeFunction) CheckArity(got int) error {
	return checkArity(f.Name, f.MinArgs, f.MaxArgs, got)
}

// Call checks the argument count and runs the function.
func (f NativeFunction) Call(ctx *CallContext, args []runtime.Value) (runtime.Value, error) {
	if err := f.CheckArity(len(args)); err != nil {
		return nil, err
	}
	return f.Impl(ctx, args)
}

// CallMethod runs f with receiver prepended to args.
func (f NativeFunction) CallMethod(ctx *CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if err := f.CheckArity(len(args)); err != nil {
		return nil, err
	}
	full := make([]runtime.Value, 0, len(args)+1)
	full = append(full, receiver)
	full = append(full, args...)
	return f.Impl(ctx, full)
}

func checkArity(name string, minArgs, maxArgs, got int) error {
	switch {
	case minArgs == maxArgs && got != minArgs:
		return fmt.Errorf("%s() takes exactly %d argument%s (%d given)", name, minArgs, Plural(minArgs), got)
	case got < minArgs:
		return fmt.Errorf("%s() takes at least %d argument%s (%d given)", name, minArgs, Plural(minArgs), got)
	case maxArgs >= 0 && got > maxArgs:
		return fmt.Errorf("%s() takes at most %d argument%s (%d given)", name, maxArgs, Plural(maxArgs), got)
	}
	return nil
}

// Plural returns the "s" suffix for a count other than one.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// ArgumentCountError reports a call to a script-defined function with the
// wrong number of arguments.
func ArgumentCountError(name string, want, got int) error {
	verb := "were"
	if got == 1 {
		verb = "was"
	}
	return fmt.Errorf("%s() takes %d argument%s but %d %s given", name, want, Plural(want), got, verb)
}

// Module is an importable namespace of functions and constants.
type Module struct {
	Name      string
	Functions map[string]NativeFunction
	Constants map[string]runtime.Value
}

// Function resolves a function exported by the module.
func (m *Module) Function(name string) (NativeFunction, bool) {
	fn, ok := m.Functions[name]
	return fn, ok
}

// Names lists functions and constants, sorted.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.Functions)+len(m.Constants))
	for name := range m.Functions {
		names = append(names, name)
	}
	for name := range m.Constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry is the complete builtin surface.
type Registry struct {
	functions map[string]NativeFunction
	methods   map[runtime.Kind]map[string]NativeFunction
	modules   map[string]*Module
}

// NewRegistry assembles every builtin function, method table and module.
func NewRegistry() *Registry {
	r := &Registry{
		functions: make(map[string]NativeFunction),
		methods:   make(map[runtime.Kind]map[string]NativeFunction),
		modules:   make(map[string]*Module),
	}
	registerCore(r)
	registerIteration(r)
	registerDateTime(r)
	registerDecimal(r)
	registerStringMethods(r)
	registerListMethods(r)
	registerMappingMethods(r)
	registerModules(r)
	return r
}

func (r *Registry) addFunction(name string, minArgs, maxArgs int, impl NativeFunc) {
	r.functions[name] = NativeFunction{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Impl: impl}
}

func (r *Registry) addMethod(kind runtime.Kind, name string, minArgs, maxArgs int, impl NativeFunc) {
	table, ok := r.methods[kind]
	if !ok {
		table = make(map[string]NativeFunction)
		r.methods[kind] = table
	}
	table[name] = NativeFunction{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Impl: impl}
}

func (r *Registry) addModule(mod *Module) {
	r.modules[mod.Name] = mod
}

func (r *Registry) Function(name string) (NativeFunction, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// Method finds the method table entry for a receiver kind.
func (r *Registry) Method(kind runtime.Kind, name string) (NativeFunction, bool) {
	fn, ok := r.methods[kind][name]
	return fn, ok
}

func (r *Registry) Module(name string) (*Module, bool) {
	mod, ok := r.modules[name]
	return mod, ok
}

func (r *Registry) FunctionNames() []string {
	return sortedKeys(r.functions)
}

func (r *Registry) MethodNames(kind runtime.Kind) []string {
	return sortedKeys(r.methods[kind])
}

func (r *Registry) ModuleNames() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]NativeFunction) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
