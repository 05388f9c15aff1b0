package runtime

import (
	"fmt"
	"sort"
)

// InputName is the reserved binding for the entry function's input.
const InputName = "INPUT"

// Environment is one scope of the execution context. Scopes form a tree:
// each child holds exactly one parent, and all scopes of a run share the null
// mode and tracker of the root.
type Environment struct {
	values map[string]Value
	parent *Environment
	run    *runScope
}

type runScope struct {
	mode    NullMode
	tracker *AccessTracker
}

// NewEnvironment creates a root scope. A nil tracker disables access
// tracking; silent mode disables it regardless.
func NewEnvironment(mode NullMode, tracker *AccessTracker) *Environment {
	if mode == NullSilent {
		tracker = nil
	}
	return &Environment{
		values: make(map[string]Value),
		run:    &runScope{mode: mode, tracker: tracker},
	}
}

// CreateChild opens a nested scope sharing this scope's run settings.
func (e *Environment) CreateChild() *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: e,
		run:    e.run,
	}
}

func (e *Environment) NullMode() NullMode { return e.run.mode }

// Tracker returns the run's access log, or nil when tracking is off.
func (e *Environment) Tracker() *AccessTracker { return e.run.tracker }

// Record appends to the run's access log when tracking is on.
func (e *Environment) Record(event AccessEvent) {
	if e.run.tracker != nil {
		e.run.tracker.Record(event)
	}
}

// Lookup searches outward through the scope chain.
func (e *Environment) Lookup(name string) (Value, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Get is Lookup with an error for unbound names.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.Lookup(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("undefined variable '%s'", name)
}

func (e *Environment) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Set binds name in this scope. Outer bindings of the same name are shadowed,
// never overwritten.
func (e *Environment) Set(name string, value Value) {
	if value == nil {
		value = Null
	}
	e.values[name] = value
}

// Names returns every visible binding, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]struct{})
	for scope := e; scope != nil; scope = scope.parent {
		for k := range scope.values {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
