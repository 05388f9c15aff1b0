// Package typechecker finds mistakes that would fail every run of a program:
// unknown imports and functions, wrong argument counts, and operations on
// literal values whose types can never work together. Values read from the
// input or from a caller's scope are not checked.
package typechecker

import (
	"fmt"
	"slices"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
	"grizzly/interpreter-go/pkg/runtime"
)

// Checker walks a program and records diagnostics. It is not safe for
// concurrent use; the registry it reads is.
type Checker struct {
	registry  *builtins.Registry
	program   *ast.Program
	modules   map[string]*builtins.Module
	functions map[string]builtins.NativeFunction
	scope     *scope
	entry     string
	loopDepth int
	diags     []Diagnostic
}

// Diagnostic is one problem found in the program.
type Diagnostic struct {
	Message string
	Node    ast.Node
}

// Line is the source line of the offending node, or 0.
func (d Diagnostic) Line() int {
	if d.Node == nil {
		return 0
	}
	return d.Node.LineNumber()
}

func (d Diagnostic) String() string {
	if line := d.Line(); line > 0 {
		return fmt.Sprintf("line %d: %s", line, d.Message)
	}
	return d.Message
}

// New returns a checker over registry; nil means the standard builtins.
func New(registry *builtins.Registry) *Checker {
	if registry == nil {
		registry = builtins.NewRegistry()
	}
	return &Checker{registry: registry}
}

// CheckProgram returns diagnostics in source order. entry names the
// function runs start from; an empty entry skips the entry checks.
func (c *Checker) CheckProgram(program *ast.Program, entry string) ([]Diagnostic, error) {
	if program == nil {
		return nil, fmt.Errorf("typechecker: program is nil")
	}
	c.program = program
	c.modules = make(map[string]*builtins.Module)
	c.functions = make(map[string]builtins.NativeFunction)
	c.scope = nil
	c.entry = entry
	c.loopDepth = 0
	c.diags = nil

	c.applyImports(program.Imports)
	c.collectDeclarations(program.Functions)
	if entry != "" {
		c.checkEntry(entry)
	}
	for _, fn := range program.Functions {
		if fn == nil {
			continue
		}
		c.scope = newScope(fn)
		c.checkBlock(fn.Body)
	}

	slices.SortStableFunc(c.diags, func(a, b Diagnostic) int { return a.Line() - b.Line() })
	return c.diags, nil
}

func (c *Checker) report(node ast.Node, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Message: fmt.Sprintf(format, args...), Node: node})
}

func (c *Checker) applyImports(imports []*ast.ImportStatement) {
	for _, imp := range imports {
		if imp == nil {
			continue
		}
		mod, ok := c.registry.Module(imp.Module)
		if !ok {
			c.report(imp, "no module named '%s'%s", imp.Module, builtins.DidYouMean(imp.Module, c.registry.ModuleNames()))
			continue
		}
		if len(imp.Names) == 0 {
			c.modules[imp.Binding()] = mod
			continue
		}
		for _, name := range imp.Names {
			fn, ok := mod.Function(name)
			if !ok {
				c.report(imp, "cannot import name '%s' from '%s'%s", name, imp.Module, builtins.DidYouMean(name, mod.Names()))
				continue
			}
			c.functions[name] = fn
		}
	}
}

func (c *Checker) collectDeclarations(functions []*ast.FunctionDefinition) {
	seen := make(map[string]*ast.FunctionDefinition, len(functions))
	for _, fn := range functions {
		if fn == nil {
			continue
		}
		if prev, ok := seen[fn.Name]; ok {
			c.report(prev, "function '%s' is redefined at line %d", fn.Name, fn.LineNumber())
		}
		seen[fn.Name] = fn
		if _, ok := c.registry.Function(fn.Name); ok {
			c.report(fn, "function '%s' is shadowed by the builtin of the same name", fn.Name)
		}
		params := make(map[string]struct{}, len(fn.Params))
		for _, param := range fn.Params {
			if _, dup := params[param]; dup {
				c.report(fn, "duplicate parameter '%s' in %s()", param, fn.Name)
			}
			params[param] = struct{}{}
		}
	}
}

func (c *Checker) checkEntry(entry string) {
	fn, ok := c.program.Function(entry)
	if !ok {
		c.report(nil, "entry function '%s' is not defined%s", entry, builtins.DidYouMean(entry, c.program.FunctionNames()))
		return
	}
	if len(fn.Params) > 1 {
		c.report(fn, "entry function '%s' must take at most one parameter, got %d", entry, len(fn.Params))
	}
}

func (c *Checker) checkBlock(block *ast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Body {
		c.checkStatement(stmt)
	}
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch st := stmt.(type) {
	case *ast.AssignmentStatement:
		c.checkAssignment(st)
	case *ast.ReturnStatement:
		c.checkReturn(st)
	case *ast.ExpressionStatement:
		c.expr(st.Expression)
	case *ast.IfStatement:
		c.expr(st.Condition)
		c.checkBlock(st.Body)
		for _, elif := range st.Elifs {
			c.expr(elif.Condition)
			c.checkBlock(elif.Body)
		}
		c.checkBlock(st.Else)
	case *ast.ForStatement:
		c.checkFor(st)
	case *ast.BreakStatement:
		if c.loopDepth == 0 {
			c.report(st, "'break' outside of loop")
		}
	case *ast.ContinueStatement:
		if c.loopDepth == 0 {
			c.report(st, "'continue' outside of loop")
		}
	}
}

func (c *Checker) checkReturn(st *ast.ReturnStatement) {
	t := kindType(runtime.KindNull)
	if st.Value != nil {
		t = c.expr(st.Value)
	}
	if c.scope == nil || c.scope.function != c.entry || !t.Known() {
		return
	}
	if t.Kind() != runtime.KindMapping {
		c.report(st, "entry function '%s' must return a dict, got %s", c.entry, t.Name())
	}
}
