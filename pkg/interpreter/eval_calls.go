package interpreter

import (
	"fmt"
	"slices"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
	"grizzly/interpreter-go/pkg/runtime"
)

// evaluateFunctionCall resolves a bare name: builtins first, then names
// imported with `from m import f`, then functions defined in the program.
func (i *Interpreter) evaluateFunctionCall(state *evalState, call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	if fn, ok := i.registry.Function(call.Name); ok {
		args, err := i.evaluateArguments(state, call.Arguments, env)
		if err != nil {
			return nil, err
		}
		return fn.Call(state.call, args)
	}
	if fn, ok := state.functions[call.Name]; ok {
		args, err := i.evaluateArguments(state, call.Arguments, env)
		if err != nil {
			return nil, err
		}
		return fn.Call(state.call, args)
	}
	if def, ok := state.program.Function(call.Name); ok {
		args, err := i.evaluateArguments(state, call.Arguments, env)
		if err != nil {
			return nil, err
		}
		return i.callUserFunction(state, def, args, env, call.LineNumber())
	}
	return nil, fmt.Errorf("undefined function '%s'%s", call.Name, didYouMean(call.Name, i.callableNames(state)))
}

func (i *Interpreter) callableNames(state *evalState) []string {
	names := slices.Clone(i.registry.FunctionNames())
	names = append(names, state.program.FunctionNames()...)
	for name := range state.functions {
		names = append(names, name)
	}
	return names
}

// callUserFunction runs def in a child of the caller's scope. callLine is 0
// for the entry call.
func (i *Interpreter) callUserFunction(state *evalState, def *ast.FunctionDefinition, args []runtime.Value, caller *runtime.Environment, callLine int) (runtime.Value, error) {
	if len(args) != len(def.Params) {
		return nil, builtins.ArgumentCountError(def.Name, len(def.Params), len(args))
	}
	if err := state.enter(def.Name, callLine); err != nil {
		return nil, err
	}
	defer state.leave()

	scope := caller.CreateChild()
	for idx, param := range def.Params {
		scope.Set(param, args[idx])
	}
	result, err := i.evaluateBlock(state, def.Body, scope)
	if err != nil {
		return nil, err
	}
	switch result.kind {
	case flowReturn:
		return result.value, nil
	case flowBreak:
		return nil, state.attach(fmt.Errorf("'break' outside of loop"), def)
	case flowContinue:
		return nil, state.attach(fmt.Errorf("'continue' outside of loop"), def)
	}
	return runtime.Null, nil
}

func (i *Interpreter) evaluateMethodCall(state *evalState, call *ast.MethodCall, env *runtime.Environment) (runtime.Value, string, error) {
	if mod, ok := state.module(call.Receiver, env); ok {
		path := mod.Name + "." + call.Method + "()"
		fn, ok := mod.Function(call.Method)
		if !ok {
			return nil, "", fmt.Errorf("module '%s' has no function '%s'%s", mod.Name, call.Method, didYouMean(call.Method, mod.Names()))
		}
		args, err := i.evaluateArguments(state, call.Arguments, env)
		if err != nil {
			return nil, "", err
		}
		val, err := fn.Call(state.call, args)
		return val, path, err
	}

	recv, base, err := i.evaluateWithPath(state, call.Receiver, env)
	if err != nil {
		return nil, "", err
	}
	path := methodPath(base, call.Method)
	if runtime.IsNull(recv) {
		env.Record(runtime.AccessEvent{Path: base, Kind: runtime.AccessBrokenPath, Safe: call.Safe, Line: call.LineNumber()})
		if call.Safe {
			return runtime.Null, path, nil
		}
		return nil, "", fmt.Errorf("cannot call method '%s' on None (%s is None)", call.Method, base)
	}
	fn, ok := i.registry.Method(recv.Kind(), call.Method)
	if !ok {
		return nil, "", fmt.Errorf("'%s' object has no method '%s'%s",
			runtime.TypeName(recv), call.Method, didYouMean(call.Method, i.registry.MethodNames(recv.Kind())))
	}
	args, err := i.evaluateArguments(state, call.Arguments, env)
	if err != nil {
		return nil, "", err
	}
	val, err := fn.CallMethod(state.call, recv, args)
	return val, path, err
}
