package interpreter

import (
	"fmt"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/runtime"
)

type flowKind int

const (
	flowNormal flowKind = iota
	flowBreak
	flowContinue
	flowReturn
)

// flow is how a statement finished. value is set for flowReturn only.
type flow struct {
	kind  flowKind
	value runtime.Value
}

var normal = flow{kind: flowNormal}

func (i *Interpreter) evaluateBlock(state *evalState, block *ast.Block, env *runtime.Environment) (flow, error) {
	if block == nil {
		return normal, nil
	}
	for _, stmt := range block.Body {
		result, err := i.evaluateStatement(state, stmt, env)
		if err != nil {
			return normal, err
		}
		if result.kind != flowNormal {
			return result, nil
		}
	}
	return normal, nil
}

func (i *Interpreter) evaluateStatement(state *evalState, node ast.Statement, env *runtime.Environment) (flow, error) {
	result, err := i.evaluateStatementNode(state, node, env)
	if err != nil {
		return normal, state.attach(err, node)
	}
	return result, nil
}

func (i *Interpreter) evaluateStatementNode(state *evalState, node ast.Statement, env *runtime.Environment) (flow, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		_, err := i.evaluateExpression(state, n.Expression, env)
		return normal, err
	case *ast.AssignmentStatement:
		return normal, i.evaluateAssignment(state, n, env)
	case *ast.ReturnStatement:
		if n.Value == nil {
			return flow{kind: flowReturn, value: runtime.Null}, nil
		}
		val, err := i.evaluateExpression(state, n.Value, env)
		if err != nil {
			return normal, err
		}
		return flow{kind: flowReturn, value: val}, nil
	case *ast.IfStatement:
		return i.evaluateIfStatement(state, n, env)
	case *ast.ForStatement:
		return i.evaluateForStatement(state, n, env)
	case *ast.BreakStatement:
		return flow{kind: flowBreak}, nil
	case *ast.ContinueStatement:
		return flow{kind: flowContinue}, nil
	case *ast.ImportStatement:
		return normal, state.bindImport(n)
	case *ast.FunctionDefinition:
		return normal, fmt.Errorf("function '%s' must be defined at top level", n.Name)
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateIfStatement(state *evalState, stmt *ast.IfStatement, env *runtime.Environment) (flow, error) {
	cond, err := i.evaluateExpression(state, stmt.Condition, env)
	if err != nil {
		return normal, err
	}
	if runtime.IsTruthy(cond) {
		return i.evaluateBlock(state, stmt.Body, env)
	}
	for _, clause := range stmt.Elifs {
		cond, err := i.evaluateExpression(state, clause.Condition, env)
		if err != nil {
			return normal, err
		}
		if runtime.IsTruthy(cond) {
			return i.evaluateBlock(state, clause.Body, env)
		}
	}
	return i.evaluateBlock(state, stmt.Else, env)
}

func (i *Interpreter) evaluateForStatement(state *evalState, loop *ast.ForStatement, env *runtime.Environment) (flow, error) {
	seq, err := i.iterationSource(state, loop.Iterable, env)
	if err != nil {
		return normal, err
	}
	for idx := 0; idx < seq.len(); idx++ {
		if err := state.tick(); err != nil {
			return normal, err
		}
		if err := bindTargets(loop.Targets, seq.at(idx), env); err != nil {
			return normal, err
		}
		result, err := i.evaluateBlock(state, loop.Body, env)
		if err != nil {
			return normal, err
		}
		switch result.kind {
		case flowBreak:
			return normal, nil
		case flowReturn:
			return result, nil
		}
	}
	return normal, nil
}

// bindTargets assigns a loop element; several targets unpack a list of the
// same length.
func bindTargets(targets []*ast.Identifier, element runtime.Value, env *runtime.Environment) error {
	if len(targets) == 1 {
		env.Set(targets[0].Name, element)
		return nil
	}
	list, ok := element.(*runtime.ListValue)
	if !ok {
		return fmt.Errorf("cannot unpack %s into %d loop variables", runtime.TypeName(element), len(targets))
	}
	if list.Len() != len(targets) {
		return fmt.Errorf("cannot unpack %d values into %d loop variables", list.Len(), len(targets))
	}
	for idx, target := range targets {
		env.Set(target.Name, list.Elements[idx])
	}
	return nil
}
