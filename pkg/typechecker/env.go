package typechecker

import "grizzly/interpreter-go/pkg/ast"

// scope lists the names a function binds itself: parameters, assignment
// roots and loop targets. Anything else it reads comes from a caller, so it
// is Unknown rather than an error.
type scope struct {
	function string
	locals   map[string]struct{}
}

func newScope(fn *ast.FunctionDefinition) *scope {
	s := &scope{function: fn.Name, locals: make(map[string]struct{})}
	for _, param := range fn.Params {
		s.locals[param] = struct{}{}
	}
	s.collect(fn.Body)
	return s
}

func (s *scope) has(name string) bool {
	_, ok := s.locals[name]
	return ok
}

func (s *scope) collect(block *ast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Body {
		switch st := stmt.(type) {
		case *ast.AssignmentStatement:
			if root := assignmentRoot(st.Target); root != "" {
				s.locals[root] = struct{}{}
			}
		case *ast.ForStatement:
			for _, target := range st.Targets {
				s.locals[target.Name] = struct{}{}
			}
			s.collect(st.Body)
		case *ast.IfStatement:
			s.collect(st.Body)
			for _, elif := range st.Elifs {
				s.collect(elif.Body)
			}
			s.collect(st.Else)
		}
	}
}

// assignmentRoot is the variable an assignment target hangs off.
func assignmentRoot(target ast.Expression) string {
	for {
		switch t := target.(type) {
		case *ast.Identifier:
			return t.Name
		case *ast.AttributeAccess:
			target = t.Object
		case *ast.IndexAccess:
			target = t.Object
		default:
			return ""
		}
	}
}
