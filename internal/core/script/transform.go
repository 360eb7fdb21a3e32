package script

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
)

// ResultName is the variable every transformed block defines and evaluates last.
const ResultName = "result"

// Declaration is a root-level variable collected into the synthesized result.
type Declaration struct {
	Name   string
	Line   int
	Column int
}

// Transformed is a block rewritten so that it defines result and ends by evaluating it.
type Transformed struct {
	Script string
	// Declarations holds the root-level names, in declaration order, that a
	// synthesized result would expose. Duplicates are kept.
	Declarations []Declaration
	// DeclaresResult is set when the block declares result itself, in which case
	// no result was synthesized.
	DeclaresResult bool
}

// Transform rewrites source so that it both defines result and evaluates it as its
// final statement. When the block does not declare result at the root, a
// `const result = { ... };` line exposing every non-function root variable is
// appended. When the last non-blank line does not begin with result, `result;` is
// appended.
func Transform(source string) (*Transformed, error) {
	prg, err := parse(source)
	if err != nil {
		return nil, err
	}

	out := &Transformed{Script: source}
	for _, stmt := range prg.ast.Body {
		for _, b := range rootBindings(stmt) {
			id, ok := b.Target.(*ast.Identifier)
			if !ok || id == nil {
				continue
			}
			name := string(id.Name)
			if name == ResultName {
				out.DeclaresResult = true
			}
			if b.Initializer == nil || isFunctionValue(b.Initializer) {
				continue
			}
			pos := prg.position(id.Idx)
			out.Declarations = append(out.Declarations, Declaration{Name: name, Line: pos.Line, Column: pos.Column})
		}
	}

	if !out.DeclaresResult {
		names := make([]string, len(out.Declarations))
		for i, d := range out.Declarations {
			names[i] = d.Name
		}
		out.Script = fmt.Sprintf("%s\nconst %s = { %s };", out.Script, ResultName, strings.Join(names, ", "))
	}
	if !endsWithResult(out.Script) {
		out.Script = fmt.Sprintf("%s\n%s;", out.Script, ResultName)
	}
	return out, nil
}

func rootBindings(stmt ast.Statement) []*ast.Binding {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		if s != nil {
			return s.List
		}
	case *ast.LexicalDeclaration:
		if s != nil {
			return s.List
		}
	}
	return nil
}

func isFunctionValue(e ast.Expression) bool {
	switch e.(type) {
	case *ast.FunctionLiteral, *ast.ArrowFunctionLiteral, *ast.ClassLiteral:
		return true
	default:
		return false
	}
}

// endsWithResult reports whether the last non-blank line starts with the result token.
func endsWithResult(src string) bool {
	trimmed := strings.TrimSpace(src)
	last := trimmed[strings.LastIndex(trimmed, "\n")+1:]
	last = strings.TrimSpace(last)
	if !strings.HasPrefix(last, ResultName) {
		return false
	}
	rest := last[len(ResultName):]
	return rest == "" || (!isIdentChar(rune(rest[0])) && rest[0] != '$')
}
