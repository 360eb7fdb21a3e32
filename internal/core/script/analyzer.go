package script

import (
	"github.com/dop251/goja/ast"
)

// Scope is the set of names a block inherits.
type Scope interface {
	Has(name string) bool
}

// DependsOn reports whether source references any name in scope. Every identifier
// node counts, including shadowing declarations, member names and property keys, so
// the answer errs toward re-running. A parse failure is returned as *ParseError.
func DependsOn(source string, scope Scope) (bool, error) {
	prg, err := parse(source)
	if err != nil {
		return false, err
	}
	if scope == nil {
		return false, nil
	}
	f := &refFinder{scope: scope}
	for _, stmt := range prg.ast.Body {
		if f.node(stmt) {
			return true, nil
		}
	}
	return false, nil
}

// refFinder walks the syntax tree node kind by node kind and stops at the first
// identifier bound in scope. Every method returns true once a match is found.
type refFinder struct {
	scope Scope
}

func (f *refFinder) nodes(list ...any) bool {
	for _, n := range list {
		if f.node(n) {
			return true
		}
	}
	return false
}

func (f *refFinder) statements(list []ast.Statement) bool {
	for _, s := range list {
		if f.node(s) {
			return true
		}
	}
	return false
}

func (f *refFinder) expressions(list []ast.Expression) bool {
	for _, e := range list {
		if f.node(e) {
			return true
		}
	}
	return false
}

func (f *refFinder) bindings(list []*ast.Binding) bool {
	for _, b := range list {
		if f.node(b) {
			return true
		}
	}
	return false
}

func (f *refFinder) properties(list []ast.Property) bool {
	for _, p := range list {
		if f.node(p) {
			return true
		}
	}
	return false
}

// key checks a property or class member key. The parser stores identifier-named keys
// as string literals whose raw text equals their value; quoted keys keep their quotes.
func (f *refFinder) key(k ast.Expression, computed bool) bool {
	if computed {
		return f.node(k)
	}
	lit, ok := k.(*ast.StringLiteral)
	if !ok || lit == nil {
		return false
	}
	name := lit.Value.String()
	return lit.Literal == name && f.scope.Has(name)
}

func (f *refFinder) node(n any) bool {
	switch t := n.(type) {
	case nil:
		return false

	// Identifiers
	case *ast.Identifier:
		return t != nil && f.scope.Has(string(t.Name))

	// Statements
	case *ast.BlockStatement:
		return t != nil && f.statements(t.List)
	case *ast.ExpressionStatement:
		return t != nil && f.node(t.Expression)
	case *ast.VariableStatement:
		return t != nil && f.bindings(t.List)
	case *ast.LexicalDeclaration:
		return t != nil && f.bindings(t.List)
	case *ast.FunctionDeclaration:
		return t != nil && f.node(t.Function)
	case *ast.ClassDeclaration:
		return t != nil && f.node(t.Class)
	case *ast.IfStatement:
		return t != nil && f.nodes(t.Test, t.Consequent, t.Alternate)
	case *ast.ForStatement:
		return t != nil && f.nodes(t.Initializer, t.Test, t.Update, t.Body)
	case *ast.ForInStatement:
		return t != nil && f.nodes(t.Into, t.Source, t.Body)
	case *ast.ForOfStatement:
		return t != nil && f.nodes(t.Into, t.Source, t.Body)
	case *ast.WhileStatement:
		return t != nil && f.nodes(t.Test, t.Body)
	case *ast.DoWhileStatement:
		return t != nil && f.nodes(t.Body, t.Test)
	case *ast.ReturnStatement:
		return t != nil && f.node(t.Argument)
	case *ast.ThrowStatement:
		return t != nil && f.node(t.Argument)
	case *ast.TryStatement:
		return t != nil && f.nodes(t.Body, t.Catch, t.Finally)
	case *ast.CatchStatement:
		return t != nil && f.nodes(t.Parameter, t.Body)
	case *ast.SwitchStatement:
		if t == nil {
			return false
		}
		if f.node(t.Discriminant) {
			return true
		}
		for _, c := range t.Body {
			if f.node(c) {
				return true
			}
		}
		return false
	case *ast.CaseStatement:
		return t != nil && (f.node(t.Test) || f.statements(t.Consequent))
	case *ast.LabelledStatement:
		return t != nil && f.nodes(t.Label, t.Statement)
	case *ast.BranchStatement:
		return t != nil && f.node(t.Label)
	case *ast.WithStatement:
		return t != nil && f.nodes(t.Object, t.Body)
	case *ast.EmptyStatement, *ast.DebuggerStatement, *ast.BadStatement:
		return false

	// Loop heads
	case *ast.ForLoopInitializerExpression:
		return t != nil && f.node(t.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		return t != nil && f.bindings(t.List)
	case *ast.ForLoopInitializerLexicalDecl:
		return t != nil && f.bindings(t.LexicalDeclaration.List)
	case *ast.ForIntoVar:
		return t != nil && f.node(t.Binding)
	case *ast.ForDeclaration:
		return t != nil && f.node(t.Target)
	case *ast.ForIntoExpression:
		return t != nil && f.node(t.Expression)

	// Bindings and patterns
	case *ast.Binding:
		return t != nil && f.nodes(t.Target, t.Initializer)
	case *ast.ArrayPattern:
		return t != nil && (f.expressions(t.Elements) || f.node(t.Rest))
	case *ast.ObjectPattern:
		return t != nil && (f.properties(t.Properties) || f.node(t.Rest))
	case *ast.ParameterList:
		return t != nil && (f.bindings(t.List) || f.node(t.Rest))

	// Functions and classes
	case *ast.FunctionLiteral:
		if t == nil {
			return false
		}
		if t.Name != nil && f.node(t.Name) {
			return true
		}
		if t.ParameterList != nil && f.node(t.ParameterList) {
			return true
		}
		return t.Body != nil && f.node(t.Body)
	case *ast.ArrowFunctionLiteral:
		if t == nil {
			return false
		}
		if t.ParameterList != nil && f.node(t.ParameterList) {
			return true
		}
		return f.node(t.Body)
	case *ast.ExpressionBody:
		return t != nil && f.node(t.Expression)
	case *ast.ClassLiteral:
		if t == nil {
			return false
		}
		if t.Name != nil && f.node(t.Name) {
			return true
		}
		if f.node(t.SuperClass) {
			return true
		}
		for _, el := range t.Body {
			if f.node(el) {
				return true
			}
		}
		return false
	case *ast.FieldDefinition:
		return t != nil && (f.key(t.Key, t.Computed) || f.node(t.Initializer))
	case *ast.MethodDefinition:
		if t == nil {
			return false
		}
		if f.key(t.Key, t.Computed) {
			return true
		}
		return t.Body != nil && f.node(t.Body)
	case *ast.ClassStaticBlock:
		return t != nil && t.Block != nil && f.node(t.Block)

	// Expressions
	case *ast.AssignExpression:
		return t != nil && f.nodes(t.Left, t.Right)
	case *ast.BinaryExpression:
		return t != nil && f.nodes(t.Left, t.Right)
	case *ast.UnaryExpression:
		return t != nil && f.node(t.Operand)
	case *ast.ConditionalExpression:
		return t != nil && f.nodes(t.Test, t.Consequent, t.Alternate)
	case *ast.SequenceExpression:
		return t != nil && f.expressions(t.Sequence)
	case *ast.CallExpression:
		return t != nil && (f.node(t.Callee) || f.expressions(t.ArgumentList))
	case *ast.NewExpression:
		return t != nil && (f.node(t.Callee) || f.expressions(t.ArgumentList))
	case *ast.DotExpression:
		return t != nil && (f.node(t.Left) || f.node(&t.Identifier))
	case *ast.PrivateDotExpression:
		return t != nil && f.node(t.Left)
	case *ast.BracketExpression:
		return t != nil && f.nodes(t.Left, t.Member)
	case *ast.OptionalChain:
		return t != nil && f.node(t.Expression)
	case *ast.Optional:
		return t != nil && f.node(t.Expression)
	case *ast.ArrayLiteral:
		return t != nil && f.expressions(t.Value)
	case *ast.ObjectLiteral:
		return t != nil && f.properties(t.Value)
	case *ast.PropertyShort:
		return t != nil && (f.node(&t.Name) || f.node(t.Initializer))
	case *ast.PropertyKeyed:
		return t != nil && (f.key(t.Key, t.Computed) || f.node(t.Value))
	case *ast.SpreadElement:
		return t != nil && f.node(t.Expression)
	case *ast.TemplateLiteral:
		return t != nil && (f.node(t.Tag) || f.expressions(t.Expressions))
	case *ast.YieldExpression:
		return t != nil && f.node(t.Argument)
	case *ast.AwaitExpression:
		return t != nil && f.node(t.Argument)

	// Leaves
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral,
		*ast.RegExpLiteral, *ast.ThisExpression, *ast.SuperExpression, *ast.MetaProperty,
		*ast.BadExpression:
		return false

	default:
		return false
	}
}
