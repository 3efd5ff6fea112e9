package js_ast

// The tree produced by the parser is deliberately loose. The passes built on
// it correlate call sites across an independent code generation step, so the
// only structure that must be faithful is nesting, call boundaries, argument
// boundaries, and string literal values. Everything else is folded into
// opaque groups that preserve source order.
//
// Every node carries its byte range in the original text. The transform
// passes edit text by range instead of printing the tree back out, so ranges
// are the load-bearing part of each node.

import (
	"github.com/danimoh/hoistdeps/internal/logger"
)

type Expr struct {
	Range logger.Range
	Data  E
}

func (e Expr) End() int32 {
	return e.Range.End()
}

type E interface{ isExpr() }

// EString is a string literal. Value holds the decoded contents without
// quotes. No-substitution template literals are also represented this way.
type EString struct {
	Value string
}

// EIdentifier is a bare identifier or keyword reference.
type EIdentifier struct {
	Name string
}

// ECall is "target(...)" for any callee expression.
type ECall struct {
	Target Expr
	Args   []Expr
}

// EImportCall is a dynamic "import(...)" expression.
type EImportCall struct {
	Args []Expr
}

// EGroup is any other bracketed construct or multi-token argument: object
// and array literals, parenthesized expressions, template substitutions,
// arrow bodies. Children appear in source order.
type EGroup struct {
	Children []Expr
}

func (*EString) isExpr()     {}
func (*EIdentifier) isExpr() {}
func (*ECall) isExpr()       {}
func (*EImportCall) isExpr() {}
func (*EGroup) isExpr()      {}

type AST struct {
	Exprs []Expr
}

// Walk visits every node in source order, passing the chain of enclosing
// nodes from outermost to innermost. Returning false skips the node's
// children.
func Walk(exprs []Expr, visit func(expr Expr, ancestors []Expr) bool) {
	var walk func(exprs []Expr, ancestors []Expr)
	walk = func(exprs []Expr, ancestors []Expr) {
		for _, expr := range exprs {
			if !visit(expr, ancestors) {
				continue
			}
			switch e := expr.Data.(type) {
			case *ECall:
				inner := append(ancestors, expr)
				walk([]Expr{e.Target}, inner)
				walk(e.Args, inner)
			case *EImportCall:
				walk(e.Args, append(ancestors, expr))
			case *EGroup:
				walk(e.Children, append(ancestors, expr))
			}
		}
	}
	walk(exprs, nil)
}
