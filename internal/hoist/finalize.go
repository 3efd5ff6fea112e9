package hoist

// Pass 2 of the transform, run once after all code generation is complete.
// Each emitted chunk is re-parsed and every marker literal is resolved back
// to its call site: the enclosing call's first argument is the wrapped load
// expression, possibly restructured by the output format. The marker is then
// replaced with the target's statically-known dependency list and the
// wrapped expression with the target's resolved name.
//
// The pass is deliberately not re-entrant: rewriting a site destroys its
// marker, so running finalize twice finds nothing to do. That is the guard
// against double processing.

import (
	"sort"
	"strconv"
	"strings"

	"github.com/danimoh/hoistdeps/internal/config"
	"github.com/danimoh/hoistdeps/internal/graph"
	"github.com/danimoh/hoistdeps/internal/js_ast"
	"github.com/danimoh/hoistdeps/internal/js_parser"
	"github.com/danimoh/hoistdeps/internal/logger"
)

// FinalizeBundle rewrites every marker in the bundle's chunks in place and
// returns the number of call sites rewritten. Chunks are independent of each
// other; a chunk that fails to parse is reported and left untouched without
// affecting the rest.
func FinalizeBundle(log logger.Log, bundle *graph.Bundle, options config.Options) int {
	resolver := depResolver{bundle: bundle, options: options}
	total := 0
	for _, chunk := range bundle.Chunks() {
		if len(chunk.DynamicImports) == 0 {
			continue
		}
		total += finalizeChunk(log, chunk, resolver)
	}
	return total
}

type textEdit struct {
	start int32
	end   int32
	text  string
}

func finalizeChunk(log logger.Log, chunk *graph.Chunk, resolver depResolver) int {
	source := logger.Source{
		KeyPath:    logger.Path{Text: chunk.FileName},
		PrettyPath: chunk.FileName,
		Contents:   chunk.Code,
	}
	tree, ok := js_parser.Parse(log, source)
	if !ok {
		return 0
	}

	var edits []textEdit
	js_ast.Walk(tree.Exprs, func(expr js_ast.Expr, ancestors []js_ast.Expr) bool {
		str, ok := expr.Data.(*js_ast.EString)
		if !ok || str.Value != Marker {
			return true
		}

		loadExpr, ok := wrappedLoadExpr(expr, ancestors)
		if !ok {
			// A marker with no enclosing call is not one of ours
			return true
		}
		target, ok := loadTarget(loadExpr)
		if !ok {
			// No identifier is recoverable. The wrapper call stays behind as
			// inert dead code; preloading is best-effort, so this degrades
			// silently instead of corrupting the chunk.
			return true
		}

		chunkName, deps := resolver.Resolve(target)
		depsText := ""
		if len(deps) > 0 {
			depsText = ", " + strings.Join(deps, ",")
		}

		// Two contiguous edits: the wrapped expression becomes a plain
		// literal of the resolved name, and the span from there through the
		// marker becomes the dependency list. An empty list consumes the
		// comma too, so no trailing comma is ever emitted.
		edits = append(edits,
			textEdit{start: loadExpr.Range.Loc.Start, end: loadExpr.End(), text: strconv.Quote(chunkName)},
			textEdit{start: loadExpr.End(), end: expr.End(), text: depsText})
		return true
	})
	if len(edits) == 0 {
		return 0
	}

	sort.SliceStable(edits, func(i int, j int) bool {
		return edits[i].start < edits[j].start
	})

	builder := strings.Builder{}
	prev := int32(0)
	applied := 0
	for _, edit := range edits {
		if edit.start < prev {
			// A site nested inside another site's argument was already
			// consumed by the outer rewrite
			continue
		}
		builder.WriteString(chunk.Code[prev:edit.start])
		builder.WriteString(edit.text)
		prev = edit.end
		applied++
	}
	builder.WriteString(chunk.Code[prev:])
	chunk.Code = builder.String()

	// Each site contributes two edits; a skipped nested site contributes none
	return applied / 2
}

// wrappedLoadExpr returns the first argument of the call the marker is a
// direct argument of. This is the positional half of the marker protocol:
// the marker text identifies nothing by itself, its position inside the
// nearest enclosing call does.
func wrappedLoadExpr(marker js_ast.Expr, ancestors []js_ast.Expr) (js_ast.Expr, bool) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		call, ok := ancestors[i].Data.(*js_ast.ECall)
		if !ok {
			continue
		}
		for argIndex, arg := range call.Args {
			if arg.Data == marker.Data {
				if argIndex == 0 {
					return js_ast.Expr{}, false
				}
				return call.Args[0], true
			}
		}
	}
	return js_ast.Expr{}, false
}

// loadTarget recovers the load-target identifier from the wrapped
// expression.
func loadTarget(loadExpr js_ast.Expr) (string, bool) {
	// Module-preserving output keeps the dynamic import as-is and the
	// target is its source argument, when it is a literal
	if imp, ok := loadExpr.Data.(*js_ast.EImportCall); ok {
		if len(imp.Args) > 0 {
			if str, ok := imp.Args[0].Data.(*js_ast.EString); ok {
				return str.Value, true
			}
		}
		return "", false
	}

	// Other output formats wrap the load in a runtime construct, for example
	// "Promise.resolve().then(() => require('./b.js'))". The identifier is
	// assumed to be the first string literal in traversal order. A wrapping
	// construct that embedded an earlier unrelated literal would win
	// instead; that gap is accepted rather than guessing at validation the
	// formats don't need.
	target := ""
	found := false
	js_ast.Walk([]js_ast.Expr{loadExpr}, func(expr js_ast.Expr, _ []js_ast.Expr) bool {
		if found {
			return false
		}
		if str, ok := expr.Data.(*js_ast.EString); ok {
			target = str.Value
			found = true
			return false
		}
		return true
	})
	return target, found
}
