package hoist

// Pass 1 of the transform. Every dynamic import in a source unit is wrapped
// in a loader call carrying an opaque marker:
//
//   import('./a')  =>  __loadDeps(import('./a'), "__IMPORT_DEPS__")
//
// The marker is an ordinary string literal on purpose: it is the only thing
// guaranteed to survive whatever the downstream code generation step does to
// the call expression. Identity across the passes is positional, not by
// value: every site shares the same marker text and the finalize pass
// re-locates each one through its enclosing call.

import (
	"sort"
	"strings"

	"github.com/danimoh/hoistdeps/internal/js_ast"
	"github.com/danimoh/hoistdeps/internal/js_parser"
	"github.com/danimoh/hoistdeps/internal/logger"
	"github.com/danimoh/hoistdeps/internal/runtime"
)

// LoaderName is the function the loader runtime exports.
const LoaderName = "__loadDeps"

// Marker is the sentinel literal tagging a wrapped dynamic load. One marker
// per original site; the text is shared by every site.
const Marker = "__IMPORT_DEPS__"

const loaderImport = `import { ` + LoaderName + ` } from "` + runtime.VirtualID + `";` + "\n"

// Insertion is one piece of injected text. Offsets are positions in the
// unit's original text: this pass only ever inserts, so original characters
// never move relative to each other and the insertion list doubles as the
// position map for downstream sourcemap merging.
type Insertion struct {
	Offset int32
	Text   string
}

type RewriteResult struct {
	Code       string
	Sites      int
	Insertions []Insertion
}

// RewriteUnit wraps every dynamic import in the unit and injects the loader
// import. The second result is false when the unit is left unchanged: no
// dynamic imports, the virtual loader unit itself, or a parse failure (which
// has already been reported as a warning against the unit).
func RewriteUnit(log logger.Log, source logger.Source) (RewriteResult, bool) {
	if source.KeyPath.Text == runtime.VirtualID {
		return RewriteResult{}, false
	}

	// Cheap pre-filter before paying for a parse
	if !strings.Contains(source.Contents, "import") {
		return RewriteResult{}, false
	}

	tree, ok := js_parser.Parse(log, source)
	if !ok {
		return RewriteResult{}, false
	}

	var insertions []Insertion
	sites := 0
	js_ast.Walk(tree.Exprs, func(expr js_ast.Expr, _ []js_ast.Expr) bool {
		if _, ok := expr.Data.(*js_ast.EImportCall); ok {
			sites++
			insertions = append(insertions,
				Insertion{Offset: expr.Range.Loc.Start, Text: LoaderName + "("},
				Insertion{Offset: expr.End(), Text: `, "` + Marker + `")`})
		}
		return true
	})
	if sites == 0 {
		return RewriteResult{}, false
	}

	insertions = append([]Insertion{{Offset: 0, Text: loaderImport}}, insertions...)
	sort.SliceStable(insertions, func(i int, j int) bool {
		return insertions[i].Offset < insertions[j].Offset
	})

	builder := strings.Builder{}
	prev := int32(0)
	for _, insertion := range insertions {
		builder.WriteString(source.Contents[prev:insertion.Offset])
		builder.WriteString(insertion.Text)
		prev = insertion.Offset
	}
	builder.WriteString(source.Contents[prev:])

	return RewriteResult{
		Code:       builder.String(),
		Sites:      sites,
		Insertions: insertions,
	}, true
}
