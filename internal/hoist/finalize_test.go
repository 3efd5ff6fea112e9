package hoist

import (
	"testing"

	"github.com/danimoh/hoistdeps/internal/config"
	"github.com/danimoh/hoistdeps/internal/graph"
	"github.com/danimoh/hoistdeps/internal/logger"
	"github.com/danimoh/hoistdeps/internal/test"
)

// twoDepsBundle is the shape most tests need: a main chunk that dynamically
// imports b.js, which statically imports c.js and d.js.
func twoDepsBundle(mainCode string) *graph.Bundle {
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{
		FileName:       "main.js",
		Code:           mainCode,
		DynamicImports: []string{"b.js"},
		IsEntry:        true,
	})
	bundle.Add(&graph.Chunk{
		FileName: "b.js",
		Code:     `export const b = 1;`,
		Imports:  []string{"c.js", "d.js"},
	})
	return bundle
}

func finalizeForTest(t *testing.T, bundle *graph.Bundle, options config.Options) logger.Log {
	t.Helper()
	log := logger.NewDeferLog()
	FinalizeBundle(log, bundle, options)
	if log.HasErrors() {
		t.Fatal("finalize must not produce errors")
	}
	return log
}

func mainCode(t *testing.T, bundle *graph.Bundle) string {
	t.Helper()
	chunk, ok := bundle.Chunk("main.js")
	if !ok {
		t.Fatal("missing main.js")
	}
	return chunk.Code
}

func TestFinalizeModulePreserving(t *testing.T) {
	bundle := twoDepsBundle(`__loadDeps(import("./b.js"), "__IMPORT_DEPS__");`)
	finalizeForTest(t, bundle, config.Options{})
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b.js", "c.js","d.js");`)
}

func TestFinalizeExtensionlessTarget(t *testing.T) {
	// "import('b')" in the source resolves to chunk "b.js" in the graph
	bundle := twoDepsBundle(`__loadDeps(import("b"), "__IMPORT_DEPS__");`)
	finalizeForTest(t, bundle, config.Options{})
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b.js", "c.js","d.js");`)
}

func TestFinalizeWrappedConstruct(t *testing.T) {
	// Non-module output formats restructure the dynamic import into a
	// runtime construct; the target is recovered from the first literal
	bundle := twoDepsBundle(`__loadDeps(Promise.resolve().then(function () { return require('./b.js'); }), "__IMPORT_DEPS__");`)
	finalizeForTest(t, bundle, config.Options{})
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b.js", "c.js","d.js");`)
}

func TestFinalizeNoDeps(t *testing.T) {
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{
		FileName:       "main.js",
		Code:           `__loadDeps(import("./b.js"), "__IMPORT_DEPS__");`,
		DynamicImports: []string{"b.js"},
	})
	bundle.Add(&graph.Chunk{FileName: "b.js", Code: `export const b = 1;`})
	finalizeForTest(t, bundle, config.Options{})

	// No trailing comma, no placeholder: just the base target
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b.js");`)
}

func TestFinalizeMissingChunk(t *testing.T) {
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{
		FileName:       "main.js",
		Code:           `__loadDeps(import("./gone.js"), "__IMPORT_DEPS__");`,
		DynamicImports: []string{"gone.js"},
	})
	log := finalizeForTest(t, bundle, config.Options{})
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("gone.js");`)

	// Missing dependency data is not a diagnostic
	test.AssertEqual(t, len(log.Done()), 0)
}

func TestFinalizeUnresolvableMarker(t *testing.T) {
	code := `__loadDeps(someVariable, "__IMPORT_DEPS__");`
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{
		FileName:       "main.js",
		Code:           code,
		DynamicImports: []string{"b.js"},
	})
	log := finalizeForTest(t, bundle, config.Options{})

	// The site is skipped silently and the wrapper stays behind as inert
	// dead code
	test.AssertEqualText(t, mainCode(t, bundle), code)
	test.AssertEqual(t, len(log.Done()), 0)
}

func TestFinalizeMultipleSites(t *testing.T) {
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{
		FileName: "main.js",
		Code: `__loadDeps(import("./b.js"), "__IMPORT_DEPS__");` + "\n" +
			`__loadDeps(import("./e.js"), "__IMPORT_DEPS__");`,
		DynamicImports: []string{"b.js", "e.js"},
	})
	bundle.Add(&graph.Chunk{FileName: "b.js", Imports: []string{"c.js", "d.js"}})
	bundle.Add(&graph.Chunk{FileName: "e.js", Imports: []string{"f.js"}})
	finalizeForTest(t, bundle, config.Options{})
	test.AssertEqualText(t, mainCode(t, bundle),
		`__loadDeps("b.js", "c.js","d.js");`+"\n"+`__loadDeps("e.js", "f.js");`)
}

func TestFinalizeDuplicateDepsPreserved(t *testing.T) {
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{
		FileName:       "main.js",
		Code:           `__loadDeps(import("./b.js"), "__IMPORT_DEPS__");`,
		DynamicImports: []string{"b.js"},
	})
	bundle.Add(&graph.Chunk{FileName: "b.js", Imports: []string{"c.js", "c.js"}})
	finalizeForTest(t, bundle, config.Options{})
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b.js", "c.js","c.js");`)
}

func TestFinalizeBaseURL(t *testing.T) {
	bundle := twoDepsBundle(`__loadDeps(import("./b.js"), "__IMPORT_DEPS__");`)
	finalizeForTest(t, bundle, config.Options{BaseURL: "assets"})
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b.js", "assets/c.js","assets/d.js");`)
}

func TestFinalizeNativeImportStripsExtensions(t *testing.T) {
	// An extension-less reference keeps its convention when the base target
	// is loaded with native import syntax
	bundle := twoDepsBundle(`__loadDeps(import("b"), "__IMPORT_DEPS__");`)
	finalizeForTest(t, bundle, config.Options{NativeImport: true})
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b", "c","d");`)
}

func TestFinalizeSkipsChunksWithoutDynamicImports(t *testing.T) {
	code := `var s = "__IMPORT_DEPS__"; // never parsed`
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{FileName: "plain.js", Code: code})
	finalizeForTest(t, bundle, config.Options{})
	chunk, _ := bundle.Chunk("plain.js")
	test.AssertEqualText(t, chunk.Code, code)
}

func TestFinalizeParseFailure(t *testing.T) {
	code := `__loadDeps(import("./b.js"`
	bundle := graph.NewBundle()
	bundle.Add(&graph.Chunk{
		FileName:       "broken.js",
		Code:           code,
		DynamicImports: []string{"b.js"},
	})
	log := finalizeForTest(t, bundle, config.Options{})

	chunk, _ := bundle.Chunk("broken.js")
	test.AssertEqualText(t, chunk.Code, code)

	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].Kind, logger.Warning)
	test.AssertEqual(t, msgs[0].Location.File, "broken.js")
}

func TestFinalizeNestedSiteCountsOnce(t *testing.T) {
	// A site wrapped inside another site's arguments is consumed by the
	// outer rewrite and must not show up in the site count
	bundle := twoDepsBundle(
		`__loadDeps(import("./b.js", __loadDeps(import("./e.js"), "__IMPORT_DEPS__")), "__IMPORT_DEPS__");`)

	log := logger.NewDeferLog()
	sites := FinalizeBundle(log, bundle, config.Options{})
	test.AssertEqual(t, sites, 1)
	test.AssertEqualText(t, mainCode(t, bundle), `__loadDeps("b.js", "c.js","d.js");`)
}

func TestFinalizeIsNotReentrant(t *testing.T) {
	bundle := twoDepsBundle(`__loadDeps(import("./b.js"), "__IMPORT_DEPS__");`)

	log := logger.NewDeferLog()
	first := FinalizeBundle(log, bundle, config.Options{})
	test.AssertEqual(t, first, 1)
	after := mainCode(t, bundle)

	// The rewrite destroyed the marker, so a second run finds nothing
	second := FinalizeBundle(log, bundle, config.Options{})
	test.AssertEqual(t, second, 0)
	test.AssertEqualText(t, mainCode(t, bundle), after)
}
