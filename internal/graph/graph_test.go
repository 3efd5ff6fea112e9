package graph

import (
	"strings"
	"testing"

	"github.com/danimoh/hoistdeps/internal/test"
)

func TestBundleInsertionOrder(t *testing.T) {
	bundle := NewBundle()
	bundle.Add(&Chunk{FileName: "z.js"})
	bundle.Add(&Chunk{FileName: "a.js"})
	bundle.Add(&Chunk{FileName: "m.js"})

	names := []string{}
	for _, chunk := range bundle.Chunks() {
		names = append(names, chunk.FileName)
	}
	test.AssertEqual(t, strings.Join(names, ","), "z.js,a.js,m.js")
}

func TestBundleAddReplaces(t *testing.T) {
	bundle := NewBundle()
	bundle.Add(&Chunk{FileName: "a.js", Code: "old"})
	bundle.Add(&Chunk{FileName: "a.js", Code: "new"})

	test.AssertEqual(t, len(bundle.Chunks()), 1)
	chunk, ok := bundle.Chunk("a.js")
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, chunk.Code, "new")
}

func TestBundleMissingChunk(t *testing.T) {
	_, ok := NewBundle().Chunk("nope.js")
	test.AssertEqual(t, ok, false)
}

func TestFromMetafile(t *testing.T) {
	contents := `{
		"outputs": {
			"out/main.js": {
				"entryPoint": "src/main.js",
				"imports": [
					{"path": "out/shared.js", "kind": "import-statement"},
					{"path": "out/b.js", "kind": "dynamic-import"}
				]
			},
			"out/b.js": {
				"imports": [
					{"path": "out/c.js", "kind": "import-statement"},
					{"path": "out/d.js", "kind": "require-call"}
				]
			},
			"out/shared.js": {"imports": []}
		}
	}`

	bundle, err := FromMetafile([]byte(contents))
	if err != nil {
		t.Fatal(err)
	}
	test.AssertEqual(t, len(bundle.Chunks()), 3)

	main, ok := bundle.Chunk("out/main.js")
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, main.IsEntry, true)
	test.AssertEqual(t, strings.Join(main.Imports, ","), "out/shared.js")
	test.AssertEqual(t, strings.Join(main.DynamicImports, ","), "out/b.js")

	b, _ := bundle.Chunk("out/b.js")
	test.AssertEqual(t, b.IsEntry, false)

	// Require-style references count as static
	test.AssertEqual(t, strings.Join(b.Imports, ","), "out/c.js,out/d.js")
}

func TestFromMetafileDeterministicOrder(t *testing.T) {
	contents := `{"outputs": {"b.js": {}, "a.js": {}, "c.js": {}}}`
	bundle, err := FromMetafile([]byte(contents))
	if err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, chunk := range bundle.Chunks() {
		names = append(names, chunk.FileName)
	}
	test.AssertEqual(t, strings.Join(names, ","), "a.js,b.js,c.js")
}

func TestFromMetafileInvalid(t *testing.T) {
	if _, err := FromMetafile([]byte(`{"outputs": [`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
