package graph

// The final module graph as the host bundler reports it after code
// generation. The transform treats it as read-only input with one exception:
// the finalize pass replaces each chunk's Code in place. Import lists keep
// the bundler's order, duplicates included; the rewritten dependency lists
// must match that order verbatim.

import (
	"encoding/json"
	"fmt"
	"sort"
)

type Chunk struct {
	FileName string
	Code     string

	// Static imports in graph order
	Imports []string

	// Targets of the dynamic imports this chunk contains
	DynamicImports []string

	IsEntry bool
}

// Bundle is an insertion-ordered set of chunks keyed by file name.
type Bundle struct {
	chunks map[string]*Chunk
	order  []string
}

func NewBundle() *Bundle {
	return &Bundle{chunks: make(map[string]*Chunk)}
}

func (b *Bundle) Add(chunk *Chunk) {
	if _, ok := b.chunks[chunk.FileName]; !ok {
		b.order = append(b.order, chunk.FileName)
	}
	b.chunks[chunk.FileName] = chunk
}

func (b *Bundle) Chunk(fileName string) (*Chunk, bool) {
	chunk, ok := b.chunks[fileName]
	return chunk, ok
}

// Chunks returns every chunk in insertion order.
func (b *Bundle) Chunks() []*Chunk {
	chunks := make([]*Chunk, 0, len(b.order))
	for _, fileName := range b.order {
		chunks = append(chunks, b.chunks[fileName])
	}
	return chunks
}

// The subset of a bundler metafile the finalize pass needs. The shape
// follows esbuild's metafile: one record per output with its import list,
// each import tagged with the kind of reference.
type metafile struct {
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileOutput struct {
	Imports    []metafileImport `json:"imports"`
	EntryPoint string           `json:"entryPoint"`
}

type metafileImport struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// FromMetafile builds the chunk graph from a metafile produced by the host
// bundler. Chunk code is not part of the metafile and is filled in by the
// caller before finalizing.
func FromMetafile(contents []byte) (*Bundle, error) {
	var meta metafile
	if err := json.Unmarshal(contents, &meta); err != nil {
		return nil, fmt.Errorf("invalid metafile: %w", err)
	}

	// Map iteration order is not stable; chunks are added in name order so
	// repeated runs build identical bundles
	fileNames := make([]string, 0, len(meta.Outputs))
	for fileName := range meta.Outputs {
		fileNames = append(fileNames, fileName)
	}
	sort.Strings(fileNames)

	bundle := NewBundle()
	for _, fileName := range fileNames {
		output := meta.Outputs[fileName]
		chunk := &Chunk{
			FileName: fileName,
			IsEntry:  output.EntryPoint != "",
		}
		for _, imp := range output.Imports {
			switch imp.Kind {
			case "dynamic-import":
				chunk.DynamicImports = append(chunk.DynamicImports, imp.Path)
			default:
				// "import-statement" and require-style kinds are all static
				chunk.Imports = append(chunk.Imports, imp.Path)
			}
		}
		bundle.Add(chunk)
	}
	return bundle, nil
}
