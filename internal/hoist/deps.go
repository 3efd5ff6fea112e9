package hoist

import (
	"strconv"
	"strings"

	"github.com/danimoh/hoistdeps/internal/config"
	"github.com/danimoh/hoistdeps/internal/graph"
)

// depResolver maps a dynamic-load target to the final graph. Targets are
// written the way authors write them ("./b", "b", "b.js"); chunk names in
// the graph always carry an extension, so lookups normalize first.
type depResolver struct {
	bundle  *graph.Bundle
	options config.Options
}

func hasCodeExtension(name string) bool {
	return strings.HasSuffix(name, ".js") || strings.HasSuffix(name, ".mjs")
}

// Resolve returns the target's name in the final graph plus the quoted list
// of that chunk's static dependencies, in graph order, duplicates kept. A
// target that is missing from the graph, or has no static imports, yields an
// empty list: missing dependency data is not an error.
func (r depResolver) Resolve(target string) (chunkName string, deps []string) {
	name := strings.TrimPrefix(target, "./")

	// Extension-less references get the extension appended for the graph
	// lookup only. It is dropped again when the loading method uses native
	// module syntax, because native import() expects the reference the way
	// the author wrote it while a generic loader call expects file names.
	hadExtension := hasCodeExtension(name)
	if !hadExtension {
		name += ".js"
	}
	stripExtension := !hadExtension && r.options.NativeImport

	chunkName = name
	if stripExtension {
		chunkName = strings.TrimSuffix(chunkName, ".js")
	}

	chunk, ok := r.bundle.Chunk(name)
	if !ok {
		return chunkName, nil
	}

	for _, imp := range chunk.Imports {
		dep := imp
		if stripExtension {
			dep = strings.TrimSuffix(dep, ".js")
		}
		if r.options.BaseURL != "" {
			dep = r.options.BaseURL + "/" + dep
		}
		deps = append(deps, strconv.Quote(dep))
	}
	return chunkName, deps
}
