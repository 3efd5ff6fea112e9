package runtime

// The loader runtime is a virtual module injected into the bundle. It is a
// fixed template: the transform passes only rely on its exported call
// signature "__loadDeps(target, ...deps)" and on VirtualID resolving to it.
// Everything else in here is runtime strategy, not transform logic.

import (
	"strings"

	"github.com/danimoh/hoistdeps/internal/config"
)

// VirtualID is the reserved module id the loader import resolves to. It is
// never present in any source set and is served exactly once per build.
const VirtualID = "preloaddeps:index"

const code = `
// A process-wide set of dependency URLs that were already hinted. Entries
// are never evicted: the set lives as long as the page does, so repeated
// dynamic loads with overlapping dependency sets issue each hint once.
const seen = new Set();

// Lazily picks the supported rel type once. Browsers without support for the
// configured resource hint fall back to a plain fetch.
let relType;

function hintDep(dep) {
	if (relType === undefined) {
		const probe = document.createElement('link');
		relType = probe.relList && probe.relList.supports && probe.relList.supports('@METHOD@')
			? '@METHOD@'
			: 'fetch';
	}
	if (relType === 'fetch') {
		fetch(dep, { credentials: 'same-origin' });
		return;
	}
	const link = document.createElement('link');
	link.rel = relType;
	link.as = 'script';
@CROSSORIGIN@	link.href = dep;
	document.head.appendChild(link);
}

export function __loadDeps(target, ...deps) {
	if (typeof document !== 'undefined' && document.head != null) {
		for (const dep of deps) {
			if (seen.has(dep)) continue;
			seen.add(dep);
			@HINT@(dep);
		}
	}
	return @LOAD@;
}
`

const customHint = `
// Caller-supplied hint function
const customHintDep = @CUSTOM@;
`

const nativeLoad = `import(target)`
const genericLoad = `System.import(target)`

// Prefetched dependencies are low priority, so the base load is pushed past
// the next idle period instead of competing with them.
const idleLoad = `new Promise((resolve, reject) => {
		const idle = typeof requestIdleCallback === 'function' ? requestIdleCallback : (cb) => setTimeout(cb, 1);
		idle(() => { @LOAD@.then(resolve, reject); });
	})`

// Source instantiates the loader template for the resolved option set. The
// template is pure string substitution evaluated once per build; there is no
// runtime dispatch on options.
func Source(options config.Options) string {
	text := code
	hint := "hintDep"

	if options.Method == config.LoadCustom {
		text = customHint + text
		text = strings.ReplaceAll(text, "@CUSTOM@", options.CustomCode)
		hint = "customHintDep"
	}

	load := genericLoad
	if options.NativeImport {
		load = nativeLoad
	}
	if options.Method == config.LoadPrefetch {
		load = strings.ReplaceAll(idleLoad, "@LOAD@", load)
	}

	crossOrigin := ""
	if options.AnonymousCrossOrigin {
		crossOrigin = "\tlink.crossOrigin = 'anonymous';\n"
	}

	text = strings.ReplaceAll(text, "@METHOD@", options.Method.String())
	text = strings.ReplaceAll(text, "@HINT@", hint)
	text = strings.ReplaceAll(text, "@LOAD@", load)
	text = strings.ReplaceAll(text, "@CROSSORIGIN@", crossOrigin)
	return text
}
