package api

// This API is designed to be plugged into a host build pipeline that exposes
// the usual plugin hooks: module resolution, module loading, a per-unit
// transform, and a whole-bundle pass after code generation. The hook methods
// here map onto those one-to-one:
//
//	plugin, err := api.New(api.Options{Method: api.MethodPreload})
//	...
//	if id, ok := plugin.ResolveID(importee); ok { ... }
//	if code, ok := plugin.Load(id); ok { ... }
//	if result, ok := plugin.Transform(id, code); ok { ... }
//	plugin.GenerateBundle(bundle) // once, after all chunks are generated
//
// Option validation happens once in New, before any build work. Everything
// after that is best-effort: a unit that cannot be processed is reported as
// a warning and passed through untouched.

import (
	"go.uber.org/zap"

	"github.com/danimoh/hoistdeps/internal/graph"
	"github.com/danimoh/hoistdeps/internal/hoist"
)

type Method uint8

const (
	// MethodPreload fetches dependencies at high priority via
	// <link rel="preload">. This is the default.
	MethodPreload Method = iota

	// MethodPrefetch fetches dependencies at idle priority via
	// <link rel="prefetch"> and defers the base load to an idle callback.
	MethodPrefetch

	// MethodCustom delegates each resource hint to the JavaScript function
	// supplied in CustomCode.
	MethodCustom
)

// LogLevel controls which diagnostics are printed to stderr as they arrive.
// The default is silent: messages are only collected, and the host decides
// how to surface what Messages returns.
type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelWarning
	LogLevelError
)

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type Options struct {
	Method Method

	// JavaScript source of a function taking one dependency URL, for
	// example "(dep) => fetch(dep)". Required with MethodCustom.
	CustomCode string

	// Issue resource hints with crossorigin="anonymous"
	AnonymousCrossOrigin bool

	// Optional prefix for rewritten dependency URLs. Leading and trailing
	// slashes are ignored.
	BaseURL string

	// The loader loads the base target with native import() syntax instead
	// of a generic loader call
	NativeImport bool

	// Print diagnostics at or above this level to stderr as they arrive, in
	// addition to collecting them for Messages
	LogLevel LogLevel

	// Color behavior for stderr diagnostics
	Color StderrColor

	// Optional trace logger for per-unit and per-chunk debug output. Traces
	// are separate from diagnostics; leave nil to disable.
	Trace *zap.Logger
}

// TransformResult is the outcome of the per-unit rewrite pass.
type TransformResult struct {
	// The rewritten unit
	Code string

	// How many dynamic imports were wrapped
	Sites int

	// Every inserted piece of text, by offset in the original unit. The
	// original characters never move, so this is enough to adjust source
	// maps downstream.
	Insertions []hoist.Insertion
}

// Bundle re-exports the chunk graph types so callers don't import internal
// packages.
type Bundle = graph.Bundle

type Chunk = graph.Chunk

func NewBundle() *Bundle {
	return graph.NewBundle()
}

// BundleFromMetafile builds the chunk graph from the host bundler's JSON
// metafile. Chunk code is filled in separately by the caller.
func BundleFromMetafile(contents []byte) (*Bundle, error) {
	return graph.FromMetafile(contents)
}

type MsgKind uint8

const (
	ErrorMsg MsgKind = iota
	WarningMsg
)

// Message is one diagnostic, attributable to a unit or chunk id.
type Message struct {
	Kind   MsgKind
	Text   string
	File   string
	Line   int // 1-based, 0 when there is no location
	Column int // 0-based, in bytes
}
