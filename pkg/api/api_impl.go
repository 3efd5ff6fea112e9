package api

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/danimoh/hoistdeps/internal/config"
	"github.com/danimoh/hoistdeps/internal/graph"
	"github.com/danimoh/hoistdeps/internal/hoist"
	"github.com/danimoh/hoistdeps/internal/logger"
	"github.com/danimoh/hoistdeps/internal/runtime"
)

type Plugin struct {
	options config.Options
	log     logger.Log
	trace   *zap.Logger

	// Units get increasing source indices for diagnostics
	nextSourceIndex uint32
}

// New validates the options and returns a configured plugin. An invalid
// configuration is the only hard failure in the whole system: it means no
// valid loading strategy was selected, so it surfaces here, before any build
// work, instead of as a per-unit diagnostic.
func New(options Options) (*Plugin, error) {
	resolved, err := validateOptions(options)
	if err != nil {
		return nil, err
	}

	trace := options.Trace
	if trace == nil {
		trace = zap.NewNop()
	}

	return &Plugin{
		options: resolved,
		log:     newLog(options),
		trace:   trace,
	}, nil
}

// newLog picks the diagnostic sink: silent plugins collect only, everything
// else also prints to stderr as messages arrive.
func newLog(options Options) logger.Log {
	if options.LogLevel == LogLevelSilent {
		return logger.NewDeferLog()
	}

	level := logger.LevelWarning
	if options.LogLevel == LogLevelError {
		level = logger.LevelError
	}
	color := logger.ColorIfTerminal
	switch options.Color {
	case ColorNever:
		color = logger.ColorNever
	case ColorAlways:
		color = logger.ColorAlways
	}
	return logger.NewStderrLog(logger.StderrOptions{
		IncludeSource: true,
		Color:         color,
		LogLevel:      level,
	})
}

func validateOptions(options Options) (config.Options, error) {
	resolved := config.Options{
		CustomCode:           options.CustomCode,
		AnonymousCrossOrigin: options.AnonymousCrossOrigin,
		BaseURL:              config.NormalizeBaseURL(options.BaseURL),
		NativeImport:         options.NativeImport,
	}

	switch options.Method {
	case MethodPreload:
		resolved.Method = config.LoadPreload
	case MethodPrefetch:
		resolved.Method = config.LoadPrefetch
	case MethodCustom:
		resolved.Method = config.LoadCustom
		if strings.TrimSpace(options.CustomCode) == "" {
			return config.Options{}, fmt.Errorf(
				"the \"custom\" method requires a preload function in the \"CustomCode\" option")
		}
	default:
		panic("Invalid method")
	}

	return resolved, nil
}

// MethodFromString maps the configuration-file spelling of a method to its
// option value.
func MethodFromString(method string) (Method, error) {
	switch method {
	case "", "preload":
		return MethodPreload, nil
	case "prefetch":
		return MethodPrefetch, nil
	case "custom":
		return MethodCustom, nil
	}
	return MethodPreload, fmt.Errorf("invalid method %q (valid: \"preload\", \"prefetch\", \"custom\")", method)
}

// ResolveID recognizes requests for the virtual loader unit. Every other id
// belongs to the host resolver.
func (p *Plugin) ResolveID(importee string) (string, bool) {
	if importee == runtime.VirtualID {
		return runtime.VirtualID, true
	}
	return "", false
}

// Load serves the loader runtime for the virtual id, instantiated once from
// the resolved options.
func (p *Plugin) Load(id string) (string, bool) {
	if id != runtime.VirtualID {
		return "", false
	}
	return runtime.Source(p.options), true
}

// Transform runs the per-unit rewrite pass. The second result is false when
// the unit is unchanged; a parse failure has then been recorded as a warning
// and the build goes on.
func (p *Plugin) Transform(id string, code string) (TransformResult, bool) {
	source := logger.Source{
		Index:      atomic.AddUint32(&p.nextSourceIndex, 1),
		KeyPath:    logger.Path{Text: id},
		PrettyPath: id,
		Contents:   code,
	}

	result, ok := hoist.RewriteUnit(p.log, source)
	if !ok {
		return TransformResult{}, false
	}

	p.trace.Debug("rewrote dynamic imports",
		zap.String("unit", id),
		zap.Int("sites", result.Sites))

	return TransformResult{
		Code:       result.Code,
		Sites:      result.Sites,
		Insertions: result.Insertions,
	}, true
}

// GenerateBundle runs the finalize pass over the complete chunk graph,
// rewriting chunk code in place. Call it exactly once, after the host has
// finished generating every chunk.
func (p *Plugin) GenerateBundle(bundle *graph.Bundle) {
	sites := hoist.FinalizeBundle(p.log, bundle, p.options)
	p.trace.Debug("finalized bundle",
		zap.Int("chunks", len(bundle.Chunks())),
		zap.Int("sites", sites))
}

// Messages returns the diagnostics collected so far, sorted by location.
func (p *Plugin) Messages() []Message {
	msgs := p.log.Done()
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		converted := Message{Text: msg.Text}
		if msg.Kind == logger.Warning {
			converted.Kind = WarningMsg
		}
		if msg.Location != nil {
			converted.File = msg.Location.File
			converted.Line = msg.Location.Line
			converted.Column = msg.Location.Column
		}
		out = append(out, converted)
	}
	return out
}
