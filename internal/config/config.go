package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadMethod selects the resource hint issued for each hoisted dependency.
type LoadMethod uint8

const (
	// LoadPreload emits <link rel="preload"> hints: the dependency is fetched
	// at high priority because it is needed as soon as the base target runs.
	LoadPreload LoadMethod = iota

	// LoadPrefetch emits <link rel="prefetch"> hints and defers the base
	// load until the browser is idle.
	LoadPrefetch

	// LoadCustom delegates each hint to a caller-supplied JavaScript
	// function spliced into the loader template.
	LoadCustom
)

func (m LoadMethod) String() string {
	switch m {
	case LoadPreload:
		return "preload"
	case LoadPrefetch:
		return "prefetch"
	case LoadCustom:
		return "custom"
	}
	panic("Invalid load method")
}

// Options is the fully resolved option set. It is produced once by the api
// package before any build work and is read-only afterwards.
type Options struct {
	Method LoadMethod

	// JavaScript source of a function taking a dependency URL. Required when
	// Method is LoadCustom, ignored otherwise.
	CustomCode string

	// Annotate hint requests with crossorigin="anonymous"
	AnonymousCrossOrigin bool

	// Prefix prepended to every rewritten dependency URL. Already normalized:
	// no leading or trailing slash, empty means no rewrite.
	BaseURL string

	// The loader loads the base target with native "import()" syntax instead
	// of a generic loader call. The two conventions disagree on whether file
	// extensions are expected, so this also controls extension stripping when
	// dependency names are rewritten.
	NativeImport bool
}

// NormalizeBaseURL strips the separators callers tend to include. An empty
// result means dependency URLs are left alone.
func NormalizeBaseURL(baseURL string) string {
	return strings.Trim(strings.TrimSpace(baseURL), "/")
}

// File is the option surface of an "hoistdeps.toml" file. Field semantics
// match the api option of the same name; Method stays a string here so an
// unknown value can be reported by validation instead of a decode error.
type File struct {
	Method       string `toml:"method"`
	Custom       string `toml:"custom"`
	CrossOrigin  bool   `toml:"cross_origin"`
	BaseURL      string `toml:"base_url"`
	NativeImport bool   `toml:"native_import"`
}

func LoadFile(path string) (File, error) {
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return File{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return file, nil
}
