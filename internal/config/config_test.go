package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danimoh/hoistdeps/internal/test"
)

func TestLoadMethodString(t *testing.T) {
	test.AssertEqual(t, LoadPreload.String(), "preload")
	test.AssertEqual(t, LoadPrefetch.String(), "prefetch")
	test.AssertEqual(t, LoadCustom.String(), "custom")
}

func TestNormalizeBaseURL(t *testing.T) {
	test.AssertEqual(t, NormalizeBaseURL(""), "")
	test.AssertEqual(t, NormalizeBaseURL("assets"), "assets")
	test.AssertEqual(t, NormalizeBaseURL("/assets/"), "assets")
	test.AssertEqual(t, NormalizeBaseURL("  /assets/js/  "), "assets/js")
	test.AssertEqual(t, NormalizeBaseURL("///"), "")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoistdeps.toml")
	contents := `
method = "prefetch"
base_url = "/static/"
cross_origin = true
native_import = true
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	file, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	test.AssertEqual(t, file.Method, "prefetch")
	test.AssertEqual(t, file.BaseURL, "/static/")
	test.AssertEqual(t, file.CrossOrigin, true)
	test.AssertEqual(t, file.NativeImport, true)
	test.AssertEqual(t, file.Custom, "")
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoistdeps.toml")
	if err := os.WriteFile(path, []byte(`method = [not toml`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
