package test

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/danimoh/hoistdeps/internal/logger"
)

func AssertEqual(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		t.Fatalf("%v != %v", observed, expected)
	}
}

// AssertEqualText shows a unified diff on failure, which is much easier to
// read than two multi-line strings side by side.
func AssertEqualText(t *testing.T, observed string, expected string) {
	t.Helper()
	if observed != expected {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expected),
			B:        difflib.SplitLines(observed),
			FromFile: "expected",
			ToFile:   "observed",
			Context:  3,
		})
		t.Fatalf("text mismatch:\n%s", diff)
	}
}

func SourceForTest(contents string) logger.Source {
	return logger.Source{
		Index:      0,
		KeyPath:    logger.Path{Text: "<stdin>"},
		PrettyPath: "<stdin>",
		Contents:   contents,
	}
}
