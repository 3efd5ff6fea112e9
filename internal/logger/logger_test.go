package logger

import (
	"testing"
)

func sourceForTest(contents string) Source {
	return Source{
		KeyPath:    Path{Text: "<stdin>"},
		PrettyPath: "<stdin>",
		Contents:   contents,
	}
}

func TestDeferLogCollects(t *testing.T) {
	log := NewDeferLog()
	source := sourceForTest("let x = 1;\nlet y = 2;\n")

	log.AddWarning(&source, Loc{Start: 15}, "second")
	log.AddError(&source, Loc{Start: 4}, "first")

	if !log.HasErrors() {
		t.Fatal("expected HasErrors after AddError")
	}

	msgs := log.Done()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	// Sorted by location, not by arrival
	if msgs[0].Text != "first" || msgs[1].Text != "second" {
		t.Fatalf("wrong order: %q then %q", msgs[0].Text, msgs[1].Text)
	}
	if msgs[0].Kind != Error || msgs[1].Kind != Warning {
		t.Fatal("wrong kinds")
	}
}

func TestDeferLogWarningsAreNotErrors(t *testing.T) {
	log := NewDeferLog()
	source := sourceForTest("let x;")
	log.AddWarning(&source, Loc{}, "just a warning")
	if log.HasErrors() {
		t.Fatal("warnings must not set HasErrors")
	}
}

func TestLineAndColumn(t *testing.T) {
	source := sourceForTest("let x = 1;\nlet yy = 2;\r\nlet z;")

	check := func(start int32, line int, column int) {
		t.Helper()
		log := NewDeferLog()
		log.AddWarning(&source, Loc{Start: start}, "w")
		loc := log.Done()[0].Location
		if loc.Line != line || loc.Column != column {
			t.Fatalf("offset %d: got %d:%d, want %d:%d", start, loc.Line, loc.Column, line, column)
		}
	}

	check(0, 1, 0)   // first byte
	check(4, 1, 4)   // "x" on line 1
	check(15, 2, 4)  // "yy" on line 2
	check(28, 3, 4)  // "z" after the \r\n, which counts as one break
}

func TestLineTextAndLength(t *testing.T) {
	source := sourceForTest("let x = 1;\nimport(\"./a\");\n")
	r := Range{Loc: Loc{Start: 11}, Len: 6}

	log := NewDeferLog()
	log.AddRangeWarning(&source, r, "w")
	loc := log.Done()[0].Location
	if loc.LineText != `import("./a");` {
		t.Fatalf("wrong line text: %q", loc.LineText)
	}
	if loc.Length != 6 {
		t.Fatalf("wrong length: %d", loc.Length)
	}
}

func TestMsgStringWithoutLocation(t *testing.T) {
	msg := Msg{Kind: Error, Text: "something went wrong"}
	got := msg.String(StderrOptions{}, TerminalInfo{})
	if got != "error: something went wrong\n" {
		t.Fatalf("got %q", got)
	}
}

func TestMsgStringWithLocation(t *testing.T) {
	msg := Msg{
		Kind: Warning,
		Text: "unexpected token",
		Location: &MsgLocation{
			File:     "main.js",
			Line:     3,
			Column:   8,
			Length:   2,
			LineText: "let a = !!;",
		},
	}

	got := msg.String(StderrOptions{}, TerminalInfo{})
	if got != "main.js:3:8: warning: unexpected token\n" {
		t.Fatalf("got %q", got)
	}

	got = msg.String(StderrOptions{IncludeSource: true}, TerminalInfo{})
	want := "main.js:3:8: warning: unexpected token\nlet a = !!;\n        ~~\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMsgStringCaretForSingleByte(t *testing.T) {
	msg := Msg{
		Kind: Error,
		Text: "bad",
		Location: &MsgLocation{
			File:     "a.js",
			Line:     1,
			Column:   2,
			Length:   1,
			LineText: "1 + ;",
		},
	}
	got := msg.String(StderrOptions{IncludeSource: true}, TerminalInfo{})
	want := "a.js:1:2: error: bad\n1 + ;\n  ^\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTextForRange(t *testing.T) {
	source := sourceForTest(`import("./a.js")`)
	r := Range{Loc: Loc{Start: 7}, Len: 8}
	if got := source.TextForRange(r); got != `"./a.js"` {
		t.Fatalf("got %q", got)
	}
}
