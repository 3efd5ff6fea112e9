package logger

// Diagnostics are modeled after clang's error format: every message can carry
// the source line it refers to plus a caret marker. Messages are collected
// during a pass and drained once at the end, so a failed unit never interrupts
// the rest of the build.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
)

func (kind MsgKind) String() string {
	if kind == Warning {
		return "warning"
	}
	return "error"
}

type Msg struct {
	Kind     MsgKind
	Text     string
	Location *MsgLocation
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Loc struct {
	// 0-based byte offset from the start of the file
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

// This is used to represent both file system paths (Namespace == "file") and
// abstract module paths (Namespace != "file"). Abstract module paths represent
// "virtual modules" when used for an input file.
type Path struct {
	Text      string
	Namespace string
}

type Source struct {
	Index uint32

	// A unique key identifying this source. For virtual modules this is an
	// opaque id, not a file system path.
	KeyPath Path

	// The path shown in diagnostics. Always uses forward slashes.
	PrettyPath string

	Contents string
}

func (s *Source) TextForRange(r Range) string {
	return s.Contents[r.Loc.Start:r.End()]
}

type msgsArray []Msg

func (a msgsArray) Len() int          { return len(a) }
func (a msgsArray) Swap(i int, j int) { a[i], a[j] = a[j], a[i] }

func (a msgsArray) Less(i int, j int) bool {
	ai := a[i]
	aj := a[j]

	li := ai.Location
	lj := aj.Location
	if li == nil && lj != nil {
		return true
	}
	if li != nil && lj == nil {
		return false
	}

	if li != nil && lj != nil {
		if li.File != lj.File {
			return li.File < lj.File
		}
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		if li.Column != lj.Column {
			return li.Column < lj.Column
		}
	}

	if ai.Kind != aj.Kind {
		return ai.Kind < aj.Kind
	}
	return ai.Text < aj.Text
}

// NewDeferLog collects messages without printing them. This is the log used
// by the library API: the host build pipeline decides how to surface the
// messages drained by Done.
func NewDeferLog() Log {
	var mutex sync.Mutex
	var msgs msgsArray
	hasErrors := false

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type StderrOptions struct {
	IncludeSource bool
	Color         StderrColor
	LogLevel      LogLevel
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
}

func GetTerminalInfo(file *os.File) TerminalInfo {
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return TerminalInfo{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 0
	}
	return TerminalInfo{
		IsTTY:           true,
		UseColorEscapes: true,
		Width:           width,
	}
}

// NewStderrLog prints messages to stderr as they arrive in addition to
// collecting them.
func NewStderrLog(options StderrOptions) Log {
	var mutex sync.Mutex
	var msgs msgsArray
	terminalInfo := GetTerminalInfo(os.Stderr)
	hasErrors := false

	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = true
	}

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)

			switch msg.Kind {
			case Error:
				hasErrors = true
				if options.LogLevel <= LevelError {
					fmt.Fprint(os.Stderr, msg.String(options, terminalInfo))
				}
			case Warning:
				if options.LogLevel <= LevelWarning {
					fmt.Fprint(os.Stderr, msg.String(options, terminalInfo))
				}
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

var (
	boldText    = color.New(color.Bold)
	errorText   = color.New(color.Bold, color.FgRed)
	warningText = color.New(color.Bold, color.FgMagenta)
	markerText  = color.New(color.FgGreen)
)

func (msg Msg) String(options StderrOptions, terminalInfo TerminalInfo) string {
	kind := msg.Kind.String()
	kindText := errorText
	if msg.Kind == Warning {
		kindText = warningText
	}

	if msg.Location == nil {
		if terminalInfo.UseColorEscapes {
			return fmt.Sprintf("%s: %s\n", kindText.Sprint(kind), boldText.Sprint(msg.Text))
		}
		return fmt.Sprintf("%s: %s\n", kind, msg.Text)
	}

	loc := msg.Location
	if !options.IncludeSource {
		if terminalInfo.UseColorEscapes {
			return fmt.Sprintf("%s: %s: %s\n",
				boldText.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column),
				kindText.Sprint(kind), boldText.Sprint(msg.Text))
		}
		return fmt.Sprintf("%s:%d:%d: %s: %s\n", loc.File, loc.Line, loc.Column, kind, msg.Text)
	}

	lineText, indent, marker := detail(loc)
	if terminalInfo.UseColorEscapes {
		return fmt.Sprintf("%s: %s: %s\n%s\n%s%s\n",
			boldText.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column),
			kindText.Sprint(kind), boldText.Sprint(msg.Text),
			lineText, indent, markerText.Sprint(marker))
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s\n%s\n%s%s\n",
		loc.File, loc.Line, loc.Column, kind, msg.Text, lineText, indent, marker)
}

// detail renders the source line with a caret marker under the range. Only
// the first line of multi-line ranges is marked.
func detail(loc *MsgLocation) (lineText string, indent string, marker string) {
	lineText = loc.LineText
	if i := strings.IndexAny(lineText, "\r\n"); i >= 0 {
		lineText = lineText[:i]
	}

	column := loc.Column
	if column > len(lineText) {
		column = len(lineText)
	}
	length := loc.Length
	if length > len(lineText)-column {
		length = len(lineText) - column
	}

	indent = strings.Repeat(" ", column)
	marker = "^"
	if length > 1 {
		marker = strings.Repeat("~", length)
	}
	return
}

func computeLineAndColumn(contents string, offset int) (lineCount int, columnCount int, lineStart int, lineEnd int) {
	var prevCodePoint rune
	if offset > len(contents) {
		offset = len(contents)
	}

	// Scan up to the offset and count lines
	for i, codePoint := range contents[:offset] {
		switch codePoint {
		case '\n':
			lineStart = i + 1
			if prevCodePoint != '\r' {
				lineCount++
			}
		case '\r':
			lineStart = i + 1
			lineCount++
		case ' ', ' ':
			lineStart = i + 3 // These take three bytes to encode in UTF-8
			lineCount++
		}
		prevCodePoint = codePoint
	}

	// Scan to the end of the line (or end of file if this is the last line)
	lineEnd = len(contents)
loop:
	for i, codePoint := range contents[offset:] {
		switch codePoint {
		case '\r', '\n', ' ', ' ':
			lineEnd = offset + i
			break loop
		}
	}

	columnCount = offset - lineStart
	return
}

func locationOrNil(source *Source, r Range) *MsgLocation {
	if source == nil {
		return nil
	}

	lineCount, columnCount, lineStart, lineEnd := computeLineAndColumn(source.Contents, int(r.Loc.Start))
	return &MsgLocation{
		File:     source.PrettyPath,
		Line:     lineCount + 1, // 0-based to 1-based
		Column:   columnCount,
		Length:   int(r.Len),
		LineText: source.Contents[lineStart:lineEnd],
	}
}

func (log Log) AddError(source *Source, loc Loc, text string) {
	log.AddMsg(Msg{
		Kind:     Error,
		Text:     text,
		Location: locationOrNil(source, Range{Loc: loc}),
	})
}

func (log Log) AddWarning(source *Source, loc Loc, text string) {
	log.AddMsg(Msg{
		Kind:     Warning,
		Text:     text,
		Location: locationOrNil(source, Range{Loc: loc}),
	})
}

func (log Log) AddRangeError(source *Source, r Range, text string) {
	log.AddMsg(Msg{
		Kind:     Error,
		Text:     text,
		Location: locationOrNil(source, r),
	})
}

func (log Log) AddRangeWarning(source *Source, r Range, text string) {
	log.AddMsg(Msg{
		Kind:     Warning,
		Text:     text,
		Location: locationOrNil(source, r),
	})
}
