package js_lexer

// The lexer converts a source file to a stream of tokens. It is called
// repeatedly by the parser instead of running to completion first, because
// some tokens are context-sensitive: a "}" may continue a template literal
// and a "/" may start a regular expression. The token vocabulary is small on
// purpose. The passes built on top only care about call structure and string
// literals, so all operators collapse into a single punctuation token.
//
// Lexing failures use panic/recover with the LexerPanic sentinel. A failure
// never aborts a build: the parser converts it into a per-unit diagnostic and
// leaves the unit untouched.

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danimoh/hoistdeps/internal/logger"
)

type T uint8

const (
	TEndOfFile T = iota

	// "#!/usr/bin/env node"
	THashbang

	// Literals
	TStringLiteral                 // Contents are in lexer.StringLiteral
	TNoSubstitutionTemplateLiteral // Contents are in lexer.StringLiteral
	TNumericLiteral
	TRegExpLiteral

	// Pseudo-literals
	TTemplateHead   // "`x${"
	TTemplateMiddle // "}x${"
	TTemplateTail   // "}x`"

	// Punctuation the parser tracks for nesting and call structure
	TOpenParen
	TCloseParen
	TOpenBrace
	TCloseBrace
	TOpenBracket
	TCloseBracket
	TComma
	TDot

	// Every other operator
	TPunctuation

	// Identifiers and keywords (only "import" is distinguished)
	TIdentifier
	TImport
)

// Keywords after which a "/" starts a regular expression instead of division
var regExpAfterKeyword = map[string]bool{
	"case":       true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"in":         true,
	"instanceof": true,
	"new":        true,
	"return":     true,
	"throw":      true,
	"typeof":     true,
	"void":       true,
	"yield":      true,
}

type LexerPanic struct{}

type Lexer struct {
	log           logger.Log
	source        logger.Source
	current       int
	start         int
	end           int
	codePoint     rune
	Token         T
	Identifier    string
	StringLiteral string
	prevToken     T
	prevKeyword   string
}

func NewLexer(log logger.Log, source logger.Source) Lexer {
	lexer := Lexer{
		log:       log,
		source:    source,
		prevToken: TEndOfFile,
	}
	lexer.step()
	lexer.Next()
	return lexer
}

func (lexer *Lexer) Loc() logger.Loc {
	return logger.Loc{Start: int32(lexer.start)}
}

func (lexer *Lexer) Range() logger.Range {
	return logger.Range{Loc: logger.Loc{Start: int32(lexer.start)}, Len: int32(lexer.end - lexer.start)}
}

func (lexer *Lexer) Raw() string {
	return lexer.source.Contents[lexer.start:lexer.end]
}

func (lexer *Lexer) SyntaxError() {
	loc := logger.Loc{Start: int32(lexer.end)}
	message := "Unexpected end of file"
	if lexer.end < len(lexer.source.Contents) {
		c, _ := utf8.DecodeRuneInString(lexer.source.Contents[lexer.end:])
		if c < 0x20 {
			message = fmt.Sprintf("Syntax error \"\\x%02X\"", c)
		} else if c >= 0x80 {
			message = fmt.Sprintf("Syntax error \"\\u{%x}\"", c)
		} else {
			message = fmt.Sprintf("Syntax error \"%c\"", c)
		}
	}
	lexer.addError(loc, message)
	panic(LexerPanic{})
}

func (lexer *Lexer) Expected(token T) {
	lexer.addRangeError(lexer.Range(), fmt.Sprintf("Expected %s but found %q", tokenToString[token], lexer.Raw()))
	panic(LexerPanic{})
}

var tokenToString = map[T]string{
	TEndOfFile:    "end of file",
	TCloseParen:   "\")\"",
	TCloseBrace:   "\"}\"",
	TCloseBracket: "\"]\"",
}

func (lexer *Lexer) step() {
	codePoint, width := utf8.DecodeRuneInString(lexer.source.Contents[lexer.current:])

	// Use -1 to indicate the end of the file
	if width == 0 {
		codePoint = -1
	}

	lexer.codePoint = codePoint
	lexer.end = lexer.current
	lexer.current += width
}

func (lexer *Lexer) addError(loc logger.Loc, text string) {
	// Parse failures are a recoverable per-unit condition, not a build error
	lexer.log.AddWarning(&lexer.source, loc, text)
}

func (lexer *Lexer) addRangeError(r logger.Range, text string) {
	lexer.log.AddRangeWarning(&lexer.source, r, text)
}

// Next scans the next token. The previous token is remembered so a "/" can be
// classified as division or the start of a regular expression.
func (lexer *Lexer) Next() {
	if lexer.Token == TIdentifier {
		lexer.prevKeyword = ""
		if regExpAfterKeyword[lexer.Identifier] {
			lexer.prevKeyword = lexer.Identifier
		}
	} else {
		lexer.prevKeyword = ""
	}
	lexer.prevToken = lexer.Token
	lexer.next()
}

func (lexer *Lexer) next() {
	for {
		lexer.start = lexer.end

		switch lexer.codePoint {
		case -1:
			lexer.Token = TEndOfFile
			return

		case '\r', '\n', '\u2028', '\u2029', '\t', ' ', '\v', '\f', '\u00A0', '\uFEFF':
			lexer.step()
			continue

		case '#':
			if lexer.start == 0 && strings.HasPrefix(lexer.source.Contents, "#!") {
				// "#!/usr/bin/env node"
				for lexer.codePoint != '\r' && lexer.codePoint != '\n' && lexer.codePoint != -1 {
					lexer.step()
				}
				lexer.Token = THashbang
				return
			}
			// Private names only appear where an operator would
			lexer.step()
			lexer.Token = TPunctuation
			return

		case '(':
			lexer.step()
			lexer.Token = TOpenParen
			return

		case ')':
			lexer.step()
			lexer.Token = TCloseParen
			return

		case '{':
			lexer.step()
			lexer.Token = TOpenBrace
			return

		case '}':
			lexer.step()
			lexer.Token = TCloseBrace
			return

		case '[':
			lexer.step()
			lexer.Token = TOpenBracket
			return

		case ']':
			lexer.step()
			lexer.Token = TCloseBracket
			return

		case ',':
			lexer.step()
			lexer.Token = TComma
			return

		case '.':
			lexer.step()
			if lexer.codePoint >= '0' && lexer.codePoint <= '9' {
				lexer.scanNumber()
				return
			}
			lexer.Token = TDot
			return

		case '/':
			lexer.step()
			switch lexer.codePoint {
			case '/':
				// "// line comment"
				for lexer.codePoint != '\r' && lexer.codePoint != '\n' &&
					lexer.codePoint != '\u2028' && lexer.codePoint != '\u2029' && lexer.codePoint != -1 {
					lexer.step()
				}
				continue

			case '*':
				// "/* block comment */"
				lexer.step()
				for {
					if lexer.codePoint == -1 {
						lexer.addRangeError(lexer.Range(), "Expected \"*/\" to terminate multi-line comment")
						panic(LexerPanic{})
					}
					if lexer.codePoint == '*' {
						lexer.step()
						if lexer.codePoint == '/' {
							lexer.step()
							break
						}
						continue
					}
					lexer.step()
				}
				continue
			}

			if lexer.isRegExpAllowed() {
				lexer.scanRegExp()
				lexer.Token = TRegExpLiteral
				return
			}
			if lexer.codePoint == '=' {
				lexer.step()
			}
			lexer.Token = TPunctuation
			return

		case '\'', '"':
			lexer.scanString(lexer.codePoint)
			lexer.Token = TStringLiteral
			return

		case '`':
			lexer.step()
			lexer.Token = lexer.scanTemplateBody(TNoSubstitutionTemplateLiteral, TTemplateHead)
			return

		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			lexer.scanNumber()
			return

		default:
			if isIdentifierStart(lexer.codePoint) {
				lexer.step()
				for isIdentifierContinue(lexer.codePoint) {
					lexer.step()
				}
				lexer.Identifier = lexer.Raw()
				if lexer.Identifier == "import" {
					lexer.Token = TImport
				} else {
					lexer.Token = TIdentifier
				}
				return
			}

			// Operators all collapse into one token. Multi-character operators
			// are scanned one character at a time, which is fine because the
			// parser never needs to tell them apart.
			lexer.step()
			lexer.Token = TPunctuation
			return
		}
	}
}

// A "/" after a value is division; anywhere else it starts a regular
// expression. Close braces and postfix operators are rare enough in generated
// code that the value positions below are sufficient.
func (lexer *Lexer) isRegExpAllowed() bool {
	switch lexer.prevToken {
	case TIdentifier:
		return lexer.prevKeyword != ""
	case TNumericLiteral, TStringLiteral, TNoSubstitutionTemplateLiteral, TTemplateTail,
		TRegExpLiteral, TCloseParen, TCloseBracket:
		return false
	}
	return true
}

func (lexer *Lexer) scanString(quote rune) {
	lexer.step()
	builder := strings.Builder{}

	for {
		switch lexer.codePoint {
		case quote:
			lexer.step()
			lexer.StringLiteral = builder.String()
			return

		case '\\':
			lexer.step()
			lexer.scanEscape(&builder)

		case '\r', '\n', -1:
			lexer.addRangeError(lexer.Range(), "Unterminated string literal")
			panic(LexerPanic{})

		default:
			builder.WriteRune(lexer.codePoint)
			lexer.step()
		}
	}
}

// scanEscape decodes the escape sequence after a backslash. Unknown escapes
// decode to the escaped character itself, which matches how JavaScript
// treats them.
func (lexer *Lexer) scanEscape(builder *strings.Builder) {
	switch lexer.codePoint {
	case -1:
		lexer.SyntaxError()

	case '\r', '\n', '\u2028', '\u2029':
		// Line continuation contributes nothing
		if lexer.codePoint == '\r' {
			lexer.step()
			if lexer.codePoint == '\n' {
				lexer.step()
			}
			return
		}
		lexer.step()

	case 'n':
		builder.WriteByte('\n')
		lexer.step()
	case 't':
		builder.WriteByte('\t')
		lexer.step()
	case 'r':
		builder.WriteByte('\r')
		lexer.step()
	case 'b':
		builder.WriteByte('\b')
		lexer.step()
	case 'f':
		builder.WriteByte('\f')
		lexer.step()
	case 'v':
		builder.WriteByte('\v')
		lexer.step()
	case '0':
		builder.WriteByte(0)
		lexer.step()

	case 'x':
		lexer.step()
		value := rune(0)
		for i := 0; i < 2; i++ {
			value = value*16 + lexer.hexDigit()
			lexer.step()
		}
		builder.WriteRune(value)

	case 'u':
		lexer.step()
		value := rune(0)
		if lexer.codePoint == '{' {
			lexer.step()
			for lexer.codePoint != '}' {
				value = value*16 + lexer.hexDigit()
				lexer.step()
			}
			lexer.step()
		} else {
			for i := 0; i < 4; i++ {
				value = value*16 + lexer.hexDigit()
				lexer.step()
			}
		}
		builder.WriteRune(value)

	default:
		builder.WriteRune(lexer.codePoint)
		lexer.step()
	}
}

func (lexer *Lexer) hexDigit() rune {
	c := lexer.codePoint
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	lexer.SyntaxError()
	return 0
}

// scanTemplateBody scans template contents starting just past a "`" or a "}"
// that resumed a template. It stops at the closing backtick or at "${".
func (lexer *Lexer) scanTemplateBody(endToken T, headToken T) T {
	builder := strings.Builder{}

	for {
		switch lexer.codePoint {
		case '`':
			lexer.step()
			lexer.StringLiteral = builder.String()
			return endToken

		case '$':
			lexer.step()
			if lexer.codePoint == '{' {
				lexer.step()
				lexer.StringLiteral = builder.String()
				return headToken
			}
			builder.WriteByte('$')

		case '\\':
			lexer.step()
			lexer.scanEscape(&builder)

		case -1:
			lexer.addRangeError(lexer.Range(), "Unterminated template literal")
			panic(LexerPanic{})

		default:
			builder.WriteRune(lexer.codePoint)
			lexer.step()
		}
	}
}

// RescanCloseBraceAsTemplateToken is called by the parser when a "}" closes a
// template substitution. The token becomes TTemplateMiddle or TTemplateTail.
func (lexer *Lexer) RescanCloseBraceAsTemplateToken() {
	if lexer.Token != TCloseBrace {
		panic("Internal error: not a close brace")
	}
	lexer.Token = lexer.scanTemplateBody(TTemplateTail, TTemplateMiddle)
}

func (lexer *Lexer) scanRegExp() {
	inClass := false
	for {
		switch lexer.codePoint {
		case '\r', '\n', '\u2028', '\u2029', -1:
			lexer.addRangeError(lexer.Range(), "Unterminated regular expression")
			panic(LexerPanic{})

		case '\\':
			lexer.step()
			lexer.step()

		case '[':
			inClass = true
			lexer.step()

		case ']':
			inClass = false
			lexer.step()

		case '/':
			lexer.step()
			if !inClass {
				// Flags
				for isIdentifierContinue(lexer.codePoint) {
					lexer.step()
				}
				return
			}

		default:
			lexer.step()
		}
	}
}

func (lexer *Lexer) scanNumber() {
	// The exact value is irrelevant; only the token extent matters. Digits,
	// hex/octal/binary prefixes, bigint suffixes, separators, and exponents
	// are all covered by the loop below.
	last := lexer.codePoint
	lexer.step()
	for {
		c := lexer.codePoint
		isExponentSign := (c == '+' || c == '-') && (last == 'e' || last == 'E')
		if !isIdentifierContinue(c) && c != '.' && !isExponentSign {
			break
		}
		last = c
		lexer.step()
	}
	lexer.Token = TNumericLiteral
}

func isIdentifierStart(codePoint rune) bool {
	switch codePoint {
	case '_', '$',
		'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
		'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
		'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z':
		return true
	}
	if codePoint < 0x80 {
		return false
	}
	return unicode.IsLetter(codePoint)
}

func isIdentifierContinue(codePoint rune) bool {
	switch codePoint {
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	case '\u200C', '\u200D':
		// Zero-width non-joiner and joiner
		return true
	}
	return isIdentifierStart(codePoint) || (codePoint >= 0x80 && unicode.IsDigit(codePoint))
}
