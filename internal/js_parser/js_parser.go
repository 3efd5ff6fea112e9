package js_parser

// This is a structural parser, not a grammar-complete one. It recovers the
// shape that matters for correlating dynamic-import call sites across code
// generation: bracket nesting, call expressions with split argument lists,
// dynamic "import(...)" expressions, and string literals with their decoded
// values and byte ranges. It accepts any output format a bundler can emit
// (modules, IIFE wrappers, CommonJS, SystemJS registrations) because it
// never needs to understand statements, only nesting.

import (
	"github.com/danimoh/hoistdeps/internal/js_ast"
	"github.com/danimoh/hoistdeps/internal/js_lexer"
	"github.com/danimoh/hoistdeps/internal/logger"
)

// Parse builds the structural tree for a unit. A lexer failure or unbalanced
// nesting is reported as a warning on the unit and ok is false; the caller
// is expected to leave the unit untouched.
func Parse(log logger.Log, source logger.Source) (result js_ast.AST, ok bool) {
	ok = true
	defer func() {
		r := recover()
		if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
			ok = false
		} else if r != nil {
			panic(r)
		}
	}()

	p := &parser{
		log:    log,
		source: source,
		lexer:  js_lexer.NewLexer(log, source),
	}
	groups := p.parseUntil(js_lexer.TEndOfFile, false)
	result.Exprs = groups[0].exprs
	return
}

type parser struct {
	log    logger.Log
	source logger.Source
	lexer  js_lexer.Lexer
}

// group is one comma-separated slot of an argument list, or the whole level
// when commas are not being split. The range covers every consumed token,
// including ones that produced no node.
type group struct {
	exprs []js_ast.Expr
	start int32
	end   int32
	seen  bool
}

// parseUntil consumes tokens up to but not including the closing token,
// recursing on nested brackets. The caller consumes the closer: a "}" that
// ends a template substitution has to be rescanned as a template token
// rather than skipped. With split set, top-level commas separate groups the
// way call arguments do.
func (p *parser) parseUntil(end js_lexer.T, split bool) (groups []group) {
	current := group{}

	// Whether an immediately following "(" makes the last node a callee
	callable := false

	// Whether the previous token was ".". The lexer always reports the
	// "import" keyword as TImport, but after a dot it is a plain member name:
	// "System.import(...)" is an ordinary method call, not a dynamic import.
	afterDot := false

	push := func(expr js_ast.Expr, isCallable bool) {
		current.exprs = append(current.exprs, expr)
		callable = isCallable
	}
	note := func(r logger.Range) {
		if !current.seen {
			current.start = r.Loc.Start
			current.seen = true
		}
		current.end = r.End()
	}

	for {
		token := p.lexer.Token
		r := p.lexer.Range()
		wasDot := afterDot
		afterDot = false

		if token == end {
			groups = append(groups, current)
			return
		}

		switch token {
		case js_lexer.TEndOfFile, js_lexer.TCloseParen, js_lexer.TCloseBrace, js_lexer.TCloseBracket:
			// A mismatched closer means the unit is not well formed
			p.lexer.Expected(end)

		case js_lexer.TComma:
			// A splitting comma belongs to neither argument group
			if !split {
				note(r)
			}
			p.lexer.Next()
			if split {
				groups = append(groups, current)
				current = group{}
			}
			callable = false

		case js_lexer.TStringLiteral, js_lexer.TNoSubstitutionTemplateLiteral:
			note(r)
			push(js_ast.Expr{Range: r, Data: &js_ast.EString{Value: p.lexer.StringLiteral}}, false)
			p.lexer.Next()

		case js_lexer.TTemplateHead:
			expr := p.parseTemplate(r)
			note(expr.Range)
			push(expr, false)

		case js_lexer.TIdentifier:
			note(r)
			push(js_ast.Expr{Range: r, Data: &js_ast.EIdentifier{Name: p.lexer.Identifier}}, true)
			p.lexer.Next()

		case js_lexer.TDot:
			note(r)
			p.lexer.Next()
			afterDot = true
			callable = false

		case js_lexer.TImport:
			if wasDot {
				note(r)
				push(js_ast.Expr{Range: r, Data: &js_ast.EIdentifier{Name: "import"}}, true)
				p.lexer.Next()
				break
			}
			p.lexer.Next()
			if p.lexer.Token == js_lexer.TOpenParen {
				p.lexer.Next()
				args, argsEnd := p.parseArgs()
				full := logger.Range{Loc: r.Loc, Len: argsEnd - r.Loc.Start}
				note(full)
				push(js_ast.Expr{Range: full, Data: &js_ast.EImportCall{Args: args}}, true)
			} else {
				// A static import statement or "import.meta"; neither needs a
				// node, the tokens that follow are scanned normally
				note(r)
				callable = false
			}

		case js_lexer.TOpenParen:
			p.lexer.Next()
			if callable && len(current.exprs) > 0 {
				target := current.exprs[len(current.exprs)-1]
				current.exprs = current.exprs[:len(current.exprs)-1]
				args, argsEnd := p.parseArgs()
				full := logger.Range{Loc: target.Range.Loc, Len: argsEnd - target.Range.Loc.Start}
				note(full)
				push(js_ast.Expr{Range: full, Data: &js_ast.ECall{Target: target, Args: args}}, true)
			} else {
				children, closeEnd := p.parseGroup(js_lexer.TCloseParen)
				full := logger.Range{Loc: r.Loc, Len: closeEnd - r.Loc.Start}
				note(full)
				push(js_ast.Expr{Range: full, Data: &js_ast.EGroup{Children: children}}, true)
			}

		case js_lexer.TOpenBracket:
			p.lexer.Next()
			children, closeEnd := p.parseGroup(js_lexer.TCloseBracket)
			full := logger.Range{Loc: r.Loc, Len: closeEnd - r.Loc.Start}
			note(full)
			push(js_ast.Expr{Range: full, Data: &js_ast.EGroup{Children: children}}, true)

		case js_lexer.TOpenBrace:
			p.lexer.Next()
			children, closeEnd := p.parseGroup(js_lexer.TCloseBrace)
			full := logger.Range{Loc: r.Loc, Len: closeEnd - r.Loc.Start}
			note(full)
			push(js_ast.Expr{Range: full, Data: &js_ast.EGroup{Children: children}}, false)

		default:
			// Numbers, regular expressions, operators, hashbangs: consumed
			// for their extent only
			note(r)
			p.lexer.Next()
			callable = false
		}
	}
}

// parseGroup parses a bracketed level and consumes the closing token.
func (p *parser) parseGroup(end js_lexer.T) (children []js_ast.Expr, closeEnd int32) {
	groups := p.parseUntil(end, false)
	closeEnd = p.lexer.Range().End()
	p.lexer.Next()
	return groups[0].exprs, closeEnd
}

// parseArgs is called just past the "(" of a call and consumes through the
// matching ")". Each comma-separated argument becomes exactly one node; a
// multi-token argument is folded into a group spanning all of its tokens.
func (p *parser) parseArgs() (args []js_ast.Expr, closeEnd int32) {
	groups := p.parseUntil(js_lexer.TCloseParen, true)
	closeEnd = p.lexer.Range().End()
	p.lexer.Next()

	for _, g := range groups {
		if !g.seen {
			continue
		}
		if len(g.exprs) == 1 {
			args = append(args, g.exprs[0])
			continue
		}
		args = append(args, js_ast.Expr{
			Range: logger.Range{Loc: logger.Loc{Start: g.start}, Len: g.end - g.start},
			Data:  &js_ast.EGroup{Children: g.exprs},
		})
	}
	return
}

// parseTemplate is called on a template head token and consumes the
// substitutions through the closing backtick. The substitutions become the
// children of one group node spanning the whole literal.
func (p *parser) parseTemplate(head logger.Range) js_ast.Expr {
	var children []js_ast.Expr

	for {
		p.lexer.Next()
		groups := p.parseUntil(js_lexer.TCloseBrace, false)
		children = append(children, groups[0].exprs...)

		// The "}" that ended the substitution resumes the template
		p.lexer.RescanCloseBraceAsTemplateToken()
		if p.lexer.Token == js_lexer.TTemplateTail {
			tailEnd := p.lexer.Range().End()
			p.lexer.Next()
			return js_ast.Expr{
				Range: logger.Range{Loc: head.Loc, Len: tailEnd - head.Loc.Start},
				Data:  &js_ast.EGroup{Children: children},
			}
		}
	}
}
