// Package parser turns a token stream from internal/lexer into the
// executable node tree of internal/ast (§4.2): there is no separate
// AST/IR pass, so ParseProgram's output is already the tree the
// evaluator walks.
package parser

import (
	"strconv"
	"strings"

	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/lexer"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// Parser is a single-pass recursive-descent / precedence-climbing parser
// over one Source's token stream. It keeps going after a syntax error
// (recovering at the next statement boundary) so one pass reports as
// many problems as it can, matching the lexer's own DiagnosticList
// behaviour (§4.5).
type Parser struct {
	lex  *lexer.Lexer
	diag errors.DiagnosticList
	cur  lexer.Token
}

// New builds a Parser over src, running the lexer inline as tokens are
// consumed (no separate tokenize-then-parse pass).
func New(src *source.Source) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.cur = p.lex.Next()
	return p
}

// Errors returns every lexical and syntax diagnostic accumulated during
// the parse.
func (p *Parser) Errors() []*errors.Diagnostic { return p.diag.Items() }

func (p *Parser) errorf(pos source.Position, format string, args ...any) {
	p.diag.Addf(pos, format, args...)
}

// ParseProgram parses the whole source as a sequence of top-level
// statements, recovering after each failing statement so the whole file
// is still scanned for errors.
func ParseProgram(src *source.Source) (*ast.Block, []*errors.Diagnostic) {
	p := New(src)
	stmts := p.parseStatements(lexer.EOF)
	for _, le := range p.lex.Errors() {
		p.errorf(le.Pos, "%s", le.Message)
	}
	return ast.NewBlock(source.Position{Source: src}, stmts), p.Errors()
}

// --- token plumbing ------------------------------------------------------

func (p *Parser) advance() lexer.Token {
	tok := p.cur
	p.cur = p.lex.Next()
	return tok
}

func (p *Parser) peek(n int) lexer.Token {
	if n == 0 {
		return p.cur
	}
	return p.lex.Peek(n - 1)
}

func (p *Parser) at(types ...lexer.TokenType) bool { return p.cur.Is(types...) }

func (p *Parser) accept(t lexer.TokenType) bool {
	if p.cur.Type == t {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.cur.Type != t {
		p.errorf(p.cur.Pos, "expected %s, found %s", t, p.cur.Type)
		return p.cur
	}
	return p.advance()
}

// skipNL discards NEWLINE tokens, used inside parens/brackets/braces
// where line breaks are not statement separators.
func (p *Parser) skipNL() {
	for p.cur.Type == lexer.NEWLINE {
		p.advance()
	}
}

// skipTerms discards statement terminators (newline, `;`) between
// top-level/ block statements.
func (p *Parser) skipTerms() {
	for p.cur.Is(lexer.NEWLINE, lexer.SEMICOLON) {
		p.advance()
	}
}

// recover skips tokens until a likely statement boundary, used after a
// syntax error so the rest of the file still parses.
func (p *Parser) recover(until ...lexer.TokenType) {
	for !p.cur.Is(append(until, lexer.EOF)...) {
		p.advance()
	}
}

// --- numeric literal parsing ---------------------------------------------

func parseIntText(text string) int64 {
	text = strings.ReplaceAll(text, "_", "")
	n, _ := strconv.ParseInt(text, 10, 64)
	return n
}

func parseHexText(text string) int64 {
	text = strings.ReplaceAll(text, "_", "")
	n, _ := strconv.ParseInt(text[2:], 16, 64)
	return n
}

func parseRealText(text string) float64 {
	text = strings.ReplaceAll(text, "_", "")
	f, _ := strconv.ParseFloat(text, 64)
	return f
}

// parseTypeExpr parses a dotted class-name reference used in `is
// ClassExpr`, `catch(e: ClassExpr)`, parent lists: a plain identifier or
// member-access chain evaluated as an expression at runtime (classes are
// ordinary values bound by name, so no separate type-grammar is needed).
func (p *Parser) parseTypeExpr() ast.Node {
	pos := p.cur.Pos
	var node ast.Node = ast.NewIdentifier(pos, p.expectName())
	for p.cur.Type == lexer.DOT {
		p.advance()
		node = ast.NewMemberAccess(pos, node, p.expectName(), false)
	}
	return node
}
