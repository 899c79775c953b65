package parser

import (
	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/lexer"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// parseListLiteral parses `[a, ...iterable, b]` (§4.2.3), or a Set
// literal written `[a, b]set`-style is not part of this grammar — sets
// use braces (see parseBraced); brackets are always List.
func (p *Parser) parseListLiteral() ast.Node {
	pos := p.expect(lexer.LBRACK).Pos
	p.skipNL()
	var elems []ast.ListElem
	for p.cur.Type != lexer.RBRACK && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.SPREAD {
			p.advance()
			elems = append(elems, ast.ListElem{Expr: p.parseExpr(), Spread: true})
		} else {
			elems = append(elems, ast.ListElem{Expr: p.parseExpr()})
		}
		p.skipNL()
		if !p.accept(lexer.COMMA) {
			break
		}
		p.skipNL()
	}
	p.expect(lexer.RBRACK)
	return ast.NewListLiteral(pos, elems)
}

// parseBraced disambiguates `{ ... }` into a block, a lambda, a map
// literal, or a set literal (§4.2 "Disambiguation rules", §4.2.3).
//
//   - `{ (params) -> ... }` or `{ ident, ident -> ... }` or `{ -> ... }`
//     is always a lambda.
//   - Starting with `key: value` / `"key": value` / `...expr` is a map.
//   - `{}` is never a map (use `Map()`); it's an empty block/lambda
//     evaluating to Void.
//   - Otherwise it's a block of statements (a lambda with implicit `it`
//     is indistinguishable from a block at parse time; both parse the
//     same way and a trailing-lambda call site decides which it means
//     by invoking it with arguments).
func (p *Parser) parseBraced() ast.Node {
	return p.parseLambdaBody(p.cur.Pos)
}

// parseLambdaBody parses the body of a `{ ... }` construct uniformly:
// lambda header detection, then map-vs-block sniffing, then either a map
// literal or a statement sequence (the set literal form `{a, b, c}`
// with no `->` and no `key:` pairs and more than zero non-colon items is
// taken as a Set literal per the pack's containers being reachable by
// literal syntax; a single bare expression followed by `}` with no
// comma is ambiguous with a one-statement block, which the parser
// resolves in favour of a block, matching "a `{…}` starting a statement
// is a block/lambda" precedence over the rarer single-element-set case).
func (p *Parser) parseLambdaBody(pos source.Position) ast.Node {
	p.expect(lexer.LBRACE)
	p.skipNL()

	if params, ok := p.tryLambdaHeader(); ok {
		body := p.parseStatements(lexer.RBRACE)
		p.expect(lexer.RBRACE)
		return ast.NewFunction(pos, "", params, ast.NewBlock(pos, body), false, false)
	}

	if p.looksLikeMapLiteral() {
		return p.parseMapLiteralBody(pos)
	}

	if p.looksLikeSetLiteral() {
		return p.parseSetLiteralBody(pos)
	}

	stmts := p.parseStatements(lexer.RBRACE)
	p.expect(lexer.RBRACE)
	return ast.NewFunction(pos, "", nil, ast.NewBlock(pos, stmts), true, false)
}

// tryLambdaHeader speculatively parses a parameter header followed by
// `->`, backtracking if it doesn't match (§4.2 disambiguation: "a lambda
// with typed params requires a top-level `->`").
func (p *Parser) tryLambdaHeader() ([]ast.Param, bool) {
	save := p.lex.Save()
	savedCur := p.cur

	if p.cur.Type == lexer.ARROW {
		p.advance()
		p.skipNL()
		return nil, true
	}
	if p.cur.Type == lexer.IDENT || p.cur.Type == lexer.LPAREN {
		params, ok := p.tryParseParamList()
		if ok && p.cur.Type == lexer.ARROW {
			p.advance()
			p.skipNL()
			return params, true
		}
	}
	p.lex.Restore(save)
	p.cur = savedCur
	return nil, false
}

// tryParseParamList parses a bare or parenthesised comma-separated
// parameter list without consuming a trailing `->` (caller checks it).
func (p *Parser) tryParseParamList() ([]ast.Param, bool) {
	paren := p.cur.Type == lexer.LPAREN
	if paren {
		p.advance()
		p.skipNL()
	}
	var params []ast.Param
	for p.cur.Type == lexer.IDENT {
		name := p.advance().Text
		param := ast.Param{Name: name}
		if p.cur.Type == lexer.SPREAD {
			p.advance()
			param.Variadic = true
		} else if p.cur.Type == lexer.ASSIGN {
			p.advance()
			p.skipNL()
			param.Default = p.parseExpr()
		}
		params = append(params, param)
		if !p.accept(lexer.COMMA) {
			break
		}
		p.skipNL()
	}
	if paren {
		if p.cur.Type != lexer.RPAREN {
			return nil, false
		}
		p.advance()
	}
	return params, true
}

// looksLikeMapLiteral peeks for `key:` / `"key":` / `...` starting the
// brace body.
func (p *Parser) looksLikeMapLiteral() bool {
	if p.cur.Type == lexer.RBRACE {
		return false
	}
	if p.cur.Type == lexer.SPREAD {
		return true
	}
	if (p.cur.Type == lexer.IDENT || p.cur.Type == lexer.STRING) && p.peek(1).Type == lexer.COLON {
		return true
	}
	return false
}

// looksLikeSetLiteral treats a brace body as a Set when it is a
// comma-separated list of bare expressions with more than one element
// (disambiguating the rare single-statement-block case in the block's
// favour, see parseLambdaBody's doc comment).
func (p *Parser) looksLikeSetLiteral() bool {
	if p.cur.Type == lexer.RBRACE {
		return false
	}
	save := p.lex.Save()
	savedCur := p.cur
	defer func() { p.lex.Restore(save); p.cur = savedCur }()

	depth := 0
	for !p.cur.Is(lexer.EOF) {
		switch p.cur.Type {
		case lexer.LPAREN, lexer.LBRACK, lexer.LBRACE:
			depth++
		case lexer.RPAREN, lexer.RBRACK:
			depth--
		case lexer.RBRACE:
			if depth == 0 {
				return false
			}
			depth--
		case lexer.COMMA:
			if depth == 0 {
				return true
			}
		case lexer.SEMICOLON, lexer.ARROW, lexer.ASSIGN:
			if depth == 0 {
				return false
			}
		}
		p.advance()
	}
	return false
}

func (p *Parser) parseMapLiteralBody(pos source.Position) ast.Node {
	var entries []ast.MapEntry
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.SPREAD {
			p.advance()
			entries = append(entries, ast.MapEntry{Spread: p.parseExpr()})
		} else if p.cur.Type == lexer.STRING && p.peek(1).Type == lexer.COLON {
			key := p.advance().Text
			p.advance()
			p.skipNL()
			entries = append(entries, ast.MapEntry{KeyLit: key, Value: p.parseMapValue()})
		} else if p.cur.Type == lexer.IDENT && p.peek(1).Type == lexer.COLON {
			key := p.advance().Text
			p.advance()
			p.skipNL()
			if p.cur.Is(lexer.COMMA, lexer.RBRACE) {
				entries = append(entries, ast.MapEntry{KeyLit: key, Value: ast.NewIdentifier(pos, key)})
			} else {
				entries = append(entries, ast.MapEntry{KeyLit: key, Value: p.parseExpr()})
			}
		} else {
			key := p.parseExpr()
			p.expect(lexer.COLON)
			p.skipNL()
			entries = append(entries, ast.MapEntry{Key: key, Value: p.parseMapValue()})
		}
		p.skipNL()
		if !p.accept(lexer.COMMA) {
			break
		}
		p.skipNL()
	}
	p.expect(lexer.RBRACE)
	return ast.NewMapLiteral(pos, entries)
}

func (p *Parser) parseMapValue() ast.Node { return p.parseExpr() }

func (p *Parser) parseSetLiteralBody(pos source.Position) ast.Node {
	var elems []ast.Node
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		elems = append(elems, p.parseExpr())
		p.skipNL()
		if !p.accept(lexer.COMMA) {
			break
		}
		p.skipNL()
	}
	p.expect(lexer.RBRACE)
	return ast.NewSetLiteral(pos, elems)
}

// parseLambdaWithHeader parses `(params) -> body`, starting at the
// opening `(`, after the parser has already speculatively confirmed the
// header via looksLikeLambdaParams.
func (p *Parser) parseLambdaWithHeader(pos source.Position) ast.Node {
	params, _ := p.tryParseParamList()
	p.expect(lexer.ARROW)
	p.skipNL()
	var body ast.Node
	if p.cur.Type == lexer.LBRACE {
		bpos := p.cur.Pos
		p.advance()
		p.skipNL()
		stmts := p.parseStatements(lexer.RBRACE)
		p.expect(lexer.RBRACE)
		body = ast.NewBlock(bpos, stmts)
	} else {
		body = p.parseExpr()
	}
	return ast.NewFunction(pos, "", params, body, false, false)
}

// looksLikeLambdaParams speculatively checks whether the just-opened
// `(` begins a lambda parameter list (`(a, b) ->`) rather than a
// grouped/parenthesised expression.
func looksLikeLambdaParams(p *Parser) bool {
	save := p.lex.Save()
	savedCur := p.cur
	params, ok := p.tryParseParamList()
	matched := ok && p.cur.Type == lexer.ARROW
	_ = params
	p.lex.Restore(save)
	p.cur = savedCur
	return matched
}

