package parser

import (
	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/lexer"
)

// parseStatements parses statements until `until` (RBRACE or EOF),
// skipping terminators (newline/`;`) between and around them and
// recovering after a failing statement so the rest of the block still
// parses (§4.5).
func (p *Parser) parseStatements(until lexer.TokenType) []ast.Node {
	var stmts []ast.Node
	p.skipTerms()
	for p.cur.Type != until && p.cur.Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if !p.cur.Is(until, lexer.EOF) && !p.cur.Is(lexer.NEWLINE, lexer.SEMICOLON) {
			p.errorf(p.cur.Pos, "expected statement terminator, found %s", p.cur.Type)
			p.recover(lexer.NEWLINE, lexer.SEMICOLON, until)
		}
		p.skipTerms()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Node {
	switch p.cur.Type {
	case lexer.VAL, lexer.VAR:
		return p.parseValVar()
	case lexer.FUN, lexer.FN:
		return p.parseFunctionDecl()
	case lexer.CLASS, lexer.ABSTRACT, lexer.OPEN:
		return p.parseClassDecl()
	case lexer.ENUM:
		return p.parseEnumDecl()
	case lexer.OBJECT:
		return p.parseObjectDecl()
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile("")
	case lexer.DO:
		return p.parseDoWhile("")
	case lexer.FOR:
		return p.parseFor("")
	case lexer.LABEL:
		return p.parseLabelled()
	case lexer.BREAK:
		return p.parseBreak()
	case lexer.CONTINUE:
		return p.parseContinue()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.TRY:
		return p.parseTry()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.WHEN:
		return p.parseWhen()
	case lexer.LBRACK:
		if destr, ok := p.tryDestructureAssign(); ok {
			return destr
		}
	}
	return p.parseExpr()
}

// parseLabelled handles a `label@` prefix before while/do-while/for, or
// before a block used as a labelled breakable statement.
func (p *Parser) parseLabelled() ast.Node {
	label := p.advance().Text // LABEL token already carries the bare name
	p.skipNL()
	switch p.cur.Type {
	case lexer.WHILE:
		return p.parseWhile(label)
	case lexer.DO:
		return p.parseDoWhile(label)
	case lexer.FOR:
		return p.parseFor(label)
	default:
		p.errorf(p.cur.Pos, "label must precede while/do/for")
		return p.parseStatement()
	}
}

// tryDestructureAssign speculatively parses `[pattern, ...] = expr` as a
// destructuring reassignment (distinct from a destructuring declaration,
// which starts with val/var — see parseValVar), backtracking to let the
// caller fall back to an ordinary list-literal expression statement when
// no top-level `=` follows the pattern list.
func (p *Parser) tryDestructureAssign() (ast.Node, bool) {
	save := p.lex.Save()
	savedCur := p.cur
	errMark := len(p.diag.Items())
	pos := p.cur.Pos
	pats := p.parsePatternList()
	if p.cur.Type != lexer.ASSIGN || len(p.diag.Items()) > errMark {
		p.lex.Restore(save)
		p.cur = savedCur
		return nil, false
	}
	p.advance()
	p.skipNL()
	src := p.parseExpr()
	return ast.NewDestructure(pos, pats, false, true, src), true
}

func (p *Parser) parseIf() ast.Node {
	pos := p.advance().Pos
	p.expect(lexer.LPAREN)
	p.skipNL()
	cond := p.parseExpr()
	p.skipNL()
	p.expect(lexer.RPAREN)
	p.skipNL()
	then := p.parseStatement()
	var els ast.Node
	save := p.lex.Save()
	savedCur := p.cur
	p.skipTerms()
	if p.cur.Type == lexer.ELSE {
		p.advance()
		p.skipNL()
		els = p.parseStatement()
	} else {
		p.lex.Restore(save)
		p.cur = savedCur
	}
	return ast.NewIf(pos, cond, then, els)
}

func (p *Parser) parseWhile(label string) ast.Node {
	pos := p.advance().Pos
	p.expect(lexer.LPAREN)
	p.skipNL()
	cond := p.parseExpr()
	p.skipNL()
	p.expect(lexer.RPAREN)
	p.skipNL()
	body := p.parseStatement()
	var els ast.Node
	save := p.lex.Save()
	savedCur := p.cur
	p.skipTerms()
	if p.cur.Type == lexer.ELSE {
		p.advance()
		p.skipNL()
		els = p.parseStatement()
	} else {
		p.lex.Restore(save)
		p.cur = savedCur
	}
	return ast.NewWhile(pos, label, cond, body, els)
}

func (p *Parser) parseDoWhile(label string) ast.Node {
	pos := p.advance().Pos
	p.skipNL()
	body := p.parseBlockStmt()
	p.skipTerms()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	p.skipNL()
	cond := p.parseExpr()
	p.skipNL()
	p.expect(lexer.RPAREN)
	return ast.NewDoWhile(pos, label, body, cond)
}

func (p *Parser) parseFor(label string) ast.Node {
	pos := p.advance().Pos
	p.expect(lexer.LPAREN)
	p.skipNL()
	varName := p.expectName()
	p.expect(lexer.IN)
	p.skipNL()
	iterable := p.parseExpr()
	p.skipNL()
	p.expect(lexer.RPAREN)
	p.skipNL()
	body := p.parseStatement()
	return ast.NewFor(pos, label, varName, iterable, body)
}

// parseLabelRef consumes an optional trailing `@label` (ATLABEL) after
// break/continue/return.
func (p *Parser) parseLabelRef() string {
	if p.cur.Type == lexer.ATLABEL {
		return p.advance().Text
	}
	return ""
}

func (p *Parser) parseBreak() ast.Node {
	pos := p.advance().Pos
	label := p.parseLabelRef()
	var val ast.Node
	if !p.atStatementEnd() {
		val = p.parseExpr()
	}
	return ast.NewBreak(pos, label, val)
}

func (p *Parser) parseContinue() ast.Node {
	pos := p.advance().Pos
	label := p.parseLabelRef()
	return ast.NewContinue(pos, label)
}

func (p *Parser) parseReturn() ast.Node {
	pos := p.advance().Pos
	label := p.parseLabelRef()
	var val ast.Node
	if !p.atStatementEnd() {
		val = p.parseExpr()
	}
	return ast.NewReturn(pos, label, val)
}

// atStatementEnd reports whether the current token cannot start an
// expression, used to detect the value-less forms of break/continue/
// return.
func (p *Parser) atStatementEnd() bool {
	return p.cur.Is(lexer.NEWLINE, lexer.SEMICOLON, lexer.RBRACE, lexer.EOF, lexer.ELSE)
}

func (p *Parser) parseThrow() ast.Node {
	pos := p.advance().Pos
	return ast.NewThrow(pos, p.parseExpr())
}

func (p *Parser) parseTry() ast.Node {
	pos := p.advance().Pos
	body := p.parseBlockStmt()
	var catches []ast.CatchClause
	for p.cur.Type == lexer.CATCH {
		p.advance()
		var bindName string
		var classExpr ast.Node
		if p.accept(lexer.LPAREN) {
			bindName = p.expectName()
			if p.accept(lexer.COLON) {
				classExpr = p.parseTypeExpr()
			}
			p.expect(lexer.RPAREN)
		}
		p.skipNL()
		catchBody := p.parseBlockStmt()
		catches = append(catches, ast.CatchClause{BindName: bindName, ClassExpr: classExpr, Body: catchBody})
	}
	var finally ast.Node
	if p.cur.Type == lexer.FINALLY {
		p.advance()
		p.skipNL()
		finally = p.parseBlockStmt()
	}
	return ast.NewTry(pos, body, catches, finally)
}

func (p *Parser) parseWhen() ast.Node {
	pos := p.advance().Pos
	p.expect(lexer.LPAREN)
	p.skipNL()
	subject := p.parseExpr()
	p.skipNL()
	p.expect(lexer.RPAREN)
	p.skipNL()
	p.expect(lexer.LBRACE)
	p.skipTerms()
	var branches []ast.WhenBranch
	var elseBody ast.Node
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.ELSE {
			p.advance()
			p.expect(lexer.ARROW)
			p.skipNL()
			elseBody = p.parseStatement()
		} else {
			var conds []ast.WhenCond
			for {
				conds = append(conds, p.parseWhenCond())
				if !p.accept(lexer.COMMA) {
					break
				}
				p.skipNL()
			}
			p.expect(lexer.ARROW)
			p.skipNL()
			branchBody := p.parseStatement()
			branches = append(branches, ast.WhenBranch{Conds: conds, Body: branchBody})
		}
		p.skipTerms()
	}
	p.expect(lexer.RBRACE)
	return ast.NewWhen(pos, subject, branches, elseBody)
}

func (p *Parser) parseWhenCond() ast.WhenCond {
	switch p.cur.Type {
	case lexer.NOTIN:
		p.advance()
		return ast.WhenCond{Kind: ast.CondNotIn, Expr: p.parseExpr()}
	case lexer.IN:
		p.advance()
		return ast.WhenCond{Kind: ast.CondIn, Expr: p.parseExpr()}
	case lexer.ISNOT:
		p.advance()
		return ast.WhenCond{Kind: ast.CondIsNot, Expr: p.parseTypeExpr()}
	case lexer.IS:
		p.advance()
		return ast.WhenCond{Kind: ast.CondIs, Expr: p.parseTypeExpr()}
	default:
		return ast.WhenCond{Kind: ast.CondEquals, Expr: p.parseOr()}
	}
}
