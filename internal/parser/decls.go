package parser

import (
	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/lexer"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// parseValVar parses `val`/`var name [by delegate] [= expr]` and the
// destructuring form `val [a, rest..., c] = expr` (§4.2 statement level,
// rule 19, rule 23).
func (p *Parser) parseValVar() ast.Node {
	mutable := p.cur.Type == lexer.VAR
	pos := p.advance().Pos

	if p.cur.Type == lexer.LBRACK {
		pattern := p.parsePatternList()
		p.expect(lexer.ASSIGN)
		p.skipNL()
		src := p.parseExpr()
		return ast.NewDestructure(pos, pattern, true, mutable, src)
	}

	name := p.expectName()
	if p.cur.Type == lexer.BY {
		p.advance()
		p.skipNL()
		delegate := p.parseExpr()
		return ast.NewDelegate(pos, name, mutable, delegate)
	}
	var init ast.Node
	if p.accept(lexer.ASSIGN) {
		p.skipNL()
		init = p.parseExpr()
	}
	return ast.NewVarDecl(pos, name, mutable, init)
}

// parsePatternList parses the `[a, nested[...], rest...]` grammar of a
// destructuring target.
func (p *Parser) parsePatternList() []*ast.Pattern {
	p.expect(lexer.LBRACK)
	p.skipNL()
	var pats []*ast.Pattern
	for p.cur.Type != lexer.RBRACK && p.cur.Type != lexer.EOF {
		pats = append(pats, p.parsePattern())
		p.skipNL()
		if !p.accept(lexer.COMMA) {
			break
		}
		p.skipNL()
	}
	p.expect(lexer.RBRACK)
	return pats
}

func (p *Parser) parsePattern() *ast.Pattern {
	if p.cur.Type == lexer.LBRACK {
		nested := p.parsePatternList()
		return &ast.Pattern{IsNested: true, Nested: nested}
	}
	name := p.expectName()
	pat := &ast.Pattern{Name: name}
	if p.cur.Type == lexer.SPREAD {
		p.advance()
		pat.Splat = true
	}
	return pat
}

// parseParams parses a parenthesised function/constructor parameter
// list; the []bool result has one entry per parameter, true where the
// parameter carries a `val`/`var` prefix, which in a class primary-
// constructor header promotes the parameter to a field.
func (p *Parser) parseParams() ([]ast.Param, []bool) {
	p.expect(lexer.LPAREN)
	p.skipNL()
	var params []ast.Param
	var promote []bool
	for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
		promoted := false
		if p.cur.Is(lexer.VAL, lexer.VAR) {
			promoted = true
			p.advance()
		}
		name := p.expectName()
		param := ast.Param{Name: name}
		if p.cur.Type == lexer.SPREAD {
			p.advance()
			param.Variadic = true
		} else if p.accept(lexer.ASSIGN) {
			p.skipNL()
			param.Default = p.parseExpr()
		}
		params = append(params, param)
		promote = append(promote, promoted)
		p.skipNL()
		if !p.accept(lexer.COMMA) {
			break
		}
		p.skipNL()
	}
	p.expect(lexer.RPAREN)
	return params, promote
}

// parseFunctionDecl parses `fun name(params) { body }` or shorthand
// `fun name(params) = expr`, as a statement (§4.2, rule 14).
func (p *Parser) parseFunctionDecl() ast.Node {
	pos := p.advance().Pos // fun/fn
	name := p.expectName()
	if p.cur.Type == lexer.BY {
		p.advance()
		p.skipNL()
		delegate := p.parseExpr()
		return ast.NewDelegate(pos, name, false, delegate)
	}
	params, _ := p.parseParams()
	if p.accept(lexer.ASSIGN) {
		p.skipNL()
		body := p.parseExpr()
		fn := ast.NewFunction(pos, name, params, body, false, true)
		return ast.NewFunctionDecl(pos, name, fn)
	}
	body := p.parseBlockStmt()
	fn := ast.NewFunction(pos, name, params, body, false, false)
	return ast.NewFunctionDecl(pos, name, fn)
}

// parseFunctionExpr parses an anonymous `fun(params) { body }` literal
// used in expression position.
func (p *Parser) parseFunctionExpr() ast.Node {
	pos := p.advance().Pos
	params, _ := p.parseParams()
	if p.accept(lexer.ASSIGN) {
		p.skipNL()
		return ast.NewFunction(pos, "", params, p.parseExpr(), false, true)
	}
	body := p.parseBlockStmt()
	return ast.NewFunction(pos, "", params, body, false, false)
}

func (p *Parser) parseBlockStmt() *ast.Block {
	pos := p.expect(lexer.LBRACE).Pos
	p.skipNL()
	stmts := p.parseStatements(lexer.RBRACE)
	p.expect(lexer.RBRACE)
	return ast.NewBlock(pos, stmts)
}

// parseVisibility consumes an optional leading `private`/`protected`
// modifier, defaulting to Public (§3.5).
func (p *Parser) parseVisibility() class.Visibility {
	switch p.cur.Type {
	case lexer.PRIVATE:
		p.advance()
		return class.Private
	case lexer.PROTECTED:
		p.advance()
		return class.Protected
	}
	return class.Public
}

// parseClassDecl parses `class Name(params) : Parent1(...), Parent2 {
// ... }` (§3.5).
func (p *Parser) parseClassDecl() *ast.ClassDecl {
	abstract := p.accept(lexer.ABSTRACT)
	p.accept(lexer.OPEN)
	pos := p.expect(lexer.CLASS).Pos
	name := p.expectName()
	decl := ast.NewClassDecl(pos, name)
	decl.Abstract = abstract

	if p.cur.Type == lexer.LPAREN {
		decl.HeaderParams, decl.PromoteHeader = p.parseParams()
	}
	if p.accept(lexer.COLON) {
		p.skipNL()
		for {
			parentPos := p.cur.Pos
			parentExpr := p.parseTypeExpr()
			if p.cur.Type == lexer.LPAREN {
				// Base-class constructor args are parsed (left-to-right
				// evaluation order is preserved) but are not forwarded:
				// only the most-derived class's header params bind from
				// call-site args (see instantiate's doc comment).
				p.parseCallArgs(ast.NewLiteral(parentPos, value.Void), false)
			}
			decl.ParentExprs = append(decl.ParentExprs, parentExpr)
			if !p.accept(lexer.COMMA) {
				break
			}
			p.skipNL()
		}
	}
	p.skipNL()
	if p.cur.Type == lexer.LBRACE {
		p.parseClassBody(decl)
	}
	return decl
}

func (p *Parser) parseClassBody(decl *ast.ClassDecl) {
	p.expect(lexer.LBRACE)
	p.skipTerms()
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		p.parseClassMember(decl)
		p.skipTerms()
	}
	p.expect(lexer.RBRACE)
}

func (p *Parser) parseClassMember(decl *ast.ClassDecl) {
	static := p.accept(lexer.STATIC)
	abstract := p.accept(lexer.ABSTRACT)
	vis := p.parseVisibility()

	switch p.cur.Type {
	case lexer.INIT:
		pos := p.advance().Pos
		body := p.parseBlockStmt()
		if decl.InitBlock == nil {
			decl.InitBlock = body
		} else {
			decl.InitBlock = ast.NewBlock(pos, []ast.Node{decl.InitBlock, body})
		}
	case lexer.VAL, lexer.VAR:
		mutable := p.cur.Type == lexer.VAR
		p.advance()
		name := p.expectName()
		var init ast.Node
		if p.accept(lexer.ASSIGN) {
			p.skipNL()
			init = p.parseExpr()
		} else if p.cur.Type == lexer.LBRACE {
			// `val x { get { ... }; set(v) { ... } }` property form.
			getter, setter := p.parsePropertyAccessors()
			decl.Properties = append(decl.Properties, ast.PropertySpec{
				Name: name, Getter: getter, Setter: setter, Visibility: vis,
			})
			return
		}
		decl.Fields = append(decl.Fields, ast.FieldSpec{
			Name: name, Mutable: mutable, Init: init, Visibility: vis, Static: static,
		})
	case lexer.FUN, lexer.FN:
		pos := p.advance().Pos
		name := p.expectName()
		params, _ := p.parseParams()
		var fn *ast.Function
		if p.accept(lexer.ASSIGN) {
			p.skipNL()
			fn = ast.NewFunction(pos, name, params, p.parseExpr(), false, true)
		} else {
			fn = ast.NewFunction(pos, name, params, p.parseBlockStmt(), false, false)
		}
		decl.Methods = append(decl.Methods, ast.MethodSpec{
			Name: name, Fn: fn, Visibility: vis, Abstract: abstract, Static: static,
		})
	default:
		p.errorf(p.cur.Pos, "unexpected token in class body: %s", p.cur.Type)
		p.recover(lexer.NEWLINE, lexer.SEMICOLON, lexer.RBRACE)
	}
}

// parsePropertyAccessors parses `{ get { ... } set(v) { ... } }`.
func (p *Parser) parsePropertyAccessors() (getter, setter *ast.Function) {
	p.expect(lexer.LBRACE)
	p.skipTerms()
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.IDENT && p.cur.Text == "get" {
			pos := p.advance().Pos
			body := p.parseBlockStmt()
			getter = ast.NewFunction(pos, "get", nil, body, false, false)
		} else if p.cur.Type == lexer.IDENT && p.cur.Text == "set" {
			pos := p.advance().Pos
			params, _ := p.parseParams()
			body := p.parseBlockStmt()
			setter = ast.NewFunction(pos, "set", params, body, false, false)
		} else {
			p.errorf(p.cur.Pos, "expected get/set in property body")
			p.recover(lexer.NEWLINE, lexer.RBRACE)
		}
		p.skipTerms()
	}
	p.expect(lexer.RBRACE)
	return
}

// parseEnumDecl parses `enum class Name { A, B, C }` (§3.5, §3.6).
func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	pos := p.expect(lexer.ENUM).Pos
	p.expect(lexer.CLASS)
	name := p.expectName()
	p.expect(lexer.LBRACE)
	p.skipNL()
	var entries []string
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		entries = append(entries, p.expectName())
		p.skipNL()
		if !p.accept(lexer.COMMA) {
			break
		}
		p.skipNL()
	}
	// Any trailing member section after the entry list (shared
	// methods/fields) is consumed but not attached to entries (entries
	// are pre-built singletons, not per-entry bodies).
	depth := 0
	for !p.cur.Is(lexer.EOF) && (depth > 0 || p.cur.Type != lexer.RBRACE) {
		switch p.cur.Type {
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			depth--
		}
		p.advance()
	}
	p.expect(lexer.RBRACE)
	return ast.NewEnumDecl(pos, name, entries)
}

// parseObjectDecl parses `object Name { ... }` (§3.5).
func (p *Parser) parseObjectDecl() *ast.ObjectDecl {
	pos := p.expect(lexer.OBJECT).Pos
	name := p.expectName()
	decl := ast.NewClassDecl(pos, name)
	p.skipNL()
	if p.cur.Type == lexer.LBRACE {
		p.parseClassBody(decl)
	}
	return ast.NewObjectDecl(pos, decl)
}

// parseImport parses `import path.to.pkg` / `import path.*` (§6.1).
func (p *Parser) parseImport() ast.Node {
	pos := p.expect(lexer.IMPORT).Pos
	path := p.expectName()
	for p.cur.Type == lexer.DOT {
		p.advance()
		if p.cur.Type == lexer.ASTERISK {
			p.advance()
			path += ".*"
			break
		}
		path += "." + p.expectName()
	}
	return ast.NewImport(pos, path, nil)
}

// parseAnnotation parses `@Name(args) decl` (§4.3 rule 24); ATLABEL
// already carries the annotation's bare name (the lexer folds `@ident`
// into one token regardless of position, see internal/lexer's handleAt).
func (p *Parser) parseAnnotation() ast.Node {
	tok := p.advance() // ATLABEL(Name)
	annExpr := ast.NewIdentifier(tok.Pos, tok.Text)
	var args []ast.Node
	if p.cur.Type == lexer.LPAREN {
		p.advance()
		p.skipNL()
		for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
			args = append(args, p.parseExpr())
			p.skipNL()
			if !p.accept(lexer.COMMA) {
				break
			}
			p.skipNL()
		}
		p.expect(lexer.RPAREN)
	}
	p.skipNL()
	declName, body := p.parseAnnotatedDecl()
	return ast.NewAnnotation(tok.Pos, annExpr, declName, body, args)
}

// parseAnnotatedDecl parses the declaration an annotation decorates,
// returning its name and its body/value as a Node the annotation
// receives at definition time.
func (p *Parser) parseAnnotatedDecl() (string, ast.Node) {
	switch p.cur.Type {
	case lexer.FUN, lexer.FN:
		p.advance()
		name := p.expectName()
		params, _ := p.parseParams()
		var body ast.Node
		if p.accept(lexer.ASSIGN) {
			p.skipNL()
			body = p.parseExpr()
		} else {
			body = p.parseBlockStmt()
		}
		return name, ast.NewFunction(body.Pos(), name, params, body, false, false)
	case lexer.VAL, lexer.VAR:
		p.advance()
		name := p.expectName()
		if p.accept(lexer.ASSIGN) {
			p.skipNL()
			return name, p.parseExpr()
		}
		return name, ast.NewLiteral(p.cur.Pos, value.Unset)
	default:
		expr := p.parseExpr()
		return "", expr
	}
}

// parseDynamic parses `dynamic { get { name -> ... } set { name, value
// -> ... } }` (§4.3 rule 22).
func (p *Parser) parseDynamic() ast.Node {
	pos := p.advance().Pos // the `dynamic` identifier
	p.expect(lexer.LBRACE)
	p.skipTerms()
	var get, set *ast.Function
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.IDENT && p.cur.Text == "get" {
			gpos := p.advance().Pos
			body := p.parseBlockStmt()
			get = ast.NewFunction(gpos, "get", []ast.Param{{Name: "name"}}, body, false, false)
		} else if p.cur.Type == lexer.IDENT && p.cur.Text == "set" {
			spos := p.advance().Pos
			body := p.parseBlockStmt()
			set = ast.NewFunction(spos, "set", []ast.Param{{Name: "name"}, {Name: "value"}}, body, false, false)
		} else {
			p.errorf(p.cur.Pos, "expected get/set in dynamic body")
			p.recover(lexer.NEWLINE, lexer.RBRACE)
		}
		p.skipTerms()
	}
	p.expect(lexer.RBRACE)
	return ast.NewDynamicLiteral(pos, get, set)
}
