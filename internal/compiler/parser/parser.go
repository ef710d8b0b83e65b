// Package parser builds the syntax tree from the token stream. It is a
// recursive descent parser with precedence climbing for binary operators
// and statement/declaration boundary recovery so one bad construct does
// not hide every error after it.
package parser

import (
	"errors"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/diag"
	"github.com/lumen-lang/lumen/internal/compiler/token"
)

// errSync unwinds a failed production. The diagnostic is recorded where
// the failure happened; the error itself carries no information.
var errSync = errors.New("syntax error")

type parser struct {
	toks  []token.Token
	pos   int
	diags *diag.List

	// noStructLit suppresses struct-literal lookahead while parsing the
	// expression between a control keyword and its block, where `x {`
	// means a condition followed by the body.
	noStructLit bool
}

// Parse consumes a complete token stream (EOF-terminated) and returns the
// parsed file. Syntax errors are recorded on diags; the returned file
// holds every declaration that parsed cleanly.
func Parse(toks []token.Token, diags *diag.List) *ast.File {
	p := &parser{toks: toks, diags: diags}
	file := &ast.File{}
	for !p.at(token.EOF) {
		if p.diags.Full() {
			break
		}
		decl, err := p.parseDecl()
		if err != nil {
			p.syncDecl()
			continue
		}
		file.Decls = append(file.Decls, decl)
	}
	return file
}

func (p *parser) cur() token.Token { return p.toks[p.pos] }

func (p *parser) at(tt token.Type) bool { return p.cur().Type == tt }

func (p *parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token.Token {
	tok := p.cur()
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

// accept consumes the current token if it has the given type.
func (p *parser) accept(tt token.Type) bool {
	if p.at(tt) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given type or records a diagnostic and
// fails the enclosing production.
func (p *parser) expect(tt token.Type, context string) (token.Token, error) {
	if p.at(tt) {
		return p.advance(), nil
	}
	p.errorf("expected %s in %s, found %s", tt, context, p.cur())
	return token.Token{}, errSync
}

func (p *parser) errorf(format string, args ...any) {
	p.diags.Errorf(p.cur().Pos, format, args...)
}

// syncDecl skips ahead to the next plausible declaration start.
func (p *parser) syncDecl() {
	for !p.at(token.EOF) {
		switch p.cur().Type {
		case token.FN, token.STRUCT, token.COMPONENT, token.COMPONENTSOA,
			token.TYPE, token.PIPELINE, token.SHADER, token.RESOURCE,
			token.MESH, token.AT, token.ATBRACKET:
			return
		}
		p.advance()
	}
}

// syncStmt skips past the current statement: to just after the next `;`,
// or to a `}` left for the block parser to consume.
func (p *parser) syncStmt() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.cur().Type {
		case token.SEMICOLON:
			if depth == 0 {
				p.advance()
				return
			}
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

// ------------------------------------------------------------ declarations

func (p *parser) parseDecl() (ast.Decl, error) {
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	switch p.cur().Type {
	case token.FN:
		return p.parseFuncDecl(attrs)
	case token.STRUCT:
		return p.parseStructDecl(attrs)
	case token.COMPONENT, token.COMPONENTSOA:
		return p.parseComponentDecl(attrs)
	case token.TYPE:
		return p.parseTypeAliasDecl(attrs)
	case token.PIPELINE:
		return p.parsePipelineDecl(attrs)
	case token.SHADER:
		return p.parseShaderDecl(attrs)
	case token.RESOURCE:
		return p.parseResourceDecl(attrs)
	case token.MESH:
		return p.parseMeshDecl(attrs)
	default:
		p.errorf("expected declaration, found %s", p.cur())
		return nil, errSync
	}
}

func (p *parser) parseAttributes() ([]*ast.Attribute, error) {
	var attrs []*ast.Attribute
	for p.at(token.AT) || p.at(token.ATBRACKET) {
		marker := p.advance()
		name, err := p.expect(token.IDENT, "attribute")
		if err != nil {
			return nil, err
		}
		attr := &ast.Attribute{
			AtPos:     marker.Pos,
			Name:      name.Lexeme,
			Bracketed: marker.Type == token.ATBRACKET,
		}
		if p.accept(token.LPAREN) {
			for !p.at(token.RPAREN) {
				arg, err := p.parseAttrArg()
				if err != nil {
					return nil, err
				}
				attr.Args = append(attr.Args, arg)
				if !p.accept(token.COMMA) {
					break
				}
			}
			if _, err := p.expect(token.RPAREN, "attribute arguments"); err != nil {
				return nil, err
			}
		}
		if attr.Bracketed {
			if _, err := p.expect(token.RBRACKET, "attribute"); err != nil {
				return nil, err
			}
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *parser) parseAttrArg() (ast.AttrArg, error) {
	tok := p.cur()
	switch tok.Type {
	case token.IDENT:
		p.advance()
		if p.accept(token.ASSIGN) {
			val := p.cur()
			switch val.Type {
			case token.IDENT, token.INT, token.STRING:
				p.advance()
				return ast.AttrArg{Key: tok.Lexeme, Value: val.Lexeme, ArgPos: tok.Pos}, nil
			default:
				p.errorf("expected attribute value after '%s =', found %s", tok.Lexeme, val)
				return ast.AttrArg{}, errSync
			}
		}
		return ast.AttrArg{Value: tok.Lexeme, ArgPos: tok.Pos}, nil
	case token.INT, token.STRING:
		p.advance()
		return ast.AttrArg{Value: tok.Lexeme, ArgPos: tok.Pos}, nil
	default:
		p.errorf("expected attribute argument, found %s", tok)
		return ast.AttrArg{}, errSync
	}
}

func (p *parser) parseFuncDecl(attrs []*ast.Attribute) (*ast.FuncDecl, error) {
	fnTok := p.advance()
	name, err := p.expect(token.IDENT, "function declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "function declaration"); err != nil {
		return nil, err
	}
	var params []ast.ParamDecl
	for !p.at(token.RPAREN) {
		pname, err := p.expect(token.IDENT, "parameter list")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, "parameter list"); err != nil {
			return nil, err
		}
		ptype, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.ParamDecl{Name: pname.Lexeme, NamePos: pname.Pos, Type: ptype})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "parameter list"); err != nil {
		return nil, err
	}
	var result ast.TypeExpr
	if p.accept(token.COLON) {
		result, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{
		Attrs: attrs, FnPos: fnTok.Pos,
		Name: name.Lexeme, NamePos: name.Pos,
		Params: params, Result: result, Body: body,
	}, nil
}

func (p *parser) parseStructDecl(attrs []*ast.Attribute) (*ast.StructDecl, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "struct declaration")
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldBlock(false)
	if err != nil {
		return nil, err
	}
	return &ast.StructDecl{Attrs: attrs, StructPos: kw.Pos, Name: name.Lexeme, NamePos: name.Pos, Fields: fields}, nil
}

func (p *parser) parseComponentDecl(attrs []*ast.Attribute) (*ast.ComponentDecl, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "component declaration")
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldBlock(true)
	if err != nil {
		return nil, err
	}
	return &ast.ComponentDecl{
		Attrs: attrs, KwPos: kw.Pos,
		Name: name.Lexeme, NamePos: name.Pos,
		Soa:    kw.Type == token.COMPONENTSOA,
		Fields: fields,
	}, nil
}

// parseFieldBlock parses `{ name: Type [= default], ... }`. Defaults are
// only legal on component fields.
func (p *parser) parseFieldBlock(allowDefaults bool) ([]ast.FieldDecl, error) {
	if _, err := p.expect(token.LBRACE, "field list"); err != nil {
		return nil, err
	}
	var fields []ast.FieldDecl
	for !p.at(token.RBRACE) {
		name, err := p.expect(token.IDENT, "field list")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, "field declaration"); err != nil {
			return nil, err
		}
		ftype, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		field := ast.FieldDecl{Name: name.Lexeme, NamePos: name.Pos, Type: ftype}
		if p.at(token.ASSIGN) {
			if !allowDefaults {
				p.errorf("struct fields cannot have default values")
				return nil, errSync
			}
			p.advance()
			field.Default, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		fields = append(fields, field)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE, "field list"); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *parser) parseTypeAliasDecl(attrs []*ast.Attribute) (*ast.TypeAliasDecl, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "type alias")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "type alias"); err != nil {
		return nil, err
	}
	target, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	return &ast.TypeAliasDecl{Attrs: attrs, TypePos: kw.Pos, Name: name.Lexeme, NamePos: name.Pos, Target: target}, nil
}

func (p *parser) parsePipelineDecl(attrs []*ast.Attribute) (*ast.PipelineDecl, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "pipeline declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "pipeline declaration"); err != nil {
		return nil, err
	}
	decl := &ast.PipelineDecl{Attrs: attrs, PipePos: kw.Pos, Name: name.Lexeme, NamePos: name.Pos}
	for !p.at(token.RBRACE) {
		switch p.cur().Type {
		case token.SHADER:
			p.advance()
			stage, err := p.expect(token.IDENT, "pipeline shader clause")
			if err != nil {
				return nil, err
			}
			path, err := p.expect(token.STRING, "pipeline shader clause")
			if err != nil {
				return nil, err
			}
			decl.Shaders = append(decl.Shaders, ast.ShaderClause{
				Stage: stage.Lexeme, Path: path.Lexeme, StagePos: stage.Pos,
			})
		case token.LAYOUT:
			p.advance()
			if err := p.parseLayoutBlock(decl); err != nil {
				return nil, err
			}
		default:
			p.errorf("expected 'shader' or 'layout' in pipeline, found %s", p.cur())
			return nil, errSync
		}
	}
	if _, err := p.expect(token.RBRACE, "pipeline declaration"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseLayoutBlock(decl *ast.PipelineDecl) error {
	if _, err := p.expect(token.LBRACE, "layout block"); err != nil {
		return err
	}
	for !p.at(token.RBRACE) {
		bind, err := p.expect(token.BINDING, "layout block")
		if err != nil {
			return err
		}
		idx, err := p.expect(token.INT, "binding clause")
		if err != nil {
			return err
		}
		if _, err := p.expect(token.COLON, "binding clause"); err != nil {
			return err
		}
		kind, err := p.expect(token.IDENT, "binding clause")
		if err != nil {
			return err
		}
		tname, err := p.expect(token.IDENT, "binding clause")
		if err != nil {
			return err
		}
		decl.Bindings = append(decl.Bindings, ast.BindingClause{
			Index:    atoiRaw(idx.Lexeme),
			Kind:     kind.Lexeme,
			TypeName: tname.Lexeme,
			BindPos:  bind.Pos,
		})
	}
	_, err := p.expect(token.RBRACE, "layout block")
	return err
}

func (p *parser) parseShaderDecl(attrs []*ast.Attribute) (*ast.ShaderDecl, error) {
	kw := p.advance()
	stage, err := p.expect(token.IDENT, "shader declaration")
	if err != nil {
		return nil, err
	}
	path, err := p.expect(token.STRING, "shader declaration")
	if err != nil {
		return nil, err
	}
	// Optional empty metadata body.
	if p.accept(token.LBRACE) {
		if _, err := p.expect(token.RBRACE, "shader declaration"); err != nil {
			return nil, err
		}
	}
	return &ast.ShaderDecl{
		Attrs: attrs, ShaderPos: kw.Pos,
		Stage: stage.Lexeme, StagePos: stage.Pos, Path: path.Lexeme,
	}, nil
}

func (p *parser) parseResourceDecl(attrs []*ast.Attribute) (*ast.ResourceDecl, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "resource declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON, "resource declaration"); err != nil {
		return nil, err
	}
	kind, err := p.expect(token.IDENT, "resource declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "resource declaration"); err != nil {
		return nil, err
	}
	path, err := p.expect(token.STRING, "resource declaration")
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	return &ast.ResourceDecl{
		Attrs: attrs, ResPos: kw.Pos,
		Name: name.Lexeme, NamePos: name.Pos,
		Kind: kind.Lexeme, KindPos: kind.Pos, Path: path.Lexeme,
	}, nil
}

func (p *parser) parseMeshDecl(attrs []*ast.Attribute) (*ast.MeshDecl, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "mesh declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "mesh declaration"); err != nil {
		return nil, err
	}
	path, err := p.expect(token.STRING, "mesh declaration")
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	return &ast.MeshDecl{Attrs: attrs, MeshPos: kw.Pos, Name: name.Lexeme, NamePos: name.Pos, Path: path.Lexeme}, nil
}

// -------------------------------------------------------------- type exprs

func (p *parser) parseTypeExpr() (ast.TypeExpr, error) {
	switch p.cur().Type {
	case token.LBRACKET:
		lb := p.advance()
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET, "array type"); err != nil {
			return nil, err
		}
		return &ast.ArrayType{Lbrack: lb.Pos, Elem: elem}, nil
	case token.QUESTION:
		q := p.advance()
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return &ast.OptionalType{Question: q.Pos, Elem: elem}, nil
	case token.QUERY:
		return p.parseQueryType()
	case token.IDENT:
		tok := p.advance()
		return &ast.NamedType{Name: tok.Lexeme, NamePos: tok.Pos}, nil
	default:
		p.errorf("expected type, found %s", p.cur())
		return nil, errSync
	}
}

func (p *parser) parseQueryType() (*ast.QueryType, error) {
	kw := p.advance()
	if _, err := p.expect(token.LT, "query type"); err != nil {
		return nil, err
	}
	qt := &ast.QueryType{QueryPos: kw.Pos}
	for {
		name, err := p.expect(token.IDENT, "query type")
		if err != nil {
			return nil, err
		}
		qt.Args = append(qt.Args, &ast.NamedType{Name: name.Lexeme, NamePos: name.Pos})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.GT, "query type"); err != nil {
		return nil, err
	}
	return qt, nil
}

// --------------------------------------------------------------- statements

func (p *parser) parseBlock() (*ast.BlockStmt, error) {
	lb, err := p.expect(token.LBRACE, "block")
	if err != nil {
		return nil, err
	}
	block := &ast.BlockStmt{Lbrace: lb.Pos}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.diags.Full() {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			p.syncStmt()
			continue
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE, "block"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Type {
	case token.LET:
		return p.parseLetStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		kw := p.advance()
		cond, err := p.parseHeaderExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{WhilePos: kw.Pos, Cond: cond, Body: body}, nil
	case token.LOOP:
		kw := p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.LoopStmt{LoopPos: kw.Pos, Body: body}, nil
	case token.FOR:
		return p.parseForInStmt()
	case token.RETURN:
		kw := p.advance()
		ret := &ast.ReturnStmt{RetPos: kw.Pos}
		if !p.at(token.SEMICOLON) {
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			ret.Value = val
		}
		if _, err := p.expect(token.SEMICOLON, "return statement"); err != nil {
			return nil, err
		}
		return ret, nil
	case token.DEFER:
		kw := p.advance()
		call, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "defer statement"); err != nil {
			return nil, err
		}
		return &ast.DeferStmt{DeferPos: kw.Pos, Call: call}, nil
	case token.MATCH:
		return p.parseMatchStmt()
	case token.BREAK:
		kw := p.advance()
		if _, err := p.expect(token.SEMICOLON, "break statement"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{BreakPos: kw.Pos}, nil
	case token.CONTINUE:
		kw := p.advance()
		if _, err := p.expect(token.SEMICOLON, "continue statement"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{ContPos: kw.Pos}, nil
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *parser) parseLetStmt() (*ast.LetStmt, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "let binding")
	if err != nil {
		return nil, err
	}
	stmt := &ast.LetStmt{LetPos: kw.Pos, Name: name.Lexeme, NamePos: name.Pos}
	if p.accept(token.COLON) {
		stmt.Type, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ASSIGN, "let binding"); err != nil {
		return nil, err
	}
	stmt.Value, err = p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "let binding"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseIfStmt() (*ast.IfStmt, error) {
	kw := p.advance()
	cond, err := p.parseHeaderExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{IfPos: kw.Pos, Cond: cond, Then: then}
	if p.accept(token.ELSE) {
		if p.at(token.IF) {
			stmt.Else, err = p.parseIfStmt()
		} else {
			stmt.Else, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseForInStmt() (*ast.ForInStmt, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "for loop")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN, "for loop"); err != nil {
		return nil, err
	}
	iter, err := p.parseHeaderExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForInStmt{ForPos: kw.Pos, Name: name.Lexeme, NamePos: name.Pos, Iter: iter, Body: body}, nil
}

func (p *parser) parseMatchStmt() (*ast.MatchStmt, error) {
	kw := p.advance()
	scrutinee, err := p.parseHeaderExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "match statement"); err != nil {
		return nil, err
	}
	stmt := &ast.MatchStmt{MatchPos: kw.Pos, Scrutinee: scrutinee}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.FATARROW, "match arm"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Arms = append(stmt.Arms, ast.MatchArm{Pattern: pat, Body: body})
		p.accept(token.COMMA)
	}
	if _, err := p.expect(token.RBRACE, "match statement"); err != nil {
		return nil, err
	}
	if len(stmt.Arms) == 0 {
		p.diags.Errorf(kw.Pos, "match statement has no arms")
		return nil, errSync
	}
	return stmt, nil
}

func (p *parser) parsePattern() (ast.Pattern, error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		return &ast.LiteralPattern{Lit: &ast.IntLit{Raw: tok.Lexeme, LitPos: tok.Pos}}, nil
	case token.FLOAT:
		p.advance()
		return &ast.LiteralPattern{Lit: &ast.FloatLit{Raw: tok.Lexeme, LitPos: tok.Pos}}, nil
	case token.MINUS:
		p.advance()
		lit := p.cur()
		switch lit.Type {
		case token.INT:
			p.advance()
			return &ast.LiteralPattern{Lit: &ast.IntLit{Raw: "-" + lit.Lexeme, LitPos: tok.Pos}}, nil
		case token.FLOAT:
			p.advance()
			return &ast.LiteralPattern{Lit: &ast.FloatLit{Raw: "-" + lit.Lexeme, LitPos: tok.Pos}}, nil
		}
		p.errorf("expected numeric literal after '-' in pattern, found %s", lit)
		return nil, errSync
	case token.STRING:
		p.advance()
		parts, err := p.splitInterp(tok)
		if err != nil {
			return nil, err
		}
		for _, part := range parts {
			if part.Var != "" {
				p.diags.Errorf(part.PartPos, "string pattern cannot contain interpolation")
				return nil, errSync
			}
		}
		return &ast.LiteralPattern{Lit: &ast.StringLit{LitPos: tok.Pos, Parts: parts}}, nil
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.LiteralPattern{Lit: &ast.BoolLit{Value: tok.Type == token.TRUE, LitPos: tok.Pos}}, nil
	case token.IDENT:
		p.advance()
		if tok.Lexeme == "_" {
			return &ast.WildcardPattern{UnderPos: tok.Pos}, nil
		}
		return &ast.BindPattern{Name: tok.Lexeme, NamePos: tok.Pos}, nil
	default:
		p.errorf("expected pattern, found %s", tok)
		return nil, errSync
	}
}

// parseSimpleStmt parses an expression statement or an assignment.
func (p *parser) parseSimpleStmt() (ast.Stmt, error) {
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type.IsAssignOp() {
		op := p.advance()
		if !isAssignable(lhs) {
			p.diags.Errorf(lhs.Pos(), "cannot assign to %s", lhs)
			return nil, errSync
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "assignment"); err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Target: lhs, Op: op.Type, OpPos: op.Pos, Value: rhs}, nil
	}
	if _, err := p.expect(token.SEMICOLON, "expression statement"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: lhs}, nil
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.MemberExpr, *ast.IndexExpr:
		return true
	}
	return false
}

func atoiRaw(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
