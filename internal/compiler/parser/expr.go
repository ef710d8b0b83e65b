package parser

import (
	"unicode"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/token"
)

// binaryPrec returns the precedence of a binary operator token, or 0 for
// non-operators. Higher binds tighter.
func binaryPrec(tt token.Type) int {
	switch tt {
	case token.OROR:
		return 1
	case token.ANDAND:
		return 2
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		return 3
	case token.PLUS, token.MINUS:
		return 4
	case token.STAR, token.SLASH, token.PERCENT:
		return 5
	}
	return 0
}

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(1)
}

// parseHeaderExpr parses the expression between a control keyword and its
// block with struct-literal lookahead off, so `if x { }` reads as a
// condition plus an empty body rather than a literal of type x.
func (p *parser) parseHeaderExpr() (ast.Expr, error) {
	prev := p.noStructLit
	p.noStructLit = true
	x, err := p.parseExpr()
	p.noStructLit = prev
	return x, err
}

// parseNestedExpr parses an expression inside parentheses or brackets,
// where the `{` ambiguity cannot arise, with struct-literal lookahead
// back on.
func (p *parser) parseNestedExpr() (ast.Expr, error) {
	prev := p.noStructLit
	p.noStructLit = false
	x, err := p.parseExpr()
	p.noStructLit = prev
	return x, err
}

func (p *parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := binaryPrec(p.cur().Type)
		if prec < minPrec {
			return left, nil
		}
		op := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{L: left, Op: op.Type, OpPos: op.Pos, R: right}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Type {
	case token.MINUS, token.NOT:
		op := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op.Type, OpPos: op.Pos, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case token.DOT:
			p.advance()
			name, err := p.expect(token.IDENT, "member access")
			if err != nil {
				return nil, err
			}
			switch {
			case name.Lexeme == "alloc_array" && p.at(token.LT):
				x, err = p.parseAllocArray(x)
				if err != nil {
					return nil, err
				}
			case name.Lexeme == "unwrap" && p.at(token.LPAREN) && p.peekN(1).Type == token.RPAREN:
				p.advance()
				p.advance()
				x = &ast.UnwrapExpr{X: x}
			default:
				x = &ast.MemberExpr{X: x, Name: name.Lexeme, NamePos: name.Pos}
			}
		case token.LPAREN:
			p.advance()
			call := &ast.CallExpr{Fun: x}
			for !p.at(token.RPAREN) {
				arg, err := p.parseNestedExpr()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				if !p.accept(token.COMMA) {
					break
				}
			}
			if _, err := p.expect(token.RPAREN, "call"); err != nil {
				return nil, err
			}
			x = call
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseNestedExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "index expression"); err != nil {
				return nil, err
			}
			x = &ast.IndexExpr{X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

// parseAllocArray parses the tail of `arena.alloc_array<T>(count)`; the
// member name is already consumed.
func (p *parser) parseAllocArray(arena ast.Expr) (ast.Expr, error) {
	if _, err := p.expect(token.LT, "alloc_array"); err != nil {
		return nil, err
	}
	elem, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.GT, "alloc_array"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "alloc_array"); err != nil {
		return nil, err
	}
	count, err := p.parseNestedExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "alloc_array"); err != nil {
		return nil, err
	}
	return &ast.AllocArrayExpr{Arena: arena, Elem: elem, Count: count}, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		return &ast.IntLit{Raw: tok.Lexeme, LitPos: tok.Pos}, nil
	case token.FLOAT:
		p.advance()
		return &ast.FloatLit{Raw: tok.Lexeme, LitPos: tok.Pos}, nil
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BoolLit{Value: tok.Type == token.TRUE, LitPos: tok.Pos}, nil
	case token.NULL:
		p.advance()
		return &ast.NullLit{LitPos: tok.Pos}, nil
	case token.STRING:
		p.advance()
		parts, err := p.splitInterp(tok)
		if err != nil {
			return nil, err
		}
		return &ast.StringLit{LitPos: tok.Pos, Parts: parts}, nil
	case token.IDENT:
		if !p.noStructLit && p.isStructLitAhead() {
			return p.parseStructLit()
		}
		p.advance()
		return &ast.Ident{Name: tok.Lexeme, NamePos: tok.Pos}, nil
	case token.LPAREN:
		p.advance()
		inner, err := p.parseNestedExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "parenthesized expression"); err != nil {
			return nil, err
		}
		return inner, nil
	case token.LBRACKET:
		lb := p.advance()
		lit := &ast.ArrayLit{Lbrack: lb.Pos}
		for !p.at(token.RBRACKET) {
			elem, err := p.parseNestedExpr()
			if err != nil {
				return nil, err
			}
			lit.Elems = append(lit.Elems, elem)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, err := p.expect(token.RBRACKET, "array literal"); err != nil {
			return nil, err
		}
		return lit, nil
	default:
		p.errorf("expected expression, found %s", tok)
		return nil, errSync
	}
}

// isStructLitAhead distinguishes `Name { field: ... }` from an identifier
// followed by a block (if/while/for conditions). A struct literal needs
// `{` then either `}` or `ident :`.
func (p *parser) isStructLitAhead() bool {
	if p.peekN(1).Type != token.LBRACE {
		return false
	}
	if p.peekN(2).Type == token.RBRACE {
		return true
	}
	return p.peekN(2).Type == token.IDENT && p.peekN(3).Type == token.COLON
}

func (p *parser) parseStructLit() (ast.Expr, error) {
	name := p.advance()
	p.advance() // {
	lit := &ast.StructLit{Name: name.Lexeme, NamePos: name.Pos}
	for !p.at(token.RBRACE) {
		fname, err := p.expect(token.IDENT, "struct literal")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, "struct literal"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, ast.StructLitField{Name: fname.Lexeme, NamePos: fname.Pos, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE, "struct literal"); err != nil {
		return nil, err
	}
	return lit, nil
}

// splitInterp splits a string literal into alternating text and variable
// parts. `{name}` is an interpolation span; `\{` and `\}` (kept escaped by
// the lexer) are literal braces; a lone `}` is literal text.
func (p *parser) splitInterp(tok token.Token) ([]ast.InterpPart, error) {
	src := []rune(tok.Lexeme)
	var parts []ast.InterpPart
	var text []rune

	flush := func() {
		if len(text) > 0 {
			parts = append(parts, ast.InterpPart{Text: string(text), PartPos: tok.Pos})
			text = nil
		}
	}

	for i := 0; i < len(src); i++ {
		r := src[i]
		if r == '\\' && i+1 < len(src) && (src[i+1] == '{' || src[i+1] == '}') {
			text = append(text, src[i+1])
			i++
			continue
		}
		if r != '{' {
			text = append(text, r)
			continue
		}

		// Interpolation span.
		j := i + 1
		for j < len(src) && src[j] != '}' {
			j++
		}
		if j >= len(src) {
			p.diags.Errorf(tok.Pos, "unterminated interpolation in string literal")
			return nil, errSync
		}
		name := string(src[i+1 : j])
		if name == "" {
			p.diags.Errorf(tok.Pos, "empty interpolation in string literal")
			return nil, errSync
		}
		if !isIdent(name) {
			p.diags.Errorf(tok.Pos, "interpolation must be a variable name, found '{%s}'", name)
			return nil, errSync
		}
		flush()
		parts = append(parts, ast.InterpPart{Var: name, PartPos: tok.Pos})
		i = j
	}
	flush()
	return parts, nil
}

func isIdent(s string) bool {
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}
