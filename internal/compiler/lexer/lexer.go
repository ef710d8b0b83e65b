package lexer

import (
	"fmt"
	"unicode"

	"github.com/lumen-lang/lumen/internal/compiler/token"
)

// keywords maps source text to its keyword token type.
var keywords = map[string]token.Type{
	"let":           token.LET,
	"fn":            token.FN,
	"struct":        token.STRUCT,
	"component":     token.COMPONENT,
	"component_soa": token.COMPONENTSOA,
	"type":          token.TYPE,
	"pipeline":      token.PIPELINE,
	"shader":        token.SHADER,
	"resource":      token.RESOURCE,
	"mesh":          token.MESH,
	"query":         token.QUERY,
	"layout":        token.LAYOUT,
	"binding":       token.BINDING,
	"if":            token.IF,
	"else":          token.ELSE,
	"while":         token.WHILE,
	"loop":          token.LOOP,
	"for":           token.FOR,
	"in":            token.IN,
	"return":        token.RETURN,
	"defer":         token.DEFER,
	"match":         token.MATCH,
	"break":         token.BREAK,
	"continue":      token.CONTINUE,
	"true":          token.TRUE,
	"false":         token.FALSE,
	"null":          token.NULL,
}

// Error is a lexical error with the position of the offending input.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src    []rune
	pos    int // index of the next rune to consume
	offset int // byte offset of the next rune
	line   int // current 1-based source line
	column int // current 1-based source column
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, column: 1}
}

func (l *Lexer) errorf(pos token.Pos, format string, args ...any) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	l.offset += len(string(r))
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

// here captures the position of the next rune to consume.
func (l *Lexer) here() token.Pos {
	return token.Pos{Line: l.line, Column: l.column, Offset: l.offset}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed.
func (l *Lexer) skipBlockComment(opened token.Pos) error {
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance() // *
			l.advance() // /
			return nil
		}
		l.advance()
	}
	return l.errorf(opened, "unterminated block comment")
}

// scanIdent collects a full identifier or keyword token, longest match
// against the fixed keyword set. The first character must still be at
// l.peek().
func (l *Lexer) scanIdent() token.Token {
	pos := l.here()
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := token.IDENT
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return token.Token{Type: tt, Lexeme: lexeme, Pos: pos}
}

// scanNumber collects an integer or floating point literal. Width is not
// encoded in the literal; the type checker infers it. The first digit must
// still be at l.peek().
func (l *Lexer) scanNumber() (token.Token, error) {
	pos := l.here()
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}

	// A '.' followed by a digit makes this a float; a bare '.' is member
	// access on an integer and stays with the INT token.
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		l.advance() // .
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
		}
		if unicode.IsLetter(l.peek()) {
			return token.Token{}, l.errorf(l.here(), "unexpected character %q in numeric literal", l.peek())
		}
		return token.Token{Type: token.FLOAT, Lexeme: string(l.src[start:l.pos]), Pos: pos}, nil
	}

	if unicode.IsLetter(l.peek()) {
		return token.Token{}, l.errorf(l.here(), "unexpected character %q in numeric literal", l.peek())
	}
	return token.Token{Type: token.INT, Lexeme: string(l.src[start:l.pos]), Pos: pos}, nil
}

// scanString collects a string literal "...". Escape sequences are
// processed here; interpolation spans ({name}) are passed through raw and
// split later by the parser.
func (l *Lexer) scanString() (token.Token, error) {
	pos := l.here()
	l.advance() // consume opening "
	var val []rune

	for l.pos < len(l.src) {
		r := l.peek()
		if r == '"' {
			break
		}
		if r == '\n' {
			return token.Token{}, l.errorf(pos, "unterminated string literal")
		}
		if r == '\\' {
			l.advance() // consume backslash
			next := l.peek()
			switch next {
			case 'n':
				val = append(val, '\n')
			case 't':
				val = append(val, '\t')
			case '"':
				val = append(val, '"')
			case '\\':
				val = append(val, '\\')
			case '{':
				val = append(val, '\\', '{') // kept escaped; parser treats \{ as literal brace
			case '}':
				val = append(val, '\\', '}')
			default:
				return token.Token{}, l.errorf(l.here(), "unknown escape sequence \\%c", next)
			}
			l.advance()
			continue
		}
		val = append(val, r)
		l.advance()
	}

	if l.pos >= len(l.src) {
		return token.Token{}, l.errorf(pos, "unterminated string literal")
	}
	l.advance() // consume closing "

	return token.Token{Type: token.STRING, Lexeme: string(val), Pos: pos}, nil
}

// nextToken skips whitespace/comments and returns the next token.
func (l *Lexer) nextToken() (token.Token, error) {
	// Skip whitespace and both comment styles in a loop so that a comment
	// followed immediately by more whitespace is handled.
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return token.Token{Type: token.EOF, Pos: l.here()}, nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		if l.peek() == '/' && l.peek2() == '*' {
			opened := l.here()
			l.advance()
			l.advance()
			if err := l.skipBlockComment(opened); err != nil {
				return token.Token{}, err
			}
			continue
		}
		break
	}

	ch := l.peek()
	pos := l.here()

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent(), nil
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}
	if ch == '"' {
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return token.Token{Type: token.LBRACE, Lexeme: "{", Pos: pos}, nil
	case '}':
		return token.Token{Type: token.RBRACE, Lexeme: "}", Pos: pos}, nil
	case '(':
		return token.Token{Type: token.LPAREN, Lexeme: "(", Pos: pos}, nil
	case ')':
		return token.Token{Type: token.RPAREN, Lexeme: ")", Pos: pos}, nil
	case '[':
		return token.Token{Type: token.LBRACKET, Lexeme: "[", Pos: pos}, nil
	case ']':
		return token.Token{Type: token.RBRACKET, Lexeme: "]", Pos: pos}, nil
	case '.':
		return token.Token{Type: token.DOT, Lexeme: ".", Pos: pos}, nil
	case ',':
		return token.Token{Type: token.COMMA, Lexeme: ",", Pos: pos}, nil
	case ':':
		return token.Token{Type: token.COLON, Lexeme: ":", Pos: pos}, nil
	case ';':
		return token.Token{Type: token.SEMICOLON, Lexeme: ";", Pos: pos}, nil
	case '?':
		return token.Token{Type: token.QUESTION, Lexeme: "?", Pos: pos}, nil
	case '@':
		if l.peek() == '[' {
			l.advance()
			return token.Token{Type: token.ATBRACKET, Lexeme: "@[", Pos: pos}, nil
		}
		return token.Token{Type: token.AT, Lexeme: "@", Pos: pos}, nil
	case '+':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Type: token.PLUSASSIGN, Lexeme: "+=", Pos: pos}, nil
		}
		return token.Token{Type: token.PLUS, Lexeme: "+", Pos: pos}, nil
	case '-':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Type: token.MINUSASSIGN, Lexeme: "-=", Pos: pos}, nil
		}
		return token.Token{Type: token.MINUS, Lexeme: "-", Pos: pos}, nil
	case '*':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Type: token.STARASSIGN, Lexeme: "*=", Pos: pos}, nil
		}
		return token.Token{Type: token.STAR, Lexeme: "*", Pos: pos}, nil
	case '/':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Type: token.SLASHASSIGN, Lexeme: "/=", Pos: pos}, nil
		}
		return token.Token{Type: token.SLASH, Lexeme: "/", Pos: pos}, nil
	case '%':
		return token.Token{Type: token.PERCENT, Lexeme: "%", Pos: pos}, nil
	case '!':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Type: token.NEQ, Lexeme: "!=", Pos: pos}, nil
		}
		return token.Token{Type: token.NOT, Lexeme: "!", Pos: pos}, nil
	case '&':
		if l.peek() == '&' {
			l.advance()
			return token.Token{Type: token.ANDAND, Lexeme: "&&", Pos: pos}, nil
		}
		return token.Token{}, l.errorf(pos, "unexpected character %q (did you mean '&&'?)", ch)
	case '|':
		if l.peek() == '|' {
			l.advance()
			return token.Token{Type: token.OROR, Lexeme: "||", Pos: pos}, nil
		}
		return token.Token{}, l.errorf(pos, "unexpected character %q (did you mean '||'?)", ch)
	case '<':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Type: token.LE, Lexeme: "<=", Pos: pos}, nil
		}
		return token.Token{Type: token.LT, Lexeme: "<", Pos: pos}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Type: token.GE, Lexeme: ">=", Pos: pos}, nil
		}
		return token.Token{Type: token.GT, Lexeme: ">", Pos: pos}, nil
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return token.Token{Type: token.EQ, Lexeme: "==", Pos: pos}, nil
		}
		if l.peek() == '>' {
			l.advance()
			return token.Token{Type: token.FATARROW, Lexeme: "=>", Pos: pos}, nil
		}
		return token.Token{Type: token.ASSIGN, Lexeme: "=", Pos: pos}, nil
	default:
		return token.Token{}, l.errorf(pos, "unexpected character %q", ch)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil *Error on the first illegal character, unterminated
// string, or unterminated comment.
func Lex(src string) ([]token.Token, error) {
	l := newLexer(src)
	var tokens []token.Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}
