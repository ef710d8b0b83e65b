package token

import "fmt"

// Type identifies the category of a lexed token.
type Type int

const (
	EOF Type = iota // sentinel: end of input

	// Literals
	IDENT  // variable / function / type name
	INT    // decimal integer literal
	FLOAT  // floating point literal
	STRING // string literal "..." (interpolation spans are split by the parser)

	// Keywords
	LET
	FN
	STRUCT
	COMPONENT     // "component"
	COMPONENTSOA  // "component_soa"
	TYPE          // "type" alias declaration
	PIPELINE
	SHADER
	RESOURCE
	MESH
	QUERY
	LAYOUT
	BINDING
	IF
	ELSE
	WHILE
	LOOP
	FOR
	IN
	RETURN
	DEFER
	MATCH
	BREAK
	CONTINUE
	TRUE
	FALSE
	NULL

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // .
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	AT        // @   (attribute marker, @name)
	ATBRACKET // @[  (bracketed attribute marker, @[name(...)])
	FATARROW  // =>  (match arm)
	QUESTION  // ?   (optional type prefix)

	// Operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	NOT     // !
	ANDAND  // &&
	OROR    // ||

	// Assignment / comparison  (order matters: ASSIGN before EQ)
	ASSIGN      // =
	PLUSASSIGN  // +=
	MINUSASSIGN // -=
	STARASSIGN  // *=
	SLASHASSIGN // /=

	EQ  // ==
	NEQ // !=
	LT  // <
	LE  // <=
	GT  // >
	GE  // >=
)

var names = map[Type]string{
	EOF:          "EOF",
	IDENT:        "IDENT",
	INT:          "INT",
	FLOAT:        "FLOAT",
	STRING:       "STRING",
	LET:          "let",
	FN:           "fn",
	STRUCT:       "struct",
	COMPONENT:    "component",
	COMPONENTSOA: "component_soa",
	TYPE:         "type",
	PIPELINE:     "pipeline",
	SHADER:       "shader",
	RESOURCE:     "resource",
	MESH:         "mesh",
	QUERY:        "query",
	LAYOUT:       "layout",
	BINDING:      "binding",
	IF:           "if",
	ELSE:         "else",
	WHILE:        "while",
	LOOP:         "loop",
	FOR:          "for",
	IN:           "in",
	RETURN:       "return",
	DEFER:        "defer",
	MATCH:        "match",
	BREAK:        "break",
	CONTINUE:     "continue",
	TRUE:         "true",
	FALSE:        "false",
	NULL:         "null",
	LBRACE:       "{",
	RBRACE:       "}",
	LPAREN:       "(",
	RPAREN:       ")",
	LBRACKET:     "[",
	RBRACKET:     "]",
	DOT:          ".",
	COMMA:        ",",
	COLON:        ":",
	SEMICOLON:    ";",
	AT:           "@",
	ATBRACKET:    "@[",
	FATARROW:     "=>",
	QUESTION:     "?",
	PLUS:         "+",
	MINUS:        "-",
	STAR:         "*",
	SLASH:        "/",
	PERCENT:      "%",
	NOT:          "!",
	ANDAND:       "&&",
	OROR:         "||",
	ASSIGN:       "=",
	PLUSASSIGN:   "+=",
	MINUSASSIGN:  "-=",
	STARASSIGN:   "*=",
	SLASHASSIGN:  "/=",
	EQ:           "==",
	NEQ:          "!=",
	LT:           "<",
	LE:           "<=",
	GT:           ">",
	GE:           ">=",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Pos is a location in the source buffer. Line and Column are 1-based,
// Offset is the 0-based byte offset of the token's first byte.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single classified lexeme. Produced once by the lexer,
// consumed once by the parser; never mutated.
type Token struct {
	Type   Type
	Lexeme string
	Pos    Pos
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, INT, FLOAT, STRING:
		return fmt.Sprintf("%s(%q)", t.Type, t.Lexeme)
	default:
		return t.Type.String()
	}
}

// IsAssignOp reports whether t is one of the assignment operators,
// including the compound forms.
func (t Type) IsAssignOp() bool {
	switch t {
	case ASSIGN, PLUSASSIGN, MINUSASSIGN, STARASSIGN, SLASHASSIGN:
		return true
	}
	return false
}
