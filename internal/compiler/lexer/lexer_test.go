package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/compiler/token"
)

func kinds(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []token.Type
		wantErr  string
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []token.Type{token.EOF},
		},
		{
			name:  "Operators",
			input: "+ - * / % ! && || == != < <= > >= = += -= *= /= =>",
			expected: []token.Type{
				token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
				token.NOT, token.ANDAND, token.OROR,
				token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE,
				token.ASSIGN, token.PLUSASSIGN, token.MINUSASSIGN,
				token.STARASSIGN, token.SLASHASSIGN, token.FATARROW,
				token.EOF,
			},
		},
		{
			name:  "KeywordsAndIdentifiers",
			input: "let fn struct component component_soa query for in match componentish _x",
			expected: []token.Type{
				token.LET, token.FN, token.STRUCT, token.COMPONENT,
				token.COMPONENTSOA, token.QUERY, token.FOR, token.IN,
				token.MATCH, token.IDENT, token.IDENT, token.EOF,
			},
		},
		{
			name:  "Numbers",
			input: "123 0 0.5 16.25",
			expected: []token.Type{
				token.INT, token.INT, token.FLOAT, token.FLOAT, token.EOF,
			},
		},
		{
			name:  "MemberAccessOnInt",
			input: "q.positions",
			expected: []token.Type{
				token.IDENT, token.DOT, token.IDENT, token.EOF,
			},
		},
		{
			name:  "Attributes",
			input: "@hot @system(update, after = physics) @[cuda]",
			expected: []token.Type{
				token.AT, token.IDENT,
				token.AT, token.IDENT, token.LPAREN, token.IDENT, token.COMMA,
				token.IDENT, token.ASSIGN, token.IDENT, token.RPAREN,
				token.ATBRACKET, token.IDENT, token.RBRACKET,
				token.EOF,
			},
		},
		{
			name:  "QueryType",
			input: "query<Position, Velocity>",
			expected: []token.Type{
				token.QUERY, token.LT, token.IDENT, token.COMMA, token.IDENT,
				token.GT, token.EOF,
			},
		},
		{
			name:  "CommentsSkipped",
			input: "let x = 1; // trailing\n/* block\ncomment */ let y = 2;",
			expected: []token.Type{
				token.LET, token.IDENT, token.ASSIGN, token.INT, token.SEMICOLON,
				token.LET, token.IDENT, token.ASSIGN, token.INT, token.SEMICOLON,
				token.EOF,
			},
		},
		{
			name:     "StringWithInterpolationSpan",
			input:    `"Health: {health}"`,
			expected: []token.Type{token.STRING, token.EOF},
		},
		{
			name:    "UnterminatedString",
			input:   `"oops`,
			wantErr: "unterminated string literal",
		},
		{
			name:    "UnterminatedBlockComment",
			input:   "/* never closed",
			wantErr: "unterminated block comment",
		},
		{
			name:    "LoneAmpersand",
			input:   "a & b",
			wantErr: "did you mean '&&'",
		},
		{
			name:    "BadNumericSuffix",
			input:   "12abc",
			wantErr: "numeric literal",
		},
		{
			name:    "IllegalCharacter",
			input:   "let x = #;",
			wantErr: "unexpected character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kinds(toks))
		})
	}
}

func TestLexPositions(t *testing.T) {
	toks, err := Lex("let x = 1;\nlet y = 2;")
	require.NoError(t, err)

	// First token of each line.
	assert.Equal(t, token.Pos{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.LET, toks[5].Type)
	assert.Equal(t, token.Pos{Line: 2, Column: 1, Offset: 11}, toks[5].Pos)

	// Column advances within a line.
	assert.Equal(t, "x", toks[1].Lexeme)
	assert.Equal(t, 5, toks[1].Pos.Column)
}

func TestLexStringEscapes(t *testing.T) {
	toks, err := Lex(`"a\nb\t\"c\""`)
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "a\nb\t\"c\"", toks[0].Lexeme)

	_, err = Lex(`"\q"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown escape sequence")
}

func TestLexErrorPosition(t *testing.T) {
	_, err := Lex("let x = 1;\n  #")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2:3")
}

// Re-lexing the space-joined lexemes of a token stream yields the same
// kinds in the same order. Strings are excluded since their lexemes hold
// the unescaped value, not source text.
func TestRelexStability(t *testing.T) {
	src := `
@system(update, after = physics)
fn update(q: query<Position, Velocity>) {
	for entity in q {
		entity.Position.x += entity.Velocity.x * 0.016;
	}
}`
	toks, err := Lex(src)
	require.NoError(t, err)

	var parts []string
	for _, tok := range toks {
		if tok.Type == token.EOF {
			break
		}
		parts = append(parts, tok.Lexeme)
	}
	again, err := Lex(strings.Join(parts, " "))
	require.NoError(t, err)
	assert.Equal(t, kinds(toks), kinds(again))
}
