package lexer

import "github.com/sergeych/lyng-sub006/internal/source"

// Position is an alias kept local to the lexer package so callers don't
// need to import internal/source just to read a token's location.
type Position = source.Position

// Token is the atomic unit the lexer produces: text, a position for
// diagnostics, and a kind (§3.2).
type Token struct {
	Type TokenType
	Text string
	Pos  Position
}

// NewToken builds a Token at pos.
func NewToken(t TokenType, text string, pos Position) Token {
	return Token{Type: t, Text: text, Pos: pos}
}

// Is reports whether the token has one of the given types.
func (t Token) Is(types ...TokenType) bool {
	for _, tt := range types {
		if t.Type == tt {
			return true
		}
	}
	return false
}

func (t Token) String() string {
	return t.Type.String() + "(" + t.Text + ")"
}
