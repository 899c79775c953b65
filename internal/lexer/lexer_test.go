package lexer

import (
	"testing"

	"github.com/sergeych/lyng-sub006/internal/source"
)

func tokenize(t *testing.T, text string) []Token {
	t.Helper()
	l := New(source.New("test", text))
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func types(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func assertTypes(t *testing.T, toks []Token, want ...TokenType) {
	t.Helper()
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("token count: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestOperators(t *testing.T) {
	cases := []struct {
		in   string
		want []TokenType
	}{
		{"==", []TokenType{EQ, EOF}},
		{"===", []TokenType{EQ_EQ_EQ, EOF}},
		{"!=", []TokenType{NOT_EQ, EOF}},
		{"!==", []TokenType{NOT_EQ_EQ, EOF}},
		{"<=>", []TokenType{SHUTTLE, EOF}},
		{"?:", []TokenType{ELVIS, EOF}},
		{"?.", []TokenType{QUESTION_DOT, EOF}},
		{"?[", []TokenType{QUESTION_LBRACK, EOF}},
		{"?(", []TokenType{QUESTION_LPAREN, EOF}},
		{"->", []TokenType{ARROW, EOF}},
		{"=>", []TokenType{FAT_ARROW, EOF}},
		{"::", []TokenType{SCOPE, EOF}},
		{"..", []TokenType{RANGE_INCL, EOF}},
		{"..<", []TokenType{RANGE_EXCL, EOF}},
		{"...", []TokenType{SPREAD, EOF}},
		{"!in", []TokenType{NOTIN, EOF}},
		{"!is", []TokenType{ISNOT, EOF}},
		{"in", []TokenType{IN, EOF}},
		{"is", []TokenType{IS, EOF}},
	}
	for _, c := range cases {
		assertTypes(t, tokenize(t, c.in), c.want...)
	}
}

func TestNumbers(t *testing.T) {
	toks := tokenize(t, "1 1.5 1e10 1.5e-3 0xFF 1.")
	if toks[0].Type != INT || toks[0].Text != "1" {
		t.Fatalf("int: %v", toks[0])
	}
	if toks[1].Type != REAL || toks[1].Text != "1.5" {
		t.Fatalf("real: %v", toks[1])
	}
	if toks[2].Type != REAL || toks[2].Text != "1e10" {
		t.Fatalf("exp: %v", toks[2])
	}
	if toks[3].Type != REAL || toks[3].Text != "1.5e-3" {
		t.Fatalf("exp2: %v", toks[3])
	}
	if toks[4].Type != HEX || toks[4].Text != "0xFF" {
		t.Fatalf("hex: %v", toks[4])
	}
	// "1." with no following digit: '.' must NOT be absorbed into the number.
	if toks[5].Type != INT || toks[5].Text != "1" {
		t.Fatalf("trailing dot: %v", toks[5])
	}
	if toks[6].Type != DOT {
		t.Fatalf("trailing dot token: %v", toks[6])
	}
}

func TestStrings(t *testing.T) {
	toks := tokenize(t, `"a\nb\tc\\d\"e"`)
	if toks[0].Type != STRING || toks[0].Text != "a\nb\tc\\d\"e" {
		t.Fatalf("got %q", toks[0].Text)
	}
}

func TestMultilineStringDedent(t *testing.T) {
	src := "\"\n  hello\n  world\n  \"\n"
	toks := tokenize(t, src)
	if toks[0].Type != STRING {
		t.Fatalf("expected string, got %v", toks[0])
	}
	if toks[0].Text != "hello\nworld" {
		t.Fatalf("dedent: %q", toks[0].Text)
	}
}

func TestCharLiteral(t *testing.T) {
	toks := tokenize(t, `'a' '\n'`)
	if toks[0].Type != CHAR || toks[0].Text != "a" {
		t.Fatalf("char: %v", toks[0])
	}
	if toks[1].Type != CHAR || toks[1].Text != "\n" {
		t.Fatalf("escaped char: %q", toks[1].Text)
	}
}

func TestLabels(t *testing.T) {
	toks := tokenize(t, "outer@ while (true) { break @outer }")
	assertTypes(t, toks, LABEL, WHILE, LPAREN, TRUE, RPAREN, LBRACE, BREAK, ATLABEL, RBRACE, EOF)
	if toks[0].Text != "outer" {
		t.Fatalf("label text: %q", toks[0].Text)
	}
	if toks[7].Text != "outer" {
		t.Fatalf("atlabel text: %q", toks[7].Text)
	}
}

func TestNewlineIsToken(t *testing.T) {
	toks := tokenize(t, "val x = 1\nval y = 2")
	found := false
	for _, tok := range toks {
		if tok.Type == NEWLINE {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a NEWLINE token")
	}
}

func TestCommentsSkippedByDefault(t *testing.T) {
	toks := tokenize(t, "val x = 1 // comment\n/* block */ val y = 2")
	for _, tok := range toks {
		if tok.Type == COMMENT {
			t.Fatalf("comment leaked through without WithPreserveComments: %v", tok)
		}
	}
}

func TestCommentsPreserved(t *testing.T) {
	l := New(source.New("t", "// hi\nval x = 1"), WithPreserveComments(true))
	tok := l.Next()
	if tok.Type != COMMENT {
		t.Fatalf("expected COMMENT, got %v", tok)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(source.New("t", `"abc`))
	l.Next()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestShebangAndCRLFHandledBySource(t *testing.T) {
	src := source.New("t", "#!/usr/bin/env lyng\r\nval x = 1\r\n")
	if src.Text[0] == '#' {
		t.Fatal("shebang should have been stripped")
	}
	if contains := (func() bool {
		for _, r := range src.Text {
			if r == '\r' {
				return true
			}
		}
		return false
	})(); contains {
		t.Fatal("CRLF should have been normalized to LF")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New(source.New("t", "val x"))
	first := l.Peek(0)
	second := l.Peek(0)
	if first != second {
		t.Fatalf("peek mutated state: %v != %v", first, second)
	}
	consumed := l.Next()
	if consumed != first {
		t.Fatalf("next after peek mismatch: %v != %v", consumed, first)
	}
}
