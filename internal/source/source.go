// Package source holds the raw text fed to the lexer and the line index
// used to turn byte offsets into human-readable positions.
package source

import "strings"

// Source is a named, line-indexed piece of program text. Every token and
// every node produced further down the pipeline carries a Position that
// points back into a Source.
type Source struct {
	Name  string
	Text  string
	lines []string
}

// New builds a Source from raw text. It normalizes CRLF to LF and strips a
// line-1 shebang (`#!...`), matching §6.2 of the spec: both are resolved
// once here so every downstream consumer (lexer, any future formatter) sees
// already-normalized text.
func New(name, text string) *Source {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if strings.HasPrefix(text, "#!") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
	}
	return &Source{
		Name:  name,
		Text:  text,
		lines: strings.Split(text, "\n"),
	}
}

// Line returns the 1-indexed source line, or "" past the end of the file.
func (s *Source) Line(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}
	return s.lines[n-1]
}

// LineCount returns the number of lines in the source.
func (s *Source) LineCount() int {
	return len(s.lines)
}

// Position locates a single point in a Source by line and column, both
// 1-indexed and counted in runes (not bytes), plus a byte Offset used for
// substring extraction.
type Position struct {
	Source *Source
	Line   int
	Column int
	Offset int
	// End marks a position one past the final character of the source,
	// used for EOF tokens and for "end" sentinels in open ranges.
	End bool
}

// Back returns the position one column to the left, clamped to column 1.
// Used by diagnostics that point at the token just consumed rather than
// the one about to be read.
func (p Position) Back() Position {
	if p.Column > 1 {
		p.Column--
		p.Offset--
	}
	return p
}

// String renders "name:line:col" for error messages.
func (p Position) String() string {
	name := "<input>"
	if p.Source != nil && p.Source.Name != "" {
		name = p.Source.Name
	}
	if p.End {
		return name + ":EOF"
	}
	return name + ":" + itoa(p.Line) + ":" + itoa(p.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
