// Package miniscan is a deliberately small source scanner used only by
// cmd/ren's REPL and script-file mode to turn source text into cells. A full scanner (every
// datatype literal, file/line tracking, on-demand UTF-8 fragment scanning
// for variadic feeds) belongs to a host, not the interpreter core; this is
// just enough syntax — integers, words, set-words, strings, blocks,
// commas — to drive the core end to end from a terminal.
package miniscan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ren-core/ren/interp"
)

// Scanner turns src into a block of cells, interning words against syms.
type Scanner struct {
	src  []rune
	pos  int
	syms interface{ Intern(string) *interp.Symbol }
}

// New builds a scanner over src.
func New(src string, syms interface{ Intern(string) *interp.Symbol }) *Scanner {
	return &Scanner{src: []rune(src), syms: syms}
}

// ScanBlock scans src to end of input, returning the top-level array
// series.
func (s *Scanner) ScanBlock() (*interp.Series, error) {
	cells, err := s.scanUntil(0)
	if err != nil {
		return nil, err
	}
	return interp.NewArray(cells...), nil
}

func (s *Scanner) scanUntil(closer rune) ([]Cell2, error) {
	var cells []Cell2
	for {
		s.skipSpaceAndComments()
		if s.atEnd() {
			if closer != 0 {
				return nil, fmt.Errorf("miniscan: unexpected end of input, missing %q", closer)
			}
			return toCells(cells), nil
		}
		r := s.peek()
		if closer != 0 && r == closer {
			s.pos++
			return toCells(cells), nil
		}
		switch {
		case r == '[':
			s.pos++
			inner, err := s.scanUntil(']')
			if err != nil {
				return nil, err
			}
			arr := interp.NewArray(toCellSlice(inner)...)
			block := interp.BlockCell(arr)
			if !s.atEnd() && s.peek() == ':' {
				s.pos++
				block.Heart = interp.HeartSetBlock
			}
			cells = append(cells, Cell2{block})
		case r == '(':
			s.pos++
			inner, err := s.scanUntil(')')
			if err != nil {
				return nil, err
			}
			arr := interp.NewArray(toCellSlice(inner)...)
			cells = append(cells, Cell2{interp.GroupCell(arr)})
		case r == ',':
			s.pos++
			cells = append(cells, Cell2{interp.Comma()})
		case r == '"':
			str, err := s.scanString()
			if err != nil {
				return nil, err
			}
			cells = append(cells, Cell2{interp.TextCell(str)})
		case unicode.IsDigit(r) || (r == '-' && s.pos+1 < len(s.src) && unicode.IsDigit(s.src[s.pos+1])):
			n, err := s.scanInteger()
			if err != nil {
				return nil, err
			}
			cells = append(cells, Cell2{interp.Integer(n)})
		case r == '\'':
			s.pos++
			if !isWordStart(s.peek()) {
				return nil, fmt.Errorf("miniscan: expected word after '")
			}
			word := s.scanWord()
			cell := s.wordCell(word)
			cell.Quote = cell.Quote.Quoted()
			cells = append(cells, Cell2{cell})
		case isWordStart(r):
			word := s.scanWord()
			cells = append(cells, Cell2{s.wordCell(word)})
		default:
			return nil, fmt.Errorf("miniscan: unexpected character %q", r)
		}
	}
}

// Cell2 avoids importing interp.Cell by value awkwardly in a slice literal
// built incrementally; it is just a one-field wrapper.
type Cell2 struct{ C interp.Cell }

func toCells(in []Cell2) []Cell2 { return in }

func toCellSlice(in []Cell2) []interp.Cell {
	out := make([]interp.Cell, len(in))
	for i, c := range in {
		out[i] = c.C
	}
	return out
}

func (s *Scanner) wordCell(word string) interp.Cell {
	setWord := strings.HasSuffix(word, ":")
	getWord := strings.HasPrefix(word, ":")
	name := word
	if setWord {
		name = strings.TrimSuffix(word, ":")
	} else if getWord {
		name = strings.TrimPrefix(word, ":")
	}

	// `a/b/c` (path: action-call refinements) and `a.b.c` (tuple: object
	// field access) are plain words with embedded separators until now;
	// split them here rather than in the char-class scanner so that a bare
	// `/` (e.g. a division operator word) still scans as an ordinary word.
	if segs := splitSegments(name, '/'); segs != nil {
		return interp.PathCell(interp.NewArray(s.segmentCells(segs)...))
	}
	if segs := splitSegments(name, '.'); segs != nil {
		return interp.TupleCell(interp.NewArray(s.segmentCells(segs)...))
	}

	sym := s.syms.Intern(name)
	switch {
	case setWord:
		return interp.SetWordCell(sym, nil)
	case getWord:
		return interp.GetWordCell(sym, nil)
	default:
		return interp.WordCell(sym, nil)
	}
}

// splitSegments splits name on sep, returning nil unless every resulting
// segment is non-empty (so a bare separator word, or one with a leading,
// trailing, or doubled separator, is left to scan as a plain word).
func splitSegments(name string, sep rune) []string {
	if !strings.ContainsRune(name, sep) {
		return nil
	}
	parts := strings.Split(name, string(sep))
	for _, part := range parts {
		if part == "" {
			return nil
		}
	}
	return parts
}

func (s *Scanner) segmentCells(parts []string) []interp.Cell {
	cells := make([]interp.Cell, len(parts))
	for i, part := range parts {
		cells[i] = interp.WordCell(s.syms.Intern(part), nil)
	}
	return cells
}

func (s *Scanner) scanWord() string {
	start := s.pos
	if s.peek() == ':' {
		s.pos++
	}
	for !s.atEnd() && isWordChar(s.peek()) {
		s.pos++
	}
	if !s.atEnd() && s.peek() == ':' {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *Scanner) scanInteger() (int64, error) {
	start := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	for !s.atEnd() && unicode.IsDigit(s.peek()) {
		s.pos++
	}
	return strconv.ParseInt(string(s.src[start:s.pos]), 10, 64)
}

func (s *Scanner) scanString() (string, error) {
	s.pos++ // opening quote
	var b strings.Builder
	for {
		if s.atEnd() {
			return "", fmt.Errorf("miniscan: unterminated string")
		}
		r := s.peek()
		s.pos++
		if r == '"' {
			return b.String(), nil
		}
		b.WriteRune(r)
	}
}

func (s *Scanner) skipSpaceAndComments() {
	for !s.atEnd() {
		r := s.peek()
		if r == ';' {
			for !s.atEnd() && s.peek() != '\n' {
				s.pos++
			}
			continue
		}
		if unicode.IsSpace(r) {
			s.pos++
			continue
		}
		return
	}
}

func (s *Scanner) atEnd() bool { return s.pos >= len(s.src) }
func (s *Scanner) peek() rune  { return s.src[s.pos] }

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || strings.ContainsRune("+*-/_?!^:", r)
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("+*-/_?!^.", r)
}
