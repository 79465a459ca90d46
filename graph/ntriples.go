package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Encode writes g as sorted N-Triples.
func Encode(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, t := range g.Triples() {
		if _, err := bw.WriteString(t.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Marshal returns g as sorted N-Triples.
func Marshal(g *Graph) string {
	var b strings.Builder
	_ = Encode(&b, g)
	return b.String()
}

// Decode reads an N-Triples document.
func Decode(r io.Reader) (*Graph, error) {
	g := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("n-triples line %d: %w", line, err)
		}
		g.Add(t)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Unmarshal parses an N-Triples string.
func Unmarshal(s string) (*Graph, error) {
	return Decode(strings.NewReader(s))
}

// MustUnmarshal parses s and panics on error. Intended for tests and fixtures.
func MustUnmarshal(s string) *Graph {
	g, err := Unmarshal(s)
	if err != nil {
		panic(err)
	}
	return g
}

type lexer struct {
	s   string
	pos int
}

func parseLine(s string) (Triple, error) {
	lx := &lexer{s: s}

	subj, err := lx.term()
	if err != nil {
		return Triple{}, err
	}
	if subj.IsLiteral() {
		return Triple{}, fmt.Errorf("literal subject")
	}
	pred, err := lx.term()
	if err != nil {
		return Triple{}, err
	}
	if !pred.IsIRI() {
		return Triple{}, fmt.Errorf("predicate must be an IRI")
	}
	obj, err := lx.term()
	if err != nil {
		return Triple{}, err
	}

	lx.skipSpace()
	if lx.pos >= len(lx.s) || lx.s[lx.pos] != '.' {
		return Triple{}, fmt.Errorf("expected '.' at column %d", lx.pos+1)
	}
	lx.pos++
	lx.skipSpace()
	if lx.pos < len(lx.s) && lx.s[lx.pos] != '#' {
		return Triple{}, fmt.Errorf("trailing content at column %d", lx.pos+1)
	}
	return Triple{Subject: subj, Predicate: pred, Object: obj}, nil
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.s) && (lx.s[lx.pos] == ' ' || lx.s[lx.pos] == '\t') {
		lx.pos++
	}
}

func (lx *lexer) term() (Term, error) {
	lx.skipSpace()
	if lx.pos >= len(lx.s) {
		return Term{}, fmt.Errorf("unexpected end of line")
	}
	switch {
	case lx.s[lx.pos] == '<':
		iri, err := lx.iri()
		return NewIRI(iri), err
	case strings.HasPrefix(lx.s[lx.pos:], "_:"):
		lx.pos += 2
		start := lx.pos
		for lx.pos < len(lx.s) && isLabelByte(lx.s[lx.pos]) {
			lx.pos++
		}
		for lx.pos > start && lx.s[lx.pos-1] == '.' {
			lx.pos--
		}
		if lx.pos == start {
			return Term{}, fmt.Errorf("empty blank node label")
		}
		return NewBlank(lx.s[start:lx.pos]), nil
	case lx.s[lx.pos] == '"':
		return lx.literal()
	}
	return Term{}, fmt.Errorf("unexpected %q at column %d", lx.s[lx.pos], lx.pos+1)
}

func isLabelByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

func (lx *lexer) iri() (string, error) {
	lx.pos++ // '<'
	var b strings.Builder
	for lx.pos < len(lx.s) {
		c := lx.s[lx.pos]
		switch c {
		case '>':
			lx.pos++
			return b.String(), nil
		case '\\':
			r, err := lx.unicodeEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			b.WriteByte(c)
			lx.pos++
		}
	}
	return "", fmt.Errorf("unterminated IRI")
}

func (lx *lexer) literal() (Term, error) {
	lx.pos++ // opening quote
	var b strings.Builder
	closed := false
	for lx.pos < len(lx.s) && !closed {
		c := lx.s[lx.pos]
		switch c {
		case '"':
			lx.pos++
			closed = true
		case '\\':
			if lx.pos+1 >= len(lx.s) {
				return Term{}, fmt.Errorf("dangling escape")
			}
			switch lx.s[lx.pos+1] {
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 'f':
				b.WriteByte('\f')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case '\\':
				b.WriteByte('\\')
			case 'u', 'U':
				r, err := lx.unicodeEscape()
				if err != nil {
					return Term{}, err
				}
				b.WriteRune(r)
				continue
			default:
				return Term{}, fmt.Errorf("invalid escape \\%c", lx.s[lx.pos+1])
			}
			lx.pos += 2
		default:
			_, size := utf8.DecodeRuneInString(lx.s[lx.pos:])
			b.WriteString(lx.s[lx.pos : lx.pos+size])
			lx.pos += size
		}
	}
	if !closed {
		return Term{}, fmt.Errorf("unterminated literal")
	}

	value := b.String()
	switch {
	case strings.HasPrefix(lx.s[lx.pos:], "@"):
		lx.pos++
		start := lx.pos
		for lx.pos < len(lx.s) && (isAlnum(lx.s[lx.pos]) || lx.s[lx.pos] == '-') {
			lx.pos++
		}
		if lx.pos == start {
			return Term{}, fmt.Errorf("empty language tag")
		}
		return NewLangLiteral(value, lx.s[start:lx.pos]), nil
	case strings.HasPrefix(lx.s[lx.pos:], "^^<"):
		lx.pos += 2
		dt, err := lx.iri()
		if err != nil {
			return Term{}, err
		}
		return NewTypedLiteral(value, dt), nil
	}
	return NewLiteral(value), nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// unicodeEscape decodes \uXXXX or \UXXXXXXXX at the current position.
func (lx *lexer) unicodeEscape() (rune, error) {
	if lx.pos+1 >= len(lx.s) {
		return 0, fmt.Errorf("dangling escape")
	}
	width := 0
	switch lx.s[lx.pos+1] {
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return 0, fmt.Errorf("invalid escape \\%c", lx.s[lx.pos+1])
	}
	start := lx.pos + 2
	if start+width > len(lx.s) {
		return 0, fmt.Errorf("short unicode escape")
	}
	v, err := strconv.ParseUint(lx.s[start:start+width], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid unicode escape: %w", err)
	}
	lx.pos = start + width
	return rune(v), nil
}
