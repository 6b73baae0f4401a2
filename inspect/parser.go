package inspect

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type token struct {
	text   string
	quoted bool
}

// tokenize splits a command line on whitespace. Double-quoted tokens may
// contain spaces and the escapes \" and \\. An unquoted # starts a comment.
func tokenize(line string) ([]token, error) {
	var toks []token
	rs := []rune(line)
	for i := 0; i < len(rs); {
		switch {
		case unicode.IsSpace(rs[i]):
			i++
		case rs[i] == '#':
			return toks, nil
		case rs[i] == '"':
			var b strings.Builder
			j := i + 1
			for ; j < len(rs) && rs[j] != '"'; j++ {
				if rs[j] == '\\' && j+1 < len(rs) && (rs[j+1] == '"' || rs[j+1] == '\\') {
					j++
				}
				b.WriteRune(rs[j])
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("quoted text at token %d: %w", len(toks), io.ErrUnexpectedEOF)
			}
			toks = append(toks, token{text: b.String(), quoted: true})
			i = j + 1
		default:
			j := i
			for j < len(rs) && !unicode.IsSpace(rs[j]) {
				j++
			}
			toks = append(toks, token{text: string(rs[i:j])})
			i = j
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	cur  int
}

func newParser(line string) (parser, error) {
	toks, err := tokenize(line)
	if err != nil {
		return parser{}, err
	}
	return parser{toks: toks}, nil
}

func (p *parser) Done() bool {
	return p.cur >= len(p.toks)
}

func (p *parser) Remaining() int {
	return len(p.toks) - p.cur
}

func (p *parser) Read(thing string) (token, error) {
	at := p.cur
	if p.Done() {
		return token{}, fmt.Errorf("%s at token %d: %w", thing, at, io.ErrUnexpectedEOF)
	}
	p.cur++
	return p.toks[at], nil
}

func (p *parser) ReadWord(thing string) (string, error) {
	t, err := p.Read(thing)
	if err != nil {
		return "", err
	}
	return t.text, nil
}

func (p *parser) ReadInt(thing string) (int, error) {
	at := p.cur
	t, err := p.Read(thing)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, fmt.Errorf("%s at token %d: %w", thing, at, err)
	}
	return n, nil
}

// ReadVar reads a variable name, with or without its leading $.
func (p *parser) ReadVar(thing string) (string, error) {
	name, err := p.ReadWord(thing)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(name, "$"), nil
}

// ReadEnd fails if tokens are left over.
func (p *parser) ReadEnd(thing string) error {
	if !p.Done() {
		return fmt.Errorf("%s at token %d: unexpected %q", thing, p.cur, p.toks[p.cur].text)
	}
	return nil
}
