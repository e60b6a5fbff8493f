package loader

import (
	"fmt"
	"strings"
)

// parseDict reads a Python dict literal with string keys and string or None
// values
func parseDict(data []byte) (*Table, error) {
	p := &dictParser{src: string(data)}
	return p.parse()
}

type dictParser struct {
	src string
	pos int
}

func (p *dictParser) parse() (*Table, error) {
	t := NewTable()
	p.skipSpace()
	if !p.consume('{') {
		return nil, p.errorf("expected '{'")
	}
	for {
		p.skipSpace()
		if p.consume('}') {
			break
		}
		key, err := p.value()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(':') {
			return nil, p.errorf("expected ':' after key %q", key)
		}
		p.skipSpace()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		t.Put(key, val)
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume('}') {
			break
		}
		return nil, p.errorf("expected ',' or '}'")
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data")
	}
	return t, nil
}

func (p *dictParser) value() (string, error) {
	if strings.HasPrefix(p.src[p.pos:], "None") {
		p.pos += len("None")
		return "", nil
	}
	if p.pos >= len(p.src) {
		return "", p.errorf("unexpected end of input")
	}
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return "", p.errorf("expected string")
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *dictParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *dictParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *dictParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}
