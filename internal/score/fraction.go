package score

import (
	"fmt"
	"strconv"
	"strings"
)

// EvalFraction evaluates a fractional arithmetic expression as found in
// "location" offsets and measure-length overrides ("1/4", "-3/8",
// "(1+2)/4"). The grammar is deliberately tiny: unsigned integers,
// + - * /, unary minus and parentheses.
func EvalFraction(expr string) (float64, error) {
	p := &fractionParser{input: expr}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("fraction %q: unexpected %q at offset %d", expr, p.input[p.pos], p.pos)
	}
	return v, nil
}

// fractionParser is a recursive-descent parser over a byte offset.
type fractionParser struct {
	input string
	pos   int
}

// parseExpr := term (('+' | '-') term)*
func (p *fractionParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.peek('+'):
			p.pos++
			t, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += t
		case p.peek('-'):
			p.pos++
			t, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= t
		default:
			return v, nil
		}
	}
}

// parseTerm := factor (('*' | '/') factor)*
func (p *fractionParser) parseTerm() (float64, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.peek('*'):
			p.pos++
			f, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			v *= f
		case p.peek('/'):
			p.pos++
			f, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if f == 0 {
				return 0, fmt.Errorf("fraction %q: division by zero", p.input)
			}
			v /= f
		default:
			return v, nil
		}
	}
}

// parseFactor := INT | '(' expr ')' | '-' factor
func (p *fractionParser) parseFactor() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("fraction %q: unexpected end of input", p.input)
	}

	if p.peek('-') {
		p.pos++
		f, err := p.parseFactor()
		return -f, err
	}

	if p.peek('(') {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if !p.peek(')') {
			return 0, fmt.Errorf("fraction %q: missing closing parenthesis", p.input)
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("fraction %q: expected number at offset %d", p.input, start)
	}
	n, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return 0, fmt.Errorf("fraction %q: %v", p.input, err)
	}
	return float64(n), nil
}

func (p *fractionParser) peek(c byte) bool {
	return p.pos < len(p.input) && p.input[p.pos] == c
}

func (p *fractionParser) skipSpace() {
	p.pos += len(p.input[p.pos:]) - len(strings.TrimLeft(p.input[p.pos:], " \t"))
}
