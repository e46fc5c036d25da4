// Package exprmatch decides whether a macro replacement list is a single
// C expression over its parameters.
//
// The grammar is the C conditional-expression grammar, one method per
// precedence level. Atoms are integral literals, character literals and
// the allowed identifiers. Nothing is evaluated.
package exprmatch

import (
	"strings"

	"github.com/andrewchambers/pptidy/cpp"
)

// Matcher holds the cursor of one match over a fixed token slice.
type Matcher struct {
	toks    []*cpp.Token
	cur     int
	allowed map[string]bool
}

// New creates a matcher over toks that accepts the identifiers in allowed.
func New(toks []*cpp.Token, allowed []string) *Matcher {
	m := &Matcher{toks: toks, allowed: make(map[string]bool, len(allowed))}
	for _, a := range allowed {
		m.allowed[a] = true
	}
	return m
}

// Match reports whether toks form exactly one expression.
func Match(toks []*cpp.Token, allowed []string) bool {
	return New(toks, allowed).Match()
}

// Match reports whether the whole token slice is consumed by one
// conditional-expression.
func (m *Matcher) Match() bool {
	m.cur = 0
	return m.expr() && m.atEnd()
}

func (m *Matcher) atEnd() bool {
	return m.cur >= len(m.toks)
}

func (m *Matcher) is(kinds ...cpp.TokenKind) bool {
	if m.atEnd() {
		return false
	}
	k := m.toks[m.cur].Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// advance steps over the current token and reports whether more follow.
func (m *Matcher) advance() bool {
	m.cur++
	return !m.atEnd()
}

func (m *Matcher) consume(kind cpp.TokenKind) bool {
	if m.is(kind) {
		m.cur++
		return true
	}
	return false
}

// chained parses next (op next)* for the operators of one binary level.
func (m *Matcher) chained(next func() bool, ops ...cpp.TokenKind) bool {
	if !next() {
		return false
	}
	for m.is(ops...) {
		if !m.advance() {
			return false
		}
		if !next() {
			return false
		}
	}
	return true
}

// IsIntegralLiteral reports whether a literal token is usable as a
// pure integer operand. Floating and imaginary spellings are rejected.
func IsIntegralLiteral(t *cpp.Token) bool {
	switch t.Kind {
	case cpp.CHAR_CONSTANT:
		return true
	case cpp.INT_CONSTANT, cpp.FLOAT_CONSTANT:
	default:
		return false
	}
	s := t.Val
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return !strings.ContainsAny(s[2:], ".pPiI")
	}
	return !strings.ContainsAny(s, ".eEiI")
}

func (m *Matcher) unaryExpr() bool {
	for m.is(cpp.SUB, cpp.ADD, cpp.BNOT, cpp.NOT) {
		m.cur++
	}
	if m.atEnd() {
		return false
	}
	if m.consume(cpp.LPAREN) {
		if m.atEnd() || !m.expr() {
			return false
		}
		return m.consume(cpp.RPAREN)
	}
	t := m.toks[m.cur]
	switch {
	case t.IsLiteral():
		if !IsIntegralLiteral(t) {
			return false
		}
	case t.IsIdent() && m.allowed[t.Val]:
	default:
		return false
	}
	m.cur++
	return true
}

func (m *Matcher) multiplicativeExpr() bool {
	return m.chained(m.unaryExpr, cpp.MUL, cpp.QUO, cpp.REM)
}

func (m *Matcher) additiveExpr() bool {
	return m.chained(m.multiplicativeExpr, cpp.ADD, cpp.SUB)
}

func (m *Matcher) shiftExpr() bool {
	return m.chained(m.additiveExpr, cpp.SHL, cpp.SHR)
}

func (m *Matcher) compareExpr() bool {
	if !m.shiftExpr() {
		return false
	}
	if m.is(cpp.SPACESHIP) {
		if !m.advance() {
			return false
		}
		return m.shiftExpr()
	}
	return true
}

func (m *Matcher) relationalExpr() bool {
	return m.chained(m.compareExpr, cpp.LSS, cpp.GTR, cpp.LEQ, cpp.GEQ)
}

func (m *Matcher) equalityExpr() bool {
	return m.chained(m.relationalExpr, cpp.EQL, cpp.NEQ)
}

func (m *Matcher) andExpr() bool {
	return m.chained(m.equalityExpr, cpp.AND)
}

func (m *Matcher) exclusiveOrExpr() bool {
	return m.chained(m.andExpr, cpp.XOR)
}

func (m *Matcher) inclusiveOrExpr() bool {
	return m.chained(m.exclusiveOrExpr, cpp.OR)
}

func (m *Matcher) logicalAndExpr() bool {
	return m.chained(m.inclusiveOrExpr, cpp.LAND)
}

func (m *Matcher) logicalOrExpr() bool {
	return m.chained(m.logicalAndExpr, cpp.LOR)
}

func (m *Matcher) conditionalExpr() bool {
	if !m.logicalOrExpr() {
		return false
	}
	if !m.is(cpp.QUESTION) {
		return true
	}
	if !m.advance() {
		return false
	}
	// GNU x ?: y reuses the condition as the middle operand.
	if m.is(cpp.COLON) {
		if !m.advance() {
			return false
		}
		return m.expr()
	}
	if !m.expr() {
		return false
	}
	if !m.consume(cpp.COLON) || m.atEnd() {
		return false
	}
	return m.expr()
}

func (m *Matcher) expr() bool {
	return m.conditionalExpr()
}
