package cpp

import (
	"fmt"
	"strconv"
	"strings"
)

/*
   Implements the expression evaluation for #if and #elif conditions.

   #if expression
       controlled text
   #endif

   expression may be:

   Integer constants.

   Character constants, which are interpreted as they would be in normal code.

   Arithmetic operators for most of C

   defined name and defined(name).

   Identifiers that are not macros, which are all considered to be the number zero.

   Macros are not expanded. An object-like macro whose replacement is a single
   integer constant evaluates to that constant, anything else that would need
   expansion makes the condition unevaluable.
*/

type cppExprCtx struct {
	toks      []*Token
	idx       int
	isDefined func(string) bool
	// valueOf returns the macro named by an identifier, or nil.
	valueOf func(string) *MacroInfo
}

func (ctx *cppExprCtx) nextToken() *Token {
	if ctx.idx >= len(ctx.toks) {
		return nil
	}
	tok := ctx.toks[ctx.idx]
	ctx.idx++
	return tok
}

func (ctx *cppExprCtx) peek() *Token {
	if ctx.idx >= len(ctx.toks) {
		return nil
	}
	return ctx.toks[ctx.idx]
}

// parseIntConstant parses a C integer literal, suffixes and digit
// separators included.
func parseIntConstant(s string) (int64, error) {
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimRight(s, "uUlLzZ")
	v, err := strconv.ParseInt(s, 0, 64)
	if err == nil {
		return v, nil
	}
	u, uerr := strconv.ParseUint(s, 0, 64)
	if uerr != nil {
		return 0, fmt.Errorf("bad integer constant %s", s)
	}
	return int64(u), nil
}

func parseCharConstant(s string) (int64, error) {
	q := strings.IndexByte(s, '\'')
	if q < 0 || len(s) < q+3 || s[len(s)-1] != '\'' {
		return 0, fmt.Errorf("bad char constant %s", s)
	}
	body := s[q+1 : len(s)-1]
	if body[0] != '\\' {
		if len(body) != 1 {
			return 0, fmt.Errorf("multichar constant %s", s)
		}
		return int64(body[0]), nil
	}
	if body == `\0` {
		return 0, nil
	}
	v, _, tail, err := strconv.UnquoteChar(body, '\'')
	if err != nil || tail != "" {
		return 0, fmt.Errorf("bad char constant %s", s)
	}
	return int64(v), nil
}

func parseCPPExprAtom(ctx *cppExprCtx) (int64, error) {
	toCheck := ctx.nextToken()
	if toCheck == nil {
		return 0, fmt.Errorf("expected integer, char, or defined but got nothing")
	}
	switch toCheck.Kind {
	case NOT:
		v, err := parseCPPExprAtom(ctx)
		if err != nil {
			return 0, err
		}
		if v == 0 {
			return 1, nil
		}
		return 0, nil
	case BNOT:
		v, err := parseCPPExprAtom(ctx)
		if err != nil {
			return 0, err
		}
		return ^v, nil
	case SUB:
		v, err := parseCPPExprAtom(ctx)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case ADD:
		v, err := parseCPPExprAtom(ctx)
		if err != nil {
			return 0, err
		}
		return v, nil
	case LPAREN:
		v, err := parseCPPExpr(ctx)
		if err != nil {
			return 0, err
		}
		rparen := ctx.nextToken()
		if rparen == nil || rparen.Kind != RPAREN {
			return 0, fmt.Errorf("unclosed parenthesis")
		}
		return v, nil
	case INT_CONSTANT:
		return parseIntConstant(toCheck.Val)
	case CHAR_CONSTANT:
		return parseCharConstant(toCheck.Val)
	}
	if !toCheck.IsIdent() {
		return 0, fmt.Errorf("expected integer, char, or defined but got %s", toCheck.Val)
	}
	switch toCheck.Val {
	case "defined":
		toCheck = ctx.nextToken()
		if toCheck == nil {
			return 0, fmt.Errorf("expected ( or an identifier but got nothing")
		}
		switch {
		case toCheck.Kind == LPAREN:
			toCheck = ctx.nextToken()
			rparen := ctx.nextToken()
			if toCheck == nil || !toCheck.IsIdent() || rparen == nil || rparen.Kind != RPAREN {
				return 0, fmt.Errorf("malformed defined check, missing )")
			}
		case toCheck.IsIdent():
			//calls isDefined as intended
		default:
			return 0, fmt.Errorf("malformed defined statement at %s", toCheck.Pos)
		}
		if ctx.isDefined(toCheck.Val) {
			return 1, nil
		}
		return 0, nil
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	if next := ctx.peek(); next != nil && next.Kind == LPAREN {
		return 0, fmt.Errorf("cannot evaluate call to %s without expansion", toCheck.Val)
	}
	mi := ctx.valueOf(toCheck.Val)
	if mi == nil {
		return 0, nil
	}
	if len(mi.Tokens) == 1 && mi.Tokens[0].Kind == INT_CONSTANT {
		return parseIntConstant(mi.Tokens[0].Val)
	}
	return 0, fmt.Errorf("cannot evaluate %s without expansion", toCheck.Val)
}

func evalCPPBinop(ctx *cppExprCtx, k TokenKind, l int64, r int64) (int64, error) {
	switch k {
	case LOR:
		if l != 0 || r != 0 {
			return 1, nil
		}
		return 0, nil
	case LAND:
		if l != 0 && r != 0 {
			return 1, nil
		}
		return 0, nil
	case OR:
		return l | r, nil
	case XOR:
		return l ^ r, nil
	case AND:
		return l & r, nil
	case ADD:
		return l + r, nil
	case SUB:
		return l - r, nil
	case MUL:
		return l * r, nil
	case SHR:
		return l >> uint64(r), nil
	case SHL:
		return l << uint64(r), nil
	case QUO:
		if r == 0 {
			return 0, fmt.Errorf("divide by zero in expression")
		}
		return l / r, nil
	case REM:
		if r == 0 {
			return 0, fmt.Errorf("divide by zero in expression")
		}
		return l % r, nil
	case EQL:
		if l == r {
			return 1, nil
		}
		return 0, nil
	case LSS:
		if l < r {
			return 1, nil
		}
		return 0, nil
	case GTR:
		if l > r {
			return 1, nil
		}
		return 0, nil
	case LEQ:
		if l <= r {
			return 1, nil
		}
		return 0, nil
	case GEQ:
		if l >= r {
			return 1, nil
		}
		return 0, nil
	case NEQ:
		if l != r {
			return 1, nil
		}
		return 0, nil
	case COMMA:
		return r, nil
	default:
		return 0, fmt.Errorf("internal error %s", k)
	}
}

func parseCPPTernary(ctx *cppExprCtx) (int64, error) {
	cond, err := parseCPPBinop(ctx)
	if err != nil {
		return 0, err
	}
	t := ctx.peek()
	var a, b int64
	if t != nil && t.Kind == QUESTION {
		ctx.nextToken()
		a, err = parseCPPExpr(ctx)
		if err != nil {
			return 0, err
		}
		colon := ctx.nextToken()
		if colon == nil || colon.Kind != COLON {
			return 0, fmt.Errorf("ternary without :")
		}
		b, err = parseCPPExpr(ctx)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return a, nil
		}
		return b, nil
	}
	return cond, nil
}

func parseCPPComma(ctx *cppExprCtx) (int64, error) {
	v, err := parseCPPTernary(ctx)
	if err != nil {
		return 0, err
	}
	for {
		t := ctx.peek()
		if t == nil || t.Kind != COMMA {
			break
		}
		ctx.nextToken()
		v, err = parseCPPTernary(ctx)
		if err != nil {
			return 0, err
		}
	}
	return v, nil
}

func getPrec(k TokenKind) int {
	switch k {
	case MUL, REM, QUO:
		return 10
	case ADD, SUB:
		return 9
	case SHR, SHL:
		return 8
	case LSS, GTR, GEQ, LEQ:
		return 7
	case EQL, NEQ:
		return 6
	case AND:
		return 5
	case XOR:
		return 4
	case OR:
		return 3
	case LAND:
		return 2
	case LOR:
		return 1
	}
	return -1
}

// This is the precedence climbing algorithm, simplified because
// all the operators are left associative. The CPP doesn't
// deal with assignment operators.
func parseCPPBinop_1(ctx *cppExprCtx, prec int) (int64, error) {
	l, err := parseCPPExprAtom(ctx)
	if err != nil {
		return 0, err
	}
	for {
		t := ctx.peek()
		if t == nil {
			break
		}
		p := getPrec(t.Kind)
		if p == -1 {
			break
		}
		if p < prec {
			break
		}
		ctx.nextToken()
		r, err := parseCPPBinop_1(ctx, p+1)
		if err != nil {
			return 0, err
		}
		l, err = evalCPPBinop(ctx, t.Kind, l, r)
		if err != nil {
			return 0, err
		}
	}
	return l, nil
}

func parseCPPBinop(ctx *cppExprCtx) (int64, error) {
	return parseCPPBinop_1(ctx, 0)
}

func parseCPPExpr(ctx *cppExprCtx) (int64, error) {
	return parseCPPComma(ctx)
}

func evalIfExpr(ctx *cppExprCtx) (int64, error) {
	if len(ctx.toks) == 0 {
		return 0, fmt.Errorf("#if with no expression")
	}
	ret, err := parseCPPExpr(ctx)
	if err != nil {
		return 0, err
	}
	t := ctx.nextToken()
	if t != nil {
		return 0, fmt.Errorf("stray token %s", t.Val)
	}
	return ret, nil
}

// evalCondition folds the result of evalIfExpr into a ConditionValue.
func evalCondition(toks []*Token, macros map[string]*MacroInfo) ConditionValue {
	ctx := &cppExprCtx{
		toks: toks,
		isDefined: func(s string) bool {
			_, ok := macros[s]
			return ok
		},
		valueOf: func(s string) *MacroInfo {
			return macros[s]
		},
	}
	v, err := evalIfExpr(ctx)
	switch {
	case err != nil:
		return NotEvaluated
	case v != 0:
		return ConditionTrue
	}
	return ConditionFalse
}
