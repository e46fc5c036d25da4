package cpp

import (
	"testing"
)

var exprTestCases = []struct {
	expr      string
	expected  int64
	expectErr bool
}{
	{"1", 1, false},
	{"2", 2, false},
	{"0x1", 0x1, false},
	{"-1", -1, false},
	{"-2", -2, false},
	{"(2)", 2, false},
	{"(-2)", -2, false},
	{"0x1234", 0x1234, false},
	{"0777", 0777, false},
	{"1u + 2L", 3, false},
	{"1'000", 1000, false},
	{"'a'", 'a', false},
	{"'\\n'", '\n', false},
	{"'\\0'", 0, false},
	{"true", 1, false},
	{"false", 0, false},
	{"foo", 1, false},
	{"bang", 0, false},
	{"bar", 0, true},
	{"baz", 0, true},
	{"f(1)", 0, true},
	{"defined foo", 1, false},
	{"defined bar", 1, false},
	{"defined bang", 0, false},
	{"defined(foo)", 1, false},
	{"defined(bang)", 0, false},
	{"defined", 0, true},
	{"defined(bang", 0, true},
	{"defined bang)", 0, true},
	{"", 0, true},
	{"0 || 0", 0, false},
	{"1 || 0", 1, false},
	{"0 || 1", 1, false},
	{"1 || 1", 1, false},
	{"0 && 0", 0, false},
	{"1 && 0", 0, false},
	{"0 && 1", 0, false},
	{"1 && 1", 1, false},
	{"0xf0 | 1", 0xf1, false},
	{"0xf0 & 1", 0, false},
	{"0xf0 & 0x1f", 0x10, false},
	{"1 ^ 1", 0, false},
	{"1 == 1", 1, false},
	{"1 == 0", 0, false},
	{"1 != 1", 0, false},
	{"0 != 1", 1, false},
	{"0 > 1", 0, false},
	{"0 < 1", 1, false},
	{"0 > -1", 1, false},
	{"0 < -1", 0, false},
	{"0 >= 1", 0, false},
	{"0 <= 1", 1, false},
	{"0 >= -1", 1, false},
	{"0 <= -1", 0, false},
	{"0 < 0", 0, false},
	{"0 <= 0", 1, false},
	{"0 > 0", 0, false},
	{"0 >= 0", 1, false},
	{"1 << 1", 2, false},
	{"2 >> 1", 1, false},
	{"2 + 1", 3, false},
	{"2 - 3", -1, false},
	{"2 * 3", 6, false},
	{"6 / 3", 2, false},
	{"7 % 3", 1, false},
	{"1 / 0", 0, true},
	{"0,1", 1, false},
	{"1,0", 0, false},
	{"2+2*3+2", 10, false},
	{"(2+2)*(3+2)", 20, false},
	{"2 + 2 + 2 + 2 == 2 + 2 * 3", 1, false},
	{"0 ? 1 : 2", 2, false},
	{"1 ? 1 : 2", 1, false},
	{"(1 ? 1 ? 1337 : 1234 : 2) == 1337", 1, false},
	{"(1 ? 0 ? 1337 : 1234 : 2) == 1234", 1, false},
	{"(0 ? 1 ? 1337 : 1234 : 2) == 2", 1, false},
	{"(0 ? 1 ? 1337 : 1234 : 2 ? 3 : 4) == 3", 1, false},
	{"0 , 1 ? 1 , 0 : 2  ", 0, false},
	{"1 2", 0, true},
}

func lexAll(t *testing.T, s string) []*Token {
	lexer := Lex("testcase.c", []byte(s))
	var toks []*Token
	for {
		tok, err := lexer.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func testExprMacros(t *testing.T) map[string]*MacroInfo {
	return map[string]*MacroInfo{
		"foo": {Name: "foo", Tokens: lexAll(t, "1")},
		"bar": {Name: "bar"},
		"baz": {Name: "baz", Tokens: lexAll(t, "x + 1")},
	}
}

func TestExprEval(t *testing.T) {
	macros := testExprMacros(t)
	for idx := range exprTestCases {
		tc := &exprTestCases[idx]
		ctx := &cppExprCtx{
			toks: lexAll(t, tc.expr),
			isDefined: func(s string) bool {
				_, ok := macros[s]
				return ok
			},
			valueOf: func(s string) *MacroInfo {
				return macros[s]
			},
		}
		result, err := evalIfExpr(ctx)
		if err != nil {
			if !tc.expectErr {
				t.Errorf("test %s failed - got error <%s>", tc.expr, err)
			}
		} else if tc.expectErr {
			t.Errorf("test %s failed - expected an error", tc.expr)
		} else if result != tc.expected {
			t.Errorf("test %s failed - got %d expected %d", tc.expr, result, tc.expected)
		}
	}
}

func TestEvalCondition(t *testing.T) {
	macros := testExprMacros(t)
	for _, tc := range []struct {
		expr     string
		expected ConditionValue
	}{
		{"foo == 1", ConditionTrue},
		{"defined(bang)", ConditionFalse},
		{"baz", NotEvaluated},
		{"__has_include(<stdio.h>)", NotEvaluated},
	} {
		got := evalCondition(lexAll(t, tc.expr), macros)
		if got != tc.expected {
			t.Errorf("condition %s: got %s expected %s", tc.expr, got, tc.expected)
		}
	}
}
