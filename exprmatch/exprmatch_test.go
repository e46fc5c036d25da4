package exprmatch

import (
	"testing"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var matchTestCases = []struct {
	body    string
	allowed []string
	match   bool
}{
	{"1", nil, true},
	{"0x1f", nil, true},
	{"0xE", nil, true},
	{"0777", nil, true},
	{"10ull", nil, true},
	{"1'000", nil, true},
	{"'a'", nil, true},
	{"1.0", nil, false},
	{"1e3", nil, false},
	{"1E3", nil, false},
	{"0x1p3", nil, false},
	{"0x1P3", nil, false},
	{"2i", nil, false},
	{"3I", nil, false},
	{"\"s\"", nil, false},
	{"", nil, false},
	{"x", []string{"x"}, true},
	{"y", []string{"x"}, false},
	{"a + b * c", []string{"a", "b", "c"}, true},
	{"a + b * c ;", []string{"a", "b", "c"}, false},
	{"a +", []string{"a"}, false},
	{"a b", []string{"a", "b"}, false},
	{"cond ? : alt", []string{"cond", "alt"}, true},
	{"a ? b : c", []string{"a", "b", "c"}, true},
	{"a ? b : c ? d : e", []string{"a", "b", "c", "d", "e"}, true},
	{"a ? b", []string{"a", "b"}, false},
	{"a ?", []string{"a"}, false},
	{"(x)", []string{"x"}, true},
	{"(x", []string{"x"}, false},
	{"x)", []string{"x"}, false},
	{"()", nil, false},
	{"((x_)/100)", []string{"x_"}, true},
	{"(x_ + 1) / (y_ - 1)", []string{"x_", "y_"}, true},
	{"- - x", []string{"x"}, true},
	{"!~x", []string{"x"}, true},
	{"-", nil, false},
	{"x <=> y", []string{"x", "y"}, true},
	{"x << 2 >> 1", []string{"x"}, true},
	{"a < b && b <= c || a != c", []string{"a", "b", "c"}, true},
	{"a & b ^ c | d", []string{"a", "b", "c", "d"}, true},
	{"x % 2 == 0", []string{"x"}, true},
	{"x_, y_", []string{"x_", "y_"}, false},
	{"x = 1", []string{"x"}, false},
	{"x++", []string{"x"}, false},
	{"f(x)", []string{"x"}, false},
	{"std::complex<double>(x_, y_)", []string{"x_", "y_"}, false},
	{"static_cast<int>(x_)", []string{"x_"}, false},
	{"int y = x_", []string{"x_"}, false},
	{"a.b", []string{"a", "b"}, false},
	{"sizeof x", []string{"x"}, false},
}

func lexBody(t *testing.T, s string) []*cpp.Token {
	lexer := cpp.Lex("body.c", []byte(s))
	var toks []*cpp.Token
	for {
		tok, err := lexer.Next()
		require.NoError(t, err)
		if tok.Kind == cpp.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestMatch(t *testing.T) {
	for _, tc := range matchTestCases {
		got := Match(lexBody(t, tc.body), tc.allowed)
		assert.Equalf(t, tc.match, got, "match of %q with %v", tc.body, tc.allowed)
	}
}

func TestMatcherIsReusable(t *testing.T) {
	m := New(lexBody(t, "a * (b + 1)"), []string{"a", "b"})
	assert.True(t, m.Match())
	assert.True(t, m.Match())
}

func TestIsIntegralLiteral(t *testing.T) {
	for _, tc := range []struct {
		lit  string
		want bool
	}{
		{"42", true},
		{"0xABCDEF", true},
		{"0x", true},
		{"5.", false},
		{".5", false},
		{"0x1.8p1", false},
		{"0x10i", false},
		{"0x10I", false},
		{"3i", false},
		{"'\\n'", true},
		{"u8\"x\"", false},
	} {
		toks := lexBody(t, tc.lit)
		require.Len(t, toks, 1, tc.lit)
		assert.Equalf(t, tc.want, IsIntegralLiteral(toks[0]), "literal %s", tc.lit)
	}
}
