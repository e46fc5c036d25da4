package modernize

import (
	"context"
	"testing"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/diag"
	"github.com/andrewchambers/pptidy/syntax"
	"github.com/andrewchambers/pptidy/tidy"
	"github.com/andrewchambers/pptidy/tidy/tidytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroToFunction(t *testing.T) {
	tidytest.Run(t, "testdata/macro-to-function.cpp", MacroToFunctionName, nil)
}

func TestMacroToFunctionMinParams(t *testing.T) {
	tidytest.Run(t, "testdata/macro-to-function-min-params.cpp", MacroToFunctionName, map[string]string{
		MacroToFunctionName + ".MinParams": "2",
	})
}

func TestPreferScopedEnum(t *testing.T) {
	tidytest.Run(t, "testdata/prefer-scoped-enum.cpp", PreferScopedEnumName, nil)
}

func TestTemplateHead(t *testing.T) {
	for _, tc := range []struct {
		params   []string
		expected string
	}{
		{[]string{"x_"}, "template <typename T> auto F(T x_) { return "},
		{[]string{"a", "b", "c"}, "template <typename T, typename T2, typename T3> auto F(T a, T2 b, T3 c) { return "},
	} {
		assert.Equal(t, tc.expected, templateHead("F", tc.params))
	}
}

const invalidateSource = `#define A(x) ((x) + 1)
#define B(x) ((x) + 2)
#define C(x) ((x) + 3)
`

func TestInvalidate(t *testing.T) {
	src := cpp.NewSource("t.cpp", []byte(invalidateSource))
	engine := diag.NewEngine()
	ctx := tidy.NewContext(MacroToFunctionName, src, syntax.CPlusPlus, engine, nil, nil)
	chk, err := NewMacroToFunction(ctx)
	require.NoError(t, err)
	c := chk.(*MacroToFunction)

	pp := cpp.New(src, nil)
	c.RegisterPPCallbacks(pp)
	require.NoError(t, pp.Run())
	require.Len(t, c.candidates, 3)

	// From the start of B's line up to and including the B name.
	c.Invalidate(cpp.Range{Begin: src.PosAt(23), End: src.PosAt(31)})
	require.Len(t, c.candidates, 2)
	assert.Equal(t, "A", c.candidates[0].name.Val)
	assert.Equal(t, "C", c.candidates[1].name.Val)

	pp.Finish()
	var names []string
	for _, d := range engine.Diagnostics() {
		if len(d.FixIts) == 0 {
			names = append(names, d.Message)
		}
	}
	assert.Equal(t, []string{
		"macro 'A' defines an expression of its arguments; prefer an inline function instead",
		"macro 'C' defines an expression of its arguments; prefer an inline function instead",
	}, names)
}

func TestMacroToFunctionSkipsC(t *testing.T) {
	cfg := tidy.DefaultConfig()
	cfg.Checks = "-*,modernize-*"
	r, err := tidy.NewRunner(cfg, nil)
	require.NoError(t, err)
	res, err := r.AnalyzeSource(context.Background(), cpp.NewSource("t.c", []byte(invalidateSource)))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
}
