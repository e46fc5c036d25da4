package tidy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/diag"
	"github.com/andrewchambers/pptidy/syntax"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valueMacros reports every macro defined with a value.
type valueMacros struct {
	cpp.NopCallbacks
	ctx    *Context
	prefix string
}

func (c *valueMacros) RegisterPPCallbacks(pp *cpp.Preprocessor) {
	pp.AddCallbacks(c)
}

func (c *valueMacros) MacroDefined(name *cpp.Token, mi *cpp.MacroInfo) {
	if mi.Builtin || !mi.HasValue() {
		return
	}
	c.ctx.Diag(name.Pos, "%s'%s'", c.prefix, name.Val)
}

// declCounter reports every top level declaration at end of file.
type declCounter struct {
	cpp.NopCallbacks
	ctx   *Context
	decls []syntax.Decl
}

func (c *declCounter) RegisterPPCallbacks(pp *cpp.Preprocessor) {
	pp.AddCallbacks(c)
}

func (c *declCounter) CheckDecls(f *syntax.File) {
	c.decls = f.TopLevelDecls()
}

func (c *declCounter) EndOfMainFile() {
	for _, d := range c.decls {
		c.ctx.Diag(d.Range.Begin, "%s", d.Kind)
	}
}

func init() {
	Register(CheckInfo{
		Name: "test-value-macros",
		Doc:  "reports macros with values",
		New: func(ctx *Context) (Check, error) {
			prefix := "value "
			quiet, err := ctx.BoolOption("Quiet", false)
			if err != nil {
				return nil, err
			}
			if quiet {
				prefix = ""
			}
			return &valueMacros{ctx: ctx, prefix: prefix}, nil
		},
	})
	Register(CheckInfo{
		Name:          "test-decls",
		CPlusPlusOnly: true,
		New: func(ctx *Context) (Check, error) {
			return &declCounter{ctx: ctx}, nil
		},
	})
}

func messages(res *Result) []string {
	var ret []string
	for _, d := range res.Diagnostics {
		ret = append(ret, d.String())
	}
	return ret
}

func TestRegistry(t *testing.T) {
	var names []string
	for _, info := range Checks() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"test-decls", "test-value-macros"}, names)
	_, ok := Lookup("test-decls")
	assert.True(t, ok)
	assert.Panics(t, func() {
		Register(CheckInfo{Name: "test-decls", New: func(*Context) (Check, error) { return nil, nil }})
	})
}

var selectorTestCases = []struct {
	selector string
	name     string
	expected bool
}{
	{"bugprone-*", "bugprone-macro-condition", true},
	{"bugprone-*", "modernize-macro-to-function", false},
	{"*,-modernize-*", "modernize-macro-to-function", false},
	{"-*,modernize-macro-to-function", "modernize-macro-to-function", true},
	{"modernize-*, -modernize-prefer-*", "modernize-prefer-scoped-enum", false},
	{"-modernize-*,modernize-*", "modernize-prefer-scoped-enum", true},
	{"", "bugprone-macro-condition", false},
	{" , ", "bugprone-macro-condition", false},
}

func TestSelector(t *testing.T) {
	for _, tc := range selectorTestCases {
		sel, err := ParseSelector(tc.selector)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, sel.Matches(tc.name), "%q %q", tc.selector, tc.name)
	}
	sel, err := ParseSelector(" ")
	require.NoError(t, err)
	assert.True(t, sel.Empty())
	_, err = ParseSelector("bugprone-[")
	assert.Error(t, err)
}

const configText = `
Checks: '-*,bugprone-*'
WarningsAsErrors: 'bugprone-macro-condition'
Defines:
  - DEBUG
  - LEVEL=3
IncludePaths: [include, /usr/include]
Language: c++
CheckOptions:
  bugprone-macro-condition.WarnUndefinedValueTests: "false"
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(configText))
	require.NoError(t, err)
	expected := &Config{
		Checks:           "-*,bugprone-*",
		WarningsAsErrors: "bugprone-macro-condition",
		Defines:          []string{"DEBUG", "LEVEL=3"},
		IncludePaths:     []string{"include", "/usr/include"},
		Language:         "c++",
		CheckOptions: map[string]string{
			"bugprone-macro-condition.WarnUndefinedValueTests": "false",
		},
	}
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	cfg, err = ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = ParseConfig([]byte("Checks: [unclosed"))
	assert.Error(t, err)
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := FindConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultChecks, cfg.Checks)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("Checks: 'modernize-*'\n"), 0o644))
	cfg, err = FindConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "modernize-*", cfg.Checks)
	assert.Equal(t, "auto", cfg.Language)

	cfg.AddChecks("-modernize-macro-to-function")
	assert.Equal(t, "modernize-*,-modernize-macro-to-function", cfg.Checks)
	cfg.AddWarningsAsErrors("*")
	assert.Equal(t, "*", cfg.WarningsAsErrors)
}

func TestSplitDefine(t *testing.T) {
	name, value := SplitDefine("A=B=C")
	assert.Equal(t, "A", name)
	assert.Equal(t, "B=C", value)
	name, value = SplitDefine("DEBUG")
	assert.Equal(t, "DEBUG", name)
	assert.Equal(t, "1", value)
}

func TestContextOptions(t *testing.T) {
	src := cpp.NewSource("t.c", nil)
	ctx := NewContext("check", src, syntax.C, diag.NewEngine(), map[string]string{
		"check.Flag":  "true",
		"check.Count": "3",
		"check.Bad":   "many",
		"other.Flag":  "false",
	}, nil)
	b, err := ctx.BoolOption("Flag", false)
	require.NoError(t, err)
	assert.True(t, b)
	n, err := ctx.IntOption("Count", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = ctx.IntOption("Missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = ctx.IntOption("Bad", 1)
	assert.Error(t, err)
	_, err = ctx.BoolOption("Bad", false)
	assert.Error(t, err)
	assert.Equal(t, "check", ctx.CheckName())
}

const runnerSource = `#define A 1
#define B
int x;
#ifdef A
int f(void) { return 0; }
#endif
`

func TestAnalyzeSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Checks = "test-*"
	cfg.Defines = []string{"FROM_CONFIG=2"}
	r, err := NewRunner(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"test-decls", "test-value-macros"}, r.Enabled())

	res, err := r.AnalyzeSource(context.Background(), cpp.NewSource("t.cpp", []byte(runnerSource)))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"t.cpp:1:9: warning: value 'A' [test-value-macros]",
		"t.cpp:3:1: warning: declaration [test-decls]",
		"t.cpp:5:1: warning: function_definition [test-decls]",
	}, messages(res))
	assert.Equal(t, 0, res.Errors())
	assert.Nil(t, res.Tree)

	// C files skip C++ only checks.
	res, err = r.AnalyzeSource(context.Background(), cpp.NewSource("t.c", []byte(runnerSource)))
	require.NoError(t, err)
	assert.Equal(t, []string{"t.c:1:9: warning: value 'A' [test-value-macros]"}, messages(res))
}

func TestAnalyzeSourceOptionsAndErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Checks = "test-value-macros"
	cfg.WarningsAsErrors = "test-*"
	cfg.CheckOptions["test-value-macros.Quiet"] = "yes please"
	r, err := NewRunner(cfg, nil)
	require.NoError(t, err)
	_, err = r.AnalyzeSource(context.Background(), cpp.NewSource("t.c", []byte(runnerSource)))
	assert.Error(t, err)

	cfg.CheckOptions["test-value-macros.Quiet"] = "true"
	r, err = NewRunner(cfg, nil)
	require.NoError(t, err)
	r.BuildTree = true
	res, err := r.AnalyzeSource(context.Background(), cpp.NewSource("t.c", []byte(runnerSource)))
	require.NoError(t, err)
	assert.Equal(t, []string{"t.c:1:9: error: 'A' [test-value-macros]"}, messages(res))
	assert.Equal(t, 1, res.Errors())
	require.NotNil(t, res.Tree)
	assert.Len(t, res.Tree.Directives, 4)
}

func TestAnalyzeSourcePreprocessorError(t *testing.T) {
	r, err := NewRunner(DefaultConfig(), nil)
	require.NoError(t, err)
	res, err := r.AnalyzeSource(context.Background(), cpp.NewSource("t.c", []byte("#define A 1\n#endif\n")))
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, PreprocessorErrorCheck, d.Check)
	assert.Equal(t, diag.Error, d.Level)
	assert.Equal(t, 2, d.Pos.Line)
}

func TestRunKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.c", "a.c", "b.c"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("#define "+name[:1]+" 1\n"), 0o644))
		paths = append(paths, path)
	}
	cfg := DefaultConfig()
	cfg.Checks = "test-value-macros"
	r, err := NewRunner(cfg, nil)
	require.NoError(t, err)
	results, err := r.Run(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, paths[i], res.Src.Name)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, "value '"+filepath.Base(paths[i])[:1]+"'", res.Diagnostics[0].Message)
	}

	_, err = r.Run(context.Background(), append(paths, filepath.Join(dir, "missing.c")), 0)
	assert.Error(t, err)
}
