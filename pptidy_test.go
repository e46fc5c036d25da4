package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type cliResult struct {
	stdout, stderr string
	err            error
}

func runApp(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	err := app.Run(append([]string{"pptidy"}, args...))
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(err error) int {
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	return -1
}

// workspace writes files into a temporary directory with an empty
// config and returns the paths and the config path.
func workspace(t *testing.T, files map[string]string) (map[string]string, string) {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[string]string)
	for name, text := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
		paths[name] = path
	}
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("Checks: '-*'\n"), 0o644))
	return paths, config
}

const macroSource = "#define G(x_) ((x_)/100)\n"

func TestCheck(t *testing.T) {
	paths, config := workspace(t, map[string]string{"t.cpp": macroSource})
	res := runApp(t, "check", "--config-file", config, "--checks", "modernize-macro-to-function", "--color", "never", paths["t.cpp"])
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, paths["t.cpp"]+":1:1: warning: replace macro with template function [modernize-macro-to-function]\n#define G(x_) ((x_)/100)\n^\n")
	assert.Contains(t, res.stdout, paths["t.cpp"]+":1:9: warning: macro 'G' defines an expression of its arguments")

	res = runApp(t, "check", "--config-file", config, "--checks", "modernize-*", "--warnings-as-errors", "*", "--format", "json", paths["t.cpp"])
	assert.Equal(t, 1, exitCode(res.err))
	assert.Contains(t, res.stdout, `"level": "error"`)

	res = runApp(t, "check", "--config-file", config, "--format", "xml", paths["t.cpp"])
	assert.Error(t, res.err)
}

func TestCheckFix(t *testing.T) {
	paths, config := workspace(t, map[string]string{"t.cpp": macroSource})
	res := runApp(t, "check", "--config-file", config, "--checks", "modernize-macro-to-function", "--color", "never", "--diff", paths["t.cpp"])
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "-#define G(x_) ((x_)/100)\n+template <typename T> auto G(T x_) { return ((x_)/100); }\n")
	data, err := os.ReadFile(paths["t.cpp"])
	require.NoError(t, err)
	assert.Equal(t, macroSource, string(data))

	res = runApp(t, "check", "--config-file", config, "--checks", "modernize-macro-to-function", "--fix", "--stats", paths["t.cpp"])
	require.NoError(t, res.err)
	data, err = os.ReadFile(paths["t.cpp"])
	require.NoError(t, err)
	assert.Equal(t, "template <typename T> auto G(T x_) { return ((x_)/100); }\n", string(data))
	assert.Contains(t, res.stderr, "1 files")
	assert.Contains(t, res.stderr, "2 warnings, 0 errors")
}

const treeSource = `#define A 1
#ifdef A
#undef A
#endif
`

func TestDumpTreeAndQuery(t *testing.T) {
	paths, config := workspace(t, map[string]string{"t.c": treeSource})
	res := runApp(t, "dump-tree", "--config-file", config, paths["t.c"])
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "MacroDefined")
	assert.Contains(t, res.stdout, "\n  MacroUndefined")

	res = runApp(t, "query", "--config-file", config, "--kind", "ifdef", paths["t.c"])
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "IfDef")
	assert.NotContains(t, res.stdout, "MacroDefined")

	res = runApp(t, "query", "--config-file", config, "--name", "A", "--line", "3", paths["t.c"])
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "MacroUndefined")

	res = runApp(t, "query", "--config-file", config, "--name", "B", paths["t.c"])
	assert.Equal(t, 1, exitCode(res.err))

	res = runApp(t, "query", "--config-file", config, paths["t.c"])
	assert.Error(t, res.err)
}

func TestTokens(t *testing.T) {
	paths, _ := workspace(t, map[string]string{"t.c": treeSource})
	res := runApp(t, "tokens", paths["t.c"])
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, ":A:1:9\n")
	assert.Contains(t, res.stdout, "EOF:")
}

func TestListChecks(t *testing.T) {
	_, config := workspace(t, nil)
	res := runApp(t, "list-checks", "--config-file", config, "--checks", "bugprone-*")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "* bugprone-macro-condition")
	assert.Contains(t, res.stdout, "  modernize-macro-to-function")
	assert.Contains(t, res.stdout, "  modernize-prefer-scoped-enum")
}

func TestReportError(t *testing.T) {
	paths, _ := workspace(t, map[string]string{"t.c": "int x;\n\t#endif\n"})
	res := runApp(t, "dump-tree", paths["t.c"])
	require.Error(t, res.err)
	var buf bytes.Buffer
	reportError(&buf, errors.New("plain"))
	assert.Equal(t, "plain\n", buf.String())
}
