// Package tidytest checks the diagnostics and fixes of checks against
// annotations in test sources:
//
//	#define G(x_) ((x_)/100)
//	// CHECK-MESSAGES: :[[@LINE-1]]:9: warning: macro 'G' defines ...
//	// CHECK-FIXES: template <typename T> auto G(T x_) { return ((x_)/100); }
//
// Every diagnostic must be expected and every expectation met. Messages
// match by prefix so the check name may be left out. Fix lines must
// appear in order in the fixed file, each as part of a line.
package tidytest

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/diag"
	"github.com/andrewchambers/pptidy/tidy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	annotationRe = regexp.MustCompile(`//\s*CHECK-([A-Z]+):(.*)$`)
	messageRe    = regexp.MustCompile(`^\s*:\[\[@LINE([+-]\d+)?\]\]:(\d+): (.*)$`)
)

// Annotations are the expectations read from a test source.
type Annotations struct {
	Messages []string
	Fixes    []string
}

// Parse reads the annotations of src and returns src with them blanked
// so they do not reach the checks. Line and column numbers are kept.
func Parse(src []byte) (*Annotations, []byte, error) {
	a := &Annotations{}
	lines := strings.Split(string(src), "\n")
	for i, line := range lines {
		m := annotationRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		kind := line[m[2]:m[3]]
		body := line[m[4]:m[5]]
		switch kind {
		case "MESSAGES":
			msg, err := expectedMessage(i+1, body)
			if err != nil {
				return nil, nil, err
			}
			a.Messages = append(a.Messages, msg)
		case "FIXES":
			a.Fixes = append(a.Fixes, strings.TrimSpace(body))
		default:
			return nil, nil, fmt.Errorf("line %d: unknown annotation CHECK-%s", i+1, kind)
		}
		lines[i] = line[:m[0]] + "//"
	}
	return a, []byte(strings.Join(lines, "\n")), nil
}

func expectedMessage(line int, body string) (string, error) {
	m := messageRe.FindStringSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("line %d: malformed CHECK-MESSAGES %q", line, body)
	}
	if m[1] != "" {
		delta, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("line %d: %s", line, err)
		}
		line += delta
	}
	return fmt.Sprintf("%d:%s: %s", line, m[2], m[3]), nil
}

// Message formats d the way annotations spell it.
func Message(d *diag.Diagnostic) string {
	return fmt.Sprintf("%d:%d: %s: %s [%s]", d.Pos.Line, d.Pos.Col, d.Level, d.Message, d.Check)
}

// Run analyzes the annotated file at path with only checks enabled.
// options are check options keyed check-name.Option.
func Run(t *testing.T, path, checks string, options map[string]string) *tidy.Result {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, cleaned, err := Parse(data)
	require.NoError(t, err)

	cfg := tidy.DefaultConfig()
	cfg.Checks = "-*," + checks
	for k, v := range options {
		cfg.CheckOptions[k] = v
	}
	r, err := tidy.NewRunner(cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, r.Enabled(), "no check matches %s", checks)
	src := cpp.NewSource(path, cleaned)
	res, err := r.AnalyzeSource(context.Background(), src)
	require.NoError(t, err)

	CheckMessages(t, want.Messages, res.Diagnostics)
	if len(want.Fixes) > 0 {
		fixed, skipped := diag.ApplyFixes(src, res.Diagnostics)
		assert.Empty(t, skipped, "conflicting fixes")
		CheckFixes(t, want.Fixes, string(fixed))
	}
	return res
}

// CheckMessages pairs expected messages with diagnostics.
func CheckMessages(t *testing.T, want []string, diags []*diag.Diagnostic) {
	t.Helper()
	var got []string
	for _, d := range diags {
		got = append(got, Message(d))
	}
	used := make([]bool, len(got))
	var missing []string
	for _, w := range want {
		found := false
		for i, g := range got {
			if !used[i] && strings.HasPrefix(g, w) {
				used[i], found = true, true
				break
			}
		}
		if !found {
			missing = append(missing, w)
		}
	}
	var unexpected []string
	for i, g := range got {
		if !used[i] {
			unexpected = append(unexpected, g)
		}
	}
	assert.Empty(t, missing, "expected messages not reported")
	assert.Empty(t, unexpected, "unexpected messages")
}

// CheckFixes finds every fix line in order in fixed.
func CheckFixes(t *testing.T, want []string, fixed string) {
	t.Helper()
	if w, ok := missingFix(want, fixed); ok {
		t.Errorf("fix %q not found in order in:\n%s", w, fixed)
	}
}

// missingFix returns the first of want that is not found in order.
func missingFix(want []string, fixed string) (string, bool) {
	lines := strings.Split(fixed, "\n")
	at := 0
	for _, w := range want {
		found := false
		for at < len(lines) {
			line := lines[at]
			at++
			if strings.Contains(line, w) {
				found = true
				break
			}
		}
		if !found {
			return w, true
		}
	}
	return "", false
}
