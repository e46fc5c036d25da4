package tidytest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annotated = `#define G(x_) ((x_)/100)
// CHECK-MESSAGES: :[[@LINE-1]]:9: warning: macro 'G'
int y; // CHECK-MESSAGES: :[[@LINE]]:5: warning: y
// CHECK-MESSAGES: :[[@LINE+1]]:1: error: z
int z;
// CHECK-FIXES: template <typename T>
`

func TestParse(t *testing.T) {
	a, cleaned, err := Parse([]byte(annotated))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1:9: warning: macro 'G'",
		"3:5: warning: y",
		"5:1: error: z",
	}, a.Messages)
	assert.Equal(t, []string{"template <typename T>"}, a.Fixes)
	assert.Equal(t, "#define G(x_) ((x_)/100)\n//\nint y; //\n//\nint z;\n//\n", string(cleaned))
}

func TestParseErrors(t *testing.T) {
	_, _, err := Parse([]byte("// CHECK-MESSAGES: 1:1: warning: x\n"))
	assert.Error(t, err)
	_, _, err = Parse([]byte("// CHECK-NOTES: :[[@LINE]]:1: note: x\n"))
	assert.Error(t, err)
}

func TestMissingFix(t *testing.T) {
	fixed := "a\nb\nc\n"
	CheckFixes(t, []string{"a", "c"}, fixed)
	_, missing := missingFix([]string{"a", "c"}, fixed)
	assert.False(t, missing)
	w, missing := missingFix([]string{"c", "a"}, fixed)
	assert.True(t, missing)
	assert.Equal(t, "a", w)
}
