package cpp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lexTestCases = []struct {
	name     string
	src      string
	expected []string
}{
	{
		name: "object define",
		src:  "#define X 1\n",
		expected: []string{
			"cppdirective:define:1:2",
			"ident:X:1:9",
			"intconst:1:1:11",
			"enddirective::1:12",
			"EOF::2:1",
		},
	},
	{
		name: "function define",
		src:  "#define F(a, b) (a+b)\n",
		expected: []string{
			"cppdirective:define:1:2",
			"ident:F:1:9",
			"funclikedefine::1:10",
			"'(':(:1:10",
			"ident:a:1:11",
			"',':,:1:12",
			"ident:b:1:14",
			"')':):1:15",
			"'(':(:1:17",
			"ident:a:1:18",
			"'+':+:1:19",
			"ident:b:1:20",
			"')':):1:21",
			"enddirective::1:22",
			"EOF::2:1",
		},
	},
	{
		name: "line splice",
		src:  "#define G2(x_, y_) \\\n    (x_)\n",
		expected: []string{
			"cppdirective:define:1:2",
			"ident:G2:1:9",
			"funclikedefine::1:11",
			"'(':(:1:11",
			"ident:x_:1:12",
			"',':,:1:14",
			"ident:y_:1:16",
			"')':):1:18",
			"'(':(:2:5",
			"ident:x_:2:6",
			"')':):2:8",
			"enddirective::2:9",
			"EOF::3:1",
		},
	},
	{
		name: "include",
		src:  "#include <stdio.h>\n",
		expected: []string{
			"cppdirective:include:1:2",
			"header:<stdio.h>:1:10",
			"enddirective::1:19",
			"EOF::2:1",
		},
	},
	{
		name: "numbers and punctuators",
		src:  "x = 0x1p3 + 1.5e-3 + 1'000u <=> y::z;",
		expected: []string{
			"ident:x:1:1",
			"'=':=:1:3",
			"floatconst:0x1p3:1:5",
			"'+':+:1:11",
			"floatconst:1.5e-3:1:13",
			"'+':+:1:20",
			"intconst:1'000u:1:22",
			"'<=>':<=>:1:29",
			"ident:y:1:33",
			"'::'::::1:34",
			"ident:z:1:36",
			"';':;:1:37",
			"EOF::1:38",
		},
	},
	{
		name: "line comment ends directive",
		src:  "#if A // c\nint y;\n",
		expected: []string{
			"cppdirective:if:1:2",
			"ident:A:1:5",
			"enddirective::1:11",
			"int:int:2:1",
			"ident:y:2:5",
			"';':;:2:6",
			"EOF::3:1",
		},
	},
	{
		name: "literals",
		src:  "'a' L\"s\" ...",
		expected: []string{
			"charconst:'a':1:1",
			"string:L\"s\":1:5",
			"'...':...:1:10",
			"EOF::1:13",
		},
	},
}

func TestLexer(t *testing.T) {
	for _, tc := range lexTestCases {
		t.Run(tc.name, func(t *testing.T) {
			lexer := Lex("t.c", []byte(tc.src))
			var got []string
			for {
				tok, err := lexer.Next()
				require.NoError(t, err)
				got = append(got, fmt.Sprintf("%s:%s:%d:%d", tok.Kind, tok.Val, tok.Pos.Line, tok.Pos.Col))
				if tok.Kind == EOF {
					break
				}
			}
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("token mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexerUnclosedComment(t *testing.T) {
	lexer := Lex("t.c", []byte("int x; /* never closed"))
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		var tok *Token
		tok, err = lexer.Next()
		if tok.Kind == EOF {
			break
		}
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed comment")
	_, ok := err.(ErrorLoc)
	assert.True(t, ok)
}

func TestErrorLoc(t *testing.T) {
	cause := errors.New("unterminated comment")
	pos := FilePos{File: "t.c", Line: 3, Col: 7}
	err := ErrWithLoc(cause, pos)
	assert.Equal(t, "unterminated comment at t.c:3:7", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Cause(err))

	wrapped := errors.Wrap(ErrWithLoc(err, FilePos{File: "t.c", Line: 9, Col: 1}), "reading t.c")
	var loc ErrorLoc
	require.True(t, errors.As(wrapped, &loc))
	assert.Equal(t, pos, loc.Pos)
	assert.Equal(t, cause, errors.Cause(wrapped))
}

func TestRelex(t *testing.T) {
	src := NewSource("t.c", []byte("#if defined(X) && \\\n  Y\n"))
	r := Range{Begin: src.PosAt(4), End: src.PosAt(23)}
	assert.Equal(t, "defined(X) && \\\n  Y", src.Text(r))
	var got []string
	for _, tok := range src.Relex(r) {
		got = append(got, fmt.Sprintf("%s@%d:%d", tok.Val, tok.Pos.Line, tok.Pos.Col))
	}
	assert.Equal(t, []string{"defined@1:5", "(@1:12", "X@1:13", ")@1:14", "&&@1:16", "Y@2:3"}, got)
}

func TestSourceLines(t *testing.T) {
	src := NewSource("t.c", []byte("first\r\nsecond\nthird"))
	assert.Equal(t, 3, src.NumLines())
	assert.Equal(t, "first", src.Line(1))
	assert.Equal(t, "second", src.Line(2))
	assert.Equal(t, "third", src.Line(3))
	assert.Equal(t, "", src.Line(4))
	pos := src.PosAt(9)
	assert.Equal(t, FilePos{File: "t.c", Line: 2, Col: 3, Offset: 9}, pos)
	assert.Equal(t, FilePos{File: "t.c", Line: 2, Col: 1, Offset: 7}, src.LineStart(pos))
}

type recorder struct {
	NopCallbacks
	src    *Source
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) InclusionDirective(hash FilePos, inc *Include) {
	r.add("Inclusion %s %s angled=%v", hash, inc.FileName, inc.IsAngled)
}
func (r *recorder) Ident(pos FilePos, str string) { r.add("Ident %s %s", pos, str) }
func (r *recorder) PragmaDirective(pos FilePos, introducer PragmaIntroducer) {
	r.add("Pragma %s %s", pos, introducer)
}
func (r *recorder) PragmaComment(pos FilePos, kind string, str string) {
	r.add("PragmaComment %s %s %s", pos, kind, str)
}
func (r *recorder) PragmaMark(pos FilePos, trivia string) { r.add("PragmaMark %s %s", pos, trivia) }
func (r *recorder) PragmaDetectMismatch(pos FilePos, name, value string) {
	r.add("PragmaDetectMismatch %s %s %s", pos, name, value)
}
func (r *recorder) PragmaDebug(pos FilePos, debugType string) {
	r.add("PragmaDebug %s %s", pos, debugType)
}
func (r *recorder) PragmaMessage(pos FilePos, namespace string, kind PragmaMessageKind, str string) {
	r.add("PragmaMessage %s %q %s %s", pos, namespace, kind, str)
}
func (r *recorder) MacroDefined(name *Token, mi *MacroInfo) {
	if mi.Builtin {
		return
	}
	r.add("MacroDefined %s %s params=%v value=%v", name.Val, mi.Pos, mi.Params, mi.HasValue())
}
func (r *recorder) MacroUndefined(name *Token, mi *MacroInfo, undef FilePos) {
	r.add("MacroUndefined %s %s defined=%v", name.Val, undef, mi != nil)
}
func (r *recorder) Defined(name *Token, mi *MacroInfo, rng Range) {
	r.add("Defined %s %s", name.Val, rng.Begin)
}
func (r *recorder) If(pos FilePos, cond Range, value ConditionValue) {
	r.add("If %s %q %s", pos, r.src.Text(cond), value)
}
func (r *recorder) Elif(pos FilePos, cond Range, value ConditionValue, ifPos FilePos) {
	r.add("Elif %s %q %s %s", pos, r.src.Text(cond), value, ifPos)
}
func (r *recorder) Ifdef(pos FilePos, name *Token, mi *MacroInfo) {
	r.add("Ifdef %s %s", pos, name.Val)
}
func (r *recorder) Ifndef(pos FilePos, name *Token, mi *MacroInfo) {
	r.add("Ifndef %s %s", pos, name.Val)
}
func (r *recorder) Elifdef(pos FilePos, name *Token, mi *MacroInfo) {
	r.add("Elifdef %s %s", pos, name.Val)
}
func (r *recorder) Elifndef(pos FilePos, name *Token, mi *MacroInfo) {
	r.add("Elifndef %s %s", pos, name.Val)
}
func (r *recorder) Else(pos FilePos, ifPos FilePos)  { r.add("Else %s %s", pos, ifPos) }
func (r *recorder) Endif(pos FilePos, ifPos FilePos) { r.add("Endif %s %s", pos, ifPos) }
func (r *recorder) EndOfMainFile()                   { r.add("EndOfMainFile") }

func runRecorder(t *testing.T, text string, is IncludeSearcher) (*recorder, error) {
	src := NewSource("t.c", []byte(text))
	rec := &recorder{src: src}
	pp := New(src, is)
	pp.AddCallbacks(rec)
	err := pp.Run()
	if err == nil {
		pp.Finish()
	}
	return rec, err
}

func TestPreprocessorCallbacks(t *testing.T) {
	text := strings.Join([]string{
		"#define A 1",
		"#if defined(A) && B",
		"#elif X",
		"#else",
		"#endif",
		"#ifdef A",
		"#elifndef C",
		"#endif",
		"#undef A",
		"#pragma comment(lib, \"m\")",
		"#pragma mark - Section",
		"#include \"missing.h\"",
		"#define F(x, ...) x",
		"#ident \"v1\"",
		"#pragma GCC warning \"careful\"",
		"#pragma clang __debug dump",
		"#pragma detect_mismatch(\"k\", \"v\")",
		"#error not an event",
		"",
	}, "\n")
	rec, err := runRecorder(t, text, nil)
	require.NoError(t, err)
	expected := []string{
		"MacroDefined A t.c:1:9 params=[] value=true",
		"Defined A t.c:2:5",
		`If t.c:2:2 "defined(A) && B" False`,
		`Elif t.c:3:2 "X" False t.c:2:2`,
		"Else t.c:4:2 t.c:2:2",
		"Endif t.c:5:2 t.c:2:2",
		"Ifdef t.c:6:2 A",
		"Elifndef t.c:7:2 C",
		"Endif t.c:8:2 t.c:6:2",
		"MacroUndefined A t.c:9:2 defined=true",
		"Pragma t.c:10:2 #pragma",
		"PragmaComment t.c:10:9 lib m",
		"Pragma t.c:11:2 #pragma",
		"PragmaMark t.c:11:9 - Section",
		"Inclusion t.c:12:1 missing.h angled=false",
		"MacroDefined F t.c:13:9 params=[x __VA_ARGS__] value=true",
		`Ident t.c:14:2 "v1"`,
		"Pragma t.c:15:2 #pragma",
		`PragmaMessage t.c:15:9 "GCC" Warning careful`,
		"Pragma t.c:16:2 #pragma",
		"PragmaDebug t.c:16:9 dump",
		"Pragma t.c:17:2 #pragma",
		"PragmaDetectMismatch t.c:17:9 k v",
		"EndOfMainFile",
	}
	if diff := cmp.Diff(expected, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestPreprocessorPredefinedValue(t *testing.T) {
	src := NewSource("t.c", []byte("#if LEVEL > 1\n#endif\n"))
	rec := &recorder{src: src}
	pp := New(src, nil)
	pp.Define("LEVEL", "2")
	pp.AddCallbacks(rec)
	require.NoError(t, pp.Run())
	assert.True(t, pp.IsDefined("LEVEL"))
	assert.True(t, pp.IsDefined("__FILE__"))
	assert.Equal(t, `If t.c:1:2 "LEVEL > 1" True`, rec.events[0])
}

func TestPreprocessorResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "found.h"), nil, 0o644))
	src := NewSource("t.c", []byte("#include <found.h>\n#include <lost.h>\n"))
	var incs []*Include
	pp := New(src, NewStandardIncludeSearcher([]string{dir}))
	pp.AddCallbacks(&includeRecorder{incs: &incs})
	require.NoError(t, pp.Run())
	require.Len(t, incs, 2)
	assert.Equal(t, filepath.Join(dir, "found.h"), incs[0].File)
	assert.Equal(t, dir, incs[0].SearchPath)
	assert.True(t, incs[0].IsAngled)
	assert.Equal(t, 10, incs[0].FilenameRange.Begin.Col)
	assert.Equal(t, "", incs[1].File)
}

type includeRecorder struct {
	NopCallbacks
	incs *[]*Include
}

func (r *includeRecorder) InclusionDirective(hash FilePos, inc *Include) {
	*r.incs = append(*r.incs, inc)
}

func TestPreprocessorErrors(t *testing.T) {
	for _, tc := range []struct {
		src string
		err string
	}{
		{"#endif\n", "stray #endif"},
		{"#if 1\n", "unterminated conditional directive"},
		{"#else\n", "#else without #if"},
		{"#if 1\n#else\n#elif 2\n#endif\n", "#elif after #else"},
		{"#ifdef\n#endif\n", "macro name missing"},
		{"#define F(a b) a\n", "expected , or )"},
	} {
		_, err := runRecorder(t, tc.src, nil)
		require.Error(t, err, tc.src)
		assert.Contains(t, err.Error(), tc.err)
	}
}
