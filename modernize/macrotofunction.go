// Package modernize holds checks that suggest newer C++ constructs.
package modernize

import (
	"fmt"
	"strings"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/exprmatch"
	"github.com/andrewchambers/pptidy/syntax"
	"github.com/andrewchambers/pptidy/tidy"
)

const MacroToFunctionName = "modernize-macro-to-function"

func init() {
	tidy.Register(tidy.CheckInfo{
		Name:          MacroToFunctionName,
		Doc:           "suggests template functions for macros that compute an expression of their arguments",
		CPlusPlusOnly: true,
		New:           NewMacroToFunction,
	})
}

type candidate struct {
	name *cpp.Token
	mi   *cpp.MacroInfo
}

// MacroToFunction finds function-like macros whose body is an arithmetic
// expression of the parameters and offers a template function instead.
// Options:
//
//	MinParams  fewest parameters a candidate needs (default 1)
type MacroToFunction struct {
	cpp.NopCallbacks

	ctx        *tidy.Context
	minParams  int
	candidates []candidate
}

func NewMacroToFunction(ctx *tidy.Context) (tidy.Check, error) {
	minParams, err := ctx.IntOption("MinParams", 1)
	if err != nil {
		return nil, err
	}
	if minParams < 1 {
		minParams = 1
	}
	return &MacroToFunction{ctx: ctx, minParams: minParams}, nil
}

func (c *MacroToFunction) RegisterPPCallbacks(pp *cpp.Preprocessor) {
	pp.AddCallbacks(c)
}

func (c *MacroToFunction) MacroDefined(name *cpp.Token, mi *cpp.MacroInfo) {
	if mi.Pos.File == "" || mi.Pos.File == cpp.BuiltinFile || mi.Builtin {
		return
	}
	if !mi.FunctionLike || len(mi.Tokens) == 0 || len(mi.Params) < c.minParams || mi.Variadic {
		return
	}
	for _, p := range mi.Params {
		if p == "__VA_ARGS__" {
			return
		}
	}
	if !exprmatch.Match(mi.Tokens, mi.Params) {
		return
	}
	c.ctx.Log.WithField("macro", name.Val).Debug("macro to function candidate")
	c.candidates = append(c.candidates, candidate{name: name, mi: mi})
}

// Invalidate drops the candidates defined inside r.
func (c *MacroToFunction) Invalidate(r cpp.Range) {
	kept := c.candidates[:0]
	for _, cand := range c.candidates {
		if r.Contains(cand.mi.Pos) {
			c.ctx.Log.WithField("macro", cand.name.Val).Debugf("candidate inside declaration %s", r)
			continue
		}
		kept = append(kept, cand)
	}
	c.candidates = kept
}

func (c *MacroToFunction) CheckDecls(f *syntax.File) {
	for _, d := range f.TopLevelDecls() {
		c.Invalidate(d.Range)
	}
}

// templateHead spells the replacement of a macro's #define up to its
// body: template <typename T, typename T2> auto NAME(T a, T2 b) { return
func templateHead(name string, params []string) string {
	types := make([]string, len(params))
	args := make([]string, len(params))
	for i, p := range params {
		types[i] = "T"
		if i > 0 {
			types[i] += fmt.Sprint(i + 1)
		}
		args[i] = types[i] + " " + p
		types[i] = "typename " + types[i]
	}
	return fmt.Sprintf("template <%s> auto %s(%s) { return ",
		strings.Join(types, ", "), name, strings.Join(args, ", "))
}

func (c *MacroToFunction) EndOfMainFile() {
	for _, cand := range c.candidates {
		c.ctx.Diag(cand.name.Pos, "macro '%s' defines an expression of its arguments; prefer an inline function instead", cand.name.Val)
		begin := c.ctx.Src.LineStart(cand.mi.Pos)
		c.ctx.Diag(begin, "replace macro with template function").
			WithReplacement(cpp.Range{Begin: begin, End: cand.mi.Tokens[0].Pos}, templateHead(cand.name.Val, cand.mi.Params)).
			WithInsertion(cand.mi.DefinitionEnd, "; }")
	}
	c.candidates = nil
}
