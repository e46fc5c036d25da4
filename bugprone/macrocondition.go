// Package bugprone holds checks for directive patterns that are likely
// mistakes.
package bugprone

import (
	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/macrocond"
	"github.com/andrewchambers/pptidy/tidy"
)

const MacroConditionName = "bugprone-macro-condition"

func init() {
	tidy.Register(tidy.CheckInfo{
		Name: MacroConditionName,
		Doc:  "finds macros defined with a value but tested with #ifdef or defined()",
		New:  NewMacroCondition,
	})
}

// MacroCondition reports macros that carry a value but are only tested
// for being defined. Options:
//
//	WarnUndefinedValueTests  report #if identifiers naming no macro (default true)
type MacroCondition struct {
	ctx     *tidy.Context
	tracker *macrocond.Tracker
}

func NewMacroCondition(ctx *tidy.Context) (tidy.Check, error) {
	opts := macrocond.DefaultOptions()
	warn, err := ctx.BoolOption("WarnUndefinedValueTests", opts.WarnUndefinedValueTests)
	if err != nil {
		return nil, err
	}
	opts.WarnUndefinedValueTests = warn
	c := &MacroCondition{ctx: ctx}
	c.tracker = macrocond.NewTracker(ctx.Src, opts, ctx.Log, c.report)
	return c, nil
}

func (c *MacroCondition) RegisterPPCallbacks(pp *cpp.Preprocessor) {
	pp.AddCallbacks(c.tracker)
}

func (c *MacroCondition) report(f macrocond.Finding) {
	c.ctx.Diag(f.Pos, "%s", f.Message)
}
