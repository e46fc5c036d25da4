package modernize

import (
	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/syntax"
	"github.com/andrewchambers/pptidy/tidy"
)

const PreferScopedEnumName = "modernize-prefer-scoped-enum"

func init() {
	tidy.Register(tidy.CheckInfo{
		Name:          PreferScopedEnumName,
		Doc:           "finds unscoped enums and the uses of their enumerators",
		CPlusPlusOnly: true,
		New:           NewPreferScopedEnum,
	})
}

type PreferScopedEnum struct {
	ctx *tidy.Context
}

func NewPreferScopedEnum(ctx *tidy.Context) (tidy.Check, error) {
	return &PreferScopedEnum{ctx: ctx}, nil
}

// RegisterPPCallbacks does nothing, the check only looks at declarations.
func (c *PreferScopedEnum) RegisterPPCallbacks(pp *cpp.Preprocessor) {}

func (c *PreferScopedEnum) CheckDecls(f *syntax.File) {
	var unscoped []*syntax.Enum
	for _, e := range f.Enums() {
		// Anonymous enums cannot become scoped.
		if e.Scoped || e.Name == "" {
			continue
		}
		unscoped = append(unscoped, e)
		c.ctx.Diag(e.Pos, "Prefer a scoped enum to the unscoped enum '%s'", e.Name)
		for _, en := range e.Enumerators {
			c.ctx.Diag(en.Pos, "Prefer a scoped enum to the unscoped enum '%s'", e.Name)
		}
	}
	for _, ref := range f.References(unscoped) {
		c.ctx.Diag(ref.Pos, "Reference to enumerator '%s' from enum '%s'", ref.Enumerator, ref.Enum.Name)
	}
}
