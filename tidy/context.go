package tidy

import (
	"strconv"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/diag"
	"github.com/andrewchambers/pptidy/syntax"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Context is what a check knows about the file it runs on.
type Context struct {
	Src  *cpp.Source
	Lang syntax.Language
	Log  logrus.FieldLogger

	check   string
	engine  *diag.Engine
	options map[string]string
}

// NewContext creates the context of check for src. Diagnostics go to
// engine; options are keyed check-name.Option.
func NewContext(check string, src *cpp.Source, lang syntax.Language, engine *diag.Engine, options map[string]string, log logrus.FieldLogger) *Context {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Context{
		Src:     src,
		Lang:    lang,
		Log:     log.WithFields(logrus.Fields{"file": src.Name, "check": check}),
		check:   check,
		engine:  engine,
		options: options,
	}
}

func (ctx *Context) CheckName() string {
	return ctx.check
}

// Diag reports a warning at pos.
func (ctx *Context) Diag(pos cpp.FilePos, format string, args ...interface{}) *diag.Builder {
	return ctx.engine.Report(ctx.check, diag.Warning, pos, format, args...)
}

func (ctx *Context) option(name string) (string, bool) {
	v, ok := ctx.options[ctx.check+"."+name]
	return v, ok
}

func (ctx *Context) BoolOption(name string, def bool) (bool, error) {
	v, ok := ctx.option(name)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.Wrapf(err, "option %s.%s", ctx.check, name)
	}
	return b, nil
}

func (ctx *Context) IntOption(name string, def int) (int, error) {
	v, ok := ctx.option(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, errors.Wrapf(err, "option %s.%s", ctx.check, name)
	}
	return n, nil
}
