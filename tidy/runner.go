package tidy

import (
	"context"
	"runtime"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/diag"
	"github.com/andrewchambers/pptidy/pptree"
	"github.com/andrewchambers/pptidy/syntax"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PreprocessorErrorCheck names the diagnostics of files the preprocessor
// could not walk.
const PreprocessorErrorCheck = "preprocessor-error"

// Result is the outcome of analyzing one file.
type Result struct {
	Src         *cpp.Source
	Lang        syntax.Language
	Diagnostics []*diag.Diagnostic
	// Tree is set when the runner builds directive trees.
	Tree *pptree.Tree
}

// Errors counts the diagnostics at error level.
func (res *Result) Errors() int {
	n := 0
	for _, d := range res.Diagnostics {
		if d.Level == diag.Error {
			n++
		}
	}
	return n
}

type Runner struct {
	cfg       *Config
	checks    []*CheckInfo
	asErrors  *Selector
	log       logrus.FieldLogger
	BuildTree bool
}

// NewRunner selects the registered checks cfg enables.
func NewRunner(cfg *Config, log logrus.FieldLogger) (*Runner, error) {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	sel, err := ParseSelector(cfg.Checks)
	if err != nil {
		return nil, errors.Wrap(err, "Checks")
	}
	asErrors, err := ParseSelector(cfg.WarningsAsErrors)
	if err != nil {
		return nil, errors.Wrap(err, "WarningsAsErrors")
	}
	r := &Runner{cfg: cfg, asErrors: asErrors, log: log}
	for _, info := range Checks() {
		if sel.Matches(info.Name) {
			r.checks = append(r.checks, info)
		}
	}
	return r, nil
}

// Enabled returns the names of the selected checks.
func (r *Runner) Enabled() []string {
	var names []string
	for _, info := range r.checks {
		names = append(names, info.Name)
	}
	return names
}

// Predefines returns the macros defined for a file of lang before the
// user's definitions.
func Predefines(lang syntax.Language) [][2]string {
	if lang == syntax.C {
		return [][2]string{
			{"__STDC__", "1"},
			{"__STDC_VERSION__", "201710L"},
		}
	}
	return [][2]string{
		{"__cplusplus", "201703L"},
	}
}

// NewPreprocessor creates a preprocessor for src with the language and
// configured definitions in place.
func (r *Runner) NewPreprocessor(src *cpp.Source, lang syntax.Language) *cpp.Preprocessor {
	pp := cpp.New(src, cpp.NewStandardIncludeSearcher(r.cfg.IncludePaths))
	for _, def := range Predefines(lang) {
		pp.Define(def[0], def[1])
	}
	for _, def := range r.cfg.Defines {
		pp.Define(SplitDefine(def))
	}
	return pp
}

func (r *Runner) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	src, err := cpp.ReadSource(path)
	if err != nil {
		return nil, err
	}
	return r.AnalyzeSource(ctx, src)
}

// AnalyzeSource runs the enabled checks over src. A file the
// preprocessor cannot walk yields a single error diagnostic rather than
// an error.
func (r *Runner) AnalyzeSource(ctx context.Context, src *cpp.Source) (*Result, error) {
	lang, err := syntax.ParseLanguage(r.cfg.Language, src.Name)
	if err != nil {
		return nil, err
	}
	log := r.log.WithField("file", src.Name)
	res := &Result{Src: src, Lang: lang}
	engine := diag.NewEngine()
	pp := r.NewPreprocessor(src, lang)

	var declCheckers []DeclChecker
	for _, info := range r.checks {
		if !info.appliesTo(lang) {
			continue
		}
		chk, err := info.New(NewContext(info.Name, src, lang, engine, r.cfg.CheckOptions, r.log))
		if err != nil {
			return nil, errors.Wrapf(err, "creating %s", info.Name)
		}
		chk.RegisterPPCallbacks(pp)
		if dc, ok := chk.(DeclChecker); ok {
			declCheckers = append(declCheckers, dc)
		}
	}
	if r.BuildTree {
		pp.AddCallbacks(pptree.NewBuilder(src, pptree.ConsumerFunc(func(t *pptree.Tree) {
			res.Tree = t
		})))
	}

	if err := pp.Run(); err != nil {
		var loc cpp.ErrorLoc
		if !errors.As(err, &loc) {
			return nil, err
		}
		log.WithError(err).Debug("preprocessing failed")
		engine.Report(PreprocessorErrorCheck, diag.Error, loc.Pos, "%s", loc.Err)
		res.Diagnostics = engine.Diagnostics()
		return res, nil
	}

	if len(declCheckers) > 0 {
		f, err := syntax.Parse(ctx, src, lang)
		if err != nil {
			return nil, err
		}
		for _, dc := range declCheckers {
			dc.CheckDecls(f)
		}
		f.Close()
	}
	pp.Finish()

	res.Diagnostics = engine.Diagnostics()
	for _, d := range res.Diagnostics {
		if d.Level == diag.Warning && r.asErrors.Matches(d.Check) {
			d.Level = diag.Error
		}
	}
	log.WithField("diagnostics", len(res.Diagnostics)).Debug("analyzed")
	return res, nil
}

// Run analyzes paths with at most jobs files in flight. Results are in
// the order of paths. jobs <= 0 means one per CPU.
func (r *Runner) Run(ctx context.Context, paths []string, jobs int) ([]*Result, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.AnalyzeFile(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "analyzing %s", path)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
