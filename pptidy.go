// Command pptidy checks how C and C++ files use the preprocessor.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/diag"
	"github.com/andrewchambers/pptidy/pptree"
	"github.com/andrewchambers/pptidy/tidy"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	_ "github.com/andrewchambers/pptidy/bugprone"
	_ "github.com/andrewchambers/pptidy/modernize"
)

const version = "0.1"

// configFlags select and configure checks. They are shared by every
// command that analyzes files.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config-file",
			Usage: "Read the configuration from `FILE` instead of " + tidy.ConfigFileName,
		},
		&cli.StringFlag{
			Name:  "checks",
			Usage: "Comma separated check globs, a leading - disables, appended to the configured Checks",
		},
		&cli.StringFlag{
			Name:  "warnings-as-errors",
			Usage: "Comma separated globs of checks whose warnings are errors",
		},
		&cli.StringSliceFlag{
			Name:    "define",
			Aliases: []string{"D"},
			Usage:   "Predefine `NAME[=VALUE]`",
		},
		&cli.StringSliceFlag{
			Name:    "include",
			Aliases: []string{"I"},
			Usage:   "Add `DIR` to the include search path",
		},
		&cli.StringFlag{
			Name:  "language",
			Usage: "Source language: auto, c or c++",
		},
	}
}

func checkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Value: "text",
			Usage: "Diagnostic output format: text or json",
		},
		&cli.StringFlag{
			Name:  "color",
			Value: "auto",
			Usage: "Color text output: auto, always or never",
		},
		&cli.BoolFlag{
			Name:  "fix",
			Usage: "Apply fix-its to the files in place",
		},
		&cli.BoolFlag{
			Name:  "diff",
			Usage: "Print the fix-its as a unified diff",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Files analyzed in parallel, 0 for one per CPU",
		},
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "Print a summary of the run to stderr",
		},
		&cli.BoolFlag{
			Name:  "dump-tree",
			Usage: "Print the directive tree of every file",
		},
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	log := logrus.New()
	log.Out = stderr

	app := &cli.App{
		Name:      "pptidy",
		Usage:     "check how C and C++ sources use the preprocessor",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warning",
				Usage: "Log level: trace, debug, info, warning or error",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		// Exit codes are handled by main.
		ExitErrHandler: func(c *cli.Context, err error) {},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "check",
			Usage:     "Run the enabled checks over files",
			ArgsUsage: "FILE...",
			Flags:     append(configFlags(), checkFlags()...),
			Action: func(c *cli.Context) error {
				return runCheck(c, log)
			},
		},
		{
			Name:      "dump-tree",
			Usage:     "Print the directive tree of a file",
			ArgsUsage: "FILE",
			Flags:     configFlags(),
			Action: func(c *cli.Context) error {
				tree, err := buildTree(c, log)
				if err != nil {
					return err
				}
				return pptree.NewPrinter(c.App.Writer).Print(tree)
			},
		},
		{
			Name:      "query",
			Usage:     "Print the directives of a file that match",
			ArgsUsage: "FILE",
			Flags: append(configFlags(),
				&cli.StringFlag{Name: "kind", Usage: "Directive kind, e.g. IfDef or MacroDefined"},
				&cli.StringFlag{Name: "name", Usage: "Macro name"},
				&cli.IntFlag{Name: "line", Usage: "Line of the directive"},
			),
			Action: func(c *cli.Context) error {
				return runQuery(c, log)
			},
		},
		{
			Name:      "tokens",
			Usage:     "Print the tokens of a file",
			ArgsUsage: "FILE",
			Action:    runTokens,
		},
		{
			Name:  "list-checks",
			Usage: "List the checks, marking the enabled ones",
			Flags: configFlags(),
			Action: func(c *cli.Context) error {
				return runListChecks(c, log)
			},
		},
	}
	app.DefaultCommand = "check"
	return app
}

// loadConfig reads the config file and applies the command line on top.
func loadConfig(c *cli.Context) (*tidy.Config, error) {
	var cfg *tidy.Config
	var err error
	if path := c.String("config-file"); path != "" {
		cfg, err = tidy.LoadConfig(path)
	} else {
		cfg, err = tidy.FindConfig(".")
	}
	if err != nil {
		return nil, err
	}
	cfg.AddChecks(c.String("checks"))
	cfg.AddWarningsAsErrors(c.String("warnings-as-errors"))
	cfg.Defines = append(cfg.Defines, c.StringSlice("define")...)
	cfg.IncludePaths = append(cfg.IncludePaths, c.StringSlice("include")...)
	if lang := c.String("language"); lang != "" {
		cfg.Language = lang
	}
	return cfg, nil
}

func oneFile(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s needs exactly one file", c.Command.Name)
	}
	return c.Args().First(), nil
}

func buildTree(c *cli.Context, log logrus.FieldLogger) (*pptree.Tree, error) {
	path, err := oneFile(c)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	cfg.Checks = "-*"
	r, err := tidy.NewRunner(cfg, log)
	if err != nil {
		return nil, err
	}
	r.BuildTree = true
	res, err := r.AnalyzeFile(c.Context, path)
	if err != nil {
		return nil, err
	}
	if res.Tree == nil {
		return nil, errors.New(res.Diagnostics[0].String())
	}
	return res.Tree, nil
}

func runQuery(c *cli.Context, log logrus.FieldLogger) error {
	var preds []pptree.Predicate[pptree.Directive]
	if s := c.String("kind"); s != "" {
		k, err := pptree.ParseKind(s)
		if err != nil {
			return err
		}
		preds = append(preds, pptree.KindIs[pptree.Directive](k))
	}
	if name := c.String("name"); name != "" {
		preds = append(preds, pptree.NameIs[pptree.Directive](name))
	}
	if line := c.Int("line"); line > 0 {
		preds = append(preds, pptree.OnLine[pptree.Directive](line))
	}
	if len(preds) == 0 {
		return errors.New("query needs --kind, --name or --line")
	}
	tree, err := buildTree(c, log)
	if err != nil {
		return err
	}
	found := pptree.NewFinder(pptree.Match(preds...)).FindAll(tree)
	for _, d := range found {
		fmt.Fprintln(c.App.Writer, d)
	}
	if len(found) == 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func runTokens(c *cli.Context) error {
	path, err := oneFile(c)
	if err != nil {
		return err
	}
	src, err := cpp.ReadSource(path)
	if err != nil {
		return err
	}
	lexer := cpp.Lex(src.Name, src.Data)
	for {
		tok, err := lexer.Next()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s:%s:%d:%d\n", tok.Kind, tok.Val, tok.Pos.Line, tok.Pos.Col)
		if tok.Kind == cpp.EOF {
			return nil
		}
	}
}

func runListChecks(c *cli.Context, log logrus.FieldLogger) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	r, err := tidy.NewRunner(cfg, log)
	if err != nil {
		return err
	}
	enabled := make(map[string]bool)
	for _, name := range r.Enabled() {
		enabled[name] = true
	}
	for _, info := range tidy.Checks() {
		mark := " "
		if enabled[info.Name] {
			mark = "*"
		}
		fmt.Fprintf(c.App.Writer, "%s %-30s %s\n", mark, info.Name, info.Doc)
	}
	return nil
}

func runCheck(c *cli.Context, log logrus.FieldLogger) error {
	start := time.Now()
	if c.NArg() == 0 {
		return errors.New("no input files")
	}
	mode, err := diag.ParseColorMode(c.String("color"))
	if err != nil {
		return err
	}
	format := c.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("bad format %q, want text or json", format)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	r, err := tidy.NewRunner(cfg, log)
	if err != nil {
		return err
	}
	r.BuildTree = c.Bool("dump-tree")
	log.WithField("checks", strings.Join(r.Enabled(), ",")).Debug("enabled checks")

	results, err := r.Run(c.Context, c.Args().Slice(), c.Int("jobs"))
	if err != nil {
		return err
	}

	out := c.App.Writer
	sources := make(map[string]*cpp.Source)
	var all []*diag.Diagnostic
	for _, res := range results {
		sources[res.Src.Name] = res.Src
		all = append(all, res.Diagnostics...)
		if res.Tree != nil {
			fmt.Fprintf(out, "%s:\n", res.Src.Name)
			if err := pptree.NewPrinter(out).Print(res.Tree); err != nil {
				return err
			}
		}
	}
	if format == "json" {
		err = diag.WriteJSON(out, all)
	} else {
		err = diag.NewTextRenderer(out, mode, sources).Render(all)
	}
	if err != nil {
		return err
	}

	if c.Bool("fix") || c.Bool("diff") {
		if err := applyFixes(c, log, results); err != nil {
			return err
		}
	}
	if c.Bool("stats") {
		writeStats(c.App.ErrWriter, results, time.Since(start))
	}
	for _, res := range results {
		if res.Errors() > 0 {
			return cli.Exit("", 1)
		}
	}
	return nil
}

func applyFixes(c *cli.Context, log logrus.FieldLogger, results []*tidy.Result) error {
	for _, res := range results {
		fixed, skipped := diag.ApplyFixes(res.Src, res.Diagnostics)
		for _, d := range skipped {
			log.WithField("file", res.Src.Name).Warnf("fix-it of %s conflicts with another fix-it, not applied", d)
		}
		if c.Bool("diff") {
			fmt.Fprint(c.App.Writer, diag.UnifiedDiff(filepath.ToSlash(res.Src.Name), res.Src.Data, fixed))
		}
		if !c.Bool("fix") || string(fixed) == string(res.Src.Data) {
			continue
		}
		info, err := os.Stat(res.Src.Name)
		if err != nil {
			return errors.Wrap(err, "applying fix-its")
		}
		if err := os.WriteFile(res.Src.Name, fixed, info.Mode().Perm()); err != nil {
			return errors.Wrap(err, "applying fix-its")
		}
		log.WithField("file", res.Src.Name).Info("applied fix-its")
	}
	return nil
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.RunContext(context.Background(), os.Args)
	if err == nil {
		return
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		if msg := exit.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exit.ExitCode())
	}
	reportError(os.Stderr, err)
	os.Exit(2)
}
