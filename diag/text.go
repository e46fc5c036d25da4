package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode selects when the text renderer colors its output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("bad color mode %q, want auto, always or never", s)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TextRenderer writes diagnostics the way compilers do: the location,
// the level, the message and check, then the source line with a caret
// under the column.
type TextRenderer struct {
	w       io.Writer
	sources map[string]*cpp.Source

	bold    *color.Color
	warning *color.Color
	err     *color.Color
	note    *color.Color
	caret   *color.Color
}

// NewTextRenderer writes to w. Source lines are looked up in sources by
// file name; files without a source get no caret.
func NewTextRenderer(w io.Writer, mode ColorMode, sources map[string]*cpp.Source) *TextRenderer {
	r := &TextRenderer{
		w:       w,
		sources: sources,
		bold:    color.New(color.Bold),
		warning: color.New(color.FgMagenta, color.Bold),
		err:     color.New(color.FgRed, color.Bold),
		note:    color.New(color.FgCyan, color.Bold),
		caret:   color.New(color.FgGreen, color.Bold),
	}
	colorize := mode == ColorAlways || (mode == ColorAuto && IsTerminal(w))
	for _, c := range []*color.Color{r.bold, r.warning, r.err, r.note, r.caret} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *TextRenderer) levelColor(l Level) *color.Color {
	switch l {
	case Error:
		return r.err
	case Note:
		return r.note
	}
	return r.warning
}

func (r *TextRenderer) Render(diags []*Diagnostic) error {
	for _, d := range diags {
		if err := r.render(d); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) render(d *Diagnostic) error {
	_, err := fmt.Fprintf(r.w, "%s %s %s\n",
		r.bold.Sprintf("%s:", d.Pos),
		r.levelColor(d.Level).Sprintf("%s:", d.Level),
		r.bold.Sprintf("%s [%s]", d.Message, d.Check))
	if err != nil {
		return err
	}
	src, ok := r.sources[d.Pos.File]
	if !ok {
		return nil
	}
	line := src.Line(d.Pos.Line)
	_, err = fmt.Fprintf(r.w, "%s\n%s\n", line, r.caret.Sprint(caretLine(line, d.Pos.Col)))
	return err
}

// caretLine returns the marker for col under line. Tabs are kept so the
// caret lines up whatever the tab width.
func caretLine(line string, col int) string {
	var b strings.Builder
	for i := 0; i < col-1; i++ {
		if i < len(line) && line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}
