// Package diag collects the diagnostics of checks and renders them.
package diag

import (
	"fmt"
	"sort"

	"github.com/andrewchambers/pptidy/cpp"
)

type Level int

const (
	Warning Level = iota
	Error
	Note
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Note:
		return "note"
	}
	return "warning"
}

// FixIt replaces Range with Text. An empty range is an insertion.
type FixIt struct {
	Range cpp.Range
	Text  string
}

func (f FixIt) IsInsertion() bool {
	return f.Range.Empty()
}

type Diagnostic struct {
	Check   string
	Level   Level
	Pos     cpp.FilePos
	Message string
	FixIts  []FixIt
	// Emission order, breaks ties between equal positions.
	seq int
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Pos, d.Level, d.Message, d.Check)
}

// Builder attaches fix-its to a reported diagnostic.
type Builder struct {
	d *Diagnostic
}

// WithReplacement replaces the text of r.
func (b *Builder) WithReplacement(r cpp.Range, text string) *Builder {
	b.d.FixIts = append(b.d.FixIts, FixIt{Range: r, Text: text})
	return b
}

// WithInsertion inserts text before pos.
func (b *Builder) WithInsertion(pos cpp.FilePos, text string) *Builder {
	b.d.FixIts = append(b.d.FixIts, FixIt{Range: cpp.Range{Begin: pos, End: pos}, Text: text})
	return b
}

func (b *Builder) Diagnostic() *Diagnostic {
	return b.d
}

// Engine collects the diagnostics of one file.
type Engine struct {
	diags []*Diagnostic
}

func NewEngine() *Engine {
	return &Engine{}
}

// Report records a diagnostic for check at pos.
func (e *Engine) Report(check string, level Level, pos cpp.FilePos, format string, args ...interface{}) *Builder {
	d := &Diagnostic{
		Check:   check,
		Level:   level,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
		seq:     len(e.diags),
	}
	e.diags = append(e.diags, d)
	return &Builder{d: d}
}

// Diagnostics returns what was reported, ordered by file, offset and
// then emission order.
func (e *Engine) Diagnostics() []*Diagnostic {
	ret := make([]*Diagnostic, len(e.diags))
	copy(ret, e.diags)
	Sort(ret)
	return ret
}

func (e *Engine) Len() int {
	return len(e.diags)
}

func Sort(diags []*Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Offset != b.Pos.Offset {
			return a.Pos.Offset < b.Pos.Offset
		}
		return a.seq < b.seq
	})
}
