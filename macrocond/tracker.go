// Package macrocond tracks how macros are defined and tested by the
// conditional directives of one file, and finds macros that are defined
// with a value but only ever tested for definition.
package macrocond

import (
	"fmt"
	"strings"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/sirupsen/logrus"
)

const (
	definedHereMsg = "Macro '%s' defined here with a value and checked for definition"
	checkedHereMsg = "Macro '%s' defined with a value and checked here for definition"
	undefinedMsg   = "Undefined macro '%s' checked here for value"
)

type Options struct {
	// WarnUndefinedValueTests reports identifiers of #if and #elif
	// conditions that name no macro.
	WarnUndefinedValueTests bool
}

func DefaultOptions() Options {
	return Options{WarnUndefinedValueTests: true}
}

// Finding is a diagnostic produced by the tracker.
type Finding struct {
	Pos     cpp.FilePos
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Pos, f.Message)
}

// Frame is one open conditional chain.
type Frame struct {
	// Kind is the directive of the active branch.
	Kind  State
	Pos   cpp.FilePos
	IfPos cpp.FilePos
	// Cond is the condition of the active branch, empty for the
	// #ifdef family and #else.
	Cond cpp.Range
}

type logEntry struct {
	Event
	macro *Macro
}

type definedTest struct {
	name string
	pos  cpp.FilePos
}

// Tracker observes the directive stream of one file. All its state is
// discarded with it.
type Tracker struct {
	cpp.NopCallbacks

	src    *cpp.Source
	opts   Options
	log    logrus.FieldLogger
	report func(Finding)

	// Tracked macros by name, in order of first appearance.
	macros *linkedhashmap.Map
	// Builtin and function-like macros currently defined.
	untracked map[string]bool
	frames    *arraystack.Stack
	// defined operators of the condition about to be reported.
	pendingDefined []definedTest
	events         []logEntry
	finished       bool
}

// NewTracker creates a tracker reading conditions from src. report
// receives every finding.
func NewTracker(src *cpp.Source, opts Options, log logrus.FieldLogger, report func(Finding)) *Tracker {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Tracker{
		src:       src,
		opts:      opts,
		log:       log,
		report:    report,
		macros:    linkedhashmap.New(),
		untracked: make(map[string]bool),
		frames:    arraystack.New(),
	}
}

// Lookup returns the tracked macro called name, or nil.
func (t *Tracker) Lookup(name string) *Macro {
	v, ok := t.macros.Get(name)
	if !ok {
		return nil
	}
	return v.(*Macro)
}

// Macros returns the tracked macros in order of first appearance.
func (t *Tracker) Macros() []*Macro {
	ret := make([]*Macro, 0, t.macros.Size())
	t.macros.Each(func(_ interface{}, v interface{}) {
		ret = append(ret, v.(*Macro))
	})
	return ret
}

// Depth returns the number of open conditional chains.
func (t *Tracker) Depth() int {
	return t.frames.Size()
}

// Top returns the innermost open conditional chain, or nil.
func (t *Tracker) Top() *Frame {
	v, ok := t.frames.Peek()
	if !ok {
		return nil
	}
	return v.(*Frame)
}

func (t *Tracker) macro(name string) *Macro {
	if m := t.Lookup(name); m != nil {
		return m
	}
	m := &Macro{Name: name}
	t.macros.Put(name, m)
	t.log.WithField("macro", name).Trace("tracking macro")
	return m
}

func (t *Tracker) record(m *Macro, ev Event) {
	if m != nil {
		m.record(ev)
	}
	t.events = append(t.events, logEntry{Event: ev, macro: m})
}

func (t *Tracker) bracket(s State, pos cpp.FilePos) {
	t.record(nil, Event{State: s, Pos: pos})
}

func (t *Tracker) MacroDefined(name *cpp.Token, mi *cpp.MacroInfo) {
	if mi.Builtin || mi.FunctionLike || mi.Pos.File == "" || mi.Pos.File == cpp.BuiltinFile {
		t.untracked[name.Val] = true
		if m := t.Lookup(name.Val); m != nil && m.IsDefined() {
			m.DefinedAt = cpp.FilePos{}
			t.record(m, Event{State: Undefined, Pos: name.Pos})
		}
		return
	}
	delete(t.untracked, name.Val)
	m := t.macro(name.Val)
	m.DefinedAt = name.Pos
	m.HasValue = mi.HasValue()
	s := DefinedEmpty
	if m.HasValue {
		s = DefinedValue
	}
	t.record(m, Event{State: s, Pos: name.Pos, Def: name.Pos, HasValue: m.HasValue})
}

func (t *Tracker) MacroUndefined(name *cpp.Token, mi *cpp.MacroInfo, undef cpp.FilePos) {
	delete(t.untracked, name.Val)
	m := t.Lookup(name.Val)
	if m == nil {
		return
	}
	m.DefinedAt = cpp.FilePos{}
	m.HasValue = false
	t.record(m, Event{State: Undefined, Pos: undef})
}

func (t *Tracker) Defined(name *cpp.Token, mi *cpp.MacroInfo, r cpp.Range) {
	t.pendingDefined = append(t.pendingDefined, definedTest{name: name.Val, pos: r.Begin})
}

func (t *Tracker) testDefined(name string, pos cpp.FilePos) {
	if t.untracked[name] {
		return
	}
	m := t.macro(name)
	m.DefTests = append(m.DefTests, pos)
	t.record(m, Event{
		State:    TestedDefined,
		Pos:      pos,
		Def:      m.DefinedAt,
		HasValue: m.IsDefined() && m.HasValue,
	})
}

func (t *Tracker) flushDefined() {
	for _, d := range t.pendingDefined {
		t.testDefined(d.name, d.pos)
	}
	t.pendingDefined = nil
}

func (t *Tracker) testValues(cond cpp.Range) {
	for _, tok := range valueTestedIdents(t.src.Relex(cond)) {
		if t.untracked[tok.Val] {
			continue
		}
		m := t.Lookup(tok.Val)
		if (m == nil || !m.IsDefined()) && t.opts.WarnUndefinedValueTests && !isReserved(tok.Val) {
			t.report(Finding{Pos: tok.Pos, Message: fmt.Sprintf(undefinedMsg, tok.Val)})
		}
		m = t.macro(tok.Val)
		m.ValueTests = append(m.ValueTests, tok.Pos)
		t.record(m, Event{State: TestedValue, Pos: tok.Pos, Def: m.DefinedAt, HasValue: m.HasValue})
	}
}

// The condition of an #if belongs to the enclosing group, so its value
// tests are recorded before the scope opens.
func (t *Tracker) If(pos cpp.FilePos, cond cpp.Range, value cpp.ConditionValue) {
	t.testValues(cond)
	t.bracket(If, pos)
	t.frames.Push(&Frame{Kind: If, Pos: pos, IfPos: pos, Cond: cond})
	t.flushDefined()
}

func (t *Tracker) continueChain(kind State, pos cpp.FilePos, cond cpp.Range) {
	f := t.Top()
	if f == nil {
		panic(fmt.Sprintf("internal error: #%s at %s without open conditional", strings.ToLower(kind.String()), pos))
	}
	f.Kind, f.Pos, f.Cond = kind, pos, cond
	t.bracket(kind, pos)
}

func (t *Tracker) Elif(pos cpp.FilePos, cond cpp.Range, value cpp.ConditionValue, ifPos cpp.FilePos) {
	t.continueChain(ElIf, pos, cond)
	t.testValues(cond)
	t.flushDefined()
}

func (t *Tracker) openIfDef(pos cpp.FilePos, name *cpp.Token) {
	t.bracket(IfDef, pos)
	t.frames.Push(&Frame{Kind: IfDef, Pos: pos, IfPos: pos})
	t.testDefined(name.Val, pos)
}

func (t *Tracker) Ifdef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	t.openIfDef(pos, name)
}

func (t *Tracker) Ifndef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	t.openIfDef(pos, name)
}

func (t *Tracker) Elifdef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	t.continueChain(ElIfDef, pos, cpp.Range{})
	t.testDefined(name.Val, pos)
}

func (t *Tracker) Elifndef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	t.continueChain(ElIfDef, pos, cpp.Range{})
	t.testDefined(name.Val, pos)
}

func (t *Tracker) Else(pos cpp.FilePos, ifPos cpp.FilePos) {
	t.continueChain(Else, pos, cpp.Range{})
}

func (t *Tracker) Endif(pos cpp.FilePos, ifPos cpp.FilePos) {
	if _, ok := t.frames.Pop(); !ok {
		panic(fmt.Sprintf("internal error: #endif at %s without open conditional", pos))
	}
	t.bracket(EndIf, pos)
}

// EndOfMainFile replays the event log and reports every definition test
// of a macro that carries a value.
func (t *Tracker) EndOfMainFile() {
	if t.finished {
		return
	}
	t.finished = true
	reported := make(map[cpp.FilePos]bool)
	flagged := replay(t.events)
	for _, e := range flagged {
		if !reported[e.Def] {
			reported[e.Def] = true
			t.report(Finding{Pos: e.Def, Message: fmt.Sprintf(definedHereMsg, e.macro.Name)})
		}
		t.report(Finding{Pos: e.Pos, Message: fmt.Sprintf(checkedHereMsg, e.macro.Name)})
	}
	t.log.WithField("macros", t.macros.Size()).Debugf("macro condition replay flagged %d tests", len(flagged))
}

// Identifiers that never name a macro in a condition.
var conditionOperators = map[string]bool{
	"true":   true,
	"false":  true,
	"and":    true,
	"and_eq": true,
	"bitand": true,
	"bitor":  true,
	"compl":  true,
	"not":    true,
	"not_eq": true,
	"or":     true,
	"or_eq":  true,
	"xor":    true,
	"xor_eq": true,
}

// valueTestedIdents returns the identifiers of a condition whose value
// is used. defined operands and calls with their arguments are skipped.
func valueTestedIdents(toks []*cpp.Token) []*cpp.Token {
	var ret []*cpp.Token
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if !tok.IsIdent() || conditionOperators[tok.Val] {
			continue
		}
		switch {
		case tok.Val == "defined":
			if i+1 < len(toks) && toks[i+1].Kind == cpp.LPAREN {
				i = skipParens(toks, i+1)
			} else {
				i++
			}
		case i+1 < len(toks) && toks[i+1].Kind == cpp.LPAREN:
			i = skipParens(toks, i+1)
		default:
			ret = append(ret, tok)
		}
	}
	return ret
}

// skipParens returns the index of the paren closing toks[open].
func skipParens(toks []*cpp.Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Kind {
		case cpp.LPAREN:
			depth++
		case cpp.RPAREN:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks) - 1
}

// isReserved reports whether name is reserved to the implementation,
// which predefines most such macros.
func isReserved(name string) bool {
	if len(name) < 2 || name[0] != '_' {
		return false
	}
	return name[1] == '_' || (name[1] >= 'A' && name[1] <= 'Z')
}
