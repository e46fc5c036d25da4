package macrocond

import (
	"github.com/andrewchambers/pptidy/cpp"
)

// State is a step in the life of a tracked macro. The bracketing states
// only appear in the event log, where they delimit conditional scopes.
type State int

const (
	Undefined State = iota
	DefinedEmpty
	DefinedValue
	TestedDefined
	TestedValue

	If
	IfDef
	Else
	ElIf
	ElIfDef
	EndIf
)

var stateToStr = [...]string{
	Undefined:     "Undefined",
	DefinedEmpty:  "DefinedEmpty",
	DefinedValue:  "DefinedValue",
	TestedDefined: "TestedDefined",
	TestedValue:   "TestedValue",
	If:            "If",
	IfDef:         "IfDef",
	Else:          "Else",
	ElIf:          "ElIf",
	ElIfDef:       "ElIfDef",
	EndIf:         "EndIf",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateToStr) {
		return "Unknown"
	}
	return stateToStr[s]
}

// Event is one entry of a macro history or of the tracker log.
type Event struct {
	State State
	Pos   cpp.FilePos
	// Definition in effect when the event happened, for tests.
	Def      cpp.FilePos
	HasValue bool
}

// Macro is a macro name seen by the tracker. It lives until the end of
// the file.
type Macro struct {
	Name  string
	State State
	// DefinedAt is the location of the name in the current #define, the
	// zero position when the macro is not defined.
	DefinedAt  cpp.FilePos
	HasValue   bool
	DefTests   []cpp.FilePos
	ValueTests []cpp.FilePos
	History    []Event
}

// IsDefined reports whether the macro is currently defined.
func (m *Macro) IsDefined() bool {
	return m.DefinedAt.IsValid()
}

func (m *Macro) record(ev Event) {
	m.State = ev.State
	m.History = append(m.History, ev)
}
