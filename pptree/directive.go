// Package pptree builds the directives of a file into a tree. Conditional
// directives own the directives of the group they open.
package pptree

import (
	"fmt"
	"strings"

	"github.com/andrewchambers/pptidy/cpp"
)

// Kind identifies the type of a directive.
type Kind int

const (
	InclusionKind Kind = iota
	IdentKind
	PragmaKind
	PragmaCommentKind
	PragmaDebugKind
	PragmaDetectMismatchKind
	PragmaMarkKind
	PragmaMessageKind
	MacroDefinedKind
	MacroUndefinedKind
	IfKind
	ElseKind
	ElseIfKind
	IfDefKind
	IfNotDefKind
	ElseIfDefKind
	ElseIfNotDefKind
	EndIfKind
)

var kindToStr = [...]string{
	InclusionKind:            "Inclusion",
	IdentKind:                "Ident",
	PragmaKind:               "Pragma",
	PragmaCommentKind:        "PragmaComment",
	PragmaDebugKind:          "PragmaDebug",
	PragmaDetectMismatchKind: "PragmaDetectMismatch",
	PragmaMarkKind:           "PragmaMark",
	PragmaMessageKind:        "PragmaMessage",
	MacroDefinedKind:         "MacroDefined",
	MacroUndefinedKind:       "MacroUndefined",
	IfKind:                   "If",
	ElseKind:                 "Else",
	ElseIfKind:               "ElseIf",
	IfDefKind:                "IfDef",
	IfNotDefKind:             "IfNotDef",
	ElseIfDefKind:            "ElseIfDef",
	ElseIfNotDefKind:         "ElseIfNotDef",
	EndIfKind:                "EndIf",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindToStr) {
		return "Unknown"
	}
	return kindToStr[k]
}

// ParseKind returns the kind named s, ignoring case.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindToStr {
		if strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown directive kind %q", s)
}

// Directive is one node of the tree.
type Directive interface {
	fmt.Stringer
	Kind() Kind
	// Loc is the location reported for the directive by the preprocessor.
	Loc() cpp.FilePos
}

// List is an ordered list of directives.
type List []Directive

// Conditional is implemented by the directives that open a group.
type Conditional interface {
	Directive
	Children() *List
}

// Tree holds the top level directives of a file.
type Tree struct {
	Directives List
}

type Inclusion struct {
	HashLoc       cpp.FilePos
	IncludeTok    *cpp.Token
	FileName      string
	IsAngled      bool
	FilenameRange cpp.Range
	File          string
	SearchPath    string
	RelativePath  string
}

type Ident struct {
	Pos cpp.FilePos
	Str string
}

type Pragma struct {
	Pos        cpp.FilePos
	Introducer cpp.PragmaIntroducer
}

type PragmaComment struct {
	Pos         cpp.FilePos
	CommentKind string
	Str         string
}

type PragmaDebug struct {
	Pos       cpp.FilePos
	DebugType string
}

type PragmaDetectMismatch struct {
	Pos   cpp.FilePos
	Name  string
	Value string
}

type PragmaMark struct {
	Pos    cpp.FilePos
	Trivia string
}

type PragmaMessage struct {
	Pos         cpp.FilePos
	Namespace   string
	MessageKind cpp.PragmaMessageKind
	Str         string
}

type MacroDefined struct {
	Name  *cpp.Token
	Macro *cpp.MacroInfo
}

type MacroUndefined struct {
	Name *cpp.Token
	// Macro is the definition removed, nil if there was none.
	Macro *cpp.MacroInfo
	Pos   cpp.FilePos
}

type If struct {
	Pos            cpp.FilePos
	ConditionRange cpp.Range
	// Condition is the spelling of the condition.
	Condition      string
	ConditionValue cpp.ConditionValue
	Directives     List
}

type Else struct {
	Pos        cpp.FilePos
	IfPos      cpp.FilePos
	Directives List
}

type ElseIf struct {
	Pos            cpp.FilePos
	ConditionRange cpp.Range
	Condition      string
	ConditionValue cpp.ConditionValue
	IfPos          cpp.FilePos
	Directives     List
}

// MacroTest holds the fields shared by the #ifdef family.
type MacroTest struct {
	Pos        cpp.FilePos
	Name       *cpp.Token
	Macro      *cpp.MacroInfo
	Directives List
}

type IfDef struct{ MacroTest }
type IfNotDef struct{ MacroTest }
type ElseIfDef struct{ MacroTest }
type ElseIfNotDef struct{ MacroTest }

type EndIf struct {
	Pos   cpp.FilePos
	IfPos cpp.FilePos
}

func (d *Inclusion) Kind() Kind            { return InclusionKind }
func (d *Ident) Kind() Kind                { return IdentKind }
func (d *Pragma) Kind() Kind               { return PragmaKind }
func (d *PragmaComment) Kind() Kind        { return PragmaCommentKind }
func (d *PragmaDebug) Kind() Kind          { return PragmaDebugKind }
func (d *PragmaDetectMismatch) Kind() Kind { return PragmaDetectMismatchKind }
func (d *PragmaMark) Kind() Kind           { return PragmaMarkKind }
func (d *PragmaMessage) Kind() Kind        { return PragmaMessageKind }
func (d *MacroDefined) Kind() Kind         { return MacroDefinedKind }
func (d *MacroUndefined) Kind() Kind       { return MacroUndefinedKind }
func (d *If) Kind() Kind                   { return IfKind }
func (d *Else) Kind() Kind                 { return ElseKind }
func (d *ElseIf) Kind() Kind               { return ElseIfKind }
func (d *IfDef) Kind() Kind                { return IfDefKind }
func (d *IfNotDef) Kind() Kind             { return IfNotDefKind }
func (d *ElseIfDef) Kind() Kind            { return ElseIfDefKind }
func (d *ElseIfNotDef) Kind() Kind         { return ElseIfNotDefKind }
func (d *EndIf) Kind() Kind                { return EndIfKind }

func (d *Inclusion) Loc() cpp.FilePos            { return d.HashLoc }
func (d *Ident) Loc() cpp.FilePos                { return d.Pos }
func (d *Pragma) Loc() cpp.FilePos               { return d.Pos }
func (d *PragmaComment) Loc() cpp.FilePos        { return d.Pos }
func (d *PragmaDebug) Loc() cpp.FilePos          { return d.Pos }
func (d *PragmaDetectMismatch) Loc() cpp.FilePos { return d.Pos }
func (d *PragmaMark) Loc() cpp.FilePos           { return d.Pos }
func (d *PragmaMessage) Loc() cpp.FilePos        { return d.Pos }
func (d *MacroDefined) Loc() cpp.FilePos         { return d.Name.Pos }
func (d *MacroUndefined) Loc() cpp.FilePos       { return d.Pos }
func (d *If) Loc() cpp.FilePos                   { return d.Pos }
func (d *Else) Loc() cpp.FilePos                 { return d.Pos }
func (d *ElseIf) Loc() cpp.FilePos               { return d.Pos }
func (d *MacroTest) Loc() cpp.FilePos            { return d.Pos }
func (d *EndIf) Loc() cpp.FilePos                { return d.Pos }

func (d *If) Children() *List        { return &d.Directives }
func (d *Else) Children() *List      { return &d.Directives }
func (d *ElseIf) Children() *List    { return &d.Directives }
func (d *MacroTest) Children() *List { return &d.Directives }

func (d *Inclusion) String() string {
	name := fmt.Sprintf("%q", d.FileName)
	if d.IsAngled {
		name = "<" + d.FileName + ">"
	}
	if d.File == "" {
		return fmt.Sprintf("Inclusion %s %s", d.HashLoc, name)
	}
	return fmt.Sprintf("Inclusion %s %s file=%s", d.HashLoc, name, d.File)
}

func (d *Ident) String() string {
	return fmt.Sprintf("Ident %s %s", d.Pos, d.Str)
}

func (d *Pragma) String() string {
	return fmt.Sprintf("Pragma %s %s", d.Pos, d.Introducer)
}

func (d *PragmaComment) String() string {
	return fmt.Sprintf("PragmaComment %s %s %q", d.Pos, d.CommentKind, d.Str)
}

func (d *PragmaDebug) String() string {
	return fmt.Sprintf("PragmaDebug %s %s", d.Pos, d.DebugType)
}

func (d *PragmaDetectMismatch) String() string {
	return fmt.Sprintf("PragmaDetectMismatch %s %q %q", d.Pos, d.Name, d.Value)
}

func (d *PragmaMark) String() string {
	return fmt.Sprintf("PragmaMark %s %q", d.Pos, d.Trivia)
}

func (d *PragmaMessage) String() string {
	if d.Namespace == "" {
		return fmt.Sprintf("PragmaMessage %s %s %q", d.Pos, d.MessageKind, d.Str)
	}
	return fmt.Sprintf("PragmaMessage %s %s %s %q", d.Pos, d.Namespace, d.MessageKind, d.Str)
}

// spelling joins the replacement list of a macro.
func spelling(toks []*cpp.Token) string {
	vals := make([]string, len(toks))
	for i, t := range toks {
		vals[i] = t.Val
	}
	return strings.Join(vals, " ")
}

func (d *MacroDefined) String() string {
	name := d.Name.Val
	if d.Macro.FunctionLike {
		name += "(" + strings.Join(d.Macro.Params, ", ") + ")"
	}
	if !d.Macro.HasValue() {
		return fmt.Sprintf("MacroDefined %s %s", d.Name.Pos, name)
	}
	return fmt.Sprintf("MacroDefined %s %s %s", d.Name.Pos, name, spelling(d.Macro.Tokens))
}

func (d *MacroUndefined) String() string {
	return fmt.Sprintf("MacroUndefined %s %s", d.Pos, d.Name.Val)
}

func (d *If) String() string {
	return fmt.Sprintf("If %s %q %s", d.Pos, d.Condition, d.ConditionValue)
}

func (d *Else) String() string {
	return fmt.Sprintf("Else %s if=%s", d.Pos, d.IfPos)
}

func (d *ElseIf) String() string {
	return fmt.Sprintf("ElseIf %s %q %s if=%s", d.Pos, d.Condition, d.ConditionValue, d.IfPos)
}

func (d *MacroTest) describe(kind Kind) string {
	state := "undefined"
	if d.Macro != nil {
		state = "defined"
	}
	return fmt.Sprintf("%s %s %s %s", kind, d.Pos, d.Name.Val, state)
}

func (d *IfDef) String() string        { return d.describe(IfDefKind) }
func (d *IfNotDef) String() string     { return d.describe(IfNotDefKind) }
func (d *ElseIfDef) String() string    { return d.describe(ElseIfDefKind) }
func (d *ElseIfNotDef) String() string { return d.describe(ElseIfNotDefKind) }

func (d *EndIf) String() string {
	return fmt.Sprintf("EndIf %s if=%s", d.Pos, d.IfPos)
}

// Name returns the name a directive is about: the macro of a definition
// or test, the file of an inclusion, the string of an #ident and the
// name of a detect_mismatch pragma. It is empty for other directives.
func Name(d Directive) string {
	switch d := d.(type) {
	case *Inclusion:
		return d.FileName
	case *Ident:
		return d.Str
	case *PragmaDetectMismatch:
		return d.Name
	case *MacroDefined:
		return d.Name.Val
	case *MacroUndefined:
		return d.Name.Val
	case *IfDef:
		return d.Name.Val
	case *IfNotDef:
		return d.Name.Val
	case *ElseIfDef:
		return d.Name.Val
	case *ElseIfNotDef:
		return d.Name.Val
	}
	return ""
}
