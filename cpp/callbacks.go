package cpp

// MacroInfo describes one definition of a macro.
type MacroInfo struct {
	Name string
	// Pos is the location of the macro name in its #define.
	Pos    FilePos
	Params []string
	// Tokens is the replacement list.
	Tokens       []*Token
	FunctionLike bool
	Variadic     bool
	Builtin      bool
	// DefinitionEnd is the end of the last token of the definition.
	DefinitionEnd FilePos
}

// HasValue reports whether the macro expands to anything.
func (mi *MacroInfo) HasValue() bool {
	return len(mi.Tokens) > 0
}

// ConditionValue is the outcome of evaluating an #if or #elif condition.
type ConditionValue int

const (
	NotEvaluated ConditionValue = iota
	ConditionFalse
	ConditionTrue
)

func (cv ConditionValue) String() string {
	switch cv {
	case ConditionFalse:
		return "False"
	case ConditionTrue:
		return "True"
	}
	return "NotEvaluated"
}

// PragmaIntroducer is the syntax that introduced a pragma.
type PragmaIntroducer int

const (
	PragmaHash       PragmaIntroducer = iota // #pragma
	PragmaOperator                           // _Pragma("...")
	PragmaMicrosoft                          // __pragma(...)
)

func (pi PragmaIntroducer) String() string {
	switch pi {
	case PragmaOperator:
		return "_Pragma"
	case PragmaMicrosoft:
		return "__pragma"
	}
	return "#pragma"
}

// PragmaMessageKind distinguishes #pragma message from the GCC
// warning and error forms.
type PragmaMessageKind int

const (
	PragmaMessagePlain PragmaMessageKind = iota
	PragmaMessageWarning
	PragmaMessageError
)

func (k PragmaMessageKind) String() string {
	switch k {
	case PragmaMessageWarning:
		return "Warning"
	case PragmaMessageError:
		return "Error"
	}
	return "Message"
}

// Include carries the details of an #include directive.
type Include struct {
	IncludeTok    *Token
	FileName      string
	IsAngled      bool
	FilenameRange Range
	// File is the resolved path, empty when the header was not found.
	File         string
	SearchPath   string
	RelativePath string
}

// Callbacks observes the directive stream of one file. Locations of
// conditional directives point at the directive name.
type Callbacks interface {
	InclusionDirective(hash FilePos, inc *Include)
	Ident(pos FilePos, str string)
	PragmaDirective(pos FilePos, introducer PragmaIntroducer)
	PragmaComment(pos FilePos, kind string, str string)
	PragmaMark(pos FilePos, trivia string)
	PragmaDetectMismatch(pos FilePos, name, value string)
	PragmaDebug(pos FilePos, debugType string)
	PragmaMessage(pos FilePos, namespace string, kind PragmaMessageKind, str string)
	MacroDefined(name *Token, mi *MacroInfo)
	// MacroUndefined receives a nil mi when the macro was not defined.
	MacroUndefined(name *Token, mi *MacroInfo, undef FilePos)
	// Defined fires for each defined operator of a condition, before the
	// If or Elif callback of that condition.
	Defined(name *Token, mi *MacroInfo, r Range)
	If(pos FilePos, cond Range, value ConditionValue)
	Elif(pos FilePos, cond Range, value ConditionValue, ifPos FilePos)
	Ifdef(pos FilePos, name *Token, mi *MacroInfo)
	Ifndef(pos FilePos, name *Token, mi *MacroInfo)
	Elifdef(pos FilePos, name *Token, mi *MacroInfo)
	Elifndef(pos FilePos, name *Token, mi *MacroInfo)
	Else(pos FilePos, ifPos FilePos)
	Endif(pos FilePos, ifPos FilePos)
	EndOfMainFile()
}

// NopCallbacks implements every callback as a no-op. Embed it and
// override what is needed.
type NopCallbacks struct{}

func (NopCallbacks) InclusionDirective(hash FilePos, inc *Include)             {}
func (NopCallbacks) Ident(pos FilePos, str string)                             {}
func (NopCallbacks) PragmaDirective(pos FilePos, introducer PragmaIntroducer) {}
func (NopCallbacks) PragmaComment(pos FilePos, kind string, str string)        {}
func (NopCallbacks) PragmaMark(pos FilePos, trivia string)                     {}
func (NopCallbacks) PragmaDetectMismatch(pos FilePos, name, value string)      {}
func (NopCallbacks) PragmaDebug(pos FilePos, debugType string)                 {}
func (NopCallbacks) PragmaMessage(pos FilePos, namespace string, kind PragmaMessageKind, str string) {
}
func (NopCallbacks) MacroDefined(name *Token, mi *MacroInfo)                           {}
func (NopCallbacks) MacroUndefined(name *Token, mi *MacroInfo, undef FilePos)          {}
func (NopCallbacks) Defined(name *Token, mi *MacroInfo, r Range)                       {}
func (NopCallbacks) If(pos FilePos, cond Range, value ConditionValue)                  {}
func (NopCallbacks) Elif(pos FilePos, cond Range, value ConditionValue, ifPos FilePos) {}
func (NopCallbacks) Ifdef(pos FilePos, name *Token, mi *MacroInfo)                     {}
func (NopCallbacks) Ifndef(pos FilePos, name *Token, mi *MacroInfo)                    {}
func (NopCallbacks) Elifdef(pos FilePos, name *Token, mi *MacroInfo)                   {}
func (NopCallbacks) Elifndef(pos FilePos, name *Token, mi *MacroInfo)                  {}
func (NopCallbacks) Else(pos FilePos, ifPos FilePos)                                   {}
func (NopCallbacks) Endif(pos FilePos, ifPos FilePos)                                  {}
func (NopCallbacks) EndOfMainFile()                                                    {}
