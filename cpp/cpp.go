package cpp

import (
	"container/list"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Preprocessor walks the directives of one file and reports them to its
// callbacks in file order. Macros are recorded but never expanded and
// included files are resolved but never entered. Every group of every
// conditional is visited, whatever its condition evaluates to.
type Preprocessor struct {
	lx  *Lexer
	src *Source
	is  IncludeSearcher
	//Token read past the end of a directive.
	pushedBack *Token
	//Map of defined macros
	macros     map[string]*MacroInfo
	predefines []*MacroInfo
	callbacks  []Callbacks

	//Stack of condContext about #if blocks
	conditionalStack *list.List
	ran              bool
}

type condContext struct {
	ifPos   FilePos
	sawElse bool
}

// BuiltinFile is the file name given to predefined macros.
const BuiltinFile = "<built-in>"

var builtinMacros = []string{
	"__FILE__",
	"__LINE__",
	"__DATE__",
	"__TIME__",
	"__TIMESTAMP__",
	"__COUNTER__",
	"__INCLUDE_LEVEL__",
	"__BASE_FILE__",
}

func (pp *Preprocessor) pushCondContext(pos FilePos) {
	pp.conditionalStack.PushBack(&condContext{ifPos: pos})
}

func (pp *Preprocessor) popCondContext() *condContext {
	if pp.condDepth() == 0 {
		panic("internal bug")
	}
	return pp.conditionalStack.Remove(pp.conditionalStack.Back()).(*condContext)
}

func (pp *Preprocessor) topCondContext() *condContext {
	if pp.condDepth() == 0 {
		return nil
	}
	return pp.conditionalStack.Back().Value.(*condContext)
}

func (pp *Preprocessor) condDepth() int {
	return pp.conditionalStack.Len()
}

// New creates a preprocessor over src. is may be nil, in which case
// includes are reported unresolved.
func New(src *Source, is IncludeSearcher) *Preprocessor {
	ret := new(Preprocessor)
	ret.src = src
	ret.lx = Lex(src.Name, src.Data)
	ret.is = is
	ret.macros = make(map[string]*MacroInfo)
	ret.conditionalStack = list.New()
	return ret
}

// Source returns the file being preprocessed.
func (pp *Preprocessor) Source() *Source {
	return pp.src
}

// AddCallbacks registers cb. Callbacks are invoked in registration order.
func (pp *Preprocessor) AddCallbacks(cb Callbacks) {
	pp.callbacks = append(pp.callbacks, cb)
}

// Define predefines an object-like macro as if by -Dname=value.
// It must be called before Run.
func (pp *Preprocessor) Define(name, value string) {
	pos := FilePos{File: BuiltinFile, Line: 1, Col: 1}
	mi := &MacroInfo{Name: name, Pos: pos, Builtin: true, DefinitionEnd: pos}
	lx := Lex(BuiltinFile, []byte(value))
	for {
		t, err := lx.Next()
		if err != nil || t.Kind == EOF {
			break
		}
		mi.Tokens = append(mi.Tokens, t)
	}
	pp.predefines = append(pp.predefines, mi)
}

// IsDefined reports whether name is currently defined.
func (pp *Preprocessor) IsDefined(name string) bool {
	_, ok := pp.macros[name]
	return ok
}

func (pp *Preprocessor) each(f func(cb Callbacks)) {
	for _, cb := range pp.callbacks {
		f(cb)
	}
}

type cppbreakout struct {
	err error
}

func (pp *Preprocessor) cppError(e string, pos FilePos) {
	panic(&cppbreakout{
		err: ErrWithLoc(errors.New(e), pos),
	})
}

func (pp *Preprocessor) nextNoExpand() *Token {
	if pp.pushedBack != nil {
		t := pp.pushedBack
		pp.pushedBack = nil
		return t
	}
	t, err := pp.lx.Next()
	if err != nil {
		panic(&cppbreakout{err})
	}
	return t
}

// Run reports every directive of the file. It stops at the first error,
// a lexing error or unbalanced conditional directives.
// EndOfMainFile is not reported until Finish is called.
func (pp *Preprocessor) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			b, ok := e.(*cppbreakout)
			if !ok {
				panic(e)
			}
			err = b.err
		}
	}()
	if pp.ran {
		return fmt.Errorf("preprocessor for %s already ran", pp.src.Name)
	}
	pp.ran = true
	pp.definePredefined()
	for {
		t := pp.nextNoExpand()
		if t.Kind == EOF {
			break
		}
		if t.Kind == DIRECTIVE {
			pp.handleDirective(t)
		}
	}
	if ctx := pp.topCondContext(); ctx != nil {
		pp.cppError("unterminated conditional directive", ctx.ifPos)
	}
	return nil
}

// Finish reports the end of the main file.
func (pp *Preprocessor) Finish() {
	pp.each(func(cb Callbacks) { cb.EndOfMainFile() })
}

func (pp *Preprocessor) definePredefined() {
	pos := FilePos{File: BuiltinFile, Line: 1, Col: 1}
	defs := make([]*MacroInfo, 0, len(builtinMacros)+len(pp.predefines))
	for _, name := range builtinMacros {
		defs = append(defs, &MacroInfo{Name: name, Pos: pos, Builtin: true, DefinitionEnd: pos})
	}
	defs = append(defs, pp.predefines...)
	for _, mi := range defs {
		mi := mi
		pp.macros[mi.Name] = mi
		nameTok := &Token{Kind: IDENT, Val: mi.Name, Pos: mi.Pos, End: mi.Pos}
		pp.each(func(cb Callbacks) { cb.MacroDefined(nameTok, mi) })
	}
}

// readLine returns the remaining tokens of the current directive.
func (pp *Preprocessor) readLine() []*Token {
	var toks []*Token
	for {
		t := pp.nextNoExpand()
		switch t.Kind {
		case END_DIRECTIVE:
			return toks
		case EOF:
			pp.pushedBack = t
			return toks
		}
		toks = append(toks, t)
	}
}

func (pp *Preprocessor) handleDirective(dirTok *Token) {
	if dirTok.Kind != DIRECTIVE {
		pp.cppError(fmt.Sprintf("internal error %s", dirTok), dirTok.Pos)
	}
	switch dirTok.Val {
	case "if":
		pp.handleIf(dirTok)
	case "ifdef", "ifndef":
		pp.handleIfDef(dirTok)
	case "elif":
		pp.handleElif(dirTok)
	case "elifdef", "elifndef":
		pp.handleElifDef(dirTok)
	case "else":
		pp.handleElse(dirTok)
	case "endif":
		pp.handleEndif(dirTok)
	case "undef":
		pp.handleUndefine(dirTok)
	case "define":
		pp.handleDefine(dirTok)
	case "include", "include_next", "import":
		pp.handleInclude(dirTok)
	case "pragma":
		pp.handlePragma(dirTok)
	case "ident", "sccs":
		pp.handleIdent(dirTok)
	default:
		//#error, #warning, #line, null and unknown directives carry
		//nothing that is tracked.
		pp.readLine()
	}
}

// readCondition reads the expression of an #if or #elif and its range.
func (pp *Preprocessor) readCondition(dirTok *Token) ([]*Token, Range) {
	toks := pp.readLine()
	if len(toks) == 0 {
		return nil, Range{Begin: dirTok.End, End: dirTok.End}
	}
	return toks, Range{Begin: toks[0].Pos, End: toks[len(toks)-1].End}
}

// reportDefined reports each defined operator of a condition.
func (pp *Preprocessor) reportDefined(toks []*Token) {
	for i, t := range toks {
		if t.Kind != IDENT || t.Val != "defined" {
			continue
		}
		var name, last *Token
		switch {
		case i+1 < len(toks) && toks[i+1].IsIdent():
			name = toks[i+1]
			last = name
		case i+3 < len(toks) && toks[i+1].Kind == LPAREN && toks[i+2].IsIdent() && toks[i+3].Kind == RPAREN:
			name = toks[i+2]
			last = toks[i+3]
		default:
			continue
		}
		mi := pp.macros[name.Val]
		r := Range{Begin: t.Pos, End: last.End}
		pp.each(func(cb Callbacks) { cb.Defined(name, mi, r) })
	}
}

func (pp *Preprocessor) handleIf(dirTok *Token) {
	toks, r := pp.readCondition(dirTok)
	pp.reportDefined(toks)
	value := evalCondition(toks, pp.macros)
	pp.pushCondContext(dirTok.Pos)
	pp.each(func(cb Callbacks) { cb.If(dirTok.Pos, r, value) })
}

func (pp *Preprocessor) continuedCondContext(dirTok *Token) *condContext {
	ctx := pp.topCondContext()
	if ctx == nil {
		pp.cppError(fmt.Sprintf("#%s without #if", dirTok.Val), dirTok.Pos)
	}
	if ctx.sawElse {
		pp.cppError(fmt.Sprintf("#%s after #else", dirTok.Val), dirTok.Pos)
	}
	return ctx
}

func (pp *Preprocessor) handleElif(dirTok *Token) {
	ctx := pp.continuedCondContext(dirTok)
	toks, r := pp.readCondition(dirTok)
	pp.reportDefined(toks)
	value := evalCondition(toks, pp.macros)
	pp.each(func(cb Callbacks) { cb.Elif(dirTok.Pos, r, value, ctx.ifPos) })
}

func (pp *Preprocessor) readMacroName(dirTok *Token) *Token {
	toks := pp.readLine()
	if len(toks) == 0 || !toks[0].IsIdent() {
		pp.cppError(fmt.Sprintf("macro name missing in #%s", dirTok.Val), dirTok.End)
	}
	return toks[0]
}

func (pp *Preprocessor) handleIfDef(dirTok *Token) {
	name := pp.readMacroName(dirTok)
	mi := pp.macros[name.Val]
	pp.pushCondContext(dirTok.Pos)
	if dirTok.Val == "ifdef" {
		pp.each(func(cb Callbacks) { cb.Ifdef(dirTok.Pos, name, mi) })
	} else {
		pp.each(func(cb Callbacks) { cb.Ifndef(dirTok.Pos, name, mi) })
	}
}

func (pp *Preprocessor) handleElifDef(dirTok *Token) {
	pp.continuedCondContext(dirTok)
	name := pp.readMacroName(dirTok)
	mi := pp.macros[name.Val]
	if dirTok.Val == "elifdef" {
		pp.each(func(cb Callbacks) { cb.Elifdef(dirTok.Pos, name, mi) })
	} else {
		pp.each(func(cb Callbacks) { cb.Elifndef(dirTok.Pos, name, mi) })
	}
}

func (pp *Preprocessor) handleElse(dirTok *Token) {
	ctx := pp.continuedCondContext(dirTok)
	ctx.sawElse = true
	pp.readLine()
	pp.each(func(cb Callbacks) { cb.Else(dirTok.Pos, ctx.ifPos) })
}

func (pp *Preprocessor) handleEndif(dirTok *Token) {
	if pp.condDepth() <= 0 {
		pp.cppError("stray #endif", dirTok.Pos)
	}
	ctx := pp.popCondContext()
	pp.readLine()
	pp.each(func(cb Callbacks) { cb.Endif(dirTok.Pos, ctx.ifPos) })
}

func (pp *Preprocessor) handleInclude(dirTok *Token) {
	toks := pp.readLine()
	if len(toks) == 0 || toks[0].Kind != HEADER {
		//Computed includes need macro expansion.
		return
	}
	hdr := toks[0]
	inc := &Include{
		IncludeTok:    dirTok,
		FileName:      hdr.Val[1 : len(hdr.Val)-1],
		IsAngled:      hdr.Val[0] == '<',
		FilenameRange: hdr.Range(),
	}
	inc.RelativePath = inc.FileName
	if pp.is != nil {
		var err error
		if inc.IsAngled {
			inc.File, inc.SearchPath, err = pp.is.IncludeAngled(pp.src.Name, inc.FileName)
		} else {
			inc.File, inc.SearchPath, err = pp.is.IncludeQuote(pp.src.Name, inc.FileName)
		}
		if err != nil {
			inc.File, inc.SearchPath = "", ""
		}
	}
	pp.each(func(cb Callbacks) { cb.InclusionDirective(dirTok.HashPos(), inc) })
}

func (pp *Preprocessor) handleUndefine(dirTok *Token) {
	name := pp.readMacroName(dirTok)
	mi := pp.macros[name.Val]
	delete(pp.macros, name.Val)
	pp.each(func(cb Callbacks) { cb.MacroUndefined(name, mi, dirTok.Pos) })
}

func (pp *Preprocessor) handleDefine(dirTok *Token) {
	toks := pp.readLine()
	if len(toks) == 0 || !toks[0].IsIdent() {
		pp.cppError("macro name missing in #define", dirTok.End)
	}
	ident := toks[0]
	mi := &MacroInfo{Name: ident.Val, Pos: ident.Pos, DefinitionEnd: ident.End}
	body := toks[1:]
	if len(body) > 0 && body[0].Kind == FUNCLIKE_DEFINE {
		mi.FunctionLike = true
		body = pp.readMacroParams(mi, body[1:])
	}
	mi.Tokens = body
	if len(body) > 0 {
		mi.DefinitionEnd = body[len(body)-1].End
	}
	pp.macros[ident.Val] = mi
	pp.each(func(cb Callbacks) { cb.MacroDefined(ident, mi) })
}

// readMacroParams parses the parameter list starting at the opening
// paren and returns the tokens that follow it.
func (pp *Preprocessor) readMacroParams(mi *MacroInfo, toks []*Token) []*Token {
	if len(toks) == 0 || toks[0].Kind != LPAREN {
		panic("Bug, func like define without opening LPAREN")
	}
	i := 1
	if i < len(toks) && toks[i].Kind == RPAREN {
		mi.DefinitionEnd = toks[i].End
		return toks[i+1:]
	}
	for {
		if i >= len(toks) {
			pp.cppError("missing ')' in macro parameter list", mi.Pos)
		}
		t := toks[i]
		switch {
		case t.Kind == ELLIPSIS:
			mi.Variadic = true
			mi.Params = append(mi.Params, "__VA_ARGS__")
		case t.IsIdent():
			mi.Params = append(mi.Params, t.Val)
			if i+1 < len(toks) && toks[i+1].Kind == ELLIPSIS {
				mi.Variadic = true
				i++
			}
		default:
			pp.cppError("Expected macro argument", t.Pos)
		}
		i++
		if i >= len(toks) {
			pp.cppError("missing ')' in macro parameter list", mi.Pos)
		}
		switch {
		case toks[i].Kind == RPAREN:
			mi.DefinitionEnd = toks[i].End
			return toks[i+1:]
		case toks[i].Kind == COMMA && !mi.Variadic:
			i++
		default:
			pp.cppError("Error in macro definition expected , or )", toks[i].Pos)
		}
	}
}

// unquote returns the contents of a string literal, dropping any
// encoding prefix.
func unquote(s string) string {
	q := strings.IndexByte(s, '"')
	if q < 0 {
		return s
	}
	s = s[q:]
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return strings.Trim(s, "\"")
}

// stringArgs collects the string literals of a pragma, concatenating
// adjacent ones.
func stringArgs(toks []*Token) []string {
	var ret []string
	adjacent := false
	for _, t := range toks {
		if t.Kind != STRING {
			adjacent = false
			continue
		}
		if adjacent {
			ret[len(ret)-1] += unquote(t.Val)
		} else {
			ret = append(ret, unquote(t.Val))
		}
		adjacent = true
	}
	return ret
}

func (pp *Preprocessor) handlePragma(dirTok *Token) {
	toks := pp.readLine()
	pp.each(func(cb Callbacks) { cb.PragmaDirective(dirTok.Pos, PragmaHash) })
	if len(toks) == 0 {
		return
	}
	name := toks[0]
	strs := stringArgs(toks[1:])
	switch name.Val {
	case "comment":
		if len(toks) < 3 || toks[1].Kind != LPAREN || !toks[2].IsIdent() {
			return
		}
		str := ""
		if len(strs) > 0 {
			str = strs[0]
		}
		pp.each(func(cb Callbacks) { cb.PragmaComment(name.Pos, toks[2].Val, str) })
	case "mark":
		trivia := ""
		if len(toks) > 1 {
			trivia = strings.TrimSpace(pp.src.Text(Range{Begin: name.End, End: toks[len(toks)-1].End}))
		}
		pp.each(func(cb Callbacks) { cb.PragmaMark(name.Pos, trivia) })
	case "detect_mismatch":
		if len(strs) < 2 {
			return
		}
		pp.each(func(cb Callbacks) { cb.PragmaDetectMismatch(name.Pos, strs[0], strs[1]) })
	case "message":
		if len(strs) < 1 {
			return
		}
		pp.each(func(cb Callbacks) { cb.PragmaMessage(name.Pos, "", PragmaMessagePlain, strs[0]) })
	case "GCC":
		if len(toks) < 2 || len(strs) < 1 {
			return
		}
		var kind PragmaMessageKind
		switch toks[1].Val {
		case "warning":
			kind = PragmaMessageWarning
		case "error":
			kind = PragmaMessageError
		default:
			return
		}
		pp.each(func(cb Callbacks) { cb.PragmaMessage(name.Pos, "GCC", kind, strs[0]) })
	case "clang":
		if len(toks) < 3 || toks[1].Val != "__debug" {
			return
		}
		pp.each(func(cb Callbacks) { cb.PragmaDebug(name.Pos, toks[2].Val) })
	}
}

func (pp *Preprocessor) handleIdent(dirTok *Token) {
	toks := pp.readLine()
	if len(toks) == 0 || toks[0].Kind != STRING {
		return
	}
	pp.each(func(cb Callbacks) { cb.Ident(dirTok.Pos, toks[0].Val) })
}
