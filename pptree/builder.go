package pptree

import (
	"fmt"

	"github.com/andrewchambers/pptidy/cpp"
)

// Consumer receives the finished tree of a file.
type Consumer interface {
	EndOfMainFile(tree *Tree)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(tree *Tree)

func (f ConsumerFunc) EndOfMainFile(tree *Tree) { f(tree) }

// Builder turns the callbacks of one preprocessor run into a Tree.
// A conditional directive is appended to the current list and its own
// list becomes the insertion point until the next directive of its chain.
type Builder struct {
	cpp.NopCallbacks

	src      *cpp.Source
	consumer Consumer
	tree     *Tree
	// Insertion points, the tree root at the bottom.
	stack []*List
	done  bool
}

// NewBuilder creates a builder delivering to consumer. src is used to
// spell conditions and may be nil.
func NewBuilder(src *cpp.Source, consumer Consumer) *Builder {
	b := &Builder{src: src, consumer: consumer, tree: &Tree{}}
	b.stack = []*List{&b.tree.Directives}
	return b
}

// Tree returns the tree built so far.
func (b *Builder) Tree() *Tree {
	return b.tree
}

func (b *Builder) current() *List {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) add(d Directive) {
	l := b.current()
	*l = append(*l, d)
}

func (b *Builder) open(d Conditional) {
	b.add(d)
	b.stack = append(b.stack, d.Children())
}

func (b *Builder) pop(pos cpp.FilePos) {
	if len(b.stack) <= 1 {
		panic(fmt.Sprintf("internal error: directive at %s closes no conditional", pos))
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// next closes the active branch of a chain and opens d beside it.
func (b *Builder) next(d Conditional) {
	b.pop(d.Loc())
	b.open(d)
}

func (b *Builder) condition(r cpp.Range) string {
	if b.src == nil {
		return ""
	}
	return b.src.Text(r)
}

func (b *Builder) InclusionDirective(hash cpp.FilePos, inc *cpp.Include) {
	b.add(&Inclusion{
		HashLoc:       hash,
		IncludeTok:    inc.IncludeTok,
		FileName:      inc.FileName,
		IsAngled:      inc.IsAngled,
		FilenameRange: inc.FilenameRange,
		File:          inc.File,
		SearchPath:    inc.SearchPath,
		RelativePath:  inc.RelativePath,
	})
}

func (b *Builder) Ident(pos cpp.FilePos, str string) {
	b.add(&Ident{Pos: pos, Str: str})
}

func (b *Builder) PragmaDirective(pos cpp.FilePos, introducer cpp.PragmaIntroducer) {
	b.add(&Pragma{Pos: pos, Introducer: introducer})
}

func (b *Builder) PragmaComment(pos cpp.FilePos, kind string, str string) {
	b.add(&PragmaComment{Pos: pos, CommentKind: kind, Str: str})
}

func (b *Builder) PragmaMark(pos cpp.FilePos, trivia string) {
	b.add(&PragmaMark{Pos: pos, Trivia: trivia})
}

func (b *Builder) PragmaDetectMismatch(pos cpp.FilePos, name, value string) {
	b.add(&PragmaDetectMismatch{Pos: pos, Name: name, Value: value})
}

func (b *Builder) PragmaDebug(pos cpp.FilePos, debugType string) {
	b.add(&PragmaDebug{Pos: pos, DebugType: debugType})
}

func (b *Builder) PragmaMessage(pos cpp.FilePos, namespace string, kind cpp.PragmaMessageKind, str string) {
	b.add(&PragmaMessage{Pos: pos, Namespace: namespace, MessageKind: kind, Str: str})
}

func (b *Builder) MacroDefined(name *cpp.Token, mi *cpp.MacroInfo) {
	if mi.Builtin {
		return
	}
	b.add(&MacroDefined{Name: name, Macro: mi})
}

func (b *Builder) MacroUndefined(name *cpp.Token, mi *cpp.MacroInfo, undef cpp.FilePos) {
	b.add(&MacroUndefined{Name: name, Macro: mi, Pos: undef})
}

func (b *Builder) If(pos cpp.FilePos, cond cpp.Range, value cpp.ConditionValue) {
	b.open(&If{Pos: pos, ConditionRange: cond, Condition: b.condition(cond), ConditionValue: value})
}

func (b *Builder) Elif(pos cpp.FilePos, cond cpp.Range, value cpp.ConditionValue, ifPos cpp.FilePos) {
	b.next(&ElseIf{Pos: pos, ConditionRange: cond, Condition: b.condition(cond), ConditionValue: value, IfPos: ifPos})
}

func (b *Builder) Ifdef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	b.open(&IfDef{MacroTest{Pos: pos, Name: name, Macro: mi}})
}

func (b *Builder) Ifndef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	b.open(&IfNotDef{MacroTest{Pos: pos, Name: name, Macro: mi}})
}

func (b *Builder) Elifdef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	b.next(&ElseIfDef{MacroTest{Pos: pos, Name: name, Macro: mi}})
}

func (b *Builder) Elifndef(pos cpp.FilePos, name *cpp.Token, mi *cpp.MacroInfo) {
	b.next(&ElseIfNotDef{MacroTest{Pos: pos, Name: name, Macro: mi}})
}

func (b *Builder) Else(pos cpp.FilePos, ifPos cpp.FilePos) {
	b.next(&Else{Pos: pos, IfPos: ifPos})
}

func (b *Builder) Endif(pos cpp.FilePos, ifPos cpp.FilePos) {
	b.pop(pos)
	b.add(&EndIf{Pos: pos, IfPos: ifPos})
}

// EndOfMainFile hands the tree to the consumer, once.
func (b *Builder) EndOfMainFile() {
	if b.done {
		return
	}
	b.done = true
	if b.consumer != nil {
		b.consumer.EndOfMainFile(b.tree)
	}
}
