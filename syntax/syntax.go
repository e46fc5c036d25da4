// Package syntax scans the declarations of a file with tree-sitter. It
// knows just enough of the grammar to report where top level
// declarations lie and what enums a file declares.
package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	tsc "github.com/smacker/go-tree-sitter/c"
	tscpp "github.com/smacker/go-tree-sitter/cpp"
)

type Language int

const (
	C Language = iota
	CPlusPlus
)

func (l Language) String() string {
	if l == C {
		return "c"
	}
	return "c++"
}

// ParseLanguage parses a language name. An empty name or "auto" picks the
// language from the extension of file.
func ParseLanguage(s, file string) (Language, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return LanguageOf(file), nil
	case "c":
		return C, nil
	case "c++", "cpp", "cxx":
		return CPlusPlus, nil
	}
	return C, fmt.Errorf("unknown language %q", s)
}

// LanguageOf guesses the language from a file name. Only .c files are C.
func LanguageOf(file string) Language {
	if strings.ToLower(filepath.Ext(file)) == ".c" {
		return C
	}
	return CPlusPlus
}

func (l Language) grammar() *sitter.Language {
	if l == C {
		return tsc.GetLanguage()
	}
	return tscpp.GetLanguage()
}

// File is a parsed source file.
type File struct {
	Src  *cpp.Source
	Lang Language
	tree *sitter.Tree
}

// Parse builds the syntax tree of src. Syntax errors are not fatal, the
// tree then holds ERROR nodes which the scanners skip.
func Parse(ctx context.Context, src *cpp.Source, lang Language) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())
	tree, err := parser.ParseCtx(ctx, nil, src.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", src.Name)
	}
	return &File{Src: src, Lang: lang, tree: tree}, nil
}

// Close releases the syntax tree.
func (f *File) Close() {
	f.tree.Close()
}

func (f *File) root() *sitter.Node {
	return f.tree.RootNode()
}

func (f *File) pos(offset uint32) cpp.FilePos {
	return f.Src.PosAt(int(offset))
}

func (f *File) rangeOf(n *sitter.Node) cpp.Range {
	return cpp.Range{Begin: f.pos(n.StartByte()), End: f.pos(n.EndByte())}
}

func (f *File) text(n *sitter.Node) string {
	return n.Content(f.Src.Data)
}

// walk visits n and its descendants depth first. Returning false from fn
// skips the children of a node.
func walk(n *sitter.Node, fn func(n *sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}
