package syntax

import (
	"github.com/andrewchambers/pptidy/cpp"
	sitter "github.com/smacker/go-tree-sitter"
)

// declNodeTypes are the node types that make a top level declaration.
var declNodeTypes = map[string]bool{
	"function_definition":       true,
	"declaration":               true,
	"type_definition":           true,
	"class_specifier":           true,
	"struct_specifier":          true,
	"union_specifier":           true,
	"enum_specifier":            true,
	"namespace_definition":      true,
	"template_declaration":      true,
	"template_instantiation":    true,
	"linkage_specification":     true,
	"alias_declaration":         true,
	"using_declaration":         true,
	"static_assert_declaration": true,
	"concept_definition":        true,
}

// Items of a conditional block are top level when the block is.
var conditionalNodeTypes = map[string]bool{
	"preproc_if":      true,
	"preproc_ifdef":   true,
	"preproc_else":    true,
	"preproc_elif":    true,
	"preproc_elifdef": true,
}

// Decl is a top level declaration.
type Decl struct {
	Kind  string
	Range cpp.Range
}

// TopLevelDecls returns the declarations directly in the translation
// unit, looking through conditional blocks, in file order. Declarations
// with an empty range are left out.
func (f *File) TopLevelDecls() []Decl {
	var decls []Decl
	f.topLevel(f.root(), &decls)
	return decls
}

func (f *File) topLevel(n *sitter.Node, decls *[]Decl) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch {
		case conditionalNodeTypes[c.Type()]:
			f.topLevel(c, decls)
		case declNodeTypes[c.Type()]:
			if c.StartByte() == c.EndByte() {
				continue
			}
			*decls = append(*decls, Decl{Kind: c.Type(), Range: f.rangeOf(c)})
		}
	}
}
