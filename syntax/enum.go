package syntax

import (
	"github.com/andrewchambers/pptidy/cpp"
	sitter "github.com/smacker/go-tree-sitter"
)

type Enumerator struct {
	Name string
	Pos  cpp.FilePos
}

// Enum is an enum declared with a body. Anonymous enums have no name.
type Enum struct {
	Name        string
	Pos         cpp.FilePos
	Scoped      bool
	Body        cpp.Range
	Enumerators []Enumerator
}

// Reference is an identifier naming an enumerator outside its enum.
type Reference struct {
	Pos        cpp.FilePos
	Enum       *Enum
	Enumerator string
}

// Enums returns every enum with a body in file order.
func (f *File) Enums() []*Enum {
	var enums []*Enum
	walk(f.root(), func(n *sitter.Node) bool {
		if n.Type() != "enum_specifier" {
			return true
		}
		body := n.ChildByFieldName("body")
		if body == nil {
			return true
		}
		e := &Enum{Pos: f.pos(n.StartByte()), Body: f.rangeOf(body), Scoped: isScoped(n)}
		if name := n.ChildByFieldName("name"); name != nil {
			e.Name = f.text(name)
			e.Pos = f.pos(name.StartByte())
		}
		for i := 0; i < int(body.NamedChildCount()); i++ {
			c := body.NamedChild(i)
			if c.Type() != "enumerator" {
				continue
			}
			name := c.ChildByFieldName("name")
			if name == nil {
				continue
			}
			e.Enumerators = append(e.Enumerators, Enumerator{Name: f.text(name), Pos: f.pos(name.StartByte())})
		}
		enums = append(enums, e)
		return true
	})
	return enums
}

// isScoped reports whether an enum_specifier is spelled enum class or
// enum struct.
func isScoped(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "class", "struct":
			return true
		}
	}
	return false
}

// declaredNames follows each declarator of n down to the identifier it
// declares. A declaration lists one declarator field per name.
func declaredNames(n *sitter.Node) []*sitter.Node {
	var names []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		for d := n.Child(i); d != nil; d = d.ChildByFieldName("declarator") {
			if d.Type() == "identifier" {
				names = append(names, d)
				break
			}
		}
	}
	return names
}

// References returns the identifiers that name an enumerator of one of
// enums outside that enum's body, in file order. Identifiers being
// declared, such as a local variable or parameter reusing an enumerator
// name, are not references.
func (f *File) References(enums []*Enum) []Reference {
	owner := make(map[string]*Enum)
	for _, e := range enums {
		for _, en := range e.Enumerators {
			owner[en.Name] = e
		}
	}
	if len(owner) == 0 {
		return nil
	}
	var refs []Reference
	declared := make(map[uint32]bool)
	walk(f.root(), func(n *sitter.Node) bool {
		if n.Type() != "identifier" {
			for _, d := range declaredNames(n) {
				declared[d.StartByte()] = true
			}
			return true
		}
		if declared[n.StartByte()] {
			return false
		}
		name := f.text(n)
		e, ok := owner[name]
		if !ok {
			return false
		}
		pos := f.pos(n.StartByte())
		if e.Body.Contains(pos) {
			return false
		}
		refs = append(refs, Reference{Pos: pos, Enum: e, Enumerator: name})
		return false
	})
	return refs
}
