package pptree

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes a tree one directive per line, the children of a
// conditional indented one level deeper than it.
type Printer struct {
	w io.Writer
	// Indent is written once per level.
	Indent string
	depth  int
	err    error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, Indent: "  "}
}

// Print writes t and returns the first write error.
func (p *Printer) Print(t *Tree) error {
	p.depth = 0
	p.err = nil
	p.printList(t.Directives)
	return p.err
}

func (p *Printer) printList(list List) {
	for _, d := range list {
		p.printf("%s%s\n", strings.Repeat(p.Indent, p.depth), d)
		if c, ok := d.(Conditional); ok {
			p.depth++
			p.printList(*c.Children())
			p.depth--
		}
	}
}

func (p *Printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
