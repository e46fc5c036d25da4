package pptree

import "fmt"

// Visitor has one method per directive kind. Returning false from any
// method stops the walk.
type Visitor interface {
	VisitInclusion(d *Inclusion) bool
	VisitIdent(d *Ident) bool
	VisitPragma(d *Pragma) bool
	VisitPragmaComment(d *PragmaComment) bool
	VisitPragmaDebug(d *PragmaDebug) bool
	VisitPragmaDetectMismatch(d *PragmaDetectMismatch) bool
	VisitPragmaMark(d *PragmaMark) bool
	VisitPragmaMessage(d *PragmaMessage) bool
	VisitMacroDefined(d *MacroDefined) bool
	VisitMacroUndefined(d *MacroUndefined) bool
	VisitIf(d *If) bool
	VisitElse(d *Else) bool
	VisitElseIf(d *ElseIf) bool
	VisitIfDef(d *IfDef) bool
	VisitIfNotDef(d *IfNotDef) bool
	VisitElseIfDef(d *ElseIfDef) bool
	VisitElseIfNotDef(d *ElseIfNotDef) bool
	VisitEndIf(d *EndIf) bool
}

// BaseVisitor continues on every directive. Embed it and override what
// is needed.
type BaseVisitor struct{}

func (BaseVisitor) VisitInclusion(d *Inclusion) bool                       { return true }
func (BaseVisitor) VisitIdent(d *Ident) bool                               { return true }
func (BaseVisitor) VisitPragma(d *Pragma) bool                             { return true }
func (BaseVisitor) VisitPragmaComment(d *PragmaComment) bool               { return true }
func (BaseVisitor) VisitPragmaDebug(d *PragmaDebug) bool                   { return true }
func (BaseVisitor) VisitPragmaDetectMismatch(d *PragmaDetectMismatch) bool { return true }
func (BaseVisitor) VisitPragmaMark(d *PragmaMark) bool                     { return true }
func (BaseVisitor) VisitPragmaMessage(d *PragmaMessage) bool               { return true }
func (BaseVisitor) VisitMacroDefined(d *MacroDefined) bool                 { return true }
func (BaseVisitor) VisitMacroUndefined(d *MacroUndefined) bool             { return true }
func (BaseVisitor) VisitIf(d *If) bool                                     { return true }
func (BaseVisitor) VisitElse(d *Else) bool                                 { return true }
func (BaseVisitor) VisitElseIf(d *ElseIf) bool                             { return true }
func (BaseVisitor) VisitIfDef(d *IfDef) bool                               { return true }
func (BaseVisitor) VisitIfNotDef(d *IfNotDef) bool                         { return true }
func (BaseVisitor) VisitElseIfDef(d *ElseIfDef) bool                       { return true }
func (BaseVisitor) VisitElseIfNotDef(d *ElseIfNotDef) bool                 { return true }
func (BaseVisitor) VisitEndIf(d *EndIf) bool                               { return true }

// Walk visits the tree depth first.
func (t *Tree) Walk(v Visitor) bool {
	return Walk(v, t.Directives)
}

// Walk visits list depth first. The children of a conditional directive
// are visited right after it. It reports whether the walk ran to the end.
func Walk(v Visitor, list List) bool {
	for _, d := range list {
		if !visit(v, d) {
			return false
		}
		if c, ok := d.(Conditional); ok {
			if !Walk(v, *c.Children()) {
				return false
			}
		}
	}
	return true
}

func visit(v Visitor, d Directive) bool {
	switch d := d.(type) {
	case *Inclusion:
		return v.VisitInclusion(d)
	case *Ident:
		return v.VisitIdent(d)
	case *Pragma:
		return v.VisitPragma(d)
	case *PragmaComment:
		return v.VisitPragmaComment(d)
	case *PragmaDebug:
		return v.VisitPragmaDebug(d)
	case *PragmaDetectMismatch:
		return v.VisitPragmaDetectMismatch(d)
	case *PragmaMark:
		return v.VisitPragmaMark(d)
	case *PragmaMessage:
		return v.VisitPragmaMessage(d)
	case *MacroDefined:
		return v.VisitMacroDefined(d)
	case *MacroUndefined:
		return v.VisitMacroUndefined(d)
	case *If:
		return v.VisitIf(d)
	case *Else:
		return v.VisitElse(d)
	case *ElseIf:
		return v.VisitElseIf(d)
	case *IfDef:
		return v.VisitIfDef(d)
	case *IfNotDef:
		return v.VisitIfNotDef(d)
	case *ElseIfDef:
		return v.VisitElseIfDef(d)
	case *ElseIfNotDef:
		return v.VisitElseIfNotDef(d)
	case *EndIf:
		return v.VisitEndIf(d)
	}
	panic(fmt.Sprintf("internal error: unknown directive %T", d))
}

// Inspect calls f for every directive of list in walk order until f
// returns false.
func Inspect(list List, f func(d Directive) bool) bool {
	return Walk(inspector(f), list)
}

type inspector func(d Directive) bool

func (f inspector) VisitInclusion(d *Inclusion) bool                       { return f(d) }
func (f inspector) VisitIdent(d *Ident) bool                               { return f(d) }
func (f inspector) VisitPragma(d *Pragma) bool                             { return f(d) }
func (f inspector) VisitPragmaComment(d *PragmaComment) bool               { return f(d) }
func (f inspector) VisitPragmaDebug(d *PragmaDebug) bool                   { return f(d) }
func (f inspector) VisitPragmaDetectMismatch(d *PragmaDetectMismatch) bool { return f(d) }
func (f inspector) VisitPragmaMark(d *PragmaMark) bool                     { return f(d) }
func (f inspector) VisitPragmaMessage(d *PragmaMessage) bool               { return f(d) }
func (f inspector) VisitMacroDefined(d *MacroDefined) bool                 { return f(d) }
func (f inspector) VisitMacroUndefined(d *MacroUndefined) bool             { return f(d) }
func (f inspector) VisitIf(d *If) bool                                     { return f(d) }
func (f inspector) VisitElse(d *Else) bool                                 { return f(d) }
func (f inspector) VisitElseIf(d *ElseIf) bool                             { return f(d) }
func (f inspector) VisitIfDef(d *IfDef) bool                               { return f(d) }
func (f inspector) VisitIfNotDef(d *IfNotDef) bool                         { return f(d) }
func (f inspector) VisitElseIfDef(d *ElseIfDef) bool                       { return f(d) }
func (f inspector) VisitElseIfNotDef(d *ElseIfNotDef) bool                 { return f(d) }
func (f inspector) VisitEndIf(d *EndIf) bool                               { return f(d) }
