package macrocond

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// scope is the replay state of one open conditional chain.
type scope struct {
	// Value tested macros when the chain was entered.
	entry map[*Macro]bool
	// Definition tests of the active branch that a value test inside
	// the branch may still excuse.
	pending []logEntry
}

func copyTested(m map[*Macro]bool) map[*Macro]bool {
	ret := make(map[*Macro]bool, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

// replay walks the event log with a stack of scopes and returns the
// definition tests of macros defined with a value that were not value
// tested first in their scope, nor inside the branch they open.
//
// Value tests never escape the conditional they occur in, and sibling
// branches start from the state at the chain entry.
func replay(events []logEntry) []logEntry {
	var flagged []logEntry
	tested := make(map[*Macro]bool)
	scopes := arraystack.New()

	top := func() *scope {
		v, ok := scopes.Peek()
		if !ok {
			return nil
		}
		return v.(*scope)
	}
	eachScope := func(f func(s *scope)) {
		it := scopes.Iterator()
		for it.Next() {
			f(it.Value().(*scope))
		}
	}

	for _, e := range events {
		switch e.State {
		case If, IfDef:
			scopes.Push(&scope{entry: copyTested(tested)})
		case Else, ElIf, ElIfDef:
			s := top()
			if s == nil {
				panic("internal error: branch without open scope")
			}
			flagged = append(flagged, s.pending...)
			s.pending = nil
			tested = copyTested(s.entry)
		case EndIf:
			v, ok := scopes.Pop()
			if !ok {
				panic("internal error: scope stack underflow")
			}
			s := v.(*scope)
			flagged = append(flagged, s.pending...)
			tested = s.entry
		case DefinedEmpty, DefinedValue, Undefined:
			// A definition test still pending was of the old definition;
			// later value tests cannot excuse it.
			delete(tested, e.macro)
			eachScope(func(s *scope) {
				delete(s.entry, e.macro)
				kept := s.pending[:0]
				for _, p := range s.pending {
					if p.macro == e.macro {
						flagged = append(flagged, p)
					} else {
						kept = append(kept, p)
					}
				}
				s.pending = kept
			})
		case TestedValue:
			tested[e.macro] = true
			eachScope(func(s *scope) {
				kept := s.pending[:0]
				for _, p := range s.pending {
					if p.macro != e.macro {
						kept = append(kept, p)
					}
				}
				s.pending = kept
			})
		case TestedDefined:
			if !e.HasValue || tested[e.macro] {
				continue
			}
			if s := top(); s != nil {
				s.pending = append(s.pending, e)
			} else {
				flagged = append(flagged, e)
			}
		}
	}
	for !scopes.Empty() {
		v, _ := scopes.Pop()
		flagged = append(flagged, v.(*scope).pending...)
	}
	return flagged
}
