package pptree

import (
	"github.com/andrewchambers/pptidy/cpp"
)

// Predicate tests one property of a directive of type T.
type Predicate[T Directive] func(d T) bool

// DirectiveMatcher is implemented by every Matcher.
type DirectiveMatcher interface {
	Matches(d Directive) bool
}

// Matcher accepts directives of type T for which every predicate holds.
// A matcher without predicates accepts nothing.
type Matcher[T Directive] struct {
	preds []Predicate[T]
}

// Match creates a matcher for directives of type T.
func Match[T Directive](preds ...Predicate[T]) *Matcher[T] {
	return &Matcher[T]{preds: preds}
}

func (m *Matcher[T]) Matches(d Directive) bool {
	t, ok := d.(T)
	if !ok || len(m.preds) == 0 {
		return false
	}
	for _, p := range m.preds {
		if !p(t) {
			return false
		}
	}
	return true
}

// LocIs holds when the directive is reported at pos. Offsets are not
// compared so positions can be written by hand.
func LocIs[T Directive](pos cpp.FilePos) Predicate[T] {
	return func(d T) bool {
		loc := d.Loc()
		return loc.File == pos.File && loc.Line == pos.Line && loc.Col == pos.Col
	}
}

// OnLine holds when the directive is on the given line.
func OnLine[T Directive](line int) Predicate[T] {
	return func(d T) bool {
		return d.Loc().Line == line
	}
}

// KindIs holds for directives of kind k.
func KindIs[T Directive](k Kind) Predicate[T] {
	return func(d T) bool {
		return d.Kind() == k
	}
}

// NameIs holds when Name of the directive is name.
func NameIs[T Directive](name string) Predicate[T] {
	return func(d T) bool {
		return Name(d) == name
	}
}

// StringIs holds when the string field selected by field equals want.
func StringIs[T Directive](field func(d T) string, want string) Predicate[T] {
	return Equals(field, want)
}

// BoolIs holds when the boolean field selected by field equals want.
func BoolIs[T Directive](field func(d T) bool, want bool) Predicate[T] {
	return Equals(field, want)
}

// Equals holds when the field selected by field equals want. It serves
// the enumerated fields such as ConditionValue and MessageKind.
func Equals[T Directive, V comparable](field func(d T) V, want V) Predicate[T] {
	return func(d T) bool {
		return field(d) == want
	}
}

// Finder runs matchers over a tree. A directive is found when any of
// the matchers accepts it.
type Finder struct {
	matchers []DirectiveMatcher
}

func NewFinder(matchers ...DirectiveMatcher) *Finder {
	return &Finder{matchers: matchers}
}

func (f *Finder) matches(d Directive) bool {
	for _, m := range f.matchers {
		if m.Matches(d) {
			return true
		}
	}
	return false
}

// Find returns the first directive found in walk order. The walk stops
// at the match.
func (f *Finder) Find(t *Tree) (Directive, bool) {
	var found Directive
	Inspect(t.Directives, func(d Directive) bool {
		if f.matches(d) {
			found = d
			return false
		}
		return true
	})
	return found, found != nil
}

// FindAll returns every directive found, in walk order.
func (f *Finder) FindAll(t *Tree) []Directive {
	var found []Directive
	Inspect(t.Directives, func(d Directive) bool {
		if f.matches(d) {
			found = append(found, d)
		}
		return true
	})
	return found
}
