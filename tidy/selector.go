package tidy

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

type selectorPattern struct {
	glob     glob.Glob
	negative bool
}

// Selector chooses checks by name from a comma separated list of globs.
// A leading - removes the checks a glob matches; later globs win.
type Selector struct {
	patterns []selectorPattern
}

func ParseSelector(s string) (*Selector, error) {
	sel := &Selector{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		negative := strings.HasPrefix(p, "-")
		if negative {
			p = strings.TrimSpace(p[1:])
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "bad check glob %q", p)
		}
		sel.patterns = append(sel.patterns, selectorPattern{glob: g, negative: negative})
	}
	return sel, nil
}

// Matches reports whether name is selected.
func (sel *Selector) Matches(name string) bool {
	ret := false
	for _, p := range sel.patterns {
		if p.glob.Match(name) {
			ret = !p.negative
		}
	}
	return ret
}

// Empty reports whether the selector has no globs.
func (sel *Selector) Empty() bool {
	return len(sel.patterns) == 0
}
