// Package tidy runs checks over the directive stream and declarations
// of source files.
package tidy

import (
	"fmt"
	"sort"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/syntax"
)

// Check observes the directives of one file. A check reports through the
// Context it was created with.
type Check interface {
	RegisterPPCallbacks(pp *cpp.Preprocessor)
}

// DeclChecker is implemented by checks that also look at declarations.
// CheckDecls runs after the directive pass and before the end of the
// main file is reported.
type DeclChecker interface {
	Check
	CheckDecls(f *syntax.File)
}

// Factory creates a fresh check for a file.
type Factory func(ctx *Context) (Check, error)

type CheckInfo struct {
	Name string
	Doc  string
	// CPlusPlusOnly checks are not run on C files.
	CPlusPlusOnly bool
	New           Factory
}

var registry = make(map[string]*CheckInfo)

// Register makes a check available by name. It panics if the name is
// taken.
func Register(info CheckInfo) {
	if info.Name == "" || info.New == nil {
		panic("tidy: Register of an incomplete check")
	}
	if _, dup := registry[info.Name]; dup {
		panic(fmt.Sprintf("tidy: check %s registered twice", info.Name))
	}
	registry[info.Name] = &info
}

// Checks returns the registered checks sorted by name.
func Checks() []*CheckInfo {
	ret := make([]*CheckInfo, 0, len(registry))
	for _, info := range registry {
		ret = append(ret, info)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret
}

func Lookup(name string) (*CheckInfo, bool) {
	info, ok := registry[name]
	return info, ok
}

func (info *CheckInfo) appliesTo(lang syntax.Language) bool {
	return !info.CPlusPlusOnly || lang == syntax.CPlusPlus
}
