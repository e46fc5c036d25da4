package diag

import (
	"bytes"
	"sort"

	"github.com/andrewchambers/pptidy/cpp"
)

type edit struct {
	begin, end int
	text       string
	order      int
}

func (e edit) conflicts(o edit) bool {
	switch {
	case e.begin == e.end && o.begin == o.end:
		return false
	case e.begin == e.end:
		return e.begin > o.begin && e.begin < o.end
	case o.begin == o.end:
		return o.begin > e.begin && o.begin < e.end
	}
	return e.begin < o.end && o.begin < e.end
}

// ApplyFixes applies the fix-its that diags carry for src. The fix-its of
// a diagnostic are applied together or not at all, and a diagnostic whose
// edits overlap edits already taken is skipped and returned.
func ApplyFixes(src *cpp.Source, diags []*Diagnostic) ([]byte, []*Diagnostic) {
	var accepted []edit
	var skipped []*Diagnostic
	for _, d := range diags {
		if len(d.FixIts) == 0 {
			continue
		}
		var edits []edit
		ok := true
		for _, f := range d.FixIts {
			b, e := f.Range.Begin.Offset, f.Range.End.Offset
			if f.Range.Begin.File != src.Name || b < 0 || e < b || e > len(src.Data) {
				ok = false
				break
			}
			edits = append(edits, edit{begin: b, end: e, text: f.Text, order: len(accepted) + len(edits)})
		}
		for _, e := range edits {
			if !ok {
				break
			}
			for _, a := range accepted {
				if e.conflicts(a) {
					ok = false
					break
				}
			}
		}
		if !ok {
			skipped = append(skipped, d)
			continue
		}
		accepted = append(accepted, edits...)
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		a, b := accepted[i], accepted[j]
		if a.begin != b.begin {
			return a.begin < b.begin
		}
		if a.end != b.end {
			return a.end < b.end
		}
		return a.order < b.order
	})
	var out bytes.Buffer
	last := 0
	for _, e := range accepted {
		out.Write(src.Data[last:e.begin])
		out.WriteString(e.text)
		last = e.end
	}
	out.Write(src.Data[last:])
	return out.Bytes(), skipped
}
