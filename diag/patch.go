package diag

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type lineOp struct {
	op   byte
	text string
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineOps(before, after string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	var ops []lineOp
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = '-'
		case diffmatchpatch.DiffInsert:
			op = '+'
		}
		for _, l := range splitLines(d.Text) {
			ops = append(ops, lineOp{op: op, text: l})
		}
	}
	return ops
}

// UnifiedDiff renders the changes from before to after as a unified
// diff of name. It is empty when nothing changed.
func UnifiedDiff(name string, before, after []byte) string {
	ops := lineOps(string(before), string(after))
	// Lines of each side preceding every op.
	oldNo := make([]int, len(ops)+1)
	newNo := make([]int, len(ops)+1)
	for i, o := range ops {
		oldNo[i+1], newNo[i+1] = oldNo[i], newNo[i]
		if o.op != '+' {
			oldNo[i+1]++
		}
		if o.op != '-' {
			newNo[i+1]++
		}
	}

	var out strings.Builder
	i := 0
	for i < len(ops) {
		for i < len(ops) && ops[i].op == ' ' {
			i++
		}
		if i == len(ops) {
			break
		}
		if out.Len() == 0 {
			fmt.Fprintf(&out, "--- a/%s\n+++ b/%s\n", name, name)
		}
		start := i - diffContext
		if start < 0 {
			start = 0
		}
		last := i
		for k := i; k < len(ops); k++ {
			if ops[k].op != ' ' {
				last = k
			} else if k-last > 2*diffContext {
				break
			}
		}
		stop := last + diffContext + 1
		if stop > len(ops) {
			stop = len(ops)
		}
		fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n",
			oldNo[start]+1, oldNo[stop]-oldNo[start],
			newNo[start]+1, newNo[stop]-newNo[start])
		for _, o := range ops[start:stop] {
			out.WriteByte(o.op)
			out.WriteString(o.text)
			if !strings.HasSuffix(o.text, "\n") {
				out.WriteString("\n\\ No newline at end of file\n")
			}
		}
		i = stop
	}
	return out.String()
}
