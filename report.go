package main

import (
	"fmt"
	"io"
	"time"

	"github.com/andrewchambers/pptidy/cpp"
	"github.com/andrewchambers/pptidy/diag"
	"github.com/andrewchambers/pptidy/tidy"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// reportError prints err, and for a located error the offending line
// with a caret under the column.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, err)
	var errLoc cpp.ErrorLoc
	if !errors.As(err, &errLoc) {
		return
	}
	pos := errLoc.Pos
	src, rerr := cpp.ReadSource(pos.File)
	if rerr != nil {
		return
	}
	line := src.Line(pos.Line)
	fmt.Fprintln(w, line)
	for i := 0; i < pos.Col-1; i++ {
		if i < len(line) && line[i] == '\t' {
			fmt.Fprint(w, "\t")
		} else {
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprintln(w, "^")
}

// writeStats summarizes a check run.
func writeStats(w io.Writer, results []*tidy.Result, elapsed time.Duration) {
	var size uint64
	var warnings, errs int64
	for _, res := range results {
		size += uint64(len(res.Src.Data))
		for _, d := range res.Diagnostics {
			switch d.Level {
			case diag.Error:
				errs++
			case diag.Warning:
				warnings++
			}
		}
	}
	fmt.Fprintf(w, "%s files (%s) analyzed in %s: %s %s, %s %s\n",
		humanize.Comma(int64(len(results))), humanize.Bytes(size), elapsed.Round(time.Millisecond),
		humanize.Comma(warnings), plural(warnings, "warning"),
		humanize.Comma(errs), plural(errs, "error"))
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
