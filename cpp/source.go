package cpp

import (
	"os"
	"sort"

	"github.com/pkg/errors"
)

// Source is the contents of one file together with a line table.
type Source struct {
	Name string
	Data []byte
	// Byte offsets of the first character of every line.
	lines []int
}

func NewSource(name string, data []byte) *Source {
	src := &Source{Name: name, Data: data}
	src.lines = append(src.lines, 0)
	for i, c := range data {
		if c == '\n' {
			src.lines = append(src.lines, i+1)
		}
	}
	return src
}

// ReadSource loads a file from disk.
func ReadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading source file %s", path)
	}
	return NewSource(path, data), nil
}

// NumLines returns the number of lines in the file.
func (src *Source) NumLines() int {
	return len(src.lines)
}

// Line returns the text of line n (1 based) without its newline.
func (src *Source) Line(n int) string {
	if n < 1 || n > len(src.lines) {
		return ""
	}
	start := src.lines[n-1]
	end := len(src.Data)
	if n < len(src.lines) {
		end = src.lines[n] - 1
	}
	if end > start && src.Data[end-1] == '\r' {
		end--
	}
	return string(src.Data[start:end])
}

// PosAt converts a byte offset into a full position.
func (src *Source) PosAt(offset int) FilePos {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src.Data) {
		offset = len(src.Data)
	}
	line := sort.Search(len(src.lines), func(i int) bool {
		return src.lines[i] > offset
	})
	return FilePos{
		File:   src.Name,
		Line:   line,
		Col:    offset - src.lines[line-1] + 1,
		Offset: offset,
	}
}

// LineStart returns the position of the first column of pos's line.
func (src *Source) LineStart(pos FilePos) FilePos {
	if pos.Line < 1 || pos.Line > len(src.lines) {
		return pos
	}
	return FilePos{File: src.Name, Line: pos.Line, Col: 1, Offset: src.lines[pos.Line-1]}
}

// Text returns the raw spelling of r, line splices included.
func (src *Source) Text(r Range) string {
	begin, end := r.Begin.Offset, r.End.Offset
	if begin < 0 || end > len(src.Data) || begin >= end {
		return ""
	}
	return string(src.Data[begin:end])
}

// Relex tokenizes the raw text of r again. It is used to recover the
// identifiers of a condition whose tokens were only reported as a range.
// Tokens lexed up to a lexing error are returned.
func (src *Source) Relex(r Range) []*Token {
	if r.Empty() || r.End.Offset > len(src.Data) {
		return nil
	}
	lx := newLexer(src.Data, r.Begin, r.End.Offset)
	var toks []*Token
	for {
		tok, err := lx.Next()
		if err != nil || tok.Kind == EOF {
			return toks
		}
		if tok.Kind == END_DIRECTIVE {
			continue
		}
		toks = append(toks, tok)
	}
}
