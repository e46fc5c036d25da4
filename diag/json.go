package diag

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonPos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

type jsonFixIt struct {
	Begin jsonPos `json:"begin"`
	End   jsonPos `json:"end"`
	Text  string  `json:"text"`
}

type jsonDiagnostic struct {
	Check   string      `json:"check"`
	Level   string      `json:"level"`
	File    string      `json:"file"`
	Line    int         `json:"line"`
	Column  int         `json:"column"`
	Offset  int         `json:"offset"`
	Message string      `json:"message"`
	FixIts  []jsonFixIt `json:"fixits,omitempty"`
}

// WriteJSON writes diags as an indented JSON array.
func WriteJSON(w io.Writer, diags []*Diagnostic) error {
	out := make([]jsonDiagnostic, 0, len(diags))
	for _, d := range diags {
		jd := jsonDiagnostic{
			Check:   d.Check,
			Level:   d.Level.String(),
			File:    d.Pos.File,
			Line:    d.Pos.Line,
			Column:  d.Pos.Col,
			Offset:  d.Pos.Offset,
			Message: d.Message,
		}
		for _, f := range d.FixIts {
			jd.FixIts = append(jd.FixIts, jsonFixIt{
				Begin: jsonPos{f.Range.Begin.Line, f.Range.Begin.Col, f.Range.Begin.Offset},
				End:   jsonPos{f.Range.End.Line, f.Range.End.Col, f.Range.End.Offset},
				Text:  f.Text,
			})
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
