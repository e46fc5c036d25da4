package cpp

import "fmt"

// ErrorLoc is an error tied to the position in the source that caused it.
// The lexer and the directive driver return all of their failures this way.
type ErrorLoc struct {
	Err error
	Pos FilePos
}

// ErrWithLoc attaches pos to e. An error that already carries a position
// keeps its own.
func ErrWithLoc(e error, pos FilePos) error {
	if el, ok := e.(ErrorLoc); ok {
		return el
	}
	return ErrorLoc{
		Err: e,
		Pos: pos,
	}
}

func (e ErrorLoc) Error() string {
	return fmt.Sprintf("%s at %s", e.Err, e.Pos)
}

func (e ErrorLoc) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors.Cause see through the position.
func (e ErrorLoc) Cause() error { return e.Err }
