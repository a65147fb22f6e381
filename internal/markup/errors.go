package markup

import "fmt"

// ParseError indicates the input is not a well-formed document.
type ParseError struct {
	Backend Kind
	Line    int
	Message string
	Err     error
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %s", e.Backend, e.Line, e.Message)
	}
	return fmt.Sprintf("parse %s: %s", e.Backend, e.Message)
}

func (e ParseError) Unwrap() error { return e.Err }
