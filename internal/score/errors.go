package score

import (
	"errors"
	"fmt"
	"strings"
)

// WrongTagError reports an operation invoked on an element whose tag
// does not belong to the operation's required tag family.
//
// This is always a precondition violation on the caller's side: the
// current operation cannot proceed and the error should surface to the
// caller unmodified.
type WrongTagError struct {
	// Actual is the element's tag.
	Actual string

	// Want lists the tags the operation accepts.
	Want []string

	// Op describes the failed operation ("get tuplet value", ...).
	Op string
}

// Error implements the error interface.
func (e *WrongTagError) Error() string {
	want := make([]string, len(e.Want))
	for i, w := range e.Want {
		want[i] = fmt.Sprintf("%q", w)
	}
	msg := fmt.Sprintf("element has tag %q, should be %s", e.Actual, strings.Join(want, " or "))
	if e.Op != "" {
		msg += ": cannot " + e.Op
	}
	return msg
}

// IsWrongTag reports whether the error is a tag-family violation.
// Uses errors.As to handle wrapped errors.
func IsWrongTag(err error) bool {
	var wte *WrongTagError
	return errors.As(err, &wte)
}

func wrongTag(e *Element, op string, want ...string) *WrongTagError {
	return &WrongTagError{Actual: e.tag, Want: want, Op: op}
}

// MalformedError reports a structurally invalid document: an expected
// child node or attribute value is missing or unparseable. Like
// WrongTagError this aborts the current operation.
type MalformedError struct {
	Tag    string // tag of the offending element
	Detail string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %q element: %s", e.Tag, e.Detail)
}

func malformed(e *Element, format string, args ...any) *MalformedError {
	return &MalformedError{Tag: e.tag, Detail: fmt.Sprintf(format, args...)}
}
