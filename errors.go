package recap

import (
	"errors"

	"github.com/coregx/recap/meta"
)

// ErrUnknownGroup is returned by name-based capture lookups when the
// pattern defines no group with the requested name. It is deliberately
// distinct from a group that exists but did not participate in the
// match, which is not an error.
var ErrUnknownGroup = errors.New("recap: no such capture group")

// ErrInvalidUTF8 is returned by searches on a pattern compiled with the
// UTF flag when the subject is not valid UTF-8.
var ErrInvalidUTF8 = meta.ErrInvalidUTF8

// RegexpError is a compile failure, carrying the pattern alongside the
// underlying cause. Use errors.As to reach the *syntax.Error for the
// position of the offending token.
type RegexpError struct {
	Pattern string
	Err     error
}

func (e *RegexpError) Error() string {
	return "recap: compiling `" + e.Pattern + "`: " + e.Err.Error()
}

func (e *RegexpError) Unwrap() error {
	return e.Err
}
