package syntax

import "fmt"

// ErrorCode classifies pattern syntax errors.
type ErrorCode string

const (
	// ErrUnknownGroupSyntax is reported when the characters after "(?"
	// are not a recognized group introducer. The only recognized
	// introducers are ":" (non-capturing) and "P<name>" (named capture).
	ErrUnknownGroupSyntax ErrorCode = "unknown group syntax"

	// ErrDuplicateGroupName is reported when two capturing groups in the
	// same pattern share a name.
	ErrDuplicateGroupName ErrorCode = "duplicate capture group name"

	// ErrInvalidGroupName is reported for group names that are empty,
	// unterminated, or not of the form [A-Za-z_][A-Za-z0-9_]*.
	ErrInvalidGroupName ErrorCode = "invalid capture group name"

	// ErrMissingParen is reported for an unclosed group.
	ErrMissingParen ErrorCode = "missing closing )"

	// ErrUnexpectedParen is reported for a ')' with no open group.
	ErrUnexpectedParen ErrorCode = "unexpected )"

	// ErrMissingRepeatArgument is reported for a repetition operator
	// with nothing to repeat.
	ErrMissingRepeatArgument ErrorCode = "missing argument to repetition operator"

	// ErrInvalidRepeatOp is reported for a repetition applied directly
	// to another repetition, as in "a**".
	ErrInvalidRepeatOp ErrorCode = "invalid nested repetition operator"

	// ErrInvalidRepeatBounds is reported for "{m,n}" with m > n.
	ErrInvalidRepeatBounds ErrorCode = "invalid repeat bounds"

	// ErrInvalidRepeatSize is reported when a repeat count exceeds the
	// maximum of 1000.
	ErrInvalidRepeatSize ErrorCode = "repeat count too large"

	// ErrInvalidCharClass is reported for malformed classes such as
	// "[z-a]" or an unterminated "[".
	ErrInvalidCharClass ErrorCode = "invalid character class"

	// ErrInvalidEscape is reported for unrecognized escape sequences.
	ErrInvalidEscape ErrorCode = "invalid escape sequence"

	// ErrTrailingBackslash is reported for a '\' ending the pattern.
	ErrTrailingBackslash ErrorCode = "trailing backslash at end of pattern"

	// ErrInvalidUTF8 is reported when the pattern is not valid UTF-8
	// and the UTF flag is set.
	ErrInvalidUTF8 ErrorCode = "invalid UTF-8 in pattern"
)

// Error is a pattern syntax error. Pos is the byte offset of the
// offending token in the pattern and Expr the fragment around it.
type Error struct {
	Code ErrorCode
	Pos  int
	Expr string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("error parsing regexp: %s at offset %d: `%s`", string(e.Code), e.Pos, e.Expr)
	}
	return fmt.Sprintf("error parsing regexp: %s at offset %d", string(e.Code), e.Pos)
}
