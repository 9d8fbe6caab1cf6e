package formula

import "fmt"

// Kind classifies a formula failure.
type Kind int

const (
	KindEmpty Kind = iota + 1
	KindSyntax
	KindUndefined
	KindNotNumeric
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindSyntax:
		return "syntax"
	case KindUndefined:
		return "undefined"
	case KindNotNumeric:
		return "not numeric"
	case KindRuntime:
		return "runtime"
	}

	return "unknown"
}

// Error is returned by every operation of this package.
type Error struct {
	Kind Kind
	Pos  int // Byte offset into the source, -1 when not applicable
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
	}

	return e.Msg
}

func errorf(kind Kind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
