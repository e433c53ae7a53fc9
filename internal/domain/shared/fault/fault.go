package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping without leaking store details.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidInput
	KindPastDate
	KindRangeTooLarge
	KindInvalidRange
)

// Error carries a kind alongside a caller-facing message. Ownership mismatches
// are reported as KindNotFound so non-owners cannot probe for existence.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidInput(format string, args ...any) *Error {
	return New(KindInvalidInput, format, args...)
}

func PastDate(format string, args ...any) *Error {
	return New(KindPastDate, format, args...)
}

func RangeTooLarge(format string, args ...any) *Error {
	return New(KindRangeTooLarge, format, args...)
}

func InvalidRange(format string, args ...any) *Error {
	return New(KindInvalidRange, format, args...)
}

// KindOf extracts the kind from err, unwrapping as needed.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
