package autogen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrCoded is the sentinel matched by every *Error through errors.Is.
var ErrCoded = errors.New("autogen: coded error")

// Error is the value returned by generated error-code accessors.
// It pairs a stable code with a (usually localized) message.
type Error struct {
	code    string
	message string
}

// NewError returns a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{code: code, message: message}
}

// Code returns the error code, e.g. "ORD1001".
func (e *Error) Code() string {
	return e.code
}

// Message returns the human readable description.
func (e *Error) Message() string {
	return e.message
}

// Error returns the error string.
func (e *Error) Error() string {
	if e.message == "" {
		return e.code
	}
	return e.code + ": " + e.message
}

// Is reports whether target is ErrCoded or an *Error with the same code.
// This allows errors.Is(err, errorcodes.Orders.NotFound()) regardless of
// the message language.
func (e *Error) Is(target error) bool {
	if target == ErrCoded {
		return true
	}
	var t *Error
	if errors.As(target, &t) {
		return t.code == e.code
	}
	return false
}

// WithArgs returns a copy of e whose message has the positional
// placeholders {0}, {1}, ... replaced by the formatted args.
// Placeholders without a matching argument are left untouched.
func (e *Error) WithArgs(args ...any) *Error {
	return &Error{code: e.code, message: formatPositional(e.message, args)}
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var e *Error
	return errors.As(err, &e) && e.code == code
}

func formatPositional(format string, args []any) string {
	if len(args) == 0 || !strings.Contains(format, "{") {
		return format
	}
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			b.WriteString(format[i:])
			break
		}
		n, err := strconv.Atoi(format[i+1 : i+end])
		if err != nil || n < 0 || n >= len(args) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprint(&b, args[n])
		i += end
	}
	return b.String()
}
