package multierr

import (
	"errors"
	"fmt"
	"strings"
)

// Error collects several errors into one. A nil or empty Error is not a
// failure; use [Error.ErrOrNil] when returning it as a plain error.
type Error []error

func (e Error) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"
	case 1:
		return e[0].Error()
	}
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "%d errors occurred:", len(e))
	for _, err := range e {
		fmt.Fprintf(sb, "\n\t* %v", err)
	}
	return sb.String()
}

// Append adds err to e, ignoring nil errors.
func (e *Error) Append(err error) {
	if e == nil || err == nil {
		return
	}
	*e = append(*e, err)
}

// ErrOrNil converts e into a plain error, avoiding the typed-nil trap and
// unwrapping a single-element Error to its sole member.
func (e Error) ErrOrNil() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	}
	return e
}

func (e Error) Unwrap() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	}
	return e[1:]
}

func (e Error) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (e Error) As(target any) bool {
	for _, err := range e {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
