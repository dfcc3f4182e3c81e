package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUndefined marks a render that referenced a context variable the
	// caller did not supply.
	ErrUndefined = errors.New("render: undefined variable")
	// ErrAssertion marks a failed precondition checked during a render.
	ErrAssertion = errors.New("render: assertion failed")
	// ErrUnsupportedScreen is returned by renderers for screens they do not
	// produce.
	ErrUnsupportedScreen = errors.New("unsupported screen")
	// ErrUnknownRenderer is returned by Registry.Get for unregistered names.
	ErrUnknownRenderer = errors.New("render: unknown renderer")
)

// UndefinedError names the component and the missing variable.
type UndefinedError struct {
	Component string
	Variable  string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("render: %s: variable %q is undefined", e.Component, e.Variable)
}

// Unwrap lets errors.Is match ErrUndefined.
func (e *UndefinedError) Unwrap() error {
	return ErrUndefined
}

// Assert returns an ErrAssertion-wrapped error when cond is false.
func Assert(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

// MergeMessages joins message lists for confirm dialogs, trimming whitespace
// and dropping blanks and repeats while keeping the first occurrence order.
// It returns nil when nothing is left.
func MergeMessages(existing []string, extras ...string) []string {
	var out []string
	for _, message := range slices.Concat(existing, extras) {
		message = strings.TrimSpace(message)
		if message != "" && !slices.Contains(out, message) {
			out = append(out, message)
		}
	}
	return out
}
