// Package errutil contains helpers for combining errors.
package errutil

import "strings"

// Multi combines errors into one. Nil errors are dropped; it returns nil when
// nothing is left, the sole error when one is left, and otherwise an error
// listing every message. Nested results of Multi are flattened.
func Multi(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if multi, ok := err.(multiError); ok {
			nonNil = append(nonNil, multi...)
		} else {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return multiError(nonNil)
	}
}

type multiError []error

func (me multiError) Error() string {
	var sb strings.Builder
	sb.WriteString("multiple errors: ")
	for i, e := range me {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap makes errors.Is and errors.As look into every combined error.
func (me multiError) Unwrap() []error { return me }
