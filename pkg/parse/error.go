package parse

import (
	"fmt"
	"strings"

	"src.kesh.sh/pkg/diag"
)

// Error is a parse error.
type Error struct {
	Message  string
	Expected []string
	// Incomplete is true when the input ended before the construct did, which
	// means more input could make it valid.
	Incomplete bool
	Line       int
	Span       diag.Ranging
	Context    diag.Context
}

func newError(name, src string, span diag.Ranging, incomplete bool, msg string, expected ...string) *Error {
	ctx := diag.NewContext(name, src, span)
	line, _ := ctx.Position()
	if len(expected) > 0 {
		msg += ", expected " + strings.Join(expected, " or ")
	}
	return &Error{msg, expected, incomplete, line, span, *ctx}
}

func (e *Error) diagError() *diag.Error {
	return &diag.Error{Type: "parse error", Message: e.Message, Context: e.Context}
}

func (e *Error) Error() string { return e.diagError().Error() }

// Show shows the error with the offending part of the source highlighted.
func (e *Error) Show(indent string) string { return e.diagError().Show(indent) }

// Range returns the span of the error.
func (e *Error) Range() diag.Ranging { return e.Span }

// IsIncomplete returns whether err is a parse error caused by input that
// ended too early.
func IsIncomplete(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Incomplete
}

// lexError is an error found by the lexer, before the source name is known.
type lexError struct {
	span       diag.Ranging
	msg        string
	incomplete bool
}

func (e *lexError) Error() string {
	return fmt.Sprintf("%d-%d: %s", e.span.From, e.span.To, e.msg)
}
