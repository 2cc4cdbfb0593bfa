// Package jqlerr defines the error taxonomy and diagnostic shape shared by
// the parser, printer, and scan executor (component H).
package jqlerr

import "fmt"

// Kind identifies the category of a jqldb error.
type Kind string

// Error kinds.
const (
	KindAlloc            Kind = "ALLOC"
	KindQueryParse       Kind = "QUERY_PARSE"
	KindInvalidCodepoint Kind = "PARSE_INVALID_CODEPOINT"
	KindKVCorrupted      Kind = "KV_CORRUPTED"
	KindKVNotFound       Kind = "KV_NOT_FOUND"
	KindInvalidArgs      Kind = "INVALID_ARGS"
	KindAssertion        Kind = "ASSERTION"
)

// Error is a structured jqldb error.
//
// A session holds at most one pending *Error at a time; the
// near-token diagnostic is populated only for parse errors.
type Error struct {
	Kind      Kind
	Message   string
	NearToken string // snippet around the failing cursor, parse errors only
	Pos       int    // byte offset into the input, -1 if not applicable
	Err       error  // wrapped cause, if any
}

// New creates an Error with no position or near-token context.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Pos: -1}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// WithNearToken attaches the near-token diagnostic string produced by the
// parser's error recovery.
func (e *Error) WithNearToken(near string) *Error {
	e.NearToken = near
	return e
}

// WithPos attaches the byte offset of the failure.
func (e *Error) WithPos(pos int) *Error {
	e.Pos = pos
	return e
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.NearToken != "" {
		return fmt.Sprintf("%s: %s\nnear token: '%s'", e.Kind, e.Message, e.NearToken)
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at %d: %s", e.Kind, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, jqlerr.New(jqlerr.KindKVNotFound, "")) style checks
// against a kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
