// Package errors provides the typed errors returned by the notation parsers
// and the computations built on them.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	// KindSyntax marks malformed notation.
	KindSyntax Kind = iota + 1
	// KindSemantic marks well formed input that is chemically or
	// structurally invalid.
	KindSemantic
	// KindResourceLimit marks inputs that exceed a combinatorial bound.
	KindResourceLimit
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindSemantic:
		return "invalid input"
	case KindResourceLimit:
		return "resource limit"
	default:
		return "error"
	}
}

// Sentinels usable with errors.Is to test the kind of any *Error.
var (
	ErrSyntax        = &Error{Kind: KindSyntax}
	ErrSemantic      = &Error{Kind: KindSemantic}
	ErrResourceLimit = &Error{Kind: KindResourceLimit}
)

// Context points at the characters of the input that caused an error.
type Context struct {
	Line   string
	Offset int
	Length int
}

// Span creates a Context for line[offset:offset+length].
func Span(line string, offset, length int) Context {
	return Context{Line: line, Offset: offset, Length: length}
}

// Full creates a Context covering the whole line.
func Full(line string) Context {
	return Context{Line: line, Offset: 0, Length: len(line)}
}

// Shift returns a copy of the context moved by delta characters inside a
// larger line.
func (c Context) Shift(line string, delta int) Context {
	return Context{Line: line, Offset: c.Offset + delta, Length: c.Length}
}

// Fragment returns the text the context points at.
func (c Context) Fragment() string {
	if c.Offset < 0 || c.Offset > len(c.Line) {
		return ""
	}
	end := c.Offset + c.Length
	if end > len(c.Line) {
		end = len(c.Line)
	}
	return c.Line[c.Offset:end]
}

// Error is the error type returned by every parser and computation in this
// module.
type Error struct {
	Kind    Kind
	Title   string
	Message string
	Context Context
	Cause   error
}

// Error renders "<title>: <message> (at <offset> "<fragment>")".
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Title)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Context.Line != "" {
		fmt.Fprintf(&sb, " (at %d %q)", e.Context.Offset, e.Context.Fragment())
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a kind sentinel matching this error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Title == "" && t.Message == "" && t.Kind == e.Kind
}

// Syntax creates a syntax error.
func Syntax(title, message string, ctx Context) *Error {
	return &Error{Kind: KindSyntax, Title: title, Message: message, Context: ctx}
}

// Semantic creates a semantic error.
func Semantic(title, message string, ctx Context) *Error {
	return &Error{Kind: KindSemantic, Title: title, Message: message, Context: ctx}
}

// ResourceLimit creates a resource-limit error.
func ResourceLimit(title, message string) *Error {
	return &Error{Kind: KindResourceLimit, Title: title, Message: message}
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// Relocate returns a copy of e with its context shifted into line, used when
// a sub parser worked on a slice of a larger input.
func (e *Error) Relocate(line string, delta int) *Error {
	cp := *e
	cp.Context = e.Context.Shift(line, delta)
	return &cp
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
