package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/san/log"
)

// Predefined errors (sentinel values).
var (
	ErrLexical          = NewError("lexical error")
	ErrSyntax           = NewError("syntax error")
	ErrMaxDepthExceeded = NewError("maximum nesting depth exceeded")
	ErrReadInput        = NewError("failed to read input")
	ErrEvaluate         = NewError("evaluation failed")
	ErrUndefined        = NewError("undefined identifier")
	ErrNotCallable      = NewError("value is not callable")
	ErrArity            = NewError("argument count mismatch")
	ErrType             = NewError("invalid operand type")
	ErrIndex            = NewError("index out of range")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	base  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured logging attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return slices.Clone(e.attrs) }

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		base:  e.root(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		base:  e.root(),
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

var (
	_ log.Diagnostic = (*SyntaxError)(nil)
	_ log.Locator    = Position{}
)

// SyntaxError reports the first lexical or syntax error in a source unit.
type SyntaxError struct {
	Unit     string   // source unit (module) name
	Pos      Position // start of the offending token or character
	Found    string   // description of what was found
	Expected []string // token kinds the grammar would have accepted
	Reason   string   // optional detail, e.g. "invalid assignment target"
	Source   string   // source text, used to render a snippet
	lexical  bool
}

func (e *SyntaxError) kind() *Error {
	if e.lexical {
		return ErrLexical
	}

	return ErrSyntax
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var sb strings.Builder

	if e.Unit != "" {
		sb.WriteString(e.Unit)
		sb.WriteByte(':')
	}

	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.kind().msg)

	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}

	if e.Found != "" {
		sb.WriteString(": unexpected ")
		sb.WriteString(e.Found)
	}

	if len(e.Expected) > 0 {
		sb.WriteString(", expected ")
		sb.WriteString(strings.Join(e.Expected, ", "))
	}

	return sb.String()
}

// Unwrap returns the sentinel for errors.Is checks.
func (e *SyntaxError) Unwrap() error { return e.kind() }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.kind().msg),
		slog.String("unit", e.Unit),
		slog.Any("position", e.Pos),
	}

	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", e.Reason))
	}

	if e.Found != "" {
		attrs = append(attrs, slog.String("found", e.Found))
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.Any("expected", e.Expected))
	}

	return slog.GroupValue(attrs...)
}

// Location implements log.Locator.
func (e *SyntaxError) Location() (string, int, int) {
	return e.Unit, e.Pos.Line, e.Pos.Column
}

// Snippet renders the offending source line with a caret under the error
// column. It returns "" when no source is attached.
func (e *SyntaxError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Source == "" || e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	line := strings.TrimRight(lines[e.Pos.Line-1], "\r")

	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Pos.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Pos.Line))+5)
	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// expectedNames renders a sorted, de-duplicated list of expected tokens and
// keywords.
func expectedNames(kinds []Kind, keywords ...string) []string {
	exp := make([]string, 0, len(kinds)+len(keywords))
	for _, k := range kinds {
		exp = append(exp, strconv.Quote(k.String()))
	}

	for _, kw := range keywords {
		exp = append(exp, strconv.Quote(kw))
	}

	slices.Sort(exp)

	return slices.Compact(exp)
}
