package log

import (
	"errors"
	"strconv"
)

// Locator is implemented by values that name a place in source text.
// Pretty handlers render a Locator attribute as "unit:line:column".
type Locator interface {
	Location() (unit string, line, column int)
}

// Diagnostic is an error located in source text. Pretty handlers render it
// as its message and print its snippet, the offending source line with a
// caret, beneath the record.
type Diagnostic interface {
	error
	Locator
	Snippet() string
}

// FormatLocation renders loc as "unit:line:column", or "line:column" when
// the unit is empty.
func FormatLocation(loc Locator) string {
	unit, line, column := loc.Location()

	s := strconv.Itoa(line) + ":" + strconv.Itoa(column)
	if unit != "" {
		s = unit + ":" + s
	}

	return s
}

// AsDiagnostic returns the first [Diagnostic] in err's chain.
func AsDiagnostic(err error) (Diagnostic, bool) {
	var d Diagnostic

	return d, errors.As(err, &d)
}
