package repl

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/san/lang"
)

// builtinParams names the parameters of the native functions. A leading
// "..." marks a variadic parameter.
var builtinParams = map[string][]string{
	"print":  {"...values"},
	"len":    {"value"},
	"object": {},
	"type":   {"value"},
}

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee path (e.g., "cfg.load")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

func isCalleeRune(r rune) bool {
	return r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's argument list. It returns the callee path, current
// argument index, and whether we're inside a call.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Scan backward from cursor to the unmatched '(' of the enclosing call.
	openParen := -1
	depth := 0

	for i := cursor; i > 0 && openParen < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')', ']':
			depth++
		case '[':
			depth--
		case '(':
			if depth == 0 {
				openParen = i
			} else {
				depth--
			}
		}
	}

	if openParen < 0 {
		return functionCall{}
	}

	nameStart := openParen

	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if !isCalleeRune(r) {
			break
		}

		nameStart -= size
	}

	name := strings.Trim(input[nameStart:openParen], ".")
	if name == "" {
		return functionCall{}
	}

	// Count arguments by counting commas at depth 0 in the argument list.
	argIndex := 0
	depth = 0

	for _, r := range input[openParen+1 : cursor] {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// getSignature returns the parameter names of the function bound to the
// given path. ok is false if the path does not name a function.
func getSignature(s *Session, name string) (params []string, ok bool) {
	v, found := s.Resolve(name)
	if !found {
		return nil, false
	}

	switch fn := v.(type) {
	case *lang.Closure:
		return fn.Params, true

	case *lang.Builtin:
		if params, ok := builtinParams[fn.Name]; ok {
			return params, true
		}

		if fn.Arity < 0 {
			return []string{"...args"}, true
		}

		params := make([]string, fn.Arity)
		for i := range params {
			params[i] = "arg" + strconv.Itoa(i+1)
		}

		return params, true
	}

	return nil, false
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(name string, params []string, currentArgIdx int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		// A variadic parameter stays highlighted for every later argument.
		variadic := strings.HasPrefix(param, "...")
		if (variadic && currentArgIdx >= i) || (!variadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
