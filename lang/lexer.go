package lang

import (
	"strconv"
	"unicode/utf8"
)

// Lexer splits source text into tokens on demand.
type Lexer struct {
	unit  string
	input string
	pos   int
	line  int
	col   int
	prev  Token // last token returned, for sign disambiguation
}

// NewLexer creates a lexer over the given source. The unit name is reported
// in errors.
func NewLexer(unit, input string) *Lexer {
	return &Lexer{
		unit:  unit,
		input: input,
		line:  1,
		col:   1,
		prev:  Token{Kind: KindEOF},
	}
}

// Next returns the next token. At end of input it returns a token of kind
// [KindEOF], repeatedly.
func (l *Lexer) Next() (Token, error) {
	l.skipSpaceAndComments()

	start := l.position()

	if l.eof() {
		return Token{Kind: KindEOF, Pos: start, End: start}, nil
	}

	kind, err := l.scan()
	if err != nil {
		return Token{}, err
	}

	tok := Token{
		Kind: kind,
		Text: l.input[start.Offset:l.pos],
		Pos:  start,
		End:  l.position(),
	}

	if kind == KindString {
		tok.Text = tok.Text[1 : len(tok.Text)-1]
	}

	l.prev = tok

	return tok, nil
}

// Tokenize returns every token of the input, excluding the final EOF token.
func Tokenize(unit, input string) ([]Token, error) {
	l := NewLexer(unit, input)

	var toks []Token

	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}

		if tok.Kind == KindEOF {
			return toks, nil
		}

		toks = append(toks, tok)
	}
}

func (l *Lexer) scan() (Kind, error) {
	ch := l.peek()

	switch {
	case isDigit(ch):
		return l.scanNumber()

	case ch == '-' && !l.prev.endsOperand() && l.floatFollows(l.pos+1):
		return l.scanNumber()

	case isLetter(ch):
		for !l.eof() && isIdentifierContinue(l.peek()) {
			l.advance()
		}

		return KindIdentifier, nil

	case ch == '"':
		return l.scanString()
	}

	return l.scanSymbol()
}

// scanNumber scans an integer or float literal. A run of digits followed by
// '.' and a digit is always a float. A leading '-' is only consumed by the
// caller when a float follows, so integers are always unsigned.
func (l *Lexer) scanNumber() (Kind, error) {
	start := l.position()

	if l.peek() == '-' {
		l.advance()
	}

	digits := l.pos
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}

	intPart := l.input[digits:l.pos]

	if !l.fracFollows() {
		if _, err := strconv.ParseInt(intPart, 10, 64); err != nil {
			return 0, l.errorAt(start, "integer literal out of range")
		}

		return KindInteger, nil
	}

	l.advance() // '.'

	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}

	if len(intPart) > 1 && intPart[0] == '0' {
		return 0, l.errorAt(start, "malformed float literal: leading zero")
	}

	return KindFloat, nil
}

// floatFollows reports whether the input at offset i begins with
// digits '.' digit.
func (l *Lexer) floatFollows(i int) bool {
	j := i
	for j < len(l.input) && isDigit(rune(l.input[j])) {
		j++
	}

	return j > i && j+1 < len(l.input) &&
		l.input[j] == '.' && isDigit(rune(l.input[j+1]))
}

// fracFollows reports whether the cursor sits on '.' followed by a digit.
func (l *Lexer) fracFollows() bool {
	return l.pos+1 < len(l.input) &&
		l.input[l.pos] == '.' && isDigit(rune(l.input[l.pos+1]))
}

func (l *Lexer) scanString() (Kind, error) {
	start := l.position()

	l.advance() // opening quote

	for !l.eof() {
		if l.peek() == '"' {
			l.advance()

			return KindString, nil
		}

		l.advance()
	}

	return 0, l.errorAt(start, "unterminated string")
}

func (l *Lexer) scanSymbol() (Kind, error) {
	start := l.position()
	ch := l.peek()

	l.advance()

	switch ch {
	case '^':
		return KindCaret, nil
	case ';':
		return KindSemicolon, nil
	case '=':
		switch l.peek() {
		case '=':
			l.advance()

			return KindEquals, nil
		case '!':
			l.advance()

			return KindNotEquals, nil
		}

		return KindAssign, nil
	case '>':
		if l.peek() == '=' {
			l.advance()

			return KindGreaterEqual, nil
		}

		return KindGreater, nil
	case '<':
		if l.peek() == '=' {
			l.advance()

			return KindLessEqual, nil
		}

		return KindLess, nil
	case '+':
		return KindPlus, nil
	case '-':
		return KindMinus, nil
	case '*':
		return KindStar, nil
	case '/':
		return KindSlash, nil
	case '.':
		return KindDot, nil
	case ',':
		return KindComma, nil
	case '[':
		return KindLBracket, nil
	case ']':
		return KindRBracket, nil
	case '(':
		return KindLParen, nil
	case ')':
		return KindRParen, nil
	case '{':
		return KindLBrace, nil
	case '}':
		return KindRBrace, nil
	}

	return 0, l.errorAt(start, "unrecognized character "+strconv.QuoteRune(ch))
}

func (l *Lexer) errorAt(pos Position, reason string) error {
	return &SyntaxError{
		Unit:    l.unit,
		Pos:     pos,
		Reason:  reason,
		Source:  l.input,
		lexical: true,
	}
}

func (l *Lexer) skipSpaceAndComments() {
	for !l.eof() {
		switch ch := l.peek(); {
		case isSpace(ch):
			l.advance()

		case ch == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		default:
			return
		}
	}
}

// Helper methods

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	return r
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierContinue(r rune) bool {
	return isLetter(r) || isDigit(r) || r == '_'
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}

	return false
}
