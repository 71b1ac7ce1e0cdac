package lang

import (
	"log/slog"
	"strconv"
)

// Kind identifies the terminal class of a [Token].
type Kind int

const (
	KindEOF Kind = iota
	KindInteger
	KindFloat
	KindIdentifier
	KindString

	KindCaret        // ^
	KindSemicolon    // ;
	KindAssign       // =
	KindEquals       // ==
	KindNotEquals    // =!
	KindGreater      // >
	KindLess         // <
	KindLessEqual    // <=
	KindGreaterEqual // >=
	KindPlus         // +
	KindMinus        // -
	KindStar         // *
	KindSlash        // /
	KindDot          // .
	KindComma        // ,
	KindLBracket     // [
	KindRBracket     // ]
	KindLParen       // (
	KindRParen       // )
	KindLBrace       // {
	KindRBrace       // }
)

var kindName = [...]string{
	KindEOF:          "end of input",
	KindInteger:      "integer",
	KindFloat:        "float",
	KindIdentifier:   "identifier",
	KindString:       "string",
	KindCaret:        "^",
	KindSemicolon:    ";",
	KindAssign:       "=",
	KindEquals:       "==",
	KindNotEquals:    "=!",
	KindGreater:      ">",
	KindLess:         "<",
	KindLessEqual:    "<=",
	KindGreaterEqual: ">=",
	KindPlus:         "+",
	KindMinus:        "-",
	KindStar:         "*",
	KindSlash:        "/",
	KindDot:          ".",
	KindComma:        ",",
	KindLBracket:     "[",
	KindRBracket:     "]",
	KindLParen:       "(",
	KindRParen:       ")",
	KindLBrace:       "{",
	KindRBrace:       "}",
}

// String returns the source spelling of fixed symbols, or a description of
// the literal class.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Keywords of the language. They are lexed as identifiers.
const (
	KeywordLet  = "let"
	KeywordFn   = "fn"
	KeywordIf   = "if"
	KeywordElse = "else"
)

// Keywords returns the reserved words in source order.
func Keywords() []string {
	return []string{KeywordLet, KeywordFn, KeywordIf, KeywordElse}
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	switch s {
	case KeywordLet, KeywordFn, KeywordIf, KeywordElse:
		return true
	}

	return false
}

// Position locates a byte in the source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Location implements log.Locator. A position carries no unit name.
func (p Position) Location() (string, int, int) {
	return "", p.Line, p.Column
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
		slog.Int("offset", p.Offset),
	)
}

// Token is a single lexeme with its source span [Pos, End).
type Token struct {
	Kind Kind
	Text string
	Pos  Position
	End  Position
}

// Is reports whether t is the keyword kw.
func (t Token) Is(kw string) bool {
	return t.Kind == KindIdentifier && t.Text == kw
}

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Kind {
	case KindEOF:
		return t.Kind.String()
	case KindIdentifier:
		if IsKeyword(t.Text) {
			return "keyword " + strconv.Quote(t.Text)
		}

		return "identifier " + strconv.Quote(t.Text)
	case KindInteger, KindFloat, KindString:
		return t.Kind.String() + " " + t.Text
	default:
		return strconv.Quote(t.Text)
	}
}

// endsOperand reports whether a token can be the last token of an operand.
// A '-' following such a token is always the subtract operator.
func (t Token) endsOperand() bool {
	switch t.Kind {
	case KindInteger, KindFloat, KindString, KindRParen, KindRBracket:
		return true
	case KindIdentifier:
		return !IsKeyword(t.Text)
	}

	return false
}
