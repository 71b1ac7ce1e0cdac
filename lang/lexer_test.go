package lang

import (
	"errors"
	"testing"
)

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
		texts []string
	}{
		{
			name:  "declaration",
			input: "let x = 1;",
			want: []Kind{
				KindIdentifier, KindIdentifier, KindAssign, KindInteger,
				KindSemicolon,
			},
			texts: []string{"let", "x", "=", "1", ";"},
		},
		{
			name:  "comparison operators",
			input: "== =! < > <= >= =",
			want: []Kind{
				KindEquals, KindNotEquals, KindLess, KindGreater,
				KindLessEqual, KindGreaterEqual, KindAssign,
			},
		},
		{
			name:  "not equals is equals then bang",
			input: "a =! b",
			want:  []Kind{KindIdentifier, KindNotEquals, KindIdentifier},
		},
		{
			name:  "punctuation",
			input: "^ ; . , [ ] ( ) { } + - * /",
			want: []Kind{
				KindCaret, KindSemicolon, KindDot, KindComma,
				KindLBracket, KindRBracket, KindLParen, KindRParen,
				KindLBrace, KindRBrace, KindPlus, KindMinus, KindStar,
				KindSlash,
			},
		},
		{
			name:  "float",
			input: "1.5",
			want:  []Kind{KindFloat},
			texts: []string{"1.5"},
		},
		{
			name:  "negative float at start",
			input: "-1.5",
			want:  []Kind{KindFloat},
			texts: []string{"-1.5"},
		},
		{
			name:  "subtract float after operand",
			input: "a-1.5",
			want:  []Kind{KindIdentifier, KindMinus, KindFloat},
			texts: []string{"a", "-", "1.5"},
		},
		{
			name:  "negative float after operator",
			input: "x - -1.5",
			want:  []Kind{KindIdentifier, KindMinus, KindFloat},
			texts: []string{"x", "-", "-1.5"},
		},
		{
			name:  "negative float after paren",
			input: "(-2.25)",
			want:  []Kind{KindLParen, KindFloat, KindRParen},
			texts: []string{"(", "-2.25", ")"},
		},
		{
			name:  "integers are unsigned",
			input: "-1",
			want:  []Kind{KindMinus, KindInteger},
		},
		{
			name:  "integer property",
			input: "1.x",
			want:  []Kind{KindInteger, KindDot, KindIdentifier},
		},
		{
			name:  "float property",
			input: "1.5.x",
			want:  []Kind{KindFloat, KindDot, KindIdentifier},
		},
		{
			name:  "string without quotes",
			input: `"hello, world"`,
			want:  []Kind{KindString},
			texts: []string{"hello, world"},
		},
		{
			name:  "identifier with digits and underscore",
			input: "foo_bar2",
			want:  []Kind{KindIdentifier},
			texts: []string{"foo_bar2"},
		},
		{
			name:  "line comment",
			input: "// ignored\nx // trailing",
			want:  []Kind{KindIdentifier},
		},
		{
			name:  "empty",
			input: "   \n\t",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize("test", tt.input)
			if err != nil {
				t.Fatalf("tokenize error: %v", err)
			}

			if len(toks) != len(tt.want) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.want), len(toks), toks)
			}

			for i, tok := range toks {
				if tok.Kind != tt.want[i] {
					t.Errorf("token %d: expected %s, got %s", i, tt.want[i], tok.Kind)
				}

				if tt.texts != nil && tok.Text != tt.texts[i] {
					t.Errorf("token %d: expected text %q, got %q", i, tt.texts[i], tok.Text)
				}
			}
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
	}{
		{name: "unterminated string", input: `x = "abc`, line: 1, column: 5},
		{name: "leading zero float", input: "0123.5", line: 1, column: 1},
		{name: "integer overflow", input: "99999999999999999999", line: 1, column: 1},
		{name: "unrecognized character", input: "a\n  @", line: 2, column: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize("test", tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.Is(err, ErrLexical) {
				t.Errorf("expected ErrLexical, got %v", err)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}

			if se.Pos.Line != tt.line || se.Pos.Column != tt.column {
				t.Errorf("expected position %d:%d, got %s", tt.line, tt.column, se.Pos)
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks, err := Tokenize("test", "let a = 1;\n  a = \"é\" + b;")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 4, Line: 1, Column: 5},
		{Offset: 6, Line: 1, Column: 7},
		{Offset: 8, Line: 1, Column: 9},
		{Offset: 9, Line: 1, Column: 10},
		{Offset: 13, Line: 2, Column: 3},
		{Offset: 15, Line: 2, Column: 5},
		{Offset: 17, Line: 2, Column: 7},
		{Offset: 22, Line: 2, Column: 11},
		{Offset: 24, Line: 2, Column: 13},
		{Offset: 25, Line: 2, Column: 14},
	}

	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}

	for i, tok := range toks {
		if tok.Pos != want[i] {
			t.Errorf("token %d (%q): expected %+v, got %+v", i, tok.Text, want[i], tok.Pos)
		}
	}
}

func TestLexer_EOFRepeats(t *testing.T) {
	l := NewLexer("test", "x")

	if tok, err := l.Next(); err != nil || tok.Kind != KindIdentifier {
		t.Fatalf("expected identifier, got %v (%v)", tok, err)
	}

	for range 3 {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if tok.Kind != KindEOF {
			t.Errorf("expected end of input, got %s", tok.Kind)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range Keywords() {
		if !IsKeyword(kw) {
			t.Errorf("expected %q to be a keyword", kw)
		}
	}

	for _, s := range []string{"lets", "Fn", "iff", "x", ""} {
		if IsKeyword(s) {
			t.Errorf("expected %q not to be a keyword", s)
		}
	}
}
