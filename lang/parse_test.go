package lang

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string, opts ...Option) *Module {
	t.Helper()

	mod, err := Parse(context.Background(), "test", source, opts...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return mod
}

func TestParse_Statements(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name  string
		input string
		want  []Statement
	}{
		{
			name:  "empty module",
			input: "",
			want:  []Statement{},
		},
		{
			name:  "integer literal",
			input: "42;",
			want:  []Statement{b.Expr(b.Int(42))},
		},
		{
			name:  "integer with leading zeros",
			input: "007;",
			want:  []Statement{b.Expr(b.Int(7))},
		},
		{
			name:  "float literal",
			input: "3.25;",
			want:  []Statement{b.Expr(b.Float(3.25))},
		},
		{
			name:  "negative float literal",
			input: "-0.5;",
			want:  []Statement{b.Expr(b.Float(-0.5))},
		},
		{
			name:  "negative float opens function body",
			input: "let f = fn(x) -1.5 + x;",
			want: []Statement{b.Let("f", b.Fn([]string{"x"},
				b.Return(b.Op(b.Float(-1.5), Add, b.Ident("x")))))},
		},
		{
			name:  "string literal",
			input: `"a b";`,
			want:  []Statement{b.Expr(b.String("a b"))},
		},
		{
			name:  "declaration without initializer",
			input: "let x;",
			want:  []Statement{b.Let("x", nil)},
		},
		{
			name:  "declaration with initializer",
			input: "let x = 1;",
			want:  []Statement{b.Let("x", b.Int(1))},
		},
		{
			name:  "return",
			input: "^ x;",
			want:  []Statement{b.Return(b.Ident("x"))},
		},
		{
			name:  "identifier assignment",
			input: "x = 2;",
			want:  []Statement{b.Assign(b.ToIdent("x"), b.Int(2))},
		},
		{
			name:  "property assignment",
			input: "a.b = 2;",
			want:  []Statement{b.Assign(b.ToProp(b.Ident("a"), "b"), b.Int(2))},
		},
		{
			name:  "subscript assignment",
			input: "a[0] = 2;",
			want: []Statement{
				b.Assign(b.ToIndex(b.Ident("a"), b.Int(0)), b.Int(2)),
			},
		},
		{
			name:  "nested target",
			input: "f(x).y[1] = z;",
			want: []Statement{
				b.Assign(
					b.ToIndex(b.Prop(b.Call(b.Ident("f"), b.Ident("x")), "y"), b.Int(1)),
					b.Ident("z"),
				),
			},
		},
		{
			name:  "equality is not assignment",
			input: "x == 2;",
			want:  []Statement{b.Expr(b.Op(b.Ident("x"), Equals, b.Int(2)))},
		},
		{
			name:  "comments",
			input: "// leading\nlet x = 1; // trailing\n",
			want:  []Statement{b.Let("x", b.Int(1))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := mustParse(t, tt.input)

			if mod.Name != "test" {
				t.Errorf("expected module name %q, got %q", "test", mod.Name)
			}

			if !reflect.DeepEqual(mod.Body, tt.want) {
				t.Errorf("body mismatch\n got: %s\nwant: %s",
					formatBody(mod.Body), formatBody(tt.want))
			}
		})
	}
}

func TestParse_Expressions(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name  string
		input string
		want  Expression
	}{
		{
			name:  "left associative subtract",
			input: "1 - 2 - 3",
			want:  b.Op(b.Op(b.Int(1), Subtract, b.Int(2)), Subtract, b.Int(3)),
		},
		{
			name:  "left associative divide",
			input: "8 / 4 / 2",
			want:  b.Op(b.Op(b.Int(8), Divide, b.Int(4)), Divide, b.Int(2)),
		},
		{
			name:  "factor binds tighter on the right",
			input: "1 + 2 * 3",
			want:  b.Op(b.Int(1), Add, b.Op(b.Int(2), Multiply, b.Int(3))),
		},
		{
			name:  "factor binds tighter on the left",
			input: "1 * 2 + 3",
			want:  b.Op(b.Op(b.Int(1), Multiply, b.Int(2)), Add, b.Int(3)),
		},
		{
			name:  "ordering binds tighter than equality",
			input: "a < b == c >= d",
			want: b.Op(
				b.Op(b.Ident("a"), LessThan, b.Ident("b")),
				Equals,
				b.Op(b.Ident("c"), GreaterThanOrEqual, b.Ident("d")),
			),
		},
		{
			name:  "not equals",
			input: "a =! b",
			want:  b.Op(b.Ident("a"), NotEquals, b.Ident("b")),
		},
		{
			name:  "parentheses group",
			input: "(1 + 2) * 3",
			want:  b.Op(b.Op(b.Int(1), Add, b.Int(2)), Multiply, b.Int(3)),
		},
		{
			name:  "subtract float",
			input: "a-1.5",
			want:  b.Op(b.Ident("a"), Subtract, b.Float(1.5)),
		},
		{
			name:  "subtract negative float",
			input: "a - -1.5",
			want:  b.Op(b.Ident("a"), Subtract, b.Float(-1.5)),
		},
		{
			name:  "postfix chain",
			input: "a.b[0](c)",
			want: b.Call(
				b.Index(b.Prop(b.Ident("a"), "b"), b.Int(0)),
				b.Ident("c"),
			),
		},
		{
			name:  "call chain",
			input: "a(1).b[2](3)",
			want: b.Call(
				b.Index(b.Prop(b.Call(b.Ident("a"), b.Int(1)), "b"), b.Int(2)),
				b.Int(3),
			),
		},
		{
			name:  "list with trailing comma",
			input: "[1, 2.5, \"s\",]",
			want:  b.List(b.Int(1), b.Float(2.5), b.String("s")),
		},
		{
			name:  "empty list",
			input: "[]",
			want:  b.List(),
		},
		{
			name:  "call with no arguments",
			input: "f()",
			want:  b.Call(b.Ident("f")),
		},
		{
			name:  "expression-bodied function",
			input: "fn(x) x + 1",
			want: b.Fn([]string{"x"},
				b.Return(b.Op(b.Ident("x"), Add, b.Int(1)))),
		},
		{
			name:  "block-bodied function has no implicit return",
			input: "fn(x) { x + 1; }",
			want: b.Fn([]string{"x"},
				b.Expr(b.Op(b.Ident("x"), Add, b.Int(1)))),
		},
		{
			name:  "expression body starting with negative float",
			input: "fn(x) -1.5",
			want:  b.Fn([]string{"x"}, b.Return(b.Float(-1.5))),
		},
		{
			name:  "negative float body in a sum",
			input: "fn(x) -1.5 + x",
			want: b.Fn([]string{"x"},
				b.Return(b.Op(b.Float(-1.5), Add, b.Ident("x")))),
		},
		{
			name:  "negative float body with postfix",
			input: "fn() -1.5.a",
			want:  b.Fn(nil, b.Return(b.Prop(b.Float(-1.5), "a"))),
		},
		{
			name:  "function without parameters",
			input: "fn() {}",
			want:  b.Fn(nil),
		},
		{
			name:  "parameters with trailing comma",
			input: "fn(a, b,) a",
			want:  b.Fn([]string{"a", "b"}, b.Return(b.Ident("a"))),
		},
		{
			name:  "parenthesized function call",
			input: "(fn(x) x)(2)",
			want: b.Call(
				b.Fn([]string{"x"}, b.Return(b.Ident("x"))),
				b.Int(2),
			),
		},
		{
			name:  "parenthesized function operand",
			input: "1 + (fn() 1)",
			want:  b.Op(b.Int(1), Add, b.Fn(nil, b.Return(b.Int(1)))),
		},
		{
			name:  "function as argument",
			input: "map(xs, fn(x) x * 2)",
			want: b.Call(b.Ident("map"),
				b.Ident("xs"),
				b.Fn([]string{"x"}, b.Return(b.Op(b.Ident("x"), Multiply, b.Int(2)))),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpression(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expression mismatch\n got: %s\nwant: %s",
					FormatExpression(got), FormatExpression(tt.want))
			}

			mod := mustParse(t, tt.input+";")
			if !reflect.DeepEqual(mod.Body, []Statement{b.Expr(tt.want)}) {
				t.Errorf("statement form mismatch: %s", formatBody(mod.Body))
			}
		})
	}
}

func TestParse_If(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name  string
		input string
		want  Statement
	}{
		{
			name:  "empty else",
			input: "if a {1;}",
			want:  b.If(b.Ident("a"), b.Expr(b.Int(1))),
		},
		{
			name:  "else block",
			input: "if a {1;} else {2;}",
			want: b.IfElse(b.Ident("a"),
				[]Statement{b.Expr(b.Int(1))},
				[]Statement{b.Expr(b.Int(2))}),
		},
		{
			name:  "else if chain",
			input: "if a {1;} else if b {2;} else {3;}",
			want: b.IfElse(b.Ident("a"),
				[]Statement{b.Expr(b.Int(1))},
				[]Statement{
					b.IfElse(b.Ident("b"),
						[]Statement{b.Expr(b.Int(2))},
						[]Statement{b.Expr(b.Int(3))}),
				}),
		},
		{
			name:  "else if without final else",
			input: "if a {} else if b {}",
			want: b.IfElse(b.Ident("a"), nil,
				[]Statement{b.If(b.Ident("b"))}),
		},
		{
			name:  "explicit empty else",
			input: "if a {} else {}",
			want:  b.If(b.Ident("a")),
		},
		{
			name:  "nested statements",
			input: "if x > 1 { let y = x; ^ y; }",
			want: b.If(b.Op(b.Ident("x"), GreaterThan, b.Int(1)),
				b.Let("y", b.Ident("x")),
				b.Return(b.Ident("y"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := mustParse(t, tt.input)

			if len(mod.Body) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(mod.Body))
			}

			if !reflect.DeepEqual(mod.Body[0], tt.want) {
				t.Errorf("if mismatch\n got: %s\nwant: %s",
					formatBody(mod.Body), formatBody([]Statement{tt.want}))
			}

			s, ok := mod.Body[0].(*If)
			if !ok {
				t.Fatalf("expected *If, got %T", mod.Body[0])
			}

			if s.ElseBody == nil {
				t.Error("else body must not be nil")
			}
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		column   int
		contains string
	}{
		{
			name:     "invalid assignment target",
			input:    "1 + 2 = 3;",
			line:     1,
			column:   1,
			contains: "invalid assignment target",
		},
		{
			name:     "call is not a target",
			input:    "f() = 3;",
			line:     1,
			column:   1,
			contains: "unexpected function call",
		},
		{
			name:     "parenthesized identifier is not a target",
			input:    "(x) = 3;",
			line:     1,
			column:   1,
			contains: "unexpected parenthesized expression",
		},
		{
			name:     "function literal as operand",
			input:    "1 + fn() 1;",
			line:     1,
			column:   5,
			contains: "function literal must be parenthesized",
		},
		{
			name:     "missing semicolon",
			input:    "let x = 1",
			line:     1,
			column:   10,
			contains: `unexpected end of input, expected ";"`,
		},
		{
			name:     "unterminated block",
			input:    "if a {\n1;",
			line:     2,
			column:   3,
			contains: "unterminated block",
		},
		{
			name:     "unterminated parenthesis",
			input:    "(1 + 2;",
			line:     1,
			column:   7,
			contains: `expected ")"`,
		},
		{
			name:     "mismatched brackets",
			input:    "[1, 2);",
			line:     1,
			column:   6,
			contains: `unexpected ")"`,
		},
		{
			name:     "if requires braces",
			input:    "if a 1;",
			line:     1,
			column:   6,
			contains: `expected "{"`,
		},
		{
			name:     "else requires block or if",
			input:    "if a {} else 1;",
			line:     1,
			column:   14,
			contains: `expected "if", "{"`,
		},
		{
			name:     "keyword as name",
			input:    "let if = 1;",
			line:     1,
			column:   5,
			contains: `unexpected keyword "if"`,
		},
		{
			name:     "dangling else",
			input:    "else {}",
			line:     1,
			column:   1,
			contains: `unexpected keyword "else"`,
		},
		{
			name:     "missing operand",
			input:    "1 + ;",
			line:     1,
			column:   5,
			contains: `unexpected ";"`,
		},
		{
			name:     "separated sign is not a literal",
			input:    "fn(x) - 1.5;",
			line:     1,
			column:   7,
			contains: `unexpected "-"`,
		},
		{
			name:     "no unary minus",
			input:    "fn(x) -x;",
			line:     1,
			column:   7,
			contains: `unexpected "-"`,
		},
		{
			name:     "property requires identifier",
			input:    "a.1;",
			line:     1,
			column:   3,
			contains: `expected "identifier"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := Parse(context.Background(), "test", tt.input)
			if err == nil {
				t.Fatalf("expected error, got module: %s", formatBody(mod.Body))
			}

			if mod != nil {
				t.Error("expected no partial module")
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}

			if se.Pos.Line != tt.line || se.Pos.Column != tt.column {
				t.Errorf("expected position %d:%d, got %s (%v)",
					tt.line, tt.column, se.Pos, err)
			}

			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error containing %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestParse_LexicalErrorPropagates(t *testing.T) {
	_, err := Parse(context.Background(), "test", "let x = @;")
	if !errors.Is(err, ErrLexical) {
		t.Fatalf("expected ErrLexical, got %v", err)
	}

	if errors.Is(err, ErrSyntax) {
		t.Error("lexical error must not match ErrSyntax")
	}
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 50) + "1" + strings.Repeat(")", 50) + ";"

	if _, err := Parse(context.Background(), "test", deep); err != nil {
		t.Fatalf("unexpected error at default depth: %v", err)
	}

	_, err := Parse(context.Background(), "test", deep, WithMaxDepth(10))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("expected ErrMaxDepthExceeded, got %v", err)
	}

	blocks := strings.Repeat("if a {", 20) + strings.Repeat("}", 20)

	_, err = Parse(context.Background(), "test", blocks, WithMaxDepth(10))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("expected ErrMaxDepthExceeded for blocks, got %v", err)
	}
}

func TestParse_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, "test", "1; 2;")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSyntaxError_Snippet(t *testing.T) {
	_, err := Parse(context.Background(), "test", "let a = 1;\nlet b = ;")

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	want := "  2 | let b = ;\n" + strings.Repeat(" ", 6+8) + "^\n"
	if got := se.Snippet(); got != want {
		t.Errorf("snippet mismatch\n got: %q\nwant: %q", got, want)
	}

	if !strings.HasPrefix(se.Error(), "test:2:9: syntax error") {
		t.Errorf("unexpected message: %s", se.Error())
	}
}

func TestModule_Declarations(t *testing.T) {
	mod := mustParse(t, "let a = 1; b = 2; let c; if a { let d; }")

	want := []string{"a", "c"}
	if got := mod.Declarations(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	count := 0
	for range mod.All() {
		count++
	}

	if count != 4 {
		t.Errorf("expected 4 statements, got %d", count)
	}
}

func formatBody(body []Statement) string {
	var sb strings.Builder

	_ = (&Module{Body: body}).Format(context.Background(), &sb, 0)

	return strings.TrimSpace(sb.String())
}
