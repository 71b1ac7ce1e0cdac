package lang

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestEval(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{name: "empty", input: "", want: nil},
		{name: "declaration only", input: "let x = 1;", want: nil},
		{name: "integer sum", input: "1 + 2;", want: int64(3)},
		{name: "integer division truncates", input: "7 / 2;", want: int64(3)},
		{name: "float division", input: "7.0 / 2;", want: 3.5},
		{name: "mixed sum", input: "1 + 2.5;", want: 3.5},
		{name: "left associative", input: "10 - 4 - 3;", want: int64(3)},
		{name: "precedence", input: "1 + 2 * 3;", want: int64(7)},
		{name: "string concatenation", input: `"a" + "b";`, want: "ab"},
		{name: "not equals", input: "1 =! 2;", want: true},
		{name: "comparison chain", input: "3 > 2 == 1 < 2;", want: true},
		{name: "negative float", input: "0 - -1.5;", want: 1.5},
		{name: "assignment", input: "let x = 1; x = x + 1; x;", want: int64(2)},
		{
			name:  "closure",
			input: "let add = fn(a) fn(b) a + b; add(2)(3);",
			want:  int64(5),
		},
		{
			name: "recursion",
			input: `let fact = fn(n) {
				if n < 2 { ^ 1; }
				^ n * fact(n - 1);
			};
			fact(5);`,
			want: int64(120),
		},
		{
			name:  "block body without return",
			input: "let f = fn() { 1; }; f();",
			want:  nil,
		},
		{
			name:  "list subscript assignment",
			input: "let xs = [1, 2, 3]; xs[1] = 5; xs;",
			want:  []any{int64(1), int64(5), int64(3)},
		},
		{
			name:  "string subscript",
			input: `"héllo"[1];`,
			want:  "é",
		},
		{
			name:  "object property",
			input: `let o = object(); o.name = "x"; o.name;`,
			want:  "x",
		},
		{name: "module return", input: "^ 1; 2;", want: int64(1)},
		{
			name:  "return inside if ends module",
			input: "if 1 == 1 { ^ \"done\"; } 2;",
			want:  "done",
		},
		{
			name: "else if",
			input: `let r;
			if 1 > 2 { r = 1; } else if 2 > 1 { r = 2; } else { r = 3; }
			r;`,
			want: int64(2),
		},
		{
			name:  "block scope",
			input: "let x = 1; if 1 == 1 { let x = 2; } x;",
			want:  int64(1),
		},
		{
			name:  "assignment updates enclosing scope",
			input: "let x = 1; if 1 == 1 { x = 2; } x;",
			want:  int64(2),
		},
		{name: "len of string", input: `len("héllo");`, want: int64(5)},
		{name: "len of list", input: "len([1, 2]);", want: int64(2)},
		{name: "type", input: "type(1.5);", want: "float"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := mustParse(t, tt.input)

			got, err := Eval(context.Background(), mod)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "undefined identifier", input: "y;", want: ErrUndefined},
		{name: "assignment to undeclared", input: "y = 1;", want: ErrUndefined},
		{name: "missing property", input: "object().x;", want: ErrUndefined},
		{name: "mismatched operands", input: `1 + "a";`, want: ErrType},
		{name: "non-bool condition", input: "if 1 { }", want: ErrType},
		{name: "property of integer", input: "1.x;", want: ErrType},
		{name: "not callable", input: "1(2);", want: ErrNotCallable},
		{name: "arity", input: "let f = fn(a) a; f();", want: ErrArity},
		{name: "builtin arity", input: "len(1, 2);", want: ErrArity},
		{name: "index out of range", input: "[1][5];", want: ErrIndex},
		{name: "division by zero", input: "1 / 0;", want: ErrEvaluate},
		{
			name:  "unbounded recursion",
			input: "let f = fn() f(); f();",
			want:  ErrMaxDepthExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := mustParse(t, tt.input)

			_, err := Eval(context.Background(), mod, WithMaxDepth(32))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEval_Print(t *testing.T) {
	var buf bytes.Buffer

	mod := mustParse(t, `print(1, "a", [1.5, "b"]); print();`)

	if _, err := Eval(context.Background(), mod, WithOutput(&buf)); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	want := "1, a, [1.5, b]\n\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestInterp_Persistent(t *testing.T) {
	ctx := context.Background()

	in, err := NewInterp()
	if err != nil {
		t.Fatalf("interp error: %v", err)
	}

	if _, err := in.Eval(ctx, mustParse(t, "let x = 40;")); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	got, err := in.Eval(ctx, mustParse(t, "x + 2;"))
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != int64(42) {
		t.Errorf("expected 42, got %v", got)
	}

	names := in.Names()
	for _, want := range append(BuiltinNames(), "x") {
		if !slices.Contains(names, want) {
			t.Errorf("expected %q in %v", want, names)
		}
	}

	if v, ok := in.Lookup("x"); !ok || v != int64(40) {
		t.Errorf("expected x = 40, got %v (%v)", v, ok)
	}
}

func TestEval_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mod := mustParse(t, "1;")

	if _, err := Eval(ctx, mod); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, "null"},
		{int64(-3), "-3"},
		{2.0, "2.0"},
		{true, "true"},
		{"s", "s"},
		{[]any{int64(1), "a"}, "[1, a]"},
		{map[string]any{"b": int64(2), "a": int64(1)}, "{a: 1, b: 2}"},
		{&Closure{Params: []string{"x", "y"}}, "<fn(x, y)>"},
	}

	for _, tt := range tests {
		if got := Display(tt.value); got != tt.want {
			t.Errorf("Display(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
