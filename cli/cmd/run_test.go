package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/san/lang"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		result     bool
		wantStdout string
	}{
		{
			name:       "print and result",
			source:     "print(\"hi\", [1, 2.5]);\n^ 1 + 2;\n",
			result:     true,
			wantStdout: "hi, [1, 2.5]\n3\n",
		},
		{
			name:       "no result",
			source:     "let x = 1;\n",
			result:     true,
			wantStdout: "",
		},
		{
			name:       "result suppressed",
			source:     "^ \"done\";\n",
			result:     false,
			wantStdout: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, t.TempDir(), "main.san", tt.source)
			ctx, stdout, _ := testContext()

			r := &Run{Result: tt.result, Source: path}
			if err := r.Run(ctx); err != nil {
				t.Fatalf("run error: %v", err)
			}

			if got := stdout.String(); got != tt.wantStdout {
				t.Errorf("expected stdout %q, got %q", tt.wantStdout, got)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		want       []error
		wantStderr string
	}{
		{
			name:       "syntax",
			source:     "let x = ;\n",
			want:       []error{ErrParse, lang.ErrSyntax},
			wantStderr: "^",
		},
		{
			name:   "evaluation",
			source: "missing + 1;\n",
			want:   []error{ErrEvaluate, lang.ErrUndefined},
		},
		{
			name:   "depth",
			source: "let f = fn() f(); f();\n",
			want:   []error{ErrEvaluate, lang.ErrMaxDepthExceeded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, t.TempDir(), "bad.san", tt.source)
			ctx, _, stderr := testContext()
			ctx = WithOptions(ctx, lang.WithMaxDepth(32))

			err := (&Run{Result: true, Source: path}).Run(ctx)

			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("expected %v in %v", want, err)
				}
			}

			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("expected %q in stderr %q", tt.wantStderr, stderr.String())
			}
		})
	}
}
