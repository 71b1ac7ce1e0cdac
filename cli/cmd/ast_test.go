package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestAST(t *testing.T) {
	source := "let x = 1;\nx = x + 2;\n"

	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{
			format: "tree",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "Declaration") {
					t.Errorf("expected a declaration node in %q", out)
				}
			},
		},
		{
			format: "json",
			check: func(t *testing.T, out string) {
				var v any
				if err := json.Unmarshal([]byte(out), &v); err != nil {
					t.Fatalf("invalid JSON: %v\n%s", err, out)
				}

				if !strings.Contains(out, `"Assignment"`) {
					t.Errorf("expected an assignment node in %s", out)
				}
			},
		},
		{
			format: "yaml",
			check: func(t *testing.T, out string) {
				var v any
				if err := yaml.Unmarshal([]byte(out), &v); err != nil {
					t.Fatalf("invalid YAML: %v\n%s", err, out)
				}

				if !strings.Contains(out, "Declaration") {
					t.Errorf("expected a declaration node in %s", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			path := writeSource(t, t.TempDir(), "main.san", source)
			ctx, stdout, _ := testContext()

			a := &AST{Format: tt.format, Indent: 2, Sources: []string{path}}
			if err := a.Run(ctx); err != nil {
				t.Fatalf("ast error: %v", err)
			}

			tt.check(t, stdout.String())
		})
	}
}
