package cli

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("resolve %q: %v", name, err)
	}

	return val
}

func TestResolveSan(t *testing.T) {
	source := `
let log_level = "debug";
let log_pretty = "false";
let max_depth = 64 * 2;
let ratio = 0 - 1.5;
let tags = ["a", 2];
let helper = fn(x) x;
let nested = object();
print("config output is discarded");
`

	r, err := resolveSan(context.Background())(strings.NewReader(source))
	if err != nil {
		t.Fatalf("loader error: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{flag: "log-level", want: "debug"},
		{flag: "log_level", want: "debug"},
		{flag: "log-pretty", want: "false"},
		{flag: "max-depth", want: "128"},
		{flag: "ratio", want: "-1.5"},
		{flag: "tags", want: []any{"a", "2"}},
		{flag: "helper", want: nil},
		{flag: "nested", want: nil},
		{flag: "print", want: nil},
		{flag: "missing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			if got := resolveFlag(t, r, tt.flag); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestResolveSan_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "syntax error", source: "let = ;"},
		{name: "runtime error", source: "let x = missing;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolveSan(context.Background())(strings.NewReader(tt.source))
			if err != nil {
				t.Fatalf("expected invalid config to be ignored, got %v", err)
			}

			if got := resolveFlag(t, r, "x"); got != nil {
				t.Errorf("expected empty config, got %v", got)
			}
		})
	}
}

func TestResolveYAML(t *testing.T) {
	source := `
log-level: warn
log_caller: true
max-depth: 32
tags: [a, b]
`

	r, err := resolveYAML(strings.NewReader(source))
	if err != nil {
		t.Fatalf("loader error: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{flag: "log-level", want: "warn"},
		{flag: "log-caller", want: "true"},
		{flag: "max-depth", want: "32"},
		{flag: "tags", want: []any{"a", "b"}},
	}

	for _, tt := range tests {
		if got := resolveFlag(t, r, tt.flag); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: expected %#v, got %#v", tt.flag, tt.want, got)
		}
	}

	empty, err := resolveYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}

	if got := resolveFlag(t, empty, "log-level"); got != nil {
		t.Errorf("expected empty config, got %v", got)
	}
}

func TestResolveTOML(t *testing.T) {
	source := `
log-level = "error"
log_pretty = false
max-depth = 16
`

	r, err := resolveTOML(strings.NewReader(source))
	if err != nil {
		t.Fatalf("loader error: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{flag: "log-level", want: "error"},
		{flag: "log-pretty", want: "false"},
		{flag: "max-depth", want: "16"},
	}

	for _, tt := range tests {
		if got := resolveFlag(t, r, tt.flag); got != tt.want {
			t.Errorf("%s: expected %#v, got %#v", tt.flag, tt.want, got)
		}
	}

	if _, err := resolveTOML(strings.NewReader("= broken")); err == nil {
		t.Error("expected a decode error")
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestResolveSan_ReadError(t *testing.T) {
	r, err := resolveSan(context.Background())(errorReader{})
	if err != nil {
		t.Fatalf("expected read failure to be ignored, got %v", err)
	}

	if got := resolveFlag(t, r, "log-level"); got != nil {
		t.Errorf("expected empty config, got %v", got)
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"s", "s"},
		{true, "true"},
		{7, "7"},
		{int64(-3), "-3"},
		{uint64(9), "9"},
		{2.5, "2.5"},
		{map[string]any{"a": 1}, nil},
		{nil, nil},
	}

	for _, tt := range tests {
		if got := flagValue(tt.in); got != tt.want {
			t.Errorf("flagValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
