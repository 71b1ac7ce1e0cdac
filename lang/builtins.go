package lang

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// builtins returns the native functions bound in every interpreter's global
// scope.
func builtins() []*Builtin {
	return []*Builtin{
		{Name: "print", Arity: -1, Fn: builtinPrint},
		{Name: "len", Arity: 1, Fn: builtinLen},
		{Name: "object", Arity: 0, Fn: builtinObject},
		{Name: "type", Arity: 1, Fn: builtinType},
	}
}

// BuiltinNames returns the names of the native functions.
func BuiltinNames() []string {
	bs := builtins()

	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}

	return names
}

// builtinPrint writes its arguments separated by ", " and a newline.
func builtinPrint(in *Interp, args []any) (any, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Display(a)
	}

	if _, err := io.WriteString(in.cfg.output, strings.Join(parts, ", ")+"\n"); err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("builtin", "print"))
	}

	return nil, nil
}

func builtinLen(_ *Interp, args []any) (any, error) {
	switch v := args[0].(type) {
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	case []any:
		return int64(len(v)), nil
	case map[string]any:
		return int64(len(v)), nil
	}

	return nil, ErrType.Wrap(fmt.Errorf("len of %s", TypeName(args[0])))
}

func builtinObject(*Interp, []any) (any, error) {
	return make(map[string]any), nil
}

func builtinType(_ *Interp, args []any) (any, error) {
	return TypeName(args[0]), nil
}
