package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/san/lang"
)

// AST parses source files and dumps their syntax trees.
type AST struct {
	Format string `default:"tree" enum:"tree,json,yaml" help:"Output format (${enum})." short:"F"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output; 0 selects a compact layout." short:"i"`

	Sources []string `arg:"" help:"Source input files or '-' for stdin." name:"source" optional:"" type:"existingfile"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)

	srcs, err := resolveSources(a.Sources)
	if err != nil {
		return err
	}

	for _, src := range srcs {
		mod, err := src.parse(ctx, nil, optionsFrom(ctx)...)
		if err != nil {
			return report(out.stderr, err)
		}

		if err := a.dump(ctx, mod); err != nil {
			return ErrFormat.Wrap(err).
				With(src.attr(), slog.String("format", a.Format))
		}
	}

	return nil
}

func (a *AST) dump(ctx context.Context, mod *lang.Module) error {
	w := outputFrom(ctx).stdout

	switch a.Format {
	case "json":
		return mod.FormatJSON(ctx, w, a.Indent)

	case "yaml":
		return mod.FormatYAML(ctx, w, a.Indent)

	default:
		return mod.Print(w)
	}
}
