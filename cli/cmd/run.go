package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/ardnew/san/lang"
	"github.com/ardnew/san/log"
)

// Run evaluates a source file.
type Run struct {
	Result bool `default:"true" help:"Print the module's result value." negatable:""`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source" type:"existingfile"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)

	srcs, err := resolveSources([]string{r.Source})
	if err != nil {
		return err
	}

	src := srcs[0]

	mod, err := src.parse(ctx, nil, optionsFrom(ctx)...)
	if err != nil {
		return report(out.stderr, err)
	}

	opts := slices.Concat(optionsFrom(ctx), []lang.Option{lang.WithOutput(out.stdout)})

	result, err := lang.Eval(ctx, mod, opts...)
	if err != nil {
		return ErrEvaluate.Wrap(err).With(src.attr())
	}

	log.DebugContext(ctx, "evaluated",
		src.attr(),
		slog.String("type", lang.TypeName(result)),
	)

	if r.Result && result != nil {
		_, err = fmt.Fprintln(out.stdout, lang.Display(result))
	}

	return err
}

// report writes the source excerpt of a syntax error to w and returns err.
func report(w io.Writer, err error) error {
	var se *lang.SyntaxError
	if errors.As(err, &se) {
		fmt.Fprintln(w, se.Error())
		fmt.Fprintln(w, se.Snippet())
	}

	return err
}
