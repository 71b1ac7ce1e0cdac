package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/ardnew/san/log"
)

// Fmt reformats source files in native syntax.
type Fmt struct {
	Indent int  `default:"2" help:"Indent width for formatted output; 0 writes each statement on one line." short:"i"`
	Write  bool `            help:"Write result to the source file instead of stdout."                      short:"w"`
	List   bool `            help:"List files whose formatting differs."                                     short:"l"`

	Sources []string `arg:"" help:"Source input files or '-' for stdin." name:"source" optional:"" type:"existingfile"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)

	srcs, err := resolveSources(f.Sources)
	if err != nil {
		return err
	}

	for _, src := range srcs {
		if err := f.format(ctx, src); err != nil {
			return report(out.stderr, err)
		}
	}

	return nil
}

func (f *Fmt) format(ctx context.Context, src source) error {
	out := outputFrom(ctx)

	var original []byte

	if src.path != "" {
		data, err := os.ReadFile(src.path)
		if err != nil {
			return ErrOpenSource.Wrap(err).With(src.attr())
		}

		original = data
	}

	mod, err := src.parse(ctx, nil, optionsFrom(ctx)...)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := mod.Format(ctx, &buf, f.Indent); err != nil {
		return ErrFormat.Wrap(err).With(src.attr())
	}

	changed := src.path == "" || !bytes.Equal(original, buf.Bytes())

	if f.List {
		if changed {
			fmt.Fprintln(out.stdout, src.name)
		}

		return nil
	}

	if f.Write && src.path != "" {
		if !changed {
			return nil
		}

		info, err := os.Stat(src.path)
		if err != nil {
			return ErrFormat.Wrap(err).With(src.attr())
		}

		if err := os.WriteFile(src.path, buf.Bytes(), info.Mode().Perm()); err != nil {
			return ErrFormat.Wrap(err).With(src.attr())
		}

		log.DebugContext(ctx, "formatted", src.attr())

		return nil
	}

	_, err = out.stdout.Write(buf.Bytes())

	return err
}
