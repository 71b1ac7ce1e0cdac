package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/san/lang"
	"github.com/ardnew/san/log"
)

// Check parses source files concurrently and reports one line per file.
type Check struct {
	Jobs int `default:"0" help:"Maximum number of files parsed at once; 0 selects the number of CPUs." short:"j"`

	Sources []string `arg:"" help:"Source input files or '-' for stdin." name:"source" optional:"" type:"existingfile"`
}

// checkResult is the outcome of parsing one source.
type checkResult struct {
	mod *lang.Module
	err error
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := resolveSources(c.Sources)
	if err != nil {
		return err
	}

	results := c.parseAll(ctx, srcs, lang.NewCache())

	return c.report(ctx, srcs, results)
}

// parseAll parses every source with at most c.Jobs parses in flight. The
// first failure cancels parses that have not finished.
func (c *Check) parseAll(
	ctx context.Context,
	srcs []source,
	cache *lang.Cache,
) []checkResult {
	jobs := c.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	results := make([]checkResult, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, src := range srcs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].err = err

				return nil
			}

			mod, err := src.parse(gctx, cache, optionsFrom(ctx)...)
			results[i] = checkResult{mod: mod, err: err}

			return err
		})
	}

	_ = g.Wait()

	log.DebugContext(ctx, "check complete",
		slog.Int("sources", len(srcs)),
		slog.Int("jobs", jobs),
		slog.Int("cached", cache.Len()),
	)

	return results
}

// report prints the per-file results in source order and returns the first
// parse failure.
func (c *Check) report(
	ctx context.Context,
	srcs []source,
	results []checkResult,
) error {
	out := outputFrom(ctx)

	var first error

	for i, res := range results {
		switch {
		case res.err == nil:
			fmt.Fprintf(out.stdout, "%s: ok (%d statements)\n",
				srcs[i].name, len(res.mod.Body))

		case errors.Is(res.err, context.Canceled):
			fmt.Fprintf(out.stdout, "%s: skipped\n", srcs[i].name)

		default:
			fmt.Fprintf(out.stdout, "%s: %v\n", srcs[i].name, syntaxMessage(res.err))

			if first == nil {
				first = res.err
			}
		}
	}

	if first != nil {
		return ErrCheck.Wrap(first)
	}

	return nil
}

// syntaxMessage returns the syntax error message inside err if there is one,
// else err itself.
func syntaxMessage(err error) any {
	var se *lang.SyntaxError
	if errors.As(err, &se) {
		return se
	}

	return err
}
