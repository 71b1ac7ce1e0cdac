package cmd

import (
	"context"

	"github.com/ardnew/san/cli/cmd/repl"
	"github.com/ardnew/san/log"
)

// Repl starts an interactive session.
type Repl struct {
	Load []string `help:"Evaluate source files before the first prompt." short:"l" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cacheDir := ""
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	session, err := repl.NewSession(optionsFrom(ctx)...)
	if err != nil {
		return err
	}

	if len(r.Load) > 0 {
		srcs, err := resolveSources(r.Load)
		if err != nil {
			return err
		}

		for _, src := range srcs {
			mod, err := src.parse(ctx, nil, optionsFrom(ctx)...)
			if err != nil {
				return report(outputFrom(ctx).stderr, err)
			}

			if _, err := session.Load(ctx, mod); err != nil {
				return ErrEvaluate.Wrap(err).With(src.attr())
			}
		}
	}

	return repl.Run(ctx, session, cacheDir, log.Default())
}
