package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/xyproto/env/v2"

	"github.com/ardnew/san/cli/cmd"
	"github.com/ardnew/san/lang"
	"github.com/ardnew/san/log"
	"github.com/ardnew/san/pkg"
)

// CLI is the top-level command-line interface for san.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	MaxDepth int              `default:"${maxDepth}" help:"Maximum nesting depth for parsing and calls." name:"max-depth"`
	Version  kong.VersionFlag `help:"Print version and exit."                                           short:"V"`

	Run   cmd.Run   `cmd:"" default:"withargs" help:"Evaluate a san source file"`
	AST   cmd.AST   `cmd:"" help:"Print the syntax tree of san source files" name:"ast"`
	Fmt   cmd.Fmt   `cmd:"" help:"Format san source files"`
	Check cmd.Check `cmd:"" help:"Parse san source files and report errors"`
	Repl  cmd.Repl  `cmd:"" help:"Start an interactive session"`
	Init  cmd.Init  `cmd:"" help:"Initialize configuration file"`
}

// Run executes the san CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configDir(),
		cmd.CacheIdentifier:  cacheDir(),
		"maxDepth":           strconv.Itoa(env.Int("SAN_MAX_DEPTH", lang.DefaultMaxDepth)),
		"version":            pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that errors reported while parsing the
	// remaining flags already use the requested logger configuration.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolveYAML, configPath(baseConfig+".yaml"), configPath(baseConfig+".yml")),
		kong.Configuration(resolveTOML, configPath(baseConfig+".toml")),
		kong.Configuration(resolveSan(ctx), configPath(baseConfig+".san")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx,
		lang.WithMaxDepth(cli.MaxDepth),
		lang.WithLogger(log.Default()),
	)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
