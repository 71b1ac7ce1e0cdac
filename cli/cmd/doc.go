// Package cmd implements the san subcommands: run, ast, fmt, check, repl,
// and init.
//
// Commands read their shared parse options and output writers from the
// [context.Context] passed by kong; see [WithOptions] and [WithOutput].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration directory.
	ConfigIdentifier = "config"
)
