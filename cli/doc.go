// Package cli contains the command line interface for san.
//
// # Usage
//
//	san [flags] <command> [args]
//
// The run command is the default, so "san script.san" evaluates a file and
// "san" alone evaluates standard input. The other commands are ast, fmt,
// check, repl, and init; see package [github.com/ardnew/san/cli/cmd].
//
// # Configuration Files
//
// Flag defaults may be set in files under the configuration directory
// ($SAN_CONFIG_HOME, or the platform config directory joined with the
// executable name). Each of these is consulted when present:
//
//   - config.json
//   - config.yaml or config.yml
//   - config.toml
//   - config.san
//
// Keys are flag names. A config.san file is evaluated, and each top-level
// binding supplies the flag of the same name, with underscores standing in
// for hyphens:
//
//	let log_level = "debug";
//	let max_depth = 512;
//
// Command-line flags override config file values. "san init" writes the
// current flag values in any of the san, yaml, or toml formats.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// Logs are written to standard error.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o san .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
//
// # Environment
//
//   - SAN_CONFIG_HOME: configuration directory
//   - SAN_CACHE_HOME: cache directory for REPL history and profiles
//   - SAN_MAX_DEPTH: default for --max-depth
//   - EDITOR: editor used by the REPL edit command
package cli
