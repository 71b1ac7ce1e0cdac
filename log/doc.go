// Package log provides a concurrency-safe leveled logger based on
// [log/slog], with terminal rendering for source diagnostics.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("parsed", slog.String("unit", "main.san"))
//	logger.Report(ctx, "parse failed", err)
//
// # Configuration
//
// A [Logger] is configured once, by functional options, and never changes
// afterwards; [Logger.Wrap] derives a reconfigured copy:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Trace], [Report], and so on) write
// through a default logger that [Config] replaces atomically.
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Records below the configured level are
// discarded. Trace is used for per-unit parser and evaluator events.
// [ParseLevel] also accepts an offset from a named level, e.g. "debug+2".
//
// # Output Formats
//
// [FormatText] (default) writes key=value pairs and [FormatJSON] one object
// per record. With [WithPretty] enabled, both are rendered for a human
// reader using lipgloss styles; color is dropped when the output is not a
// terminal.
//
// # Diagnostics
//
// Values implementing [Locator] render as "unit:line:column". An error
// implementing [Diagnostic], directly or anywhere in its chain, renders as
// its message, and pretty output prints its snippet (the offending source
// line with a caret) beneath the record. [Logger.Report] adds the location
// under "at" in every format.
package log
