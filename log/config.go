package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Settings applied by [Make] before any option.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultTimeLayout = time.RFC3339
	DefaultCaller     = false
	DefaultPretty     = true
)

// Option configures a [Logger].
type Option func(*config)

// config is copied by value into each Logger; options never mutate a config
// that a Logger already holds.
type config struct {
	output io.Writer
	stamp  func(time.Time) string // "" drops the time attribute
	level  Level
	format Format
	caller bool
	pretty bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	c := config{
		output: io.Discard,
		stamp:  stamper(DefaultTimeLayout),
		level:  DefaultLevel,
		format: DefaultFormat,
		caller: DefaultCaller,
		pretty: DefaultPretty,
	}

	if w != nil {
		c.output = w
	}

	return c.with(opts...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

type handlerFunc func(io.Writer, *slog.HandlerOptions) slog.Handler

// handlers maps (pretty, format) to a handler constructor.
var handlers = map[bool]map[Format]handlerFunc{
	false: {
		FormatText: func(w io.Writer, o *slog.HandlerOptions) slog.Handler {
			return slog.NewTextHandler(w, o)
		},
		FormatJSON: func(w io.Writer, o *slog.HandlerOptions) slog.Handler {
			return slog.NewJSONHandler(w, o)
		},
	},
	true: {
		FormatText: func(w io.Writer, o *slog.HandlerOptions) slog.Handler {
			return newPrettyTextHandler(w, o)
		},
		FormatJSON: func(w io.Writer, o *slog.HandlerOptions) slog.Handler {
			return newPrettyJSONHandler(w, o)
		},
	},
}

func (c config) handler() slog.Handler {
	mk, ok := handlers[c.pretty][c.format]
	if !ok {
		return slog.DiscardHandler
	}

	return mk(c.output, &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	})
}

// replaceAttr formats the record time with the configured layout and spells
// levels by their [Level] names, so trace renders as "TRACE", not "DEBUG-4".
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			return a
		}

		s := c.stamp(t)
		if s == "" {
			return slog.Attr{}
		}

		return slog.String(slog.TimeKey, s)

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

// WithOutput sets the destination of log records. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return func(c *config) { c.output = w }
}

// WithLevel sets the minimum level; records below it are dropped.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the layout of record timestamps.
//
// The layout is either a name from [time] (case-insensitive: "RFC3339",
// "RFC3339Nano", "Kitchen", "Stamp", "StampMilli", "StampMicro",
// "StampNano", "DateTime", "DateOnly", "TimeOnly") or a layout passed
// verbatim to [time.Time.Format]. "none" or a blank layout omits timestamps.
func WithTimeLayout(layout string) Option {
	stamp := stamper(layout)

	return func(c *config) { c.stamp = stamp }
}

// WithCaller includes the source file and line of the logging call.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty styles output for a terminal. Text output drops quoting and
// colors keys and values by kind; JSON output is indented, one attribute per
// line. Both render source locations as "unit:line:column" and print the
// offending source line of a [Diagnostic] beneath the record.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}

var timeLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"none":        "",
}

func stamper(layout string) func(time.Time) string {
	if named, ok := timeLayouts[strings.ToLower(strings.TrimSpace(layout))]; ok {
		layout = named
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
