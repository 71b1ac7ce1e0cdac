package log

import (
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Level is the severity of a record. It extends the slog levels with
// [LevelTrace], used for per-unit parser and evaluator events.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

type levelName struct {
	level Level
	name  string
}

// levelNames is ordered by severity.
var levelNames = []levelName{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// Levels returns the names of the defined levels, least severe first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel parses a level name, case-insensitively, optionally followed by
// a signed offset ("info+2", "trace-1"). Unknown names yield [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))

	name, off := s, 0

	if i := strings.IndexAny(s, "+-"); i > 0 {
		n, err := strconv.Atoi(s[i:])
		if err != nil {
			return DefaultLevel
		}

		name, off = s[:i], n
	}

	for _, n := range levelNames {
		if n.name == name {
			return n.level + Level(off)
		}
	}

	return DefaultLevel
}

// String returns the lowercase name of the level. Levels between the named
// levels render as an offset from the nearest lower one, e.g. "info+2".
func (l Level) String() string {
	i := slices.IndexFunc(levelNames, func(n levelName) bool {
		return n.level > l
	})

	switch i {
	case 0:
		return levelNames[0].name + strconv.Itoa(int(l-levelNames[0].level))
	case -1:
		i = len(levelNames)
	}

	n := levelNames[i-1]
	if l == n.level {
		return n.name
	}

	return n.name + "+" + strconv.Itoa(int(l-n.level))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using [ParseLevel].
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))

	return nil
}

// Format selects how records are encoded.
type Format int

const (
	FormatText Format = iota // key=value pairs
	FormatJSON               // one object per record
)

var formatNames = map[Format]string{
	FormatText: "text",
	FormatJSON: "json",
}

// Formats returns the names of the defined formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON} {
			if !yield(formatNames[f]) {
				return
			}
		}
	}
}

// ParseFormat parses a format name, case-insensitively. Unknown names yield
// [DefaultFormat].
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimSpace(s))

	for f, name := range formatNames {
		if name == s {
			return f
		}
	}

	return DefaultFormat
}

// String returns the name of the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return "Format(" + strconv.Itoa(int(f)) + ")"
}
