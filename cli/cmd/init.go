package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/san/lang"
	"github.com/ardnew/san/log"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// configBase is the base name of the configuration file.
const configBase = "config"

// Init generates a configuration file with current flag values.
type Init struct {
	Force  bool   `help:"Overwrite existing configuration file" short:"f"`
	Format string `default:"san" enum:"san,yaml,toml" help:"Configuration file format (${enum})."`
}

// flagEntry is a flag name and its current value.
type flagEntry struct {
	name  string
	value any
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confDir, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config directory undefined")
	}

	confPath := filepath.Join(confDir, configBase+"."+i.Format)

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = i.write(ctx, file, flagEntries(ktx))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
		slog.String("format", i.Format),
	)

	return nil
}

func (i *Init) write(ctx context.Context, w io.Writer, entries []flagEntry) error {
	switch i.Format {
	case "yaml":
		doc := make(yaml.MapSlice, len(entries))
		for n, e := range entries {
			doc[n] = yaml.MapItem{Key: e.name, Value: e.value}
		}

		data, err := yaml.MarshalContext(ctx, doc, yaml.Indent(defaultConfigIndent))
		if err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", i.Format))
		}

		_, err = w.Write(data)

		return err

	case "toml":
		doc := make(map[string]any, len(entries))
		for _, e := range entries {
			doc[e.name] = e.value
		}

		enc := toml.NewEncoder(w)
		enc.Indent = strings.Repeat(" ", defaultConfigIndent)

		if err := enc.Encode(doc); err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", i.Format))
		}

		return nil

	default:
		return buildModule(entries).Format(ctx, w, defaultConfigIndent)
	}
}

// flagEntries returns the configurable flags and their current values.
// Flags without a value, help, version, and profiling flags are skipped.
func flagEntries(ktx *kong.Context) []flagEntry {
	prefixIgnore := []string{"help", "version", "pprof"}

	var entries []flagEntry

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := configValue(ktx.FlagValue(flag))
		if val != nil {
			entries = append(entries, flagEntry{flag.Name, val})
		}
	}

	return entries
}

// configValue normalizes a flag value for serialization, or returns nil if
// the flag is unset.
func configValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case bool, int64, float64:
		return v

	case int:
		return int64(v)

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case fmt.Stringer:
		return v.String()

	default:
		return fmt.Sprint(v)
	}
}

// buildModule constructs a san module declaring one variable per flag.
// Hyphens in flag names become underscores, since san identifiers cannot
// contain them.
func buildModule(entries []flagEntry) *lang.Module {
	b := lang.NewBuilder()

	body := make([]lang.Statement, 0, len(entries))

	for _, e := range entries {
		name := strings.ReplaceAll(e.name, "-", "_")
		body = append(body, b.Let(name, literal(b, e.value)))
	}

	return b.Module(configBase, body...)
}

// literal returns the san expression for a configuration value. san has no
// boolean literal, so booleans are written as strings.
func literal(b *lang.Builder, v any) lang.Expression {
	switch v := v.(type) {
	case bool:
		return b.String(strconv.FormatBool(v))

	case int64:
		if v < 0 {
			return b.Op(b.Int(0), lang.Subtract, b.Int(-v))
		}

		return b.Int(v)

	case float64:
		return b.Float(v)

	case []string:
		elems := make([]lang.Expression, len(v))
		for i, s := range v {
			elems[i] = b.String(s)
		}

		return b.List(elems...)

	default:
		return b.String(fmt.Sprint(v))
	}
}
