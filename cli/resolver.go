package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/san/lang"
	"github.com/ardnew/san/log"
)

// config implements [kong.Resolver] over a flat map of flag values.
//
// Keys are flag names; hyphens may be written as underscores, since san
// identifiers cannot contain them. Scalars are stored as strings, which is
// the form kong's mappers parse most reliably.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// makeConfig builds a config from decoded values, dropping any value that
// cannot be expressed as a flag.
func makeConfig(values map[string]any) config {
	c := make(config, len(values))

	for key, val := range values {
		if v := flagValue(val); v != nil {
			c[key] = v
		}
	}

	return c
}

// flagValue converts a decoded value into the form kong resolves: strings
// for scalars and slices of strings for lists. It returns nil for values
// with no flag representation, such as objects and functions.
func flagValue(val any) any {
	switch v := val.(type) {
	case string:
		return v

	case bool:
		return strconv.FormatBool(v)

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		list := make([]any, 0, len(v))

		for _, elem := range v {
			if s := flagValue(elem); s != nil {
				list = append(list, s)
			}
		}

		return list

	case map[string]any, *lang.Closure, *lang.Builtin, nil:
		return nil

	default:
		return fmt.Sprint(v)
	}
}

// resolveSan returns a [kong.ConfigurationLoader] for config files written
// in san. The file is evaluated, and each top-level binding becomes a flag
// value:
//
//	let log_level = "debug";
//	let log_pretty = "false";
//	let max_depth = 64 * 2;
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug
//	--no-log-pretty
//	--max-depth=128
//
// A file that fails to parse or evaluate is reported and ignored.
// Command-line flags override config file values.
func resolveSan(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		values, err := evalConfig(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring config file", slog.Any("error", err))

			return config{}, nil
		}

		return makeConfig(values), nil
	}
}

// evalConfig evaluates a san config and returns its global bindings,
// excluding the builtins.
func evalConfig(ctx context.Context, r io.Reader) (map[string]any, error) {
	mod, err := lang.ParseReader(ctx, baseConfig, r)
	if err != nil {
		return nil, err
	}

	interp, err := lang.NewInterp(lang.WithOutput(io.Discard))
	if err != nil {
		return nil, err
	}

	if _, err := interp.Eval(ctx, mod); err != nil {
		return nil, err
	}

	builtins := lang.BuiltinNames()
	values := make(map[string]any)

	for _, name := range interp.Names() {
		if slices.Contains(builtins, name) {
			continue
		}

		values[name], _ = interp.Lookup(name)
	}

	return values, nil
}

// resolveYAML is a [kong.ConfigurationLoader] for YAML config files holding
// a single mapping of flag names to values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var values map[string]any

	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, err
	}

	return makeConfig(values), nil
}

// resolveTOML is a [kong.ConfigurationLoader] for TOML config files holding
// top-level keys named after flags.
func resolveTOML(r io.Reader) (kong.Resolver, error) {
	var values map[string]any

	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, err
	}

	return makeConfig(values), nil
}
