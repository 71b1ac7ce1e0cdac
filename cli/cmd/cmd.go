package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/san/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	optionsKey struct{}
	outputKey  struct{}
	output     struct{ stdout, stderr io.Writer }
)

// WithOptions returns a new context.Context carrying the parse and evaluation
// options shared by all commands.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func optionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return opts
}

// WithOutput returns a new context.Context whose commands write results to
// stdout and diagnostics to stderr.
func WithOutput(ctx context.Context, stdout, stderr io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, output{stdout, stderr})
}

func outputFrom(ctx context.Context) output {
	out, ok := ctx.Value(outputKey{}).(output)
	if !ok {
		return output{os.Stdout, os.Stderr}
	}

	return out
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is a named input unit: a file or standard input.
type source struct {
	name string
	path string // empty for stdin
}

func (s source) open() (io.ReadCloser, error) {
	if s.path == "" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(s.path)
}

// parse reads and parses the source. If cache is non-nil, the parse result
// is shared through it.
func (s source) parse(
	ctx context.Context,
	cache *lang.Cache,
	opts ...lang.Option,
) (*lang.Module, error) {
	r, err := s.open()
	if err != nil {
		return nil, ErrOpenSource.Wrap(err).With(s.attr())
	}
	defer r.Close()

	if cache == nil {
		mod, err := lang.ParseReader(ctx, s.name, r, opts...)
		if err != nil {
			return nil, ErrParse.Wrap(err).With(s.attr())
		}

		return mod, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrOpenSource.Wrap(err).With(s.attr())
	}

	mod, err := cache.Parse(ctx, s.name, string(data), opts...)
	if err != nil {
		return nil, ErrParse.Wrap(err).With(s.attr())
	}

	return mod, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// resolveSources returns the input units named by paths, in order, with
// duplicates removed. Duplicates are detected by resolving symlinks and
// comparing device/inode pairs. Every "-" refers to a single stdin unit. An
// empty path list selects stdin.
func resolveSources(paths []string) ([]source, error) {
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	srcs := make([]source, 0, len(paths))
	seen := make(map[fileKey]struct{})
	stdin := false

	for _, path := range paths {
		if path == stdinSource {
			if !stdin {
				stdin = true

				srcs = append(srcs, source{name: "<stdin>"})
			}

			continue
		}

		resolved, key, err := statFile(path)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err).With(sourceAttr(path))
		}

		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		srcs = append(srcs, source{name: path, path: resolved})
	}

	return srcs, nil
}

// statFile resolves path to an absolute, symlink-free path and its fileKey.
func statFile(path string) (string, fileKey, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, err
	}

	key, ok := makeFileKey(info)
	if !ok {
		// No inode data; identify the file by its resolved path.
		key = fileKey{ino: xxh3.HashString(resolved)}
	}

	return resolved, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

func sourceAttr(path string) slog.Attr { return slog.String("source", path) }

func (s source) attr() slog.Attr { return sourceAttr(s.name) }
