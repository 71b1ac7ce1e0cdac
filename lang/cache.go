package lang

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// ParseReader reads all of r and parses it as a module with the given name.
func ParseReader(
	ctx context.Context,
	name string,
	r io.Reader,
	opts ...Option,
) (*Module, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("unit", name))
	}

	cfg := makeConfig(opts...)
	cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.String("unit", name),
		slog.Int("source_bytes", len(data)),
	)

	return Parse(ctx, name, string(data), opts...)
}

// readAll drains r through an asynchronous read-ahead buffer.
func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	return io.ReadAll(ra)
}

// Cache memoizes parse results keyed by unit name, source text and the
// options that affect parsing. A Cache is safe for concurrent use; the
// returned modules are shared and must not be modified.
type Cache struct {
	entries sync.Map // key string -> *cacheEntry
	size    atomic.Int64
}

type cacheEntry struct {
	once sync.Once
	mod  *Module
	err  error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Parse returns the cached result for (name, source, options), parsing on
// the first request. Concurrent requests for the same key parse once.
// Failures are cached like successes, except cancellation: a canceled parse
// is evicted, and a caller whose own context is still live parses again.
func (c *Cache) Parse(
	ctx context.Context,
	name, source string,
	opts ...Option,
) (*Module, error) {
	cfg := makeConfig(opts...)
	key := cacheKey(name, source, cfg)

	for attempt := 0; ; attempt++ {
		entry, err := c.entry(ctx, cfg, name, key)
		if err != nil {
			return nil, err
		}

		entry.once.Do(func() {
			entry.mod, entry.err = Parse(ctx, name, source, opts...)
		})

		if !canceled(entry.err) {
			return entry.mod, entry.err
		}

		if c.entries.CompareAndDelete(key, entry) {
			c.size.Add(-1)
		}

		if ctx.Err() != nil || attempt > 0 {
			return entry.mod, entry.err
		}

		cfg.logger.TraceContext(ctx, "cache retry after canceled parse",
			slog.String("unit", name),
			slog.String("cache_key", key))
	}
}

// entry returns the cache entry for key, creating it if absent.
func (c *Cache) entry(
	ctx context.Context,
	cfg config,
	name, key string,
) (*cacheEntry, error) {
	value, loaded := c.entries.LoadOrStore(key, new(cacheEntry))

	entry, ok := value.(*cacheEntry)
	if !ok {
		return nil, ErrReadInput.With(slog.String("cache_key", key))
	}

	if !loaded {
		c.size.Add(1)
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("unit", name),
		slog.String("cache_key", key),
		slog.Bool("hit", loaded),
	)

	return entry, nil
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return int(c.size.Load())
}

// Clear removes every cached entry.
func (c *Cache) Clear() {
	c.entries.Range(func(key, _ any) bool {
		if _, ok := c.entries.LoadAndDelete(key); ok {
			c.size.Add(-1)
		}

		return true
	})
}

// cacheKey hashes the unit name, source and parse options with xxh3.
func cacheKey(name, source string, cfg config) string {
	h := xxh3.New()

	var n [8]byte

	binary.LittleEndian.PutUint64(n[:], uint64(len(name)))
	_, _ = h.Write(n[:])
	_, _ = h.WriteString(name)

	binary.LittleEndian.PutUint64(n[:], uint64(cfg.maxDepth))
	_, _ = h.Write(n[:])
	_, _ = h.WriteString(source)

	sum := h.Sum128()

	return strconv.FormatUint(sum.Hi, 36) + "." + strconv.FormatUint(sum.Lo, 36)
}
