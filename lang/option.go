package lang

import (
	"io"

	"github.com/ardnew/san/log"
)

// DefaultMaxDepth is the default maximum nesting depth of blocks and
// expressions accepted by the parser.
const DefaultMaxDepth = 256

// config holds parse and evaluation options.
type config struct {
	maxDepth int
	logger   log.Logger
	output   io.Writer
}

// Option configures parsing or evaluation behavior.
type Option func(*config)

// WithMaxDepth sets the maximum nesting depth. Values below 1 select
// [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithOutput sets the writer used by the print builtin during evaluation.
// A nil writer discards output.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

func makeConfig(opts ...Option) config {
	c := config{
		maxDepth: DefaultMaxDepth,
		output:   io.Discard,
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.maxDepth < 1 {
		c.maxDepth = DefaultMaxDepth
	}

	if c.output == nil {
		c.output = io.Discard
	}

	return c
}
