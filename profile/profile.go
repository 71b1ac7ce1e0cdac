package profile

// Profiler holds the profiling parameters.
type Profiler struct {
	Mode  string // one of [Modes], or empty to disable profiling
	Path  string // output directory
	Quiet bool   // suppress the profiler's own log output
}

// Option configures a [Profiler].
type Option func(Profiler) Profiler

// New returns a Profiler configured with the given options.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// Start starts profiling and returns its stopper.
//
// If the pprof build tag or Mode is unset, Start returns a no-op stopper.
// Both Start and Stop are always safely callable.
func (p Profiler) Start() interface{ Stop() } {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet sets whether the profiler logs its start and stop.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

type ignore struct{}

func (ignore) Stop() {}
