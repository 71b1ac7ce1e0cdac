// Package profile provides optional runtime profiling for san.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only when
// building with the "pprof" tag:
//
//	go build -tags pprof -o san .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// stopper, so callers need no build constraints of their own.
//
// # Usage
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath("/tmp/prof"))
//	defer p.Start().Stop()
//
// With the CLI:
//
//	san --pprof-mode=cpu run fib.san
//	san --pprof-mode=heap --pprof-dir=./profiles check *.san
//
// Profiles are written under the given directory with names matching the
// mode (cpu.pprof, mem.pprof, ...) and can be inspected with
// "go tool pprof". The tagged build also registers the [net/http/pprof]
// handlers on the default mux.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
