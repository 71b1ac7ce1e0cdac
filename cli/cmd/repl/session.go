package repl

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/ardnew/san/lang"
)

// unitName is the source unit name of lines entered at the prompt.
const unitName = "repl"

// Reply is the outcome of evaluating one line.
type Reply struct {
	Output string // text written by print
	Result any    // module result, nil if none
	AST    string // tree dump of the parsed line, when AST echo is on
}

// Session is the interpreter state behind an interactive prompt. Bindings
// made by one line are visible to the next.
type Session struct {
	interp  *lang.Interp
	cache   *lang.Cache
	opts    []lang.Option
	out     *bytes.Buffer
	source  []lang.Statement
	showAST bool
}

// NewSession returns a session with an empty global scope.
func NewSession(opts ...lang.Option) (*Session, error) {
	s := &Session{
		cache: lang.NewCache(),
		opts:  opts,
		out:   new(bytes.Buffer),
	}

	interp, err := s.newInterp()
	if err != nil {
		return nil, err
	}

	s.interp = interp

	return s, nil
}

func (s *Session) newInterp() (*lang.Interp, error) {
	return lang.NewInterp(slices.Concat(s.opts, []lang.Option{lang.WithOutput(s.out)})...)
}

// Eval parses and evaluates one line. A line missing its final ";" is
// accepted as if it were present.
func (s *Session) Eval(ctx context.Context, line string) (Reply, error) {
	mod, err := s.parse(ctx, line)
	if err != nil {
		return Reply{}, err
	}

	var reply Reply

	if s.showAST {
		var buf strings.Builder
		if err := mod.Print(&buf); err != nil {
			return Reply{}, err
		}

		reply.AST = strings.TrimRight(buf.String(), "\n")
	}

	reply.Result, err = s.Load(ctx, mod)
	reply.Output = strings.TrimRight(s.out.String(), "\n")
	s.out.Reset()

	return reply, err
}

func (s *Session) parse(ctx context.Context, line string) (*lang.Module, error) {
	mod, err := s.cache.Parse(ctx, unitName, line, s.opts...)
	if err == nil || !errors.Is(err, lang.ErrSyntax) {
		return mod, err
	}

	trimmed := strings.TrimSpace(line)
	if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") {
		return nil, err
	}

	if mod, retry := s.cache.Parse(ctx, unitName, trimmed+";", s.opts...); retry == nil {
		return mod, nil
	}

	return nil, err
}

// Load evaluates a parsed module in the session scope and records its
// statements for [Session.Source].
func (s *Session) Load(ctx context.Context, mod *lang.Module) (any, error) {
	result, err := s.interp.Eval(ctx, mod)
	if err != nil {
		return nil, err
	}

	s.source = append(s.source, mod.Body...)

	return result, nil
}

// Source returns a module holding every statement evaluated so far.
func (s *Session) Source() *lang.Module {
	return lang.NewBuilder().Module(unitName, s.source...)
}

// Replace discards the session state and evaluates mod in a fresh scope.
// On failure the session is left unchanged.
func (s *Session) Replace(ctx context.Context, mod *lang.Module) error {
	interp, err := s.newInterp()
	if err != nil {
		return err
	}

	if _, err := interp.Eval(ctx, mod); err != nil {
		s.out.Reset()

		return err
	}

	s.out.Reset()
	s.interp = interp
	s.source = slices.Clone(mod.Body)

	return nil
}

// ToggleAST switches AST echo and reports the new setting.
func (s *Session) ToggleAST() bool {
	s.showAST = !s.showAST

	return s.showAST
}

// Names returns the names bound in the session's global scope.
func (s *Session) Names() []string { return s.interp.Names() }

// Lookup returns the value bound to name in the session's global scope.
func (s *Session) Lookup(name string) (any, bool) { return s.interp.Lookup(name) }

// Resolve looks up a dotted property path such as "cfg.server.port".
func (s *Session) Resolve(path string) (any, bool) {
	segments := strings.Split(path, ".")

	v, ok := s.Lookup(segments[0])

	for _, seg := range segments[1:] {
		if !ok {
			break
		}

		obj, isObj := v.(map[string]any)
		if !isObj {
			return nil, false
		}

		v, ok = obj[seg]
	}

	return v, ok
}

// CacheLen returns the number of distinct lines parsed by the session.
func (s *Session) CacheLen() int { return s.cache.Len() }
