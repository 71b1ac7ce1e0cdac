package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the handler's writer, so color is dropped automatically
// when the writer is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, when, null lipgloss.Style
	loc, snippet                            lipgloss.Style
	trace, debug, info, warn, err           lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:     fg("8"),
		str:     fg("6"),
		num:     fg("3"),
		yes:     fg("2"),
		no:      fg("1"),
		dur:     fg("5"),
		when:    fg("4"),
		null:    fg("8"),
		loc:     fg("5").Underline(true),
		snippet: fg("8"),
		trace:   fg("8"),
		debug:   fg("4"),
		info:    fg("2"),
		warn:    fg("3").Bold(true),
		err:     fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) string {
	s := strings.ToUpper(Level(l).String())

	switch {
	case l >= slog.LevelError:
		return p.err.Render(s)
	case l >= slog.LevelWarn:
		return p.warn.Render(s)
	case l >= slog.LevelInfo:
		return p.info.Render(s)
	case l >= slog.LevelDebug:
		return p.debug.Render(s)
	default:
		return p.trace.Render(s)
	}
}

// prettyHandler holds the state shared by the text and JSON pretty handlers.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	attrs  []slog.Attr
	groups []string
}

func makePrettyHandler(w io.Writer, opts *slog.HandlerOptions) prettyHandler {
	return prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: makePalette(w),
	}
}

func (h prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h prettyHandler) withAttrs(attrs []slog.Attr) prettyHandler {
	prefixed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		prefixed[i] = h.qualify(a)
	}

	h.attrs = slices.Concat(h.attrs, prefixed)

	return h
}

func (h prettyHandler) withGroup(name string) prettyHandler {
	h.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return h
}

// qualify prefixes the attribute key with the open groups.
func (h prettyHandler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) > 0 {
		a.Key = strings.Join(h.groups, ".") + "." + a.Key
	}

	return a
}

// fields flattens the record into the ordered key/value pairs to render,
// applying ReplaceAttr and resolving LogValuers. It also returns the
// snippets of any [Diagnostic] values, in order of appearance.
func (h prettyHandler) fields(r slog.Record) ([]slog.Attr, []string) {
	var rec record

	add := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Equal(slog.Attr{}) {
			return
		}

		rec.expand(a.Key, a.Value)
	}

	if !r.Time.IsZero() {
		add(slog.Time(slog.TimeKey, r.Time))
	}

	// The level is styled by severity, so it bypasses ReplaceAttr.
	rec.attrs = append(rec.attrs, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			add(slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	add(slog.String(slog.MessageKey, r.Message))

	for _, a := range h.attrs {
		add(a)
	}

	r.Attrs(func(a slog.Attr) bool {
		add(h.qualify(a))

		return true
	})

	return rec.attrs, rec.snippets
}

// located and diagnosed mark values rendered from a [Locator] and a
// [Diagnostic].
type (
	located   string
	diagnosed string
)

type record struct {
	attrs    []slog.Attr
	snippets []string
}

// expand appends the value under key, recursing into groups with dotted
// keys. A [Diagnostic], or a plain error wrapping one, collapses to its
// message. A LogValuer error is resolved so its own attributes are kept.
func (rec *record) expand(key string, v slog.Value) {
	if k := v.Kind(); k == slog.KindAny || k == slog.KindLogValuer {
		switch x := v.Any().(type) {
		case Diagnostic:
			rec.diagnose(key, x, x)

			return

		case Locator:
			rec.attrs = append(rec.attrs, slog.Any(key, located(FormatLocation(x))))

			return

		case slog.LogValuer:
			// Resolved below, keeping the snippet of a wrapped Diagnostic.
			if err, ok := x.(error); ok {
				if d, ok := AsDiagnostic(err); ok {
					rec.snippet(d)
				}
			}

		case error:
			if d, ok := AsDiagnostic(x); ok {
				rec.diagnose(key, x, d)

				return
			}
		}
	}

	v = v.Resolve()

	if v.Kind() != slog.KindGroup {
		rec.attrs = append(rec.attrs, slog.Attr{Key: key, Value: v})

		return
	}

	for _, a := range v.Group() {
		k := a.Key
		if key != "" {
			k = key + "." + k
		}

		rec.expand(k, a.Value)
	}
}

func (rec *record) diagnose(key string, err error, d Diagnostic) {
	rec.attrs = append(rec.attrs, slog.Any(key, diagnosed(err.Error())))
	rec.snippet(d)
}

func (rec *record) snippet(d Diagnostic) {
	if s := d.Snippet(); s != "" && !slices.Contains(rec.snippets, s) {
		rec.snippets = append(rec.snippets, s)
	}
}

func (h prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(v.String())

	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")

	case slog.KindDuration:
		return h.style.dur.Render(v.Duration().String())

	case slog.KindTime:
		return h.style.when.Render(v.Time().Format(time.RFC3339))

	case slog.KindAny:
		switch a := v.Any().(type) {
		case slog.Level:
			return h.style.level(a)
		case located:
			return h.style.loc.Render(string(a))
		case diagnosed:
			return h.style.no.Render(string(a))
		case nil:
			return h.style.null.Render("null")
		case error:
			return h.style.no.Render(a.Error())
		}
	}

	return h.style.str.Render(v.String())
}

// write terminates the record and appends the diagnostic snippets, styled
// one line at a time.
func (h prettyHandler) write(buf *bytes.Buffer, snippets []string) error {
	buf.WriteByte('\n')

	for _, s := range snippets {
		for line := range strings.Lines(s) {
			buf.WriteString(h.style.snippet.Render(strings.TrimRight(line, "\r\n")))
			buf.WriteByte('\n')
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler renders records as one line of colored key=value pairs.
type prettyTextHandler struct{ prettyHandler }

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyTextHandler {
	return &prettyTextHandler{makePrettyHandler(w, opts)}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	attrs, snippets := h.fields(r)

	for _, a := range attrs {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.value(a.Value))
	}

	return h.write(buf, snippets)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler renders records as an indented, colored object.
type prettyJSONHandler struct{ prettyHandler }

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyJSONHandler {
	return &prettyJSONHandler{makePrettyHandler(w, opts)}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{")

	attrs, snippets := h.fields(r)

	for i, a := range attrs {
		if i > 0 {
			buf.WriteByte(',')
		}

		fmt.Fprintf(buf, "\n  %s: %s", h.style.key.Render(a.Key), h.value(a.Value))
	}

	buf.WriteString("\n}")

	return h.write(buf, snippets)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
