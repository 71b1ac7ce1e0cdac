package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Closure is a function value: a function literal together with the scope
// it was evaluated in.
type Closure struct {
	Params []string
	Body   []Statement
	scope  *scope
}

// Builtin is a function value implemented in Go. An Arity below zero
// accepts any number of arguments.
type Builtin struct {
	Name  string
	Arity int
	Fn    func(in *Interp, args []any) (any, error)
}

// Interp evaluates modules. Top-level bindings persist across calls to
// [Interp.Eval], so one Interp can serve an interactive session.
// An Interp is not safe for concurrent use.
type Interp struct {
	cfg     config
	globals *scope
	ops     map[Operator]*vm.Program
	calls   int
}

// operands is the expr-lang environment for binary operator programs.
type operands struct {
	LHS any `expr:"lhs"`
	RHS any `expr:"rhs"`
}

// operatorSource is the expr-lang program implementing each operator.
var operatorSource = map[Operator]string{
	Equals:             "lhs == rhs",
	NotEquals:          "lhs != rhs",
	GreaterThan:        "lhs > rhs",
	LessThan:           "lhs < rhs",
	LessThanOrEqual:    "lhs <= rhs",
	GreaterThanOrEqual: "lhs >= rhs",
	Add:                "lhs + rhs",
	Subtract:           "lhs - rhs",
	Multiply:           "lhs * rhs",
	Divide:             "lhs / rhs",
}

// NewInterp returns an interpreter with the builtins bound in its global
// scope.
func NewInterp(opts ...Option) (*Interp, error) {
	in := &Interp{
		cfg:     makeConfig(opts...),
		globals: newScope(nil),
		ops:     make(map[Operator]*vm.Program, len(operatorSource)),
	}

	for op, source := range operatorSource {
		program, err := expr.Compile(source, expr.Env(operands{}))
		if err != nil {
			return nil, ErrEvaluate.Wrap(err).
				With(slog.String("operator", op.Name()))
		}

		in.ops[op] = program
	}

	for _, b := range builtins() {
		in.globals.declare(b.Name, b)
	}

	return in, nil
}

// Eval evaluates a module in a fresh interpreter.
func Eval(ctx context.Context, m *Module, opts ...Option) (any, error) {
	in, err := NewInterp(opts...)
	if err != nil {
		return nil, err
	}

	return in.Eval(ctx, m)
}

// Eval runs the module's statements in the interpreter's global scope. The
// result is the value of a top-level return statement if one runs, else the
// value of the last expression statement, else nil.
func (in *Interp) Eval(ctx context.Context, m *Module) (any, error) {
	in.cfg.logger.TraceContext(ctx, "eval start", slog.String("unit", m.Name))

	var last any

	for _, s := range m.Body {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if es, ok := s.(*ExpressionStatement); ok {
			v, err := in.eval(ctx, es.Value, in.globals)
			if err != nil {
				return nil, in.fail(ctx, m.Name, err)
			}

			last = v

			continue
		}

		v, returned, err := in.exec(ctx, s, in.globals)
		if err != nil {
			return nil, in.fail(ctx, m.Name, err)
		}

		if returned {
			last = v

			break
		}
	}

	in.cfg.logger.TraceContext(ctx, "eval complete", slog.String("unit", m.Name))

	return last, nil
}

// Names returns the names bound in the global scope, sorted.
func (in *Interp) Names() []string {
	return slices.Sorted(maps.Keys(in.globals.vars))
}

// Lookup returns the value bound to a global name.
func (in *Interp) Lookup(name string) (any, bool) {
	v, ok := in.globals.vars[name]

	return v, ok
}

func (in *Interp) fail(ctx context.Context, unit string, err error) error {
	in.cfg.logger.TraceContext(
		ctx,
		"eval failed",
		slog.String("unit", unit),
		slog.Any("error", err),
	)

	return err
}

// exec runs one statement. It reports whether a return statement ran, along
// with the returned value.
func (in *Interp) exec(
	ctx context.Context,
	s Statement,
	sc *scope,
) (any, bool, error) {
	switch s := s.(type) {
	case *Declaration:
		var v any

		if s.Assign != nil {
			var err error

			if v, err = in.eval(ctx, s.Assign, sc); err != nil {
				return nil, false, err
			}
		}

		sc.declare(s.Ident, v)

		return nil, false, nil

	case *Return:
		v, err := in.eval(ctx, s.Value, sc)

		return v, err == nil, err

	case *ExpressionStatement:
		_, err := in.eval(ctx, s.Value, sc)

		return nil, false, err

	case *Assignment:
		return nil, false, in.assign(ctx, s, sc)

	case *If:
		cond, err := in.eval(ctx, s.Cond, sc)
		if err != nil {
			return nil, false, err
		}

		b, ok := cond.(bool)
		if !ok {
			return nil, false, ErrType.Wrap(
				fmt.Errorf("condition must be bool, found %s", TypeName(cond)),
			)
		}

		if b {
			return in.execBlock(ctx, s.Body, newScope(sc))
		}

		return in.execBlock(ctx, s.ElseBody, newScope(sc))
	}

	return nil, false, ErrEvaluate.With(slog.String("statement", fmt.Sprintf("%T", s)))
}

func (in *Interp) execBlock(
	ctx context.Context,
	body []Statement,
	sc *scope,
) (any, bool, error) {
	for _, s := range body {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		v, returned, err := in.exec(ctx, s, sc)
		if err != nil || returned {
			return v, returned, err
		}
	}

	return nil, false, nil
}

func (in *Interp) assign(ctx context.Context, s *Assignment, sc *scope) error {
	v, err := in.eval(ctx, s.Source, sc)
	if err != nil {
		return err
	}

	switch t := s.Target.(type) {
	case *IdentifierTarget:
		if !sc.set(t.Name, v) {
			return ErrUndefined.Wrap(errors.New(t.Name)).
				With(slog.String("name", t.Name))
		}

		return nil

	case *PropertyTarget:
		base, err := in.eval(ctx, t.Base, sc)
		if err != nil {
			return err
		}

		obj, ok := base.(map[string]any)
		if !ok {
			return ErrType.Wrap(
				fmt.Errorf("cannot set property %q on %s", t.Name, TypeName(base)),
			)
		}

		obj[t.Name] = v

		return nil

	case *SubscriptTarget:
		base, err := in.eval(ctx, t.Base, sc)
		if err != nil {
			return err
		}

		index, err := in.eval(ctx, t.Index, sc)
		if err != nil {
			return err
		}

		list, i, err := listIndex(base, index)
		if err != nil {
			return err
		}

		list[i] = v

		return nil
	}

	return ErrEvaluate.With(slog.String("target", fmt.Sprintf("%T", s.Target)))
}

func (in *Interp) eval(ctx context.Context, e Expression, sc *scope) (any, error) {
	switch e := e.(type) {
	case *Integer:
		return e.Value, nil

	case *Float:
		return e.Value, nil

	case *String:
		return e.Value, nil

	case *Identifier:
		v, ok := sc.get(e.Name)
		if !ok {
			return nil, ErrUndefined.Wrap(errors.New(e.Name)).
				With(slog.String("name", e.Name))
		}

		return v, nil

	case *List:
		elems, err := in.evalAll(ctx, e.Elements, sc)
		if err != nil {
			return nil, err
		}

		return elems, nil

	case *Function:
		return &Closure{Params: e.Params, Body: e.Body, scope: sc}, nil

	case *Operation:
		lhs, err := in.eval(ctx, e.LHS, sc)
		if err != nil {
			return nil, err
		}

		rhs, err := in.eval(ctx, e.RHS, sc)
		if err != nil {
			return nil, err
		}

		return in.operate(e.Op, lhs, rhs)

	case *FunctionCall:
		target, err := in.eval(ctx, e.Target, sc)
		if err != nil {
			return nil, err
		}

		args, err := in.evalAll(ctx, e.Args, sc)
		if err != nil {
			return nil, err
		}

		return in.call(ctx, target, args)

	case *Subscript:
		base, err := in.eval(ctx, e.Base, sc)
		if err != nil {
			return nil, err
		}

		index, err := in.eval(ctx, e.Index, sc)
		if err != nil {
			return nil, err
		}

		if s, ok := base.(string); ok {
			runes := []rune(s)

			i, ok := index.(int64)
			if !ok || i < 0 || i >= int64(len(runes)) {
				return nil, ErrIndex.With(slog.Any("index", index))
			}

			return string(runes[i]), nil
		}

		list, i, err := listIndex(base, index)
		if err != nil {
			return nil, err
		}

		return list[i], nil

	case *Property:
		base, err := in.eval(ctx, e.Base, sc)
		if err != nil {
			return nil, err
		}

		obj, ok := base.(map[string]any)
		if !ok {
			return nil, ErrType.Wrap(
				fmt.Errorf("%s has no property %q", TypeName(base), e.Name),
			)
		}

		v, ok := obj[e.Name]
		if !ok {
			return nil, ErrUndefined.Wrap(errors.New(e.Name)).
				With(slog.String("property", e.Name))
		}

		return v, nil
	}

	return nil, ErrEvaluate.With(slog.String("expression", fmt.Sprintf("%T", e)))
}

func (in *Interp) evalAll(
	ctx context.Context,
	exprs []Expression,
	sc *scope,
) ([]any, error) {
	out := make([]any, len(exprs))

	for i, e := range exprs {
		v, err := in.eval(ctx, e, sc)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// operate applies a binary operator. Integer division truncates; every
// other combination is delegated to the compiled expr-lang program.
func (in *Interp) operate(op Operator, lhs, rhs any) (any, error) {
	if op == Divide {
		l, lok := lhs.(int64)
		r, rok := rhs.(int64)

		if lok && rok {
			if r == 0 {
				return nil, ErrEvaluate.Wrap(errors.New("integer division by zero"))
			}

			return l / r, nil
		}
	}

	result, err := vm.Run(in.ops[op], operands{LHS: lhs, RHS: rhs})
	if err != nil {
		return nil, ErrType.Wrap(err).With(
			slog.String("operator", op.String()),
			slog.String("lhs", TypeName(lhs)),
			slog.String("rhs", TypeName(rhs)),
		)
	}

	return normalize(result), nil
}

func (in *Interp) call(ctx context.Context, target any, args []any) (any, error) {
	switch fn := target.(type) {
	case *Builtin:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, arityError(fn.Name, fn.Arity, len(args))
		}

		return fn.Fn(in, args)

	case *Closure:
		if len(args) != len(fn.Params) {
			return nil, arityError("fn", len(fn.Params), len(args))
		}

		if in.calls >= in.cfg.maxDepth {
			return nil, ErrMaxDepthExceeded.With(
				slog.Int("max_depth", in.cfg.maxDepth),
			)
		}

		in.calls++
		defer func() { in.calls-- }()

		sc := newScope(fn.scope)
		for i, p := range fn.Params {
			sc.declare(p, args[i])
		}

		v, _, err := in.execBlock(ctx, fn.Body, sc)

		return v, err
	}

	return nil, ErrNotCallable.With(slog.String("type", TypeName(target)))
}

func arityError(name string, want, got int) error {
	return ErrArity.Wrap(
		fmt.Errorf("%s expects %d arguments, got %d", name, want, got),
	).With(
		slog.String("function", name),
		slog.Int("expected", want),
		slog.Int("got", got),
	)
}

func listIndex(base, index any) ([]any, int, error) {
	list, ok := base.([]any)
	if !ok {
		return nil, 0, ErrType.Wrap(
			fmt.Errorf("cannot index %s", TypeName(base)),
		)
	}

	i, ok := index.(int64)
	if !ok {
		return nil, 0, ErrType.Wrap(
			fmt.Errorf("index must be int, found %s", TypeName(index)),
		)
	}

	if i < 0 || i >= int64(len(list)) {
		return nil, 0, ErrIndex.With(
			slog.Int64("index", i),
			slog.Int("length", len(list)),
		)
	}

	return list, int(i), nil
}

// normalize maps expr-lang results onto the interpreter's value types.
func normalize(v any) any {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	}

	return v
}

// TypeName returns the script-level type name of a value.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	case *Closure:
		return "function"
	case *Builtin:
		return "native"
	}

	return fmt.Sprintf("%T", v)
}

// Display renders a value the way the print builtin writes it.
func Display(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = Display(e)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			parts = append(parts, k+": "+Display(v[k]))
		}

		return "{" + strings.Join(parts, ", ") + "}"
	case *Closure:
		return "<fn(" + strings.Join(v.Params, ", ") + ")>"
	case *Builtin:
		return "<native " + v.Name + ">"
	}

	return fmt.Sprint(v)
}

// scope is a lexical environment.
type scope struct {
	vars   map[string]any
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]any), parent: parent}
}

func (s *scope) declare(name string, v any) { s.vars[name] = v }

func (s *scope) get(name string) (any, bool) {
	for ; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// set updates the nearest binding of name. It reports false if name is not
// declared in any enclosing scope.
func (s *scope) set(name string, v any) bool {
	for ; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v

			return true
		}
	}

	return false
}
