package lang

// Builder provides a programmatic API for constructing syntax trees without
// parsing source text. This is useful for generating san source with
// [Module.Format] or for testing.
//
// Example:
//
//	b := lang.NewBuilder()
//	mod := b.Module("main",
//	    b.Let("x", b.Int(1)),
//	    b.Expr(b.Call(b.Ident("print"), b.Ident("x"))),
//	)
type Builder struct{}

// NewBuilder creates a new syntax tree builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Module creates a [Module] with the given statements.
func (b *Builder) Module(name string, body ...Statement) *Module {
	return &Module{Name: name, Body: stmts(body)}
}

// Let creates a [Declaration]. A nil value declares without initializer.
func (b *Builder) Let(ident string, value Expression) *Declaration {
	return &Declaration{Ident: ident, Assign: value}
}

// Return creates a [Return].
func (b *Builder) Return(value Expression) *Return {
	return &Return{Value: value}
}

// Expr creates an [ExpressionStatement].
func (b *Builder) Expr(value Expression) *ExpressionStatement {
	return &ExpressionStatement{Value: value}
}

// Assign creates an [Assignment].
func (b *Builder) Assign(target AssignmentTarget, source Expression) *Assignment {
	return &Assignment{Target: target, Source: source}
}

// If creates an [If] without an else clause.
func (b *Builder) If(cond Expression, body ...Statement) *If {
	return &If{Cond: cond, Body: stmts(body), ElseBody: []Statement{}}
}

// IfElse creates an [If] with an else clause.
func (b *Builder) IfElse(cond Expression, body, elseBody []Statement) *If {
	return &If{Cond: cond, Body: stmts(body), ElseBody: stmts(elseBody)}
}

// Fn creates a block-bodied [Function].
func (b *Builder) Fn(params []string, body ...Statement) *Function {
	if params == nil {
		params = []string{}
	}

	return &Function{Params: params, Body: stmts(body)}
}

// Op creates an [Operation].
func (b *Builder) Op(lhs Expression, op Operator, rhs Expression) *Operation {
	return &Operation{LHS: lhs, Op: op, RHS: rhs}
}

// Int creates an [Integer].
func (b *Builder) Int(v int64) *Integer { return &Integer{Value: v} }

// Float creates a [Float].
func (b *Builder) Float(v float64) *Float { return &Float{Value: v} }

// String creates a [String].
func (b *Builder) String(s string) *String { return &String{Value: s} }

// Ident creates an [Identifier].
func (b *Builder) Ident(name string) *Identifier { return &Identifier{Name: name} }

// Call creates a [FunctionCall].
func (b *Builder) Call(target Expression, args ...Expression) *FunctionCall {
	return &FunctionCall{Target: target, Args: exprs(args)}
}

// Index creates a [Subscript].
func (b *Builder) Index(base, index Expression) *Subscript {
	return &Subscript{Base: base, Index: index}
}

// Prop creates a [Property].
func (b *Builder) Prop(base Expression, name string) *Property {
	return &Property{Base: base, Name: name}
}

// List creates a [List].
func (b *Builder) List(elems ...Expression) *List {
	return &List{Elements: exprs(elems)}
}

// ToIdent creates an [IdentifierTarget].
func (b *Builder) ToIdent(name string) *IdentifierTarget {
	return &IdentifierTarget{Name: name}
}

// ToProp creates a [PropertyTarget].
func (b *Builder) ToProp(base Expression, name string) *PropertyTarget {
	return &PropertyTarget{Base: base, Name: name}
}

// ToIndex creates a [SubscriptTarget].
func (b *Builder) ToIndex(base, index Expression) *SubscriptTarget {
	return &SubscriptTarget{Base: base, Index: index}
}

func stmts(s []Statement) []Statement {
	if s == nil {
		return []Statement{}
	}

	return s
}

func exprs(e []Expression) []Expression {
	if e == nil {
		return []Expression{}
	}

	return e
}
