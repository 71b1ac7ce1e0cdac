package lang

import (
	"iter"
	"strconv"
)

// Module is the root of a parsed source unit.
type Module struct {
	Name string
	Body []Statement
}

// All returns an iterator over the top-level statements of the module.
func (m *Module) All() iter.Seq2[int, Statement] {
	return func(yield func(int, Statement) bool) {
		for i, s := range m.Body {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Declarations returns the names bound by top-level let statements, in
// source order.
func (m *Module) Declarations() []string {
	var names []string

	for _, s := range m.Body {
		if d, ok := s.(*Declaration); ok {
			names = append(names, d.Ident)
		}
	}

	return names
}

// Statement is one of [*Declaration], [*Return], [*ExpressionStatement],
// [*Assignment] or [*If].
type Statement interface {
	statementNode()
}

// Expression is one of [*Function], [*Operation], [*Integer], [*Float],
// [*String], [*Identifier], [*FunctionCall], [*Subscript], [*Property] or
// [*List].
type Expression interface {
	expressionNode()
}

// AssignmentTarget is one of [*IdentifierTarget], [*PropertyTarget] or
// [*SubscriptTarget].
type AssignmentTarget interface {
	targetNode()
}

// Declaration is a let binding. Assign is nil when no initializer is given.
type Declaration struct {
	Ident  string
	Assign Expression
}

// Return is produced by `^ expr ;` and by expression-bodied functions.
type Return struct {
	Value Expression
}

// ExpressionStatement is an expression evaluated for its side effects.
type ExpressionStatement struct {
	Value Expression
}

// Assignment stores Source into Target.
type Assignment struct {
	Target AssignmentTarget
	Source Expression
}

// If is a conditional. ElseBody is empty, never nil, when there is no else
// clause; an else-if chain is a single nested *If in ElseBody.
type If struct {
	Cond     Expression
	Body     []Statement
	ElseBody []Statement
}

func (*Declaration) statementNode()         {}
func (*Return) statementNode()              {}
func (*ExpressionStatement) statementNode() {}
func (*Assignment) statementNode()          {}
func (*If) statementNode()                  {}

// IdentifierTarget assigns to a variable.
type IdentifierTarget struct {
	Name string
}

// PropertyTarget assigns to Base.Name.
type PropertyTarget struct {
	Base Expression
	Name string
}

// SubscriptTarget assigns to Base[Index].
type SubscriptTarget struct {
	Base  Expression
	Index Expression
}

func (*IdentifierTarget) targetNode() {}
func (*PropertyTarget) targetNode()   {}
func (*SubscriptTarget) targetNode()  {}

// Function is a function literal. Expression bodies are stored as a single
// [*Return] statement.
type Function struct {
	Params []string
	Body   []Statement
}

// Operation is a binary operation.
type Operation struct {
	LHS Expression
	Op  Operator
	RHS Expression
}

// Integer is an integer literal.
type Integer struct {
	Value int64
}

// Float is a float literal.
type Float struct {
	Value float64
}

// String is a string literal without its surrounding quotes.
type String struct {
	Value string
}

// Identifier is a variable reference.
type Identifier struct {
	Name string
}

// FunctionCall applies Target to Args.
type FunctionCall struct {
	Target Expression
	Args   []Expression
}

// Subscript is Base[Index].
type Subscript struct {
	Base  Expression
	Index Expression
}

// Property is Base.Name.
type Property struct {
	Base Expression
	Name string
}

// List is a list literal.
type List struct {
	Elements []Expression
}

func (*Function) expressionNode()     {}
func (*Operation) expressionNode()    {}
func (*Integer) expressionNode()      {}
func (*Float) expressionNode()        {}
func (*String) expressionNode()       {}
func (*Identifier) expressionNode()   {}
func (*FunctionCall) expressionNode() {}
func (*Subscript) expressionNode()    {}
func (*Property) expressionNode()     {}
func (*List) expressionNode()         {}

// Operator is a binary operator.
type Operator int

const (
	Equals Operator = iota
	NotEquals
	GreaterThan
	LessThan
	LessThanOrEqual
	GreaterThanOrEqual
	Add
	Subtract
	Multiply
	Divide
)

// String returns the source spelling of the operator.
func (op Operator) String() string {
	switch op {
	case Equals:
		return "=="
	case NotEquals:
		return "=!"
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThanOrEqual:
		return ">="
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "Operator(" + strconv.Itoa(int(op)) + ")"
	}
}

// Name returns the operator's identifier, e.g. "NotEquals".
func (op Operator) Name() string {
	switch op {
	case Equals:
		return "Equals"
	case NotEquals:
		return "NotEquals"
	case GreaterThan:
		return "GreaterThan"
	case LessThan:
		return "LessThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case Add:
		return "Add"
	case Subtract:
		return "Subtract"
	case Multiply:
		return "Multiply"
	case Divide:
		return "Divide"
	default:
		return op.String()
	}
}

// level is the binding tier of an operator; higher binds tighter.
type level int

const (
	levelEquality level = iota + 1
	levelOrdering
	levelSum
	levelFactor
	levelTerm
)

func (op Operator) level() level {
	switch op {
	case Equals, NotEquals:
		return levelEquality
	case GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual:
		return levelOrdering
	case Add, Subtract:
		return levelSum
	default:
		return levelFactor
	}
}

// operators maps each binary level to the token kinds it folds.
var operators = map[level]map[Kind]Operator{
	levelEquality: {
		KindEquals:    Equals,
		KindNotEquals: NotEquals,
	},
	levelOrdering: {
		KindGreater:      GreaterThan,
		KindLess:         LessThan,
		KindLessEqual:    LessThanOrEqual,
		KindGreaterEqual: GreaterThanOrEqual,
	},
	levelSum: {
		KindPlus:  Add,
		KindMinus: Subtract,
	},
	levelFactor: {
		KindStar:  Multiply,
		KindSlash: Divide,
	},
}
