package lang

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/san/log"
)

// Parse parses source as a module with the given name.
// The first lexical or syntax error aborts parsing; no partial module is
// returned.
func Parse(
	ctx context.Context,
	name, source string,
	opts ...Option,
) (*Module, error) {
	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.String("unit", name),
		slog.Int("source_length", len(source)))

	p := newParser(name, source, cfg)

	mod, err := p.parseModule(ctx)
	if err != nil {
		cfg.logger.TraceContext(ctx, "parse failed",
			slog.String("unit", name),
			slog.Any("error", err))

		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.String("unit", name),
		slog.Int("statement_count", len(mod.Body)))

	return mod, nil
}

// ParseExpression parses source as a single expression spanning the whole
// input.
func ParseExpression(
	ctx context.Context,
	source string,
	opts ...Option,
) (Expression, error) {
	cfg := makeConfig(opts...)

	p := newParser("", source, cfg)
	if err := p.next(); err != nil {
		return nil, err
	}

	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != KindEOF {
		return nil, p.errorf("", KindEOF)
	}

	cfg.logger.TraceContext(ctx, "expression parsed")

	return e, nil
}

// parser holds the parser state for one source unit.
type parser struct {
	lex      *Lexer
	tok      Token // lookahead
	unit     string
	source   string
	depth    int
	maxDepth int
	grouped  Expression // most recent bare parenthesized term
	logger   log.Logger
}

func newParser(unit, source string, cfg config) *parser {
	return &parser{
		lex:      NewLexer(unit, source),
		unit:     unit,
		source:   source,
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
	}
}

// parseModule parses statements until end of input.
func (p *parser) parseModule(ctx context.Context) (*Module, error) {
	if err := p.next(); err != nil {
		return nil, err
	}

	mod := &Module{
		Name: p.unit,
		Body: make([]Statement, 0),
	}

	for p.tok.Kind != KindEOF {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		mod.Body = append(mod.Body, s)
	}

	return mod, nil
}

// parseStatement parses one statement.
func (p *parser) parseStatement() (Statement, error) {
	switch {
	case p.tok.Is(KeywordLet):
		return p.parseDeclaration()

	case p.tok.Is(KeywordIf):
		return p.parseIf()

	case p.tok.Kind == KindCaret:
		return p.parseReturn()

	case !p.startsExpression():
		return nil, p.unexpected(
			slices.Concat(termStarts, []Kind{KindCaret}),
			KeywordLet, KeywordIf, KeywordFn,
		)
	}

	return p.parseExpressionStatement()
}

// parseDeclaration parses: 'let' Identifier ('=' Expression)? ';'.
func (p *parser) parseDeclaration() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}

	name, err := p.expectName()
	if err != nil {
		return nil, err
	}

	decl := &Declaration{Ident: name}

	if p.tok.Kind != KindAssign {
		if _, err := p.expect(KindSemicolon, KindAssign); err != nil {
			return nil, err
		}

		return decl, nil
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	decl.Assign, err = p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}

	return decl, nil
}

// parseReturn parses: '^' Expression ';'.
func (p *parser) parseReturn() (Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}

	return &Return{Value: value}, nil
}

// parseExpressionStatement parses either an assignment or a bare expression
// statement. The left-hand side is parsed as an expression and converted to
// an assignment target only when followed by '='.
func (p *parser) parseExpressionStatement() (Statement, error) {
	start := p.tok

	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != KindAssign {
		if _, err := p.expect(KindSemicolon, KindAssign); err != nil {
			return nil, err
		}

		return &ExpressionStatement{Value: e}, nil
	}

	target, ok := p.assignmentTarget(e)
	if !ok {
		found := describeExpression(e)
		if p.grouped != nil && e == p.grouped {
			found = "parenthesized expression"
		}

		return nil, &SyntaxError{
			Unit:     p.unit,
			Pos:      start.Pos,
			Found:    found,
			Expected: []string{"identifier", "property", "subscript"},
			Reason:   "invalid assignment target",
			Source:   p.source,
		}
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	source, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}

	return &Assignment{Target: target, Source: source}, nil
}

// assignmentTarget converts an identifier, property or subscript expression
// into an assignment target. A parenthesized expression is never a target.
func (p *parser) assignmentTarget(e Expression) (AssignmentTarget, bool) {
	if p.grouped != nil && e == p.grouped {
		return nil, false
	}

	switch e := e.(type) {
	case *Identifier:
		return &IdentifierTarget{Name: e.Name}, true
	case *Property:
		return &PropertyTarget{Base: e.Base, Name: e.Name}, true
	case *Subscript:
		return &SubscriptTarget{Base: e.Base, Index: e.Index}, true
	}

	return nil, false
}

// parseIf parses: 'if' Expression Block ('else' (If | Block))?.
func (p *parser) parseIf() (Statement, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if err := p.next(); err != nil {
		return nil, err
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	s := &If{
		Cond:     cond,
		Body:     body,
		ElseBody: make([]Statement, 0),
	}

	if !p.tok.Is(KeywordElse) {
		return s, nil
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	switch {
	case p.tok.Is(KeywordIf):
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}

		s.ElseBody = append(s.ElseBody, nested)

	case p.tok.Kind == KindLBrace:
		s.ElseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}

	default:
		return nil, p.unexpected([]Kind{KindLBrace}, KeywordIf)
	}

	return s, nil
}

// parseBlock parses: '{' Statement* '}'.
func (p *parser) parseBlock() ([]Statement, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if _, err := p.expect(KindLBrace); err != nil {
		return nil, err
	}

	body := make([]Statement, 0)

	for p.tok.Kind != KindRBrace {
		if p.tok.Kind == KindEOF {
			return nil, p.errorf("unterminated block", KindRBrace)
		}

		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		body = append(body, s)
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	return body, nil
}

// parseExpression parses: Function | Equality.
func (p *parser) parseExpression() (Expression, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.tok.Is(KeywordFn) {
		return p.parseFunction()
	}

	if !p.startsExpression() {
		return nil, p.unexpected(termStarts, KeywordFn)
	}

	return p.parseBinary(levelEquality)
}

// parseBinary parses one left-associative operator level, delegating
// operands to the next tighter level.
func (p *parser) parseBinary(lv level) (Expression, error) {
	if lv == levelTerm {
		return p.parseTerm()
	}

	lhs, err := p.parseBinary(lv + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := operators[lv][p.tok.Kind]
		if !ok {
			return lhs, nil
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		rhs, err := p.parseBinary(lv + 1)
		if err != nil {
			return nil, err
		}

		lhs = &Operation{LHS: lhs, Op: op, RHS: rhs}
	}
}

// parseFunction parses: 'fn' '(' Params ')' (Block | Expression).
func (p *parser) parseFunction() (Expression, error) {
	if err := p.next(); err != nil {
		return nil, err
	}

	if _, err := p.expect(KindLParen); err != nil {
		return nil, err
	}

	params := make([]string, 0)

	for p.tok.Kind != KindRParen {
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}

		params = append(params, name)

		if p.tok.Kind != KindComma {
			break
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(KindRParen, KindComma); err != nil {
		return nil, err
	}

	if p.tok.Kind == KindLBrace {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		return &Function{Params: params, Body: body}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Function{
		Params: params,
		Body:   []Statement{&Return{Value: value}},
	}, nil
}

// termStarts lists the token kinds that may begin a term.
var termStarts = []Kind{
	KindInteger, KindFloat, KindString, KindIdentifier,
	KindLBracket, KindLParen,
}

// parseTerm parses an atom followed by any number of postfix call, index
// and property suffixes, folding left.
func (p *parser) parseTerm() (Expression, error) {
	base, grouped, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		switch p.tok.Kind {
		case KindLParen:
			if err := p.next(); err != nil {
				return nil, err
			}

			args, err := p.parseList(KindRParen)
			if err != nil {
				return nil, err
			}

			base = &FunctionCall{Target: base, Args: args}

		case KindLBracket:
			if err := p.next(); err != nil {
				return nil, err
			}

			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(KindRBracket); err != nil {
				return nil, err
			}

			base = &Subscript{Base: base, Index: index}

		case KindDot:
			if err := p.next(); err != nil {
				return nil, err
			}

			name, err := p.expectName()
			if err != nil {
				return nil, err
			}

			base = &Property{Base: base, Name: name}

		default:
			if grouped {
				p.grouped = base
			}

			return base, nil
		}

		grouped = false
	}
}

// parseAtom parses a literal, identifier, list or parenthesized expression.
// It reports whether the atom was parenthesized.
func (p *parser) parseAtom() (Expression, bool, error) {
	tok := p.tok

	var e Expression

	switch tok.Kind {
	case KindInteger:
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, false, p.errorf("integer literal out of range")
		}

		e = &Integer{Value: v}

	case KindFloat:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, false, p.errorf("float literal out of range")
		}

		e = &Float{Value: v}

	case KindMinus:
		// The lexer only signs a float where the previous token cannot end
		// an operand, which misses a body following fn's parameter list.
		return p.parseSignedFloat()

	case KindString:
		e = &String{Value: tok.Text}

	case KindIdentifier:
		switch {
		case tok.Is(KeywordFn):
			return nil, false, p.errorf(
				"function literal must be parenthesized when used as an operand",
			)
		case IsKeyword(tok.Text):
			return nil, false, p.errorf("", termStarts...)
		}

		e = &Identifier{Name: tok.Text}

	case KindLBracket:
		if err := p.next(); err != nil {
			return nil, false, err
		}

		elems, err := p.parseList(KindRBracket)
		if err != nil {
			return nil, false, err
		}

		return &List{Elements: elems}, false, nil

	case KindLParen:
		if err := p.next(); err != nil {
			return nil, false, err
		}

		inner, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}

		if _, err := p.expect(KindRParen); err != nil {
			return nil, false, err
		}

		return inner, true, nil

	default:
		return nil, false, p.errorf("", termStarts...)
	}

	if err := p.next(); err != nil {
		return nil, false, err
	}

	return e, false, nil
}

// parseSignedFloat folds a '-' directly followed by an unsigned float literal
// into one negative [Float].
func (p *parser) parseSignedFloat() (Expression, bool, error) {
	minus := p.tok

	if err := p.next(); err != nil {
		return nil, false, err
	}

	tok := p.tok
	if tok.Kind != KindFloat || tok.Pos.Offset != minus.End.Offset ||
		strings.HasPrefix(tok.Text, "-") {
		p.tok = minus

		return nil, false, p.errorf("", termStarts...)
	}

	v, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, false, p.errorf("float literal out of range")
	}

	if err := p.next(); err != nil {
		return nil, false, err
	}

	return &Float{Value: -v}, false, nil
}

// parseList parses comma-separated expressions up to and including the
// closing token. A trailing comma is permitted.
func (p *parser) parseList(closing Kind) ([]Expression, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	elems := make([]Expression, 0)

	for p.tok.Kind != closing {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		elems = append(elems, e)

		if p.tok.Kind != KindComma {
			break
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(closing, KindComma); err != nil {
		return nil, err
	}

	return elems, nil
}

// Helper methods

func (p *parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// expect consumes the lookahead if it has kind k. Any additional kinds are
// only reported as alternatives in the error.
func (p *parser) expect(k Kind, alt ...Kind) (Token, error) {
	tok := p.tok
	if tok.Kind != k {
		return tok, p.errorf("", append([]Kind{k}, alt...)...)
	}

	return tok, p.next()
}

// expectName consumes a non-keyword identifier and returns its text.
func (p *parser) expectName() (string, error) {
	tok := p.tok
	if tok.Kind != KindIdentifier || IsKeyword(tok.Text) {
		return "", p.errorf("", KindIdentifier)
	}

	return tok.Text, p.next()
}

func (p *parser) startsExpression() bool {
	if p.tok.Kind == KindIdentifier {
		return !IsKeyword(p.tok.Text) || p.tok.Is(KeywordFn)
	}

	for _, k := range termStarts {
		if p.tok.Kind == k {
			return true
		}
	}

	return false
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return ErrMaxDepthExceeded.With(
			slog.String("unit", p.unit),
			slog.Any("position", p.tok.Pos),
			slog.Int("max_depth", p.maxDepth),
		)
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

// errorf builds a syntax error at the lookahead token.
func (p *parser) errorf(reason string, expected ...Kind) *SyntaxError {
	e := &SyntaxError{
		Unit:   p.unit,
		Pos:    p.tok.Pos,
		Found:  p.tok.describe(),
		Reason: reason,
		Source: p.source,
	}

	if len(expected) > 0 {
		e.Expected = expectedNames(expected)
	}

	return e
}

// unexpected builds a syntax error at the lookahead token listing the
// accepted token kinds and keywords.
func (p *parser) unexpected(kinds []Kind, keywords ...string) *SyntaxError {
	e := p.errorf("")
	e.Expected = expectedNames(kinds, keywords...)

	return e
}

// describeExpression names the variant of e for error messages.
func describeExpression(e Expression) string {
	switch e.(type) {
	case *Function:
		return "function literal"
	case *Operation:
		return "operation"
	case *Integer:
		return "integer literal"
	case *Float:
		return "float literal"
	case *String:
		return "string literal"
	case *Identifier:
		return "identifier"
	case *FunctionCall:
		return "function call"
	case *Subscript:
		return "subscript"
	case *Property:
		return "property access"
	case *List:
		return "list literal"
	default:
		return "expression"
	}
}
