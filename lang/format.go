package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the module in native syntax to the writer. An indent of 0
// writes each statement on a single line. Parsing the output yields a module
// structurally identical to m.
func (m *Module) Format(_ context.Context, w io.Writer, indent int) error {
	pr := printer{indent: indent}

	for _, s := range m.Body {
		pr.statement(s, 0)
		pr.buf.WriteByte('\n')
	}

	_, err := io.WriteString(w, pr.buf.String())

	return err
}

// FormatJSON writes the module as JSON to the writer.
func (m *Module) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(m, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(m)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the module as YAML to the writer.
func (m *Module) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, m.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(yamlData)

	return err
}

// Print writes an indented tree of the module's nodes to the writer, one
// node per line.
func (m *Module) Print(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("Module " + strconv.Quote(m.Name) + "\n")
	printTree(&sb, m.ToMap()["body"], 1)

	_, err := io.WriteString(w, sb.String())

	return err
}

// printTree renders the native form produced by [Module.ToMap].
func printTree(sb *strings.Builder, v any, depth int) {
	pad := strings.Repeat("  ", depth)

	switch v := v.(type) {
	case []any:
		for _, e := range v {
			printTree(sb, e, depth)
		}

	case map[string]any:
		sb.WriteString(pad + fmt.Sprint(v["node"]))

		keys := nodeKeys[fmt.Sprint(v["node"])]
		for _, k := range keys.scalars {
			if x, ok := v[k]; ok {
				fmt.Fprintf(sb, " %s=%v", k, quoteScalar(x))
			}
		}

		sb.WriteByte('\n')

		for _, k := range keys.children {
			x, ok := v[k]
			if !ok {
				continue
			}

			sb.WriteString(pad + "  " + k + ":\n")
			printTree(sb, x, depth+2)
		}
	}
}

func quoteScalar(x any) any {
	switch x := x.(type) {
	case string:
		return strconv.Quote(x)
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}

		return "(" + strings.Join(parts, ", ") + ")"
	}

	return x
}

// nodeKeys lists, per node variant, the attributes printed inline and the
// attributes printed as child subtrees.
var nodeKeys = map[string]struct{ scalars, children []string }{
	"Declaration":  {[]string{"ident"}, []string{"assign"}},
	"Return":       {nil, []string{"value"}},
	"Expression":   {nil, []string{"value"}},
	"Assignment":   {nil, []string{"target", "source"}},
	"If":           {nil, []string{"cond", "body", "else_body"}},
	"Function":     {[]string{"params"}, []string{"body"}},
	"Operation":    {[]string{"op"}, []string{"lhs", "rhs"}},
	"Integer":      {[]string{"value"}, nil},
	"Float":        {[]string{"value"}, nil},
	"String":       {[]string{"value"}, nil},
	"Identifier":   {[]string{"name"}, nil},
	"FunctionCall": {nil, []string{"target", "args"}},
	"Subscript":    {nil, []string{"base", "index"}},
	"Property":     {[]string{"name"}, []string{"base"}},
	"List":         {nil, []string{"elements"}},
}

// FormatExpression renders a single expression in native syntax.
func FormatExpression(e Expression) string {
	var pr printer

	pr.expression(e, 0)

	return pr.buf.String()
}

// printer renders AST nodes as source text.
type printer struct {
	buf    strings.Builder
	indent int
}

func (pr *printer) newline(depth int) {
	if pr.indent == 0 {
		pr.buf.WriteByte(' ')

		return
	}

	pr.buf.WriteByte('\n')
	pr.buf.WriteString(strings.Repeat(" ", depth*pr.indent))
}

func (pr *printer) statement(s Statement, depth int) {
	switch s := s.(type) {
	case *Declaration:
		pr.buf.WriteString(KeywordLet + " " + s.Ident)

		if s.Assign != nil {
			pr.buf.WriteString(" = ")
			pr.expression(s.Assign, 0)
		}

		pr.buf.WriteByte(';')

	case *Return:
		pr.buf.WriteString("^ ")
		pr.expression(s.Value, 0)
		pr.buf.WriteByte(';')

	case *ExpressionStatement:
		pr.expression(s.Value, 0)
		pr.buf.WriteByte(';')

	case *Assignment:
		pr.target(s.Target)
		pr.buf.WriteString(" = ")
		pr.expression(s.Source, 0)
		pr.buf.WriteByte(';')

	case *If:
		pr.ifStatement(s, depth)
	}
}

func (pr *printer) ifStatement(s *If, depth int) {
	pr.buf.WriteString(KeywordIf + " ")
	pr.expression(s.Cond, 0)
	pr.buf.WriteByte(' ')
	pr.block(s.Body, depth)

	if len(s.ElseBody) == 0 {
		return
	}

	pr.buf.WriteString(" " + KeywordElse + " ")

	if nested, ok := s.ElseBody[0].(*If); ok && len(s.ElseBody) == 1 {
		pr.ifStatement(nested, depth)

		return
	}

	pr.block(s.ElseBody, depth)
}

func (pr *printer) block(body []Statement, depth int) {
	pr.buf.WriteByte('{')

	if len(body) == 0 {
		pr.buf.WriteByte('}')

		return
	}

	for _, s := range body {
		pr.newline(depth + 1)
		pr.statement(s, depth+1)
	}

	pr.newline(depth)
	pr.buf.WriteByte('}')
}

func (pr *printer) target(t AssignmentTarget) {
	switch t := t.(type) {
	case *IdentifierTarget:
		pr.buf.WriteString(t.Name)

	case *PropertyTarget:
		pr.postfixBase(t.Base)
		pr.buf.WriteString("." + t.Name)

	case *SubscriptTarget:
		pr.postfixBase(t.Base)
		pr.buf.WriteByte('[')
		pr.expression(t.Index, 0)
		pr.buf.WriteByte(']')
	}
}

// expression writes e. A non-zero min level means e is an operand of a
// binary operator and must bind at least that tightly.
func (pr *printer) expression(e Expression, min level) {
	switch e := e.(type) {
	case *Function:
		if min > 0 {
			pr.parenthesized(e)

			return
		}

		pr.function(e)

	case *Operation:
		lv := e.Op.level()
		if lv < min {
			pr.parenthesized(e)

			return
		}

		pr.expression(e.LHS, lv)
		pr.buf.WriteString(" " + e.Op.String() + " ")
		// Left associative: a right operand at the same level is grouped.
		pr.expression(e.RHS, lv+1)

	case *Integer:
		pr.buf.WriteString(strconv.FormatInt(e.Value, 10))

	case *Float:
		pr.buf.WriteString(formatFloat(e.Value))

	case *String:
		pr.buf.WriteString(`"` + e.Value + `"`)

	case *Identifier:
		pr.buf.WriteString(e.Name)

	case *FunctionCall:
		pr.postfixBase(e.Target)
		pr.buf.WriteByte('(')
		pr.list(e.Args)
		pr.buf.WriteByte(')')

	case *Subscript:
		pr.postfixBase(e.Base)
		pr.buf.WriteByte('[')
		pr.expression(e.Index, 0)
		pr.buf.WriteByte(']')

	case *Property:
		pr.postfixBase(e.Base)
		pr.buf.WriteString("." + e.Name)

	case *List:
		pr.buf.WriteByte('[')
		pr.list(e.Elements)
		pr.buf.WriteByte(']')
	}
}

func (pr *printer) function(f *Function) {
	pr.buf.WriteString(KeywordFn + "(" + strings.Join(f.Params, ", ") + ") ")

	if len(f.Body) == 1 {
		if r, ok := f.Body[0].(*Return); ok {
			pr.expression(r.Value, 0)

			return
		}
	}

	pr.block(f.Body, 0)
}

// postfixBase writes the base of a call, subscript or property access.
func (pr *printer) postfixBase(e Expression) {
	switch e.(type) {
	case *Function, *Operation:
		pr.parenthesized(e)
	default:
		pr.expression(e, levelTerm)
	}
}

func (pr *printer) parenthesized(e Expression) {
	pr.buf.WriteByte('(')
	pr.expression(e, 0)
	pr.buf.WriteByte(')')
}

func (pr *printer) list(elems []Expression) {
	for i, e := range elems {
		if i > 0 {
			pr.buf.WriteString(", ")
		}

		pr.expression(e, 0)
	}
}

// formatFloat renders f so that it always lexes as a float literal.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
