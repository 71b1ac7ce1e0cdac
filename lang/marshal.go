package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for Module.
func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// ToMap converts the module to a tree of native Go maps and slices. Every
// node is a map with a "node" key naming its variant.
func (m *Module) ToMap() map[string]any {
	return map[string]any{
		"name": m.Name,
		"body": statementsToNative(m.Body),
	}
}

func statementsToNative(body []Statement) []any {
	out := make([]any, len(body))
	for i, s := range body {
		out[i] = StatementToNative(s)
	}

	return out
}

func expressionsToNative(elems []Expression) []any {
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = ExpressionToNative(e)
	}

	return out
}

// StatementToNative converts a statement to its native map form.
func StatementToNative(s Statement) map[string]any {
	switch s := s.(type) {
	case *Declaration:
		n := map[string]any{"node": "Declaration", "ident": s.Ident}
		if s.Assign != nil {
			n["assign"] = ExpressionToNative(s.Assign)
		}

		return n

	case *Return:
		return map[string]any{
			"node":  "Return",
			"value": ExpressionToNative(s.Value),
		}

	case *ExpressionStatement:
		return map[string]any{
			"node":  "Expression",
			"value": ExpressionToNative(s.Value),
		}

	case *Assignment:
		return map[string]any{
			"node":   "Assignment",
			"target": targetToNative(s.Target),
			"source": ExpressionToNative(s.Source),
		}

	case *If:
		return map[string]any{
			"node":      "If",
			"cond":      ExpressionToNative(s.Cond),
			"body":      statementsToNative(s.Body),
			"else_body": statementsToNative(s.ElseBody),
		}
	}

	return nil
}

func targetToNative(t AssignmentTarget) map[string]any {
	switch t := t.(type) {
	case *IdentifierTarget:
		return map[string]any{"node": "Identifier", "name": t.Name}

	case *PropertyTarget:
		return map[string]any{
			"node": "Property",
			"base": ExpressionToNative(t.Base),
			"name": t.Name,
		}

	case *SubscriptTarget:
		return map[string]any{
			"node":  "Subscript",
			"base":  ExpressionToNative(t.Base),
			"index": ExpressionToNative(t.Index),
		}
	}

	return nil
}

// ExpressionToNative converts an expression to its native map form.
func ExpressionToNative(e Expression) map[string]any {
	switch e := e.(type) {
	case *Function:
		params := make([]any, len(e.Params))
		for i, p := range e.Params {
			params[i] = p
		}

		return map[string]any{
			"node":   "Function",
			"params": params,
			"body":   statementsToNative(e.Body),
		}

	case *Operation:
		return map[string]any{
			"node": "Operation",
			"op":   e.Op.Name(),
			"lhs":  ExpressionToNative(e.LHS),
			"rhs":  ExpressionToNative(e.RHS),
		}

	case *Integer:
		return map[string]any{"node": "Integer", "value": e.Value}

	case *Float:
		return map[string]any{"node": "Float", "value": e.Value}

	case *String:
		return map[string]any{"node": "String", "value": e.Value}

	case *Identifier:
		return map[string]any{"node": "Identifier", "name": e.Name}

	case *FunctionCall:
		return map[string]any{
			"node":   "FunctionCall",
			"target": ExpressionToNative(e.Target),
			"args":   expressionsToNative(e.Args),
		}

	case *Subscript:
		return map[string]any{
			"node":  "Subscript",
			"base":  ExpressionToNative(e.Base),
			"index": ExpressionToNative(e.Index),
		}

	case *Property:
		return map[string]any{
			"node": "Property",
			"base": ExpressionToNative(e.Base),
			"name": e.Name,
		}

	case *List:
		return map[string]any{
			"node":     "List",
			"elements": expressionsToNative(e.Elements),
		}
	}

	return nil
}
