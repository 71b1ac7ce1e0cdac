// Package lang implements the san scripting language: a lexer, a
// hand-written recursive descent parser producing a typed syntax tree, a
// source printer and a small tree-walking evaluator.
//
// # Grammar
//
// Informal EBNF:
//
//	Module      → Statement* EOF
//	Statement   → Declaration | Return | If | ExprStmt
//	Declaration → 'let' Identifier ( '=' Expression )? ';'
//	Return      → '^' Expression ';'
//	If          → 'if' Expression Block ( 'else' ( If | Block ) )?
//	ExprStmt    → Expression ( '=' Expression )? ';'
//	Block       → '{' Statement* '}'
//	Expression  → Function | Equality
//	Function    → 'fn' '(' Params? ')' ( Block | Expression )
//	Equality    → Ordering ( ( '==' | '=!' ) Ordering )*
//	Ordering    → Sum ( ( '>' | '<' | '<=' | '>=' ) Sum )*
//	Sum         → Factor ( ( '+' | '-' ) Factor )*
//	Factor      → Term ( ( '*' | '/' ) Term )*
//	Term        → Atom ( Call | Index | Property )*
//	Call        → '(' Args? ')'
//	Index       → '[' Expression ']'
//	Property    → '.' Identifier
//	Atom        → Integer | Float | String | Identifier | List
//	            | '(' Expression ')'
//	List        → '[' Args? ']'
//
// Params and Args are comma separated and accept a trailing comma. The left
// side of an assignment must be an identifier, a property access or a
// subscript. An expression-bodied function is equivalent to a block holding
// a single return statement. Every binary operator is left associative.
//
// # Lexical structure
//
// Identifiers start with an ASCII letter followed by letters, digits or
// underscores; let, fn, if and else are reserved. Strings are delimited by
// double quotes and have no escapes. A float is digits '.' digits and may
// carry a leading '-' where an operand is expected; integers are unsigned.
// Line comments start with //.
//
// # Example
//
//	let add = fn(a, b) a + b;
//	let xs = [1, 2, 3];
//	xs[0] = add(xs[1], xs[2]);
//	if xs[0] > 4 {
//	    print("big", xs[0]);
//	} else if xs[0] == 4 {
//	    print("four");
//	} else {
//	    print("small");
//	}
//
// A nested else-if chain is represented as a single [If] statement inside
// the enclosing ElseBody.
package lang
