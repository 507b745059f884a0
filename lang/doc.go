// Package lang implements Egg, a minimal expression-oriented language made of
// literals, variable references, and function application. A recursive
// descent parser turns source text into a tree and a tree-walking evaluator
// reduces the tree to a value within a chain of lexical frames.
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Expression EOF
//	Expression  → Atom Arguments*
//	Arguments   → '(' (Expression (',' Expression)*)? ')'
//	Atom        → String | Number | Word
//	String      → '"' (Char | '\"' | '\\')* '"'
//	Number      → Digit+ ('.' Digit+)? ([eE] [+-]? Digit+)?
//	Word        → any run of characters except whitespace, '~', ',', '(', ')', '"'
//
// Whitespace and comments, which run from '~' to the end of the line, may
// appear between any two tokens. The words true and false are Boolean
// literals; every other word is a variable reference.
//
// # Evaluation
//
// Only the Boolean false is falsy. An application whose operator is one of
// the special forms receives its arguments unevaluated:
//
//	if(cond, then, else)     evaluate exactly one branch
//	while(cond, body)        loop; yields false
//	do(expr, ...)            evaluate in order; yields the last value
//	let(name, value)         bind in the innermost frame
//	set(name, value)         rebind in the nearest frame that owns name
//	fun(param, ..., body)    closure over the defining frame (alias ::)
//
// Every other application evaluates its operator and then its arguments from
// left to right before calling the resulting function.
//
// # Example
//
//	do(
//	  let(fib, fun(n,
//	    if(<(n, 2), n, +(fib(-(n, 1)), fib(-(n, 2)))))),
//	  print(fib(10))   ~ prints 55
//	)
//
// # Errors
//
// Every failure is an [*Error] derived from one of [ErrSyntax],
// [ErrReference], [ErrType], [ErrDepth], or [ErrCanceled], and can be
// classified with [errors.Is]. Side effects performed before a failure, such
// as printed values and bindings, are not rolled back.
package lang
