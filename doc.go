// Package mevac evaluates real-valued arithmetic expressions in float64.
//
// It exists to serve hosts which score many candidate formulas at many
// points, such as symbolic regression drivers, and which reach it through the
// C ABI built from cmd/libmevac. Within Go, expressions can be parsed once
// and evaluated with many contexts, or compiled with Expr.Bind.
//
// The syntax is infix arithmetic with + - * / % ^, parentheses, decimal
// numbers like 1, 1.5, .5 and 2e-3, names, and calls like atan2(y, x).
// Multiplication is always explicit: "2 x" and "2x" are errors. Exponentiation
// is right-associative and binds more tightly than unary minus, so "-x^2" is
// the same as "-(x^2)" and "2^3^2" is 512. The signs ×, ÷ and − are accepted
// in place of *, / and -.
//
// Arithmetic follows IEEE-754: division by zero, sqrt(-1), log(0) and the like
// produce infinities and NaNs, not errors. x % y is the truncated remainder
// with the sign of x, as in C fmod. log is base 10 (log(x, b) takes a base),
// and ln is the natural logarithm. round rounds halfway cases away from zero.
// sign returns -1 or 1, or its argument if that is zero or NaN.
//
// Errors are reserved for malformed input (parse errors), undefined names,
// calls with the wrong number of arguments, and invalid UTF-8. Every one of
// them can be classified with Classify. Evaluation stops at the first error
// in left-to-right order, and a call checks its arguments before its own name
// and arity, so sin(x, y) with x unbound reports x rather than the arity.
package mevac
