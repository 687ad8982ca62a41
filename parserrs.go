package mevac

import "strconv"

// InputError is implemented by every error caused by bad input, whether it is
// found by the lexer, the parser, or evaluation.
type InputError interface {
	error
	// Pos is the 1-based rune column of the token responsible for the error.
	// Errors at the end of input report one past the last rune.
	Pos() int
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*TermError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*DepthError)(nil)
	_ InputError = (*NameError)(nil)
	_ InputError = (*CallError)(nil)
)

// posmsg prefixes an error message with its column.
func posmsg(col int, msg string) string {
	return strconv.Itoa(col) + ": " + msg
}

// OperatorError reports an operator in a position where it has no meaning,
// such as a leading *.
type OperatorError struct {
	Col      int
	Operator string
	// Unary is true when the operator appeared where an operand was expected.
	Unary bool
}

func (err *OperatorError) Error() string {
	if err.Unary {
		return posmsg(err.Col, strconv.Quote(err.Operator)+" cannot start an operand")
	}
	return posmsg(err.Col, strconv.Quote(err.Operator)+" is not a binary operator")
}

func (err *OperatorError) Pos() int { return err.Col }

// BracketError reports an unbalanced parenthesis. Left is "(" for a bracket
// left open; Right is ")" for a bracket closed without being opened. At most
// one of them is empty.
type BracketError struct {
	Col   int
	Left  string
	Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return posmsg(err.Col, "unmatched "+strconv.Quote(err.Right))
	case err.Right == "":
		return posmsg(err.Col, "unclosed "+strconv.Quote(err.Left))
	default:
		return posmsg(err.Col, strconv.Quote(err.Left)+" closed by "+strconv.Quote(err.Right))
	}
}

func (err *BracketError) Pos() int { return err.Col }

// SeparatorError reports a comma outside an argument list, or a semicolon
// where the parser was not told to stop on one.
type SeparatorError struct {
	Col int
	Sep string
}

func (err *SeparatorError) Error() string {
	return posmsg(err.Col, "unexpected separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int { return err.Col }

// TermError reports a term that directly follows another complete term, as
// in "2 x" or "(a)(b)". There is no implicit multiplication.
type TermError struct {
	Col  int
	Text string
}

func (err *TermError) Error() string {
	return posmsg(err.Col, "missing operator before "+strconv.Quote(err.Text))
}

func (err *TermError) Pos() int { return err.Col }

// EmptyExpressionError reports a missing operand. End is the token that
// was found instead, or empty at the end of input.
type EmptyExpressionError struct {
	Col int
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return posmsg(err.Col, "no expression before "+strconv.Quote(err.End))
	case err.Col <= 1:
		return posmsg(err.Col, "no expression")
	default:
		return posmsg(err.Col, "no expression at end of input")
	}
}

func (err *EmptyExpressionError) Pos() int { return err.Col }

// DepthError reports input nested more deeply than the limit set by MaxDepth.
type DepthError struct {
	Col int
	Max int
}

func (err *DepthError) Error() string {
	return posmsg(err.Col, "expression nested deeper than "+strconv.Itoa(err.Max))
}

func (err *DepthError) Pos() int { return err.Col }
