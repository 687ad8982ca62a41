package mevac

import (
	"errors"
	"math"
	"strconv"
	"unicode/utf8"
)

// PreparePoint performs the steps of EvalPoint up to evaluation: it checks
// that expr is valid UTF-8, parses it, and creates a context binding each
// names[i] to values[i], in order, so that a later duplicate name replaces an
// earlier one. Each name must also be valid UTF-8.
//
// PreparePoint panics if len(names) != len(values).
func PreparePoint(expr string, names []string, values []float64, opts ...ParseOption) (*Expr, *Context, error) {
	if len(names) != len(values) {
		panic("mevac: " + strconv.Itoa(len(names)) + " names for " + strconv.Itoa(len(values)) + " values")
	}
	if err := checkUTF8(expr, -1); err != nil {
		return nil, nil, err
	}
	e, err := ParseString(expr, opts...)
	if err != nil {
		return nil, nil, err
	}
	ctx := &Context{names: make(map[string]float64, len(names))}
	for i, name := range names {
		if err := checkUTF8(name, i); err != nil {
			return nil, nil, err
		}
		ctx.names[name] = values[i]
	}
	return e, ctx, nil
}

// EvalPoint evaluates a single expression at a single assignment of variables.
// It is the whole evaluation pipeline of one call across the C ABI: nothing is
// cached between calls, and it is safe to call concurrently.
//
// On error the result is NaN. Use Classify to determine the kind of error.
func EvalPoint(expr string, names []string, values []float64, opts ...ParseOption) (float64, error) {
	e, ctx, err := PreparePoint(expr, names, values, opts...)
	if err != nil {
		return math.NaN(), err
	}
	return ctx.Eval(e)
}

func checkUTF8(s string, index int) error {
	if utf8.ValidString(s) {
		return nil
	}
	for i, r := range s {
		if r == utf8.RuneError {
			if _, sz := utf8.DecodeRuneInString(s[i:]); sz <= 1 {
				return &EncodingError{Index: index, Offset: i}
			}
		}
	}
	return &EncodingError{Index: index, Offset: len(s)}
}

// EncodingError is an error indicating input that is not valid UTF-8.
type EncodingError struct {
	// Index is the index of the variable name that was invalid, or -1 if the
	// expression was invalid.
	Index int
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

func (err *EncodingError) Error() string {
	what := "expression"
	if err.Index >= 0 {
		what = "variable name " + strconv.Itoa(err.Index)
	}
	return what + " is not valid UTF-8 at byte " + strconv.Itoa(err.Offset)
}

// ErrorKind classifies errors from parsing and evaluation.
type ErrorKind int

const (
	// KindNone is the kind of a nil error.
	KindNone ErrorKind = iota
	// KindParse is the kind of syntax errors.
	KindParse
	// KindName is the kind of references to undefined variables or functions.
	KindName
	// KindArity is the kind of calls with the wrong number of arguments.
	KindArity
	// KindEncoding is the kind of input that is not valid UTF-8.
	KindEncoding
	// KindOther is the kind of any other error.
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindParse:
		return "parse"
	case KindName:
		return "name"
	case KindArity:
		return "arity"
	case KindEncoding:
		return "encoding"
	case KindOther:
		return "other"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Classify returns the kind of an error returned from this package, looking
// through wrapped errors.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		ne *NameError
		ce *CallError
		ee *EncodingError
		ie InputError
	)
	switch {
	case errors.As(err, &ne):
		return KindName
	case errors.As(err, &ce):
		return KindArity
	case errors.As(err, &ee):
		return KindEncoding
	case errors.As(err, &ie):
		// Every remaining InputError comes from the lexer or parser.
		return KindParse
	default:
		return KindOther
	}
}
