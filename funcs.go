package mevac

import (
	"math"
	"strconv"
)

// Func is a built-in function from reals to reals.
type Func interface {
	// Call evaluates the function. args has a length for which CanCall
	// returned true. Arguments outside the function's domain produce the
	// IEEE-754 result of the underlying math routine, usually NaN or ±Inf.
	Call(args []float64) float64

	// CanCall returns whether the function can be called with n arguments.
	CanCall(n int) bool
}

// globalfuncs is the table of built-in functions. It is never modified.
var globalfuncs = map[string]Func{
	"sin":   monadic(math.Sin),
	"cos":   monadic(math.Cos),
	"tan":   monadic(math.Tan),
	"asin":  monadic(math.Asin),
	"acos":  monadic(math.Acos),
	"atan":  monadic(math.Atan),
	"sinh":  monadic(math.Sinh),
	"cosh":  monadic(math.Cosh),
	"tanh":  monadic(math.Tanh),
	"asinh": monadic(math.Asinh),
	"acosh": monadic(math.Acosh),
	"atanh": monadic(math.Atanh),

	"exp":   monadic(math.Exp),
	"exp2":  monadic(math.Exp2),
	"ln":    monadic(math.Log),
	"log":   logfn{},
	"log2":  monadic(math.Log2),
	"log10": monadic(math.Log10),
	"sqrt":  monadic(math.Sqrt),
	"cbrt":  monadic(math.Cbrt),

	"abs":   monadic(math.Abs),
	"floor": monadic(math.Floor),
	"ceil":  monadic(math.Ceil),
	"round": monadic(math.Round),
	"trunc": monadic(math.Trunc),
	"sign":  monadic(sign),

	"atan2": dyadic(math.Atan2),
	"pow":   dyadic(math.Pow),
	"hypot": dyadic(math.Hypot),
	"mod":   dyadic(math.Mod),

	"min": variadic(math.Min),
	"max": variadic(math.Max),
}

// globalconsts is the table of built-in constants. It is never modified.
var globalconsts = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"phi": math.Phi,
	"inf": math.Inf(1),
	"nan": math.NaN(),
}

// Builtin returns the built-in function with the given name.
func Builtin(name string) (Func, bool) {
	f, ok := globalfuncs[name]
	return f, ok
}

// Constant returns the value of the built-in constant with the given name.
func Constant(name string) (float64, bool) {
	v, ok := globalconsts[name]
	return v, ok
}

type monadic func(float64) float64

func (f monadic) Call(args []float64) float64 {
	return f(args[0])
}

func (monadic) CanCall(n int) bool {
	return n == 1
}

type dyadic func(float64, float64) float64

func (f dyadic) Call(args []float64) float64 {
	return f(args[0], args[1])
}

func (dyadic) CanCall(n int) bool {
	return n == 2
}

// variadic folds a binary function over one or more arguments from the left.
type variadic func(float64, float64) float64

func (f variadic) Call(args []float64) float64 {
	r := args[0]
	for _, x := range args[1:] {
		r = f(r, x)
	}
	return r
}

func (variadic) CanCall(n int) bool {
	return n >= 1
}

// logfn is log(x) in base 10, or log(x, b) in base b.
type logfn struct{}

func (logfn) Call(args []float64) float64 {
	if len(args) == 1 {
		return math.Log10(args[0])
	}
	// The common bases have exact routines.
	switch args[1] {
	case 2:
		return math.Log2(args[0])
	case 10:
		return math.Log10(args[0])
	}
	return math.Log(args[0]) / math.Log(args[1])
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}

// sign is -1 for negative x and 1 for positive x. Zeros and NaN are returned
// unchanged.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x
	}
}

// CallError is an error indicating a function call with the wrong number of
// arguments. It implements InputError.
type CallError struct {
	// Col is the position of the function name in the call expression.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments in the call.
	Len int
}

func (err *CallError) Error() string {
	return posmsg(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *CallError) Pos() int {
	return err.Col
}
