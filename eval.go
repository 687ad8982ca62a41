package mevac

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Context is a context for evaluating expressions. It binds variable names to
// values on top of the built-in constants and functions. It is not safe to
// modify a Context concurrently with any other use of it.
//
// Bindings shadow built-in constants of the same name in that context only.
// Functions are a separate namespace: a call resolves only built-in functions,
// and a bare name resolves only bindings and constants.
type Context struct {
	names map[string]float64
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  float64
	}
	varsopt map[string]float64
)

func (varopt) ctxOption()  {}
func (varsopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val float64) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]float64) ContextOption {
	return varsopt(vars)
}

// NewContext creates a new evaluation context.
func NewContext(opts ...ContextOption) *Context {
	var ctx Context
	return ctx.Clone(opts...)
}

// Set sets the value of a variable, replacing any previous binding. Returns
// ctx for chaining.
func (ctx *Context) Set(name string, value float64) *Context {
	if ctx.names == nil {
		ctx.names = make(map[string]float64)
	}
	ctx.names[name] = value
	return ctx
}

// Lookup resolves a name to the value of a variable or, if there is no such
// variable in the context, a built-in constant. A nil context has no
// variables.
func (ctx *Context) Lookup(name string) (float64, bool) {
	if ctx == nil {
		return Constant(name)
	}
	if v, ok := ctx.names[name]; ok {
		return v, true
	}
	return Constant(name)
}

// Func resolves a name to a built-in function.
func (ctx *Context) Func(name string) (Func, bool) {
	return Builtin(name)
}

// Len returns the number of variables bound in the context.
func (ctx *Context) Len() int {
	if ctx == nil {
		return 0
	}
	return len(ctx.names)
}

// Clone creates a copy of a context and applies options to it. Cloning a nil
// context is the same as NewContext.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{names: make(map[string]float64, ctx.Len())}
	if ctx == nil {
		ctx = &Context{}
	}
	for name, val := range ctx.names {
		n.names[name] = val
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = opt.val
		case varsopt:
			for k, v := range opt {
				n.names[k] = v
			}
		default:
			panic("mevac: unknown option type")
		}
	}
	return &n
}

// Eval evaluates an expression and returns the result. If a variable or
// function is undefined or a function is called with the wrong number of
// arguments, the result is NaN along with the error. Numeric exceptions are
// not errors; they produce infinities and NaNs according to IEEE-754.
func (ctx *Context) Eval(e *Expr) (float64, error) {
	if ctx == nil {
		ctx = &Context{}
	}
	return e.n.eval(ctx)
}

// Eval evaluates the expression with a context. A nil context evaluates with
// only the built-in names.
func (e *Expr) Eval(ctx *Context) (float64, error) {
	return ctx.Eval(e)
}

// eval computes the node's value. Children are evaluated left to right.
func (n *node) eval(ctx *Context) (float64, error) {
	switch n.kind {
	case nodeNum:
		return n.num, nil
	case nodeName:
		v, ok := ctx.Lookup(n.name)
		if !ok {
			return math.NaN(), &NameError{Name: n.name, Col: n.pos}
		}
		return v, nil
	case nodeCall:
		// Arguments come first, so an undefined name inside a bad call is
		// reported ahead of the call itself.
		var buf [4]float64
		args := buf[:0]
		for _, a := range n.args {
			v, err := a.eval(ctx)
			if err != nil {
				return math.NaN(), err
			}
			args = append(args, v)
		}
		f, ok := ctx.Func(n.name)
		if !ok {
			return math.NaN(), &NameError{Name: n.name, Func: true, Col: n.pos}
		}
		if !f.CanCall(len(args)) {
			return math.NaN(), &CallError{Col: n.pos, Func: n.name, Len: len(args)}
		}
		return f.Call(args), nil
	case nodeNeg:
		v, err := n.left.eval(ctx)
		return -v, err
	case nodeNop:
		return n.left.eval(ctx)
	}
	l, err := n.left.eval(ctx)
	if err != nil {
		return math.NaN(), err
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return math.NaN(), err
	}
	switch n.kind {
	case nodeAdd:
		return l + r, nil
	case nodeSub:
		return l - r, nil
	case nodeMul:
		return l * r, nil
	case nodeDiv:
		return l / r, nil
	case nodeRem:
		return math.Mod(l, r), nil
	case nodePow:
		return math.Pow(l, r), nil
	default:
		panic("mevac: invalid AST node " + n.kind.String())
	}
}

// Eval is a shortcut to parse an expression and return its result.
func Eval(src io.RuneScanner, opts ...ContextOption) (float64, error) {
	a, err := Parse(src)
	if err != nil {
		return math.NaN(), err
	}
	return NewContext(opts...).Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (float64, error) {
	return Eval(strings.NewReader(src), opts...)
}

// NameError is an error from a lookup for a variable or function that is
// missing from the evaluation context. It implements InputError.
type NameError struct {
	// Name is the name that was missing.
	Name string
	// Func is whether the name was called as a function.
	Func bool
	// Col is the position of the name in the expression.
	Col int
}

func (err *NameError) Error() string {
	if err.Func {
		return posmsg(err.Col, "undefined function: "+strconv.Quote(err.Name))
	}
	return posmsg(err.Col, "undefined variable: "+strconv.Quote(err.Name))
}

func (err *NameError) Pos() int {
	return err.Col
}
