package mevac

import (
	"math"
	"strconv"
)

// compiled is an expression compiled to closures over a slice of variable
// values.
type compiled func(vals []float64) float64

// Bind compiles the expression into a function of the named variables, in
// order. Every variable in the expression must be among names or be a
// built-in constant, and every call must name a built-in function with a
// valid number of arguments; otherwise Bind returns the same error that Eval
// would. As with Context, bound names shadow constants, and a later duplicate
// name shadows an earlier one.
//
// The returned function is safe for concurrent use. It panics if it is called
// with a number of values different from len(names).
func (e *Expr) Bind(names ...string) (func(vals ...float64) float64, error) {
	slots := make(map[string]int, len(names))
	for i, name := range names {
		slots[name] = i
	}
	c, err := e.n.compile(slots)
	if err != nil {
		return nil, err
	}
	k := len(names)
	return func(vals ...float64) float64 {
		if len(vals) != k {
			panic("mevac: bound expression called with " + strconv.Itoa(len(vals)) + " values, want " + strconv.Itoa(k))
		}
		return c(vals)
	}, nil
}

func (n *node) compile(slots map[string]int) (compiled, error) {
	switch n.kind {
	case nodeNum:
		v := n.num
		return func([]float64) float64 { return v }, nil
	case nodeName:
		if i, ok := slots[n.name]; ok {
			return func(vals []float64) float64 { return vals[i] }, nil
		}
		if v, ok := Constant(n.name); ok {
			return func([]float64) float64 { return v }, nil
		}
		return nil, &NameError{Name: n.name, Col: n.pos}
	case nodeCall:
		args := make([]compiled, len(n.args))
		for i, a := range n.args {
			c, err := a.compile(slots)
			if err != nil {
				return nil, err
			}
			args[i] = c
		}
		f, ok := Builtin(n.name)
		if !ok {
			return nil, &NameError{Name: n.name, Func: true, Col: n.pos}
		}
		if !f.CanCall(len(n.args)) {
			return nil, &CallError{Col: n.pos, Func: n.name, Len: len(n.args)}
		}
		return func(vals []float64) float64 {
			var buf [4]float64
			x := buf[:0]
			for _, a := range args {
				x = append(x, a(vals))
			}
			return f.Call(x)
		}, nil
	case nodeNeg:
		l, err := n.left.compile(slots)
		if err != nil {
			return nil, err
		}
		return func(vals []float64) float64 { return -l(vals) }, nil
	case nodeNop:
		return n.left.compile(slots)
	}
	l, err := n.left.compile(slots)
	if err != nil {
		return nil, err
	}
	r, err := n.right.compile(slots)
	if err != nil {
		return nil, err
	}
	switch n.kind {
	case nodeAdd:
		return func(vals []float64) float64 { return l(vals) + r(vals) }, nil
	case nodeSub:
		return func(vals []float64) float64 { return l(vals) - r(vals) }, nil
	case nodeMul:
		return func(vals []float64) float64 { return l(vals) * r(vals) }, nil
	case nodeDiv:
		return func(vals []float64) float64 { return l(vals) / r(vals) }, nil
	case nodeRem:
		return func(vals []float64) float64 { return math.Mod(l(vals), r(vals)) }, nil
	case nodePow:
		return func(vals []float64) float64 { return math.Pow(l(vals), r(vals)) }, nil
	default:
		panic("mevac: invalid AST node " + n.kind.String())
	}
}
