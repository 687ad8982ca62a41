package mevac

import (
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Expr = num | name | Call | Neg | Plus | Add | Sub | Mul | Div | Rem | Pow | '(' Expr ')'
// Call = name '(' [ Expr { ',' Expr } ] ')'
// Neg = '-' Expr
// Plus = '+' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr '×' Expr
// Div = Expr '/' Expr | Expr '÷' Expr
// Rem = Expr '%' Expr
// Pow = Expr '^' Expr

// Expr is a parsed expression. It is never modified after Parse returns, so
// any number of goroutines may evaluate it at once.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the sorted list of variable names used in the expression.
	names []string
}

// Parse reads one expression from src. Options apply in order. Without
// StopOn, Parse consumes src to the end.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	var p parseconf
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	p.names = make(map[string]bool)
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	tok := scan.must()
	if n == nil {
		if tok.kind == tokenSep && tok.text == ";" && p.stopsemi {
			return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
		}
		return nil, endError(tok, false)
	}
	switch tok.kind {
	case tokenEOF:
	case tokenSep:
		if !p.stopsemi || tok.text != ";" {
			return nil, endError(tok, false)
		}
	default:
		return nil, endError(tok, false)
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	slices.Sort(ex.names)
	return &ex, nil
}

// ParseString parses src.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// parseterm parses operands joined by operators that bind more tightly than
// until. On success the token that stopped it is left pushed on scan. An
// empty operand yields a nil node and nil error, and the caller decides
// whether that is allowed.
func parseterm(scan *lexer, p *parseconf, until operator) (*node, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next(p.stopws)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// Juxtaposed terms are not multiplied.
			return nil, &TermError{Col: tok.pos, Text: tok.text}
		case tokenOp:
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			// Only ^ can chain without bound; the other levels are fixed
			// by the precedence table.
			if prec.right {
				if err := p.descend(tok.pos); err != nil {
					return nil, err
				}
			}
			rhs, err := parseterm(scan, p, prec)
			if prec.right {
				p.ascend()
			}
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyAt(scan)
			}
			n = &node{kind: prec.op, pos: tok.pos, left: n, right: rhs}
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("mevac: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the operand at the start of a term, where signs are unary
// and StopOn whitespace is skipped.
func parselhs(scan *lexer, p *parseconf, until operator) (*node, error) {
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			// The lexer only produces well-formed decimals, so this is a
			// number ParseFloat cannot represent at all.
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		// Out of range literals are ±Inf or ±0, which is what we want.
		return &node{kind: nodeNum, name: tok.text, num: v, pos: tok.pos}, nil
	case tokenIdent:
		// name( is a call. A StopOn newline between them ends the expression
		// instead.
		nt, err := scan.next(p.stopws)
		if err != nil {
			return nil, err
		}
		if nt.kind != tokenOpen {
			scan.push(nt)
			p.names[tok.text] = true
			return &node{kind: nodeName, name: tok.text, pos: tok.pos}, nil
		}
		if err := p.descend(tok.pos); err != nil {
			return nil, err
		}
		args, err := parsearglist(scan, p)
		p.ascend()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeCall, name: tok.text, pos: tok.pos, args: args}, nil
	case tokenOp:
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// 2^-x: the sign binds only as tightly as the ^ before it.
			prec.prec, prec.right = until.prec, until.right
		}
		if err := p.descend(tok.pos); err != nil {
			return nil, err
		}
		rhs, err := parseterm(scan, p, prec)
		p.ascend()
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, emptyAt(scan)
		}
		return &node{kind: prec.op, pos: tok.pos, left: rhs}, nil
	case tokenOpen:
		if err := p.descend(tok.pos); err != nil {
			return nil, err
		}
		rhs, err := parseterm(scan, p, exprprec)
		p.ascend()
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			return nil, endError(end, true)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return rhs, nil
	case tokenClose:
		// Possibly f(); parsearglist knows.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		if tok.text == ";" && p.stopsemi {
			scan.push(tok)
			return nil, nil
		}
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("mevac: unknown token: " + tok.String())
	}
}

// parsearglist parses a list of zero or more comma-separated arguments
// following the open bracket of a call, including the close bracket.
func parsearglist(scan *lexer, p *parseconf) ([]*node, error) {
	var args []*node
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			// f(1, at end of input is an unclosed bracket.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: "("}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			if rhs == nil {
				// f() has no arguments; f(1,) is missing one.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			return append(args, rhs), nil
		case tokenSep:
			if end.text != "," {
				return nil, &SeparatorError{Col: end.pos, Sep: end.text}
			}
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args = append(args, rhs)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: "("}
		default:
			panic("mevac: parseterm ended on non-end token " + end.String())
		}
	}
}

// descend enters one level of nesting that starts at col.
func (p *parseconf) descend(col int) error {
	if p.maxdepth > 0 && p.depth >= p.maxdepth {
		return &DepthError{Col: col, Max: p.maxdepth}
	}
	p.depth++
	return nil
}

func (p *parseconf) ascend() { p.depth-- }

// emptyAt creates an error for a missing operand, using the pushed token that
// ended the empty subexpression.
func emptyAt(scan *lexer) error {
	end := scan.must()
	scan.push(end)
	return &EmptyExpressionError{Col: end.pos, End: end.text}
}

// endError describes tok, which ended a subexpression where it could not.
// open reports whether the subexpression followed a "(".
func endError(tok lexToken, open bool) error {
	left := ""
	if open {
		left = "("
	}
	switch tok.kind {
	case tokenEOF:
		return &BracketError{Col: tok.pos, Left: left, Right: ""}
	case tokenClose:
		return &BracketError{Col: tok.pos, Left: left, Right: tok.text}
	case tokenSep:
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("mevac: bad end token " + tok.String())
	}
}

// Vars returns the variable names used when evaluating the expression, in
// sorted order. Names of called functions are not included.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// Nodes returns the number of nodes in the expression's syntax tree.
func (e *Expr) Nodes() int {
	return e.n.size()
}

// String formats the syntax tree with every operation bracketed. Bracket
// style alternates between () and [] by depth, so the output is for reading
// rather than reparsing.
func (e *Expr) String() string {
	return e.n.String()
}

type operator struct {
	prec  int8 // higher binds tighter
	right bool // right-associative
	op    nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop looks up an infix operator. Unknown text gives op nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-", "−":
		return operator{1, false, nodeSub}
	case "*", "×":
		return operator{5, false, nodeMul}
	case "/", "÷":
		return operator{5, false, nodeDiv}
	case "%":
		return operator{5, false, nodeRem}
	case "^":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop looks up a prefix sign.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodeNop}
	case "-", "−":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is looser than every operator, so parsing with it consumes a
// whole expression.
var exprprec = operator{-128, true, nodeNone}
