package mevac

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseOption configures a call to Parse or ParseString.
type ParseOption interface {
	parseOption(parseconf) parseconf
}

// parseconf is the state of a single parse. A configured *parseconf is
// itself the ParseOption returned by ParsingPreset.
type parseconf struct {
	// names collects the variables referenced so far.
	names map[string]bool
	// stopws lists whitespace runes the lexer reports as end of input.
	stopws string
	// stopsemi allows a semicolon to end the expression.
	stopsemi bool
	// depth counts the open brackets, calls, signs and ^ operands around
	// the current position; maxdepth bounds it when positive.
	depth    int
	maxdepth int
}

type stopopt struct {
	semi bool
	ws   string
}

// StopOn makes the parser finish at the first of the given runes that
// appears after a complete term. Only ';' and whitespace are accepted; any
// other rune panics. Whitespace is still skipped where an operand is
// required, so "1 +\n2" parses as one expression even with StopOn('\n').
//
// A later StopOn replaces an earlier one. StopOn() restores parsing to the
// end of input.
func StopOn(chars ...rune) ParseOption {
	var o stopopt
	var ws strings.Builder
	for _, r := range chars {
		switch {
		case r == ';':
			o.semi = true
		case unicode.IsSpace(r):
			if !strings.ContainsRune(ws.String(), r) {
				ws.WriteRune(r)
			}
		default:
			panic("mevac: StopOn rune " + strconv.QuoteRune(r) + " is not ';' or whitespace")
		}
	}
	o.ws = ws.String()
	return &o
}

func (o *stopopt) parseOption(p parseconf) parseconf {
	p.stopsemi, p.stopws = o.semi, o.ws
	return p
}

type depthopt int

// MaxDepth bounds how deeply input may nest. Each enclosing bracket, call
// argument list, unary sign and right operand of ^ adds a level; other binary
// operators do not. Input that goes past the bound fails with a *DepthError
// at the token that opened the extra level. n <= 0 removes the bound, which
// is the default.
func MaxDepth(n int) ParseOption {
	return depthopt(max(n, 0))
}

func (o depthopt) parseOption(p parseconf) parseconf {
	p.maxdepth = int(o)
	return p
}

// ParsingPreset folds opts into a single option so that repeated parses do
// not reapply each one. The preset must come first among the options given
// to Parse; it panics if an earlier option already changed the defaults.
// Options after it apply normally.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parseconf
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return &p
}

func (o *parseconf) parseOption(p parseconf) parseconf {
	if p.stopws != "" || p.stopsemi || p.maxdepth != 0 {
		panic("mevac: ParsingPreset must precede other parse options")
	}
	p.stopws, p.stopsemi, p.maxdepth = o.stopws, o.stopsemi, o.maxdepth
	return p
}
