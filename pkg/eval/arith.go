package eval

import (
	"strconv"
	"strings"
)

// Evaluates an arithmetic expression with the semantics of $((...)):
// integers, variables, the C operators except ++/-- on non-variables, and
// assignments.
func (fm *Frame) arith(expr string) (int64, error) {
	return fm.arithDepth(expr, 0)
}

// Variables whose values are expressions are evaluated recursively, up to
// this depth.
const maxArithDepth = 32

func (fm *Frame) arithDepth(expr string, depth int) (int64, error) {
	if depth > maxArithDepth {
		return 0, expandErrorf("arithmetic: expression recursion level exceeded")
	}
	p := &arithParser{fm: fm, src: expr, depth: depth}
	p.next()
	if p.tok == "" {
		return 0, nil
	}
	v, err := p.comma()
	if err != nil {
		return 0, err
	}
	if p.tok != "" {
		return 0, p.errorf("unexpected %q", p.tok)
	}
	return v.val, nil
}

type arithParser struct {
	fm  *Frame
	src string
	pos int
	tok string
	// Skip evaluation of side effects, for the untaken branches of && || ?:.
	noeval int
	depth  int
}

// A value, possibly a variable that can be assigned to.
type arithValue struct {
	val  int64
	name string
}

var arithOps = []string{
	"<<=", ">>=", "**",
	"&&", "||", "<<", ">>", "<=", ">=", "==", "!=", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=",
	"+", "-", "*", "/", "%", "<", ">", "&", "^", "|", "!", "~",
	"?", ":", "=", "(", ")", ",",
}

func (p *arithParser) errorf(format string, args ...any) error {
	return expandErrorf("arithmetic: "+format, args...)
}

func (p *arithParser) next() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
	if p.pos == len(p.src) {
		p.tok = ""
		return
	}
	c := p.src[p.pos]
	if isArithWordChar(c) {
		j := p.pos
		for j < len(p.src) && isArithWordChar(p.src[j]) {
			j++
		}
		p.tok, p.pos = p.src[p.pos:j], j
		return
	}
	for _, op := range arithOps {
		if strings.HasPrefix(p.src[p.pos:], op) {
			p.tok = op
			p.pos += len(op)
			return
		}
	}
	p.tok = p.src[p.pos : p.pos+1]
	p.pos++
}

func isArithWordChar(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func (p *arithParser) comma() (arithValue, error) {
	v, err := p.assign()
	for err == nil && p.tok == "," {
		p.next()
		v, err = p.assign()
	}
	return v, err
}

func (p *arithParser) assign() (arithValue, error) {
	lhs, err := p.ternary()
	if err != nil {
		return lhs, err
	}
	op := p.tok
	if op != "=" && !(len(op) >= 2 && strings.HasSuffix(op, "=") && op != "==" && op != "!=" && op != "<=" && op != ">=") {
		return lhs, nil
	}
	if lhs.name == "" {
		return lhs, p.errorf("assignment to non-variable")
	}
	p.next()
	rhs, err := p.assign()
	if err != nil {
		return rhs, err
	}
	v := rhs.val
	if op != "=" {
		v, err = p.binary(strings.TrimSuffix(op, "="), lhs.val, rhs.val)
		if err != nil {
			return rhs, err
		}
	}
	p.set(lhs.name, v)
	return arithValue{val: v}, nil
}

func (p *arithParser) set(name string, v int64) {
	if p.noeval == 0 {
		p.fm.env().Set(name, strconv.FormatInt(v, 10))
	}
}

func (p *arithParser) ternary() (arithValue, error) {
	cond, err := p.binaryLevel(0)
	if err != nil || p.tok != "?" {
		return cond, err
	}
	p.next()
	if cond.val == 0 {
		p.noeval++
	}
	a, err := p.comma()
	if cond.val == 0 {
		p.noeval--
	}
	if err != nil {
		return a, err
	}
	if p.tok != ":" {
		return a, p.errorf("expected ':'")
	}
	p.next()
	if cond.val != 0 {
		p.noeval++
	}
	b, err := p.ternary()
	if cond.val != 0 {
		p.noeval--
	}
	if cond.val != 0 {
		return arithValue{val: a.val}, err
	}
	return arithValue{val: b.val}, err
}

// Binary operators by increasing precedence.
var arithLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *arithParser) binaryLevel(level int) (arithValue, error) {
	if level == len(arithLevels) {
		return p.power()
	}
	lhs, err := p.binaryLevel(level + 1)
	if err != nil {
		return lhs, err
	}
	for contains(arithLevels[level], p.tok) {
		op := p.tok
		p.next()
		// Short circuit.
		skip := op == "&&" && lhs.val == 0 || op == "||" && lhs.val != 0
		if skip {
			p.noeval++
		}
		rhs, err := p.binaryLevel(level + 1)
		if skip {
			p.noeval--
		}
		if err != nil {
			return rhs, err
		}
		v, err := p.binary(op, lhs.val, rhs.val)
		if err != nil {
			return rhs, err
		}
		lhs = arithValue{val: v}
	}
	return lhs, nil
}

func (p *arithParser) power() (arithValue, error) {
	base, err := p.unary()
	if err != nil || p.tok != "**" {
		return base, err
	}
	p.next()
	exp, err := p.power()
	if err != nil {
		return exp, err
	}
	v, err := p.binary("**", base.val, exp.val)
	return arithValue{val: v}, err
}

func (p *arithParser) binary(op string, a, b int64) (int64, error) {
	switch op {
	case "||":
		return boolInt(a != 0 || b != 0), nil
	case "&&":
		return boolInt(a != 0 && b != 0), nil
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	case "&":
		return a & b, nil
	case "==":
		return boolInt(a == b), nil
	case "!=":
		return boolInt(a != b), nil
	case "<":
		return boolInt(a < b), nil
	case "<=":
		return boolInt(a <= b), nil
	case ">":
		return boolInt(a > b), nil
	case ">=":
		return boolInt(a >= b), nil
	case "<<":
		return a << uint64(b&63), nil
	case ">>":
		return a >> uint64(b&63), nil
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/", "%":
		if b == 0 {
			if p.noeval > 0 {
				return 0, nil
			}
			return 0, p.errorf("division by zero")
		}
		if op == "/" {
			return a / b, nil
		}
		return a % b, nil
	case "**":
		if b < 0 {
			return 0, p.errorf("exponent less than 0")
		}
		r := int64(1)
		for ; b > 0; b-- {
			r *= a
		}
		return r, nil
	}
	return 0, p.errorf("unknown operator %q", op)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (p *arithParser) unary() (arithValue, error) {
	switch op := p.tok; op {
	case "+", "-", "!", "~":
		p.next()
		v, err := p.unary()
		if err != nil {
			return v, err
		}
		switch op {
		case "-":
			v.val = -v.val
		case "!":
			v.val = boolInt(v.val == 0)
		case "~":
			v.val = ^v.val
		}
		return arithValue{val: v.val}, nil
	case "++", "--":
		p.next()
		v, err := p.unary()
		if err != nil {
			return v, err
		}
		if v.name == "" {
			return v, p.errorf("%s on non-variable", op)
		}
		n := v.val + 1
		if op == "--" {
			n = v.val - 1
		}
		p.set(v.name, n)
		return arithValue{val: n}, nil
	}
	v, err := p.primary()
	if err != nil {
		return v, err
	}
	if (p.tok == "++" || p.tok == "--") && v.name != "" {
		n := v.val + 1
		if p.tok == "--" {
			n = v.val - 1
		}
		p.next()
		p.set(v.name, n)
		return arithValue{val: v.val}, nil
	}
	return v, nil
}

func (p *arithParser) primary() (arithValue, error) {
	tok := p.tok
	switch {
	case tok == "":
		return arithValue{}, p.errorf("unexpected end of expression")
	case tok == "(":
		p.next()
		v, err := p.comma()
		if err != nil {
			return v, err
		}
		if p.tok != ")" {
			return v, p.errorf("expected ')'")
		}
		p.next()
		return arithValue{val: v.val}, nil
	case '0' <= tok[0] && tok[0] <= '9':
		p.next()
		n, err := parseArithInt(tok)
		if err != nil {
			return arithValue{}, p.errorf("bad number %q", tok)
		}
		return arithValue{val: n}, nil
	case isArithWordChar(tok[0]):
		p.next()
		v, err := p.variable(tok)
		return arithValue{val: v, name: tok}, err
	}
	return arithValue{}, p.errorf("unexpected %q", tok)
}

func parseArithInt(s string) (int64, error) {
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		return strconv.ParseInt(s[2:], 16, 64)
	case len(s) > 1 && s[0] == '0':
		return strconv.ParseInt(s[1:], 8, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}

// Value of a variable in arithmetic context. Unset and empty variables are 0;
// other non-numeric values are evaluated as expressions.
func (p *arithParser) variable(name string) (int64, error) {
	v, _ := p.fm.lookupParam(name)
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	if n, err := parseArithInt(v); err == nil {
		return n, nil
	}
	return p.fm.arithDepth(v, p.depth+1)
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
