package formula

import (
	"math"
	"strings"
)

// Binding powers, lowest first.
const (
	bpOr = iota + 1
	bpAnd
	bpEquality
	bpRelational
	bpAdditive
	bpMultiplicative
	bpPower
)

const (
	// MaxLength is the longest formula accepted, in bytes.
	MaxLength = 4096

	maxDepth = 256
)

// constants are the qualified names usable without a call.
var constants = map[string]float64{
	"Math.PI": math.Pi,
	"Math.E":  math.E,
}

var infix = map[string]int{
	"||":  bpOr,
	"&&":  bpAnd,
	"==":  bpEquality,
	"!=":  bpEquality,
	"===": bpEquality,
	"!==": bpEquality,
	"<":   bpRelational,
	"<=":  bpRelational,
	">":   bpRelational,
	">=":  bpRelational,
	"+":   bpAdditive,
	"-":   bpAdditive,
	"*":   bpMultiplicative,
	"/":   bpMultiplicative,
	"%":   bpMultiplicative,
	"**":  bpPower,
}

type parser struct {
	tokens []token
	pos    int
	depth  int
}

// Parse turns src into an expression tree.
func Parse(src string) (Node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &Error{Kind: KindEmpty, Pos: -1, Msg: "formula must not be empty"}
	}

	if len(src) > MaxLength {
		return nil, errorf(KindSyntax, -1, "formula is longer than %d characters", MaxLength)
	}

	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	n, err := p.expression()
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != tokEOF {
		return nil, unexpected(t)
	}

	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}

	return t
}

func (p *parser) expect(kind tokenKind, text string) error {
	if t := p.next(); t.kind != kind {
		if t.kind == tokEOF {
			return errorf(KindSyntax, t.pos, "expected %q, found end of formula", text)
		}

		return errorf(KindSyntax, t.pos, "expected %q, found %q", text, t.text)
	}

	return nil
}

// enter tracks recursion so nesting stays bounded.
func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return errorf(KindSyntax, p.peek().pos, "formula is nested too deeply")
	}

	return nil
}

func (p *parser) leave() {
	p.depth--
}

func unexpected(t token) *Error {
	if t.kind == tokEOF {
		return errorf(KindSyntax, t.pos, "unexpected end of formula")
	}

	return errorf(KindSyntax, t.pos, "unexpected %q", t.text)
}

// expression parses a conditional, the loosest construct.
func (p *parser) expression() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.binary(0)
	if err != nil {
		return nil, err
	}

	if p.peek().kind != tokQuestion {
		return cond, nil
	}
	p.next()

	then, err := p.expression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(tokColon, ":"); err != nil {
		return nil, err
	}

	els, err := p.expression()
	if err != nil {
		return nil, err
	}

	return Ternary{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) binary(minBP int) (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.prefix()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t.kind != tokOp {
			return left, nil
		}

		bp, ok := infix[t.text]
		if !ok || bp <= minBP {
			return left, nil
		}
		p.next()

		// ** is right associative.
		next := bp
		if t.text == "**" {
			next = bp - 1
		}

		right, err := p.binary(next)
		if err != nil {
			return nil, err
		}

		left = Binary{Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) prefix() (Node, error) {
	t := p.next()

	switch t.kind {
	case tokNumber:
		return Literal{Value: t.num}, nil

	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		if v, ok := constants[t.text]; ok {
			return Literal{Value: v}, nil
		}
		if strings.Contains(t.text, ".") {
			return nil, errorf(KindSyntax, t.pos, "unexpected %q", t.text)
		}

		return VariableRef{Name: t.text, Pos: t.pos}, nil

	case tokLParen:
		n, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}

		return n, nil

	case tokOp:
		if t.text == "-" || t.text == "+" || t.text == "!" {
			operand, err := p.binary(bpMultiplicative)
			if err != nil {
				return nil, err
			}

			return Unary{Op: t.text, Operand: operand}, nil
		}
	}

	return nil, unexpected(t)
}

func (p *parser) call(name token) (Node, error) {
	fn := strings.TrimPrefix(name.text, "Math.")
	if _, ok := functions[fn]; !ok {
		return nil, errorf(KindSyntax, name.pos, "unknown function %q", name.text)
	}
	p.next() // (

	var args []Node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}

	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}

	if f := functions[fn]; len(args) < f.minArgs || (f.maxArgs >= 0 && len(args) > f.maxArgs) {
		return nil, errorf(KindSyntax, name.pos, "%s expects %s", name.text, f.arity())
	}

	return Call{Func: fn, Args: args, Pos: name.pos}, nil
}
