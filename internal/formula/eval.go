package formula

import (
	"fmt"
	"math"
)

// value is either a number or a boolean produced by a comparison.
type value struct {
	num    float64
	isBool bool
}

func number(f float64) value { return value{num: f} }

func boolean(b bool) value {
	if b {
		return value{num: 1, isBool: true}
	}

	return value{isBool: true}
}

func (v value) truthy() bool {
	return v.num != 0 && !math.IsNaN(v.num)
}

type function struct {
	minArgs, maxArgs int // maxArgs -1 is variadic
	apply            func(args []float64) float64
}

func (f function) arity() string {
	switch {
	case f.maxArgs < 0:
		return fmt.Sprintf("at least %d arguments", f.minArgs)
	case f.minArgs == 1 && f.maxArgs == 1:
		return "1 argument"
	}

	return fmt.Sprintf("%d arguments", f.maxArgs)
}

func unary(fn func(float64) float64) function {
	return function{minArgs: 1, maxArgs: 1, apply: func(a []float64) float64 { return fn(a[0]) }}
}

var functions = map[string]function{
	"min": {minArgs: 0, maxArgs: -1, apply: func(a []float64) float64 {
		r := math.Inf(1)
		for _, x := range a {
			r = math.Min(r, x)
		}
		return r
	}},
	"max": {minArgs: 0, maxArgs: -1, apply: func(a []float64) float64 {
		r := math.Inf(-1)
		for _, x := range a {
			r = math.Max(r, x)
		}
		return r
	}},
	"round": unary(func(x float64) float64 { return math.Floor(x + 0.5) }),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"abs":   unary(math.Abs),
	"sqrt":  unary(math.Sqrt),
	"pow":   {minArgs: 2, maxArgs: 2, apply: func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
}

type env map[string]float64

func (e env) eval(n Node) (value, error) {
	switch n := n.(type) {
	case Literal:
		return number(n.Value), nil

	case VariableRef:
		v, ok := e[n.Name]
		if !ok {
			return value{}, errorf(KindUndefined, n.Pos, "%s is not defined", n.Name)
		}

		return number(v), nil

	case Unary:
		v, err := e.eval(n.Operand)
		if err != nil {
			return value{}, err
		}

		switch n.Op {
		case "-":
			return number(-v.num), nil
		case "+":
			return number(v.num), nil
		case "!":
			return boolean(!v.truthy()), nil
		}

	case Binary:
		return e.binary(n)

	case Ternary:
		c, err := e.eval(n.Cond)
		if err != nil {
			return value{}, err
		}
		if c.truthy() {
			return e.eval(n.Then)
		}

		return e.eval(n.Else)

	case Call:
		args := make([]float64, len(n.Args))
		for i, a := range n.Args {
			v, err := e.eval(a)
			if err != nil {
				return value{}, err
			}
			args[i] = v.num
		}

		return number(functions[n.Func].apply(args)), nil
	}

	return value{}, errorf(KindRuntime, -1, "unsupported expression %T", n)
}

func (e env) binary(n Binary) (value, error) {
	l, err := e.eval(n.Left)
	if err != nil {
		return value{}, err
	}

	// Logical operators short-circuit and yield one of their operands.
	switch n.Op {
	case "&&":
		if !l.truthy() {
			return l, nil
		}
		return e.eval(n.Right)
	case "||":
		if l.truthy() {
			return l, nil
		}
		return e.eval(n.Right)
	}

	r, err := e.eval(n.Right)
	if err != nil {
		return value{}, err
	}

	a, b := l.num, r.num

	switch n.Op {
	case "+":
		return number(a + b), nil
	case "-":
		return number(a - b), nil
	case "*":
		return number(a * b), nil
	case "/":
		return number(a / b), nil
	case "%":
		return number(math.Mod(a, b)), nil
	case "**":
		return number(math.Pow(a, b)), nil
	case "<":
		return boolean(a < b), nil
	case "<=":
		return boolean(a <= b), nil
	case ">":
		return boolean(a > b), nil
	case ">=":
		return boolean(a >= b), nil
	case "==":
		return boolean(a == b), nil
	case "!=":
		return boolean(a != b), nil
	case "===":
		return boolean(l.isBool == r.isBool && a == b), nil
	case "!==":
		return boolean(l.isBool != r.isBool || a != b), nil
	}

	return value{}, errorf(KindRuntime, -1, "unsupported operator %q", n.Op)
}
