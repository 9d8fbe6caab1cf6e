// Package formula evaluates user-authored arithmetic expressions against a set
// of named variables.
//
// The grammar covers numeric literals, variable names, the arithmetic
// operators + - * / % and **, comparisons, && and ||, the conditional
// operator and a fixed set of math functions (min, max, round, floor, ceil,
// abs, pow, sqrt), optionally written with a Math. prefix. Comparisons yield
// booleans which count as 1 or 0 in arithmetic. A formula as a whole must
// produce a finite number.
package formula

import (
	"errors"
	"math"
	"slices"
)

// Expr is a compiled formula, safe for concurrent use.
type Expr struct {
	src  string
	root Node
	vars []string
}

// Compile parses src.
func Compile(src string) (*Expr, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}

	return &Expr{src: src, root: root, vars: collectVariables(root, nil)}, nil
}

func (e *Expr) String() string {
	return e.src
}

// Variables returns the distinct variable names referenced by the formula,
// in order of first appearance.
func (e *Expr) Variables() []string {
	return slices.Clone(e.vars)
}

// Eval evaluates the formula with the given variable values.
func (e *Expr) Eval(vars map[string]float64) (float64, error) {
	v, err := env(vars).eval(e.root)
	if err != nil {
		return 0, err
	}

	if v.isBool || math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return 0, &Error{Kind: KindNotNumeric, Pos: -1, Msg: "formula must produce a numeric value"}
	}

	return v.num, nil
}

// Evaluate compiles and evaluates formula in one step. Every failure is
// reported as an *Error.
func Evaluate(formula string, vars map[string]float64) (float64, error) {
	e, err := Compile(formula)
	if err != nil {
		return 0, err
	}

	return e.Eval(vars)
}

// Validation is the outcome of a dry run of a formula.
type Validation struct {
	Valid   bool    `json:"valid"`
	Message string  `json:"message,omitempty"`
	Result  float64 `json:"result"`
}

// Validate dry-runs formula against sample values and describes the first
// problem found.
func Validate(formula string, sample map[string]float64) Validation {
	result, err := Evaluate(formula, sample)
	if err == nil {
		return Validation{Valid: true, Result: result}
	}

	return Validation{Message: Message(err)}
}

// Message renders err the way it is shown to a formula author.
func Message(err error) string {
	var fe *Error
	if !errors.As(err, &fe) {
		return "formula error: " + err.Error()
	}

	switch fe.Kind {
	case KindEmpty, KindNotNumeric:
		return fe.Msg
	}

	return "formula error: " + fe.Error()
}

func collectVariables(n Node, seen []string) []string {
	switch n := n.(type) {
	case VariableRef:
		if !slices.Contains(seen, n.Name) {
			seen = append(seen, n.Name)
		}
	case Unary:
		seen = collectVariables(n.Operand, seen)
	case Binary:
		seen = collectVariables(n.Left, seen)
		seen = collectVariables(n.Right, seen)
	case Ternary:
		seen = collectVariables(n.Cond, seen)
		seen = collectVariables(n.Then, seen)
		seen = collectVariables(n.Else, seen)
	case Call:
		for _, a := range n.Args {
			seen = collectVariables(a, seen)
		}
	}

	return seen
}
