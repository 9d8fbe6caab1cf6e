package formula

// Node is a parsed expression.
type Node interface {
	node()
}

type Literal struct {
	Value float64
}

type VariableRef struct {
	Name string
	Pos  int
}

type Unary struct {
	Op      string
	Operand Node
}

type Binary struct {
	Op          string
	Left, Right Node
}

type Ternary struct {
	Cond, Then, Else Node
}

type Call struct {
	Func string // Unqualified name, e.g. "max" for Math.max
	Args []Node
	Pos  int
}

func (Literal) node()     {}
func (VariableRef) node() {}
func (Unary) node()       {}
func (Binary) node()      {}
func (Ternary) node()     {}
func (Call) node()        {}
