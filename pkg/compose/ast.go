package compose

// Operator names the binary and unary operations the language supports.
type Operator string

const (
	OpAdd   Operator = "+"
	OpSub   Operator = "-"
	OpMul   Operator = "*"
	OpDiv   Operator = "/"
	OpMod   Operator = "%"
	OpEq    Operator = "=="
	OpNe    Operator = "!="
	OpLt    Operator = "<"
	OpLe    Operator = "<="
	OpGt    Operator = ">"
	OpGe    Operator = ">="
	OpAnd   Operator = "and"
	OpOr    Operator = "or"
	OpNot   Operator = "not"
	OpIn    Operator = "in"
	OpNotIn Operator = "not in"
	OpNeg   Operator = "neg"
)

// Node is one vertex of a compiled expression tree.
type Node interface {
	isNode()
}

// LiteralNode holds a number, string, boolean or none constant.
type LiteralNode struct {
	Value interface{}
}

// VarNode references a host attribute, possibly reaching into nested
// maps via dotted segments.
type VarNode struct {
	Path []string
}

// ListNode is a bracketed list literal.
type ListNode struct {
	Elems []Node
}

// UnaryNode applies not or arithmetic negation.
type UnaryNode struct {
	Op      Operator
	Operand Node
}

// BinaryNode applies an infix operator.
type BinaryNode struct {
	Op    Operator
	Left  Node
	Right Node
}

// FilterNode applies a pipe filter to its operand.
type FilterNode struct {
	Name    string
	Operand Node
	Args    []Node
}

func (*LiteralNode) isNode() {}
func (*VarNode) isNode()     {}
func (*ListNode) isNode()    {}
func (*UnaryNode) isNode()   {}
func (*BinaryNode) isNode()  {}
func (*FilterNode) isNode()  {}
