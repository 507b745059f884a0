package lang

import (
	"io"
	"strings"
)

// Position identifies a location in source text.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// NodeType indicates the arm of a [Node].
type NodeType int

const (
	// TypeLiteral is a Number, String, or Boolean constant.
	TypeLiteral NodeType = iota

	// TypeVariable is a reference to a binding by name.
	TypeVariable

	// TypeApply is the application of an operator to arguments.
	TypeApply
)

// String returns a string representation of the node type.
func (nt NodeType) String() string {
	switch nt {
	case TypeLiteral:
		return "literal"

	case TypeVariable:
		return "variable"

	case TypeApply:
		return "apply"

	default:
		return "unknown"
	}
}

// Node is a syntax tree node. The concrete type is one of [*Literal],
// [*Variable], or [*Apply]. Nodes are immutable once parsed.
type Node interface {
	Type() NodeType
	Pos() Position
}

// Literal is a constant value appearing in source.
type Literal struct {
	Value Value
	At    Position
}

// Variable is a reference to a binding.
type Variable struct {
	Name string
	At   Position
}

// Apply is the application of Operator to Args.
type Apply struct {
	Operator Node
	Args     []Node
	At       Position
}

func (*Literal) Type() NodeType  { return TypeLiteral }
func (*Variable) Type() NodeType { return TypeVariable }
func (*Apply) Type() NodeType    { return TypeApply }

func (n *Literal) Pos() Position  { return n.At }
func (n *Variable) Pos() Position { return n.At }
func (n *Apply) Pos() Position    { return n.At }

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	app, ok := n.(*Apply)
	if !ok {
		return 1
	}

	count := 1 + Count(app.Operator)
	for _, arg := range app.Args {
		count += Count(arg)
	}

	return count
}

// Equal reports whether two trees are structurally identical, ignoring
// source positions.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)

		return ok && Identical(x.Value, y.Value)

	case *Variable:
		y, ok := b.(*Variable)

		return ok && x.Name == y.Name

	case *Apply:
		y, ok := b.(*Apply)
		if !ok || len(x.Args) != len(y.Args) || !Equal(x.Operator, y.Operator) {
			return false
		}

		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}

		return true

	default:
		return false
	}
}

// PrintTree writes an indented representation of the tree to the writer.
func PrintTree(w io.Writer, n Node) {
	printIndent(w, n, 0)
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

func printIndent(w io.Writer, n Node, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch n := n.(type) {
	case *Literal:
		put("\n", prefix+"Literal", n.Value.Kind().String(), FormatValue(n.Value))

	case *Variable:
		put("\n", prefix+"Variable", n.Name)

	case *Apply:
		put("\n", prefix+"Apply")
		put("\n", prefix+"  Operator")
		printIndent(w, n.Operator, indent+2)

		if len(n.Args) == 0 {
			put("\n", prefix+"  Args", "(empty)")

			return
		}

		put("\n", prefix+"  Args")

		for _, arg := range n.Args {
			printIndent(w, arg, indent+2)
		}

	default:
		put("\n", prefix+"(nil)")
	}
}
